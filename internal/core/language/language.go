// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package language defines the closed set of content languages.

Every document is authored in the base language (English) and may carry
derived copies in Portuguese (Portugal) and Spanish. Codes are validated
here once so that the rest of the system can treat [Code] as trusted.
*/
package language

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/carolinavmo/pmr-atlas/internal/platform/apperr"
)

// # Codes

// Code is a supported two-letter content language code.
type Code string

const (
	English    Code = "en"
	Portuguese Code = "pt"
	Spanish    Code = "es"

	// Base is the language every other language falls back to.
	Base = English
)

// Language describes a supported content language.
type Language struct {
	Code       Code   `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	IsBase     bool   `json:"is_base"`
}

var catalogue = []Language{
	{Code: English, Name: "English", NativeName: "English", IsBase: true},
	{Code: Portuguese, Name: "Portuguese (Portugal)", NativeName: "Português", IsBase: false},
	{Code: Spanish, Name: "Spanish", NativeName: "Español", IsBase: false},
}

// ErrUnsupported is returned when a code is outside the supported set.
var ErrUnsupported = apperr.ValidationError("Unsupported language")

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.MustParse("pt-PT"),
	language.Spanish,
})

// # Lookups

// IsValid reports whether the code is part of the supported set.
func (code Code) IsValid() bool {
	for _, entry := range catalogue {
		if entry.Code == code {
			return true
		}
	}
	return false
}

// IsBase reports whether the code is the base language.
func (code Code) IsBase() bool { return code == Base }

// String implements fmt.Stringer.
func (code Code) String() string { return string(code) }

// All returns every supported code, base first.
func All() []Code {
	codes := make([]Code, 0, len(catalogue))
	for _, entry := range catalogue {
		codes = append(codes, entry.Code)
	}
	return codes
}

// Derived returns every supported code except the base language.
func Derived() []Code {
	codes := make([]Code, 0, len(catalogue)-1)
	for _, entry := range catalogue {
		if !entry.IsBase {
			codes = append(codes, entry.Code)
		}
	}
	return codes
}

// Strings returns the supported codes as plain strings, for validators.
func Strings() []string {
	codes := make([]string, 0, len(catalogue))
	for _, entry := range catalogue {
		codes = append(codes, string(entry.Code))
	}
	return codes
}

// List returns the full catalogue.
func List() []Language {
	out := make([]Language, len(catalogue))
	copy(out, catalogue)
	return out
}

// Get returns the catalogue entry for a code.
func Get(code Code) (Language, bool) {
	for _, entry := range catalogue {
		if entry.Code == code {
			return entry, true
		}
	}
	return Language{}, false
}

// Name returns the English display name of a code, used in translator prompts.
// Unknown codes are returned verbatim.
func Name(code Code) string {
	if entry, ok := Get(code); ok {
		return entry.Name
	}
	return string(code)
}

// # Parsing

/*
Parse resolves user input into a supported [Code].

Description: Accepts any BCP-47 form ("pt-PT", "ES", "en_US") and reduces it
to its base language before checking it against the supported set.

Returns:
  - Code: The supported code
  - error: [ErrUnsupported] if the input is malformed or unsupported
*/
func Parse(raw string) (Code, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if raw == "" {
		return "", ErrUnsupported
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return "", ErrUnsupported
	}

	base, _ := tag.Base()
	code := Code(base.String())
	if !code.IsValid() {
		return "", ErrUnsupported
	}
	return code, nil
}

// Match picks the best supported language for an Accept-Language header.
// It falls back to [Base] when nothing matches.
func Match(acceptLanguage string) Code {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Base
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Base
	}
	return catalogue[index].Code
}
