// Copyright (c) 2026 PMR Atlas. All rights reserved.

package document

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is the content of one section in one language. Text sections carry
// a markup string; reference sections carry an ordered list of entries.
//
// On the wire a text value is a JSON string and a reference value is a JSON
// array of strings. Decoding accepts either shape.
type Value struct {
	Kind    SectionKind
	Text    string
	Entries []string
}

// TextValue builds a text value.
func TextValue(text string) Value {
	return Value{Kind: KindText, Text: text}
}

// ReferenceValue builds a reference value.
func ReferenceValue(entries []string) Value {
	if entries == nil {
		entries = []string{}
	}
	return Value{Kind: KindReference, Entries: entries}
}

// EmptyValue returns the zero content for a section kind.
func EmptyValue(kind SectionKind) Value {
	if kind == KindReference {
		return ReferenceValue(nil)
	}
	return TextValue("")
}

// IsEmpty reports whether the value has no visible content.
func (value Value) IsEmpty() bool {
	if value.Kind == KindReference {
		for _, entry := range value.Entries {
			if strings.TrimSpace(entry) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(value.Text) == ""
}

// As coerces the value to kind. Text splits into one entry per non-blank
// line; entries join back with newlines.
func (value Value) As(kind SectionKind) Value {
	if value.Kind == kind {
		return value.clone()
	}

	if kind == KindReference {
		var entries []string
		for _, line := range strings.Split(value.Text, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				entries = append(entries, trimmed)
			}
		}
		return ReferenceValue(entries)
	}

	return TextValue(strings.Join(value.Entries, "\n"))
}

// Segments returns the translatable units of the value: the whole text, or
// every entry in order.
func (value Value) Segments() []string {
	if value.Kind == KindReference {
		return append([]string{}, value.Entries...)
	}
	return []string{value.Text}
}

// FromSegments rebuilds a value of kind from translated segments.
func FromSegments(kind SectionKind, segments []string) Value {
	if kind == KindReference {
		return ReferenceValue(append([]string{}, segments...))
	}
	return TextValue(strings.Join(segments, "\n"))
}

// Map applies fn to the text or to every entry.
func (value Value) Map(fn func(string) string) Value {
	if value.Kind == KindReference {
		entries := make([]string, len(value.Entries))
		for i, entry := range value.Entries {
			entries[i] = fn(entry)
		}
		return ReferenceValue(entries)
	}
	return TextValue(fn(value.Text))
}

// Len returns the number of characters across the value.
func (value Value) Len() int {
	if value.Kind == KindReference {
		total := 0
		for _, entry := range value.Entries {
			total += len([]rune(entry))
		}
		return total
	}
	return len([]rune(value.Text))
}

func (value Value) clone() Value {
	if value.Kind == KindReference {
		return ReferenceValue(append([]string{}, value.Entries...))
	}
	return value
}

// MarshalJSON writes a string for text values and an array for references.
func (value Value) MarshalJSON() ([]byte, error) {
	if value.Kind == KindReference {
		entries := value.Entries
		if entries == nil {
			entries = []string{}
		}
		return json.Marshal(entries)
	}
	return json.Marshal(value.Text)
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (value *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*value = TextValue("")
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var entries []string
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		*value = ReferenceValue(entries)
		return nil
	default:
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*value = TextValue(text)
		return nil
	}
}
