// Copyright (c) 2026 PMR Atlas. All rights reserved.

package markup

import "strings"

// # Inline Tokenizer

// marker is an inline delimiter and the style flag it toggles.
type marker struct {
	token string
	flag  uint8
}

const (
	flagBold uint8 = 1 << iota
	flagItalic
	flagUnderline
)

// Openers in precedence order: at the same position bold beats italic.
var markers = []marker{
	{token: "**", flag: flagBold},
	{token: "__", flag: flagUnderline},
	{token: "*", flag: flagItalic},
}

const boldMarker = 0

// escapable lists the characters a backslash keeps literal.
const escapable = `*_\`

// step is the choice a scope made at one position.
type step uint8

const (
	stepEnd step = iota
	stepClose
	stepEscape
	stepLiteral
	stepNested
)

type scopeKey struct {
	pos    int
	style  uint8
	closer string
	fresh  bool // no content consumed yet, so the closer cannot match
}

type scopeState struct {
	ok     bool
	end    int // offset after the scope's closer
	step   step
	marker int
}

// inlineParser is a memoised backtracking parser over one line.
type inlineParser struct {
	src  string
	memo map[scopeKey]scopeState
}

/*
ParseInline tokenizes a single line into formatted runs.

Description: Alternatives at each position are tried in order: a backslash
escape, then (inside italic) a bold opener, then the scope's closer, then
the openers the scope does not already hold, then a literal character. An
alternative is only taken when the enclosing scope can still close after
it, so an opener without a closer before the end of its scope is literal
text. Adjacent runs with the same style are merged.
*/
func ParseInline(text string) []Run {
	if text == "" {
		return []Run{}
	}

	parser := &inlineParser{src: text, memo: make(map[scopeKey]scopeState)}
	root := scopeKey{fresh: true}
	parser.solve(root)

	writer := &runWriter{}
	parser.collect(root, writer)
	writer.flush()
	return writer.runs
}

func (parser *inlineParser) solve(key scopeKey) scopeState {
	if state, ok := parser.memo[key]; ok {
		return state
	}
	state := parser.try(key)
	parser.memo[key] = state
	return state
}

func (parser *inlineParser) try(key scopeKey) scopeState {
	if key.pos >= len(parser.src) {
		return scopeState{ok: key.closer == "", end: key.pos, step: stepEnd}
	}
	rest := parser.src[key.pos:]

	if isEscape(rest) {
		return parser.continueAt(key, key.pos+2, stepEscape)
	}

	// Inside italic a "**" is a bold opener before it is a closer.
	if key.closer == "*" && !key.fresh {
		if state, ok := parser.nest(key, boldMarker); ok {
			return state
		}
	}

	if key.closer != "" && !key.fresh && strings.HasPrefix(rest, key.closer) {
		return scopeState{ok: true, end: key.pos + len(key.closer), step: stepClose}
	}

	for index := range markers {
		if state, ok := parser.nest(key, index); ok {
			return state
		}
	}

	return parser.continueAt(key, key.pos+1, stepLiteral)
}

// continueAt resumes the current scope at pos after consuming text.
func (parser *inlineParser) continueAt(key scopeKey, pos int, taken step) scopeState {
	rest := parser.solve(scopeKey{pos: pos, style: key.style, closer: key.closer})
	return scopeState{ok: rest.ok, end: rest.end, step: taken}
}

// nest opens markers[index] at key.pos when both the inner scope and the
// remainder of the current scope close.
func (parser *inlineParser) nest(key scopeKey, index int) (scopeState, bool) {
	candidate := markers[index]
	if key.style&candidate.flag != 0 || !strings.HasPrefix(parser.src[key.pos:], candidate.token) {
		return scopeState{}, false
	}

	inner := parser.solve(innerKey(key, candidate))
	if !inner.ok {
		return scopeState{}, false
	}
	rest := parser.solve(scopeKey{pos: inner.end, style: key.style, closer: key.closer})
	if !rest.ok {
		return scopeState{}, false
	}
	return scopeState{ok: true, end: rest.end, step: stepNested, marker: index}, true
}

// collect replays the choices recorded by solve into runs.
func (parser *inlineParser) collect(key scopeKey, writer *runWriter) {
	for {
		state := parser.solve(key)
		switch state.step {
		case stepEscape:
			writer.write(parser.src[key.pos+1], key.style)
			key = scopeKey{pos: key.pos + 2, style: key.style, closer: key.closer}
		case stepLiteral:
			writer.write(parser.src[key.pos], key.style)
			key = scopeKey{pos: key.pos + 1, style: key.style, closer: key.closer}
		case stepNested:
			inner := innerKey(key, markers[state.marker])
			parser.collect(inner, writer)
			key = scopeKey{pos: parser.solve(inner).end, style: key.style, closer: key.closer}
		default:
			return
		}
	}
}

func innerKey(key scopeKey, candidate marker) scopeKey {
	return scopeKey{
		pos:    key.pos + len(candidate.token),
		style:  key.style | candidate.flag,
		closer: candidate.token,
		fresh:  true,
	}
}

func isEscape(rest string) bool {
	return len(rest) > 1 && rest[0] == '\\' && strings.IndexByte(escapable, rest[1]) >= 0
}

// runWriter accumulates bytes into runs, starting a new run on style change.
type runWriter struct {
	runs  []Run
	text  strings.Builder
	style uint8
}

func (writer *runWriter) write(char byte, style uint8) {
	if writer.text.Len() > 0 && style != writer.style {
		writer.flush()
	}
	writer.style = style
	writer.text.WriteByte(char)
}

func (writer *runWriter) flush() {
	if writer.text.Len() == 0 {
		return
	}
	writer.runs = append(writer.runs, styledRun(writer.text.String(), writer.style))
	writer.text.Reset()
}

func styledRun(text string, style uint8) Run {
	return Run{
		Text:      text,
		Bold:      style&flagBold != 0,
		Italic:    style&flagItalic != 0,
		Underline: style&flagUnderline != 0,
	}
}

func styleOf(run Run) uint8 {
	var style uint8
	if run.Bold {
		style |= flagBold
	}
	if run.Italic {
		style |= flagItalic
	}
	if run.Underline {
		style |= flagUnderline
	}
	return style
}
