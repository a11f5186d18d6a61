// Copyright (c) 2026 PMR Atlas. All rights reserved.

package markup

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// maxBlankRun is the longest run of blank lines Encode emits.
const maxBlankRun = 2

// searchBudget bounds the nestings EncodeInline tries once the fixed
// layouts fail.
const searchBudget = 256

// wrapOrder is the canonical nesting: underline outermost, italic innermost.
var wrapOrder = []uint8{flagUnderline, flagBold, flagItalic}

var textEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`)

/*
Encode serializes blocks back into markup.

Description: Paragraphs and list items take one line each; unordered items
are written as "- ", ordered items as "N. " numbered from 1 within their
list. Three or more consecutive blank blocks collapse to two. Blocks that
hold only blank lines encode to "", which decodes to no blocks.

Parameters:
  - blocks: []Block

Returns:
  - string: Markup without a trailing newline
*/
func Encode(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	blankRun := 0

	for _, block := range blocks {
		if block.Kind == Blank {
			blankRun++
			if blankRun <= maxBlankRun {
				lines = append(lines, "")
			}
			continue
		}
		blankRun = 0

		switch block.Kind {
		case Paragraph:
			lines = append(lines, EncodeInline(block.Runs))
		case List:
			for index, item := range block.Items {
				lines = append(lines, itemPrefix(block.List, index)+EncodeInline(item))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// layout writes merged runs as one line of markup.
type layout func(runs []Run, escape bool) string

/*
EncodeInline writes runs as inline markup that parses back to the same runs.

Description: Candidate layouts are tried from the most readable to the most
explicit and the first one ParseInline reproduces is kept. Text is written
verbatim first; marker characters in text are backslash-escaped only when
the verbatim forms are ambiguous. Dense marker sequences fall through to a
bounded search over nestings.
*/
func EncodeInline(runs []Run) string {
	runs = mergeRuns(runs)
	if len(runs) == 0 {
		return ""
	}

	layouts := []layout{nestedByReach, nestedCanonical, flatLayout}
	for _, escape := range []bool{false, true} {
		for _, write := range layouts {
			encoded := write(runs, escape)
			if slices.Equal(ParseInline(encoded), runs) {
				return encoded
			}
		}
	}
	if encoded, ok := searchLayout(runs, searchBudget); ok {
		return encoded
	}
	return flatLayout(runs, true)
}

// Normalize round-trips markup through the codec.
func Normalize(markup string) string {
	return Encode(Decode(markup))
}

// flatLayout wraps every run in its own markers.
func flatLayout(runs []Run, escape bool) string {
	var builder strings.Builder
	for _, run := range runs {
		open, close := wrappers(run)
		builder.WriteString(open)
		builder.WriteString(runText(run.Text, escape))
		builder.WriteString(close)
	}
	return builder.String()
}

// nestedByReach keeps markers open across runs that share them, opening the
// longest-lived marker outermost.
func nestedByReach(runs []Run, escape bool) string {
	return nestedLayout(runs, escape, true)
}

// nestedCanonical keeps markers open across runs, opening in wrap order.
func nestedCanonical(runs []Run, escape bool) string {
	return nestedLayout(runs, escape, false)
}

func nestedLayout(runs []Run, escape, byReach bool) string {
	var builder strings.Builder
	var open []uint8
	var held uint8

	for index, run := range runs {
		style := styleOf(run)
		for held&^style != 0 {
			last := len(open) - 1
			builder.WriteString(tokenOf(open[last]))
			held &^= open[last]
			open = open[:last]
		}

		var fresh []uint8
		for _, flag := range wrapOrder {
			if style&flag != 0 && held&flag == 0 {
				fresh = append(fresh, flag)
			}
		}
		if byReach {
			sort.SliceStable(fresh, func(a, b int) bool {
				return reach(runs, index, fresh[a]) > reach(runs, index, fresh[b])
			})
		}
		for _, flag := range fresh {
			builder.WriteString(tokenOf(flag))
			held |= flag
			open = append(open, flag)
		}

		builder.WriteString(runText(run.Text, escape))
	}

	for last := len(open) - 1; last >= 0; last-- {
		builder.WriteString(tokenOf(open[last]))
	}
	return builder.String()
}

// # Nesting Search

// nestingStep is how one run changes the open markers: keep the outermost
// keep markers, then open push in order.
type nestingStep struct {
	keep int
	push []uint8
}

type nestingOption struct {
	step nestingStep
	open []uint8
}

type layoutSearch struct {
	runs   []Run
	plan   []nestingStep
	budget int
}

// searchLayout walks nestings depth first with escaped text.
func searchLayout(runs []Run, budget int) (string, bool) {
	search := &layoutSearch{runs: runs, plan: make([]nestingStep, len(runs)), budget: budget}
	return search.walk(0, nil)
}

func (search *layoutSearch) walk(index int, open []uint8) (string, bool) {
	if index == len(search.runs) {
		search.budget--
		encoded := search.render()
		return encoded, slices.Equal(ParseInline(encoded), search.runs)
	}

	for _, option := range nestingOptions(search.runs, index, open) {
		if search.budget <= 0 {
			return "", false
		}
		search.plan[index] = option.step
		if encoded, ok := search.walk(index+1, option.open); ok {
			return encoded, true
		}
	}
	return "", false
}

func (search *layoutSearch) render() string {
	var builder strings.Builder
	var open []uint8
	for index, run := range search.runs {
		step := search.plan[index]
		for len(open) > step.keep {
			last := len(open) - 1
			builder.WriteString(tokenOf(open[last]))
			open = open[:last]
		}
		for _, flag := range step.push {
			builder.WriteString(tokenOf(flag))
			open = append(open, flag)
		}
		builder.WriteString(runText(run.Text, true))
	}
	for last := len(open) - 1; last >= 0; last-- {
		builder.WriteString(tokenOf(open[last]))
	}
	return builder.String()
}

// nestingOptions lists the ways run index can be opened given the markers
// already open, keeping as many as possible first.
func nestingOptions(runs []Run, index int, open []uint8) []nestingOption {
	style := styleOf(runs[index])

	maxKeep := 0
	for maxKeep < len(open) && style&open[maxKeep] != 0 {
		maxKeep++
	}

	var options []nestingOption
	for keep := maxKeep; keep >= 0; keep-- {
		var held uint8
		for _, flag := range open[:keep] {
			held |= flag
		}
		var fresh []uint8
		for _, flag := range wrapOrder {
			if style&flag != 0 && held&flag == 0 {
				fresh = append(fresh, flag)
			}
		}

		orders := permutations(fresh)
		sort.SliceStable(orders, func(a, b int) bool {
			return outlives(runs, index, orders[a], orders[b])
		})
		for _, push := range orders {
			next := append(slices.Clone(open[:keep]), push...)
			options = append(options, nestingOption{step: nestingStep{keep: keep, push: push}, open: next})
		}
	}
	return options
}

// outlives orders pushes whose leading markers reach further first.
func outlives(runs []Run, index int, left, right []uint8) bool {
	for position := range left {
		leftReach, rightReach := reach(runs, index, left[position]), reach(runs, index, right[position])
		if leftReach != rightReach {
			return leftReach > rightReach
		}
	}
	return false
}

func permutations(flags []uint8) [][]uint8 {
	if len(flags) <= 1 {
		return [][]uint8{slices.Clone(flags)}
	}
	var result [][]uint8
	for index, flag := range flags {
		rest := append(slices.Clone(flags[:index]), flags[index+1:]...)
		for _, tail := range permutations(rest) {
			result = append(result, append([]uint8{flag}, tail...))
		}
	}
	return result
}

// reach returns the index of the first run from start that lacks flag.
func reach(runs []Run, start int, flag uint8) int {
	index := start
	for index < len(runs) && styleOf(runs[index])&flag != 0 {
		index++
	}
	return index
}

func runText(text string, escape bool) string {
	if escape {
		return textEscaper.Replace(text)
	}
	return text
}

func tokenOf(flag uint8) string {
	for _, candidate := range markers {
		if candidate.flag == flag {
			return candidate.token
		}
	}
	return ""
}

func wrappers(run Run) (string, string) {
	style := styleOf(run)
	var open, close string
	for _, flag := range wrapOrder {
		if style&flag != 0 {
			open += tokenOf(flag)
			close = tokenOf(flag) + close
		}
	}
	return open, close
}

func itemPrefix(kind ListKind, index int) string {
	if kind == Ordered {
		return strconv.Itoa(index+1) + ". "
	}
	return "- "
}
