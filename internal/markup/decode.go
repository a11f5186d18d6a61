// Copyright (c) 2026 PMR Atlas. All rights reserved.

package markup

import (
	"regexp"
	"strings"
)

var (
	unorderedItem = regexp.MustCompile(`^\s*[-•]\s+(.+)$`)
	orderedItem   = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)
)

/*
Decode parses stored markup into blocks.

Description: Works line by line. Consecutive items of the same list kind are
grouped into one list; a non-list line, a blank line or a switch of list kind
closes the open list. Decode never fails: malformed inline markers become
literal text. Carriage returns at line ends are dropped.

Parameters:
  - markup: string

Returns:
  - []Block: Empty for empty or whitespace-only input
*/
func Decode(markup string) []Block {
	if strings.TrimSpace(markup) == "" {
		return []Block{}
	}

	lines := strings.Split(markup, "\n")
	blocks := make([]Block, 0, len(lines))

	var open *Block
	flush := func() {
		if open != nil {
			blocks = append(blocks, *open)
			open = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			blocks = append(blocks, NewBlank())
			continue
		}

		kind, content, isItem := listItem(line)
		if !isItem {
			flush()
			blocks = append(blocks, NewParagraph(ParseInline(line)...))
			continue
		}

		if open != nil && open.List != kind {
			flush()
		}
		if open == nil {
			open = &Block{Kind: List, List: kind}
		}
		open.Items = append(open.Items, ParseInline(content))
	}
	flush()

	return blocks
}

// listItem classifies a line and returns the item content after the marker.
func listItem(line string) (ListKind, string, bool) {
	if match := unorderedItem.FindStringSubmatch(line); match != nil {
		return Unordered, match[1], true
	}
	if match := orderedItem.FindStringSubmatch(line); match != nil {
		return Ordered, match[1], true
	}
	return Unordered, "", false
}
