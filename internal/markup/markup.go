// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package markup converts between the stored lightweight markup of a section
and a structured block representation used by editing surfaces.

Grammar:

  - Paragraph: any non-empty line that is not a list item.
  - Unordered list item: a line starting with "-" or "•" followed by whitespace.
  - Ordered list item: a line starting with digits, a dot and whitespace.
  - Blank: an empty or whitespace-only line.
  - Inline: **bold**, *italic*, __underline__, nestable. A backslash keeps
    the next "*", "_" or backslash literal.

The codec is pure and safe for concurrent use. Stored text is always markup;
display rendering goes through [RenderHTML], which escapes before it emits tags.
*/
package markup

// # Blocks

// BlockKind discriminates the block variants.
type BlockKind int

const (
	Paragraph BlockKind = iota
	List
	Blank
)

// ListKind says how list items are numbered.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

// Run is a span of plain text with uniform formatting.
type Run struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// sameStyle reports whether two runs carry identical flags.
func (run Run) sameStyle(other Run) bool {
	return run.Bold == other.Bold && run.Italic == other.Italic && run.Underline == other.Underline
}

// Block is one structural unit of a section.
//
// Runs is set for paragraphs. List and Items are set for lists; each item
// is its own run sequence. Blank blocks carry nothing.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Runs  []Run     `json:"runs,omitempty"`
	List  ListKind  `json:"list,omitempty"`
	Items [][]Run   `json:"items,omitempty"`
}

// NewParagraph builds a paragraph block from runs.
func NewParagraph(runs ...Run) Block {
	return Block{Kind: Paragraph, Runs: runs}
}

// NewList builds a list block.
func NewList(kind ListKind, items ...[]Run) Block {
	return Block{Kind: List, List: kind, Items: items}
}

// NewBlank builds a blank-line block.
func NewBlank() Block {
	return Block{Kind: Blank}
}

// Plain returns a single unformatted run.
func Plain(text string) []Run {
	return []Run{{Text: text}}
}

// mergeRuns drops empty runs and joins neighbours that share a style.
func mergeRuns(runs []Run) []Run {
	merged := make([]Run, 0, len(runs))
	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		if last := len(merged) - 1; last >= 0 && merged[last].sameStyle(run) {
			merged[last].Text += run.Text
			continue
		}
		merged = append(merged, run)
	}
	return merged
}
