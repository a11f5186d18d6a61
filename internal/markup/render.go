// Copyright (c) 2026 PMR Atlas. All rights reserved.

package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var displayEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeForDisplay escapes &, < and > so stored text cannot inject markup.
func EscapeForDisplay(text string) string {
	return displayEscaper.Replace(text)
}

// outputPolicy admits only the elements RenderHTML produces.
var outputPolicy = func() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "ul", "ol", "li", "strong", "em", "u", "br")
	return policy
}()

/*
RenderHTML produces display HTML for a read-only view of a section.

Description: Each run's text is escaped before any tag is emitted, so stored
angle brackets are always shown as text. The result is filtered through an
allow-list policy as a final guard.
*/
func RenderHTML(markup string) string {
	var builder strings.Builder

	for _, block := range Decode(markup) {
		switch block.Kind {
		case Blank:
			builder.WriteString("<br>")
		case Paragraph:
			builder.WriteString("<p>")
			renderRuns(&builder, block.Runs)
			builder.WriteString("</p>")
		case List:
			tag := "ul"
			if block.List == Ordered {
				tag = "ol"
			}
			builder.WriteString("<" + tag + ">")
			for _, item := range block.Items {
				builder.WriteString("<li>")
				renderRuns(&builder, item)
				builder.WriteString("</li>")
			}
			builder.WriteString("</" + tag + ">")
		}
	}

	return outputPolicy.Sanitize(builder.String())
}

func renderRuns(builder *strings.Builder, runs []Run) {
	for _, run := range runs {
		text := EscapeForDisplay(run.Text)
		if run.Italic {
			text = "<em>" + text + "</em>"
		}
		if run.Bold {
			text = "<strong>" + text + "</strong>"
		}
		if run.Underline {
			text = "<u>" + text + "</u>"
		}
		builder.WriteString(text)
	}
}

// PlainText strips inline markers, keeping list prefixes. Used for previews.
func PlainText(markup string) string {
	lines := make([]string, 0)
	for _, block := range Decode(markup) {
		switch block.Kind {
		case Blank:
			lines = append(lines, "")
		case Paragraph:
			lines = append(lines, runsText(block.Runs))
		case List:
			for index, item := range block.Items {
				prefix := "- "
				if block.List == Ordered {
					prefix = strconv.Itoa(index+1) + ". "
				}
				lines = append(lines, prefix+runsText(item))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func runsText(runs []Run) string {
	var builder strings.Builder
	for _, run := range runs {
		builder.WriteString(run.Text)
	}
	return builder.String()
}

// # Inbound Sanitization

var (
	scriptBlock    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	inlineHandlers = regexp.MustCompile(`(?i)(<[^>]*?)\s+on\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
)

// Sanitize strips script blocks and event-handler attributes inside tags
// from inbound content. Everything else, including the markup grammar, is kept.
func Sanitize(text string) string {
	text = scriptBlock.ReplaceAllString(text, "")
	for inlineHandlers.MatchString(text) {
		text = inlineHandlers.ReplaceAllString(text, "$1")
	}
	return text
}
