package llm

import (
	"regexp"
	"strings"
)

var scratchpadRe = regexp.MustCompile(`(?s)<scratchpad>.*?</scratchpad>`)

// stripScratchpad removes the planning block models sometimes echo back
// even when only asked for the final script text.
func stripScratchpad(text string) string {
	return scratchpadRe.ReplaceAllString(text, "")
}

var fenceRe = regexp.MustCompile("(?s)^\\s*```(?:\\w+)?\\s*\n?(.*?)\n?```\\s*$")

// stripMarkdownFences unwraps a single fenced code block if the whole
// response is wrapped in one; left alone otherwise since the script is
// stored verbatim and formatting is not validated.
func stripMarkdownFences(text string) string {
	if matches := fenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

// cleanScriptText is the one normalization pass applied to every provider
// response before it is treated as script text: strip a stray scratchpad
// block, unwrap a single markdown fence, trim surrounding whitespace.
func cleanScriptText(text string) string {
	text = stripScratchpad(text)
	text = stripMarkdownFences(text)
	return strings.TrimSpace(text)
}
