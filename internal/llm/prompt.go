package llm

import (
	"fmt"
	"strings"
)

// SpeechInput is the subset of a catalog speech the orchestrator needs to
// build prompts; callers trim the transcript to a 500-character excerpt
// before constructing this.
type SpeechInput struct {
	Title    string
	Date     string // empty when unknown
	Location string // empty when unknown
	Excerpt  string
}

const scriptSystemPrompt = `You write audio scripts assembled from archived political speeches. You work
from the excerpts given to you and do not invent facts, dates, or quotations that are not present in
the material.

RULES:
1. The script must be grounded only in the supplied material.
2. Write for the ear: short sentences, clear transitions, no bullet points or headings.
3. Include a brief open, the body content, and a brief close.
4. Output the script itself as plain spoken narration. No markdown, no headings, no JSON.`

func excerptBlock(speeches []SpeechInput) string {
	var b strings.Builder
	for i, s := range speeches {
		date := s.Date
		if date == "" {
			date = "unknown date"
		}
		location := s.Location
		if location == "" {
			location = "unknown location"
		}
		fmt.Fprintf(&b, "%d. %q (%s, %s)\n%s\n\n", i+1, s.Title, date, location, s.Excerpt)
	}
	return b.String()
}

// buildSingleUserPrompt assembles the one-shot prompt for the Single
// strategy: every speech's excerpt embedded directly.
func buildSingleUserPrompt(speeches []SpeechInput, style, duration string) string {
	return fmt.Sprintf(`<scratchpad>
Plan the script before writing it:
1. Identify the throughline across these speeches in chronological order.
2. Decide what belongs in the open, body, and close.
3. Target a script that would run approximately %s minutes when read aloud.
</scratchpad>

Write a script in a %s style from the following speeches.

SPEECHES:
%s`, durationOr(duration), styleOr(style), excerptBlock(speeches))
}

// buildBatchSummaryPrompt asks for a terse, bounded summary of one batch;
// used by the Batched strategy before the synthesis call.
func buildBatchSummaryPrompt(speeches []SpeechInput) string {
	return fmt.Sprintf(`Summarize the following speeches in 200 words or fewer. Note the throughline
across them, not each one individually. Do not invent facts.

SPEECHES:
%s`, excerptBlock(speeches))
}

// buildBatchSynthesisPrompt combines batch summaries into the final script.
func buildBatchSynthesisPrompt(summaries []string, style, duration string) string {
	var b strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&b, "BATCH %d SUMMARY:\n%s\n\n", i+1, s)
	}
	return fmt.Sprintf(`Write a script in a %s style, approximately %s minutes, synthesizing the
following batch summaries into one coherent narrative.

%s`, styleOr(style), durationOr(duration), b.String())
}

// buildAgentPrompt assembles the prompt for one swarm agent over its slice
// of speeches.
func buildAgentPrompt(p agentPersona, speeches []SpeechInput) string {
	return fmt.Sprintf(`You are acting as a %s. Focus: %s.

%s

SPEECHES:
%s`, p.Name, p.Focus, p.Instruction, excerptBlock(speeches))
}

// buildSwarmSynthesisPrompt combines the three agent analyses into the
// final script.
func buildSwarmSynthesisPrompt(analyses [3]string, style, duration string) string {
	return fmt.Sprintf(`Write a script in a %s style, approximately %s minutes, synthesizing these
three independent analyses of the same material into one coherent narrative.

CONTENT ANALYST NOTES:
%s

NARRATIVE DESIGNER NOTES:
%s

AUDIO PRODUCER NOTES:
%s`, styleOr(style), durationOr(duration), analyses[0], analyses[1], analyses[2])
}

func styleOr(style string) string {
	if style == "" {
		return "neutral, informative"
	}
	return style
}

func durationOr(duration string) string {
	if duration == "" {
		return "5"
	}
	return duration
}
