// Package prompt derives structured permission prompts from raw agent CLI
// terminal output. The detector is a heuristic classifier over a finite
// lookback window, not a full parser: its phrasing patterns and window
// bounds are a versioned contract backed by the golden scenarios in
// testdata.
package prompt

import (
	"regexp"
	"strings"
)

// Scan window bounds. Changing a phrasing pattern must preserve these.
const (
	// questionLookback is how many recent lines are searched for the
	// "proceed?" question, newest first.
	questionLookback = 30

	// footerWindow is how far past the question a footer phrase or cursor
	// marker must appear for the prompt to count as currently active.
	footerWindow = 15

	// optionWindow is how far past the question numbered options are
	// collected.
	optionWindow = 10

	// toolLookback is how far before the question the originating tool
	// invocation is searched for.
	toolLookback = 20

	// contextBefore is how many lines before the question are included in
	// the prompt context.
	contextBefore = 10

	// minOptions is the acceptance threshold: a real interactive choice
	// always offers at least two options.
	minOptions = 2
)

// UnknownTool is reported when no tool invocation precedes the question.
const UnknownTool = "Unknown"

var (
	// questionRe matches the interactive confirmation question. Both CLI
	// phrasings are accepted, case-insensitively.
	questionRe = regexp.MustCompile(`(?i)(?:do you want|would you like) to proceed\?`)

	// footerRe matches the prompt footer hints printed under the options.
	footerRe = regexp.MustCompile(`(?i)esc to cancel|press esc|tab to edit`)

	// cursorRe matches the selection cursor at the start of a line.
	cursorRe = regexp.MustCompile(`^\s*❯`)

	// optionRe matches a numbered option, with or without the cursor.
	optionRe = regexp.MustCompile(`^\s*(?:❯\s*)?(\d+)\.\s+(.+?)\s*$`)

	// bulletToolRe matches a bullet-prefixed tool invocation line.
	bulletToolRe = regexp.MustCompile(`^\s*[⏺●•*]\s+(.+?)\s*$`)

	// keywordToolRe matches known tool invocations at the start of a line.
	keywordToolRe = regexp.MustCompile(`^(?:Bash|Read|Edit|Write|Grep|Glob|WebFetch|WebSearch|Task|Fetch|Update|Create|Delete|NotebookEdit)\b`)
)

// Option is one numbered choice in a permission prompt.
type Option struct {
	Number string
	Label  string
}

// Prompt is a parsed interactive permission prompt. It is produced fresh
// from the caller's line window on every Detect call, never cached.
type Prompt struct {
	Tool    string
	Context string
	Options []Option
}

// Detect scans a window of recent output lines for a currently-active
// interactive permission prompt. Returns nil when no prompt is active.
//
// Callers pass the most recent buffered lines, oldest first, with
// terminators stripped.
func Detect(lines []string) *Prompt {
	n := len(lines)
	if n == 0 {
		return nil
	}

	// Find the question, scanning newest-first for recency bias.
	qIdx := -1
	floor := n - questionLookback
	if floor < 0 {
		floor = 0
	}
	for i := n - 1; i >= floor; i-- {
		if questionRe.MatchString(lines[i]) {
			qIdx = i
			break
		}
	}
	if qIdx < 0 {
		return nil
	}

	// Require a footer phrase or cursor marker shortly after the question.
	// A question with neither has scrolled past and is no longer active.
	active := false
	ceil := qIdx + footerWindow
	for i := qIdx + 1; i <= ceil && i < n; i++ {
		if footerRe.MatchString(lines[i]) || cursorRe.MatchString(lines[i]) {
			active = true
			break
		}
	}
	if !active {
		return nil
	}

	// Collect numbered options, stopping at the footer.
	var options []Option
	lastOption := qIdx
	ceil = qIdx + optionWindow
	for i := qIdx + 1; i <= ceil && i < n; i++ {
		if footerRe.MatchString(lines[i]) {
			break
		}
		if m := optionRe.FindStringSubmatch(lines[i]); m != nil {
			options = append(options, Option{Number: m[1], Label: m[2]})
			lastOption = i
		}
	}
	if len(options) < minOptions {
		return nil
	}

	return &Prompt{
		Tool:    findTool(lines, qIdx),
		Context: buildContext(lines, qIdx, lastOption),
		Options: options,
	}
}

// findTool scans backward from the question for the originating tool
// invocation: a bullet-prefixed identifier or a known tool keyword at the
// start of a line.
func findTool(lines []string, qIdx int) string {
	floor := qIdx - toolLookback
	if floor < 0 {
		floor = 0
	}
	for i := qIdx - 1; i >= floor; i-- {
		if m := bulletToolRe.FindStringSubmatch(lines[i]); m != nil {
			return m[1]
		}
		trimmed := strings.TrimSpace(lines[i])
		if keywordToolRe.MatchString(trimmed) {
			return trimmed
		}
	}
	return UnknownTool
}

// buildContext joins the lines from contextBefore lines ahead of the
// question through the last collected option.
func buildContext(lines []string, qIdx, lastOption int) string {
	start := qIdx - contextBefore
	if start < 0 {
		start = 0
	}
	return strings.TrimSpace(strings.Join(lines[start:lastOption+1], "\n"))
}

// Bypass warning fragments. Both must appear somewhere in the window.
var (
	warningFragment = "warning"
	bypassFragment  = "bypass permissions"
)

// DetectBypassWarning reports whether the window contains the agent CLI's
// bypass-permissions warning. It is a substring conjunction over the whole
// window, independent of the prompt parser.
func DetectBypassWarning(lines []string) bool {
	joined := strings.ToLower(strings.Join(lines, "\n"))
	return strings.Contains(joined, warningFragment) && strings.Contains(joined, bypassFragment)
}
