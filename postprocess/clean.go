// Package postprocess tidies raw completion text for display. Cleaning is a
// pure string transform; it fixes common malformations and makes no promise
// that the result is well formed.
package postprocess

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// variationSelector is dropped from glyphs so both emoji and text
// presentation match
const variationSelector = "\uFE0F"

// minEchoLen keeps short phrases from being stripped as echoes
const minEchoLen = 24

var (
	shorthandLink = regexp.MustCompile(`\[([^\[\]:\n]+?):\s*((?:https?://|www\.)[^\s\]]+)\]`)
	blankRun      = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
)

// Cleaner applies the display rules in order: marker line breaks, shorthand
// links, blank-line collapse, echo removal
type Cleaner struct {
	glyphs []string
	echoes []string
}

// NewCleaner builds a cleaner for the given category glyphs. echoes are
// texts the model must not repeat back, usually the system policy.
func NewCleaner(glyphs []string, echoes ...string) *Cleaner {
	c := &Cleaner{}
	for _, g := range glyphs {
		g = strings.TrimSpace(strings.ReplaceAll(g, variationSelector, ""))
		if g != "" {
			c.glyphs = append(c.glyphs, g)
		}
	}
	c.echoes = c.needles(nil, echoes)
	return c
}

// needles adds each echo, raw and as format would render it, to base
func (c *Cleaner) needles(base []string, echoes []string) []string {
	out := append([]string(nil), base...)
	for _, e := range echoes {
		raw := normalizeNewlines(strings.TrimSpace(e))
		for _, needle := range []string{raw, c.format(raw)} {
			if utf8.RuneCountInString(needle) < minEchoLen || slices.Contains(out, needle) {
				continue
			}
			out = append(out, needle)
		}
	}
	return out
}

// Clean runs the rules until the text stops changing, so that
// Clean(Clean(x)) == Clean(x). echoes are per-call texts stripped like the
// ones given to NewCleaner, typically the prompt that produced raw.
//
// The loop ends: a pass that changes the text either removes an echo or
// whitespace, or breaks a marker line, and a marker is only broken once.
func (c *Cleaner) Clean(raw string, echoes ...string) string {
	needles := c.echoes
	if len(echoes) > 0 {
		needles = c.needles(c.echoes, echoes)
	}
	out := c.pass(raw, needles)
	for {
		next := c.pass(out, needles)
		if next == out {
			return out
		}
		out = next
	}
}

func (c *Cleaner) pass(s string, needles []string) string {
	s = c.format(normalizeNewlines(s))
	s = strip(s, needles)
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// strip removes needles until none is left, so an echo exposed by removing
// another one goes too
func strip(s string, needles []string) string {
	for {
		before := len(s)
		for _, needle := range needles {
			s = strings.ReplaceAll(s, needle, "")
		}
		if len(s) == before {
			return s
		}
	}
}

// format applies the first three rules
func (c *Cleaner) format(s string) string {
	s = c.breakMarkers(s)
	s = shorthandLink.ReplaceAllString(s, "[$1]($2)")
	return blankRun.ReplaceAllString(s, "\n\n")
}

// breakMarkers starts a new line before any marker glyph that has other
// text before it on its line. List bullets and indentation count as line
// start.
func (c *Cleaner) breakMarkers(s string) string {
	if len(c.glyphs) == 0 {
		return s
	}
	out := make([]byte, 0, len(s)+16)
	lineStart := 0
	for i := 0; i < len(s); {
		if s[i] == '\n' {
			out = append(out, '\n')
			lineStart = len(out)
			i++
			continue
		}
		if g := c.glyphAt(s, i); g != "" {
			if !bulletOnly(string(out[lineStart:])) {
				out = []byte(strings.TrimRight(string(out), " \t"))
				out = append(out, '\n')
				lineStart = len(out)
			}
			out = append(out, g...)
			i += len(g)
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		out = append(out, s[i:i+size]...)
		i += size
	}
	return string(out)
}

func (c *Cleaner) glyphAt(s string, i int) string {
	for _, g := range c.glyphs {
		if strings.HasPrefix(s[i:], g) {
			return g
		}
	}
	return ""
}

// bulletOnly reports whether a line prefix is blank or just a list marker
func bulletOnly(prefix string) bool {
	p := strings.TrimSpace(prefix)
	switch p {
	case "", "-", "*", "+", "•":
		return true
	}
	digits := strings.TrimRight(p, ".)")
	if len(digits) == len(p) || len(p)-len(digits) != 1 || digits == "" {
		return false
	}
	return strings.Trim(digits, "0123456789") == ""
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
