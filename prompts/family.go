package prompts

import (
	"fmt"
	"strings"
)

// Marker is the glyph that prefixes every line item of one category
type Marker struct {
	Category string `yaml:"category"`
	Glyph    string `yaml:"glyph"`
}

// Family is one canonical output structure for the assistant. Prompt
// variants are different Family values, not different code paths.
type Family struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Persona     string   `yaml:"persona"`
	Topics      []string `yaml:"topics"`
	Guidance    []string `yaml:"guidance"`
	OutputRules []string `yaml:"output_rules"`
	Markers     []Marker `yaml:"markers"`
	Closing     string   `yaml:"closing"`
}

// Glyphs returns the marker glyphs in declaration order
func (f Family) Glyphs() []string {
	glyphs := make([]string, 0, len(f.Markers))
	for _, m := range f.Markers {
		glyphs = append(glyphs, m.Glyph)
	}
	return glyphs
}

// Validate reports a family that cannot render a usable policy
func (f Family) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("template family has no name")
	}
	if strings.TrimSpace(f.Persona) == "" {
		return fmt.Errorf("template family %q has no persona", f.Name)
	}
	if len(f.Topics) == 0 {
		return fmt.Errorf("template family %q lists no allowed topics", f.Name)
	}
	for _, m := range f.Markers {
		if strings.TrimSpace(m.Glyph) == "" {
			return fmt.Errorf("template family %q has an empty marker for %q", f.Name, m.Category)
		}
	}
	return nil
}

var defaultMarkers = []Marker{
	{Category: "flights", Glyph: "✈️"},
	{Category: "lodging", Glyph: "🏨"},
	{Category: "food", Glyph: "🍽️"},
	{Category: "activities", Glyph: "🎯"},
	{Category: "local transport", Glyph: "🚕"},
	{Category: "safety", Glyph: "🛡️"},
	{Category: "costs", Glyph: "💰"},
	{Category: "packing", Glyph: "🧳"},
}

// ClassicFamily is the canonical day-by-day itinerary structure.
var ClassicFamily = Family{
	Name:    "classic",
	Version: "1",
	Persona: "You are TRIVANZA, a travel-specialized AI assistant. " +
		"You only respond to travel-related queries and do not entertain off-topic questions.",
	Topics: []string{
		"itinerary planning",
		"budget and currency conversion",
		"packing",
		"local logistics",
		"safety",
	},
	Guidance: []string{
		"Always include real estimated costs, day-by-day itineraries and booking links when relevant.",
		"Do not ask for travel details if the question is already specific.",
		"If the question is general, ask for origin, destination, travel dates, preferred transport, accommodation preferences, budget and currency, and specific activities.",
		"Redirect unrelated topics back to travel planning.",
	},
	OutputRules: []string{
		`Start each day with a heading of the form "Day N - <date>".`,
		"Put one item per line and begin every item with its category marker.",
		`End each day with a "Day subtotal:" line in the trip currency.`,
		`After the last day add a "Grand total:" line.`,
		"Add a packing checklist.",
		"Compare the planned spend with the stated budget.",
	},
	Markers: defaultMarkers,
	Closing: "Would you like me to change anything in this plan?",
}

// ConciseFamily keeps the same structure with shorter days and no checklist.
var ConciseFamily = Family{
	Name:    "concise",
	Version: "1",
	Persona: "You are TRIVANZA, a travel-specialized AI assistant that answers briefly. " +
		"You only respond to travel-related queries.",
	Topics: ClassicFamily.Topics,
	Guidance: []string{
		"Prefer three to five items per day.",
		"Give estimated costs for every item.",
	},
	OutputRules: []string{
		`Start each day with a heading of the form "Day N - <date>".`,
		"Put one item per line and begin every item with its category marker.",
		`End each day with a "Day subtotal:" line and finish with a "Grand total:" line.`,
		"Compare the planned spend with the stated budget in one sentence.",
	},
	Markers: defaultMarkers,
	Closing: "Want any changes?",
}

// DefaultFamilies indexes the built-in families by name
func DefaultFamilies() map[string]Family {
	return map[string]Family{
		ClassicFamily.Name: ClassicFamily,
		ConciseFamily.Name: ConciseFamily,
	}
}
