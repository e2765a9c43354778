package prompts

import (
	"strings"
	"unicode"
)

// RegionNote is a timezone hint chosen by keyword match on the destination.
// It is a presentation heuristic, not a geolocation lookup.
type RegionNote struct {
	Keywords []string `yaml:"keywords"`
	Note     string   `yaml:"note"`
}

// DefaultRegionNote is used when no keyword matches
const DefaultRegionNote = "Times are local to the destination."

// DefaultRegions is checked in order; the first match wins.
var DefaultRegions = []RegionNote{
	{Keywords: []string{"europe", "paris", "rome", "berlin", "amsterdam", "madrid", "prague", "vienna", "swiss", "switzerland"},
		Note: "Approximately Central European Time (UTC+1, UTC+2 in summer)."},
	{Keywords: []string{"london", "united kingdom", "uk", "england", "scotland", "ireland", "lisbon", "portugal"},
		Note: "Approximately Greenwich Mean Time (UTC+0, UTC+1 in summer)."},
	{Keywords: []string{"japan", "tokyo", "kyoto", "osaka", "korea", "seoul"},
		Note: "Approximately Japan/Korea Standard Time (UTC+9)."},
	{Keywords: []string{"vietnam", "hanoi", "saigon", "ho chi minh", "thailand", "bangkok", "phuket", "bali", "indonesia", "cambodia"},
		Note: "Approximately Indochina Time (UTC+7); Bali is UTC+8."},
	{Keywords: []string{"dubai", "uae", "abu dhabi", "oman", "muscat"},
		Note: "Approximately Gulf Standard Time (UTC+4)."},
	{Keywords: []string{"india", "goa", "delhi", "mumbai", "kerala", "jaipur", "sri lanka"},
		Note: "Approximately India Standard Time (UTC+5:30)."},
	{Keywords: []string{"usa", "united states", "north america", "new york", "california", "los angeles", "canada"},
		Note: "North American time zones range roughly from UTC-5 to UTC-8."},
	{Keywords: []string{"australia", "sydney", "melbourne"},
		Note: "Approximately Australian Eastern Time (UTC+10, UTC+11 in summer)."},
}

// RegionNoteFor returns the note of the first region with a keyword that
// appears in destination as a whole word or phrase.
func RegionNoteFor(regions []RegionNote, destination string) string {
	haystack := " " + strings.Join(words(destination), " ") + " "
	for _, region := range regions {
		for _, kw := range region.Keywords {
			needle := strings.Join(words(kw), " ")
			if needle != "" && strings.Contains(haystack, " "+needle+" ") {
				return region.Note
			}
		}
	}
	return DefaultRegionNote
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
