package conversation

import (
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/armanmujtaba/Trivanza/models"
)

// Keywords is the swappable topic policy. Entries ending in "*" match any
// token with that prefix, entries containing a space match as a phrase,
// anything else must equal a whole token. Places count as travel keywords.
type Keywords struct {
	Greetings []string `yaml:"greetings"`
	Fillers   []string `yaml:"fillers"`
	Travel    []string `yaml:"travel"`
	Places    []string `yaml:"places"`
	OffTopic  []string `yaml:"off_topic"`
}

// DefaultKeywords is the built-in topic policy.
var DefaultKeywords = Keywords{
	Greetings: []string{
		"hi", "hii", "hello", "hey", "heya", "hiya", "howdy", "greetings", "namaste",
		"hola", "yo", "morning", "afternoon", "evening", "sup",
	},
	Fillers: []string{
		"there", "good", "all", "trivanza", "team", "friend", "buddy", "bot",
		"assistant", "again", "everyone", "oh", "and",
	},
	Travel: []string{
		"trip*", "travel*", "flight*", "fly", "flying", "airport*", "airline*", "hotel*",
		"hostel*", "resort*", "airbnb", "homestay*", "stay", "staying", "itinerar*", "visa*",
		"passport*", "vacation*", "holiday*", "honeymoon*", "backpack*", "tour*", "sightsee*",
		"visit*", "destination*", "booking*", "book", "ticket*", "train*", "rail*", "bus",
		"buses", "taxi*", "cab", "cabs", "metro", "ferry", "cruise*", "road trip", "car rental",
		"beach*", "island*", "mountain*", "trek*", "hike", "hiking", "camping", "ski", "skiing",
		"museum*", "temple*", "landmark*", "attraction*", "food", "foods", "restaurant*",
		"cuisine*", "cafe*", "eat", "eating", "street food", "budget*", "currency", "currencies",
		"exchange rate", "packing", "pack", "luggage", "baggage", "weather", "safety", "safe",
		"weekend getaway", "getaway*", "explore", "exploring", "things to do", "best time to visit",
		"local transport", "nightlife", "souvenir*", "tourist*", "abroad", "overseas", "jet lag",
	},
	Places: []string{
		"europe", "asia", "africa", "america", "caribbean", "himalaya*",
		"india", "goa", "delhi", "mumbai", "kerala", "jaipur", "ladakh", "manali", "rishikesh", "sri lanka",
		"nepal", "kathmandu", "bhutan", "maldives", "dubai", "uae", "abu dhabi", "oman", "muscat", "qatar", "doha",
		"thailand", "bangkok", "phuket", "vietnam", "hanoi", "saigon", "ho chi minh", "bali", "indonesia",
		"cambodia", "singapore", "malaysia", "kuala lumpur", "japan", "tokyo", "kyoto", "osaka", "korea", "seoul",
		"china", "beijing", "shanghai", "hong kong",
		"paris", "france", "rome", "italy", "venice", "florence", "milan", "berlin", "germany", "amsterdam",
		"madrid", "barcelona", "spain", "prague", "vienna", "swiss", "switzerland", "greece", "athens", "santorini",
		"london", "uk", "england", "scotland", "ireland", "lisbon", "portugal", "iceland", "turkey", "istanbul",
		"egypt", "cairo", "morocco", "kenya", "safari", "usa", "united states", "new york", "california",
		"los angeles", "canada", "mexico", "peru", "brazil", "australia", "sydney", "melbourne", "new zealand",
	},
	OffTopic: []string{
		"algorithm*", "code", "coding", "program*", "python", "javascript", "java", "golang",
		"sql", "debug*", "compile*", "homework", "equation*", "calculus", "essay*", "poem*",
		"stock*", "crypto*", "bitcoin", "invest*", "sorting", "function", "regex",
	},
}

// Classifier routes free text to greeting, in-scope or out-of-scope
type Classifier struct {
	greetings map[string]bool
	fillers   map[string]bool
	travel    matcher
	offTopic  matcher
}

// NewClassifier compiles a keyword policy. places are extra destination
// names treated like kw.Places.
func NewClassifier(kw Keywords, places ...string) *Classifier {
	travel := make([]string, 0, len(kw.Travel)+len(kw.Places)+len(places))
	travel = append(travel, kw.Travel...)
	travel = append(travel, kw.Places...)
	travel = append(travel, places...)
	return &Classifier{
		greetings: toSet(kw.Greetings),
		fillers:   toSet(kw.Fillers),
		travel:    newMatcher(travel),
		offTopic:  newMatcher(kw.OffTopic),
	}
}

// Classify decides how a message is handled. Any travel keyword or place
// name makes a message in-scope even when off-topic markers are present.
// With an active
// trip, messages without any keyword are treated as
// follow-ups and stay in-scope; only a message that carries off-topic
// markers and no travel keyword is refused.
func (c *Classifier) Classify(text string, hasActiveTrip bool) models.Route {
	tokens := tokenize(text)
	if c.isGreeting(tokens) {
		return models.RouteGreeting
	}
	if c.travel.matches(tokens) {
		return models.RouteInScope
	}
	if hasActiveTrip && !c.offTopic.matches(tokens) {
		return models.RouteInScope
	}
	return models.RouteOutOfScope
}

func (c *Classifier) isGreeting(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	greeted := false
	for _, tok := range tokens {
		switch {
		case c.greetings[tok]:
			greeted = true
		case c.fillers[tok]:
		default:
			return false
		}
	}
	return greeted
}

type matcher struct {
	exact    map[string]bool
	prefixes []string
	phrases  []string
}

func newMatcher(entries []string) matcher {
	m := matcher{exact: map[string]bool{}}
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		switch {
		case e == "" || e == "*":
		case strings.Contains(e, " "):
			m.phrases = append(m.phrases, strings.Join(tokenize(e), " "))
		case strings.HasSuffix(e, "*"):
			m.prefixes = append(m.prefixes, strings.TrimSuffix(e, "*"))
		default:
			m.exact[e] = true
		}
	}
	return m
}

func (m matcher) matches(tokens []string) bool {
	if lo.SomeBy(tokens, func(tok string) bool {
		if m.exact[tok] {
			return true
		}
		return lo.SomeBy(m.prefixes, func(p string) bool { return strings.HasPrefix(tok, p) })
	}) {
		return true
	}
	if len(m.phrases) == 0 {
		return false
	}
	joined := " " + strings.Join(tokens, " ") + " "
	return lo.SomeBy(m.phrases, func(p string) bool {
		return strings.Contains(joined, " "+p+" ")
	})
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toSet(items []string) map[string]bool {
	return lo.SliceToMap(items, func(item string) (string, bool) {
		return strings.ToLower(strings.TrimSpace(item)), true
	})
}
