// Package prompts renders trip requests and chat messages into the exact
// instruction text sent to the completion endpoint. Rendering is pure: the
// same input and family always produce byte-identical output.
package prompts

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/armanmujtaba/Trivanza/models"
)

// Enrichment is optional data fetched from auxiliary lookups. Empty fields
// are rendered as their documented fallbacks.
type Enrichment struct {
	Weather      string
	Timezone     string
	ExchangeRate string
}

const (
	FallbackWeather      = "Weather data unavailable; advise the traveller to check a forecast before departure."
	FallbackExchangeRate = "Live exchange rate unavailable; use a recent typical rate and say so."
)

// Assembler renders prompts for one template family
type Assembler struct {
	family  Family
	tiers   TierTable
	regions []RegionNote
	printer *message.Printer
}

// NewAssembler validates the family and tier table and returns an assembler
func NewAssembler(family Family, tiers TierTable, regions []RegionNote) (*Assembler, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	if regions == nil {
		regions = DefaultRegions
	}
	return &Assembler{
		family:  family,
		tiers:   tiers,
		regions: regions,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Family returns the template family in use
func (a *Assembler) Family() Family {
	return a.family
}

// Tiers returns the budget tier table in use
func (a *Assembler) Tiers() TierTable {
	return a.tiers
}

// SystemPolicy renders the fixed policy text of the family
func (a *Assembler) SystemPolicy() string {
	f := a.family
	var b strings.Builder

	b.WriteString(f.Persona)
	fmt.Fprintf(&b, "\nPolicy: %s/%s\n", f.Name, f.Version)

	b.WriteString("\nAllowed topics:\n")
	for _, topic := range f.Topics {
		fmt.Fprintf(&b, "- %s\n", topic)
	}
	b.WriteString("Politely decline anything outside these topics and steer the user back to travel planning.\n")

	if len(f.Guidance) > 0 {
		b.WriteString("\nGuidance:\n")
		for _, g := range f.Guidance {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}

	b.WriteString("\nOutput format:\n")
	n := 1
	for _, rule := range f.OutputRules {
		fmt.Fprintf(&b, "%d. %s\n", n, rule)
		n++
	}
	if len(f.Markers) > 0 {
		markers := make([]string, 0, len(f.Markers))
		for _, m := range f.Markers {
			markers = append(markers, fmt.Sprintf("%s %s", m.Glyph, m.Category))
		}
		fmt.Fprintf(&b, "%d. Category markers: %s.\n", n, strings.Join(markers, ", "))
		n++
	}
	if f.Closing != "" {
		fmt.Fprintf(&b, "%d. Close by asking: %q\n", n, f.Closing)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TripPrompt renders a validated trip request into the planning prompt
func (a *Assembler) TripPrompt(req models.TripRequest, enrich *Enrichment) string {
	var b strings.Builder
	days := TripDays(req.StartDate, req.EndDate)
	dates := TripDates(req.StartDate, req.EndDate)

	b.WriteString("Plan a trip with the following details.\n\n")
	fmt.Fprintf(&b, "Origin: %s\n", req.Origin)
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Dates: %s (%d %s)\n", formatRange(req.StartDate, req.EndDate), days, plural(days, "day", "days"))
	fmt.Fprintf(&b, "Travellers: %s, group of %d\n", req.TravelerType, req.GroupSize)
	fmt.Fprintf(&b, "Budget: %s total, %s tier\n", a.money(req.CurrencyCode, req.BudgetAmount), req.BudgetTier)
	if req.BudgetDefaulted {
		b.WriteString("Note: the traveller's budget could not be read; this is a default estimate, mention that it can be adjusted.\n")
	}
	fmt.Fprintf(&b, "Transport: %s\n", req.TransportMode)
	writeList(&b, "Accommodation", req.AccommodationPreferences)
	writeList(&b, "Dietary preferences", req.DietaryPreferences)
	writeList(&b, "Interests", req.Interests)
	if req.Activities != "" {
		fmt.Fprintf(&b, "Requested activities: %s\n", req.Activities)
	}
	fmt.Fprintf(&b, "Sustainability preference: %s\n", req.SustainabilityPreference)
	fmt.Fprintf(&b, "Cultural sensitivity: %s\n", req.CulturalSensitivity)

	b.WriteString("\nCalendar:\n")
	for i, d := range dates {
		fmt.Fprintf(&b, "Day %d - %s\n", i+1, formatDay(d))
	}

	b.WriteString("\nBudget allocation:\n")
	for _, alloc := range a.tiers.Allocate(req.BudgetAmount, req.BudgetTier) {
		fmt.Fprintf(&b, "- %s: %d%% (%s)\n", alloc.Category, alloc.Percent, a.money(req.CurrencyCode, alloc.Amount))
	}

	b.WriteString("\nLocal context:\n")
	fmt.Fprintf(&b, "- Time zone: %s\n", a.timezoneNote(req.Destination, enrich))
	weather, rate := FallbackWeather, FallbackExchangeRate
	if enrich != nil && enrich.Weather != "" {
		weather = enrich.Weather
	}
	if enrich != nil && enrich.ExchangeRate != "" {
		rate = enrich.ExchangeRate
	}
	fmt.Fprintf(&b, "- Weather: %s\n", weather)
	fmt.Fprintf(&b, "- Exchange rate: %s\n", rate)

	fmt.Fprintf(&b, "\nWrite one section per calendar day above, keep every cost in %s, and follow the output format from your instructions.", req.CurrencyCode)
	return b.String()
}

// ChatPrompt renders a free-text message, prefixed with the active trip when
// the conversation has one
func (a *Assembler) ChatPrompt(text string, active *models.TripRequest) string {
	text = strings.TrimSpace(text)
	if active == nil {
		return text
	}
	days := TripDays(active.StartDate, active.EndDate)
	return fmt.Sprintf("Active trip: %s to %s, %s (%d %s), %s group of %d, budget %s (%s tier).\n\nQuestion: %s",
		active.Origin, active.Destination,
		formatRange(active.StartDate, active.EndDate), days, plural(days, "day", "days"),
		active.TravelerType, active.GroupSize,
		a.money(active.CurrencyCode, active.BudgetAmount), active.BudgetTier,
		text)
}

// TripSummary is the short user turn recorded for a form submission
func (a *Assembler) TripSummary(req models.TripRequest) string {
	days := TripDays(req.StartDate, req.EndDate)
	return fmt.Sprintf("Plan a %d-day trip from %s to %s (%s) for %d, budget %s.",
		days, req.Origin, req.Destination,
		formatRange(req.StartDate, req.EndDate), req.GroupSize,
		a.money(req.CurrencyCode, req.BudgetAmount))
}

func (a *Assembler) timezoneNote(destination string, enrich *Enrichment) string {
	if enrich != nil && enrich.Timezone != "" {
		return fmt.Sprintf("%s (looked up from the destination's coordinates).", enrich.Timezone)
	}
	return RegionNoteFor(a.regions, destination)
}

func (a *Assembler) money(code string, amount float64) string {
	return a.printer.Sprintf("%s %.2f", code, amount)
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: no preference\n", label)
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(items, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
