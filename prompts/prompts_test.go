package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armanmujtaba/Trivanza/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleTrip() models.TripRequest {
	return models.TripRequest{
		Origin:                   "Mumbai",
		Destination:              "Hanoi, Vietnam",
		StartDate:                date("2025-08-01"),
		EndDate:                  date("2025-08-05"),
		TravelerType:             models.TravelerCouple,
		GroupSize:                2,
		BudgetAmount:             100000,
		CurrencyCode:             "INR",
		BudgetTier:               models.TierMid,
		AccommodationPreferences: []string{"hotel"},
		TransportMode:            models.TransportFlight,
		Interests:                []string{"food", "culture"},
		SustainabilityPreference: models.SustainabilityPrefer,
		CulturalSensitivity:      models.CultureHigh,
	}
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(ClassicFamily, DefaultTiers, DefaultRegions)
	require.NoError(t, err)
	return a
}

func TestTripDaysAndDates(t *testing.T) {
	start, end := date("2025-08-01"), date("2025-08-05")

	assert.Equal(t, 5, TripDays(start, end))
	dates := TripDates(start, end)
	require.Len(t, dates, 5)
	for i, d := range dates {
		assert.Equal(t, time.August, d.Month())
		assert.Equal(t, i+1, d.Day())
	}

	assert.Equal(t, 1, TripDays(start, start))
	assert.Equal(t, 0, TripDays(end, start))
}

func TestTripDays_CrossesMonthAndIgnoresClock(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2025, time.January, 30, 23, 30, 0, 0, loc)
	end := time.Date(2025, time.February, 2, 0, 15, 0, 0, loc)

	assert.Equal(t, 4, TripDays(start, end))
	dates := TripDates(start, end)
	assert.Equal(t, time.February, dates[len(dates)-1].Month())
	assert.Equal(t, 2, dates[len(dates)-1].Day())
}

func TestTierSplitsSumToHundred(t *testing.T) {
	require.NoError(t, DefaultTiers.Validate())
	for _, tier := range []models.BudgetTier{models.TierBudget, models.TierMid, models.TierLuxury} {
		t.Run(string(tier), func(t *testing.T) {
			total := 0
			for _, a := range DefaultTiers.Split(tier).Allocations() {
				total += a.Percent
			}
			assert.Equal(t, 100, total)
		})
	}
}

func TestAllocate_MidTier(t *testing.T) {
	allocs := DefaultTiers.Allocate(100000, models.TierMid)
	require.Len(t, allocs, 6)

	percent, amount := 0, 0.0
	for _, a := range allocs {
		percent += a.Percent
		amount += a.Amount
	}
	assert.Equal(t, 100, percent)
	assert.InDelta(t, 100000, amount, 0.001)
	assert.Equal(t, CategoryFlights, allocs[0].Category)
	assert.InDelta(t, 30000, allocs[0].Amount, 0.001)

	want := []int{30, 25, 20, 15, 10, 0}
	for i, a := range allocs {
		assert.Equal(t, want[i], a.Percent, a.Category)
	}
}

func TestAllocate_RemainderLandsInContingency(t *testing.T) {
	allocs := DefaultTiers.Allocate(999.99, models.TierLuxury)
	sum := 0.0
	for _, a := range allocs {
		sum += a.Amount
	}
	assert.InDelta(t, 999.99, sum, 0.0001)
}

func TestTierTableValidate(t *testing.T) {
	broken := TierTable{
		models.TierBudget: DefaultTiers[models.TierBudget],
		models.TierMid:    {Flights: 50, Lodging: 50, Food: 10},
		models.TierLuxury: DefaultTiers[models.TierLuxury],
	}
	assert.Error(t, broken.Validate())

	missing := TierTable{models.TierMid: DefaultTiers[models.TierMid]}
	assert.Error(t, missing.Validate())
}

func TestSplit_UnknownTierFallsBackToMid(t *testing.T) {
	assert.Equal(t, DefaultTiers[models.TierMid], DefaultTiers.Split("ultra"))
}

func TestTripPrompt_IsDeterministic(t *testing.T) {
	a := newTestAssembler(t)
	trip := sampleTrip()
	enrich := &Enrichment{Weather: "31°C, light rain", ExchangeRate: "1 INR = 300 VND"}

	first := a.TripPrompt(trip, enrich)
	second := a.TripPrompt(trip, enrich)
	assert.Equal(t, first, second)

	other, err := NewAssembler(ClassicFamily, DefaultTiers, DefaultRegions)
	require.NoError(t, err)
	assert.Equal(t, first, other.TripPrompt(trip, enrich))
}

func TestTripPrompt_Content(t *testing.T) {
	a := newTestAssembler(t)
	prompt := a.TripPrompt(sampleTrip(), nil)

	assert.Contains(t, prompt, "Origin: Mumbai")
	assert.Contains(t, prompt, "Destination: Hanoi, Vietnam")
	assert.Contains(t, prompt, "2025-08-01 to 2025-08-05 (5 days)")
	assert.Contains(t, prompt, "Day 1 - Fri 01 Aug 2025")
	assert.Contains(t, prompt, "Day 5 - Tue 05 Aug 2025")
	assert.NotContains(t, prompt, "Day 6")
	assert.Contains(t, prompt, "- Flights: 30%")
	assert.Contains(t, prompt, "- Local transport: 10%")
	assert.Contains(t, prompt, "- Contingency: 0%")
	assert.Contains(t, prompt, "Indochina Time")
	assert.Contains(t, prompt, FallbackWeather)
	assert.Contains(t, prompt, FallbackExchangeRate)
	assert.Contains(t, prompt, "Dietary preferences: no preference")
	assert.NotContains(t, prompt, "could not be read")
}

func TestTripPrompt_FlagsDefaultedBudget(t *testing.T) {
	a := newTestAssembler(t)
	trip := sampleTrip()
	trip.BudgetDefaulted = true

	assert.Contains(t, a.TripPrompt(trip, nil), "could not be read")
}

func TestTripPrompt_PrefersLookedUpTimezone(t *testing.T) {
	a := newTestAssembler(t)
	prompt := a.TripPrompt(sampleTrip(), &Enrichment{Timezone: "Asia/Bangkok"})

	assert.Contains(t, prompt, "Time zone: Asia/Bangkok")
	assert.NotContains(t, prompt, "Indochina Time")
}

func TestChatPrompt(t *testing.T) {
	a := newTestAssembler(t)

	assert.Equal(t, "best street food in Hanoi", a.ChatPrompt("  best street food in Hanoi ", nil))

	trip := sampleTrip()
	withContext := a.ChatPrompt("what should I pack?", &trip)
	assert.True(t, strings.HasPrefix(withContext, "Active trip: Mumbai to Hanoi, Vietnam"))
	assert.True(t, strings.HasSuffix(withContext, "Question: what should I pack?"))
	assert.Equal(t, withContext, a.ChatPrompt("what should I pack?", &trip))
}

func TestSystemPolicy(t *testing.T) {
	a := newTestAssembler(t)
	policy := a.SystemPolicy()

	assert.Equal(t, policy, a.SystemPolicy())
	assert.Contains(t, policy, "Policy: classic/1")
	for _, topic := range ClassicFamily.Topics {
		assert.Contains(t, policy, "- "+topic)
	}
	assert.Contains(t, policy, "Grand total:")
	assert.Contains(t, policy, "✈️ flights")
	assert.Contains(t, policy, ClassicFamily.Closing)

	concise, err := NewAssembler(ConciseFamily, DefaultTiers, nil)
	require.NoError(t, err)
	assert.NotEqual(t, policy, concise.SystemPolicy())
}

func TestNewAssembler_RejectsBrokenFamily(t *testing.T) {
	_, err := NewAssembler(Family{Name: "empty"}, DefaultTiers, nil)
	assert.Error(t, err)
}

func TestRegionNoteFor(t *testing.T) {
	tests := []struct {
		destination string
		contains    string
	}{
		{destination: "Eastern Europe", contains: "Central European"},
		{destination: "Kyoto, Japan", contains: "UTC+9"},
		{destination: "Goa", contains: "UTC+5:30"},
		{destination: "Romania", contains: DefaultRegionNote},
		{destination: "Lima", contains: DefaultRegionNote},
	}
	for _, tt := range tests {
		t.Run(tt.destination, func(t *testing.T) {
			assert.Contains(t, RegionNoteFor(DefaultRegions, tt.destination), tt.contains)
		})
	}
}
