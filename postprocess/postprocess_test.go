package postprocess

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

const policy = "You are TRIVANZA, a travel-only planning assistant."

func newTestCleaner() *Cleaner {
	return NewCleaner([]string{"✈️", "🏨", "🍽️", "💰"}, policy)
}

func TestClean(t *testing.T) {
	c := newTestCleaner()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markers moved to their own lines",
			in:   "Day 1 ✈️ Flight to Goa 🏨 Hotel Mandovi",
			want: "Day 1\n✈️ Flight to Goa\n🏨 Hotel Mandovi",
		},
		{
			name: "text presentation glyph",
			in:   "Arrive ✈ Flight",
			want: "Arrive\n✈ Flight",
		},
		{
			name: "bulleted markers untouched",
			in:   "- ✈️ Flight\n- 🏨 Hotel",
			want: "- ✈️ Flight\n- 🏨 Hotel",
		},
		{
			name: "numbered markers untouched",
			in:   "1. 🍽️ Lunch\n2) 💰 Tips",
			want: "1. 🍽️ Lunch\n2) 💰 Tips",
		},
		{
			name: "shorthand link",
			in:   "Book here [Booking.com: https://booking.com/goa]",
			want: "Book here [Booking.com](https://booking.com/goa)",
		},
		{
			name: "markdown link untouched",
			in:   "See [Goa Tourism](https://goa-tourism.com)",
			want: "See [Goa Tourism](https://goa-tourism.com)",
		},
		{
			name: "blank runs collapsed",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "whitespace-only lines collapsed",
			in:   "a\n \n\t\n b",
			want: "a\n\n b",
		},
		{
			name: "policy echo removed",
			in:   policy + "\n\nDay 1 - Goa",
			want: "Day 1 - Goa",
		},
		{
			name: "crlf normalised",
			in:   "a\r\nb\r\n",
			want: "a\nb",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "plain text unchanged",
			in:   "Pack light layers for Hanoi in August.",
			want: "Pack light layers for Hanoi in August.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Clean(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, c.Clean(got))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	c := newTestCleaner()
	f := func(s string) bool {
		once := c.Clean(s)
		return c.Clean(once) == once
	}
	assert.NoError(t, quick.Check(f, &quick.Config{MaxCount: 500}))

	mixed := func(a, b string) bool {
		s := a + " ✈️ " + b + "\n\n\n[Map: https://maps.example/" + b + "]" + policy
		once := c.Clean(s)
		return c.Clean(once) == once
	}
	assert.NoError(t, quick.Check(mixed, &quick.Config{MaxCount: 200}))

	nested := policy
	for i := 0; i < 20; i++ {
		nested = policy[:10] + nested + policy[10:]
	}
	once := c.Clean(nested + "\n\nDay 1 - Goa")
	assert.Equal(t, "Day 1 - Goa", once)
	assert.Equal(t, once, c.Clean(once))
}

func TestClean_PerCallEchoes(t *testing.T) {
	c := newTestCleaner()
	prompt := "Plan a trip with the following details.\n\nOrigin: Mumbai\nDestination: Hanoi"

	got := c.Clean(prompt+"\n\nDay 1 - hello", prompt)
	assert.Equal(t, "Day 1 - hello", got)
	assert.Equal(t, got, c.Clean(got, prompt))

	assert.Contains(t, c.Clean(prompt+"\n\nDay 1 - hello"), "Origin: Mumbai", "echoes only apply to the call they are given to")
	assert.Equal(t, "Short reply", c.Clean("Short reply", "Short reply"), "short texts are never treated as echoes")
}

func TestClean_NoGlyphs(t *testing.T) {
	c := NewCleaner(nil)
	assert.Equal(t, "Day 1 ✈️ Flight", c.Clean("Day 1 ✈️ Flight"))
}

func TestInspect(t *testing.T) {
	plan := `## Day 1 - Fri 01 Aug 2025
- ✈️ Flight BOM to HAN: INR 18,000
- 🏨 Hotel: INR 6,000

**Day 2 - Sat 02 Aug 2025**
- 🍽️ Street food tour: INR 2,000

Grand total: INR 26,000

Would you like me to change anything in this plan?`

	r := Inspect(plan)
	assert.Equal(t, 2, r.DaySections)
	assert.Equal(t, 3, r.ListItems)
	assert.True(t, r.HasGrandTotal)
	assert.True(t, r.HasClosingQuestion)
	assert.True(t, r.OK())
}

func TestInspect_ReportsViolations(t *testing.T) {
	r := Inspect("Sure! Here are some tips.")
	assert.False(t, r.OK())
	assert.Equal(t, []string{"no day-by-day sections", "missing grand total", "missing closing question"}, r.Violations)
}

func TestInspect_ClosingQuestionInList(t *testing.T) {
	r := Inspect("Day 1 - Goa\n\n- Grand total: INR 10,000\n- Anything else?")
	assert.Equal(t, 1, r.DaySections)
	assert.True(t, r.HasGrandTotal)
	assert.True(t, r.HasClosingQuestion)
}
