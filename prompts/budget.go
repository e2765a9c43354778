package prompts

import (
	"fmt"
	"math"

	"github.com/armanmujtaba/Trivanza/models"
)

// Category is one line of the cost breakdown
type Category string

const (
	CategoryFlights        Category = "Flights"
	CategoryLodging        Category = "Lodging"
	CategoryFood           Category = "Food"
	CategoryActivities     Category = "Activities"
	CategoryLocalTransport Category = "Local transport"
	CategoryContingency    Category = "Contingency"
)

// Split is the percentage allocation of one budget tier
type Split struct {
	Flights        int `yaml:"flights"`
	Lodging        int `yaml:"lodging"`
	Food           int `yaml:"food"`
	Activities     int `yaml:"activities"`
	LocalTransport int `yaml:"local_transport"`
	Contingency    int `yaml:"contingency"`
}

// Allocation is one category's share of the budget
type Allocation struct {
	Category Category
	Percent  int
	Amount   float64
}

// Allocations returns the split in fixed category order, without amounts
func (s Split) Allocations() []Allocation {
	return []Allocation{
		{Category: CategoryFlights, Percent: s.Flights},
		{Category: CategoryLodging, Percent: s.Lodging},
		{Category: CategoryFood, Percent: s.Food},
		{Category: CategoryActivities, Percent: s.Activities},
		{Category: CategoryLocalTransport, Percent: s.LocalTransport},
		{Category: CategoryContingency, Percent: s.Contingency},
	}
}

// Total is the sum of all percentages
func (s Split) Total() int {
	return s.Flights + s.Lodging + s.Food + s.Activities + s.LocalTransport + s.Contingency
}

// TierTable maps each budget tier to its split
type TierTable map[models.BudgetTier]Split

// DefaultTiers is the built-in allocation table. Mid is the default split;
// the other tiers shift it.
var DefaultTiers = TierTable{
	models.TierBudget: {Flights: 25, Lodging: 20, Food: 20, Activities: 15, LocalTransport: 10, Contingency: 10},
	models.TierMid:    {Flights: 30, Lodging: 25, Food: 20, Activities: 15, LocalTransport: 10, Contingency: 0},
	models.TierLuxury: {Flights: 30, Lodging: 35, Food: 15, Activities: 12, LocalTransport: 5, Contingency: 3},
}

// Validate checks that every tier is present and sums to exactly 100
func (t TierTable) Validate() error {
	for _, tier := range []models.BudgetTier{models.TierBudget, models.TierMid, models.TierLuxury} {
		split, ok := t[tier]
		if !ok {
			return fmt.Errorf("budget tier %q has no split", tier)
		}
		if total := split.Total(); total != 100 {
			return fmt.Errorf("budget tier %q sums to %d%%, want 100%%", tier, total)
		}
		for _, a := range split.Allocations() {
			if a.Percent < 0 {
				return fmt.Errorf("budget tier %q has a negative share for %s", tier, a.Category)
			}
		}
	}
	return nil
}

// Split returns the split for tier, falling back to the mid tier
func (t TierTable) Split(tier models.BudgetTier) Split {
	if split, ok := t[tier]; ok {
		return split
	}
	return t[models.TierMid]
}

// Allocate divides amount across the tier's categories. Amounts are rounded
// to cents and the rounding remainder lands in the last category, so the
// amounts always add back up to the rounded total.
func (t TierTable) Allocate(amount float64, tier models.BudgetTier) []Allocation {
	allocations := t.Split(tier).Allocations()
	total := roundCents(amount)
	var assigned float64
	for i := range allocations {
		if i == len(allocations)-1 {
			allocations[i].Amount = roundCents(total - assigned)
			break
		}
		allocations[i].Amount = roundCents(total * float64(allocations[i].Percent) / 100)
		assigned += allocations[i].Amount
	}
	return allocations
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
