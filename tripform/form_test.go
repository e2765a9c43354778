package tripform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armanmujtaba/Trivanza/models"
)

func validForm() Form {
	return Form{
		Origin:                   " Mumbai ",
		Destination:              "Hanoi",
		StartDate:                "2025-08-01",
		EndDate:                  "2025-08-05",
		TravelerType:             "Couple",
		GroupSize:                "2",
		Budget:                   "₹1,00,000",
		CurrencyCode:             "inr",
		BudgetTier:               "mid",
		AccommodationPreferences: []string{"Hotel", " hotel ", "", "Hostel"},
		TransportMode:            "flight",
		DietaryPreferences:       []string{"vegetarian"},
		Interests:                []string{"food", "culture", "Food"},
		Activities:               "  street food tour  ",
	}
}

func TestValidate_Success(t *testing.T) {
	req, err := NewValidator().Validate(validForm())
	require.NoError(t, err)

	assert.Equal(t, "Mumbai", req.Origin)
	assert.Equal(t, "Hanoi", req.Destination)
	assert.False(t, req.EndDate.Before(req.StartDate))
	assert.Equal(t, models.TravelerCouple, req.TravelerType)
	assert.Equal(t, 2, req.GroupSize)
	assert.EqualValues(t, 100000, req.BudgetAmount)
	assert.False(t, req.BudgetDefaulted)
	assert.Equal(t, "INR", req.CurrencyCode)
	assert.Equal(t, models.TierMid, req.BudgetTier)
	assert.Equal(t, []string{"hotel", "hostel"}, req.AccommodationPreferences)
	assert.Equal(t, []string{"food", "culture"}, req.Interests)
	assert.Equal(t, "street food tour", req.Activities)
	assert.Equal(t, models.SustainabilityNone, req.SustainabilityPreference)
	assert.Equal(t, models.CultureStandard, req.CulturalSensitivity)
}

func TestValidate_SameDayTrip(t *testing.T) {
	form := validForm()
	form.EndDate = form.StartDate

	req, err := NewValidator().Validate(form)
	require.NoError(t, err)
	assert.True(t, req.StartDate.Equal(req.EndDate))
}

func TestValidate_AccumulatesEveryViolation(t *testing.T) {
	for _, budget := range []string{"0", "-5000", "₹ -1,200"} {
		t.Run(budget, func(t *testing.T) {
			form := Form{
				Origin:      "  ",
				Destination: "",
				StartDate:   "2025-08-05",
				EndDate:     "2025-08-01",
				Budget:      budget,
				GroupSize:   "0",
			}

			_, err := NewValidator().Validate(form)
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, []string{
				"origin is required",
				"destination is required",
				"end date must not precede start date",
				"budget must be greater than zero",
				"group size must be at least 1",
			}, verrs.Messages())
		})
	}
}

func TestValidate_EnumAndCurrencyChecks(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *Form)
		field string
	}{
		{name: "unknown currency", edit: func(f *Form) { f.CurrencyCode = "QQQ" }, field: "currency_code"},
		{name: "unknown traveler type", edit: func(f *Form) { f.TravelerType = "astronaut" }, field: "traveler_type"},
		{name: "unknown tier", edit: func(f *Form) { f.BudgetTier = "platinum" }, field: "budget_tier"},
		{name: "unknown transport", edit: func(f *Form) { f.TransportMode = "teleport" }, field: "transport_mode"},
		{name: "bad start date", edit: func(f *Form) { f.StartDate = "01/08/2025" }, field: "start_date"},
		{name: "bad group size", edit: func(f *Form) { f.GroupSize = "two" }, field: "group_size"},
		{name: "negative budget", edit: func(f *Form) { f.Budget = "-5000" }, field: "budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)

			_, err := NewValidator().Validate(form)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidate_DefaultsBlankOptionalFields(t *testing.T) {
	form := validForm()
	form.CurrencyCode = ""
	form.BudgetTier = ""
	form.GroupSize = ""
	form.TravelerType = ""

	req, err := NewValidator(WithDefaultCurrency("usd"), WithDefaultTier(models.TierLuxury)).Validate(form)
	require.NoError(t, err)
	assert.Equal(t, "USD", req.CurrencyCode)
	assert.Equal(t, models.TierLuxury, req.BudgetTier)
	assert.Equal(t, 1, req.GroupSize)
	assert.Equal(t, models.TravelerSolo, req.TravelerType)
}

func TestValidate_UnparseableBudgetIsDefaultedAndFlagged(t *testing.T) {
	form := validForm()
	form.Budget = "flexible"

	v := NewValidator(WithDefaultBudget(75000))
	req, err := v.Validate(form)
	require.NoError(t, err)
	assert.True(t, req.BudgetDefaulted)
	assert.EqualValues(t, 75000, req.BudgetAmount)
	assert.Contains(t, v.DefaultBudgetNotice(req), "75,000")
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		raw  string
		want BudgetParse
	}{
		{raw: "100000", want: BudgetParse{Amount: 100000}},
		{raw: "₹1,00,000", want: BudgetParse{Amount: 100000}},
		{raw: "$2,500.50", want: BudgetParse{Amount: 2500.5}},
		{raw: "Rs. 45,000", want: BudgetParse{Amount: 45000}},
		{raw: "€ 1.200.", want: BudgetParse{Amount: 1200}},
		{raw: "€1.234,56", want: BudgetParse{Amount: 1234.56}},
		{raw: "1.200.000", want: BudgetParse{Amount: 1200000}},
		{raw: "1200,5", want: BudgetParse{Amount: 1200.5}},
		{raw: "12.5", want: BudgetParse{Amount: 12.5}},
		{raw: "about 3000 USD", want: BudgetParse{Amount: 3000}},
		{raw: "-5000", want: BudgetParse{Amount: -5000}},
		{raw: "$ -2,500", want: BudgetParse{Amount: -2500}},
		{raw: "well-off, 3000", want: BudgetParse{Amount: 3000}},
		{raw: "", want: BudgetParse{Defaulted: true}},
		{raw: "lots", want: BudgetParse{Defaulted: true}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBudget(tt.raw))
		})
	}
}
