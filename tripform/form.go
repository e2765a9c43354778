// Package tripform validates and normalises the raw trip form into a
// models.TripRequest. Validation is a pure function of the input.
package tripform

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/armanmujtaba/Trivanza/models"
)

// DateLayout is the wire format of form dates
const DateLayout = "2006-01-02"

// DefaultBudgetAmount is substituted when the budget text has no digits at all.
const DefaultBudgetAmount = 50000

// Form is the raw form payload as posted by the client
type Form = models.TripFormRequest

type options struct {
	defaultBudget   float64
	defaultCurrency string
	defaultTier     models.BudgetTier
}

// Option configures a Validator
type Option func(opt *options)

// WithDefaultBudget sets the amount used when the budget cannot be parsed
func WithDefaultBudget(amount float64) Option {
	return func(opt *options) {
		opt.defaultBudget = amount
	}
}

// WithDefaultCurrency sets the currency used when the form leaves it blank
func WithDefaultCurrency(code string) Option {
	return func(opt *options) {
		opt.defaultCurrency = strings.ToUpper(strings.TrimSpace(code))
	}
}

// WithDefaultTier sets the budget tier used when the form leaves it blank
func WithDefaultTier(tier models.BudgetTier) Option {
	return func(opt *options) {
		opt.defaultTier = tier
	}
}

// Validator turns raw forms into trip requests
type Validator struct {
	opts options
}

// NewValidator creates a validator with the given defaults
func NewValidator(opts ...Option) *Validator {
	option := options{
		defaultBudget:   DefaultBudgetAmount,
		defaultCurrency: "INR",
		defaultTier:     models.TierMid,
	}
	for _, opt := range opts {
		opt(&option)
	}
	return &Validator{opts: option}
}

var (
	travelerTypes = []models.TravelerType{
		models.TravelerSolo, models.TravelerCouple, models.TravelerFamily,
		models.TravelerGroup, models.TravelerBusiness,
	}
	transportModes = []models.TransportMode{
		models.TransportFlight, models.TransportTrain, models.TransportBus,
		models.TransportCar, models.TransportCruise, models.TransportAny,
	}
	budgetTiers = []models.BudgetTier{
		models.TierBudget, models.TierMid, models.TierLuxury,
	}
	sustainabilityLevels = []models.Sustainability{
		models.SustainabilityNone, models.SustainabilityPrefer, models.SustainabilityStrict,
	}
	cultureLevels = []models.CulturalSensitivity{
		models.CultureStandard, models.CultureHigh,
	}
)

// Validate checks every rule and returns either a complete TripRequest or
// ValidationErrors listing all violations in check order.
func (v *Validator) Validate(form Form) (models.TripRequest, error) {
	var errs ValidationErrors

	req := models.TripRequest{
		Origin:      strings.TrimSpace(form.Origin),
		Destination: strings.TrimSpace(form.Destination),
		Activities:  strings.TrimSpace(form.Activities),
	}

	if req.Origin == "" {
		errs = append(errs, ValidationError{Field: "origin", Message: "origin is required"})
	}
	if req.Destination == "" {
		errs = append(errs, ValidationError{Field: "destination", Message: "destination is required"})
	}

	start, startErr := parseDate(form.StartDate)
	if startErr != nil {
		errs = append(errs, ValidationError{Field: "start_date", Message: "start date must be a valid YYYY-MM-DD date"})
	}
	end, endErr := parseDate(form.EndDate)
	if endErr != nil {
		errs = append(errs, ValidationError{Field: "end_date", Message: "end date must be a valid YYYY-MM-DD date"})
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, ValidationError{Field: "end_date", Message: "end date must not precede start date"})
	}
	req.StartDate, req.EndDate = start, end

	budget := ParseBudget(form.Budget)
	if budget.Defaulted {
		req.BudgetAmount = v.opts.defaultBudget
		req.BudgetDefaulted = true
	} else {
		req.BudgetAmount = budget.Amount
	}
	if req.BudgetAmount <= 0 {
		errs = append(errs, ValidationError{Field: "budget", Message: "budget must be greater than zero"})
	}

	req.GroupSize = 1
	if raw := strings.TrimSpace(form.GroupSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			errs = append(errs, ValidationError{Field: "group_size", Message: "group size must be at least 1"})
		}
		req.GroupSize = size
	}

	req.CurrencyCode = strings.ToUpper(strings.TrimSpace(form.CurrencyCode))
	if req.CurrencyCode == "" {
		req.CurrencyCode = v.opts.defaultCurrency
	}
	if _, err := currency.ParseISO(req.CurrencyCode); err != nil {
		errs = append(errs, ValidationError{Field: "currency_code", Message: "currency code is not a recognised ISO 4217 code"})
	}

	var ok bool
	if req.TravelerType, ok = parseEnum(form.TravelerType, travelerTypes, models.TravelerSolo); !ok {
		errs = append(errs, ValidationError{Field: "traveler_type", Message: "traveler type is not recognised"})
	}
	if req.BudgetTier, ok = parseEnum(form.BudgetTier, budgetTiers, v.opts.defaultTier); !ok {
		errs = append(errs, ValidationError{Field: "budget_tier", Message: "budget tier must be budget, mid or luxury"})
	}
	if req.TransportMode, ok = parseEnum(form.TransportMode, transportModes, models.TransportAny); !ok {
		errs = append(errs, ValidationError{Field: "transport_mode", Message: "transport mode is not recognised"})
	}
	if req.SustainabilityPreference, ok = parseEnum(form.SustainabilityPreference, sustainabilityLevels, models.SustainabilityNone); !ok {
		errs = append(errs, ValidationError{Field: "sustainability_preference", Message: "sustainability preference is not recognised"})
	}
	if req.CulturalSensitivity, ok = parseEnum(form.CulturalSensitivity, cultureLevels, models.CultureStandard); !ok {
		errs = append(errs, ValidationError{Field: "cultural_sensitivity", Message: "cultural sensitivity is not recognised"})
	}

	req.AccommodationPreferences = normalizeTags(form.AccommodationPreferences)
	req.DietaryPreferences = normalizeTags(form.DietaryPreferences)
	req.Interests = normalizeTags(form.Interests)

	if len(errs) > 0 {
		return models.TripRequest{}, errs
	}
	return req, nil
}

// DefaultBudgetNotice is shown to the traveller when req carries a
// substituted budget
func (v *Validator) DefaultBudgetNotice(req models.TripRequest) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("The budget could not be read, so a default of %s %.0f was used. Resubmit the form to change it.",
		req.CurrencyCode, req.BudgetAmount)
}

// BudgetParse is the outcome of reading a free-text budget
type BudgetParse struct {
	Amount    float64
	Defaulted bool
}

// ParseBudget strips currency symbols, words and other stray runes, keeping
// the digits and separators from the first digit on. A minus sign right
// before the number is kept, so negative budgets fail validation. Text
// without any digit is reported as Defaulted so the caller can substitute
// and flag a default.
func ParseBudget(raw string) BudgetParse {
	var b strings.Builder
	seenDigit, negative := false, false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case !seenDigit && (r == '-' || r == '\u2212'):
			negative = true
		case !seenDigit && unicode.IsLetter(r):
			// "well-off 3000" or "Rs." before the number
			negative = false
		case seenDigit && (r == '.' || r == ','):
			b.WriteRune(r)
		}
	}
	if !seenDigit {
		return BudgetParse{Defaulted: true}
	}
	amount, err := strconv.ParseFloat(decimalForm(strings.TrimRight(b.String(), ".,")), 64)
	if err != nil {
		return BudgetParse{Defaulted: true}
	}
	if negative {
		amount = -amount
	}
	return BudgetParse{Amount: amount}
}

// decimalForm rewrites digits with '.' and ',' separators into a plain
// decimal. With both separators present the last one is the decimal mark.
// A separator that repeats, or appears once followed by exactly three
// digits, groups thousands: "1.200" is 1200 and "₹1,00,000" is 100000.
func decimalForm(s string) string {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	both := dot >= 0 && comma >= 0
	var mark string
	switch {
	case both:
		mark = "."
		if comma > dot {
			mark = ","
		}
	case dot >= 0:
		mark = "."
	case comma >= 0:
		mark = ","
	default:
		return s
	}

	group := ","
	if mark == "," {
		group = "."
	}
	s = strings.ReplaceAll(s, group, "")

	i := strings.LastIndex(s, mark)
	if strings.Count(s, mark) > 1 || (!both && len(s)-i-1 == 3) {
		return strings.ReplaceAll(s, mark, "")
	}
	return s[:i] + "." + s[i+1:]
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}

// parseEnum matches raw case-insensitively against allowed values. A blank
// raw value yields the fallback.
func parseEnum[T ~string](raw string, allowed []T, fallback T) (T, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback, true
	}
	match, found := lo.Find(allowed, func(item T) bool {
		return string(item) == raw
	})
	if !found {
		return fallback, false
	}
	return match, true
}

// normalizeTags trims and lower-cases tags, drops blanks and keeps the first
// occurrence of each tag.
func normalizeTags(tags []string) []string {
	cleaned := lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		return tag, tag != ""
	})
	if len(cleaned) == 0 {
		return nil
	}
	return lo.Uniq(cleaned)
}
