package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a transcript turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Phase is the current state of a conversation
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingForm       Phase = "awaiting_form"
	PhaseAwaitingCompletion Phase = "awaiting_completion"
	PhaseReady              Phase = "ready"
	PhaseError              Phase = "error"
)

// Turn represents one message in a conversation transcript
type Turn struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn creates a turn stamped with a fresh id
func NewTurn(role Role, text string, at time.Time) Turn {
	return Turn{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: at,
	}
}

// TravelerType describes who is travelling
type TravelerType string

const (
	TravelerSolo     TravelerType = "solo"
	TravelerCouple   TravelerType = "couple"
	TravelerFamily   TravelerType = "family"
	TravelerGroup    TravelerType = "group"
	TravelerBusiness TravelerType = "business"
)

// TransportMode is the preferred way of getting to the destination
type TransportMode string

const (
	TransportFlight TransportMode = "flight"
	TransportTrain  TransportMode = "train"
	TransportBus    TransportMode = "bus"
	TransportCar    TransportMode = "car"
	TransportCruise TransportMode = "cruise"
	TransportAny    TransportMode = "any"
)

// BudgetTier selects a cost-allocation preset
type BudgetTier string

const (
	TierBudget BudgetTier = "budget"
	TierMid    BudgetTier = "mid"
	TierLuxury BudgetTier = "luxury"
)

// Sustainability is how strongly the traveller prefers low-impact options
type Sustainability string

const (
	SustainabilityNone   Sustainability = "none"
	SustainabilityPrefer Sustainability = "prefer"
	SustainabilityStrict Sustainability = "strict"
)

// CulturalSensitivity is how much local-custom guidance the traveller wants
type CulturalSensitivity string

const (
	CultureStandard CulturalSensitivity = "standard"
	CultureHigh     CulturalSensitivity = "high"
)

// TripRequest represents a traveller's validated planning intent.
// It is never mutated after validation; a new form submission replaces it.
type TripRequest struct {
	Origin                   string              `json:"origin"`
	Destination              string              `json:"destination"`
	StartDate                time.Time           `json:"start_date"`
	EndDate                  time.Time           `json:"end_date"`
	TravelerType             TravelerType        `json:"traveler_type"`
	GroupSize                int                 `json:"group_size"`
	BudgetAmount             float64             `json:"budget_amount"`
	BudgetDefaulted          bool                `json:"budget_defaulted,omitempty"`
	CurrencyCode             string              `json:"currency_code"`
	BudgetTier               BudgetTier          `json:"budget_tier"`
	AccommodationPreferences []string            `json:"accommodation_preferences,omitempty"`
	TransportMode            TransportMode       `json:"transport_mode"`
	DietaryPreferences       []string            `json:"dietary_preferences,omitempty"`
	Interests                []string            `json:"interests,omitempty"`
	Activities               string              `json:"activities,omitempty"`
	SustainabilityPreference Sustainability      `json:"sustainability_preference"`
	CulturalSensitivity      CulturalSensitivity `json:"cultural_sensitivity"`
}

// FailureKind classifies a failed gateway call
type FailureKind string

const (
	FailureNetwork         FailureKind = "network_error"
	FailureRateLimited     FailureKind = "rate_limited"
	FailureInvalidResponse FailureKind = "invalid_response"
	FailureTimeout         FailureKind = "timeout"
)

// GatewayFailure describes why a completion could not be produced
type GatewayFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// GatewayResult is either a completion text or a failure, never both
type GatewayResult struct {
	Text    string          `json:"text,omitempty"`
	Failure *GatewayFailure `json:"failure,omitempty"`
}

// Success wraps a completion text
func Success(text string) GatewayResult {
	return GatewayResult{Text: text}
}

// Failure wraps a classified gateway failure
func Failure(kind FailureKind, message string) GatewayResult {
	return GatewayResult{Failure: &GatewayFailure{Kind: kind, Message: message}}
}

// OK reports whether the result carries completion text
func (r GatewayResult) OK() bool {
	return r.Failure == nil
}

// Route is how a free-text message was classified
type Route string

const (
	RouteGreeting   Route = "greeting"
	RouteInScope    Route = "in_scope"
	RouteOutOfScope Route = "out_of_scope"
	RouteTripForm   Route = "trip_form"
)

// SendMessageRequest is the request body for sending a chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// TripFormRequest is the request body for submitting the trip form
type TripFormRequest struct {
	Origin                   string   `json:"origin"`
	Destination              string   `json:"destination"`
	StartDate                string   `json:"start_date"`
	EndDate                  string   `json:"end_date"`
	TravelerType             string   `json:"traveler_type"`
	GroupSize                string   `json:"group_size"`
	Budget                   string   `json:"budget"`
	CurrencyCode             string   `json:"currency_code"`
	BudgetTier               string   `json:"budget_tier"`
	AccommodationPreferences []string `json:"accommodation_preferences"`
	TransportMode            string   `json:"transport_mode"`
	DietaryPreferences       []string `json:"dietary_preferences"`
	Interests                []string `json:"interests"`
	Activities               string   `json:"activities"`
	SustainabilityPreference string   `json:"sustainability_preference"`
	CulturalSensitivity      string   `json:"cultural_sensitivity"`
}

// ChatResponse is the response for a chat message or form submission
type ChatResponse struct {
	Route            Route    `json:"route"`
	Phase            Phase    `json:"phase"`
	UserMessage      Turn     `json:"user_message"`
	AssistantMessage *Turn    `json:"assistant_message,omitempty"`
	Stale            bool     `json:"stale,omitempty"`
	Notices          []string `json:"notices,omitempty"`
}

// SessionSnapshot is a read-only view of one conversation
type SessionSnapshot struct {
	ID         uuid.UUID    `json:"id"`
	Phase      Phase        `json:"phase"`
	ActiveTrip *TripRequest `json:"active_trip,omitempty"`
	Turns      []Turn       `json:"turns"`
	CreatedAt  time.Time    `json:"created_at"`
}
