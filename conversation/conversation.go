// Package conversation holds the per-session state machine: the phase, the
// ordered transcript and the active trip request.
//
// Phases move Idle -> AwaitingForm on a greeting, to AwaitingCompletion when
// a form or in-scope message is accepted, and to Ready once the completion
// (or an apology for its failure, via Error) is appended. Only the newest
// request may append its result; older in-flight calls are cancelled and
// their late results discarded.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/armanmujtaba/Trivanza/models"
)

// ErrEmptyMessage is returned for blank chat input
var ErrEmptyMessage = errors.New("message is empty")

// DefaultTailSize is how many recent turns accompany a completion request.
// Older turns are not sent.
const DefaultTailSize = 6

// Replies are the canned assistant turns that never reach the gateway
type Replies struct {
	Greeting string `yaml:"greeting"`
	Refusal  string `yaml:"refusal"`
	Apology  string `yaml:"apology"`
}

// DefaultReplies is the built-in canned text. Apology takes one %s verb for
// the failure reason.
var DefaultReplies = Replies{
	Greeting: "Hello! I'm TRIVANZA, your travel companion. Fill in the trip form with your origin, " +
		"destination, dates and budget, or ask me any travel question.",
	Refusal: "I can only help with travel: itineraries, budgets and currency, packing, local logistics " +
		"and safety. Where would you like to go?",
	Apology: "Sorry, I couldn't put your travel plan together just now (%s). Please try again in a moment.",
}

// TransitionFunc observes every phase change
type TransitionFunc func(id uuid.UUID, from, to models.Phase)

// Pending is a request that has been accepted and awaits a completion.
// Ctx is cancelled as soon as a newer request supersedes this one.
type Pending struct {
	Seq      uint64
	Ctx      context.Context
	UserTurn models.Turn
	History  []models.Turn
	Text     string
	Trip     *models.TripRequest
	Active   *models.TripRequest
}

// Intake is the outcome of receiving free text
type Intake struct {
	Route    models.Route
	UserTurn models.Turn
	Reply    *models.Turn
	Pending  *Pending
}

// Option configures a Conversation
type Option func(c *Conversation)

// WithClock overrides the turn timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		c.now = now
	}
}

// WithClassifier sets the topic classifier
func WithClassifier(classifier *Classifier) Option {
	return func(c *Conversation) {
		c.classifier = classifier
	}
}

// WithReplies sets the canned replies
func WithReplies(replies Replies) Option {
	return func(c *Conversation) {
		c.replies = replies
	}
}

// WithTailSize sets how many recent turns are sent with each request
func WithTailSize(n int) Option {
	return func(c *Conversation) {
		if n > 0 {
			c.tailSize = n
		}
	}
}

// WithTransitionHook registers a phase-change observer. It is called with
// the conversation lock held and must not call back into the conversation.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(c *Conversation) {
		c.onTransition = fn
	}
}

// WithID fixes the conversation id
func WithID(id uuid.UUID) Option {
	return func(c *Conversation) {
		c.id = id
	}
}

// Conversation is one user's session. It is safe for concurrent use; the
// HTTP layer may deliver two requests for the same session at once.
type Conversation struct {
	mu           sync.Mutex
	id           uuid.UUID
	createdAt    time.Time
	turns        []models.Turn
	active       *models.TripRequest
	phase        models.Phase
	seq          uint64
	cancel       context.CancelFunc
	tailSize     int
	classifier   *Classifier
	replies      Replies
	now          func() time.Time
	onTransition TransitionFunc
}

// New creates an idle conversation
func New(opts ...Option) *Conversation {
	c := &Conversation{
		id:       uuid.New(),
		phase:    models.PhaseIdle,
		tailSize: DefaultTailSize,
		replies:  DefaultReplies,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.classifier == nil {
		c.classifier = NewClassifier(DefaultKeywords)
	}
	c.createdAt = c.now()
	return c
}

// ID returns the session id
func (c *Conversation) ID() uuid.UUID {
	return c.id
}

// Phase returns the current phase
func (c *Conversation) Phase() models.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Active returns a copy of the active trip request, if any
func (c *Conversation) Active() *models.TripRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTrip(c.active)
}

// Turns returns a copy of the transcript
func (c *Conversation) Turns() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Turn(nil), c.turns...)
}

// Snapshot returns a consistent read-only view of the session
func (c *Conversation) Snapshot() models.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.SessionSnapshot{
		ID:         c.id,
		Phase:      c.phase,
		ActiveTrip: copyTrip(c.active),
		Turns:      append([]models.Turn{}, c.turns...),
		CreatedAt:  c.createdAt,
	}
}

// ReceiveText classifies free text and either answers it with a canned turn
// or accepts it as a pending completion request.
func (c *Conversation) ReceiveText(ctx context.Context, text string) (Intake, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Intake{}, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	route := c.classifier.Classify(text, c.active != nil)
	switch route {
	case models.RouteGreeting:
		user := c.appendTurn(models.RoleUser, text)
		reply := c.appendTurn(models.RoleAssistant, c.replies.Greeting)
		if c.phase == models.PhaseIdle || c.phase == models.PhaseReady {
			c.transition(models.PhaseAwaitingForm)
		}
		return Intake{Route: route, UserTurn: user, Reply: &reply}, nil
	case models.RouteOutOfScope:
		user := c.appendTurn(models.RoleUser, text)
		reply := c.appendTurn(models.RoleAssistant, c.replies.Refusal)
		if c.phase == models.PhaseIdle {
			c.transition(models.PhaseReady)
		}
		return Intake{Route: route, UserTurn: user, Reply: &reply}, nil
	default:
		pending := c.begin(ctx, text, nil)
		return Intake{Route: route, UserTurn: pending.UserTurn, Pending: &pending}, nil
	}
}

// SubmitTrip makes req the active trip and accepts it as a pending request,
// whatever the current phase. summary is the user turn shown in the
// transcript.
func (c *Conversation) SubmitTrip(ctx context.Context, req models.TripRequest, summary string) Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = copyTrip(&req)
	return c.begin(ctx, summary, copyTrip(&req))
}

// begin must be called with the lock held
func (c *Conversation) begin(ctx context.Context, text string, trip *models.TripRequest) Pending {
	if c.cancel != nil {
		c.cancel()
	}
	history := c.tail()
	user := c.appendTurn(models.RoleUser, text)

	c.seq++
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.transition(models.PhaseAwaitingCompletion)

	pending := Pending{
		Seq:      c.seq,
		Ctx:      callCtx,
		UserTurn: user,
		History:  history,
		Trip:     trip,
		Active:   copyTrip(c.active),
	}
	if trip == nil {
		pending.Text = text
	}
	return pending
}

// Complete appends the result of request seq. Results of superseded
// requests are discarded and reported with ok=false. A failure becomes an
// apology turn and the conversation returns to Ready.
func (c *Conversation) Complete(seq uint64, result models.GatewayResult) (turn models.Turn, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq || c.phase != models.PhaseAwaitingCompletion {
		return models.Turn{}, false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if result.OK() {
		turn = c.appendTurn(models.RoleAssistant, result.Text)
		c.transition(models.PhaseReady)
		return turn, true
	}

	c.transition(models.PhaseError)
	turn = c.appendTurn(models.RoleAssistant, fmt.Sprintf(c.replies.Apology, failureReason(result.Failure.Kind)))
	c.transition(models.PhaseReady)
	return turn, true
}

// Close cancels any in-flight request. The conversation stays readable.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Conversation) appendTurn(role models.Role, text string) models.Turn {
	turn := models.NewTurn(role, text, c.now())
	c.turns = append(c.turns, turn)
	return turn
}

func (c *Conversation) tail() []models.Turn {
	start := 0
	if len(c.turns) > c.tailSize {
		start = len(c.turns) - c.tailSize
	}
	return append([]models.Turn(nil), c.turns[start:]...)
}

func (c *Conversation) transition(to models.Phase) {
	from := c.phase
	c.phase = to
	if c.onTransition != nil && from != to {
		c.onTransition(c.id, from, to)
	}
}

func failureReason(kind models.FailureKind) string {
	switch kind {
	case models.FailureTimeout:
		return "the planner took too long to answer"
	case models.FailureRateLimited:
		return "too many requests right now"
	case models.FailureInvalidResponse:
		return "the planner sent back an unreadable answer"
	default:
		return "the planner could not be reached"
	}
}

func copyTrip(req *models.TripRequest) *models.TripRequest {
	if req == nil {
		return nil
	}
	cp := *req
	cp.AccommodationPreferences = append([]string(nil), req.AccommodationPreferences...)
	cp.DietaryPreferences = append([]string(nil), req.DietaryPreferences...)
	cp.Interests = append([]string(nil), req.Interests...)
	return &cp
}
