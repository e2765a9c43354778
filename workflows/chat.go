package workflows

import (
	"context"
	"log/slog"
	"time"

	"github.com/armanmujtaba/Trivanza/conversation"
	"github.com/armanmujtaba/Trivanza/models"
	"github.com/armanmujtaba/Trivanza/postprocess"
	"github.com/armanmujtaba/Trivanza/prompts"
	"github.com/armanmujtaba/Trivanza/services"
	"github.com/armanmujtaba/Trivanza/tripform"
)

// Completer is the completion gateway as the workflows see it
type Completer interface {
	Complete(ctx context.Context, policy string, tail []models.Turn, user models.Turn, opts services.Options) models.GatewayResult
}

// Enricher supplies optional destination context for trip prompts
type Enricher interface {
	Enrich(ctx context.Context, req models.TripRequest) prompts.Enrichment
}

// Option configures ChatWorkflows
type Option func(w *ChatWorkflows)

// WithEnricher enables weather, timezone and exchange-rate lookups
func WithEnricher(e Enricher) Option {
	return func(w *ChatWorkflows) {
		w.enricher = e
	}
}

// WithCleaner replaces the default post-processor
func WithCleaner(c *postprocess.Cleaner) Option {
	return func(w *ChatWorkflows) {
		w.cleaner = c
	}
}

// WithLogger sets the workflow logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *ChatWorkflows) {
		w.logger = logger
	}
}

// ChatWorkflows runs a message or trip form through the whole pipeline:
// classify or validate, assemble, complete, clean, append
type ChatWorkflows struct {
	gateway   Completer
	assembler *prompts.Assembler
	validator *tripform.Validator
	options   services.Options
	cleaner   *postprocess.Cleaner
	enricher  Enricher
	logger    *slog.Logger
}

// NewChatWorkflows creates a new ChatWorkflows instance
func NewChatWorkflows(gateway Completer, assembler *prompts.Assembler, validator *tripform.Validator, options services.Options, opts ...Option) *ChatWorkflows {
	w := &ChatWorkflows{
		gateway:   gateway,
		assembler: assembler,
		validator: validator,
		options:   options,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.cleaner == nil {
		w.cleaner = postprocess.NewCleaner(assembler.Family().Glyphs(), assembler.SystemPolicy())
	}
	return w
}

// SendMessageOutput contains the output of a chat or trip workflow.
// AssistantMessage is nil when the result was discarded as stale.
type SendMessageOutput struct {
	Route            models.Route
	UserMessage      models.Turn
	AssistantMessage *models.Turn
	Stale            bool
	Inspection       *postprocess.Report
	Notices          []string
}

// SendMessageWorkflow handles free text. Greetings and out-of-scope text
// are answered without a completion call.
func (w *ChatWorkflows) SendMessageWorkflow(ctx context.Context, conv *conversation.Conversation, text string) (SendMessageOutput, error) {
	intake, err := conv.ReceiveText(ctx, text)
	if err != nil {
		return SendMessageOutput{}, err
	}
	output := SendMessageOutput{Route: intake.Route, UserMessage: intake.UserTurn}
	if intake.Pending == nil {
		output.AssistantMessage = intake.Reply
		w.logger.Debug("answered without completion", "session_id", conv.ID(), "route", intake.Route)
		return output, nil
	}

	p := intake.Pending
	prompt := w.assembler.ChatPrompt(p.Text, p.Active)
	w.complete(conv, p, prompt, &output, false)
	return output, nil
}

// SubmitTripWorkflow validates a trip form and plans the trip. Validation
// failures are returned as tripform.ValidationErrors and never reach the
// gateway.
func (w *ChatWorkflows) SubmitTripWorkflow(ctx context.Context, conv *conversation.Conversation, form tripform.Form) (SendMessageOutput, error) {
	req, err := w.validator.Validate(form)
	if err != nil {
		w.logger.Info("trip form rejected", "session_id", conv.ID(), "error", err)
		return SendMessageOutput{}, err
	}

	p := conv.SubmitTrip(ctx, req, w.assembler.TripSummary(req))
	output := SendMessageOutput{Route: models.RouteTripForm, UserMessage: p.UserTurn}
	if req.BudgetDefaulted {
		output.Notices = append(output.Notices, w.validator.DefaultBudgetNotice(req))
	}

	var enrich prompts.Enrichment
	if w.enricher != nil {
		enrich = w.enricher.Enrich(p.Ctx, req)
	}
	prompt := w.assembler.TripPrompt(*p.Trip, &enrich)
	w.complete(conv, &p, prompt, &output, true)
	return output, nil
}

func (w *ChatWorkflows) complete(conv *conversation.Conversation, p *conversation.Pending, prompt string, output *SendMessageOutput, plan bool) {
	user := models.NewTurn(models.RoleUser, prompt, time.Now())
	started := time.Now()
	result := w.gateway.Complete(p.Ctx, w.assembler.SystemPolicy(), p.History, user, w.options)

	if result.OK() {
		cleaned := w.cleaner.Clean(result.Text, prompt)
		if cleaned == "" {
			result = models.Failure(models.FailureInvalidResponse, "completion was empty after cleanup")
		} else {
			result.Text = cleaned
		}
	}

	turn, ok := conv.Complete(p.Seq, result)
	if !ok {
		output.Stale = true
		w.logger.Warn("discarded stale completion", "session_id", conv.ID(), "seq", p.Seq)
		return
	}
	output.AssistantMessage = &turn

	if !result.OK() {
		w.logger.Error("completion failed", "session_id", conv.ID(), "kind", result.Failure.Kind, "error", result.Failure.Message)
		return
	}
	w.logger.Info("completion appended", "session_id", conv.ID(), "route", output.Route, "duration", time.Since(started))

	if plan {
		report := postprocess.Inspect(turn.Text)
		output.Inspection = &report
		if !report.OK() {
			w.logger.Warn("plan format differs from the expected layout", "session_id", conv.ID(), "violations", report.Violations)
		}
	}
}
