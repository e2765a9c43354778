package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/ringsaturn/tzf"

	"github.com/armanmujtaba/Trivanza/config"
	"github.com/armanmujtaba/Trivanza/conversation"
	"github.com/armanmujtaba/Trivanza/handlers"
	"github.com/armanmujtaba/Trivanza/models"
	"github.com/armanmujtaba/Trivanza/prompts"
	"github.com/armanmujtaba/Trivanza/services"
	"github.com/armanmujtaba/Trivanza/sessions"
	"github.com/armanmujtaba/Trivanza/tripform"
	"github.com/armanmujtaba/Trivanza/workflows"
)

func main() {
	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Println(ferr.Message)
			return
		}
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: opts.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(opts *config.Options, logger *slog.Logger) error {
	policy, err := config.LoadPolicy(opts.PolicyFile)
	if err != nil {
		return err
	}
	family, err := policy.Family(opts.Family)
	if err != nil {
		return err
	}
	assembler, err := prompts.NewAssembler(family, policy.Tiers, policy.Regions)
	if err != nil {
		return fmt.Errorf("failed to build prompts: %w", err)
	}
	validator := tripform.NewValidator(
		tripform.WithDefaultBudget(policy.DefaultBudget),
		tripform.WithDefaultCurrency(policy.DefaultCurrency),
	)

	provider, model, err := newProvider(opts)
	if err != nil {
		return err
	}
	gateway := services.NewGateway(provider,
		services.WithTimeout(opts.Timeout),
		services.WithRetry(!opts.NoRetry),
		services.WithRateLimit(opts.RequestsPerMinute),
		services.WithLogger(logger),
	)
	logger.Info("completion provider ready", "provider", provider.Name(), "model", model)

	var tz services.TimezoneFinder
	if !opts.NoTimezones {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			logger.Warn("timezone finder unavailable", "error", err)
		} else {
			tz = finder
		}
	}
	lookups := services.NewLookups(services.LookupsConfig{
		WeatherKey: opts.WeatherKey,
		RateKey:    opts.RateKey,
		Timeout:    opts.LookupTTL,
	}, tz, logger)

	chatWorkflows := workflows.NewChatWorkflows(gateway, assembler, validator,
		services.Options{Model: model, Temperature: opts.Temperature, MaxTokens: opts.MaxTokens},
		workflows.WithEnricher(lookups),
		workflows.WithLogger(logger),
	)

	store := sessions.NewStore(opts.SessionTTL, logger,
		conversation.WithClassifier(policy.Classifier()),
		conversation.WithReplies(policy.Replies),
		conversation.WithTailSize(opts.TailSize),
		conversation.WithTransitionHook(func(id uuid.UUID, from, to models.Phase) {
			logger.Debug("phase changed", "session_id", id, "from", from, "to", to)
		}),
	)

	if opts.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.NewChatHandler(store, chatWorkflows, logger))

	server := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", opts.Port, "family", family.Name)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newProvider(opts *config.Options) (services.Provider, string, error) {
	switch opts.Provider {
	case "anthropic":
		model := opts.Model
		if model == "" {
			model = services.DefaultAnthropicModel
		}
		p, err := services.NewAnthropicProvider(opts.AnthropicKey, "", nil)
		return p, model, err
	default:
		model := opts.Model
		if model == "" {
			model = services.DefaultOpenAIModel
		}
		p, err := services.NewOpenAIProvider(opts.OpenAIKey, opts.BaseURL, nil)
		return p, model, err
	}
}
