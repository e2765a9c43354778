// Package config holds the process options and the product policy.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Options are read from the command line, falling back to the environment.
// The struct tags are interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Port     string `long:"port" env:"PORT" default:"8080" description:"HTTP listen port"`
	LogLevel string `long:"log-level" env:"TRIVANZA_LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"minimum log level"`

	Provider     string  `long:"provider" env:"TRIVANZA_PROVIDER" default:"openai" choice:"openai" choice:"anthropic" description:"completion provider"`
	Model        string  `long:"model" env:"TRIVANZA_MODEL" description:"model name, provider default when empty"`
	BaseURL      string  `long:"base-url" env:"OPENAI_BASE_URL" description:"OpenAI-compatible endpoint, e.g. a vLLM server"`
	OpenAIKey    string  `long:"openai-key" env:"OPENAI_API_KEY" description:"OpenAI API key"`
	AnthropicKey string  `long:"anthropic-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key"`
	Temperature  float32 `long:"temperature" env:"TRIVANZA_TEMPERATURE" default:"0.7" description:"sampling temperature"`
	MaxTokens    int     `long:"max-tokens" env:"TRIVANZA_MAX_TOKENS" default:"4096" description:"completion token limit"`

	Timeout           time.Duration `long:"timeout" env:"TRIVANZA_TIMEOUT" default:"45s" description:"per-attempt completion deadline"`
	NoRetry           bool          `long:"no-retry" env:"TRIVANZA_NO_RETRY" description:"disable the single retry on network errors and timeouts"`
	RequestsPerMinute int           `long:"requests-per-minute" env:"TRIVANZA_RPM" default:"30" description:"completion calls allowed per minute, 0 for unlimited"`

	TailSize   int           `long:"tail-size" env:"TRIVANZA_TAIL_SIZE" default:"6" description:"recent turns sent with each completion"`
	SessionTTL time.Duration `long:"session-ttl" env:"TRIVANZA_SESSION_TTL" default:"30m" description:"idle time before a session is evicted"`

	Family     string `long:"family" env:"TRIVANZA_FAMILY" default:"classic" description:"prompt template family"`
	PolicyFile string `long:"policy" env:"TRIVANZA_POLICY" description:"YAML product policy overriding the built-in one"`

	WeatherKey  string        `long:"weather-key" env:"OPENWEATHER_API_KEY" description:"OpenWeatherMap API key"`
	RateKey     string        `long:"rate-key" env:"EXCHANGERATE_API_KEY" description:"ExchangeRate-API key"`
	LookupTTL   time.Duration `long:"lookup-timeout" env:"TRIVANZA_LOOKUP_TIMEOUT" default:"5s" description:"auxiliary lookup deadline"`
	NoTimezones bool          `long:"no-timezones" env:"TRIVANZA_NO_TIMEZONES" description:"skip loading the timezone finder"`
}

// Parse reads options from args and the environment
func Parse(args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks ranges go-flags cannot express
func (o *Options) Validate() error {
	var errs []error
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be between 0 and 2, got %v", o.Temperature))
	}
	if o.MaxTokens <= 0 {
		errs = append(errs, errors.New("max tokens must be positive"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if o.TailSize <= 0 {
		errs = append(errs, errors.New("tail size must be positive"))
	}
	if o.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute must not be negative"))
	}
	switch o.Provider {
	case "anthropic":
		if o.AnthropicKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		if o.OpenAIKey == "" && o.BaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY or OPENAI_BASE_URL is required for the openai provider"))
		}
	}
	return errors.Join(errs...)
}

// SlogLevel maps the log level option to a slog level
func (o *Options) SlogLevel() slog.Level {
	switch strings.ToLower(o.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
