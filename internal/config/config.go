// Package config loads run options from the environment and validates the
// run configuration handed to the pipeline.
//
// Loading order:
//  1. .env file via godotenv (non-fatal if absent, never overrides the environment).
//  2. LINDEX_* variables via envconfig, providing defaults for the CLI flags.
//  3. CLI flags override those defaults.
//  4. Build validates the result with go-playground/validator.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/forest-guardian/lindex/internal/quality"
	"github.com/forest-guardian/lindex/internal/raster"
	"github.com/forest-guardian/lindex/internal/spectral"
)

const envPrefix = "LINDEX"

type ErrorType string

const (
	ErrParsing      ErrorType = "PARSING"
	ErrValidation   ErrorType = "VALIDATION"
	ErrUnknownIndex ErrorType = "UNKNOWN_INDEX"
)

// Error is returned for every configuration failure.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Environment holds the LINDEX_* variables.
type Environment struct {
	Index             string  `envconfig:"INDEX" default:"ndwi"`
	HowStrict         float64 `envconfig:"HOW_STRICT" default:"999"`
	Debug             bool    `envconfig:"DEBUG" default:"false"`
	Quiet             bool    `envconfig:"QUIET" default:"false"`
	Video             bool    `envconfig:"VIDEO" default:"false"`
	VisMinSize        int     `envconfig:"VIS_MIN_SIZE" default:"800"`
	DiscordWebhookURL string  `envconfig:"DISCORD_WEBHOOK_URL"`
}

// LoadEnvironment reads .env and the LINDEX_* variables.
func LoadEnvironment() (Environment, error) {
	_ = godotenv.Load()

	var env Environment
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Environment{}, &Error{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}
	return env, nil
}

// Options are the raw values a run is configured from.
type Options struct {
	InputDir          string
	BoundingBox       []float64
	HowStrict         float64
	Index             string
	Debug             bool
	Quiet             bool
	Video             bool
	VisMinSize        int
	DiscordWebhookURL string
}

// Options returns run options defaulted from the environment.
func (e Environment) Options() Options {
	return Options{
		HowStrict:         e.HowStrict,
		Index:             e.Index,
		Debug:             e.Debug,
		Quiet:             e.Quiet,
		Video:             e.Video,
		VisMinSize:        e.VisMinSize,
		DiscordWebhookURL: e.DiscordWebhookURL,
	}
}

type bounds struct {
	XMin float64
	YMin float64
	XMax float64 `validate:"gtfield=XMin"`
	YMax float64 `validate:"gtfield=YMin"`
}

// RunConfig is the validated configuration of one run. It is passed by value
// and never changed after Build returns.
type RunConfig struct {
	InputDir          string  `validate:"required,dir"`
	HowStrict         float64 `validate:"strictness"`
	VisMinSize        int     `validate:"gte=1"`
	DiscordWebhookURL string  `validate:"omitempty,url"`
	Debug             bool
	Quiet             bool
	Video             bool

	Window raster.Window       `validate:"-"`
	Index  spectral.Definition `validate:"-"`
}

func validStrictness(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v == quality.Disabled || (v > 0 && v <= 1)
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("strictness", validStrictness)
	return validate
}

// Build validates options and resolves the index and window. An unknown
// index is reported before any other check.
func Build(opts Options) (RunConfig, error) {
	def, err := spectral.Lookup(opts.Index)
	if err != nil {
		return RunConfig{}, &Error{Type: ErrUnknownIndex, Message: "index is not registered", Err: err}
	}

	if len(opts.BoundingBox) != 4 {
		return RunConfig{}, &Error{
			Type:    ErrValidation,
			Message: fmt.Sprintf("bounding box needs 4 values (xmin ymin xmax ymax), got %d", len(opts.BoundingBox)),
		}
	}
	validate := newValidator()
	b := bounds{XMin: opts.BoundingBox[0], YMin: opts.BoundingBox[1], XMax: opts.BoundingBox[2], YMax: opts.BoundingBox[3]}
	if err := validate.Struct(b); err != nil {
		return RunConfig{}, &Error{Type: ErrValidation, Message: "invalid bounding box", Err: err}
	}
	window, err := raster.WindowFromSlice(opts.BoundingBox)
	if err != nil {
		return RunConfig{}, &Error{Type: ErrValidation, Message: "invalid bounding box", Err: err}
	}

	cfg := RunConfig{
		InputDir:          opts.InputDir,
		HowStrict:         opts.HowStrict,
		VisMinSize:        opts.VisMinSize,
		DiscordWebhookURL: opts.DiscordWebhookURL,
		Debug:             opts.Debug,
		Quiet:             opts.Quiet,
		Video:             opts.Video,
		Window:            window,
		Index:             def,
	}
	if err := validate.Struct(cfg); err != nil {
		return RunConfig{}, &Error{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	return cfg, nil
}

// ClassificationEnabled reports whether scenes are screened for clouds.
func (c RunConfig) ClassificationEnabled() bool {
	return c.HowStrict != quality.Disabled
}
