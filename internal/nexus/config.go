package nexus

import (
	"context"
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigError represents domain-specific configuration errors
type ConfigError struct {
	Code    string
	Message string
	Field   string
	Cause   error
}

func (e ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e ConfigError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeInvalidType  = "CONFIG_INVALID_TYPE"
	ErrCodeFileNotFound = "CONFIG_FILE_NOT_FOUND"
	ErrCodeValidation   = "CONFIG_VALIDATION_FAILED"
	ErrCodeEnvironment  = "CONFIG_ENV_READ_FAILED"
	ErrCodeMerge        = "CONFIG_MERGE_FAILED"
)

// Validator handles configuration validation
type Validator interface {
	Validate(ctx context.Context, cfg interface{}) error
}

// SelfValidator is implemented by config structs that check their own invariants.
type SelfValidator interface {
	Validate() error
}

// LoaderOptions contains configuration for the loader
type LoaderOptions struct {
	DefaultFileName string
	FileFlag        string
	FileName        string
	OnlyEnvironment bool
	Defaults        interface{}
	Validator       Validator
	Timeout         time.Duration
}

// Loader reads configuration from env vars and an optional file, fills zero
// fields from defaults and validates the result.
type Loader struct {
	options LoaderOptions
}

// LoaderOption is a functional option for configuring the loader
type LoaderOption func(*LoaderOptions)

// WithFileName sets an explicit configuration file
func WithFileName(fileName string) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileName = fileName
	}
}

// WithOnlyEnvironment disables file loading
func WithOnlyEnvironment() LoaderOption {
	return func(o *LoaderOptions) {
		o.OnlyEnvironment = true
	}
}

// WithDefaults merges defaults into every field left zero after loading.
// defaults must be a pointer to the same struct type as the target.
func WithDefaults(defaults interface{}) LoaderOption {
	return func(o *LoaderOptions) {
		o.Defaults = defaults
	}
}

// WithValidator replaces the struct-tag validator
func WithValidator(v Validator) LoaderOption {
	return func(o *LoaderOptions) {
		o.Validator = v
	}
}

// NewLoader creates a new configuration loader with options
func NewLoader(opts ...LoaderOption) *Loader {
	options := LoaderOptions{
		DefaultFileName: ".env",
		FileFlag:        "config",
		Validator:       &DefaultValidator{validate: validator.New()},
		Timeout:         30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Loader{options: options}
}

// Load loads configuration from all configured sources
func (l *Loader) Load(cfg interface{}) error {
	return l.LoadWithContext(context.Background(), cfg)
}

// LoadWithContext loads configuration with context support
func (l *Loader) LoadWithContext(ctx context.Context, cfg interface{}) error {
	if l.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.options.Timeout)
		defer cancel()
	}

	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		return &ConfigError{
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("configuration must be a pointer to struct, got %T", cfg),
		}
	}

	if err := l.read(cfg); err != nil {
		return err
	}

	if l.options.Defaults != nil {
		if err := mergo.Merge(cfg, l.options.Defaults); err != nil {
			return &ConfigError{Code: ErrCodeMerge, Message: "failed to merge defaults", Cause: err}
		}
	}

	if err := l.options.Validator.Validate(ctx, cfg); err != nil {
		return &ConfigError{Code: ErrCodeValidation, Message: "configuration is invalid", Cause: err}
	}

	if sv, ok := cfg.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return &ConfigError{Code: ErrCodeValidation, Message: "configuration is invalid", Cause: err}
		}
	}

	return nil
}

func (l *Loader) read(cfg interface{}) error {
	fileName := ""
	if !l.options.OnlyEnvironment {
		fileName = l.resolveFileName()
	}

	if fileName == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return &ConfigError{Code: ErrCodeEnvironment, Message: "failed to read environment", Cause: err}
		}
		return nil
	}

	// ReadConfig applies the file first, then env vars on top.
	if err := cleanenv.ReadConfig(fileName, cfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeFileNotFound,
			Message: fmt.Sprintf("failed to read config file %s", fileName),
			Field:   fileName,
			Cause:   err,
		}
	}
	return nil
}

func (l *Loader) resolveFileName() string {
	if l.options.FileName != "" {
		return l.options.FileName
	}

	if name := l.fileNameFromFlag(); name != "" {
		return name
	}

	if l.options.DefaultFileName != "" {
		if _, err := os.Stat(l.options.DefaultFileName); err == nil {
			return l.options.DefaultFileName
		}
	}
	return ""
}

func (l *Loader) fileNameFromFlag() string {
	if l.options.FileFlag == "" {
		return ""
	}
	if f := flag.Lookup(l.options.FileFlag); f != nil {
		return f.Value.String()
	}
	return ""
}

// DefaultValidator validates `validate` struct tags.
type DefaultValidator struct {
	validate *validator.Validate
}

func (v *DefaultValidator) Validate(_ context.Context, cfg interface{}) error {
	if v.validate == nil {
		v.validate = validator.New()
	}
	return v.validate.Struct(cfg)
}
