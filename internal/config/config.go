package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage"    validate:"required"`
}

// ServerConfig contains settings for the local preview server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains all model integration related settings.
type LLMConfig struct {
	// GeminiAPIKey authenticates against the Gemini API. A missing key is a
	// configuration error: generation never starts without it.
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// ModelName selects the Gemini model used for all prompt calls.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// Temperature is passed through to the model on every call.
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// MaxRetries bounds retry attempts for transient API failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the base delay for exponential backoff.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// GenerationConfig carries the iteration-controller ceilings and the
// few-shot example location.
type GenerationConfig struct {
	MaxCards          int    `mapstructure:"max_cards"           validate:"required,gt=0"`
	MaxIterations     int    `mapstructure:"max_iterations"      validate:"required,gt=0"`
	CardsPerIteration int    `mapstructure:"cards_per_iteration" validate:"required,gt=0"`
	ExamplesDir       string `mapstructure:"examples_dir"        validate:"required"`
	DeckOutputDir     string `mapstructure:"deck_output_dir"     validate:"required"`
	PreviewOutputDir  string `mapstructure:"preview_output_dir"  validate:"required"`
}

// StorageConfig contains checkpoint store settings.
type StorageConfig struct {
	// CheckpointPath is the SQLite file backing session resumption.
	// The store is best-effort: a broken path degrades to no checkpointing.
	CheckpointPath string `mapstructure:"checkpoint_path" validate:"required"`
}
