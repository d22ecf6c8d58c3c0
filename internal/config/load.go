package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config
// file. Environment variables (prefix ANKIGEN_, nested keys joined with _)
// take precedence over values from the config file, which takes precedence
// over defaults. Returns a populated Config struct or an error if loading
// or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing file is fine; env vars and defaults still apply.
	}

	v.SetEnvPrefix("ANKIGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The Gemini key is commonly exported as GOOGLE_API_KEY; honor it when
	// the prefixed variable is absent.
	if err := v.BindEnv("llm.gemini_api_key", "ANKIGEN_LLM_GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind environment variable: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("generation.max_cards", 100)
	v.SetDefault("generation.max_iterations", 5)
	v.SetDefault("generation.cards_per_iteration", 5)
	v.SetDefault("generation.examples_dir", "examples")
	v.SetDefault("generation.deck_output_dir", "decks")
	v.SetDefault("generation.preview_output_dir", "previews")

	v.SetDefault("storage.checkpoint_path", "checkpoints/ankigen.sqlite")
}
