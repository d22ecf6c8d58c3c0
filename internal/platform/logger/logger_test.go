package logger

import (
	"testing"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSetupReturnsLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		logger := Setup(config.ServerConfig{Port: 8085, LogLevel: level})
		assert.NotNil(t, logger, "level %q", level)
	}
}

func TestSetupInvalidLevelFallsBack(t *testing.T) {
	logger := Setup(config.ServerConfig{Port: 8085, LogLevel: "loud"})
	assert.NotNil(t, logger)
}
