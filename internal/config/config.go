// ABOUTME: Environment-based configuration with .env auto-loading
// ABOUTME: Struct tags parsed by caarlos0/env, defaults suit local development

// Package config loads service configuration from the environment. A .env
// file in the working directory is applied first, without overriding
// variables already set by the process environment.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full translatord configuration.
type Config struct {
	Server        Server
	Glossary      Glossary
	Collaborators Collaborators
	Log           Log
}

// Server configures the two HTTP listeners.
type Server struct {
	Port              int           `env:"PORT" envDefault:"8000"`
	ObservabilityPort int           `env:"OBSERVABILITY_PORT" envDefault:"9090"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	MaxAudioBytes     int64         `env:"MAX_AUDIO_BYTES" envDefault:"26214400"` // 25 MiB
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Glossary configures the terminology resource.
type Glossary struct {
	Path      string   `env:"GLOSSARY_PATH" envDefault:"resources/defense_glossary.json"`
	Languages []string `env:"GLOSSARY_LANGUAGES" envDefault:"hi"`
}

// Collaborators configures the external model sidecars.
type Collaborators struct {
	TranslatorURL    string        `env:"TRANSLATOR_URL" envDefault:"http://127.0.0.1:8100"`
	WhisperURL       string        `env:"WHISPER_URL" envDefault:"http://127.0.0.1:8101"`
	PiperURL         string        `env:"PIPER_URL"` // Empty disables synthesis
	TranslateTimeout time.Duration `env:"TRANSLATE_TIMEOUT" envDefault:"30s"`
}

// Log configures structured logging.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

var dotenvOnce sync.Once

// Load parses the full configuration from the environment.
func Load() (*Config, error) {
	dotenvOnce.Do(func() {
		// Missing .env is the normal production case.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Glossary.Languages) == 0 {
		return nil, fmt.Errorf("config: GLOSSARY_LANGUAGES must name at least one target language")
	}
	return &cfg, nil
}
