package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server and the manage CLI read from the environment.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=kvartal port=5432 sslmode=disable"`
	SessionSecret  string `env:"SESSION_SECRET" envDefault:"secret_key_change_me"`
	MediaDir       string `env:"MEDIA_DIR" envDefault:"./media"`
	TemplatesDir   string `env:"TEMPLATES_DIR" envDefault:"./web/templates"`
	StaticDir      string `env:"STATIC_DIR" envDefault:"./web/static"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string `env:"LOG_FILE" envDefault:"server.log"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	GinMode        string `env:"GIN_MODE" envDefault:"debug"`
}

// Load reads an optional .env file and then parses the environment.
// A missing .env is not an error; the second return reports whether one was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, dotenv, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, dotenv, nil
}
