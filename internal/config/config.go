package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                 envDefault:"db.sqlite"`

	GeminiAPIKey  string `env:"Gemini_api_key"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
	GroqAPIKey    string `env:"Groq_api_key"`
	GroqBaseURL   string `env:"GROQ_BASE_URL"   envDefault:"https://api.groq.com/openai/v1"`
	LocalBaseURL  string `env:"LOCAL_BASE_URL"  envDefault:"http://localhost:11434/v1"`
	LocalModel    string `env:"LOCAL_MODEL"     envDefault:"llama3.2"`

	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT"       envDefault:"30s"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES"    envDefault:"20971520"`
	SessionIdleTTL    time.Duration `env:"SESSION_IDLE_TTL"    envDefault:"24h"`
	SessionMaxEntries int           `env:"SESSION_MAX_ENTRIES" envDefault:"10000"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	return parse()
}

func parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
