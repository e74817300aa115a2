// internal/config/config.go
//
// Environment-driven configuration. main loads an optional .env first
// (godotenv), so every key below may come from either source.
//
//   LOG_LEVEL            zerolog level (default info)
//   LOG_FILE             log destination (default wordle.log)
//   WORDS_ANSWERS_FILE   answers list, one word per line
//   WORDS_ALLOWED_FILE   allowed guesses, one word per line
//   WORDLE_MODE          random | daily (default random)
//   DAILY_SALT           HMAC salt for daily mode (default local_dev_salt)
//   REVEAL_INTERVAL_MS   per-letter reveal interval (default 250)
//   INVALID_FLASH_MS     "not in word list" display time (default 1000)
//   STATS_BACKEND        memory | sqlite (default memory)

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalid wraps every validation failure from Load.
var ErrInvalid = errors.New("invalid config")

const (
	ModeRandom = "random"
	ModeDaily  = "daily"

	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	LogLevel    zerolog.Level
	LogFile     string
	AnswersFile string
	AllowedFile string
	Mode        string
	DailySalt   string

	RevealInterval time.Duration
	InvalidFlash   time.Duration

	StatsBackend string
}

// Load reads the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	var c Config
	lvl, err := zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return c, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalid, err)
	}
	c.LogLevel = lvl
	c.LogFile = get("LOG_FILE", "wordle.log")
	c.AnswersFile = getenv("WORDS_ANSWERS_FILE")
	c.AllowedFile = getenv("WORDS_ALLOWED_FILE")
	c.DailySalt = get("DAILY_SALT", "local_dev_salt")

	c.Mode = get("WORDLE_MODE", ModeRandom)
	if c.Mode != ModeRandom && c.Mode != ModeDaily {
		return c, fmt.Errorf("%w: WORDLE_MODE %q", ErrInvalid, c.Mode)
	}
	c.StatsBackend = get("STATS_BACKEND", BackendMemory)
	if c.StatsBackend != BackendMemory && c.StatsBackend != BackendSQLite {
		return c, fmt.Errorf("%w: STATS_BACKEND %q", ErrInvalid, c.StatsBackend)
	}

	if c.RevealInterval, err = millis(get, "REVEAL_INTERVAL_MS", 250); err != nil {
		return c, err
	}
	if c.InvalidFlash, err = millis(get, "INVALID_FLASH_MS", 1000); err != nil {
		return c, err
	}
	return c, nil
}

func millis(get func(k, def string) string, key string, def int) (time.Duration, error) {
	raw := get(key, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalid, key, raw)
	}
	return time.Duration(n) * time.Millisecond, nil
}
