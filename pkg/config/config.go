// Package config reads interpreter settings from the environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	KeyPrompt       = "BASIC_PROMPT"
	KeyInputPrompt  = "BASIC_INPUT_PROMPT"
	KeyMaxSteps     = "BASIC_MAX_STEPS"
	KeyServeSteps   = "BASIC_SERVE_MAX_STEPS"
	KeyHistoryFile  = "BASIC_HISTORY_FILE"
	KeyListenAddr   = "BASIC_LISTEN_ADDR"
	KeyJWTSecret    = "BASIC_JWT_SECRET"
	KeyPasswordHash = "BASIC_PASSWORD_HASH"
	KeyTokenTTL     = "BASIC_TOKEN_TTL"
	KeyNoColor      = "BASIC_NO_COLOR"
)

var keys = []string{
	KeyPrompt, KeyInputPrompt, KeyMaxSteps, KeyServeSteps, KeyHistoryFile, KeyListenAddr,
	KeyJWTSecret, KeyPasswordHash, KeyTokenTTL, KeyNoColor,
}

type Config struct {
	Prompt      string
	InputPrompt string
	MaxSteps    int

	// ServeMaxSteps bounds runs in remote sessions. It is never 0, so a
	// client cannot start a run that outlives its connection.
	ServeMaxSteps int

	HistoryFile  string
	ListenAddr   string
	JWTSecret    string
	PasswordHash string
	TokenTTL     time.Duration
	NoColor      bool
}

const DefaultServeMaxSteps = 1_000_000

func Default() Config {
	history := ".basic_history"
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, history)
	}
	return Config{
		InputPrompt:   "?",
		ServeMaxSteps: DefaultServeMaxSteps,
		HistoryFile:   history,
		ListenAddr:    ":8080",
		TokenTTL:      time.Hour,
	}
}

// Load reads the given .env files (missing ones are skipped) into the process
// environment without overriding variables already set, then builds a Config
// from the environment.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", file, err)
		}
	}

	env := make(map[string]string)
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return FromMap(env)
}

// FromMap builds a Config from key/value pairs, falling back to Default for
// absent keys.
func FromMap(env map[string]string) (Config, error) {
	cfg := Default()

	if v, ok := env[KeyPrompt]; ok {
		cfg.Prompt = v
	}
	if v, ok := env[KeyInputPrompt]; ok {
		cfg.InputPrompt = v
	}
	if v, ok := env[KeyHistoryFile]; ok && v != "" {
		cfg.HistoryFile = v
	}
	if v, ok := env[KeyListenAddr]; ok && v != "" {
		cfg.ListenAddr = v
	}
	cfg.JWTSecret = env[KeyJWTSecret]
	cfg.PasswordHash = env[KeyPasswordHash]

	if v, ok := env[KeyMaxSteps]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("config: %s must be a non-negative integer, got %q", KeyMaxSteps, v)
		}
		cfg.MaxSteps = n
	}
	if v, ok := env[KeyServeSteps]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: %s must be a positive integer, got %q", KeyServeSteps, v)
		}
		cfg.ServeMaxSteps = n
	}
	if v, ok := env[KeyTokenTTL]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: %s must be a positive duration, got %q", KeyTokenTTL, v)
		}
		cfg.TokenTTL = d
	}
	if v, ok := env[KeyNoColor]; ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s must be a boolean, got %q", KeyNoColor, v)
		}
		cfg.NoColor = b
	}

	return cfg, nil
}
