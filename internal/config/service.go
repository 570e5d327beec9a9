package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service configures the retrieval side: the HTTP server, the vector store,
// and the generation credentials. String fields support ${VAR} expansion.
type Service struct {
	// Addr is the HTTP listen address for `careloop serve`.
	Addr string `yaml:"addr"`

	// DataDir is the directory holding the generated CSV dataset.
	DataDir string `yaml:"data_dir"`

	// StorePath is the SQLite file backing the vector collection.
	// Empty means DataDir/careloop.db.
	StorePath string `yaml:"store_path"`

	// LogLevel sets verbosity: "info" (default), "debug", or "trace".
	// "debug" also enables the JSONL decision log.
	LogLevel string `yaml:"log_level"`

	// GeminiAPIKeys is a comma-separated credential pool for generation.
	GeminiAPIKeys string `yaml:"gemini_api_keys,omitempty"`

	// OpenRouterAPIKey is the fallback credential used when the Gemini
	// ladder is exhausted.
	OpenRouterAPIKey string `yaml:"openrouter_api_key,omitempty"`

	// Offline disables remote generation and answers with the local
	// extractive fallback. Useful for demos and tests.
	Offline bool `yaml:"offline"`
}

// DefaultService returns service settings suitable for a local demo run.
func DefaultService() *Service {
	return &Service{
		Addr:     ":8000",
		DataDir:  "data",
		LogLevel: "info",
	}
}

// LoadService loads service settings from a YAML file if it exists, then
// applies environment overrides. A missing file is not an error; defaults
// plus the environment apply.
func LoadService(path string) (*Service, error) {
	s := DefaultService()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading service config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("parsing service config: %w", err)
			}
		}
	}

	s.GeminiAPIKeys = expandEnvVars(s.GeminiAPIKeys)
	s.OpenRouterAPIKey = expandEnvVars(s.OpenRouterAPIKey)
	s.applyEnvOverrides()
	return s, nil
}

// applyEnvOverrides applies CARELOOP_* environment overrides, with the bare
// provider variables accepted as a convenience.
func (s *Service) applyEnvOverrides() {
	if v := os.Getenv("CARELOOP_ADDR"); v != "" {
		s.Addr = v
	}
	if v := os.Getenv("CARELOOP_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := os.Getenv("CARELOOP_STORE_PATH"); v != "" {
		s.StorePath = v
	}
	if v := os.Getenv("CARELOOP_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("CARELOOP_GEMINI_API_KEYS"); v != "" {
		s.GeminiAPIKeys = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && s.GeminiAPIKeys == "" {
		s.GeminiAPIKeys = v
	}
	if v := os.Getenv("CARELOOP_OPENROUTER_API_KEY"); v != "" {
		s.OpenRouterAPIKey = v
	} else if v := os.Getenv("OPENROUTER_API_KEY"); v != "" && s.OpenRouterAPIKey == "" {
		s.OpenRouterAPIKey = v
	}
	if v := os.Getenv("CARELOOP_OFFLINE"); v != "" {
		s.Offline = v == "true" || v == "1"
	}
}

// ResolveStorePath returns the effective SQLite path.
func (s *Service) ResolveStorePath() string {
	if s.StorePath != "" {
		return s.StorePath
	}
	return filepath.Join(s.DataDir, "careloop.db")
}

// GeminiKeyPool splits the comma-separated credential pool, dropping empties.
func (s *Service) GeminiKeyPool() []string {
	var pool []string
	for _, k := range strings.Split(s.GeminiAPIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			pool = append(pool, k)
		}
	}
	return pool
}

// RedactedKeys returns the credential pool with most characters masked,
// for safe logging.
func (s *Service) RedactedKeys() []string {
	pool := s.GeminiKeyPool()
	out := make([]string, len(pool))
	for i, k := range pool {
		if len(k) < 12 {
			out[i] = "(set)"
			continue
		}
		out[i] = k[:4] + "..." + k[len(k)-4:]
	}
	return out
}
