// Package config provides configuration loading and structs for the concierge server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Portal    PortalConfig    `yaml:"portal"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Search    SearchConfig    `yaml:"search"`
	Assistant AssistantConfig `yaml:"assistant"`
	GenAI     GenAIConfig     `yaml:"genai"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path of the local state database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// PortalConfig describes where the help documents are served from.
type PortalConfig struct {
	// BaseURL is the root the category folders hang off, e.g. the portal origin.
	BaseURL string `yaml:"base_url"`
	// Extension of the help documents, including the dot.
	Extension string `yaml:"extension"`
	// TimeoutSeconds bounds each document fetch.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// KnowledgeConfig holds knowledge-base loading and caching settings.
type KnowledgeConfig struct {
	ManifestPath     string `yaml:"manifest_path"`
	CacheHours       int    `yaml:"cache_hours"`
	MinDocumentChars int    `yaml:"min_document_chars"`
	BatchSize        int    `yaml:"batch_size"`
	MaxContentChars  int    `yaml:"max_content_chars"`
	MaxKeywords      int    `yaml:"max_keywords"`
	DocCacheSize     int    `yaml:"doc_cache_size"`
	DocCacheMinutes  int    `yaml:"doc_cache_minutes"`
}

// SearchConfig holds the relevance heuristic settings. The score constants are
// tuning knobs with no deeper rationale; they are kept configurable on purpose.
type SearchConfig struct {
	MinChars        int `yaml:"min_chars"`
	MaxResults      int `yaml:"max_results"`
	TitleScore      int `yaml:"title_score"`
	ContentScore    int `yaml:"content_score"`
	ExactMatchBonus int `yaml:"exact_match_bonus"`
	MinTokenLength  int `yaml:"min_token_length"`
	ExcerptContext  int `yaml:"excerpt_context"`
}

// AssistantConfig holds the response-routing settings.
type AssistantConfig struct {
	UseExternal         *bool    `yaml:"use_external"`
	MinQuestionChars    int      `yaml:"min_question_chars"`
	EscalationThreshold int      `yaml:"escalation_threshold"`
	ContextDocs         int      `yaml:"context_docs"`
	QueryLogLimit       int      `yaml:"query_log_limit"`
	TriggerPhrases      []string `yaml:"trigger_phrases"`
}

// UseExternalOrDefault returns whether escalation is enabled; defaults to true.
func (a *AssistantConfig) UseExternalOrDefault() bool {
	if a.UseExternal != nil {
		return *a.UseExternal
	}
	return true
}

// GenAIConfig holds the external generative API settings. The API key is never
// read from the config file; it comes from the environment only.
type GenAIConfig struct {
	Endpoint        string  `yaml:"endpoint"`
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	TopP            float64 `yaml:"top_p"`
	TopK            int     `yaml:"top_k"`
	SafetyThreshold string  `yaml:"safety_threshold"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Knowledge.ManifestPath = expandPath(cfg.Knowledge.ManifestPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
