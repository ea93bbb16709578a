// Package main is the Concierge CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/doccache"
	"github.com/hoteleiro/concierge/internal/genai"
	"github.com/hoteleiro/concierge/internal/knowledge"
	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/internal/router"
	"github.com/hoteleiro/concierge/internal/search"
	"github.com/hoteleiro/concierge/internal/server"
	"github.com/hoteleiro/concierge/internal/storage"
	"github.com/hoteleiro/concierge/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/concierge/config.yaml"
	apiKeyEnv         = "GEMINI_API_KEY"
)

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory wins, so running from the project dir picks up the
// project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("concierge version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	loadCtx, loadCancel := context.WithCancel(context.Background())
	defer loadCancel()

	// Probe the external API and load the knowledge base in the background;
	// the server answers "not ready" until the first load lands.
	go func() {
		if components.Generator != nil {
			if components.Generator.Probe(loadCtx) {
				logger.Info("external API available")
			} else {
				logger.Warn("external API unavailable, answering locally",
					zap.String("reason", components.Generator.LastFailure()))
			}
		}
		kb, degraded, loadErr := components.Loader.Load(loadCtx)
		if loadErr != nil {
			logger.Error("knowledge base load failed", zap.Error(loadErr))
			return
		}
		components.Session.Install(kb, degraded)
		logger.Info("knowledge base ready",
			zap.Int("documents", kb.CountDocuments()),
			zap.Bool("degraded", degraded))
	}()

	// Hot-reload the corpus when the manifest changes.
	var watch *knowledge.ManifestWatcher
	if cfg.Knowledge.ManifestPath != "" {
		watch = knowledge.NewManifestWatcher(cfg.Knowledge.ManifestPath, func() {
			manifest, mErr := knowledge.LoadManifest(cfg.Knowledge.ManifestPath)
			if mErr != nil {
				logger.Warn("manifest reload skipped", zap.Error(mErr))
				return
			}
			components.Loader.SetManifest(manifest)
			kb, degraded, rErr := components.Loader.Reload(context.Background())
			if rErr != nil {
				logger.Warn("manifest-triggered reload failed", zap.Error(rErr))
				return
			}
			components.Session.Install(kb, degraded)
			logger.Info("knowledge base reloaded after manifest change",
				zap.Int("documents", kb.CountDocuments()))
		}, logger)
		if err := watch.Start(loadCtx); err != nil {
			logger.Warn("manifest watcher failed to start", zap.Error(err))
			watch = nil
		}
	}

	srv := server.NewServer(
		components.Router,
		components.Engine,
		components.Loader,
		components.Session,
		components.RouterGenerator(),
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	loadCancel()
	if watch != nil {
		watch.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: concierge ask [flags] <question>")
		os.Exit(1)
	}

	var resp models.ChatResponse
	if err := postJSON(*serverURL+"/api/v1/ask", map[string]string{"question": question}, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[%s]\n%s\n", resp.Mode, resp.HTML)
	for _, src := range resp.Sources {
		fmt.Printf("  fonte: %s (%s) %s\n", src.Title, src.Category, src.Path)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: concierge search [flags] <query>")
		os.Exit(1)
	}

	var resp struct {
		Total   int `json:"total"`
		Results []struct {
			Title     string `json:"title"`
			Category  string `json:"category"`
			Path      string `json:"path"`
			Relevance int    `json:"relevance"`
		} `json:"results"`
	}
	if err := postJSON(*serverURL+"/api/v1/search", map[string]string{"query": query}, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d documento(s)\n", resp.Total)
	for _, hit := range resp.Results {
		fmt.Printf("  %3d  %s (%s) %s\n", hit.Relevance, hit.Title, hit.Category, hit.Path)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

func postJSON(url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}

// Components holds the initialized service dependencies.
type Components struct {
	Storage   storage.Store
	Loader    *knowledge.Loader
	Session   *knowledge.Session
	Engine    *search.Engine
	Generator *genai.Client
	Router    *router.Router
	logger    *zap.Logger
}

// RouterGenerator returns the generator as the router sees it: a nil
// interface when no credential was configured.
func (c *Components) RouterGenerator() router.Generator {
	if c.Generator == nil {
		return nil
	}
	return c.Generator
}

// Close releases held resources.
func (c *Components) Close() {
	if err := c.Storage.Close(); err != nil {
		c.logger.Warn("storage close failed", zap.Error(err))
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	// .env is optional; the environment always wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath, cfg.Assistant.QueryLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	manifest, err := knowledge.LoadManifest(cfg.Knowledge.ManifestPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	fetcher := knowledge.NewHTTPFetcher(cfg.Portal.BaseURL, time.Duration(cfg.Portal.TimeoutSeconds)*time.Second)
	cache := doccache.New(cfg.Knowledge.DocCacheSize, time.Duration(cfg.Knowledge.DocCacheMinutes)*time.Minute)
	loader := knowledge.NewLoader(manifest, fetcher, cfg.Portal.Extension, cache, store, &cfg.Knowledge, logger)
	session := knowledge.NewSession()
	engine := search.NewEngine(&cfg.Search)

	// No credential means no external escalation: local answers only.
	var generator *genai.Client
	if cfg.Assistant.UseExternalOrDefault() {
		generator, err = genai.NewClient(&cfg.GenAI, os.Getenv(apiKeyEnv))
		if err != nil {
			logger.Warn("external API disabled", zap.String("env", apiKeyEnv), zap.Error(err))
			generator = nil
		}
	}

	components := &Components{
		Storage:   store,
		Loader:    loader,
		Session:   session,
		Engine:    engine,
		Generator: generator,
		logger:    logger,
	}
	components.Router = router.NewRouter(engine, components.RouterGenerator(), store, session,
		&cfg.Assistant, &cfg.Search, logger)
	return components, nil
}

func printUsage() {
	fmt.Println(`concierge - Training portal knowledge assistant

Usage:
  concierge server [flags]          Start the HTTP server
  concierge ask [flags] <question>  Ask the assistant
  concierge search [flags] <query>  Search the knowledge base
  concierge status [flags]          Show assistant status
  concierge version                 Show version
  concierge help                    Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/concierge/config.yaml)
  --debug            Enable debug logging

Ask/Search/Status Flags:
  --server string    Server URL (default: http://localhost:8080)

Environment:
  GEMINI_API_KEY     External API credential. Without it the assistant answers
                     from the local knowledge base only. A .env file in the
                     working directory is read when present.

Examples:
  concierge server
  concierge ask "Como funciona o check-in?"
  concierge search faturamento
  concierge status`)
}
