// Package genai provides a thin client for the external generative-language
// API used to answer questions the local knowledge base cannot.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/pkg/utils"
)

// ErrMissingAPIKey is returned by NewClient when no credential is supplied.
// There is deliberately no built-in default key: without a credential the
// external API stays permanently unavailable.
var ErrMissingAPIKey = errors.New("genai: API key is required")

// ErrUnavailable is returned by Ask when the last probe or call failed.
var ErrUnavailable = errors.New("genai: API unavailable")

// APIError carries the upstream failure of a generate call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("genai: API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("genai: API error (status %d)", e.StatusCode)
}

// contextExcerptChars caps how much of each context document enters the prompt.
const contextExcerptChars = 500

// probePrompt is the minimal fixed prompt used by availability probes.
const probePrompt = "Responda apenas: ok"

// Client calls the generateContent endpoint. Availability is tracked as
// state: a failed call marks the client unavailable until the next
// successful Probe.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	config     *config.GenAIConfig

	mu          sync.Mutex
	available   bool
	lastFailure string
}

// NewClient creates a client from cfg and an externally supplied API key.
// Fails closed with ErrMissingAPIKey when the key is blank.
func NewClient(cfg *config.GenAIConfig, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     apiKey,
		config:     cfg,
	}, nil
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateResponse is the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Probe sends the minimal test prompt and records availability. Returns true
// on a 2xx response carrying a well-formed completion. Never raises: failures
// are captured as state and reported by LastFailure.
func (c *Client) Probe(ctx context.Context) bool {
	_, err := c.generate(ctx, probePrompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.available = false
		c.lastFailure = err.Error()
		return false
	}
	c.available = true
	c.lastFailure = ""
	return true
}

// Available reports whether the last probe or call succeeded.
func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// LastFailure returns the recorded reason of the most recent failure.
func (c *Client) LastFailure() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFailure
}

// Ask sends the question with up to the provided context documents and returns
// the first candidate's text. Requires a prior successful Probe. A failed call
// marks the client unavailable until the next successful Probe.
func (c *Client) Ask(ctx context.Context, question string, contextDocs []*models.DocumentRecord) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	answer, err := c.generate(ctx, buildPrompt(question, contextDocs))
	if err != nil {
		c.mu.Lock()
		c.available = false
		c.lastFailure = err.Error()
		c.mu.Unlock()
		return "", err
	}
	return answer, nil
}

// buildPrompt embeds role framing, the context documents, formatting
// instructions, and the literal question.
func buildPrompt(question string, contextDocs []*models.DocumentRecord) string {
	var b strings.Builder
	b.WriteString("Você é o assistente do portal de treinamentos de um sistema de gestão hoteleira. ")
	b.WriteString("Responda com base nos documentos de apoio abaixo quando possível.\n\n")
	for _, doc := range contextDocs {
		fmt.Fprintf(&b, "Documento: %s\n%s\n\n", doc.Title, utils.Truncate(doc.Content, contextExcerptChars))
	}
	b.WriteString("Responda em português, em parágrafos curtos e objetivos, sem inventar funcionalidades.\n\n")
	b.WriteString("Pergunta: ")
	b.WriteString(question)
	return b.String()
}

// generate performs one generateContent call and returns the first candidate.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	settings := make([]safetySetting, 0, len(harmCategories))
	for _, cat := range harmCategories {
		settings = append(settings, safetySetting{Category: cat, Threshold: c.config.SafetyThreshold})
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
			TopP:            c.config.TopP,
			TopK:            c.config.TopK,
		},
		SafetySettings: settings,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.endpoint, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "malformed response body"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if genResp.Error != nil {
			msg = genResp.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "no candidates returned"}
	}

	text := strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "empty candidate text"}
	}
	return text, nil
}
