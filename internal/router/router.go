// Package router decides, per question, between the local knowledge base and
// the external assistant, and renders the response markup.
package router

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/knowledge"
	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/internal/search"
	"github.com/hoteleiro/concierge/internal/storage"
	"github.com/hoteleiro/concierge/pkg/utils"
)

// loggedQuestionChars caps how much of the question enters the query log.
const loggedQuestionChars = 200

// Generator answers questions through the external API. Implemented by
// genai.Client; nil when no credential was supplied.
type Generator interface {
	Available() bool
	Ask(ctx context.Context, question string, contextDocs []*models.DocumentRecord) (string, error)
}

// Router routes questions and always produces a renderable response:
// failures surface as markup, never as errors.
type Router struct {
	engine    *search.Engine
	generator Generator
	store     storage.Store
	session   *knowledge.Session
	config    *config.AssistantConfig
	searchCfg *config.SearchConfig
	logger    *zap.Logger
}

// NewRouter creates a router. generator may be nil, which disables escalation.
func NewRouter(engine *search.Engine, generator Generator, store storage.Store,
	session *knowledge.Session, cfg *config.AssistantConfig, searchCfg *config.SearchConfig,
	logger *zap.Logger) *Router {
	return &Router{
		engine:    engine,
		generator: generator,
		store:     store,
		session:   session,
		config:    cfg,
		searchCfg: searchCfg,
		logger:    logger,
	}
}

// Answer produces the response for a question. Every path returns markup;
// the query log records the outcome regardless of mode.
func (r *Router) Answer(ctx context.Context, question string) *models.ChatResponse {
	question = strings.TrimSpace(question)

	var resp *models.ChatResponse
	switch {
	case !r.session.Ready():
		resp = renderNotReady()
	case len([]rune(question)) < r.config.MinQuestionChars:
		resp = renderTooShort(r.config.MinQuestionChars)
	default:
		resp = r.answer(ctx, question)
	}

	if r.session.Degraded() {
		resp.Degraded = true
		resp.HTML = degradedBanner + resp.HTML
	}
	r.session.SetLastMode(resp.Mode)
	r.logQuery(ctx, question, resp)
	return resp
}

func (r *Router) answer(ctx context.Context, question string) *models.ChatResponse {
	results := r.engine.Search(question, r.session.KnowledgeBase())

	if r.shouldEscalate(question, results) {
		contextDocs := topDocuments(results, r.config.ContextDocs)
		answer, err := r.generator.Ask(ctx, question, contextDocs)
		if err == nil {
			return renderExternal(answer, contextDocs)
		}
		r.logger.Warn("external assistant failed, answering locally",
			zap.String("question", utils.Truncate(question, loggedQuestionChars)),
			zap.Error(err))
	}
	return r.renderLocal(question, results)
}

// shouldEscalate reports whether the question goes to the external API:
// escalation enabled, API available, and the question either carries a
// trigger phrase or the local search came back weak.
func (r *Router) shouldEscalate(question string, results []models.SearchResult) bool {
	if !r.config.UseExternalOrDefault() {
		return false
	}
	if r.generator == nil || !r.generator.Available() {
		return false
	}
	normalized := utils.Normalize(question)
	for _, phrase := range r.config.TriggerPhrases {
		if strings.Contains(normalized, utils.Normalize(phrase)) {
			return true
		}
	}
	if len(results) == 0 {
		return true
	}
	return results[0].Relevance < r.config.EscalationThreshold
}

func topDocuments(results []models.SearchResult, max int) []*models.DocumentRecord {
	if len(results) < max {
		max = len(results)
	}
	docs := make([]*models.DocumentRecord, 0, max)
	for _, res := range results[:max] {
		docs = append(docs, res.Record)
	}
	return docs
}

func (r *Router) logQuery(ctx context.Context, question string, resp *models.ChatResponse) {
	entry := &models.QueryLogEntry{
		ID:            uuid.NewString(),
		Question:      utils.Truncate(question, loggedQuestionChars),
		ResponseChars: len([]rune(resp.HTML)),
		Mode:          resp.Mode,
		CreatedAt:     time.Now(),
	}
	if err := r.store.AppendQuery(ctx, entry); err != nil {
		r.logger.Warn("failed to record query", zap.Error(err))
	}
}
