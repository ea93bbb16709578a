package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/knowledge"
	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/internal/search"
	"github.com/hoteleiro/concierge/internal/storage"
)

type fakeGenerator struct {
	available bool
	answer    string
	err       error

	asked   bool
	gotDocs []*models.DocumentRecord
}

func (g *fakeGenerator) Available() bool { return g.available }

func (g *fakeGenerator) Ask(_ context.Context, _ string, docs []*models.DocumentRecord) (string, error) {
	g.asked = true
	g.gotDocs = docs
	return g.answer, g.err
}

type fixture struct {
	router  *Router
	session *knowledge.Session
	store   *storage.MemoryStore
	gen     *fakeGenerator
}

func newFixture(t *testing.T, gen *fakeGenerator, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if mutate != nil {
		mutate(cfg)
	}

	store := storage.NewMemoryStore(cfg.Assistant.QueryLogLimit)
	session := knowledge.NewSession()

	kb := models.NewKnowledgeBase()
	kb.Add(&models.DocumentRecord{
		Name: "nova-reserva.html", Title: "Nova Reserva", Category: "manuais",
		Path:    "manuais/nova-reserva.html",
		Content: "Para criar uma reserva acesse o painel de reservas e informe os dados do hospede.",
	})
	kb.Add(&models.DocumentRecord{
		Name: "faturamento.html", Title: "Faturamento", Category: "manuais",
		Path:    "manuais/faturamento.html",
		Content: "Emissao de notas fiscais e fechamento de faturas do periodo.",
	})
	session.Install(kb, false)

	var generator Generator
	if gen != nil {
		generator = gen
	}
	r := NewRouter(search.NewEngine(&cfg.Search), generator, store, session,
		&cfg.Assistant, &cfg.Search, zap.NewNop())
	return &fixture{router: r, session: session, store: store, gen: gen}
}

func TestRouter_NotReadyApologizes(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.session = knowledge.NewSession() // not installed
	f.router.session = f.session

	resp := f.router.Answer(context.Background(), "como faço uma reserva?")
	if resp.Mode != models.ModeError {
		t.Errorf("mode = %q, want error", resp.Mode)
	}
	if !strings.Contains(resp.HTML, "carregada") {
		t.Errorf("HTML = %q, want loading apology", resp.HTML)
	}
}

func TestRouter_ShortQuestionGetsHint(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.router.Answer(context.Background(), "oi")
	if resp.Mode != models.ModeError {
		t.Errorf("mode = %q, want error", resp.Mode)
	}
	if !strings.Contains(resp.HTML, "3 caracteres") {
		t.Errorf("HTML = %q, want minimum length hint", resp.HTML)
	}
}

func TestRouter_LocalResultsRendered(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.router.Answer(context.Background(), "reserva")
	if resp.Mode != models.ModeLocal {
		t.Fatalf("mode = %q, want local", resp.Mode)
	}
	if !strings.Contains(resp.HTML, "Nova Reserva") || !strings.Contains(resp.HTML, "<mark>") {
		t.Errorf("HTML = %q, want linked title and highlighted excerpt", resp.HTML)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Path != "manuais/nova-reserva.html" {
		t.Errorf("sources = %+v, want the matched document", resp.Sources)
	}
}

func TestRouter_NoResultsGetSuggestions(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.router.Answer(context.Background(), "housekeeping")
	if resp.Mode != models.ModeLocal {
		t.Fatalf("mode = %q, want local", resp.Mode)
	}
	if !strings.Contains(resp.HTML, "Nenhum documento") || !strings.Contains(resp.HTML, "ortografia") {
		t.Errorf("HTML = %q, want no-results guidance", resp.HTML)
	}
}

func TestRouter_TriggerPhraseEscalates(t *testing.T) {
	gen := &fakeGenerator{available: true, answer: "O check-in é feito no menu Recepção.\n\nSiga os passos da tela."}
	f := newFixture(t, gen, nil)

	// Zero local results plus a trigger phrase: deterministic escalation.
	resp := f.router.Answer(context.Background(), "Como funciona o check-in?")
	if !gen.asked {
		t.Fatal("generator was not asked")
	}
	if resp.Mode != models.ModeExternal {
		t.Errorf("mode = %q, want external", resp.Mode)
	}
	if !strings.Contains(resp.HTML, "inteligência artificial") {
		t.Errorf("HTML = %q, want disclaimer banner", resp.HTML)
	}
	if f.session.LastMode() != models.ModeExternal {
		t.Errorf("LastMode() = %q, want external", f.session.LastMode())
	}
}

func TestRouter_EscalationDisabledStaysLocal(t *testing.T) {
	gen := &fakeGenerator{available: true, answer: "resposta"}
	f := newFixture(t, gen, func(cfg *config.Config) {
		off := false
		cfg.Assistant.UseExternal = &off
	})

	resp := f.router.Answer(context.Background(), "Como funciona o check-in?")
	if gen.asked {
		t.Error("generator asked with escalation disabled")
	}
	if resp.Mode != models.ModeLocal {
		t.Errorf("mode = %q, want local", resp.Mode)
	}
}

func TestRouter_UnavailableGeneratorStaysLocal(t *testing.T) {
	gen := &fakeGenerator{available: false}
	f := newFixture(t, gen, nil)

	resp := f.router.Answer(context.Background(), "Como funciona o check-in?")
	if gen.asked {
		t.Error("generator asked while unavailable")
	}
	if resp.Mode != models.ModeLocal {
		t.Errorf("mode = %q, want local fallback", resp.Mode)
	}
}

func TestRouter_NilGeneratorStaysLocal(t *testing.T) {
	f := newFixture(t, nil, nil)

	resp := f.router.Answer(context.Background(), "Como funciona o check-in?")
	if resp.Mode != models.ModeLocal {
		t.Errorf("mode = %q, want local with no generator wired", resp.Mode)
	}
}

func TestRouter_GeneratorFailureFallsBackLocal(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("backend overloaded")}
	f := newFixture(t, gen, nil)

	resp := f.router.Answer(context.Background(), "por que a reserva aparece duplicada?")
	if !gen.asked {
		t.Fatal("generator was not asked")
	}
	if resp.Mode != models.ModeLocal {
		t.Errorf("mode = %q, want local fallback after API failure", resp.Mode)
	}
	if strings.Contains(strings.ToLower(resp.HTML), "erro") {
		t.Errorf("HTML = %q, must not surface a raw error", resp.HTML)
	}
}

func TestRouter_ContextDocsCapped(t *testing.T) {
	gen := &fakeGenerator{available: true, answer: "resposta"}
	f := newFixture(t, gen, func(cfg *config.Config) {
		cfg.Assistant.ContextDocs = 1
		// Force escalation even with strong local results.
		cfg.Assistant.EscalationThreshold = 1000
	})

	resp := f.router.Answer(context.Background(), "reserva")
	if resp.Mode != models.ModeExternal {
		t.Fatalf("mode = %q, want external", resp.Mode)
	}
	if len(gen.gotDocs) != 1 {
		t.Errorf("context docs = %d, want capped at 1", len(gen.gotDocs))
	}
	if len(resp.Sources) != 1 {
		t.Errorf("sources = %d, want the context docs cited", len(resp.Sources))
	}
}

func TestRouter_EveryOutcomeIsLogged(t *testing.T) {
	f := newFixture(t, nil, nil)

	f.router.Answer(context.Background(), "oi")      // error
	f.router.Answer(context.Background(), "reserva") // local

	entries, err := f.store.RecentQueries(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("logged = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Mode != models.ModeLocal || entries[1].Mode != models.ModeError {
		t.Errorf("modes = %q, %q; want local then error", entries[0].Mode, entries[1].Mode)
	}
	if entries[0].ID == "" || entries[0].ResponseChars == 0 {
		t.Errorf("entry = %+v, want id and response length recorded", entries[0])
	}
}

func TestRouter_DegradedBanner(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.session.Install(f.session.KnowledgeBase(), true)

	resp := f.router.Answer(context.Background(), "reserva")
	if !resp.Degraded {
		t.Error("Degraded = false, want true for a stale knowledge base")
	}
	if !strings.Contains(resp.HTML, "indisponível") {
		t.Errorf("HTML = %q, want degraded banner", resp.HTML)
	}
}
