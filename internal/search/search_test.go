package search

import (
	"strings"
	"testing"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/models"
)

func testEngine() *Engine {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return NewEngine(&cfg.Search)
}

func kbWith(docs ...*models.DocumentRecord) *models.KnowledgeBase {
	kb := models.NewKnowledgeBase()
	for _, d := range docs {
		kb.Add(d)
	}
	return kb
}

func TestEngine_SearchScoring(t *testing.T) {
	kb := kbWith(
		&models.DocumentRecord{
			Name: "nova-reserva.html", Title: "Nova Reserva", Category: "manuais",
			Content: "Para criar uma reserva acesse o painel e informe os dados do hospede.",
		},
		&models.DocumentRecord{
			Name: "check-in.html", Title: "Check In", Category: "manuais",
			Content: "O processo de check-in comeca na chegada do hospede.",
		},
	)
	e := testEngine()

	results := e.Search("reserva", kb)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	got := results[0]
	if got.Record.Title != "Nova Reserva" {
		t.Errorf("top result = %q, want Nova Reserva", got.Record.Title)
	}
	// 10 (title) + 5 (content) + 20 (verbatim substring) = 35, at least 15.
	if got.Relevance < 15 {
		t.Errorf("relevance = %d, want >= 15", got.Relevance)
	}
	if !got.ExactMatch {
		t.Error("ExactMatch should be set for a verbatim content substring")
	}
}

func TestEngine_SearchExcludesZeroRelevance(t *testing.T) {
	kb := kbWith(&models.DocumentRecord{
		Name: "faturamento.html", Title: "Faturamento", Category: "manuais",
		Content: "Emissao de notas e fechamento de faturas.",
	})
	e := testEngine()

	if results := e.Search("housekeeping", kb); len(results) != 0 {
		t.Errorf("len(results) = %d, want 0 for unrelated query", len(results))
	}
}

func TestEngine_SearchIgnoresShortTokens(t *testing.T) {
	// "de" and "o" are below the token length threshold and must not score.
	kb := kbWith(&models.DocumentRecord{
		Name: "painel.html", Title: "Painel", Category: "manuais",
		Content: "Visao geral de o sistema.",
	})
	e := testEngine()

	results := e.Search("de o xyz", kb)
	if len(results) != 0 {
		t.Errorf("short tokens scored: %+v", results)
	}
}

func TestEngine_SearchNormalizesDiacritics(t *testing.T) {
	kb := kbWith(&models.DocumentRecord{
		Name: "manutencao.html", Title: "Manutenção Preventiva", Category: "procedimentos",
		Content: "Ordens de manutenção e prioridades.",
	})
	e := testEngine()

	results := e.Search("manutencao", kb)
	if len(results) != 1 {
		t.Fatalf("accented title should match unaccented query, got %d results", len(results))
	}
	if results[0].Relevance < 15 {
		t.Errorf("relevance = %d, want title + content match", results[0].Relevance)
	}
}

func TestEngine_SearchSortsDescendingStable(t *testing.T) {
	kb := kbWith(
		&models.DocumentRecord{
			Name: "a.html", Title: "Relatorios Gerais", Category: "manuais",
			Content: "Conteudo sem o termo procurado.",
		},
		&models.DocumentRecord{
			Name: "b.html", Title: "Auditoria", Category: "manuais",
			Content: "A auditoria noturna verifica os relatorios do dia.",
		},
		&models.DocumentRecord{
			Name: "c.html", Title: "Painel", Category: "tutoriais",
			Content: "O painel mostra relatorios resumidos.",
		},
	)
	e := testEngine()

	results := e.Search("relatorios", kb)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Fatalf("results not sorted descending: %d before %d",
				results[i-1].Relevance, results[i].Relevance)
		}
	}
	// b and c both score 25 (content + verbatim bonus), a scores 10 (title only);
	// enumeration order breaks the b/c tie.
	wantOrder := []string{"b.html", "c.html", "a.html"}
	for i, want := range wantOrder {
		if results[i].Record.Name != want {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Record.Name, want)
		}
	}
}

func TestEngine_SearchDedupesTitleCategory(t *testing.T) {
	kb := kbWith(
		&models.DocumentRecord{
			Name: "reserva-v1.html", Title: "Reserva", Category: "manuais",
			Content: "Guia de reserva antiga.",
		},
		&models.DocumentRecord{
			Name: "reserva-v2.html", Title: "Reserva", Category: "manuais",
			Content: "Guia de reserva atualizada.",
		},
		&models.DocumentRecord{
			Name: "reserva-tut.html", Title: "Reserva", Category: "tutoriais",
			Content: "Tutorial de reserva.",
		},
	)
	e := testEngine()

	results := e.Search("reserva", kb)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 after (title, category) dedup", len(results))
	}
	seen := map[string]bool{}
	for _, r := range results {
		key := r.Record.Title + "|" + r.Record.Category
		if seen[key] {
			t.Errorf("duplicate (title, category) pair %q", key)
		}
		seen[key] = true
	}
}

func TestExcerpt(t *testing.T) {
	content := strings.Repeat("antes ", 40) + "a palavra reserva aparece aqui" + strings.Repeat(" depois", 40)

	got := Excerpt(content, "reserva", 100)
	if !strings.Contains(got, "<mark>reserva</mark>") {
		t.Errorf("Excerpt() = %q, want highlighted query", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("Excerpt() should carry ellipsis markers on both cut sides: %q", got)
	}
}

func TestExcerpt_QueryAbsent(t *testing.T) {
	got := Excerpt("conteudo curto do documento", "inexistente", 100)
	if strings.Contains(got, "<mark>") {
		t.Errorf("Excerpt() = %q, want no highlight when query absent", got)
	}
	if !strings.Contains(got, "conteudo curto") {
		t.Errorf("Excerpt() = %q, want beginning of content", got)
	}
}

func TestExcerpt_EscapesHTML(t *testing.T) {
	got := Excerpt(`uso de <b>tags</b> na reserva`, "reserva", 100)
	if strings.Contains(got, "<b>") {
		t.Errorf("Excerpt() = %q, want escaped content", got)
	}
}
