package router

import (
	"fmt"
	"html"
	"strings"

	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/internal/search"
)

const (
	notReadyMessage = "Desculpe, a base de conhecimento ainda está sendo carregada. " +
		"Tente novamente em alguns instantes."

	degradedBanner = `<p class="aviso">Exibindo conteúdo salvo anteriormente: ` +
		`o portal de documentos está indisponível no momento.</p>`

	disclaimerBanner = `<p class="aviso-ia">Resposta gerada por inteligência artificial ` +
		`com base nos documentos do portal. Confira sempre as fontes indicadas.</p>`
)

// noResultSuggestions mirrors the portal's empty-search guidance.
var noResultSuggestions = []string{
	"Verifique a ortografia das palavras",
	"Tente usar termos mais gerais",
	"Procure pelo nome da categoria do documento",
}

func renderNotReady() *models.ChatResponse {
	return &models.ChatResponse{
		HTML: "<p>" + notReadyMessage + "</p>",
		Mode: models.ModeError,
	}
}

func renderTooShort(minChars int) *models.ChatResponse {
	return &models.ChatResponse{
		HTML: fmt.Sprintf("<p>Digite pelo menos %d caracteres para fazer uma pergunta.</p>", minChars),
		Mode: models.ModeError,
	}
}

// renderLocal renders up to max_results local hits, or the no-results
// guidance when the search came back empty.
func (r *Router) renderLocal(question string, results []models.SearchResult) *models.ChatResponse {
	var b strings.Builder

	if len(results) == 0 {
		fmt.Fprintf(&b, "<p>Nenhum documento encontrado para <strong>%s</strong>.</p>",
			html.EscapeString(question))
		b.WriteString("<ul>")
		for _, s := range noResultSuggestions {
			b.WriteString("<li>" + s + "</li>")
		}
		b.WriteString("</ul>")
		return &models.ChatResponse{HTML: b.String(), Mode: models.ModeLocal}
	}

	shown := results
	if len(shown) > r.searchCfg.MaxResults {
		shown = shown[:r.searchCfg.MaxResults]
	}

	fmt.Fprintf(&b, "<p>Encontrei %d documento(s) sobre <strong>%s</strong>:</p>",
		len(results), html.EscapeString(question))
	for _, res := range shown {
		doc := res.Record
		b.WriteString(`<div class="resultado">`)
		fmt.Fprintf(&b, `<h4><a href="%s">%s</a></h4>`,
			html.EscapeString(doc.Path), html.EscapeString(doc.Title))
		fmt.Fprintf(&b, `<span class="categoria">%s</span>`, html.EscapeString(doc.Category))
		fmt.Fprintf(&b, "<p>%s</p>", search.Excerpt(doc.Content, question, r.searchCfg.ExcerptContext))
		b.WriteString("</div>")
	}
	if extra := len(results) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "<p>E mais %d documento(s) relacionado(s).</p>", extra)
	}

	return &models.ChatResponse{
		HTML:    b.String(),
		Mode:    models.ModeLocal,
		Sources: citations(shown),
	}
}

// renderExternal merges the generated prose with linked citations and the
// fixed disclaimer.
func renderExternal(answer string, contextDocs []*models.DocumentRecord) *models.ChatResponse {
	var b strings.Builder
	for _, para := range strings.Split(answer, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>" + html.EscapeString(para) + "</p>")
	}

	sources := make([]models.Citation, 0, len(contextDocs))
	if len(contextDocs) > 0 {
		b.WriteString(`<ul class="fontes">`)
		for _, doc := range contextDocs {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a> (%s)</li>`,
				html.EscapeString(doc.Path), html.EscapeString(doc.Title), html.EscapeString(doc.Category))
			sources = append(sources, models.Citation{Title: doc.Title, Category: doc.Category, Path: doc.Path})
		}
		b.WriteString("</ul>")
	}
	b.WriteString(disclaimerBanner)

	return &models.ChatResponse{
		HTML:    b.String(),
		Mode:    models.ModeExternal,
		Sources: sources,
	}
}

func citations(results []models.SearchResult) []models.Citation {
	out := make([]models.Citation, 0, len(results))
	for _, res := range results {
		out = append(out, models.Citation{
			Title:    res.Record.Title,
			Category: res.Record.Category,
			Path:     res.Record.Path,
		})
	}
	return out
}
