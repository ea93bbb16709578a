package models

import "time"

// SearchResult is a single relevance hit. Transient, never persisted.
type SearchResult struct {
	Record     *DocumentRecord `json:"record"`
	Relevance  int             `json:"relevance"`
	ExactMatch bool            `json:"exact_match"`
}

// Routing modes for a chat answer.
const (
	ModeLocal    = "local"
	ModeExternal = "external"
	ModeError    = "error"
)

// Citation links a chat answer back to a local document.
type Citation struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Path     string `json:"path"`
}

// ChatResponse is the rendered answer handed to the UI layer. HTML is a
// self-contained markup fragment; Mode records the routing decision.
type ChatResponse struct {
	HTML     string     `json:"html"`
	Mode     string     `json:"mode"`
	Sources  []Citation `json:"sources,omitempty"`
	Degraded bool       `json:"degraded,omitempty"`
}

// QueryLogEntry is one entry of the rolling diagnostic log (newest first,
// capped; oldest dropped on overflow).
type QueryLogEntry struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	ResponseChars int       `json:"response_chars"`
	Mode          string    `json:"mode"`
	CreatedAt     time.Time `json:"created_at"`
}
