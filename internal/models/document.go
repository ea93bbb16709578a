// Package models defines core data structures for documents, the knowledge base,
// and chat responses.
package models

import "time"

// DocumentRecord is one indexed help document. Records are built once by the
// knowledge loader and never mutated afterwards.
type DocumentRecord struct {
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Path          string    `json:"path"`
	Category      string    `json:"category"`
	FileSizeChars int       `json:"file_size_chars"`
	LastModified  time.Time `json:"last_modified,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
}

// CategoryIndex holds the documents of one category in load order.
type CategoryIndex struct {
	Name      string            `json:"name"`
	Documents []*DocumentRecord `json:"documents"`
}

// KnowledgeBase is the in-memory index of extracted document text grouped by
// category. Categories and documents keep insertion order; search relies on
// that order as a stable tie-break, which Go maps would not provide.
// A KnowledgeBase is replaced wholesale on reload, never partially mutated.
type KnowledgeBase struct {
	Categories []*CategoryIndex `json:"categories"`
}

// NewKnowledgeBase returns an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{}
}

// Add appends rec to its category, creating the category on first use.
func (kb *KnowledgeBase) Add(rec *DocumentRecord) {
	for _, cat := range kb.Categories {
		if cat.Name == rec.Category {
			cat.Documents = append(cat.Documents, rec)
			return
		}
	}
	kb.Categories = append(kb.Categories, &CategoryIndex{
		Name:      rec.Category,
		Documents: []*DocumentRecord{rec},
	})
}

// Category returns the index for the named category, or nil.
func (kb *KnowledgeBase) Category(name string) *CategoryIndex {
	for _, cat := range kb.Categories {
		if cat.Name == name {
			return cat
		}
	}
	return nil
}

// Document returns the named document within a category, or nil.
func (kb *KnowledgeBase) Document(category, name string) *DocumentRecord {
	cat := kb.Category(category)
	if cat == nil {
		return nil
	}
	for _, doc := range cat.Documents {
		if doc.Name == name {
			return doc
		}
	}
	return nil
}

// CountDocuments returns the total number of documents across all categories.
func (kb *KnowledgeBase) CountDocuments() int {
	n := 0
	for _, cat := range kb.Categories {
		n += len(cat.Documents)
	}
	return n
}
