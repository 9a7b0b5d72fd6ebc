package models

// FaqItem is one node of the read-only FAQ tree. Category listings omit
// Answer; it is populated only when a single item is fetched by ID.
type FaqItem struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}
