package models

// Record is one item written through a gateway. For the search engine Fields
// is the document body; for the vector store Text is the embedded content and
// Fields its metadata.
type Record struct {
	ID        string         `json:"id,omitempty"`
	Text      string         `json:"text,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Embedding []float32      `json:"-"`
}

// Query selects records from a collection. Criteria is backend specific:
// an Elasticsearch query DSL object or a Chroma where filter.
type Query struct {
	Criteria   map[string]any
	Texts      []string
	Embeddings [][]float32
	Limit      int
	Offset     int
}

type Hit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Distance *float64       `json:"distance,omitempty"`
	Text     string         `json:"text,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	// Group is the index of the query text or embedding that produced the hit.
	Group int `json:"group"`
}

type QueryResult struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}
