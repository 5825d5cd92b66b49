package semantic

// PassageRecord is one manual page ready for upsert.
type PassageRecord struct {
	ID        string // UUID, deterministic per page key
	Embedding []float32
	Content   string
	Source    string // relative path of the PDF
	File      string // base file name
	Page      int    // 1-based page number
}

// SearchResult is one scored passage returned from a similarity search.
type SearchResult struct {
	ID      string
	Score   float32
	Content string
	Source  string
	File    string
	Page    int
	URI     string
}
