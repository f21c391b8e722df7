package model

// ClassificationResult routing decision for one query
type ClassificationResult struct {
	IsDomainQuery     bool `json:"isDomainQuery"`
	IsWebSearchIntent bool `json:"isWebSearchIntent"`
}

// SourceKind where a context block came from
type SourceKind string

const (
	SourceNone   SourceKind = "none"
	SourceStored SourceKind = "stored"
	SourceWeb    SourceKind = "web"
)

// ContextBlock retrieved text for one request. Text is empty iff SourceKind is none.
type ContextBlock struct {
	SourceKind SourceKind `json:"sourceKind"`
	Text       string     `json:"text"`
}

// EmptyContext the block used when no source produced anything.
func EmptyContext() ContextBlock {
	return ContextBlock{SourceKind: SourceNone}
}

// WebResult one ranked web search hit
type WebResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}
