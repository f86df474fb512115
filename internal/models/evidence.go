package models

import "strings"

// BackendID identifies a retrieval backend.
type BackendID string

const (
	BackendVector     BackendID = "vector"
	BackendDocument   BackendID = "document"
	BackendLiterature BackendID = "literature"
)

// HigherIsBetter reports the score direction of the backend. Document index scores
// are distances, the other backends return similarities.
func (b BackendID) HigherIsBetter() bool {
	return b != BackendDocument
}

// SourceType labels where a citation came from.
type SourceType string

const (
	SourceDocument   SourceType = "document"
	SourceLiterature SourceType = "literature"
	SourceVector     SourceType = "vector"
	SourceCurated    SourceType = "curated"
)

// SourceTypeFor maps a backend to the source type of its citations.
func SourceTypeFor(b BackendID) SourceType {
	switch b {
	case BackendDocument:
		return SourceDocument
	case BackendLiterature:
		return SourceLiterature
	default:
		return SourceVector
	}
}

// Query keeps the raw user text next to its normalized form.
type Query struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

func NewQuery(raw string) Query {
	return Query{
		Raw:        raw,
		Normalized: strings.ToLower(strings.TrimSpace(raw)),
	}
}

type SourceMetadata struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Page  int    `json:"page,omitempty"`
}

// RetrievalPassage is one retrieved text unit. RelevanceScore keeps the backend's own
// semantics; NormalizedScore is filled in by fusion (higher is better).
type RetrievalPassage struct {
	Text            string         `json:"text"`
	BackendID       BackendID      `json:"backend_id"`
	RelevanceScore  float64        `json:"relevance_score"`
	NormalizedScore float64        `json:"normalized_score"`
	Relevance       string         `json:"relevance,omitempty"`
	SourceMetadata  SourceMetadata `json:"source_metadata"`
}

type SourceReference struct {
	Type  SourceType `json:"type"`
	Title string     `json:"title"`
	URL   string     `json:"url,omitempty"`
	Page  int        `json:"page,omitempty"`
}

// Key is the identity of a source: normalized (title, url).
func (s SourceReference) Key() string {
	title := strings.ToLower(strings.Join(strings.Fields(s.Title), " "))
	url := strings.ToLower(strings.TrimSpace(s.URL))
	url = strings.TrimSuffix(url, "/")
	return title + "|" + url
}

type GuideStep struct {
	Instruction string `json:"instruction" yaml:"instruction"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Important   bool   `json:"important" yaml:"important"`
}

// Guide sources.
const (
	GuideSourceCurated     = "curated"
	GuideSourceSynthesized = "synthesized"
	GuideSourceFallback    = "fallback"
)

type StructuredGuide struct {
	Condition        ConditionTag `json:"condition" yaml:"condition"`
	Steps            []GuideStep  `json:"steps" yaml:"steps"`
	DoNotDo          []string     `json:"do_not_do" yaml:"do_not_do"`
	EmergencyContact string       `json:"emergency_contact" yaml:"emergency_contact"`
	TimeFrame        string       `json:"time_frame" yaml:"time_frame"`
	Emergency        bool         `json:"emergency" yaml:"-"`
	Source           string       `json:"source,omitempty" yaml:"-"`
}

// EvidenceContext is the final output handed to the prompt layer.
type EvidenceContext struct {
	Query     string             `json:"query"`
	Condition ConditionTag       `json:"condition"`
	Emergency bool               `json:"emergency"`
	Text      string             `json:"text"`
	Passages  []RetrievalPassage `json:"passages"`
	Sources   []SourceReference  `json:"sources"`
	Guide     *StructuredGuide   `json:"guide,omitempty"`
}
