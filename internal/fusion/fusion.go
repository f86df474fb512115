package fusion

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Ayash-Bera/aidline/internal/models"
)

var citationPattern = regexp.MustCompile(`Source:\s*(.+?)\s*\((https?://[^)\s]+)\)`)

// Citation is a source reference embedded in passage text.
type Citation struct {
	Title string
	URL   string
}

// ExtractCitation finds the first "Source: <title> (<url>)" marker in text.
func ExtractCitation(text string) (Citation, bool) {
	m := citationPattern.FindStringSubmatch(text)
	if m == nil {
		return Citation{}, false
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return Citation{}, false
	}
	return Citation{Title: title, URL: m[2]}, true
}

// StripCitations removes citation markers and the blank space they leave behind.
func StripCitations(text string) string {
	cleaned := citationPattern.ReplaceAllString(text, "")
	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, strings.TrimRight(l, " \t"))
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// NormalizeScore maps a backend score onto [0,1], higher is better. Distances d
// become 1/(1+d).
func NormalizeScore(backend models.BackendID, score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	if backend.HigherIsBetter() {
		return math.Max(0, math.Min(1, score))
	}
	if score < 0 {
		score = 0
	}
	return 1 / (1 + score)
}

// RelevanceLabel buckets a normalized score.
func RelevanceLabel(normalized float64) string {
	switch {
	case normalized >= 0.8:
		return "high"
	case normalized >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// Result is the fused passage list and its deduplicated sources.
type Result struct {
	Passages []models.RetrievalPassage
	Sources  []models.SourceReference
}

// Fuse merges accepted passages in backend arrival order, ranks them by normalized
// score with arrival order as the tiebreak, and builds one source per distinct
// (title, url), keeping the first occurrence in ranked order.
func Fuse(groups ...[]models.RetrievalPassage) Result {
	var merged []models.RetrievalPassage
	for _, g := range groups {
		for _, p := range g {
			p.NormalizedScore = NormalizeScore(p.BackendID, p.RelevanceScore)
			p.Relevance = RelevanceLabel(p.NormalizedScore)
			if c, ok := ExtractCitation(p.Text); ok {
				p.SourceMetadata.Title = c.Title
				p.SourceMetadata.URL = c.URL
			}
			merged = append(merged, p)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].NormalizedScore > merged[j].NormalizedScore
	})

	return Result{
		Passages: merged,
		Sources:  Sources(merged),
	}
}

// Sources builds the deduplicated source list of already ranked passages.
func Sources(passages []models.RetrievalPassage) []models.SourceReference {
	seen := make(map[string]bool)
	var out []models.SourceReference
	for _, p := range passages {
		ref, ok := SourceFor(p)
		if !ok {
			continue
		}
		key := ref.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ref)
	}
	return out
}

// SourceFor builds the reference of a passage. Passages with neither title nor url
// have no source.
func SourceFor(p models.RetrievalPassage) (models.SourceReference, bool) {
	title := strings.TrimSpace(p.SourceMetadata.Title)
	url := strings.TrimSpace(p.SourceMetadata.URL)
	if c, ok := ExtractCitation(p.Text); ok {
		title, url = c.Title, c.URL
	}
	if title == "" && url == "" {
		return models.SourceReference{}, false
	}
	if title == "" {
		title = url
	}
	return models.SourceReference{
		Type:  models.SourceTypeFor(p.BackendID),
		Title: title,
		URL:   url,
		Page:  p.SourceMetadata.Page,
	}, true
}

// Dedupe drops repeated references, first occurrence wins.
func Dedupe(refs []models.SourceReference) []models.SourceReference {
	seen := make(map[string]bool, len(refs))
	out := make([]models.SourceReference, 0, len(refs))
	for _, r := range refs {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		out = append(out, r)
	}
	return out
}
