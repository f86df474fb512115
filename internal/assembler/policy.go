package assembler

import "github.com/Ayash-Bera/aidline/internal/models"

// Policy is the provenance rule of a condition category.
type Policy string

const (
	// DocumentExclusive admits only guide documents and curated templates.
	DocumentExclusive Policy = "document_exclusive"
	// LiteratureExclusive admits only literature and similarity store results.
	LiteratureExclusive Policy = "literature_exclusive"
)

var allowed = map[Policy][]models.SourceType{
	DocumentExclusive:   {models.SourceCurated, models.SourceDocument},
	LiteratureExclusive: {models.SourceLiterature, models.SourceVector},
}

// PolicyFor maps a condition to its provenance policy. Every first-aid category is
// document-exclusive; unclassified queries are general medical questions.
func PolicyFor(c models.ConditionTag) Policy {
	if c.IsFirstAid() {
		return DocumentExclusive
	}
	return LiteratureExclusive
}

// SourceTypes lists the admitted source types in section order.
func (p Policy) SourceTypes() []models.SourceType {
	return allowed[p]
}

func (p Policy) Allows(t models.SourceType) bool {
	for _, a := range allowed[p] {
		if a == t {
			return true
		}
	}
	return false
}

func (p Policy) AllowsBackend(b models.BackendID) bool {
	return p.Allows(models.SourceTypeFor(b))
}
