package assembler

import (
	"fmt"
	"strings"

	"github.com/Ayash-Bera/aidline/internal/fusion"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
)

const DefaultMaxChars = 8000

var sectionTitles = map[models.SourceType]string{
	models.SourceDocument:   "First Aid Guide Excerpts",
	models.SourceLiterature: "Medical Literature",
	models.SourceVector:     "Related Knowledge",
}

// Input is everything the assembler needs for one request. Passages must already be
// fused and ranked.
type Input struct {
	Query     string
	Condition models.ConditionTag
	Passages  []models.RetrievalPassage
	Guide     *models.StructuredGuide
}

// Assembler owns the final EvidenceContext and is the only place where passages of
// different provenance meet.
type Assembler struct {
	maxChars int
	logger   *logrus.Logger
}

func New(maxChars int, logger *logrus.Logger) *Assembler {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Assembler{maxChars: maxChars, logger: logger}
}

// Admit keeps the passages whose backend the condition's policy allows.
func Admit(condition models.ConditionTag, passages []models.RetrievalPassage) []models.RetrievalPassage {
	policy := PolicyFor(condition)
	out := make([]models.RetrievalPassage, 0, len(passages))
	for _, p := range passages {
		if policy.AllowsBackend(p.BackendID) {
			out = append(out, p)
		}
	}
	return out
}

// CuratedSource is the citation of a curated template.
func CuratedSource(condition models.ConditionTag) models.SourceReference {
	return models.SourceReference{
		Type:  models.SourceCurated,
		Title: fmt.Sprintf("Curated First Aid Guide: %s", condition.DisplayName()),
	}
}

func (a *Assembler) Assemble(in Input) models.EvidenceContext {
	policy := PolicyFor(in.Condition)
	admitted := Admit(in.Condition, in.Passages)

	guide := in.Guide
	if guide != nil && guide.Source == models.GuideSourceCurated && !policy.Allows(models.SourceCurated) {
		a.logger.WithField("condition", in.Condition).Warn("Dropping curated guide not allowed for this category")
		guide = nil
	}

	var sources []models.SourceReference
	if guide != nil && guide.Source == models.GuideSourceCurated {
		sources = append(sources, CuratedSource(in.Condition))
	}
	for _, s := range fusion.Sources(admitted) {
		if policy.Allows(s.Type) {
			sources = append(sources, s)
		}
	}
	sources = fusion.Dedupe(sources)

	guideBlock := ""
	budget := a.maxChars
	if guide != nil {
		guideBlock = RenderGuide(*guide)
		budget -= len(guideBlock) + len("\n\n")
	}
	text := a.render(policy, admitted, budget)
	if guideBlock != "" {
		if text != "" {
			text += "\n\n"
		}
		text += guideBlock
	}

	if admitted == nil {
		admitted = []models.RetrievalPassage{}
	}
	if sources == nil {
		sources = []models.SourceReference{}
	}

	a.logger.WithFields(logrus.Fields{
		"condition": in.Condition,
		"policy":    policy,
		"passages":  len(admitted),
		"dropped":   len(in.Passages) - len(admitted),
		"sources":   len(sources),
		"chars":     len(text),
	}).Debug("Evidence context assembled")

	return models.EvidenceContext{
		Query:     in.Query,
		Condition: in.Condition,
		Emergency: in.Condition.IsEmergency(),
		Text:      text,
		Passages:  admitted,
		Sources:   sources,
		Guide:     guide,
	}
}

// minExcerpt is the shortest truncated passage worth emitting.
const minExcerpt = 80

// render emits one labeled section per source type, best passages first. A passage
// that does not fit the remaining budget is shortened at a word boundary, or skipped
// when too little room is left; later passages and sections still get their turn.
func (a *Assembler) render(policy Policy, passages []models.RetrievalPassage, budget int) string {
	var b strings.Builder
	for _, st := range policy.SourceTypes() {
		title, ok := sectionTitles[st]
		if !ok {
			continue
		}

		header := fmt.Sprintf("=== %s ===\n", title)
		if b.Len() > 0 {
			header = "\n" + header
		}
		opened := false
		for _, p := range passages {
			if models.SourceTypeFor(p.BackendID) != st {
				continue
			}
			text, label := passageParts(p)
			if text == "" {
				continue
			}

			room := budget - b.Len() - 1
			if !opened {
				room -= len(header)
			}
			entry := formatEntry(text, label)
			if len(entry) > room {
				text = truncate(text, room-(len(entry)-len(text)))
				if text == "" {
					continue
				}
				entry = formatEntry(text, label)
			}

			if !opened {
				b.WriteString(header)
				opened = true
			}
			b.WriteString(entry)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate cuts text to at most max bytes at a word boundary and marks the cut.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	if max < minExcerpt {
		return ""
	}
	cut := strings.LastIndex(text[:max-3], " ")
	if cut <= 0 {
		return ""
	}
	return strings.TrimRight(text[:cut], " ,;:") + "..."
}

func passageParts(p models.RetrievalPassage) (string, string) {
	text := fusion.StripCitations(p.Text)
	if text == "" {
		return "", ""
	}
	label := ""
	if ref, ok := fusion.SourceFor(p); ok {
		label = ref.Title
		if ref.Page > 0 {
			label += fmt.Sprintf(", page %d", ref.Page)
		}
		if ref.URL != "" && ref.URL != ref.Title {
			label += " (" + ref.URL + ")"
		}
	}
	return text, label
}

func formatEntry(text, label string) string {
	if label == "" {
		return "- " + text
	}
	return fmt.Sprintf("- %s\n  [Source: %s]", text, label)
}

// RenderGuide formats a guide as a labeled text block.
func RenderGuide(g models.StructuredGuide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Guide: %s ===\n", g.Condition.DisplayName())
	if g.Emergency {
		b.WriteString("EMERGENCY\n")
	}
	for i, st := range g.Steps {
		fmt.Fprintf(&b, "%d. %s", i+1, st.Instruction)
		if st.Important {
			b.WriteString(" [important]")
		}
		if st.Description != "" {
			b.WriteString(": " + st.Description)
		}
		b.WriteString("\n")
	}
	if len(g.DoNotDo) > 0 {
		b.WriteString("Do not:\n")
		for _, item := range g.DoNotDo {
			b.WriteString("- " + item + "\n")
		}
	}
	if g.EmergencyContact != "" {
		b.WriteString("Emergency contact: " + g.EmergencyContact + "\n")
	}
	if g.TimeFrame != "" {
		b.WriteString("Time frame: " + g.TimeFrame + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
