package guide

import (
	"regexp"
	"strings"

	"github.com/Ayash-Bera/aidline/internal/fusion"
	"github.com/Ayash-Bera/aidline/internal/metrics"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	MaxSteps       = 10
	MaxDoNotItems  = 6
	minCandidate   = 10
	shortWordLimit = 3
	shortCharLimit = 20
)

var (
	// inlineMarker splits "1. Do this 2. Do that" or "a) Do this b) Do that" written on
	// one line. Letters need a closing parenthesis so a sentence ending in "A." stays whole.
	inlineMarker = regexp.MustCompile(`\s+(?:\(?\d{1,2}[.)]|\(?[a-zA-Z]\)|[•▪●])\s+`)
	// leadingMarker strips a numeral, letter or bullet marker at the start of a candidate.
	leadingMarker = regexp.MustCompile(`^\s*(?:\(?\d{1,2}[.):]|\(?[a-zA-Z][.)]|[-*•▪●–]|step\s+\d+[.:)]?)\s+`)
	// sentenceEnd finds the end of the first sentence.
	sentenceEnd = regexp.MustCompile(`[.!?](\s+|$)`)
)

var negationMarkers = []string{"do not", "don't", "dont", "never"}

var criticalTerms = []string{
	"immediately", "emergency", "911", "urgent", "severe", "bleeding", "breathing",
	"unconscious", "unresponsive", "cpr", "ambulance", "life-threatening", "poison control",
	"right away", "call",
}

var imperativeVerbs = map[string]bool{
	"call": true, "apply": true, "press": true, "keep": true, "remove": true, "wash": true,
	"clean": true, "cover": true, "elevate": true, "check": true, "seek": true, "stop": true,
	"place": true, "hold": true, "cool": true, "rinse": true, "lay": true, "give": true,
	"monitor": true, "loosen": true, "tilt": true, "pinch": true, "immobilize": true,
	"raise": true, "get": true, "perform": true, "stay": true, "start": true, "move": true,
	"lean": true, "sit": true, "use": true,
}

// Synthesizer turns retrieved text or a curated template into a StructuredGuide.
type Synthesizer struct {
	templates map[models.ConditionTag]models.StructuredGuide
	logger    *logrus.Logger
}

// NewSynthesizer builds a synthesizer over the given templates. Templates for
// unclassified queries are ignored.
func NewSynthesizer(templates map[models.ConditionTag]models.StructuredGuide, logger *logrus.Logger) *Synthesizer {
	if logger == nil {
		logger = logrus.New()
	}
	clean := make(map[models.ConditionTag]models.StructuredGuide, len(templates))
	for tag, g := range templates {
		if !tag.IsFirstAid() || len(g.Steps) == 0 {
			continue
		}
		clean[tag] = g
	}
	return &Synthesizer{templates: clean, logger: logger}
}

// Template returns the curated guide for a condition, if one exists.
func (s *Synthesizer) Template(condition models.ConditionTag) (models.StructuredGuide, bool) {
	g, ok := s.templates[condition]
	if !ok {
		return models.StructuredGuide{}, false
	}
	return finalize(copyGuide(g), condition, models.GuideSourceCurated), true
}

// Synthesize builds the guide for a condition. A curated template is returned when
// allowCurated is set and one exists; otherwise steps are extracted from text, and
// the generic fallback guide is used when nothing can be extracted.
func (s *Synthesizer) Synthesize(condition models.ConditionTag, text string, allowCurated bool) models.StructuredGuide {
	if allowCurated {
		if g, ok := s.Template(condition); ok {
			metrics.RecordGuide(g.Source)
			return g
		}
	}

	steps, doNot := Extract(text)
	var g models.StructuredGuide
	if len(steps) == 0 {
		g = finalize(FallbackGuide(condition), condition, models.GuideSourceFallback)
	} else {
		g = finalize(models.StructuredGuide{Steps: steps, DoNotDo: doNot}, condition, models.GuideSourceSynthesized)
	}

	s.logger.WithFields(logrus.Fields{
		"condition": condition,
		"source":    g.Source,
		"steps":     len(g.Steps),
		"do_not":    len(g.DoNotDo),
	}).Debug("Guide synthesized")
	metrics.RecordGuide(g.Source)
	return g
}

// finalize stamps the fields that are pure functions of the condition.
func finalize(g models.StructuredGuide, condition models.ConditionTag, source string) models.StructuredGuide {
	g.Condition = condition
	g.Emergency = condition.IsEmergency()
	g.Source = source
	if g.EmergencyContact == "" {
		g.EmergencyContact = emergencyContact(g.Emergency)
	}
	if g.TimeFrame == "" {
		g.TimeFrame = timeFrame(g.Emergency)
	}
	if g.DoNotDo == nil {
		g.DoNotDo = []string{}
	}
	return g
}

func emergencyContact(emergency bool) string {
	if emergency {
		return "Call emergency services (911 or your local number) immediately"
	}
	return "Contact a doctor, or call emergency services if symptoms get worse"
}

func timeFrame(emergency bool) string {
	if emergency {
		return "Act immediately: minutes matter"
	}
	return "Seek medical advice within 24 hours if symptoms persist"
}

func copyGuide(g models.StructuredGuide) models.StructuredGuide {
	out := g
	out.Steps = append([]models.GuideStep(nil), g.Steps...)
	out.DoNotDo = append([]string(nil), g.DoNotDo...)
	return out
}

// Extract splits free text into "do" steps and "do not" items.
func Extract(text string) ([]models.GuideStep, []string) {
	var steps []models.GuideStep
	var doNot []string
	seenStep := make(map[string]bool)
	seenDoNot := make(map[string]bool)

	for _, candidate := range Candidates(text) {
		if IsNegative(candidate) {
			key := strings.ToLower(candidate)
			if len(doNot) < MaxDoNotItems && !seenDoNot[key] {
				seenDoNot[key] = true
				doNot = append(doNot, strings.TrimRight(candidate, "."))
			}
			continue
		}
		if len(steps) >= MaxSteps {
			continue
		}
		st := ParseStep(candidate)
		key := strings.ToLower(st.Instruction)
		if st.Instruction == "" || seenStep[key] {
			continue
		}
		seenStep[key] = true
		steps = append(steps, st)
	}
	return steps, doNot
}

// Candidates splits text on enumeration markers and line breaks. Citation lines
// and fragments shorter than ten characters are dropped.
func Candidates(text string) []string {
	text = fusion.StripCitations(text)
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, part := range inlineMarker.Split(line, -1) {
			part = strings.TrimSpace(leadingMarker.ReplaceAllString(part, ""))
			part = strings.Join(strings.Fields(part), " ")
			if len(part) < minCandidate {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func IsNegative(candidate string) bool {
	lower := strings.ToLower(strings.ReplaceAll(candidate, "’", "'"))
	padded := " " + lower + " "
	for _, m := range negationMarkers {
		if strings.Contains(padded, " "+m+" ") {
			return true
		}
	}
	return false
}

// ParseStep splits the first sentence out as the instruction and flags importance.
func ParseStep(candidate string) models.GuideStep {
	instruction := candidate
	description := ""
	if loc := sentenceEnd.FindStringIndex(candidate); loc != nil && loc[1] < len(candidate) {
		instruction = candidate[:loc[0]]
		description = strings.TrimSpace(candidate[loc[1]:])
	}
	instruction = strings.TrimSpace(strings.TrimRight(instruction, ".!?:;"))
	return models.GuideStep{
		Instruction: instruction,
		Description: description,
		Important:   IsImportant(instruction, description),
	}
}

// IsImportant: a critical term anywhere, an imperative opening verb, or a very short
// instruction.
func IsImportant(instruction, description string) bool {
	combined := strings.ToLower(instruction + " " + description)
	for _, term := range criticalTerms {
		if strings.Contains(combined, term) {
			return true
		}
	}
	words := strings.Fields(strings.ToLower(instruction))
	if len(words) > 0 && imperativeVerbs[strings.Trim(words[0], ",.:;!")] {
		return true
	}
	return len(words) > 0 && len(words) <= shortWordLimit && len(instruction) < shortCharLimit
}
