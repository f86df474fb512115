package expander

import (
	"strings"

	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
)

// Suffix is appended to every expanded query to bias lexical and embedding
// backends toward treatment passages.
const Suffix = "first aid emergency treatment urgent care medical help"

// Entry maps a condition key to a synonym blob. The key matches any condition tag
// that contains it, so one tag can pick up several blobs.
type Entry struct {
	Key      string
	Synonyms string
}

// DefaultTable is ordered: blobs are appended in table order.
var DefaultTable = []Entry{
	{Key: "shock", Synonyms: "shock circulatory collapse pale clammy skin rapid weak pulse low blood pressure"},
	{Key: "choking", Synonyms: "choking airway obstruction heimlich abdominal thrusts back blows foreign object throat"},
	{Key: "seizure", Synonyms: "seizure convulsion epilepsy fit jerking unconscious"},
	{Key: "hypoglycemia", Synonyms: "hypoglycemia low blood sugar diabetic insulin glucose sugary drink"},
	{Key: "allergic", Synonyms: "allergic reaction anaphylaxis epinephrine auto-injector hives swelling"},
	{Key: "poison", Synonyms: "poisoning toxic ingestion poison control overdose chemical swallowed"},
	{Key: "heat", Synonyms: "heat stroke heat exhaustion hyperthermia cooling dehydration"},
	{Key: "snake_bite", Synonyms: "snake bite venom antivenom immobilize limb fang marks"},
	{Key: "dog_bite", Synonyms: "dog bite puncture wound rabies tetanus wash wound soap water"},
	{Key: "bite", Synonyms: "bite wound animal bite infection clean bleeding bandage"},
	{Key: "sting", Synonyms: "insect sting bee wasp stinger removal swelling itching"},
	{Key: "insect", Synonyms: "insect bite spider mosquito tick"},
	{Key: "dislocation", Synonyms: "dislocation joint out of place immobilize sling"},
	{Key: "fracture", Synonyms: "fracture broken bone splint immobilize"},
	{Key: "sprain", Synonyms: "sprain ligament ankle rice rest ice compression elevation"},
	{Key: "strain", Synonyms: "strain pulled muscle rest ice compression elevation"},
	{Key: "burn", Synonyms: "burn scald cool running water blister dressing"},
	{Key: "nosebleed", Synonyms: "nosebleed epistaxis pinch nose lean forward"},
	{Key: "cut", Synonyms: "cut laceration bleeding direct pressure"},
	{Key: "wound", Synonyms: "wound care clean dressing bandage infection"},
	{Key: "fainting", Synonyms: "fainting syncope passed out lie down raise legs"},
	{Key: "first_aid", Synonyms: "first aid basics primary survey recovery position cpr"},
}

// noiseWords carry no retrieval signal.
var noiseWords = map[string]bool{
	"please": true, "help": true, "how": true, "do": true, "i": true, "can": true, "you": true,
	"me": true, "my": true, "the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true, "does": true, "did": true,
	"don't": true, "doesn't": true, "won't": true, "wouldn't": true, "couldn't": true,
	"shouldn't": true, "didn't": true, "what": true, "when": true, "who": true, "for": true,
	"and": true, "with": true, "from": true, "someone": true, "got": true, "get": true,
	"just": true, "about": true, "this": true, "that": true, "there": true, "they": true,
}

type Expander struct {
	table  []Entry
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Expander {
	return NewWithTable(DefaultTable, logger)
}

func NewWithTable(table []Entry, logger *logrus.Logger) *Expander {
	if logger == nil {
		logger = logrus.New()
	}
	return &Expander{table: table, logger: logger}
}

// Expand builds the enriched search string for a condition. Conditions without a
// matching table entry fall back to the raw query.
func (e *Expander) Expand(condition models.ConditionTag, query string) string {
	blobs := e.synonyms(condition)

	base := strings.TrimSpace(query)
	if len(blobs) > 0 {
		base = strings.Join(blobs, " ")
	}

	expanded := strings.TrimSpace(base + " " + Suffix)
	e.logger.WithFields(logrus.Fields{
		"condition":  condition,
		"blobs":      len(blobs),
		"expanded":   expanded,
		"raw_length": len(query),
	}).Debug("Query expanded")
	return expanded
}

// Keywords returns the lowercase words a passage can contain to count as on-topic
// for the condition: the tag's own words, its synonym blobs and the content words
// of the query. Order is stable and duplicates are removed.
func (e *Expander) Keywords(condition models.ConditionTag, query string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(words []string) {
		for _, w := range words {
			if len(w) < 3 || noiseWords[w] || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}

	if condition.IsFirstAid() {
		add(strings.Split(string(condition), "_"))
	}
	for _, blob := range e.synonyms(condition) {
		add(classifier.Tokens(blob))
	}
	add(ContentWords(query))
	return out
}

// ContentWords drops noise words and words shorter than three characters.
func ContentWords(query string) []string {
	var words []string
	for _, w := range classifier.Tokens(query) {
		if len(w) > 2 && !noiseWords[w] {
			words = append(words, w)
		}
	}
	return words
}

func (e *Expander) synonyms(condition models.ConditionTag) []string {
	tag := strings.ToLower(string(condition))
	if tag == "" {
		return nil
	}
	var blobs []string
	for _, entry := range e.table {
		if strings.Contains(tag, entry.Key) {
			blobs = append(blobs, entry.Synonyms)
		}
	}
	return blobs
}
