package classifier

import "github.com/Ayash-Bera/aidline/internal/models"

var biteWords = []string{"bite", "bites", "bit", "bitten", "biting"}

// animals that bite without having a dedicated rule. "bit" alone is too common ("a bit
// sore") to count without one of them.
var biteAnimals = []string{
	"animal", "cat", "cats", "kitten", "bat", "rat", "rats", "mouse", "hamster", "ferret",
	"raccoon", "fox", "squirrel", "monkey", "horse", "pig", "rabbit", "bird", "parrot",
}

// cutContexts turn a bare "cut" into an injury: body parts, the person hurt, or bleeding.
var cutContexts = []string{
	"finger", "fingers", "thumb", "hand", "hands", "arm", "leg", "knee", "foot", "toe",
	"face", "lip", "head", "skin", "palm", "wrist", "myself", "himself", "herself",
	"yourself", "deep", "bleeding", "bleeds", "stitches", "wound",
}

// pairGroups returns every {word, context} pair as an AllOf group.
func pairGroups(words, contexts []string) [][]string {
	groups := make([][]string, 0, len(words)*len(contexts))
	for _, w := range words {
		for _, c := range contexts {
			groups = append(groups, []string{w, c})
		}
	}
	return groups
}

func biteGroups(subjects ...string) [][]string {
	return pairGroups(subjects, biteWords)
}

// DefaultRules is the classification priority table. Order is the precedence:
//
//  1. life-critical, narrowly worded categories (shock, choking-specific, seizure,
//     hypoglycemia, then the other emergencies)
//  2. bites from most to least specific: snake, dog, insect, then the generic animal bite
//  3. musculoskeletal and skin injuries, fainting
//  4. general first aid
//  5. weak choking signals, which only apply when no general first-aid wording is present
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "shock",
			Condition: models.ConditionShock,
			Terms:     []string{"shock"},
			Phrases:   []string{"going into shock", "cold clammy skin", "pale and clammy", "rapid weak pulse"},
		},
		{
			Name:      "choking_specific",
			Condition: models.ConditionChoking,
			Terms:     []string{"choking", "choke", "choked", "chokes", "heimlich"},
			Phrases: []string{
				"food stuck in",
				"stuck in his throat",
				"stuck in her throat",
				"stuck in my throat",
				"stuck in their throat",
				"abdominal thrusts",
				"airway obstruction",
				"airway blocked",
			},
		},
		{
			Name:      "seizure",
			Condition: models.ConditionSeizure,
			Terms:     []string{"seizure", "seizures", "seizing"},
			Stems:     []string{"convuls", "epilep"},
			Phrases:   []string{"having a fit"},
		},
		{
			Name:      "hypoglycemia",
			Condition: models.ConditionHypoglycemia,
			Terms:     []string{"hypoglycemia", "hypoglycaemia", "hypo"},
			Phrases: []string{
				"low blood sugar",
				"low sugar",
				"sugar is low",
				"blood sugar dropped",
				"insulin reaction",
				"diabetic emergency",
			},
		},
		{
			Name:      "allergic_reaction",
			Condition: models.ConditionAllergicReaction,
			Terms:     []string{"epipen", "epinephrine"},
			Stems:     []string{"anaphyla"},
			AllOf:     [][]string{{"allergic", "swelling"}, {"allergic", "breathing"}},
			Phrases:   []string{"allergic reaction", "throat swelling", "swollen tongue"},
		},
		{
			Name:      "poisoning",
			Condition: models.ConditionPoisoning,
			Terms:     []string{"poison", "poisoned", "poisoning", "overdose", "overdosed"},
			Phrases:   []string{"swallowed bleach", "drank bleach", "swallowed chemicals", "ate something toxic"},
		},
		{
			Name:      "heat_stroke",
			Condition: models.ConditionHeatStroke,
			Terms:     []string{"heatstroke", "sunstroke", "hyperthermia"},
			Phrases:   []string{"heat stroke", "heat exhaustion", "sun stroke"},
		},
		{
			Name:      "snake_bite",
			Condition: models.ConditionSnakeBite,
			Terms:     []string{"snakebite", "rattlesnake", "viper", "cobra", "adder"},
			AllOf:     biteGroups("snake", "snakes"),
		},
		{
			Name:      "dog_bite",
			Condition: models.ConditionDogBite,
			Terms:     []string{"dogbite"},
			AllOf:     biteGroups("dog", "dogs", "puppy", "puppies"),
		},
		{
			Name:      "insect_sting",
			Condition: models.ConditionInsectSting,
			Terms:     []string{"sting", "stings", "stung", "wasp", "hornet", "bee", "bees", "jellyfish"},
			AllOf:     biteGroups("insect", "spider", "mosquito", "tick", "ant", "ants", "bug"),
		},
		{
			Name:      "animal_bite",
			Condition: models.ConditionAnimalBite,
			Terms:     []string{"bite", "bites", "bitten"},
			AllOf:     pairGroups([]string{"bit", "biting"}, biteAnimals),
			Phrases:   []string{"animal bite", "cat scratch", "bat bite"},
		},
		{
			Name:      "dislocation",
			Condition: models.ConditionDislocation,
			Stems:     []string{"dislocat"},
			Phrases:   []string{"popped out of place", "out of its socket"},
		},
		{
			Name:      "fracture",
			Condition: models.ConditionFracture,
			Terms:     []string{"fracture", "fractured", "fractures"},
			Phrases:   []string{"broken bone", "broken arm", "broken leg", "broken wrist", "broken ankle", "broken finger"},
		},
		{
			Name:      "sprain",
			Condition: models.ConditionSprain,
			Terms:     []string{"sprain", "sprained", "sprains"},
			Phrases:   []string{"twisted ankle", "twisted my ankle", "rolled ankle", "rolled my ankle"},
		},
		{
			Name:      "strain",
			Condition: models.ConditionStrain,
			Terms:     []string{"strain", "strained", "strains"},
			Phrases:   []string{"pulled muscle", "pulled a muscle", "pulled my hamstring"},
		},
		{
			Name:      "burn",
			Condition: models.ConditionBurn,
			Terms:     []string{"burn", "burns", "burned", "burnt", "scald", "scalded", "scalding"},
		},
		{
			Name:      "nosebleed",
			Condition: models.ConditionNosebleed,
			Terms:     []string{"nosebleed", "nosebleeds"},
			Phrases:   []string{"bleeding nose", "nose bleed", "nose is bleeding", "nose bleeding"},
		},
		{
			Name:      "cut_or_wound",
			Condition: models.ConditionCutOrWound,
			Terms: []string{
				"laceration", "wound", "wounds", "bleeding", "graze", "grazed",
				"scrape", "scrapes", "scraped", "gash", "puncture",
			},
			AllOf:   pairGroups([]string{"cut", "cuts"}, cutContexts),
			Phrases: []string{"cuts and scrapes", "paper cut"},
		},
		{
			Name:      "fainting",
			Condition: models.ConditionFainting,
			Terms:     []string{"faint", "fainted", "fainting", "syncope", "lightheaded"},
			Phrases:   []string{"passed out", "blacked out"},
		},
		{
			Name:      "general_first_aid",
			Condition: models.ConditionGeneralFirstAid,
			Terms:     []string{"firstaid"},
			Phrases:   []string{"first aid", "emergency kit", "recovery position"},
		},
		{
			Name:      "choking_weak",
			Condition: models.ConditionChoking,
			Terms:     []string{"gagging", "lodged"},
			Phrases: []string{
				"can't breathe",
				"cannot breathe",
				"can't swallow",
				"trouble swallowing",
				"swallowed something",
				"swallowed a coin",
				"something in throat",
				"something in my throat",
			},
		},
	}
}
