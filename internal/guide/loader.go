package guide

import (
	"fmt"
	"os"

	"github.com/Ayash-Bera/aidline/internal/models"
	"gopkg.in/yaml.v3"
)

type templateFile struct {
	Templates []models.StructuredGuide `yaml:"templates"`
}

// LoadTemplates reads curated guide overrides from a YAML file of the form
//
//	templates:
//	  - condition: dog_bite
//	    steps:
//	      - instruction: Wash the wound
//	        important: true
//	    do_not_do: [...]
func LoadTemplates(path string) (map[models.ConditionTag]models.StructuredGuide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return ParseTemplates(data)
}

func ParseTemplates(data []byte) (map[models.ConditionTag]models.StructuredGuide, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	out := make(map[models.ConditionTag]models.StructuredGuide, len(file.Templates))
	for i, t := range file.Templates {
		tag := models.ParseCondition(string(t.Condition))
		if !tag.IsFirstAid() {
			return nil, fmt.Errorf("template %d: unknown or unclassified condition %q", i, t.Condition)
		}
		if len(t.Steps) == 0 {
			return nil, fmt.Errorf("template %d (%s): no steps", i, tag)
		}
		for j, st := range t.Steps {
			if st.Instruction == "" {
				return nil, fmt.Errorf("template %d (%s): step %d has no instruction", i, tag, j)
			}
		}
		t.Condition = tag
		out[tag] = t
	}
	return out, nil
}

// Merge overlays overrides on the base templates.
func Merge(base, overrides map[models.ConditionTag]models.StructuredGuide) map[models.ConditionTag]models.StructuredGuide {
	out := make(map[models.ConditionTag]models.StructuredGuide, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
