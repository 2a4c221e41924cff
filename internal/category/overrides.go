package category

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Overrides holds operator-supplied profile adjustments loaded from a
// YAML file. Only the fields present in the file replace the built-in
// defaults; everything else is untouched.
type Overrides struct {
	Categories map[Category]ProfileOverride `yaml:"categories"`
}

// ProfileOverride adjusts a single category profile. Nil fields keep
// the built-in value.
type ProfileOverride struct {
	Weights     *Weights `yaml:"weights,omitempty"`
	MinIncome   *int     `yaml:"min_income,omitempty"`
	DailyVisits *Range   `yaml:"daily_visits,omitempty"`
}

// LoadOverrides reads a profile-override file and returns the parsed
// overrides without applying them.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read overrides %s", path)
	}

	// The YAML has a top-level "profiles" key.
	var wrapper struct {
		Profiles Overrides `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "category: parse overrides")
	}
	return &wrapper.Profiles, nil
}

// Apply merges the overrides into the built-in profiles and re-runs
// validation, so a bad override file fails fast at startup.
func (o *Overrides) Apply() error {
	if o == nil {
		return nil
	}
	for c, ov := range o.Categories {
		p, ok := profiles[c]
		if !ok {
			return eris.Errorf("category: override for unknown category %q", c)
		}
		if ov.Weights != nil {
			p.Weights = *ov.Weights
		}
		if ov.MinIncome != nil {
			p.Ideal.MinIncome = *ov.MinIncome
		}
		if ov.DailyVisits != nil {
			p.DailyVisits = *ov.DailyVisits
		}
	}
	return Validate()
}
