// Package competition classifies nearby vending machines by product
// category and grades how contested a site is. Three Coca-Cola
// machines nearby are bad news for a beverage-heavy placement but
// mostly irrelevant to a snack machine, so saturation is judged
// through a site-category overlap matrix rather than raw counts.
package competition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/vendscout/internal/category"
)

// MachineCategory is the inferred product category of an observed machine.
type MachineCategory string

const (
	Beverage  MachineCategory = "beverage"
	Snack     MachineCategory = "snack"
	Healthy   MachineCategory = "healthy"
	Combo     MachineCategory = "combo"
	Specialty MachineCategory = "specialty"
	Unknown   MachineCategory = "unknown"
)

// Machine is a competitor observed near the candidate site.
type Machine struct {
	Name          string          `json:"name"`
	Category      MachineCategory `json:"category"`
	Brand         string          `json:"brand,omitempty"`
	DistanceMiles float64         `json:"distance_miles"`
}

// Saturation buckets.
const (
	SaturationLow    = "low"
	SaturationMedium = "medium"
	SaturationHigh   = "high"
)

// Market verdicts.
const (
	MarketUnderserved = "underserved"
	MarketModerate    = "moderate"
	MarketSaturated   = "saturated"
)

// Assessment summarizes the competitive picture at one site.
type Assessment struct {
	TotalMachines     int     `json:"total_machines"`
	SameCategory      int     `json:"same_category"`
	DifferentCategory int     `json:"different_category"`
	NearestMiles      float64 `json:"nearest_miles"`
	OverlapPressure   float64 `json:"overlap_pressure"`
	Market            string  `json:"market"`
	SaturationLevel   string  `json:"saturation_level"`
	Score             int     `json:"score"`
	Insight           string  `json:"insight"`
}

type nameRule struct {
	re       *regexp.Regexp
	category MachineCategory
	brand    string
}

// Rules are ordered: brand rules first, generic keywords last. The
// first match wins, so "Coca-Cola Snack Center" classifies as beverage.
var nameRules = []nameRule{
	{regexp.MustCompile(`(?i)coca[\s-]?cola|coke`), Beverage, "Coca-Cola"},
	{regexp.MustCompile(`(?i)pepsi`), Beverage, "Pepsi"},
	{regexp.MustCompile(`(?i)dr[\s.]?pepper`), Beverage, "Dr Pepper"},
	{regexp.MustCompile(`(?i)red\s?bull`), Beverage, "Red Bull"},
	{regexp.MustCompile(`(?i)monster\s?(energy)?`), Beverage, "Monster"},
	{regexp.MustCompile(`(?i)gatorade|powerade`), Beverage, "Sports Drink"},
	{regexp.MustCompile(`(?i)\b(soda|drink|beverage|water)\s*(machine|vending)`), Beverage, ""},

	{regexp.MustCompile(`(?i)frito[\s-]?lay|lay'?s|doritos|cheetos`), Snack, "Frito-Lay"},
	{regexp.MustCompile(`(?i)mars|snickers|m&m|twix`), Snack, "Mars"},
	{regexp.MustCompile(`(?i)\b(snack|candy|chip)\s*(machine|vending)`), Snack, ""},

	{regexp.MustCompile(`(?i)healthy\s?(you|vending|choice)|fresh\s?(healthy|market)`), Healthy, ""},
	{regexp.MustCompile(`(?i)natura(l|e)|organic|farm`), Healthy, ""},
	{regexp.MustCompile(`(?i)\b(salad|fruit|fresh|healthy)\s*(machine|vending)`), Healthy, ""},

	{regexp.MustCompile(`(?i)combo|dual|multi`), Combo, ""},

	{regexp.MustCompile(`(?i)coffee|keurig|nespresso|java`), Specialty, "Coffee"},
	{regexp.MustCompile(`(?i)ice\s*cream|frozen`), Specialty, ""},
	{regexp.MustCompile(`(?i)redbox|dvd|game`), Specialty, ""},
	{regexp.MustCompile(`(?i)laundry|detergent|soap`), Specialty, ""},
	{regexp.MustCompile(`(?i)pharmacy|medicine|otc`), Specialty, ""},
}

// Classify infers the category and brand of a machine from its listed name.
func Classify(name string) (MachineCategory, string) {
	trimmed := strings.TrimSpace(name)
	for _, r := range nameRules {
		if r.re.MatchString(trimmed) {
			return r.category, r.brand
		}
	}
	return Unknown, ""
}

// overlap[site][observed] is how directly an observed machine competes
// with a placement at that kind of site, 0 (none) to 1 (head-on). A
// combo machine is a near-direct competitor almost everywhere; a snack
// machine barely touches the protein-bar demand at a gym.
var overlap = map[category.Category]map[MachineCategory]float64{
	category.Office:        {Beverage: 0.5, Snack: 0.8, Healthy: 0.6, Combo: 0.9, Specialty: 0.3, Unknown: 0.5},
	category.Gym:           {Beverage: 0.3, Snack: 0.2, Healthy: 0.9, Combo: 0.5, Specialty: 0.2, Unknown: 0.4},
	category.Hospital:      {Beverage: 0.4, Snack: 0.6, Healthy: 0.5, Combo: 0.7, Specialty: 0.3, Unknown: 0.5},
	category.School:        {Beverage: 0.5, Snack: 0.8, Healthy: 0.4, Combo: 0.7, Specialty: 0.2, Unknown: 0.5},
	category.Manufacturing: {Beverage: 0.5, Snack: 0.7, Healthy: 0.3, Combo: 0.8, Specialty: 0.4, Unknown: 0.5},
	category.Apartment:     {Beverage: 0.4, Snack: 0.5, Healthy: 0.4, Combo: 0.7, Specialty: 0.3, Unknown: 0.4},
	category.Hotel:         {Beverage: 0.4, Snack: 0.5, Healthy: 0.3, Combo: 0.6, Specialty: 0.5, Unknown: 0.4},
	category.Transit:       {Beverage: 0.5, Snack: 0.6, Healthy: 0.3, Combo: 0.7, Specialty: 0.3, Unknown: 0.5},
}

// Overlap returns the competitive overlap between a site category and
// an observed machine's category.
func Overlap(site category.Category, observed MachineCategory) float64 {
	row, ok := overlap[site]
	if !ok {
		return 0.5
	}
	if v, ok := row[observed]; ok {
		return v
	}
	return row[Unknown]
}

// Overlap at or above this threshold counts as material, same-category
// competition.
const sameCategoryOverlap = 0.6

// Assess grades the market at a site given the machines observed
// nearby. A machine is a direct competitor when its overlap with the
// site category reaches 0.6; underserved means zero direct competitors,
// regardless of how many unrelated machines sit in range.
func Assess(site category.Category, machines []Machine) Assessment {
	var same, different int
	var pressure, nearest float64
	for i, m := range machines {
		ov := Overlap(site, m.Category)
		pressure += ov
		if ov >= sameCategoryOverlap {
			same++
		} else {
			different++
		}
		if i == 0 || m.DistanceMiles < nearest {
			nearest = m.DistanceMiles
		}
	}

	market := MarketSaturated
	switch {
	case same == 0:
		market = MarketUnderserved
	case same <= 2 && pressure < 2.0:
		market = MarketModerate
	}

	level := SaturationHigh
	switch {
	case len(machines) <= 2:
		level = SaturationLow
	case len(machines) <= 5:
		level = SaturationMedium
	}

	a := Assessment{
		TotalMachines:     len(machines),
		SameCategory:      same,
		DifferentCategory: different,
		NearestMiles:      nearest,
		OverlapPressure:   pressure,
		Market:            market,
		SaturationLevel:   level,
	}
	a.Score = score(a)
	a.Insight = insight(site, a, machines)
	return a
}

func score(a Assessment) int {
	switch a.Market {
	case MarketUnderserved:
		if a.TotalMachines == 0 {
			return 95
		}
		// Machines nearby, but none in a competing category.
		return 85
	case MarketModerate:
		return max(40, 75-15*a.SameCategory)
	default:
		return max(20, 50-10*a.SameCategory)
	}
}

func insight(site category.Category, a Assessment, machines []Machine) string {
	switch a.Market {
	case MarketUnderserved:
		if a.TotalMachines == 0 {
			return "No vending competition within range. First-mover advantage available."
		}
		if types := knownTypes(machines); len(types) > 0 {
			return fmt.Sprintf("%d nearby machine(s) detected (%s), but none compete directly with a %s placement. Whitespace opportunity.",
				a.TotalMachines, strings.Join(types, ", "), site)
		}
		return fmt.Sprintf("%d nearby machine(s) detected, but none serve the same category. Low direct competition.", a.TotalMachines)
	case MarketModerate:
		return fmt.Sprintf("%d competing machine(s) in the same category. Differentiation through product mix or positioning will be key.", a.SameCategory)
	default:
		return fmt.Sprintf("%d same-category competitors detected. Market is saturated. Consider alternative locations or unique product differentiation.", a.SameCategory)
	}
}

// knownTypes names up to three classified machines for the insight text.
func knownTypes(machines []Machine) []string {
	var types []string
	for _, m := range machines {
		if m.Category == Unknown {
			continue
		}
		label := m.Brand
		if label == "" {
			label = string(m.Category)
		}
		types = append(types, label)
		if len(types) == 3 {
			break
		}
	}
	return types
}
