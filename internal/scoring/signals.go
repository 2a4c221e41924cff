package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/vendscout/internal/category"
)

// negativeSignals collects every independent weakness found in the
// input. Checks run in a fixed order so output is stable.
func negativeSignals(in Input, prof *category.Profile) []string {
	var signals []string
	catName := strings.ToLower(prof.Name)

	switch in.BusinessStatus {
	case StatusClosedPermanently:
		signals = append(signals, "Business is permanently closed")
	case StatusClosedTemporarily:
		signals = append(signals, "Business is temporarily closed")
	}

	if in.IsAreaLevel {
		signals = append(signals, fmt.Sprintf("No %s found within search radius", catName))
	}

	if len(in.PlaceTypes) > 0 && !prof.HasExpectedType(in.PlaceTypes) && !prof.HasRelatedType(in.PlaceTypes) {
		label := strings.Join(in.PlaceTypes[:min(3, len(in.PlaceTypes))], ", ")
		signals = append(signals, fmt.Sprintf("Building type mismatch: classified as [%s], expected %s types", label, catName))
	}

	if in.Demographics.PopulationDensity < 3000 {
		signals = append(signals, "Low population density area - limited foot traffic potential")
	}

	total := in.Competition.PlaceCountInRadius
	if total == 0 {
		total = in.Competition.Count
	}
	if total == 0 && in.Demographics.PopulationDensity < 5000 {
		signals = append(signals, "No competing businesses in low-density area - weak commercial demand signal")
	}

	if in.Demographics.MedianIncome/float64(prof.Ideal.MinIncome) < 0.6 {
		signals = append(signals, fmt.Sprintf("Median income (%s) significantly below ideal for %s",
			moneyPrinter.Sprintf("$%d", int(math.Round(in.Demographics.MedianIncome))), catName))
	}

	if in.Demographics.EmploymentRate < 0.5 {
		signals = append(signals, fmt.Sprintf("Low employment rate (%d%%) - fewer daytime workers nearby",
			int(math.Round(in.Demographics.EmploymentRate*100))))
	}

	return signals
}

// dataQuality grades confidence in a score from how much of the input
// was real data.
func dataQuality(in Input) DataQuality {
	switch {
	case in.IsAreaLevel:
		return QualityLow
	case in.HasPlaceDetails && in.HasCensusData && len(in.PlaceTypes) > 0:
		return QualityHigh
	case in.HasPlaceDetails || in.HasCensusData:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Reasoning renders a short plain-language explanation of a score: an
// overall verdict, one line per major component, and up to two of the
// strongest negative signals.
func Reasoning(s Score, cat category.Category) []string {
	prof := category.Get(cat)
	name := strings.ToLower(prof.Name)

	var reasons []string

	switch {
	case s.Overall >= 75:
		reasons = append(reasons, fmt.Sprintf("Strong fit for %s vending - multiple positive signals.", name))
	case s.Overall >= 55:
		reasons = append(reasons, fmt.Sprintf("Moderate potential for %s - review specific metrics before committing.", name))
	case s.Overall >= 35:
		reasons = append(reasons, fmt.Sprintf("Below average for %s - significant concerns identified.", name))
	default:
		reasons = append(reasons, fmt.Sprintf("Poor fit for %s vending - consider alternative locations.", name))
	}

	switch {
	case s.FootTraffic >= 70:
		reasons = append(reasons, "High foot traffic area with strong visitor volume.")
	case s.FootTraffic >= 45:
		reasons = append(reasons, "Moderate foot traffic - may need high-visibility placement.")
	case s.FootTraffic >= 20:
		reasons = append(reasons, "Low foot traffic - location may not generate enough daily visits.")
	default:
		reasons = append(reasons, "Very low foot traffic signal - area lacks commercial activity.")
	}

	switch {
	case s.BuildingType >= 80:
		reasons = append(reasons, fmt.Sprintf("Location type is a strong match for %s vending.", name))
	case s.BuildingType >= 50:
		reasons = append(reasons, "Building type is a partial match - verify fit on-site.")
	case s.BuildingType >= 30:
		reasons = append(reasons, "Building type does not match the selected vending category.")
	default:
		reasons = append(reasons, "No category-matching businesses found at this location.")
	}

	switch {
	case s.Competition >= 70:
		reasons = append(reasons, "Healthy competitive landscape - demand is validated with room for entry.")
	case s.Competition >= 45:
		reasons = append(reasons, "Moderate competition - differentiation needed.")
	default:
		reasons = append(reasons, "Competitive landscape is unfavorable (saturated or no demand signal).")
	}

	for i, sig := range s.NegativeSignals {
		if i == 2 {
			break
		}
		reasons = append(reasons, "⚠ "+sig)
	}

	return reasons
}

// Label maps an overall score to its display band.
func Label(score int) string {
	switch {
	case score >= 75:
		return "Excellent"
	case score >= 55:
		return "Good"
	case score >= 35:
		return "Fair"
	default:
		return "Poor"
	}
}
