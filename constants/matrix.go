package constants

import "strings"

// MatrixSource is the canonical sample-source code on a chain-of-custody form.
type MatrixSource string

const (
	Wastewater    MatrixSource = "WW"
	Groundwater   MatrixSource = "GW"
	DrinkingWater MatrixSource = "DW"
	SurfaceWater  MatrixSource = "SW"
	Soil          MatrixSource = "S"
	OtherSource   MatrixSource = "OTHER"
)

var allMatrixSources = []MatrixSource{
	Wastewater,
	Groundwater,
	DrinkingWater,
	SurfaceWater,
	Soil,
	OtherSource,
}

// MatrixSourceCodes returns the known codes as strings.
func MatrixSourceCodes() []string {
	result := make([]string, len(allMatrixSources))
	for i, m := range allMatrixSources {
		result[i] = string(m)
	}
	return result
}

// CanonicalizeMatrix maps a raw matrix/source value onto a known code.
func CanonicalizeMatrix(input string) (MatrixSource, bool) {
	if input == "" {
		return OtherSource, false
	}

	normalized := strings.ToUpper(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]MatrixSource{
		"WASTEWATER":     Wastewater,
		"WASTE WATER":    Wastewater,
		"GROUNDWATER":    Groundwater,
		"GROUND WATER":   Groundwater,
		"DRINKING WATER": DrinkingWater,
		"POTABLE":        DrinkingWater,
		"SURFACE WATER":  SurfaceWater,
		"SOIL":           Soil,
		"SOLID":          Soil,
	}

	if m, ok := synonyms[normalized]; ok {
		return m, true
	}

	for _, m := range allMatrixSources {
		if normalized == string(m) {
			return m, true
		}
	}

	return OtherSource, false
}

// CollectionMethods are the comp/grab codes a sample row may carry.
var CollectionMethods = []string{"G", "C", "GRAB", "COMPOSITE", "COMP"}

// IsCollectionMethod reports whether v is a known comp/grab code.
func IsCollectionMethod(v string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(v))
	for _, m := range CollectionMethods {
		if normalized == m {
			return true
		}
	}
	return false
}
