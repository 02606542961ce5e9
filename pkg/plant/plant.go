// Package plant defines the planner's internal plant record and the layout
// rules derived from plant size.
package plant

import (
	"fmt"
	"strings"
)

// Unknown is the placeholder for attributes the provider does not supply.
const Unknown = "Unknown"

// DefaultImage is shown when a provider record has no thumbnail.
const DefaultImage = "https://cdn-icons-png.flaticon.com/128/628/628324.png"

// DefaultSpacing is the spacing in inches used when a plant's height is unknown.
const DefaultSpacing = 12

// Palette holds the display colours assigned to plants by numeric id.
var Palette = []string{"#ff6b6b", "#ff9f43", "#1dd1a1", "#10ac84", "#2e86de", "#f9ca24", "#6ab04c", "#eb4d4b"}

// Plant is a plant record in the planner's schema.
type Plant struct {
	ID                  string  `json:"id"`
	Name                string  `json:"plantName"`
	ScientificName      string  `json:"scientificName,omitempty"`
	Type                string  `json:"plantType"`
	Description         string  `json:"plantDescription"`
	Image               string  `json:"plantImage"`
	Watering            string  `json:"plantWatering"`
	Light               string  `json:"plantLight"`
	Soil                string  `json:"plantSoil"`
	Fertilizer          string  `json:"plantFertilizer"`
	Humidity            string  `json:"plantHumidity"`
	Temperature         string  `json:"plantTemperature"`
	Toxicity            string  `json:"plantToxicity"`
	Pests               string  `json:"plantPests"`
	Diseases            string  `json:"plantDiseases"`
	CareLevel           string  `json:"careLevel,omitempty"`
	Cycle               string  `json:"cycle,omitempty"`
	Spacing             int     `json:"spacing"`
	PlantsPerSquareFoot float64 `json:"plantsPerSquareFoot"`
	Color               string  `json:"color"`
}

// SourceID builds the record id for a provider-scoped numeric id,
// e.g. SourceID("perenual", 1234) == "perenual-1234".
func SourceID(source string, id int) string {
	return fmt.Sprintf("%s-%d", source, id)
}

// SpacingForHeight estimates spacing in inches from a maximum height.
// A non-positive height means unknown.
func SpacingForHeight(maxHeight float64) int {
	switch {
	case maxHeight <= 0:
		return DefaultSpacing
	case maxHeight > 200:
		return 24
	case maxHeight > 100:
		return 18
	case maxHeight > 50:
		return 12
	default:
		return 6
	}
}

// PerSquareFoot returns how many plants fit in one square foot at the given
// spacing. Wide plants share a square: 0.25 means one plant per four squares.
func PerSquareFoot(spacing int) float64 {
	switch {
	case spacing >= 18:
		return 0.25
	case spacing >= 12:
		return 1
	case spacing >= 6:
		return 4
	case spacing >= 4:
		return 9
	default:
		return 16
	}
}

// ColorFor picks a palette colour for a numeric id.
func ColorFor(id int) string {
	n := id % len(Palette)
	if n < 0 {
		n += len(Palette)
	}
	return Palette[n]
}

// JoinOrUnknown joins values with ", ", or returns [Unknown] when there are
// none.
func JoinOrUnknown(values []string) string {
	var kept []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return Unknown
	}
	return strings.Join(kept, ", ")
}

// OrUnknown returns s, or [Unknown] when s is blank.
func OrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
