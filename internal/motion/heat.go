package motion

import "github.com/yash/laeportal/pkg/models"

// HeatLevel buckets a demand intensity for the insights heatmap.
type HeatLevel string

const (
	HeatLow      HeatLevel = "low"
	HeatMedium   HeatLevel = "medium"
	HeatHigh     HeatLevel = "high"
	HeatVeryHigh HeatLevel = "very-high"
)

// LevelFor maps an intensity in [0,1] to its bucket. Bounds are exclusive.
func LevelFor(intensity float64) HeatLevel {
	switch {
	case intensity > 0.8:
		return HeatVeryHigh
	case intensity > 0.6:
		return HeatHigh
	case intensity > 0.4:
		return HeatMedium
	}
	return HeatLow
}

// HeatRadiusM is the drawn radius of a hotspot circle in metres.
func HeatRadiusM(intensity float64) float64 {
	return 1500 + intensity*2000
}

// HeatCell is a hotspot prepared for drawing.
type HeatCell struct {
	models.Hotspot
	Level   HeatLevel `json:"level"`
	RadiusM float64   `json:"radius_m"`
}

// Heatmap converts hotspots to cells, preserving order.
func Heatmap(spots []models.Hotspot) []HeatCell {
	cells := make([]HeatCell, 0, len(spots))
	for _, s := range spots {
		cells = append(cells, HeatCell{
			Hotspot: s,
			Level:   LevelFor(s.Intensity),
			RadiusM: HeatRadiusM(s.Intensity),
		})
	}
	return cells
}
