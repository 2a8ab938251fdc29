package guides

import "strings"

// SlicerHint is a starting point for one slicer's temperature settings.
type SlicerHint struct {
	Slicer     string
	NozzleTemp string
	BedTemp    string
	Speed      string
	Cooling    string
}

// Hints lists the per-slicer starting settings for a material.
type Hints struct {
	Material string
	Slicers  []SlicerHint
}

type tempRange struct{ nozzle, bed string }

var materialTemps = map[string][2]tempRange{
	"PLA":  {{"190-210°C", "50-60°C"}, {"195-215°C", "55-65°C"}},
	"PETG": {{"230-250°C", "70-90°C"}, {"235-255°C", "75-95°C"}},
	"ABS":  {{"230-250°C", "90-110°C"}, {"235-255°C", "95-115°C"}},
}

var fallbackTemps = [2]tempRange{{"200-230°C", "60-80°C"}, {"205-235°C", "65-85°C"}}

const (
	defaultSpeed   = "40-60 мм/с"
	defaultCooling = "80-100%"
	absCooling     = "Отключено или 0-20%"
)

// HintsFor returns PrusaSlicer and Cura starting values for material. Unknown
// materials get generic ranges.
func HintsFor(material string) Hints {
	key := strings.ToUpper(strings.TrimSpace(material))
	temps, ok := materialTemps[key]
	if !ok {
		temps = fallbackTemps
	}
	cooling := defaultCooling
	if key == "ABS" {
		cooling = absCooling
	}
	slicers := []string{"PrusaSlicer", "Cura"}
	out := Hints{Material: material, Slicers: make([]SlicerHint, 0, len(slicers))}
	for i, name := range slicers {
		out.Slicers = append(out.Slicers, SlicerHint{
			Slicer:     name,
			NozzleTemp: temps[i].nozzle,
			BedTemp:    temps[i].bed,
			Speed:      defaultSpeed,
			Cooling:    cooling,
		})
	}
	return out
}
