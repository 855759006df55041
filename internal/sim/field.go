package sim

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"myrmex/internal/model"
)

// Noise sampling constants. Positions are in degrees, so the base
// frequency stretches a few kilometers of terrain across one noise
// period; ticks drift the field slowly along the third axis.
const (
	fieldOctaves     = 3
	fieldFrequency   = 8.0
	fieldPersistence = 0.5
	fieldTimeScale   = 0.01
)

// Field synthesizes per-position sensor snapshots from layered simplex
// noise. Independent generators per channel keep moisture, acidity,
// and temperature uncorrelated; the same seed always reproduces the
// same landscape.
type Field struct {
	moisture    opensimplex.Noise
	acidity     opensimplex.Noise
	temperature opensimplex.Noise
	light       opensimplex.Noise
	co2         opensimplex.Noise
}

func NewField(seed int64) *Field {
	return &Field{
		moisture:    opensimplex.NewNormalized(seed),
		acidity:     opensimplex.NewNormalized(seed + 1),
		temperature: opensimplex.NewNormalized(seed + 2),
		light:       opensimplex.NewNormalized(seed + 3),
		co2:         opensimplex.NewNormalized(seed + 4),
	}
}

// ReadingsAt samples every channel at a position and tick, mapping
// the normalized noise onto physical ranges: moisture 0-100%, pH
// 5.5-8.5, temperature -5..40 C, light 0-1, CO2 350-550 ppm. Threat
// counts come from the event engine, not the field.
func (f *Field) ReadingsAt(lat, lon float64, tick int) model.SensorReadings {
	t := float64(tick) * fieldTimeScale
	return model.SensorReadings{
		SoilMoisturePercent: octaveNoise(f.moisture, lat, lon, t) * 100.0,
		SoilPH:              5.5 + octaveNoise(f.acidity, lat, lon, t)*3.0,
		TemperatureC:        -5.0 + octaveNoise(f.temperature, lat, lon, t)*45.0,
		LightLevel:          octaveNoise(f.light, lat, lon, t),
		CO2PPM:              350.0 + octaveNoise(f.co2, lat, lon, t)*200.0,
	}
}

// octaveNoise layers doubling frequencies with decaying amplitude and
// renormalizes to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y, t float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	frequency := fieldFrequency

	for i := 0; i < fieldOctaves; i++ {
		total += noise.Eval3(x*frequency, y*frequency, t) * amplitude
		maxVal += amplitude
		amplitude *= fieldPersistence
		frequency *= 2
	}

	return total / maxVal
}
