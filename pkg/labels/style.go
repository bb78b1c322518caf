package labels

// Style is the fully resolved visual style of a label at a given zoom.
type Style struct {
	FontSize      float64
	Weight        float64 // CSS-style weight, rounded by renderers
	LetterSpacing float64
	Opacity       float64
	Shadow        float64 // drop-shadow strength, 0 = none
	Fill          string
}

// preset is one of the three named style anchors.
type preset struct {
	size    float64
	weight  float64
	spacing float64
	opacity float64
	shadow  float64
}

// The three zoom presets. Far views use small, widely spaced, heavily
// shadowed text that reads like map terrain lettering; near views use
// larger plain text.
var (
	presetFar  = preset{size: 13, weight: 600, spacing: 2.5, opacity: 0.75, shadow: 1.0}
	presetMid  = preset{size: 15, weight: 550, spacing: 1.5, opacity: 0.85, shadow: 0.55}
	presetNear = preset{size: 18, weight: 500, spacing: 0.5, opacity: 0.95, shadow: 0.2}
)

// Zoom bands across which the presets blend.
const (
	blendFarMidStart = 1.0
	blendFarMidEnd   = 2.2
	blendMidNearEnd  = 4.5

	// shadowCutoffZoom is where the drop shadow disappears entirely,
	// avoiding a double-outline look over cards at high zoom.
	shadowCutoffZoom = 6.0
)

// Importance-tier boosts applied after blending.
var tierBoost = [3]struct {
	size, weight, opacity float64
}{
	{size: 1.25, weight: 100, opacity: 1.12},
	{size: 1.10, weight: 50, opacity: 1.05},
	{size: 1.0, weight: 0, opacity: 1.0},
}

const labelFill = "#e8e4da"

// Resolve computes the label style for a zoom level and importance tier.
// All attributes are continuous in zoom: the three presets are blended
// with smoothstep interpolation across two zoom bands.
func Resolve(zoom float64, tier int) Style {
	var p preset
	switch {
	case zoom <= blendFarMidStart:
		p = presetFar
	case zoom <= blendFarMidEnd:
		p = blend(presetFar, presetMid, smoothstep(blendFarMidStart, blendFarMidEnd, zoom))
	case zoom <= blendMidNearEnd:
		p = blend(presetMid, presetNear, smoothstep(blendFarMidEnd, blendMidNearEnd, zoom))
	default:
		p = presetNear
	}

	if tier < 0 {
		tier = 0
	}
	if tier > 2 {
		tier = 2
	}
	boost := tierBoost[tier]

	s := Style{
		FontSize:      p.size * boost.size,
		Weight:        p.weight + boost.weight,
		LetterSpacing: p.spacing,
		Opacity:       min1(p.opacity * boost.opacity),
		Shadow:        p.shadow,
		Fill:          labelFill,
	}

	if zoom >= shadowCutoffZoom {
		s.Shadow = 0
	} else if zoom > blendMidNearEnd {
		// Fade the remaining shadow out linearly across the last band.
		s.Shadow *= 1 - (zoom-blendMidNearEnd)/(shadowCutoffZoom-blendMidNearEnd)
	}
	return s
}

// blend interpolates every preset attribute by t in [0, 1].
func blend(a, b preset, t float64) preset {
	return preset{
		size:    lerp(a.size, b.size, t),
		weight:  lerp(a.weight, b.weight, t),
		spacing: lerp(a.spacing, b.spacing, t),
		opacity: lerp(a.opacity, b.opacity, t),
		shadow:  lerp(a.shadow, b.shadow, t),
	}
}

// smoothstep is the Hermite ease between edges e0 and e1.
func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
