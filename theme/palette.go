package theme

type RGB [3]uint8

// Palette is a small color gradient sampled by normalized position.
type Palette struct {
	Name   string
	Colors []RGB
}

// Plasma is the built-in gradient (dark purple through magenta to
// yellow), sampled at the role positions in theme.go.
var Plasma = &Palette{
	Name: "plasma",
	Colors: []RGB{
		{13, 8, 135},
		{84, 2, 163},
		{139, 10, 165},
		{185, 50, 137},
		{219, 92, 104},
		{244, 136, 73},
		{254, 188, 43},
		{240, 249, 33},
	},
}

// Lookup returns the color at normalized position 0-1, interpolating
// between gradient stops.
func (p *Palette) Lookup(norm float64) RGB {
	if len(p.Colors) == 0 {
		return RGB{}
	}
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	lo := int(pos)
	hi := lo + 1
	frac := pos - float64(lo)

	var out RGB
	for i := 0; i < 3; i++ {
		a := float64(p.Colors[lo][i])
		b := float64(p.Colors[hi][i])
		out[i] = uint8(a + (b-a)*frac)
	}
	return out
}
