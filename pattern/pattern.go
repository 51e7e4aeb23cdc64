package pattern

// Track identifies one of the four drum voices.
type Track int

const (
	Kick Track = iota
	Snare
	HiHat
	Ghost

	NumTracks = 4
)

func (t Track) String() string {
	switch t {
	case Kick:
		return "Kick"
	case Snare:
		return "Snare"
	case HiHat:
		return "HiHat"
	case Ghost:
		return "Ghost"
	}
	return "?"
}

// MaxSteps is the step capacity of every pattern. The longest pattern
// in the catalog has 32 steps; positions beyond Steps are unused.
const MaxSteps = 32

// Pattern is a rhythm template: a hit grid for the four tracks plus an
// active step count. Patterns are values - copy freely, never share
// mutable state.
type Pattern struct {
	ID    int
	Name  string
	Steps int // 16, 24 or 32
	Hits  [NumTracks][MaxSteps]bool
}

// Hit reports whether track t fires at step. Out-of-range steps are
// never hits.
func (p *Pattern) Hit(t Track, step int) bool {
	if step < 0 || step >= p.Steps {
		return false
	}
	return p.Hits[t][step]
}

// Backbeat reports whether (t, step) is a protected snare backbeat
// position (steps 4, 12, 20, 28 - beats 2 and 4 of each bar). The
// variation engine never alters these.
func Backbeat(t Track, step int) bool {
	return t == Snare && step%8 == 4
}
