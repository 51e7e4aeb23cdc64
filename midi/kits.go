package midi

import "dnbseq/pattern"

// Kit maps the four sequencer tracks to MIDI notes and velocities.
// The ghost snare shares the snare note at a low velocity.
type Kit struct {
	Name     string
	Notes    [pattern.NumTracks]uint8
	Velocity [pattern.NumTracks]uint8
}

// DefaultKit is used when the configured kit name is unknown.
const DefaultKit = "gm"

// Kits contains the available drum kit mappings.
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: [pattern.NumTracks]uint8{
			pattern.Kick:  36, // Kick
			pattern.Snare: 38, // Snare
			pattern.HiHat: 42, // Closed HH
			pattern.Ghost: 38, // Snare (ghost)
		},
		Velocity: [pattern.NumTracks]uint8{
			pattern.Kick:  110,
			pattern.Snare: 100,
			pattern.HiHat: 80,
			pattern.Ghost: 40,
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: [pattern.NumTracks]uint8{
			pattern.Kick:  36, // BD
			pattern.Snare: 40, // SD - note: RD-8 uses 40, not 38!
			pattern.HiHat: 42, // CH
			pattern.Ghost: 40, // SD (ghost)
		},
		Velocity: [pattern.NumTracks]uint8{
			pattern.Kick:  110,
			pattern.Snare: 100,
			pattern.HiHat: 80,
			pattern.Ghost: 40,
		},
	},
}

// GetKit returns the kit for a name, falling back to the default.
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}
