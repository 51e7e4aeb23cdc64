package pattern

// The catalog of drum & bass patterns. Hit rows are written as strings
// ("X" = hit, "." = rest) so the grid reads like the grid it is; rows
// shorter than MaxSteps are zero-padded.

func row(s string) [MaxSteps]bool {
	var out [MaxSteps]bool
	for i, c := range s {
		if i >= MaxSteps {
			break
		}
		out[i] = c == 'X' || c == 'x'
	}
	return out
}

var catalog = [...]Pattern{
	{
		ID: 0, Name: "Two-Step", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.........X....."),
			Snare: row("....X.......X..."),
			HiHat: row("X.X.X.X.X.X.X.X."),
		},
	},
	{
		ID: 1, Name: "Delayed Two-Step", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.........X....."),
			Snare: row("....X.........X."),
			HiHat: row("X.X.X.X.X.X.X.X."),
		},
	},
	{
		ID: 2, Name: "Steppa", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X..............."),
			Snare: row("....X.....X....."),
			HiHat: row("X.X.X.X.X.X.X.X."),
			Ghost: row(".......X.X...X.X"),
		},
	},
	{
		ID: 3, Name: "Stompa", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.......X......."),
			Snare: row("....X.....X....."),
			HiHat: row("X.X.X.X.X.X.X.X."),
			Ghost: row(".............X.X"),
		},
	},
	{
		ID: 4, Name: "Dance Hall", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.....X........."),
			Snare: row("............X..."),
			HiHat: row("X.X.X.X.X.X.X.X."),
		},
	},
	{
		ID: 5, Name: "Dimension UK", Steps: 32,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.............................X."),
			Snare: row("....X...X...X...X...X...X......."),
			HiHat: row("X.X.X.X.X.X.X.X.X.X.X.X.X.X.X.X."),
		},
	},
	{
		ID: 6, Name: "Halftime", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X..............."),
			Snare: row("........X......."),
			HiHat: row("X.X.X.X.X.X.X.X."),
		},
	},
	{
		ID: 7, Name: "Triplet Two-Step", Steps: 24,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.....X.....X.....X....."),
			Snare: row("......X...........X....."),
			HiHat: row("X.X.X.X.X.X.X.X.X.X.X.X."),
		},
	},
	{
		ID: 8, Name: "Amen Break", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X.........X....."),
			Snare: row("....X..X.X..X..."),
			HiHat: row("X.X.X.X.X.X.X.X."),
			Ghost: row("......X........."),
		},
	},
	{
		ID: 9, Name: "Neurofunk", Steps: 16,
		Hits: [NumTracks][MaxSteps]bool{
			Kick:  row("X....X..X....X.."),
			Snare: row("....X.......X..."),
			HiHat: row("X.XXX.X.X.XXX.X."),
			Ghost: row("...X.......X...."),
		},
	},
}

// Count returns the number of patterns in the catalog.
func Count() int {
	return len(catalog)
}

// ClampID maps any integer to a valid catalog id. Out-of-range ids
// fall back to 0 - an invalid id is a recoverable input condition,
// never a fault.
func ClampID(id int) int {
	if id < 0 || id >= len(catalog) {
		return 0
	}
	return id
}

// Lookup returns the pattern for id (clamped). The returned value is a
// copy; the catalog itself is never handed out.
func Lookup(id int) Pattern {
	return catalog[ClampID(id)]
}

// TrackSteps returns one track's hit row and the pattern's step count.
// Used by the variation engine's cross-pattern copy.
func TrackSteps(id int, t Track) ([MaxSteps]bool, int) {
	p := &catalog[ClampID(id)]
	return p.Hits[t], p.Steps
}

// Names returns the catalog names indexed by id.
func Names() []string {
	names := make([]string, len(catalog))
	for i := range catalog {
		names[i] = catalog[i].Name
	}
	return names
}
