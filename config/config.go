package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ProbabilityConfig stores the default per-track trigger
// probabilities. The hi-hat always fires and has no entry.
type ProbabilityConfig struct {
	Kick  float32 `json:"kick"`
	Snare float32 `json:"snare"`
	Ghost float32 `json:"ghost"`
}

// MIDIConfig defines the MIDI wiring
type MIDIConfig struct {
	OutPort string `json:"outPort,omitempty"` // trigger output, empty = no MIDI out
	ClockIn string `json:"clockIn,omitempty"` // external clock input, empty = internal clock
	Kit     string `json:"kit,omitempty"`     // gm, rd8
	Channel uint8  `json:"channel,omitempty"` // 1-16
}

// Config is the main configuration structure
type Config struct {
	MIDI        MIDIConfig        `json:"midi,omitempty"`
	SampleRate  int               `json:"sampleRate,omitempty"`
	BPM         int               `json:"bpm,omitempty"`
	Pattern     int               `json:"pattern,omitempty"` // startup pattern id
	APIPort     int               `json:"apiPort,omitempty"`
	Probability ProbabilityConfig `json:"probability"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			Kit:     "gm",
			Channel: 10,
		},
		SampleRate: 48000,
		BPM:        174,
		Pattern:    0,
		APIPort:    8080,
		Probability: ProbabilityConfig{
			Kick:  1.0,
			Snare: 1.0,
			Ghost: 1.0,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dnbseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
