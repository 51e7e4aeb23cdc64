// Package main is the entry point for the dnbseq CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dnbseq/api"
	"dnbseq/audio"
	"dnbseq/config"
	"dnbseq/debug"
	"dnbseq/midi"
	"dnbseq/pattern"
	"dnbseq/sequencer"
	"dnbseq/theme"
	"dnbseq/tui"
)

var (
	flagBPM      int
	flagPattern  int
	flagMIDIOut  string
	flagClockIn  string
	flagKit      string
	flagNoAudio  bool
	flagWithAPI  bool
	flagAPIPort  int
	flagDebugLog bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dnbseq",
	Short: "Drum & bass step sequencer with pattern mutation",
	Long: `dnbseq is a four-track (kick, snare, hi-hat, ghost snare) step
sequencer built around a fixed catalog of drum & bass patterns and a
variation engine that mutates the playing pattern while always
preserving the snare backbeat.

The engine runs from an internal 24 PPQN clock rendered through the
audio device, or slaves to an external MIDI clock. Triggers can be
sent to a MIDI port, and a REST API exposes remote control.

Examples:
  dnbseq run
  dnbseq run --bpm 172 --midi-out "TR-8" --kit rd8
  dnbseq run --clock-in "USB MIDI" --no-audio
  dnbseq patterns
  dnbseq serve --port 8080`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sequencer with the terminal UI",
	RunE:  runRun,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the pattern catalog",
	RunE:  runPatterns,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI ports",
	RunE:  runPorts,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sequencer headless behind the REST API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebugLog, "debug", false, "Write a debug log to ~/.config/dnbseq/debug.log")

	runCmd.Flags().IntVar(&flagBPM, "bpm", 0, "Internal clock tempo (default from config)")
	runCmd.Flags().IntVar(&flagPattern, "pattern", -1, "Startup pattern id 0-9 (default from config)")
	runCmd.Flags().StringVar(&flagMIDIOut, "midi-out", "", "MIDI output port for triggers (substring match)")
	runCmd.Flags().StringVar(&flagClockIn, "clock-in", "", "Slave to MIDI clock on this input port")
	runCmd.Flags().StringVar(&flagKit, "kit", "", "Drum kit note map (gm, rd8)")
	runCmd.Flags().BoolVar(&flagNoAudio, "no-audio", false, "Do not open the audio device")
	runCmd.Flags().BoolVar(&flagWithAPI, "api", false, "Also serve the REST API")

	serveCmd.Flags().IntVarP(&flagAPIPort, "port", "p", 0, "API port (default from config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagBPM > 0 {
		cfg.BPM = flagBPM
	}
	if flagPattern >= 0 {
		cfg.Pattern = flagPattern
	}
	if flagMIDIOut != "" {
		cfg.MIDI.OutPort = flagMIDIOut
	}
	if flagClockIn != "" {
		cfg.MIDI.ClockIn = flagClockIn
	}
	if flagKit != "" {
		cfg.MIDI.Kit = flagKit
	}
	if flagAPIPort > 0 {
		cfg.APIPort = flagAPIPort
	}
	return cfg, nil
}

// newEngine builds the engine from config: startup pattern and default
// probabilities.
func newEngine(cfg *config.Config) *sequencer.Engine {
	eng := sequencer.New(cfg.SampleRate)
	eng.LoadPattern(cfg.Pattern)
	eng.SetProbability(pattern.Kick, cfg.Probability.Kick)
	eng.SetProbability(pattern.Snare, cfg.Probability.Snare)
	eng.SetProbability(pattern.Ghost, cfg.Probability.Ghost)
	return eng
}

func runRun(cmd *cobra.Command, args []string) error {
	if flagDebugLog {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng := newEngine(cfg)
	defer midi.CloseDriver()

	// Trigger output
	if cfg.MIDI.OutPort != "" {
		out, err := midi.OpenOutput(cfg.MIDI.OutPort, cfg.MIDI.Kit, cfg.MIDI.Channel)
		if err != nil {
			return err
		}
		defer out.Close()
		go out.Run(eng.Triggers())
	}

	// Clocking: external MIDI clock, or the internal pulse generator
	// driven by the audio device (or a headless pump).
	var src *audio.Source
	if cfg.MIDI.ClockIn != "" {
		stop, err := midi.ListenClock(cfg.MIDI.ClockIn, eng)
		if err != nil {
			return err
		}
		defer stop()
	} else {
		src = audio.NewSource(eng, cfg.BPM)
		if flagNoAudio {
			pump := audio.NewHeadless(src)
			pump.Start()
			defer pump.Close()
		} else {
			player, err := audio.NewPlayer(src)
			if err != nil {
				return fmt.Errorf("open audio device: %w", err)
			}
			defer player.Close()
			player.Start()
		}
	}

	if flagWithAPI {
		go func() {
			if err := api.StartServer(cfg.APIPort, eng); err != nil {
				debug.Log("api", "server stopped: %v", err)
			}
		}()
	}

	return tui.Run(eng, src, theme.New(theme.Plasma))
}

func runPatterns(cmd *cobra.Command, args []string) error {
	for i := 0; i < pattern.Count(); i++ {
		p := pattern.Lookup(i)
		fmt.Printf("%d  %-18s %d steps\n", p.ID, p.Name, p.Steps)
		for t := 0; t < pattern.NumTracks; t++ {
			fmt.Printf("   %-6s ", pattern.Track(t).String())
			for s := 0; s < p.Steps; s++ {
				if p.Hits[t][s] {
					fmt.Print("X")
				} else {
					fmt.Print(".")
				}
			}
			fmt.Println()
		}
		fmt.Println()
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	defer midi.CloseDriver()
	fmt.Println("MIDI inputs:")
	for _, name := range midi.InPorts() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("MIDI outputs:")
	for _, name := range midi.OutPorts() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagDebugLog {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng := newEngine(cfg)
	defer midi.CloseDriver()

	if cfg.MIDI.OutPort != "" {
		out, err := midi.OpenOutput(cfg.MIDI.OutPort, cfg.MIDI.Kit, cfg.MIDI.Channel)
		if err != nil {
			return err
		}
		defer out.Close()
		go out.Run(eng.Triggers())
	}

	// Headless: the internal clock still has to run for the snapshot
	// to move.
	src := audio.NewSource(eng, cfg.BPM)
	pump := audio.NewHeadless(src)
	pump.Start()
	defer pump.Close()

	fmt.Printf("dnbseq API on port %d\n", cfg.APIPort)
	return api.StartServer(cfg.APIPort, eng)
}
