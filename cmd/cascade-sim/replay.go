package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cascade-sim/internal/config"
	"cascade-sim/internal/sim"
)

var (
	replayInput string
	replaySpeed float64
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded event log",
	Long:  "replay feeds events from a JSONL log file back through the configured writer, reproducing the original timing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg := config.Default()
		writer, err := baseWriter(&cfg, true)
		if err != nil {
			return err
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to event log file (JSONL)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.MarkFlagRequired("input")
}
