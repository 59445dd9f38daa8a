package main

import (
	"os"

	"golang.org/x/term"

	"cascade-sim/internal/config"
	"cascade-sim/internal/sim"
)

// newWriters sets up the event writer chain based on flags and env vars.
// It returns the writer and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, printOnly bool, logFile string) (sim.EventWriter, func(), error) {
	cleanup := func() {}

	writer, err := baseWriter(cfg, printOnly)
	if err != nil {
		return nil, nil, err
	}
	if logFile == "" {
		return writer, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".txt")
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { fw.Close() }
	return sim.NewMultiWriter(writer, fw), cleanup, nil
}

// baseWriter chooses the underlying writer based on printOnly and env vars.
func baseWriter(cfg *config.SimulationConfig, printOnly bool) (sim.EventWriter, error) {
	if !printOnly && os.Getenv("GREPTIMEDB_ENDPOINT") != "" {
		endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
		table := os.Getenv("GREPTIMEDB_TABLE")
		return sim.NewGreptimeWriter(endpoint, "public", table)
	}
	if isTerminal(os.Stdout) {
		return sim.NewColorStdoutWriter(cfg), nil
	}
	return sim.NewStdoutWriter(), nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
