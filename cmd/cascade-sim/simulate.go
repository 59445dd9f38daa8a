package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cascade-sim/internal/config"
	"cascade-sim/internal/graph"
	"cascade-sim/internal/logging"
	"cascade-sim/internal/query"
	"cascade-sim/internal/sim"
	"cascade-sim/internal/topology"
	"cascade-sim/internal/tui"
)

var (
	simTopologyPath string
	simConfigPath   string
	simSchemaPath   string
	simLogFile      string
	simPrintOnly    bool
	simTick         time.Duration
	simQuery        string
	simInteractive  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a cascading-failure simulation",
	Long:  "simulate loads a service topology, runs the configured number of ticks, and optionally answers queries about the finished run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		records, err := topology.Load(simTopologyPath)
		if err != nil {
			return err
		}
		g, err := graph.New(records)
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriters(cfg, simPrintOnly, simLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logging.New())

		simulator := sim.New(g, cfg, writer)
		if err := simulator.Run(ctx, tickInterval); err != nil {
			return err
		}

		engine := query.New(g, simulator.Log(), simulator.Analyzer(), cfg.Threshold, simulator.CurrentTick())
		if simQuery != "" {
			answer, err := engine.Answer(simQuery)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		}
		if simInteractive {
			return runInteractive(engine)
		}
		return nil
	},
}

// runInteractive starts the query console. Without a terminal it falls back
// to a plain stdin loop so piped input still works.
func runInteractive(engine *query.Engine) error {
	if isTerminal(os.Stdout) {
		return tui.Run(engine)
	}
	fmt.Println(query.HelpText)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("query> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := scanner.Text()
		if query.IsControl(q) {
			if q == "help" {
				fmt.Println(query.HelpText)
				continue
			}
			return nil
		}
		answer, err := engine.Answer(q)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(answer)
	}
}

func init() {
	simulateCmd.Flags().StringVar(&simTopologyPath, "topology", "config/services.json", "Path to service topology file (JSON or YAML)")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export the event log (JSONL)")
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print events to STDOUT instead of writing to DB")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Tick interval for live viewing (e.g. 500ms); 0 runs flat out")
	simulateCmd.Flags().StringVar(&simQuery, "query", "", "Answer a single query after the run and exit")
	simulateCmd.Flags().BoolVar(&simInteractive, "interactive", false, "Open the query console after the run")
}
