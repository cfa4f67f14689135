package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lattice-ai/lattice"
	"github.com/lattice-ai/lattice/internal/config"
	"github.com/lattice-ai/lattice/internal/logging"
	"github.com/lattice-ai/lattice/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [graph.json]",
	Short: "Execute a workflow graph from a file",
	Long:  `Loads a workflow graph from a JSON file, executes it against the given inputs and prints the output node results.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		basePath, _ := cmd.Flags().GetString("base-path")
		inputs, _ := cmd.Flags().GetStringArray("input")
		verbose, _ := cmd.Flags().GetBool("verbose")

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading graph file: %v\n", err)
			os.Exit(1)
		}
		var graph domain.Graph
		if err := json.Unmarshal(data, &graph); err != nil {
			fmt.Printf("Error parsing graph file: %v\n", err)
			os.Exit(1)
		}

		runtimeInputs, err := parseInputs(inputs)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		logger := logging.NewNop()
		if verbose {
			logger = logging.New(slog.LevelDebug)
		}

		cfg := config.Default()
		if basePath != "" {
			cfg.BasePath = basePath
		}

		engine, err := lattice.New(
			lattice.WithLogger(logger),
			lattice.WithBasePath(cfg.BasePath),
			lattice.WithProviderKeys(cfg.Providers.OpenAIKey, cfg.Providers.GoogleKey, cfg.Providers.SerpKey),
		)
		if err != nil {
			fmt.Printf("Error initializing lattice: %v\n", err)
			os.Exit(1)
		}

		results, err := engine.Execute(context.Background(), &graph, runtimeInputs)
		if err != nil {
			fmt.Printf("Error running workflow: %v\n", err)
			os.Exit(1)
		}

		for id, out := range results {
			fmt.Printf("%s: %s\n", id, out.Text())
		}
	},
}

// parseInputs turns repeated --input key=value flags into the runtime input map.
func parseInputs(pairs []string) (map[string]any, error) {
	inputs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid input %q, expected key=value", pair)
		}
		inputs[key] = value
	}
	return inputs, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayP("input", "i", nil, "Runtime input as key=value (repeatable)")
	runCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}
