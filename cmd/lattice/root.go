package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice is a workflow engine for AI processing graphs",
	Long:  `Lattice executes directed graphs of typed AI nodes (inputs, prompt templates, language models, RAG lookups, outputs) against runtime inputs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("base-path", "", "Directory for filesystem-backed stores (default .lattice)")
}
