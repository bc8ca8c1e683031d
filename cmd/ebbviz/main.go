package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ebbviz",
		Short: "Inspect ebb dataflow graphs",
		Long: `ebbviz serves and converts ebb dataflow graph snapshots.

A running application exposes its graph through frpdebug.Server;
ebbviz works with the same data offline:

  • serve a recorded snapshot, or a live demo graph
  • convert snapshot JSON to Graphviz DOT`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		dotCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
