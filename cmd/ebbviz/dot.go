package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebb-frp/ebb/pkg/frpdebug"
)

func dotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dot <snapshot.json>",
		Short: "Convert a snapshot to Graphviz DOT",
		Long: `Convert a graph snapshot JSON file to Graphviz DOT on stdout.

Examples:
  ebbviz dot graph.json
  ebbviz dot graph.json | dot -Tsvg -o graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			fmt.Print(frpdebug.DOT(snap))
			return nil
		},
	}
	return cmd
}
