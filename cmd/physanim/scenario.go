package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/physanim/internal/automation"
	"github.com/san-kum/physanim/internal/storage"
)

func scenarioCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of scenes from yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			r := &automation.Runner{Registry: registry, Logger: logger}
			if !dryRun {
				r.Store = storage.New(dataDir)
			}
			results, err := r.Run(cmd.Context(), sc)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tKIND\tPRESET\tFRAMES\tSTABLE\tRUN")
			for i, res := range results {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%v\t%s\n",
					i+1, res.Step.Kind, res.Step.Preset, res.Result.Frames, res.Stable(), res.RunID)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			stable, unstable := automation.Summary(results)
			fmt.Printf("\n%d stable, %d unstable\n", stable, unstable)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run without saving any step")
	return cmd
}
