package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Faultbox/blockview/internal/blockdef"
)

var checkMeshes bool

var defsCmd = &cobra.Command{
	Use:   "defs <romdir>",
	Short: "List block definitions and the meshes they reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runDefs,
}

func init() {
	defsCmd.Flags().BoolVar(&checkMeshes, "check", false, "Report referenced mesh files that are missing")
	rootCmd.AddCommand(defsCmd)
}

func runDefs(cmd *cobra.Command, args []string) error {
	cat, err := blockdef.Open(args[0])
	if cat == nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNAME\tSURFACES\tMESHES")
	var problems error
	for _, d := range cat.Definitions {
		def, err := d.Parsed()
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t%v\n", d.Filename, err)
			problems = multierr.Append(problems, fmt.Errorf("%s: %w", d.Filename, err))
			continue
		}

		var meshes []string
		for _, slot := range blockdef.MeshSlots {
			name := blockdef.MeshName(def, slot)
			if name == "" {
				continue
			}
			meshes = append(meshes, name)
			if checkMeshes {
				if _, err := os.Stat(cat.MeshPath(name)); err != nil {
					problems = multierr.Append(problems, fmt.Errorf("%s: %s: %w", d.Filename, slot, err))
				}
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.Filename, def.DisplayName(), len(def.Surfaces()), strings.Join(meshes, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d definitions\n", cat.Len())
	errs := multierr.Errors(problems)
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d problems found", len(errs))
	}
	return nil
}
