package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/blockview/pkg/formats"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.mesh>...",
	Short: "Display header, counts and bounds of mesh files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, path := range args {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			m, err := formats.ParseMeshFile(path)
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), path, m)
		}
		return nil
	},
}

var submeshesCmd = &cobra.Command{
	Use:   "submeshes <file.mesh>",
	Short: "List the submeshes of a mesh file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := formats.ParseMeshFile(args[0])
		if err != nil {
			return err
		}
		return printSubmeshes(cmd.OutOrStdout(), m)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, submeshesCmd)
}

func printInfo(w io.Writer, path string, m *formats.MeshFile) {
	glass := 0
	for i := range m.Submeshes {
		if m.Submeshes[i].IsGlass() {
			glass++
		}
	}

	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "  Kind:      %s\n", m.Kind)
	fmt.Fprintf(w, "  Header:    %v\n", m.Header)
	fmt.Fprintf(w, "  Vertices:  %d\n", len(m.Vertices))
	fmt.Fprintf(w, "  Triangles: %d\n", m.TriangleCount())
	fmt.Fprintf(w, "  Submeshes: %d (%d glass)\n", len(m.Submeshes), glass)
	if lo, hi, ok := m.Bounds(); ok {
		fmt.Fprintf(w, "  Bounds:    (%.4f, %.4f, %.4f) .. (%.4f, %.4f, %.4f)\n",
			lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
}

func printSubmeshes(w io.Writer, m *formats.MeshFile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTART\tLENGTH\tMATERIAL\tMIN\tMAX\tNAME")
	for i := range m.Submeshes {
		s := &m.Submeshes[i]
		material := fmt.Sprint(s.Material)
		if s.IsGlass() {
			material += " (glass)"
		}
		name := s.DisplayName()
		if s.NameErr != nil {
			name += " (not UTF-8)"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%v\t%v\t%s\n",
			i, s.Start, s.Length, material, s.BoundsMin, s.BoundsMax, name)
	}
	return tw.Flush()
}
