package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var asKey bool
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as a save file or save key",
		Long: `Export the full state.

By default a pretty-printed save file named SelfTrack-YYYYMMDD-HHMM.json is written
to the export directory (EXPORT_DIR, or --out). With --key the save key is printed
to stdout instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.Log.Sync()

			return runExport(cmd, app, asKey, outDir)
		},
	}

	cmd.Flags().BoolVar(&asKey, "key", false, "print a save key instead of writing a file")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from EXPORT_DIR)")
	return cmd
}

func runExport(cmd *cobra.Command, app *App, asKey bool, outDir string) error {
	out := cmd.OutOrStdout()
	if asKey {
		key, err := app.Transfer.ExportToKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, key)
		return nil
	}

	if outDir == "" {
		outDir = app.Config.ExportDir
	}
	path, err := app.Transfer.ExportToDir(outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported to %s\n", path)
	return nil
}
