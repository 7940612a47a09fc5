package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/selftrack/internal/store"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|key>",
		Short: "Replace all data from a save file or save key",
		Long: `Import a save file or save key, replacing every habit, day, preference and meta
field. Nothing is written unless the input passes validation. Check-ins that point at
habits missing from the save are dropped and listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.Log.Sync()

			return runImport(cmd, app, args[0])
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, app *App, arg string) error {
	source, err := readImportArg(arg)
	if err != nil {
		return err
	}

	result, err := app.Transfer.ImportReplaceAll(source)
	if err != nil && !store.IsStorageWriteError(err) {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Fprintf(out, "Imported %d habits and %d days\n", len(result.State.Habits), len(result.State.Days))
	for _, v := range result.Repaired {
		fmt.Fprintf(out, "  dropped check-in: %s\n", v.Error())
	}
	return err
}

// readImportArg 参数是已存在的文件时读取文件内容，否则视为 save key。
func readImportArg(arg string) ([]byte, error) {
	info, err := os.Stat(arg)
	switch {
	case err == nil && !info.IsDir():
		raw, readErr := os.ReadFile(arg)
		if readErr != nil {
			return nil, fmt.Errorf("read save file: %w", readErr)
		}
		return raw, nil
	case err == nil:
		return nil, fmt.Errorf("%s is a directory", arg)
	default:
		return []byte(arg), nil
	}
}
