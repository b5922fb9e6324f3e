package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/inspect"
)

func newInspectCmd(a *app) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx|file.docx>",
		Short: "Print the charts or document layout of an artifact as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", inputPath)
			}

			var (
				result interface{}
				err    error
			)
			switch strings.ToLower(filepath.Ext(inputPath)) {
			case ".xlsx", ".xlsm":
				result, err = inspect.OpenWorkbook(inputPath)
			case ".docx":
				result, err = inspect.OpenDocument(inputPath)
			default:
				return fmt.Errorf("unsupported file type: %s", inputPath)
			}
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}

			data, err := toJSON(result, a.pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			return writeOutput(cmd, outputPath, data)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func toJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
