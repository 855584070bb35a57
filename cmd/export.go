package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write contacts to CSV or XLSX for a sequencing tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		contacts, err := st.ListContactsForExport(ctx, !exportAll)
		if err != nil {
			return err
		}

		switch strings.ToLower(exportFormat) {
		case "csv":
			out := os.Stdout
			if exportOut != "" {
				f, err := os.Create(exportOut)
				if err != nil {
					return eris.Wrapf(err, "create %s", exportOut)
				}
				defer f.Close()
				out = f
			}
			if err := export.WriteCSV(out, contacts); err != nil {
				return err
			}
		case "xlsx":
			if exportOut == "" {
				return eris.New("--out is required for xlsx output")
			}
			if err := export.WriteXLSX(exportOut, contacts); err != nil {
				return err
			}
		default:
			return eris.Errorf("unsupported format: %s", exportFormat)
		}

		if exportOut != "" {
			fmt.Printf("wrote %d contacts to %s\n", len(contacts), exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (csv defaults to stdout)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "include contacts without a validated email")
	rootCmd.AddCommand(exportCmd)
}
