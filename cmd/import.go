package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cleanup"
	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/model"
)

var (
	importFile     string
	importEncoding string
	importSheet    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a lead list from CSV or XLSX into the database",
	Long: `Reads a lead list, maps its headers onto the canonical columns,
normalizes and deduplicates the rows, and writes organizations and
contacts. Rows without a company name are dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L()

		var header []string
		var rows [][]string
		if strings.HasSuffix(strings.ToLower(importFile), ".xlsx") {
			var err error
			header, rows, err = ingest.ReadXLSX(importFile, importSheet)
			if err != nil {
				return err
			}
		} else {
			f, err := os.Open(importFile)
			if err != nil {
				return eris.Wrapf(err, "open %s", importFile)
			}
			defer f.Close()

			h, rowCh, errCh, err := ingest.ReadCSV(ctx, f, ingest.CSVOptions{Encoding: importEncoding})
			if err != nil {
				return err
			}
			header = h
			for row := range rowCh {
				rows = append(rows, row)
			}
			if err := <-errCh; err != nil {
				return err
			}
		}

		mapping, unmapped := cleanup.MapHeaders(header)
		if len(unmapped) > 0 {
			log.Warn("ignoring unrecognized columns", zap.Strings("columns", unmapped))
		}

		var records []cleanup.Record
		dropped := 0
		for _, row := range rows {
			rec := cleanup.FromRow(mapping, row)
			if !rec.Valid() {
				dropped++
				continue
			}
			records = append(records, rec)
		}
		records, duplicates := cleanup.Dedup(records)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		// One organization per distinct company, keyed the way the
		// upsert resolves conflicts: website first, then name.
		seen := map[string]bool{}
		var orgs []model.Organization
		for _, rec := range records {
			key := orgKey(rec.Org)
			if seen[key] {
				continue
			}
			seen[key] = true
			orgs = append(orgs, rec.Org)
		}

		orgCount, err := st.UpsertOrganizations(ctx, orgs)
		if err != nil {
			return err
		}

		var contacts []model.Contact
		for _, rec := range records {
			if rec.Contact.Name == "" {
				continue
			}
			orgID, err := st.FindOrgID(ctx, rec.Org.CompanyName, rec.Org.WebsiteURL)
			if err != nil {
				return eris.Wrapf(err, "resolve organization for %s", rec.Contact.Name)
			}
			c := rec.Contact
			c.OrgID = orgID
			contacts = append(contacts, c)
		}

		var contactCount int64
		if len(contacts) > 0 {
			contactCount, err = st.InsertContacts(ctx, contacts)
			if err != nil {
				return err
			}
		}

		fmt.Printf("rows: %d  organizations: %d  contacts: %d  dropped: %d  duplicates: %d\n",
			len(rows), orgCount, contactCount, dropped, duplicates)
		return nil
	},
}

func orgKey(o model.Organization) string {
	if o.WebsiteURL != "" {
		return strings.ToLower(o.WebsiteURL)
	}
	return strings.ToLower(o.CompanyName)
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the lead list (.csv or .xlsx)")
	importCmd.Flags().StringVar(&importEncoding, "encoding", "", "source charset for CSV files (e.g. windows-1252)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name for XLSX files (default: first sheet)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
