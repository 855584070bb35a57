// Package export writes contact lists for handoff to sequencing tools.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Header is the column order for both output formats.
var Header = []string{
	"contact_id", "company_name", "website_url", "contact_name",
	"role_title", "contact_email", "validation_status",
	"validation_score", "validated_at",
}

func row(c model.Contact) []string {
	validatedAt := ""
	if c.ValidatedAt != nil {
		validatedAt = c.ValidatedAt.Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.CompanyName,
		c.WebsiteURL,
		c.Name,
		c.RoleTitle,
		c.Email,
		string(c.Status),
		strconv.Itoa(c.Score),
		validatedAt,
	}
}

// WriteCSV writes the contact list as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, contacts []model.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, c := range contacts {
		if err := cw.Write(row(c)); err != nil {
			return eris.Wrapf(err, "export: write contact %d", c.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WriteXLSX writes the contact list as a single-sheet workbook.
func WriteXLSX(path string, contacts []model.Contact) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Contacts")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, col := range Header {
		hr.AddCell().SetString(col)
	}
	for _, c := range contacts {
		r := sheet.AddRow()
		for _, v := range row(c) {
			r.AddCell().SetString(v)
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}
