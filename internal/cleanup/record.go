package cleanup

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Record is one cleaned lead-list row split into its organization and
// contact halves.
type Record struct {
	Org     model.Organization
	Contact model.Contact
}

// FromRow builds a Record from a raw CSV row using the header mapping
// produced by MapHeaders. Cells beyond the mapped width are ignored.
func FromRow(mapping map[int]string, row []string) Record {
	var r Record
	for i, cell := range row {
		col, ok := mapping[i]
		if !ok {
			continue
		}
		switch col {
		case "company_name":
			r.Org.CompanyName = Text(cell)
		case "website_url":
			r.Org.WebsiteURL = URL(cell)
		case "company_phone":
			r.Org.Phone = Phone(cell)
		case "full_address":
			r.Org.Address = Text(cell)
		case "city":
			r.Org.City = Text(cell)
		case "state":
			r.Org.State = Text(cell)
		case "zip_code":
			r.Org.ZipCode = Text(cell)
		case "country":
			r.Org.Country = Text(cell)
		case "categories":
			r.Org.Categories = Text(cell)
		case "description":
			r.Org.Description = Text(cell)
		case "contact_name":
			r.Contact.Name = Text(cell)
		case "contact_email":
			r.Contact.Email = Email(cell)
		case "role_title":
			r.Contact.RoleTitle = Text(cell)
		}
	}
	return r
}

// Valid reports whether the record carries enough to load: a company
// name at minimum.
func (r Record) Valid() bool {
	return r.Org.CompanyName != ""
}

// key is the duplicate-detection key: company, website, contact name
// and email joined in order.
func (r Record) key() string {
	return strings.Join([]string{
		strings.ToLower(r.Org.CompanyName),
		strings.ToLower(r.Org.WebsiteURL),
		strings.ToLower(r.Contact.Name),
		r.Contact.Email,
	}, "|")
}

// Dedup removes duplicate records, keeping the first occurrence, and
// returns the survivors plus the number removed.
func Dedup(records []Record) ([]Record, int) {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	removed := 0
	for _, r := range records {
		k := r.key()
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out, removed
}
