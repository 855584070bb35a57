// Package cleanup normalizes raw lead-list CSVs before loading: header
// synonym mapping, URL/phone/email normalization, and duplicate
// detection. Client lists arrive with wildly inconsistent headers and
// half-empty cells, so everything here is forgiving by default.
package cleanup

import (
	"net/url"
	"regexp"
	"strings"
)

// headerSynonyms maps each canonical column to the header spellings
// seen across client lists. Matching is case-insensitive on the
// trimmed header.
var headerSynonyms = map[string][]string{
	"company_name":  {"company_name", "company name", "business name", "camp name", "organization"},
	"website_url":   {"website_url", "website", "url", "website url", "domain", "web"},
	"company_phone": {"company_phone", "phone", "business phone", "company phone", "main phone"},
	"full_address":  {"full_address", "full address", "address", "street address", "location"},
	"city":          {"city"},
	"state":         {"state", "state/province", "province", "region"},
	"zip_code":      {"zip_code", "zip", "postal code", "postal", "zipcode"},
	"country":       {"country", "country/region", "nation"},
	"categories":    {"categories", "category", "type", "specialties", "focus"},
	"description":   {"description", "desc", "about"},
	"contact_name":  {"contact_name", "contact name", "full name", "name"},
	"contact_email": {"contact_email", "email", "contact email", "primary email", "email address"},
	"role_title":    {"role_title", "contact_title", "title", "job title", "role", "position"},
}

// placeholder values exported from spreadsheets that mean "empty".
var placeholders = map[string]bool{
	"nan": true, "none": true, "null": true, "n/a": true, "-": true,
}

var phoneJunk = regexp.MustCompile(`[^\d+()\-\s]`)

// MapHeaders maps CSV header positions to canonical column names.
// Unmatched headers are returned separately so the importer can log them.
func MapHeaders(header []string) (map[int]string, []string) {
	mapped := make(map[int]string, len(header))
	var unmapped []string
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		found := false
		for canonical, synonyms := range headerSynonyms {
			for _, syn := range synonyms {
				if key == syn {
					mapped[i] = canonical
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			unmapped = append(unmapped, col)
		}
	}
	return mapped, unmapped
}

// Text trims a cell and drops spreadsheet placeholder values.
func Text(raw string) string {
	s := strings.TrimSpace(raw)
	if placeholders[strings.ToLower(s)] {
		return ""
	}
	return s
}

// URL normalizes a website cell: trims, prepends https:// when the
// scheme is missing, and returns "" for anything that does not parse
// to a host.
func URL(raw string) string {
	s := Text(raw)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	return s
}

// Phone strips everything that is not a digit, separator, or plus sign.
func Phone(raw string) string {
	s := Text(raw)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(phoneJunk.ReplaceAllString(s, ""))
}

// Email lowercases and sanity-checks an address cell. Anything without
// an @ and a dotted domain becomes "", not an error: a bad email in a
// lead list just means the discovery workflow will predict one.
func Email(raw string) string {
	s := strings.ToLower(Text(raw))
	if s == "" {
		return ""
	}
	at := strings.Index(s, "@")
	if at <= 0 || !strings.Contains(s[at+1:], ".") {
		return ""
	}
	return s
}
