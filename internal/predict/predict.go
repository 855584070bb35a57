// Package predict generates candidate email addresses from a contact name
// and a website domain using a fixed set of name/domain patterns.
package predict

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxCandidates caps the number of candidates returned per contact.
const MaxCandidates = 10

// nameClean strips everything except word characters, whitespace, and hyphens.
var nameClean = regexp.MustCompile(`[^\w\s-]`)

// Candidates returns an ordered, deduplicated list of candidate addresses
// for the given full name and website URL, capped at MaxCandidates.
//
// The pattern set is fixed: first, last, firstlast, flast, firstl, lastf,
// first.last, first_last, first-last, and firstMlast when a middle name is
// present. A missing name or an unusable domain yields an empty list. A
// single-token name yields only first@domain.
func Candidates(fullName, websiteURL string) []string {
	domain := Domain(websiteURL)
	if domain == "" {
		return nil
	}

	name := strings.TrimSpace(nameClean.ReplaceAllString(fullName, ""))
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return nil
	}

	first := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return []string{first + "@" + domain}
	}

	last := strings.ToLower(parts[len(parts)-1])
	var middleInitial string
	if len(parts) >= 3 && parts[1] != "" {
		middleInitial = strings.ToLower(parts[1][:1])
	}

	patterns := []string{
		first,
		last,
		first + last,
		first[:1] + last,
		first + last[:1],
		last + first[:1],
		first + "." + last,
		first + "_" + last,
		first + "-" + last,
	}
	if middleInitial != "" {
		patterns = append(patterns, first+middleInitial+last)
	}

	seen := make(map[string]struct{}, len(patterns))
	candidates := make([]string, 0, len(patterns))
	for _, p := range patterns {
		addr := p + "@" + domain
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		candidates = append(candidates, addr)
	}

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}

// Domain extracts the bare lowercase domain from a website URL, stripping
// any scheme, www prefix, path, and port. Returns "" if no host is found.
func Domain(websiteURL string) string {
	s := strings.TrimSpace(websiteURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	return host
}
