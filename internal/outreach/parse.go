package outreach

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ParseSequence extracts the three emails from a generated reply. The
// parser is line-oriented: an EMAIL heading starts a new email, a
// section label (Subject/Icebreaker/Body/CTA) starts a section, and
// unlabeled lines continue the current section, since models wrap long
// bodies across lines.
func ParseSequence(text string) ([]model.OutreachEmail, error) {
	var emails []model.OutreachEmail
	var current *model.OutreachEmail
	var section *string

	flush := func() {
		if current != nil {
			emails = append(emails, *current)
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "EMAIL"):
			flush()
			current = &model.OutreachEmail{}
			section = nil
		case current == nil:
			// Preamble before the first EMAIL heading.
		case strings.HasPrefix(line, "Subject:"):
			current.Subject = strings.TrimSpace(strings.TrimPrefix(line, "Subject:"))
			section = &current.Subject
		case strings.HasPrefix(line, "Icebreaker:"):
			current.Icebreaker = strings.TrimSpace(strings.TrimPrefix(line, "Icebreaker:"))
			section = &current.Icebreaker
		case strings.HasPrefix(line, "Body:"):
			current.Body = strings.TrimSpace(strings.TrimPrefix(line, "Body:"))
			section = &current.Body
		case strings.HasPrefix(line, "CTA:"):
			current.CTAText = strings.TrimSpace(strings.TrimPrefix(line, "CTA:"))
			section = &current.CTAText
		case line == "" || section == nil:
			// Blank separator or stray prose.
		default:
			if *section != "" {
				*section += " "
			}
			*section += line
		}
	}
	flush()

	if len(emails) != 3 {
		return nil, eris.Errorf("outreach: expected 3 emails in response, got %d", len(emails))
	}
	for i, e := range emails {
		if e.Subject == "" || e.Body == "" {
			return nil, eris.Errorf("outreach: email %d missing subject or body", i+1)
		}
	}
	return emails, nil
}
