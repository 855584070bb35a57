package outreach

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// buildPrompt renders the sequence-generation prompt for one contact.
// The response format block is load-bearing: ParseSequence depends on
// the EMAIL N / Subject / Icebreaker / Body / CTA line structure.
func buildPrompt(p *ClientProfile, c model.Contact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert cold email copywriter for %s, %s.\n\n", p.Name, p.Product)

	fmt.Fprintf(&b, "TARGET COMPANY:\nCompany: %s\nWebsite: %s\n\n", c.CompanyName, c.WebsiteURL)
	fmt.Fprintf(&b, "CONTACT:\nName: %s\nJob Title: %s\n\n", c.Name, c.RoleTitle)

	if len(p.ValueProps) > 0 {
		b.WriteString("VALUE PROPOSITIONS TO DRAW FROM:\n")
		for _, v := range p.ValueProps {
			fmt.Fprintf(&b, "- %s\n", v)
		}
		b.WriteString("\n")
	}

	firstName := c.FirstName()
	fmt.Fprintf(&b, `Create THREE completely different, personalized cold emails for %s at %s.

CRITICAL REQUIREMENTS:
- Mention %s specifically in each email
- Reference %s's role as %s
- Reference their industry (%s) and its specific challenges
- NO greetings (don't start with "Hi [Name]" or "Hello")
- Total word count for icebreaker + body + CTA: MAX 150 words
- Subject lines must be original and non-spammy
- Icebreakers cannot contain the person's name but should reference their role or company

EMAIL STRUCTURE:
- Email 1: Subject + Icebreaker + Body + CTA (reply to this email)
- Email 2: Subject + Icebreaker + Body + CTA (visit our website)
- Email 3: Subject + Icebreaker + Body + CTA (request a sample)

CTAs must be SEPARATE from the body content, 1-2 sentences each.
`, firstName, c.CompanyName, c.CompanyName, firstName, c.RoleTitle, p.Industry)

	if p.Tone != "" {
		fmt.Fprintf(&b, "\nTONE:\n%s\n", p.Tone)
	}

	b.WriteString(`
FORMAT YOUR RESPONSE EXACTLY LIKE THIS:
EMAIL 1:
Subject: [subject line]
Icebreaker: [icebreaker content]
Body: [body content]
CTA: [CTA content]

EMAIL 2:
Subject: [subject line]
Icebreaker: [icebreaker content]
Body: [body content]
CTA: [CTA content]

EMAIL 3:
Subject: [subject line]
Icebreaker: [icebreaker content]
Body: [body content]
CTA: [CTA content]
`)

	return b.String()
}
