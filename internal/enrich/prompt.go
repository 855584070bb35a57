// Package enrich researches organizations with Perplexity: leadership
// names and titles, direct emails, and business fields the lead list
// was missing.
package enrich

import "fmt"

// leadershipPrompt asks for decision-makers and a strict JSON reply.
// The model is told twice to return only JSON; it still wraps the
// payload in a fenced block often enough that parsing handles both.
const leadershipPrompt = `Find the current leadership and key staff for %s (%s).

Focus ONLY on finding:
1. **Executive Director** or **General Manager** (full name)
2. **Owner** or **Founder** (full name)
3. **Program Director** or **Operations Director** (full name)
4. **Direct email addresses** for these people (not generic info@ emails)

Search strategy:
- Look for "about us", "our team", "leadership", "staff" pages
- Check recent news articles or press releases
- Look for LinkedIn profiles or professional directories
- Avoid outdated information

Return ONLY a JSON response in this exact format:
{
    "leadership_contacts": [
        {
            "name": "Full Name",
            "title": "Job Title",
            "email": "direct.email@domain.com" or null if not found
        }
    ],
    "missing_business_data": {
        "address": "full address if missing" or null,
        "phone": "phone number if missing" or null,
        "default_email": "fallback email if no direct contacts found" or null
    }
}

If no leadership found, return empty arrays but still check for missing business data.`

// LeadershipPrompt renders the research prompt for one organization.
func LeadershipPrompt(companyName, websiteURL string) string {
	if websiteURL == "" {
		websiteURL = "website unknown"
	}
	return fmt.Sprintf(leadershipPrompt, companyName, websiteURL)
}
