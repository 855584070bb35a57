package outreach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodReply = `EMAIL 1:
Subject: Your summer roster is filling faster than your inbox
Icebreaker: Running a camp in Boise means June is decided in February.
Body: Directors we work with cut enrollment admin time in half.
CTA: Reply with "roster" and we'll send the two-page breakdown.

EMAIL 2:
Subject: 40% of camps lose families at the waitlist step
Icebreaker: Waitlists are where summer revenue quietly leaks.
Body: Our scheduling tool backfills cancellations automatically,
which recovered eleven enrollments for a comparable program last season.
CTA: See the backfill flow in action on our site.

EMAIL 3:
Subject: One free session, on us
Icebreaker: The best way to judge a tool is a real week of use.
Body: We'll set up your current roster and run one session end to end.
CTA: Request your free setup before spring scheduling starts.
`

func TestParseSequence(t *testing.T) {
	emails, err := ParseSequence(goodReply)
	require.NoError(t, err)
	require.Len(t, emails, 3)

	assert.Equal(t, "Your summer roster is filling faster than your inbox", emails[0].Subject)
	assert.Contains(t, emails[0].Icebreaker, "June is decided in February")
	assert.Contains(t, emails[0].CTAText, `Reply with "roster"`)

	// Wrapped body lines are joined into the Body section.
	assert.Contains(t, emails[1].Body, "backfills cancellations automatically, which recovered")
}

func TestParseSequence_IgnoresPreamble(t *testing.T) {
	reply := "Here are your three emails:\n\n" + goodReply
	emails, err := ParseSequence(reply)
	require.NoError(t, err)
	assert.Len(t, emails, 3)
}

func TestParseSequence_WrongCount(t *testing.T) {
	reply := `EMAIL 1:
Subject: Only one
Body: Not enough.
`
	_, err := ParseSequence(reply)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 emails")
}

func TestParseSequence_MissingSubject(t *testing.T) {
	reply := `EMAIL 1:
Body: body one
EMAIL 2:
Subject: two
Body: body two
EMAIL 3:
Subject: three
Body: body three
`
	_, err := ParseSequence(reply)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email 1 missing")
}
