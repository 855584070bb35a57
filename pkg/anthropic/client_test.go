package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageResponse_Text(t *testing.T) {
	t.Parallel()

	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "EMAIL 1\n"},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "Subject: Hi"},
		},
	}
	assert.Equal(t, "EMAIL 1\nSubject: Hi", resp.Text())

	empty := &MessageResponse{}
	assert.Equal(t, "", empty.Text())
}

func TestToSDKMessages_Roles(t *testing.T) {
	t.Parallel()

	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})
	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}
