package enrich

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

type resultPayload struct {
	Leadership []model.LeadershipContact `json:"leadership_contacts"`
	Business   model.BusinessData        `json:"missing_business_data"`
}

// ParseResult decodes a leadership research reply. Strict JSON first;
// if the model wrapped the payload in prose or a fenced block, the
// fallback extracts the outermost object and tries again.
func ParseResult(text string) (*model.EnrichmentResult, error) {
	var payload resultPayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		return toResult(payload), nil
	}

	candidate := extractJSON(text)
	if candidate == "" {
		return nil, eris.New("enrich: no JSON object in response")
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, eris.Wrap(err, "enrich: parse response")
	}
	return toResult(payload), nil
}

func toResult(p resultPayload) *model.EnrichmentResult {
	contacts := p.Leadership[:0]
	for _, c := range p.Leadership {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		contacts = append(contacts, c)
	}
	return &model.EnrichmentResult{
		Leadership: contacts,
		Business:   p.Business,
	}
}

// extractJSON pulls the first balanced top-level object out of text,
// skipping a ```json fence when present.
func extractJSON(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		rest := text[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
