package categorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fjacquet/statement-categorizer/internal/models"
)

var (
	errEmptyMerchant = errors.New("merchant name is empty")
	errNoAnswer      = errors.New("no answer for merchant")
	errEmptyResponse = errors.New("empty response")
	errNoJSONObject  = errors.New("response contains no JSON object")
)

// lookupPrompt asks for a single JSON object describing merchant, with the
// category restricted to names.
func lookupPrompt(merchant string, names []string) string {
	var b strings.Builder
	b.WriteString("Identify this merchant from a bank statement and categorize it for corporate bookkeeping.\n\n")
	fmt.Fprintf(&b, "Merchant: %s\n\n", merchant)
	b.WriteString("Categories: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nReturn ONLY a JSON object, no markdown:\n")
	b.WriteString(`{"businessType": "short type", "description": "one sentence", "suggestedCategory": "one of the categories", "confidence": 0.0-1.0}`)
	return b.String()
}

type lookupAnswer struct {
	BusinessType      string   `json:"businessType"`
	Description       string   `json:"description"`
	SuggestedCategory string   `json:"suggestedCategory"`
	Category          string   `json:"category"`
	Confidence        *float64 `json:"confidence"`
}

// parseLookupAnswer extracts the merchant description from a model reply.
// Markdown fences and text around the JSON object are tolerated; anything
// else, including a truncated object, is an error.
func parseLookupAnswer(merchant, text string) (*models.MerchantInfo, error) {
	cleaned := cleanMarkdownWrapper(text)
	if cleaned == "" {
		return nil, errEmptyResponse
	}

	obj, ok := firstJSONObject(cleaned)
	if !ok {
		return nil, errNoJSONObject
	}

	var ans lookupAnswer
	if err := json.Unmarshal([]byte(obj), &ans); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	info := &models.MerchantInfo{
		Name:              merchant,
		BusinessType:      strings.TrimSpace(ans.BusinessType),
		Description:       strings.TrimSpace(ans.Description),
		SuggestedCategory: strings.TrimSpace(ans.SuggestedCategory),
	}
	if info.SuggestedCategory == "" {
		info.SuggestedCategory = strings.TrimSpace(ans.Category)
	}
	if ans.Confidence != nil {
		c := *ans.Confidence
		if c < 0 || c > 1 {
			return nil, fmt.Errorf("confidence %v out of range", c)
		}
		info.Confidence = c
	}
	return info, nil
}

// cleanMarkdownWrapper removes a ```json ... ``` fence around a reply.
func cleanMarkdownWrapper(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced {...} in s, skipping braces
// inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
