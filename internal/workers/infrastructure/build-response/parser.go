// internal/workers/infrastructure/build-response/parser.go
package buildresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"benefits-assistant/internal/common/llm"
	"benefits-assistant/internal/models"
)

var (
	ErrFollowUpsNotFound  = errors.New("FOLLOW_UPS_NOT_FOUND")
	ErrFollowUpsMalformed = errors.New("FOLLOW_UPS_MALFORMED")
)

const expectedFollowUps = 2

// The prompt asks for a bare "json" label before the payload; models often
// keep it once the fences are gone.
var danglingLabelRe = regexp.MustCompile(`(?i)(^|\n)[ \t]*json[ \t]*$`)

type followUpPayload struct {
	FollowUps         *[]string `json:"followUps"`
	FollowUpQuestions *[]string `json:"followUpQuestions"`
}

// ParseOutput splits raw model output into the reply body and the trailing
// follow-up questions. The result is always usable: on error the reply is the
// cleaned text, follow-ups are empty, and the error says why.
func ParseOutput(raw string) (models.GenerationResult, error) {
	text := llm.StripCodeFences(raw)
	result := models.GenerationResult{ReplyBody: text, FollowUpQuestions: []string{}}

	start, end, ok := lastBalancedObject(text)
	if !ok {
		return result, ErrFollowUpsNotFound
	}

	var payload followUpPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return result, fmt.Errorf("%w: %v", ErrFollowUpsMalformed, err)
	}

	questions := payload.FollowUps
	if questions == nil {
		questions = payload.FollowUpQuestions
	}
	if questions == nil {
		return result, ErrFollowUpsNotFound
	}

	followUps := make([]string, 0, len(*questions))
	for _, q := range *questions {
		if q = strings.TrimSpace(q); q != "" {
			followUps = append(followUps, q)
		}
	}
	if len(followUps) != expectedFollowUps {
		return result, fmt.Errorf("%w: got %d follow-up questions", ErrFollowUpsMalformed, len(followUps))
	}
	result.ReplyBody = cleanReply(text[:start] + text[end+1:])
	result.FollowUpQuestions = followUps
	return result, nil
}

// lastBalancedObject finds the "{...}" span that ends at the last closing
// brace, walking backwards and tracking depth.
func lastBalancedObject(text string) (int, int, bool) {
	end := strings.LastIndex(text, "}")
	if end == -1 {
		return 0, 0, false
	}

	depth := 0
	for i := end; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return i, end, true
			}
		}
	}
	return 0, 0, false
}

func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(danglingLabelRe.ReplaceAllString(s, ""))
}
