// internal/workers/infrastructure/save-onboarding/models.go
package saveonboarding

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Input struct {
	UserID        string    `json:"userId"`
	CompanyName   string    `json:"companyName"`
	EmployeeCount headcount `json:"employeeCount"`
	Locations     []string  `json:"locations"`
}

type Output struct {
	Success bool `json:"success"`
}

type StatusOutput struct {
	OnboardingComplete bool `json:"onboardingComplete"`
}

// headcount accepts the employee count as a JSON string or number.
type headcount string

func (c *headcount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = headcount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = headcount(n.String())
	return nil
}
