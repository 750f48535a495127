package models

import (
	"fmt"
	"strings"
)

const (
	UnknownCompanyName   = "Unknown Company"
	UnknownEmployeeCount = "Unknown Employee Count"
	UnknownIndustry      = "Unknown Industry"
)

// CompanyProfile is the requester's company as stored by onboarding.
type CompanyProfile struct {
	Name          string   `json:"companyName" db:"company_name"`
	EmployeeCount string   `json:"employeeCount" db:"employee_count"`
	Locations     []string `json:"locations" db:"locations"`
	Industry      string   `json:"industry" db:"industry"`
	RequesterRole string   `json:"requesterRole,omitempty" db:"requester_role"`
}

// DefaultCompanyProfile is used when a user has not completed onboarding.
func DefaultCompanyProfile() CompanyProfile {
	return CompanyProfile{
		Name:          UnknownCompanyName,
		EmployeeCount: UnknownEmployeeCount,
		Locations:     []string{},
		Industry:      UnknownIndustry,
		RequesterRole: "head of benefits and wellbeing",
	}
}

// WithDefaults fills blank fields from DefaultCompanyProfile.
func (c CompanyProfile) WithDefaults() CompanyProfile {
	d := DefaultCompanyProfile()
	if strings.TrimSpace(c.Name) == "" {
		c.Name = d.Name
	}
	if strings.TrimSpace(c.EmployeeCount) == "" {
		c.EmployeeCount = d.EmployeeCount
	}
	if c.Locations == nil {
		c.Locations = d.Locations
	}
	if strings.TrimSpace(c.Industry) == "" {
		c.Industry = d.Industry
	}
	if strings.TrimSpace(c.RequesterRole) == "" {
		c.RequesterRole = d.RequesterRole
	}
	return c
}

// LocationList renders locations for prompts.
func (c CompanyProfile) LocationList() string {
	if len(c.Locations) == 0 {
		return "unspecified locations"
	}
	return strings.Join(c.Locations, ", ")
}

// Describe is the one-sentence company context shared by every prompt.
func (c CompanyProfile) Describe() string {
	return fmt.Sprintf("I am a %s at my company %q which has %s employees, operates in %s, and operates in %s industry.",
		c.RequesterRole, c.Name, c.EmployeeCount, c.LocationList(), c.Industry)
}

// DocumentRef is a catalog entry: the document name and its descriptive tag.
type DocumentRef struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Tag  string `json:"tag" db:"tag"`
}

// DocumentSummary is the pre-computed summary of an uploaded document.
type DocumentSummary struct {
	Name    string `json:"name" db:"name"`
	Summary string `json:"summary" db:"summary"`
}
