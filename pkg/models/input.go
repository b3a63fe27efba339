package models

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	MinBudget     = 100
	MaxBudget     = 50000
	DefaultBudget = 1000
)

// FieldError describes one invalid field on a creation request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error found on a WorkflowInput.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid workflow input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// WorkflowInput is a validated workflow creation request. Immutable once
// accepted by the orchestrator.
type WorkflowInput struct {
	WebsiteURL string     `json:"websiteUrl"`
	UserID     string     `json:"userId"`
	Platforms  []Platform `json:"platforms"`
	Budget     float64    `json:"budget"`
	DryRun     bool       `json:"dryRun"`
}

// Validate applies defaults and checks every field, collecting all
// violations into a single *ValidationError.
func (in *WorkflowInput) Validate() error {
	verr := &ValidationError{}

	u, err := url.Parse(in.WebsiteURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		verr.add("websiteUrl", "please provide a valid website URL")
	}

	if in.UserID == "" {
		in.UserID = "anonymous"
	}

	if len(in.Platforms) == 0 {
		in.Platforms = []Platform{GooglePlatform}
	}
	for _, p := range in.Platforms {
		if !p.Valid() {
			verr.add("platforms", fmt.Sprintf("unknown platform %q", p))
		}
	}

	if in.Budget == 0 {
		in.Budget = DefaultBudget
	}
	if in.Budget < MinBudget {
		verr.add("budget", fmt.Sprintf("minimum budget is $%d", MinBudget))
	}
	if in.Budget > MaxBudget {
		verr.add("budget", fmt.Sprintf("maximum budget is $%d", MaxBudget))
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
