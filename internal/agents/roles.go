// Package agents defines the analysis roles and the loop that drives an LLM
// through a role-scoped task with access to the document reader tool.
package agents

import (
	"golang.org/x/time/rate"

	"github.com/jonathan/findoc-analyzer/internal/prompts"
)

// Profile describes one analysis role: its persona prompts and the limits
// that bound its execution.
type Profile struct {
	// Name is the human-readable role title used in prompts and logs.
	Name string
	// goalKey and backstoryKey index into roles.json.
	goalKey      string
	backstoryKey string
	// MaxIterations bounds the tool loop for this role.
	MaxIterations int
	// MaxRPM caps model calls per minute for this role.
	MaxRPM int
	// Model, when set, runs this role against a specific model instead of
	// the executor's default client.
	Model string
}

// The four analysis roles. Verification is deliberately cheap; the analyst
// gets more headroom because its output feeds two downstream roles.
var (
	Verifier = Profile{
		Name:          "Financial Document Verifier",
		goalKey:       "verifier-goal",
		backstoryKey:  "verifier-backstory",
		MaxIterations: 3,
		MaxRPM:        5,
	}
	Analyst = Profile{
		Name:          "Senior Financial Analyst",
		goalKey:       "analyst-goal",
		backstoryKey:  "analyst-backstory",
		MaxIterations: 5,
		MaxRPM:        10,
	}
	Advisor = Profile{
		Name:          "Investment Advisor",
		goalKey:       "advisor-goal",
		backstoryKey:  "advisor-backstory",
		MaxIterations: 3,
		MaxRPM:        5,
	}
	RiskAssessor = Profile{
		Name:          "Risk Assessment Specialist",
		goalKey:       "risk-goal",
		backstoryKey:  "risk-backstory",
		MaxIterations: 3,
		MaxRPM:        5,
	}
)

// Goal returns the role's goal text with the user query substituted.
func (p Profile) Goal(query string) string {
	return prompts.Format(prompts.MustGet("roles.json", p.goalKey), map[string]string{"Query": query})
}

// Backstory returns the role's backstory text.
func (p Profile) Backstory() string {
	return prompts.MustGet("roles.json", p.backstoryKey)
}

// Preamble renders the full persona header placed before the task prompt.
func (p Profile) Preamble(query string) string {
	return prompts.Format(prompts.MustGet("roles.json", "agent-preamble"), map[string]string{
		"Role":      p.Name,
		"Goal":      p.Goal(query),
		"Backstory": p.Backstory(),
	})
}

// Limiter returns a fresh rate limiter honoring the role's RPM cap. Burst 1
// keeps calls evenly spaced.
func (p Profile) Limiter() *rate.Limiter {
	if p.MaxRPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(p.MaxRPM)/60.0), 1)
}
