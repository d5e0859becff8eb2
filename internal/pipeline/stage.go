// Package pipeline selects and runs the analysis stages for one document
// query. Stages form a small fixed dependency graph: verification always
// runs first, analysis builds on it, and advice and risk assessment both
// build on analysis.
package pipeline

import (
	"fmt"

	"github.com/jonathan/findoc-analyzer/internal/agents"
)

// Stage names.
const (
	StageVerify     = "verify"
	StageAnalyze    = "analyze"
	StageAdvise     = "advise"
	StageAssessRisk = "assess-risk"
)

// Stage binds a name to its role profile and declared prerequisites.
type Stage struct {
	Name    string
	Profile agents.Profile
	// Deps lists prerequisite stage names whose outputs feed this stage's
	// prompt. Only outputs of deps that actually ran are included.
	Deps []string
}

// stageOrder is the canonical execution order. Selection preserves this
// order regardless of which keywords matched first.
var stageOrder = []string{StageVerify, StageAnalyze, StageAdvise, StageAssessRisk}

var stages = map[string]Stage{
	StageVerify: {
		Name:    StageVerify,
		Profile: agents.Verifier,
	},
	StageAnalyze: {
		Name:    StageAnalyze,
		Profile: agents.Analyst,
		Deps:    []string{StageVerify},
	},
	StageAdvise: {
		Name:    StageAdvise,
		Profile: agents.Advisor,
		Deps:    []string{StageAnalyze},
	},
	StageAssessRisk: {
		Name:    StageAssessRisk,
		Profile: agents.RiskAssessor,
		Deps:    []string{StageAnalyze},
	},
}

// StageByName returns the named stage definition.
func StageByName(name string) (Stage, error) {
	s, ok := stages[name]
	if !ok {
		return Stage{}, fmt.Errorf("unknown stage %q", name)
	}
	return s, nil
}

// StageNames returns all stage names in canonical execution order.
func StageNames() []string {
	out := make([]string, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// StageResult is one stage's produced text.
type StageResult struct {
	Stage  string
	Output string
}
