package pipeline

import "strings"

// DefaultQuery is substituted when a job is submitted without a query. It is
// used for prompt assembly only; stage selection always runs against the raw
// query, so a blank query selects just the verification stage.
const DefaultQuery = "Analyze this financial document for investment insights"

// stageKeywords maps each optional stage to the query keywords that pull it
// in. Matching is a case-insensitive substring test against the trimmed
// query.
var stageKeywords = map[string][]string{
	StageAnalyze:    {"analyze", "summary", "overview", "figures", "performance"},
	StageAdvise:     {"invest", "buy", "sell", "recommendation", "portfolio"},
	StageAssessRisk: {"risk", "threat", "downside", "concern", "exposure"},
}

// Select resolves which stages run for a query. Verification always runs.
// Each optional stage is included independently when any of its keywords
// appears in the query; a matched stage does not pull in its prerequisites,
// so a risk-only query runs without the analysis stage and the risk prompt
// simply carries no analysis context. The result is in canonical execution
// order.
func Select(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))

	selected := map[string]bool{StageVerify: true}
	for name, keywords := range stageKeywords {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				selected[name] = true
				break
			}
		}
	}

	var out []string
	for _, name := range stageOrder {
		if selected[name] {
			out = append(out, name)
		}
	}
	return out
}
