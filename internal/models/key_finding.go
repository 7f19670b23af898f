package models

// Severity tags a key finding. The declaration order is the display order.
type Severity string

const (
	SeverityHighRisk     Severity = "high_risk"
	SeverityModerateRisk Severity = "moderate_risk"
	SeverityConcern      Severity = "concern"
	SeverityNeutral      Severity = "neutral"
	SeverityPositive     Severity = "positive"
)

var severityRanks = map[Severity]int{
	SeverityHighRisk:     0,
	SeverityModerateRisk: 1,
	SeverityConcern:      2,
	SeverityNeutral:      3,
	SeverityPositive:     4,
}

// Rank orders severities from most to least severe. Unknown values sort with neutral.
func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	return severityRanks[SeverityNeutral]
}

// KeyFinding is a single severity-tagged observation with its inference.
type KeyFinding struct {
	Category  string   `json:"category"`
	Finding   string   `json:"finding"`
	Inference string   `json:"inference"`
	Severity  Severity `json:"severity"`
}
