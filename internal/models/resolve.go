package models

// Outcome classifies the result of resolving a link against a tenant's rules.
type Outcome string

// Resolution outcomes.
const (
	OutcomeNone             Outcome = "none"
	OutcomeRewritten        Outcome = "rewritten"
	OutcomeAlreadyRewritten Outcome = "already_rewritten"
)

// Resolution is the result of resolving one link. Rule is set for every outcome except none.
type Resolution struct {
	Outcome Outcome      `json:"outcome"`
	URL     string       `json:"url"`
	Rule    *RewriteRule `json:"rule,omitempty"`
}
