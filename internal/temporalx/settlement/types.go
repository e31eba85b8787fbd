package settlement

import "time"

const (
	WorkflowName   = "contribution_settlement"
	ActivityExpire = "expire_contribution"
	SignalSettled  = "contribution_settled"

	DefaultWindow = 30 * time.Minute
)

type Input struct {
	ContributionID string        `json:"contribution_id"`
	Window         time.Duration `json:"window"`
}

type Result struct {
	ContributionID string `json:"contribution_id"`
	// Settled is true when the payment provider reported an outcome before the window closed.
	Settled bool   `json:"settled"`
	Expired bool   `json:"expired"`
	Status  string `json:"status,omitempty"`
}

type ExpireResult struct {
	Status  string `json:"status"`
	Expired bool   `json:"expired"`
}

// ExpireEventID is the ledger event id recorded when a pending contribution times out.
func ExpireEventID(contributionID string) string {
	return "expire:" + contributionID
}

func workflowID(contributionID string) string {
	return WorkflowName + ":" + contributionID
}
