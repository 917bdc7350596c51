package entities

// RunReport summarises one automation run
type RunReport struct {
	RunID    string             `json:"run_id"`
	Executed []string           `json:"executed"`
	Final    StepOutcome        `json:"final"`
	Offering *Offering          `json:"offering,omitempty"`
	Verdict  *TermsVerdict      `json:"verdict,omitempty"`
	Status   *ApplicationStatus `json:"status,omitempty"`
	Notified []NotificationKind `json:"notified,omitempty"`
}
