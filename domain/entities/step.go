package entities

// FailureKind classifies why a workflow step did not succeed
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureElementNotFound FailureKind = "element_not_found"
	FailureActionFailed    FailureKind = "action_failed"
	FailurePageUnavailable FailureKind = "page_unavailable"
	FailureValidation      FailureKind = "validation_failed"
	FailureNoOffering      FailureKind = "no_offering"
	FailureLoginRejected   FailureKind = "login_rejected"
)

// StepOutcome is the result of one workflow step: Success with optional
// Data, or a failure with Kind and Reason.
type StepOutcome struct {
	Step    string      `json:"step"`
	Success bool        `json:"success"`
	Kind    FailureKind `json:"kind,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// Succeeded builds a successful outcome
func Succeeded(step string, data any) StepOutcome {
	return StepOutcome{Step: step, Success: true, Data: data}
}

// Failed builds a failed outcome
func Failed(step string, kind FailureKind, reason string) StepOutcome {
	return StepOutcome{Step: step, Kind: kind, Reason: reason}
}

// WithData attaches data to an outcome, typically scraped values on failure
func (o StepOutcome) WithData(data any) StepOutcome {
	o.Data = data
	return o
}
