package entities

// NotificationKind is one of the fixed message kinds a notifier delivers
type NotificationKind string

const (
	NotifyIPOAvailable      NotificationKind = "ipo_available"
	NotifyIPONotFound       NotificationKind = "ipo_not_found"
	NotifyApplicationStatus NotificationKind = "application_status"
	NotifyError             NotificationKind = "error"
	NotifyOpenForReview     NotificationKind = "open_for_review"
)

// ReviewDetails accompany an offering that needs a manual decision
type ReviewDetails struct {
	CompanyName       string
	ShareValuePerUnit float64
	MinUnit           float64
	Reason            string
}

// Notification carries the kind and the data attached to it.
// Formatting is left to the notifier.
type Notification struct {
	Kind     NotificationKind
	Offering *Offering
	Status   *ApplicationStatus
	Review   *ReviewDetails
	Message  string
}
