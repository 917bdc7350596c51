package entities

// Credentials are the portal login details
type Credentials struct {
	Username string
	Password string
	DP       string
}

// LoginFill reports which login fields were filled
type LoginFill struct {
	UsernameFilled bool `json:"username_filled"`
	PasswordFilled bool `json:"password_filled"`
}

// LoginState is the verdict of the post-login heuristic
type LoginState struct {
	LoggedIn  bool   `json:"logged_in"`
	Signal    string `json:"signal"`
	ErrorText string `json:"error_text,omitempty"`
	URL       string `json:"url"`
}

// Offering is an open issue listed under My ASBA. RowSelector is the
// selector that matched its row; follow-up lookups are scoped to it.
type Offering struct {
	CompanyName string `json:"company_name"`
	ShareType   string `json:"share_type,omitempty"`
	ShareGroup  string `json:"share_group,omitempty"`
	RowText     string `json:"row_text,omitempty"`
	RowSelector string `json:"row_selector,omitempty"`
}

// ShareTerms are the allotment terms scraped from the offering details
type ShareTerms struct {
	ShareValuePerUnit float64 `json:"share_value_per_unit"`
	MinUnit           float64 `json:"min_unit"`
}

// TermsPolicy selects how scraped terms compare against thresholds
type TermsPolicy string

const (
	// TermsInclusive accepts values equal to the threshold
	TermsInclusive TermsPolicy = "inclusive"
	// TermsExclusive requires values strictly below the threshold
	TermsExclusive TermsPolicy = "exclusive"
)

// TermsThresholds bound the acceptable allotment terms
type TermsThresholds struct {
	MaxShareValue float64
	MaxMinUnit    float64
	Policy        TermsPolicy
}

// TermsVerdict is the outcome of comparing ShareTerms to TermsThresholds
type TermsVerdict struct {
	Terms  ShareTerms `json:"terms"`
	Valid  bool       `json:"valid"`
	Reason string     `json:"reason,omitempty"`
}

// ApplicationDetails are the values entered on the apply form.
// PIN is optional; when set it is entered on the confirmation view.
type ApplicationDetails struct {
	Bank          string
	AccountNumber string
	Kitta         string
	CRN           string
	PIN           string
}

// Complete reports whether the form can be filled
func (d ApplicationDetails) Complete() bool {
	return d.Bank != "" && d.AccountNumber != "" && d.Kitta != "" && d.CRN != ""
}

// StatusKind is the final state of a submitted application
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusFailed  StatusKind = "failed"
	StatusUnknown StatusKind = "unknown"
)

// ApplicationStatus is what the post-submit check observed
type ApplicationStatus struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}
