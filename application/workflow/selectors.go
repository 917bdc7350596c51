package workflow

import (
	"fmt"
	"strings"

	"ipo_automation/domain/entities"
)

// MeroShare DOM selectors. The portal changes its markup without notice,
// so every target is an ordered candidate list; fix drift here or through
// a selector override file.

// Catalog holds the candidate lists for every workflow target.
// OfferingCompany, ShareDetailButtons and ApplyButtons are resolved inside
// the matched offering row, never against the whole page.
type Catalog struct {
	PageReady          []entities.SelectorCandidate `yaml:"page_ready"`
	Select2Containers  []entities.SelectorCandidate `yaml:"select2_containers"`
	NativeDPSelects    []entities.SelectorCandidate `yaml:"native_dp_selects"`
	CustomDPDropdowns  []entities.SelectorCandidate `yaml:"custom_dp_dropdowns"`
	UsernameFields     []entities.SelectorCandidate `yaml:"username_fields"`
	PasswordFields     []entities.SelectorCandidate `yaml:"password_fields"`
	LoginButtons       []entities.SelectorCandidate `yaml:"login_buttons"`
	LoginSuccess       []entities.SelectorCandidate `yaml:"login_success"`
	LoginErrors        []entities.SelectorCandidate `yaml:"login_errors"`
	MyASBALinks        []entities.SelectorCandidate `yaml:"my_asba_links"`
	OfferingRows       []entities.SelectorCandidate `yaml:"offering_rows"`
	OfferingCompany    []entities.SelectorCandidate `yaml:"offering_company"`
	ApplyButtons       []entities.SelectorCandidate `yaml:"apply_buttons"`
	ShareDetailButtons []entities.SelectorCandidate `yaml:"share_detail_buttons"`
	ShareDetailsReady  []entities.SelectorCandidate `yaml:"share_details_ready"`
	BankSelects        []entities.SelectorCandidate `yaml:"bank_selects"`
	AccountSelects     []entities.SelectorCandidate `yaml:"account_selects"`
	KittaFields        []entities.SelectorCandidate `yaml:"kitta_fields"`
	CRNFields          []entities.SelectorCandidate `yaml:"crn_fields"`
	DisclaimerBoxes    []entities.SelectorCandidate `yaml:"disclaimer_boxes"`
	ProceedButtons     []entities.SelectorCandidate `yaml:"proceed_buttons"`
	PINFields          []entities.SelectorCandidate `yaml:"pin_fields"`
	ConfirmButtons     []entities.SelectorCandidate `yaml:"confirm_buttons"`
	StatusSuccess      []entities.SelectorCandidate `yaml:"status_success"`
	StatusErrors       []entities.SelectorCandidate `yaml:"status_errors"`
	SensitiveFields    []entities.SelectorCandidate `yaml:"sensitive_fields"`

	// LoginURLMarker is the URL fragment that means "still on login"
	LoginURLMarker string `yaml:"login_url_marker"`
}

// DefaultCatalog returns the selectors known to match the portal
func DefaultCatalog() Catalog {
	return Catalog{
		PageReady: entities.Selectors(
			"form",
			"input#username",
			"select2#selectBranch",
		),
		Select2Containers: entities.Selectors(
			`span.select2-container:has-text("Select your DP")`,
			`span.select2-selection:has-text("Select your DP")`,
			`span.select2-selection__rendered:has-text("Select your DP")`,
			"span.select2-container",
			"select2#selectBranch + span.select2-container",
		),
		NativeDPSelects: entities.Selectors(
			"select#selectBranch",
			`select[name*="dp" i]`,
			`select[id*="dp" i]`,
			`select[class*="dp" i]`,
			"select",
		),
		CustomDPDropdowns: entities.Selectors(
			"ng-select .ng-select-container",
			`[aria-haspopup="listbox"]`,
			`div[class*="ng-select"]`,
			`div[class*="form-control"][class*="select"]`,
			`label:has-text("DP") + *`,
			`label:has-text("Depository") + *`,
		),
		UsernameFields: entities.Selectors(
			"input#username",
			`input[name="username"]`,
			`input[name="email"]`,
			`input[id*="user"]`,
			`input[placeholder*="user" i]`,
			`input[type="text"]`,
		),
		PasswordFields: entities.Selectors(
			"input#password",
			`input[name="password"]`,
			`input[type="password"]`,
			`input[id*="pass"]`,
		),
		LoginButtons: entities.Selectors(
			`button[type="submit"]`,
			`button:has-text("Login")`,
			`button:has-text("Sign in")`,
			`button:has-text("Log in")`,
			`input[type="submit"]`,
			"button.btn-login",
			"button.btn-primary",
		),
		LoginSuccess: entities.Selectors(
			`a:has-text("My ASBA")`,
			`a:has-text("Logout")`,
			"app-dashboard",
			".user-profile",
		),
		LoginErrors: entities.Selectors(
			".toast-error",
			".alert-danger",
			".alert-error",
			`[role="alert"]`,
			".invalid-feedback",
			".error",
		),
		MyASBALinks: entities.Selectors(
			`a:has-text("My ASBA")`,
			`button:has-text("My ASBA")`,
			`a[href*="asba" i]`,
			`li:has-text("My ASBA")`,
			"text=/My ASBA/i",
		),
		OfferingRows: entities.Selectors(
			`.company-list:has(button:text-is("Apply"))`,
			`tr:has(button:text-is("Apply"))`,
			`div.row:has(button:text-is("Apply"))`,
		),
		OfferingCompany: entities.Selectors(
			".company-name span[tooltip]",
			".company-name",
			"td:nth-child(1)",
		),
		ApplyButtons: entities.Selectors(
			`button:text-is("Apply")`,
			`button.btn-issue:text-is("Apply")`,
			`a:text-is("Apply")`,
		),
		ShareDetailButtons: entities.Selectors(
			".company-name",
			`button:has-text("View")`,
			`a:has-text("View")`,
		),
		ShareDetailsReady: entities.Selectors(
			`label:has-text("Share Value Per Unit")`,
			`text=/Share Value Per Unit/i`,
			`text=/Min Unit/i`,
		),
		BankSelects: entities.Selectors(
			"select#selectBank",
			`select[name="bank"]`,
			`select[formcontrolname="bank"]`,
		),
		AccountSelects: entities.Selectors(
			"select#accountNumber",
			`select[name="accountNumber"]`,
			`select[formcontrolname="accountNumber"]`,
		),
		KittaFields: entities.Selectors(
			"input#appliedKitta",
			`input[name="appliedKitta"]`,
			`input[formcontrolname="appliedKitta"]`,
		),
		CRNFields: entities.Selectors(
			"input#crnNumber",
			`input[name="crnNumber"]`,
			`input[formcontrolname="crnNumber"]`,
		),
		DisclaimerBoxes: entities.Selectors(
			"input#disclaimer",
			`input[name="disclaimer"]`,
			`input[type="checkbox"]`,
		),
		ProceedButtons: entities.Selectors(
			`button:has-text("Proceed")`,
			`button[type="submit"]:text-is("Apply")`,
			`button[type="submit"]`,
		),
		PINFields: entities.Selectors(
			"input#transactionPIN",
			`input[name="transactionPIN"]`,
			`input[formcontrolname="transactionPIN"]`,
		),
		ConfirmButtons: entities.Selectors(
			`div.confirm-page-btn button:text-is("Apply")`,
			`button[type="submit"]:text-is("Apply")`,
			`button:text-is("Apply")`,
		),
		StatusSuccess: entities.Selectors(
			".toast-success",
			`text=/applied successfully/i`,
			`text=/Share has been applied/i`,
		),
		StatusErrors: entities.Selectors(
			".toast-error",
			".alert-danger",
			`[role="alert"]`,
		),
		SensitiveFields: entities.Selectors(
			`input[type="password"]`,
			`input[name*="password" i]`,
			`input[name*="username" i]`,
			`input[id*="username" i]`,
		),
		LoginURLMarker: "login",
	}
}

// DPOptions returns the Select2 option candidates for dpName
func DPOptions(dpName string) []entities.SelectorCandidate {
	return entities.Selectors(
		fmt.Sprintf(`li.select2-results__option:has-text(%q)`, dpName),
		fmt.Sprintf(`ul.select2-results__options li:has-text(%q)`, dpName),
		fmt.Sprintf(`li:has-text(%q)`, dpName),
		fmt.Sprintf(`text=%q`, dpName),
	)
}

// CustomDPOptions returns option candidates for non-Select2 dropdowns
func CustomDPOptions(dpName string) []entities.SelectorCandidate {
	return entities.Selectors(
		fmt.Sprintf(`[role="option"]:has-text(%q)`, dpName),
		fmt.Sprintf(`.ng-option:has-text(%q)`, dpName),
		fmt.Sprintf(`div[class*="option"]:has-text(%q)`, dpName),
		fmt.Sprintf(`text=%q`, dpName),
	)
}

// Merge replaces every list of c that is set in override
func (c Catalog) Merge(override Catalog) Catalog {
	pick := func(base, o []entities.SelectorCandidate) []entities.SelectorCandidate {
		if len(o) > 0 {
			return o
		}
		return base
	}
	c.PageReady = pick(c.PageReady, override.PageReady)
	c.Select2Containers = pick(c.Select2Containers, override.Select2Containers)
	c.NativeDPSelects = pick(c.NativeDPSelects, override.NativeDPSelects)
	c.CustomDPDropdowns = pick(c.CustomDPDropdowns, override.CustomDPDropdowns)
	c.UsernameFields = pick(c.UsernameFields, override.UsernameFields)
	c.PasswordFields = pick(c.PasswordFields, override.PasswordFields)
	c.LoginButtons = pick(c.LoginButtons, override.LoginButtons)
	c.LoginSuccess = pick(c.LoginSuccess, override.LoginSuccess)
	c.LoginErrors = pick(c.LoginErrors, override.LoginErrors)
	c.MyASBALinks = pick(c.MyASBALinks, override.MyASBALinks)
	c.OfferingRows = pick(c.OfferingRows, override.OfferingRows)
	c.OfferingCompany = pick(c.OfferingCompany, override.OfferingCompany)
	c.ApplyButtons = pick(c.ApplyButtons, override.ApplyButtons)
	c.ShareDetailButtons = pick(c.ShareDetailButtons, override.ShareDetailButtons)
	c.ShareDetailsReady = pick(c.ShareDetailsReady, override.ShareDetailsReady)
	c.BankSelects = pick(c.BankSelects, override.BankSelects)
	c.AccountSelects = pick(c.AccountSelects, override.AccountSelects)
	c.KittaFields = pick(c.KittaFields, override.KittaFields)
	c.CRNFields = pick(c.CRNFields, override.CRNFields)
	c.DisclaimerBoxes = pick(c.DisclaimerBoxes, override.DisclaimerBoxes)
	c.ProceedButtons = pick(c.ProceedButtons, override.ProceedButtons)
	c.PINFields = pick(c.PINFields, override.PINFields)
	c.ConfirmButtons = pick(c.ConfirmButtons, override.ConfirmButtons)
	c.StatusSuccess = pick(c.StatusSuccess, override.StatusSuccess)
	c.StatusErrors = pick(c.StatusErrors, override.StatusErrors)
	c.SensitiveFields = pick(c.SensitiveFields, override.SensitiveFields)
	if strings.TrimSpace(override.LoginURLMarker) != "" {
		c.LoginURLMarker = override.LoginURLMarker
	}
	return c
}
