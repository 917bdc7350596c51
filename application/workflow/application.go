package workflow

import (
	"context"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"
)

// OpenApplication clicks Apply in the row of the verified offering
func (s *Steps) OpenApplication(ctx context.Context, page interfaces.Page, offering *entities.Offering) entities.StepOutcome {
	candidates, out := inRow(StepOpenApplication, offering, s.catalog.ApplyButtons)
	if out != nil {
		return *out
	}
	if _, out := s.click(ctx, page, StepOpenApplication, "Apply button", candidates); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.NavigationSettle)
	return entities.Succeeded(StepOpenApplication, nil)
}

// FillApplicationForm enters bank, account, applied kitta and CRN and
// accepts the disclaimer. The account list only loads once a bank is
// chosen, hence the pause in between.
func (s *Steps) FillApplicationForm(ctx context.Context, page interfaces.Page, details entities.ApplicationDetails) entities.StepOutcome {
	s.waitReady(ctx, page, s.catalog.BankSelects)

	if out := s.selectOption(ctx, page, StepFillApplication, "bank", details.Bank, s.catalog.BankSelects); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.Settle)

	if out := s.selectOption(ctx, page, StepFillApplication, "account number", details.AccountNumber, s.catalog.AccountSelects); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.Settle)

	if out := s.fill(ctx, page, StepFillApplication, "applied kitta", details.Kitta, s.catalog.KittaFields); out != nil {
		return *out
	}
	if out := s.fill(ctx, page, StepFillApplication, "CRN", details.CRN, s.catalog.CRNFields); out != nil {
		return *out
	}

	res := s.locator.Locate(ctx, page, entities.LocateRequest{
		Candidates:          s.catalog.DisclaimerBoxes,
		PerCandidateTimeout: s.opts.CandidateTimeout,
		Visibility:          entities.MayBeHidden,
	})
	if !res.Found {
		return missing(page, StepFillApplication, "disclaimer checkbox", res)
	}
	if err := res.Element.Check(); err != nil {
		return actionFailed(page, StepFillApplication, "check disclaimer", err)
	}

	return entities.Succeeded(StepFillApplication, nil)
}

// SubmitApplication proceeds from the form and, when a transaction PIN is
// configured, confirms with it
func (s *Steps) SubmitApplication(ctx context.Context, page interfaces.Page, details entities.ApplicationDetails) entities.StepOutcome {
	if _, out := s.click(ctx, page, StepSubmitApplication, "Proceed button", s.catalog.ProceedButtons); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.Settle)

	if details.PIN == "" {
		page.Pause(ctx, s.opts.NavigationSettle)
		return entities.Succeeded(StepSubmitApplication, "proceed")
	}
	if page.IsClosed() {
		return entities.Failed(StepSubmitApplication, entities.FailurePageUnavailable, "page closed before the transaction PIN could be entered")
	}

	if out := s.fill(ctx, page, StepSubmitApplication, "transaction PIN", details.PIN, s.catalog.PINFields); out != nil {
		return *out
	}
	if _, out := s.click(ctx, page, StepSubmitApplication, "confirm Apply button", s.catalog.ConfirmButtons); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.NavigationSettle)
	return entities.Succeeded(StepSubmitApplication, "confirmed")
}
