package workflow

import (
	"context"
	"fmt"
	"strings"

	"ipo_automation/application/locator"
	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"
)

// OpenASBA navigates to the My ASBA section
func (s *Steps) OpenASBA(ctx context.Context, page interfaces.Page) entities.StepOutcome {
	s.waitReady(ctx, page, s.catalog.MyASBALinks)
	if _, out := s.click(ctx, page, StepOpenASBA, `"My ASBA" link`, s.catalog.MyASBALinks); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.NavigationSettle)
	return entities.Succeeded(StepOpenASBA, nil)
}

// LocateApplyAction looks for an offering row carrying an Apply button. No
// such row is a business outcome, not a lookup error.
func (s *Steps) LocateApplyAction(ctx context.Context, page interfaces.Page) entities.StepOutcome {
	offering, out := s.findOffering(ctx, page, StepLocateApply, s.catalog.OfferingRows)
	if out != nil {
		if out.Kind == entities.FailureElementNotFound {
			return entities.Failed(StepLocateApply, entities.FailureNoOffering, "no open issue with an Apply action")
		}
		return *out
	}
	return entities.Succeeded(StepLocateApply, offering)
}

func (s *Steps) findOffering(ctx context.Context, page interfaces.Page, step string, rows []entities.SelectorCandidate) (*entities.Offering, *entities.StepOutcome) {
	row := s.locate(ctx, page, rows)
	if !row.Found {
		out := missing(page, step, "offering with Apply button", row)
		return nil, &out
	}

	rowText, err := row.Element.Text()
	if err != nil {
		out := actionFailed(page, step, "read offering row", err)
		return nil, &out
	}

	offering := ParseOffering(rowText)
	offering.RowSelector = row.MatchedSelector
	if name, ok := s.firstText(ctx, page, locator.Within(row.MatchedSelector, s.catalog.OfferingCompany)); ok && name != "" {
		offering.CompanyName = name
	}
	s.logger.WithField("company", offering.CompanyName).Info("found open issue")
	return &offering, nil
}

// ParseOffering extracts the listing fields from an offering row's text.
// The first line is the company name; the share type and group follow.
func ParseOffering(rowText string) entities.Offering {
	offering := entities.Offering{RowText: strings.TrimSpace(rowText)}

	var lines []string
	for _, line := range strings.Split(rowText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "apply") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return offering
	}

	offering.CompanyName = lines[0]
	for _, line := range lines[1:] {
		upper := strings.ToUpper(line)
		switch {
		case offering.ShareType == "" && (upper == "IPO" || upper == "FPO" || strings.Contains(upper, "RIGHT") || strings.Contains(upper, "DEBENTURE") || strings.Contains(upper, "MUTUAL FUND")):
			offering.ShareType = line
		case offering.ShareGroup == "" && strings.Contains(upper, "SHARE"):
			offering.ShareGroup = line
		}
	}
	return offering
}

// inRow scopes candidates to the row of offering. Without a matched row
// there is nothing safe to click.
func inRow(step string, offering *entities.Offering, candidates []entities.SelectorCandidate) ([]entities.SelectorCandidate, *entities.StepOutcome) {
	if offering == nil || offering.RowSelector == "" {
		out := entities.Failed(step, entities.FailureElementNotFound, "no offering row selected")
		return nil, &out
	}
	return locator.Within(offering.RowSelector, candidates), nil
}

// OpenShareDetails opens the detail view of offering from its own row and
// waits for the allotment terms to render
func (s *Steps) OpenShareDetails(ctx context.Context, page interfaces.Page, offering *entities.Offering) entities.StepOutcome {
	candidates, out := inRow(StepOpenShareDetails, offering, s.catalog.ShareDetailButtons)
	if out != nil {
		return *out
	}
	if _, out := s.click(ctx, page, StepOpenShareDetails, "offering details", candidates); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.Settle)

	ready := s.locator.Locate(ctx, page, entities.LocateRequest{
		Candidates:          s.catalog.ShareDetailsReady,
		PerCandidateTimeout: s.opts.ReadyTimeout,
		OverallTimeout:      s.opts.ReadyTimeout,
		Visibility:          entities.MayBeHidden,
	})
	if !ready.Found {
		return missing(page, StepOpenShareDetails, "share details", ready)
	}
	return entities.Succeeded(StepOpenShareDetails, nil)
}

// ReturnToASBA leaves the detail view and confirms the verified offering
// still carries the Apply action. verified may be nil when nothing was
// matched before; any Apply row is accepted then.
func (s *Steps) ReturnToASBA(ctx context.Context, page interfaces.Page, verified *entities.Offering) entities.StepOutcome {
	if err := page.GoBack(ctx); err != nil {
		return actionFailed(page, StepReturnToASBA, "go back to My ASBA", err)
	}
	page.Pause(ctx, s.opts.NavigationSettle)

	rows := s.catalog.OfferingRows
	if verified != nil && verified.RowSelector != "" {
		rows = []entities.SelectorCandidate{{Selector: verified.RowSelector}}
	}

	offering, out := s.findOffering(ctx, page, StepReturnToASBA, rows)
	if out != nil {
		if out.Kind == entities.FailureElementNotFound {
			out.Reason = "Could not find Apply button after verification"
		}
		return *out
	}
	if verified != nil && verified.CompanyName != "" && offering.CompanyName != verified.CompanyName {
		return entities.Failed(StepReturnToASBA, entities.FailureElementNotFound,
			fmt.Sprintf("Apply row now shows %q, not the verified %q", offering.CompanyName, verified.CompanyName))
	}
	return entities.Succeeded(StepReturnToASBA, offering)
}
