package workflow

import (
	"context"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"
)

const (
	closedAfterSubmit = "Page closed after submission. The IPO may or may not have been submitted."
	noConfirmation    = "No confirmation was shown after submission."
)

// CheckFinalStatus reads the portal's response to the submission. A closed
// page is ambiguous: the portal sometimes closes it on success.
func (s *Steps) CheckFinalStatus(ctx context.Context, page interfaces.Page) entities.StepOutcome {
	status := s.finalStatus(ctx, page)
	s.logger.WithField("status", status.Kind).Info("application status checked")
	return entities.Succeeded(StepCheckStatus, status)
}

func (s *Steps) finalStatus(ctx context.Context, page interfaces.Page) entities.ApplicationStatus {
	if page.IsClosed() {
		return entities.ApplicationStatus{Kind: entities.StatusUnknown, Message: closedAfterSubmit}
	}

	if text, ok := s.firstText(ctx, page, s.catalog.StatusSuccess); ok {
		if text == "" {
			text = "IPO application submitted"
		}
		return entities.ApplicationStatus{Kind: entities.StatusSuccess, Message: text}
	}

	if text, ok := s.firstText(ctx, page, s.catalog.StatusErrors); ok {
		if text == "" {
			text = "IPO application was rejected"
		}
		return entities.ApplicationStatus{Kind: entities.StatusFailed, Message: text}
	}

	if page.IsClosed() {
		return entities.ApplicationStatus{Kind: entities.StatusUnknown, Message: closedAfterSubmit}
	}
	return entities.ApplicationStatus{Kind: entities.StatusUnknown, Message: noConfirmation}
}
