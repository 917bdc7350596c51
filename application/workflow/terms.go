package workflow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"
)

var (
	shareValuePattern = regexp.MustCompile(`(?i)\bshare\s+value\s+per\s+unit\s*[:\-]?\s*((?:rs\.?|npr)?\s*[0-9][0-9,]*(?:\.[0-9]+)?)`)
	minUnitPattern    = regexp.MustCompile(`(?i)\bmin(?:imum)?\.?\s+unit\s*[:\-]?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

	errTermMissing = errors.New("term not found in page text")
)

// NormalizeNumber parses a scraped figure such as "Rs. 1,000.00"
func NormalizeNumber(raw string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "npr")
	s = strings.TrimPrefix(s, "rs.")
	s = strings.TrimPrefix(s, "rs")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, fmt.Errorf("empty number %q", raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", raw, err)
	}
	return v, nil
}

// ParseShareTerms reads share value per unit and minimum unit from the text
// of the offering detail view
func ParseShareTerms(text string) (entities.ShareTerms, error) {
	var terms entities.ShareTerms

	m := shareValuePattern.FindStringSubmatch(text)
	if m == nil {
		return terms, fmt.Errorf("share value per unit: %w", errTermMissing)
	}
	value, err := NormalizeNumber(m[1])
	if err != nil {
		return terms, fmt.Errorf("share value per unit: %w", err)
	}

	m = minUnitPattern.FindStringSubmatch(text)
	if m == nil {
		return terms, fmt.Errorf("min unit: %w", errTermMissing)
	}
	minUnit, err := NormalizeNumber(m[1])
	if err != nil {
		return terms, fmt.Errorf("min unit: %w", err)
	}

	terms.ShareValuePerUnit = value
	terms.MinUnit = minUnit
	return terms, nil
}

// EvaluateTerms compares terms against the thresholds. The inclusive policy
// accepts a value equal to its threshold; the exclusive policy does not.
func EvaluateTerms(terms entities.ShareTerms, th entities.TermsThresholds) entities.TermsVerdict {
	within := func(v, limit float64) bool {
		if th.Policy == entities.TermsExclusive {
			return v < limit
		}
		return v <= limit
	}

	verdict := entities.TermsVerdict{Terms: terms, Valid: true}
	var reasons []string
	if !within(terms.ShareValuePerUnit, th.MaxShareValue) {
		reasons = append(reasons, fmt.Sprintf("share value per unit %s is above %s", formatFigure(terms.ShareValuePerUnit), formatFigure(th.MaxShareValue)))
	}
	if !within(terms.MinUnit, th.MaxMinUnit) {
		reasons = append(reasons, fmt.Sprintf("min unit %s is above %s", formatFigure(terms.MinUnit), formatFigure(th.MaxMinUnit)))
	}
	if len(reasons) > 0 {
		verdict.Valid = false
		verdict.Reason = strings.Join(reasons, "; ")
		if th.Policy == entities.TermsExclusive {
			verdict.Reason += " (exclusive limit)"
		}
	}
	return verdict
}

func formatFigure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// VerifyAllotmentTerms scrapes the detail view and checks the terms against
// th. Unreadable terms need a manual decision just like out-of-range ones.
func (s *Steps) VerifyAllotmentTerms(ctx context.Context, page interfaces.Page, th entities.TermsThresholds) entities.StepOutcome {
	text, err := page.BodyText(ctx)
	if err != nil {
		return actionFailed(page, StepVerifyTerms, "read share details", err)
	}

	terms, err := ParseShareTerms(text)
	if err != nil {
		verdict := entities.TermsVerdict{Terms: terms, Reason: fmt.Sprintf("could not read terms: %v", err)}
		return entities.Failed(StepVerifyTerms, entities.FailureValidation, verdict.Reason).WithData(verdict)
	}

	verdict := EvaluateTerms(terms, th)
	s.logger.WithField("terms", fmt.Sprintf("%+v", terms)).WithField("valid", verdict.Valid).Info("verified allotment terms")
	if !verdict.Valid {
		return entities.Failed(StepVerifyTerms, entities.FailureValidation, verdict.Reason).WithData(verdict)
	}
	return entities.Succeeded(StepVerifyTerms, verdict)
}
