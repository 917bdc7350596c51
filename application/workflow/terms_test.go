package workflow

import (
	"context"
	"testing"

	"ipo_automation/application/pagetest"
	"ipo_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber(t *testing.T) {
	cases := map[string]float64{
		"100":          100,
		"Rs. 1,000.00": 1000,
		"rs 250":       250,
		"NPR 1 000":    1000,
		" 10 ":         10,
	}
	for raw, want := range cases {
		got, err := NormalizeNumber(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := NormalizeNumber("Rs.")
	assert.Error(t, err)
	_, err = NormalizeNumber("ten")
	assert.Error(t, err)
}

func TestParseShareTerms(t *testing.T) {
	text := "Issue Manager\nNIC Asia Capital\nShare Value Per Unit\nRs. 100.00\nMin Unit\n10\nMax Unit\n1,000"

	terms, err := ParseShareTerms(text)

	require.NoError(t, err)
	assert.Equal(t, 100.0, terms.ShareValuePerUnit)
	assert.Equal(t, 10.0, terms.MinUnit)
}

func TestParseShareTermsMissing(t *testing.T) {
	_, err := ParseShareTerms("Share Value Per Unit: 100")
	assert.ErrorIs(t, err, errTermMissing)

	_, err = ParseShareTerms("nothing here")
	assert.ErrorIs(t, err, errTermMissing)
}

func TestEvaluateTermsBoundaries(t *testing.T) {
	th := entities.TermsThresholds{MaxShareValue: 100, MaxMinUnit: 10}

	inclusive := th
	inclusive.Policy = entities.TermsInclusive
	exclusive := th
	exclusive.Policy = entities.TermsExclusive

	atLimit := entities.ShareTerms{ShareValuePerUnit: 100, MinUnit: 10}
	assert.True(t, EvaluateTerms(atLimit, inclusive).Valid, "inclusive accepts V == max")
	assert.False(t, EvaluateTerms(atLimit, exclusive).Valid, "exclusive rejects V == max")

	valueAtLimit := entities.ShareTerms{ShareValuePerUnit: 100, MinUnit: 5}
	assert.True(t, EvaluateTerms(valueAtLimit, inclusive).Valid)
	assert.False(t, EvaluateTerms(valueAtLimit, exclusive).Valid)

	below := entities.ShareTerms{ShareValuePerUnit: 99.5, MinUnit: 9}
	assert.True(t, EvaluateTerms(below, inclusive).Valid)
	assert.True(t, EvaluateTerms(below, exclusive).Valid)

	assert.True(t, EvaluateTerms(atLimit, th).Valid, "empty policy is inclusive")
}

func TestEvaluateTermsReasons(t *testing.T) {
	th := entities.TermsThresholds{MaxShareValue: 100, MaxMinUnit: 10}

	verdict := EvaluateTerms(entities.ShareTerms{ShareValuePerUnit: 500, MinUnit: 50}, th)

	assert.False(t, verdict.Valid)
	assert.Contains(t, verdict.Reason, "share value per unit 500 is above 100")
	assert.Contains(t, verdict.Reason, "min unit 50 is above 10")
}

func TestVerifyAllotmentTerms(t *testing.T) {
	steps := newTestSteps(DefaultCatalog())
	th := entities.TermsThresholds{MaxShareValue: 100, MaxMinUnit: 10}

	page := pagetest.New("https://meroshare.test/#/asba/details")
	page.SetBody("Share Value Per Unit : Rs. 100\nMin Unit : 10")
	out := steps.VerifyAllotmentTerms(context.Background(), page, th)
	require.True(t, out.Success, out.Reason)

	page.SetBody("Share Value Per Unit : Rs. 1,100\nMin Unit : 10")
	out = steps.VerifyAllotmentTerms(context.Background(), page, th)
	assert.False(t, out.Success)
	assert.Equal(t, entities.FailureValidation, out.Kind)
	verdict := out.Data.(entities.TermsVerdict)
	assert.Equal(t, 1100.0, verdict.Terms.ShareValuePerUnit)

	page.SetBody("Details unavailable")
	out = steps.VerifyAllotmentTerms(context.Background(), page, th)
	assert.Equal(t, entities.FailureValidation, out.Kind)
	assert.Contains(t, out.Reason, "could not read terms")

	page.Close()
	out = steps.VerifyAllotmentTerms(context.Background(), page, th)
	assert.Equal(t, entities.FailurePageUnavailable, out.Kind)
}

func TestParseShareTermsIgnoresEmbeddedWords(t *testing.T) {
	text := "Admin Unit 5\nFairshare Value Per Unit 900\nShare Value Per Unit : Rs. 100\nMin Unit : 10"

	terms, err := ParseShareTerms(text)

	require.NoError(t, err)
	assert.Equal(t, 100.0, terms.ShareValuePerUnit)
	assert.Equal(t, 10.0, terms.MinUnit)
}
