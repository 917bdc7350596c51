package security

import (
	"sort"
	"strings"

	"ipo_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const mask = "****"

// Redactor masks configured secrets (password, PIN, CRN, bot token) in text
// that leaves the process through logs or notifications
type Redactor struct {
	secrets []string
}

// NewRedactor - creates a redactor for the given secrets. Values shorter
// than three characters are ignored to avoid masking ordinary text.
func NewRedactor(logger logrus.FieldLogger, secrets ...string) *Redactor {
	var kept []string
	seen := make(map[string]bool)
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		if len(s) < 3 || seen[s] {
			continue
		}
		seen[s] = true
		kept = append(kept, s)
	}
	// longest first so a secret containing another is masked whole
	sort.Slice(kept, func(i, j int) bool { return len(kept[i]) > len(kept[j]) })

	logger.WithField("secrets", len(kept)).Debug("redaction configured")
	return &Redactor{secrets: kept}
}

func (r *Redactor) Redact(s string) string {
	for _, secret := range r.secrets {
		if strings.Contains(s, secret) {
			s = strings.ReplaceAll(s, secret, mask)
		}
	}
	return s
}

// IsSensitiveField reports whether a selector or field name refers to a
// credential input
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)

	sensitiveKeywords := []string{
		"password", "passwd", "pin", "crn", "username", "token",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Hook returns a logrus hook that redacts messages and string fields
func (r *Redactor) Hook() logrus.Hook {
	return &redactHook{redactor: r}
}

type redactHook struct {
	redactor *Redactor
}

func (h *redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.redactor.Redact(entry.Message)
	for k, v := range entry.Data {
		switch val := v.(type) {
		case string:
			entry.Data[k] = h.redactor.Redact(val)
		case error:
			entry.Data[k] = h.redactor.Redact(val.Error())
		}
	}
	return nil
}

var _ interfaces.Redactor = (*Redactor)(nil)
