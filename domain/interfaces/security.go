package interfaces

// Redactor masks secrets before text leaves the process
type Redactor interface {
	// Redact replaces every known secret in s
	Redact(s string) string
}
