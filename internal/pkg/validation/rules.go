package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Campus email pattern - local part followed by the institutional domain
	CampusEmailPattern = `^[a-zA-Z0-9._%+\-]+@sce\.edu$`

	// Student identifier digit count
	StudentIDDigits = 9
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	CampusEmail *regexp.Regexp
	NonDigits   *regexp.Regexp
}{
	CampusEmail: regexp.MustCompile(CampusEmailPattern),
	NonDigits:   regexp.MustCompile(`\D`),
}

// Result is a discriminated validation result. Callers branch on Valid instead
// of handling panics or errors; Message is set only when Valid is false.
type Result struct {
	Valid   bool
	Message string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(message string) Result {
	return Result{Valid: false, Message: message}
}

// ValidateStudentID strips every non-digit character and requires exactly nine
// digits to remain. Separators such as dashes and spaces are therefore
// accepted. No range or checksum validation is performed.
func ValidateStudentID(raw string) Result {
	digits := CompiledPatterns.NonDigits.ReplaceAllString(raw, "")
	if len(digits) != StudentIDDigits {
		return fail("ID must have 9 digits exactly.")
	}
	return ok()
}

// ValidateCampusEmail requires the full string to be a local part followed by
// the institutional @sce.edu suffix. The domain match is case-sensitive.
func ValidateCampusEmail(raw string) Result {
	if !CompiledPatterns.CampusEmail.MatchString(raw) {
		return fail("Invalid email format. It must end with @sce.edu")
	}
	return ok()
}
