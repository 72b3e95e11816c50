// ABOUTME: Input validation for identifiers forwarded to the upstream API
// ABOUTME: Prevents URL injection attacks via resource ID validation

package services

import (
	"fmt"
	"regexp"
	"strings"
)

// resourceIDPattern matches identifiers the upstream API hands out: MongoDB
// object IDs, UUIDs, and short numeric IDs all fit.
var resourceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateResourceID validates that a path identifier has a safe format before
// it is spliced into an upstream URL. This prevents path traversal through
// crafted portal requests.
func ValidateResourceID(id string) error {
	if id == "" {
		return fmt.Errorf("resource ID cannot be empty")
	}
	if !resourceIDPattern.MatchString(id) {
		return fmt.Errorf("invalid resource ID format: %s", sanitizeForLog(id))
	}
	return nil
}
