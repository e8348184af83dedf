// Package validation holds the value checks shared by command options.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var teamsChannelIDPattern = regexp.MustCompile(`(?i)^19:[0-9a-zA-Z\-_]+@thread\.(skype|tacv2)$`)

// IsValidGUID reports whether s is a GUID in its canonical 8-4-4-4-12 form.
// Case does not matter.
func IsValidGUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	return uuid.Validate(s) == nil
}

// ValidateGUID returns an error naming the value when it is not a GUID.
func ValidateGUID(s string) error {
	if !IsValidGUID(s) {
		return fmt.Errorf("%s is not a valid GUID", s)
	}
	return nil
}

// ValidateSharePointURL checks that s is an absolute https URL.
func ValidateSharePointURL(s string) error {
	if !strings.HasPrefix(strings.ToLower(s), "https://") {
		return fmt.Errorf("'%s' is not a valid SharePoint Online site URL.", s)
	}
	return nil
}

// IsValidBoolean reports whether s spells a boolean the way the CLI accepts it.
func IsValidBoolean(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

// ParseBoolean converts a string already checked with IsValidBoolean.
func ParseBoolean(s string) bool {
	return strings.EqualFold(s, "true")
}

// IsValidTeamsChannelID reports whether s looks like a Teams channel id,
// e.g. 19:4a95f7d8db4c4e7fae857bcebe0623e6@thread.tacv2.
func IsValidTeamsChannelID(s string) bool {
	return teamsChannelIDPattern.MatchString(s)
}

// ParseNumber reads the leading integer of s. Trailing garbage is ignored
// ("12px" is 12); a value without leading digits is not a number.
func ParseNumber(s string) (int, error) {
	t := strings.TrimSpace(s)
	end := 0
	if end < len(t) && (t[end] == '-' || t[end] == '+') {
		end++
	}
	digits := end
	for end < len(t) && t[end] >= '0' && t[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("%s is not a number", s)
	}
	n, err := strconv.Atoi(t[:end])
	if err != nil {
		return 0, fmt.Errorf("%s is not a number", s)
	}
	return n, nil
}
