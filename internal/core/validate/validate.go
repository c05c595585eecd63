// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"

	"github.com/hay-kot/criterio"
)

var profileNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ProfileName validates a preference profile name: lowercase letters,
// digits, '-' and '_', starting with a letter or digit, at most 64 bytes.
func ProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("profile is required")
	}
	if !profileNameRe.MatchString(name) {
		return fmt.Errorf("profile %q must be lowercase letters, digits, '-' or '_'", name)
	}
	return nil
}

// ProfileNameField returns a criterio validator for profile names.
func ProfileNameField(field, name string) error {
	return criterio.Run(field, name, ProfileName)
}
