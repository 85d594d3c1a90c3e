package session

import (
	"fmt"
	"regexp"
)

// Dialog ids are opaque strings supplied by the server; they double as
// directory names locally, so the charset is restricted.
var dialogIDRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateDialogID checks that id is usable as a dialog identifier.
func ValidateDialogID(id string) error {
	if !dialogIDRegexp.MatchString(id) {
		return fmt.Errorf("invalid dialog id %q: must match ^[A-Za-z0-9_-]{1,64}$", id)
	}
	return nil
}
