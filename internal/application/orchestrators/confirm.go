package orchestrators

import "errors"

// ErrConfirmationRequired is returned by delete use cases called without
// an explicit confirmation. Nothing is deleted.
var ErrConfirmationRequired = errors.New("deletion requires confirmation")

// DeleteInput identifies the row to delete and carries the user's
// confirmation.
type DeleteInput struct {
	ID        string
	Confirmed bool
}
