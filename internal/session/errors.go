package session

import "errors"

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrEmptyName         = errors.New("empty name")
	ErrNameTooShort      = errors.New("name too short")
	ErrDuplicateName     = errors.New("duplicate name")
)

// MinNameLength is the shortest display name the client accepts locally.
const MinNameLength = 2

// ValidateDisplayName applies the local registration rules. Server-side
// rejections (name in use) arrive later as an error event.
func ValidateDisplayName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) < MinNameLength {
		return ErrNameTooShort
	}
	return nil
}
