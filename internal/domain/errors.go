package domain

import "errors"

var (
	ErrWidgetNotFound     = errors.New("widget not found")
	ErrWidgetNotVerified  = errors.New("widget not found or not verified")
	ErrClickNotFound      = errors.New("click not found")
	ErrInvitationNotFound = errors.New("invitation not found")

	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidStatus    = errors.New("invalid invitation status")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidURL       = errors.New("invalid url")
	ErrInvalidConfig    = errors.New("widget config must be a JSON object")
)
