package service

import (
	stderrors "errors"

	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/errors"
)

// toAPIError maps domain errors to kratos errors. Unknown errors become an
// opaque internal error.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	var kerr *errors.Error
	if stderrors.As(err, &kerr) {
		return kerr
	}

	switch {
	case stderrors.Is(err, domain.ErrWidgetNotFound):
		return errors.NotFound("WIDGET_NOT_FOUND", err.Error())
	case stderrors.Is(err, domain.ErrWidgetNotVerified):
		return errors.NotFound("WIDGET_NOT_VERIFIED", err.Error())
	case stderrors.Is(err, domain.ErrClickNotFound):
		return errors.NotFound("CLICK_NOT_FOUND", err.Error())
	case stderrors.Is(err, domain.ErrInvitationNotFound):
		return errors.NotFound("INVITATION_NOT_FOUND", err.Error())
	case stderrors.Is(err, domain.ErrInvalidTimestamp):
		return errors.BadRequest("INVALID_TIMESTAMP", err.Error())
	case stderrors.Is(err, domain.ErrInvalidStatus):
		return errors.BadRequest("INVALID_STATUS", err.Error())
	case stderrors.Is(err, domain.ErrInvalidEmail):
		return errors.BadRequest("INVALID_EMAIL", err.Error())
	case stderrors.Is(err, domain.ErrMissingField):
		return errors.BadRequest("MISSING_FIELD", err.Error())
	case stderrors.Is(err, domain.ErrInvalidURL):
		return errors.BadRequest("INVALID_URL", err.Error())
	case stderrors.Is(err, domain.ErrInvalidConfig):
		return errors.BadRequest("INVALID_CONFIG", err.Error())
	}
	return errors.InternalServer("INTERNAL", "internal server error").WithCause(err)
}

// beaconMessage is the message a beacon caller sees on failure. Internal
// details are never exposed.
func beaconMessage(prefix string, err error) string {
	kerr := errors.FromError(toAPIError(err))
	if kerr.Code >= 500 {
		return prefix
	}
	return prefix + ": " + kerr.Message
}
