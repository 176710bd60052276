package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Error kinds. Specific errors wrap one of these so callers can branch with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var (
	// ErrUnknownBadgeEvent indicates an event outside the trigger set.
	ErrUnknownBadgeEvent = fmt.Errorf("%w: unknown badge event", ErrValidation)
	// ErrUserNotFound indicates the target user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)
	// ErrWarningNotFound indicates the warning does not exist.
	ErrWarningNotFound = fmt.Errorf("%w: warning not found", ErrNotFound)
	// ErrAppealNotFound indicates the appeal does not exist.
	ErrAppealNotFound = fmt.Errorf("%w: appeal not found", ErrNotFound)
	// ErrNotModerator indicates the actor lacks a moderator role.
	ErrNotModerator = fmt.Errorf("%w: moderator role required", ErrForbidden)
	// ErrUserNotBanned indicates an appeal or unban was requested for a user in good standing.
	ErrUserNotBanned = fmt.Errorf("%w: user is not banned", ErrConflict)
	// ErrAppealPending indicates the user already has an open appeal.
	ErrAppealPending = fmt.Errorf("%w: an appeal is already pending", ErrConflict)
	// ErrAppealResolved indicates the appeal already reached a terminal state.
	ErrAppealResolved = fmt.Errorf("%w: appeal already resolved", ErrConflict)
	// ErrWarningInactive indicates the warning was already deactivated.
	ErrWarningInactive = fmt.Errorf("%w: warning already inactive", ErrConflict)
	// ErrSelfModeration indicates a moderator targeted their own account.
	ErrSelfModeration = fmt.Errorf("%w: moderators cannot act on their own account", ErrValidation)
)

func isDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrStorageUnavailable)
}

// storageError passes domain errors through and classifies everything else as an
// infrastructure failure the caller may retry.
func storageError(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// validationError wraps validator failures so they classify as ErrValidation while keeping the
// field details reachable through errors.As.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return storageError(err)
}
