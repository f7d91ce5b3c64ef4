package usecase

import (
	"errors"

	"github.com/riskibarqy/pickup-games/internal/domain/eligibility"
	"github.com/riskibarqy/pickup-games/internal/domain/game"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)

// Game and eligibility outcomes surfaced unchanged to callers.
var (
	ErrNotAuthorized              = game.ErrNotAuthorized
	ErrGameNotJoinable            = game.ErrGameNotJoinable
	ErrInvalidTransition          = game.ErrInvalidTransition
	ErrJoinRequestsDisabled       = game.ErrJoinRequestsDisabled
	ErrCapacityFilledSinceRequest = game.ErrCapacityFilledSinceRequest
	ErrHostCannotLeave            = game.ErrHostCannotLeave
	ErrAlreadyParticipating       = game.ErrAlreadyParticipating
	ErrPendingInviteExists        = game.ErrPendingInviteExists
	ErrPendingJoinRequestExists   = game.ErrPendingJoinRequestExists
	ErrNotParticipating           = game.ErrNotParticipating
	ErrVersionConflict            = game.ErrVersionConflict

	ErrDeniedCapacityFull     error = eligibility.ErrDeniedCapacityFull
	ErrDeniedGameNotOpen      error = eligibility.ErrDeniedGameNotOpen
	ErrDeniedGenderRestricted error = eligibility.ErrDeniedGenderRestricted
	ErrDeniedPlayerPreference error = eligibility.ErrDeniedPlayerPreference
	ErrDeniedSkillMismatch    error = eligibility.ErrDeniedSkillMismatch
	ErrDeniedNotOpenToInvites error = eligibility.ErrDeniedNotOpenToInvites
)

var errorKinds = []struct {
	target error
	kind   string
}{
	{ErrCapacityFilledSinceRequest, "CapacityFilledSinceRequest"},
	{ErrStorageUnavailable, "StorageUnavailable"},
	{ErrVersionConflict, "VersionConflict"},
	{ErrNotAuthorized, "NotAuthorized"},
	{ErrGameNotJoinable, "GameNotJoinable"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrJoinRequestsDisabled, "JoinRequestsDisabled"},
	{ErrHostCannotLeave, "HostCannotLeave"},
	{ErrAlreadyParticipating, "AlreadyParticipating"},
	{ErrPendingInviteExists, "PendingInviteExists"},
	{ErrPendingJoinRequestExists, "PendingJoinRequestExists"},
	{ErrNotParticipating, "NotParticipating"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrNotFound, "NotFound"},
	{ErrUnauthorized, "Unauthenticated"},
	{ErrDependencyUnavailable, "DependencyUnavailable"},
}

// ErrorKind names the outcome class of err, e.g. "DeniedCapacityFull". Unknown errors are "Internal".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var denial *eligibility.Denial
	if errors.As(err, &denial) {
		return string(denial.Reason)
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return "Internal"
}

// IsDenial reports whether err is a locally recoverable rejection of the caller's request.
func IsDenial(err error) bool {
	var denial *eligibility.Denial
	if errors.As(err, &denial) {
		return true
	}
	for _, target := range []error{
		ErrCapacityFilledSinceRequest,
		ErrGameNotJoinable,
		ErrInvalidTransition,
		ErrJoinRequestsDisabled,
		ErrHostCannotLeave,
		ErrAlreadyParticipating,
		ErrPendingInviteExists,
		ErrPendingJoinRequestExists,
		ErrNotParticipating,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
