package game

import "errors"

var (
	ErrInvalidGame                = errors.New("invalid game")
	ErrNotAuthorized              = errors.New("not authorized")
	ErrGameNotJoinable            = errors.New("game not joinable")
	ErrInvalidTransition          = errors.New("invalid transition")
	ErrJoinRequestsDisabled       = errors.New("join requests disabled")
	ErrCapacityFilledSinceRequest = errors.New("capacity filled since request")
	ErrHostCannotLeave            = errors.New("host cannot leave")
	ErrAlreadyParticipating       = errors.New("already participating")
	ErrPendingInviteExists        = errors.New("pending invite exists")
	ErrPendingJoinRequestExists   = errors.New("pending join request exists")
	ErrNotParticipating           = errors.New("not participating")
	ErrJoinRequestNotFound        = errors.New("join request not found")
	ErrInviteNotFound             = errors.New("invite not found")
	ErrVersionConflict            = errors.New("version conflict")
	ErrShareCodeTaken             = errors.New("share code taken")
)

// KeepsChanges reports whether a transition error still leaves a mutation that must be saved.
// A lost fill race marks the request rejected and that outcome is persisted.
func KeepsChanges(err error) bool {
	return errors.Is(err, ErrCapacityFilledSinceRequest)
}
