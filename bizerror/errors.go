package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	// membership and invitation guards
	ErrAlreadyMember      = errors.New("already a member")
	ErrNotWorkspaceMember = errors.New("not a workspace member")
	ErrSelfInvite         = errors.New("can not invite yourself")
	ErrInvitePending      = errors.New("invitation already pending")
	ErrInviteExpired      = errors.New("invitation expired")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSelfRoleUpdate     = errors.New("can not update own role")
	ErrOwnerImmutable     = errors.New("workspace owner can not be targeted")
	ErrAdminRemovesAdmin  = errors.New("admins can not remove other admins")
	ErrSelfRemoval        = errors.New("can not remove yourself")
	ErrOwnerLeave         = errors.New("owner can not leave workspace")

	// task state machine
	ErrTaskNotPending    = errors.New("task is not pending")
	ErrTaskNotInProgress = errors.New("task is not in progress")

	ErrConcurrentModification = errors.New("concurrent modification")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
