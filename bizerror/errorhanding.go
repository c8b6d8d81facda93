package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cowork/misc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// sentinel -> response mapping, evaluated in order
var responses = []struct {
	Err     error
	Status  int
	Code    string
	Message string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden", "access forbidden"},

	{ErrAlreadyMember, http.StatusBadRequest, "workspace.already_member", "user is already a member"},
	{ErrNotWorkspaceMember, http.StatusBadRequest, "workspace.not_member", "user is not a workspace member"},
	{ErrSelfInvite, http.StatusBadRequest, "workspace.self_invite", "can not invite yourself"},
	{ErrInvitePending, http.StatusBadRequest, "workspace.invite_pending", "invitation already pending"},
	{ErrInviteExpired, http.StatusBadRequest, "workspace.invite_expired", "invitation expired"},
	{ErrInvalidRole, http.StatusBadRequest, "workspace.invalid_role", "invalid role"},
	{ErrSelfRoleUpdate, http.StatusBadRequest, "workspace.self_role_update", "can not update own role"},
	{ErrOwnerImmutable, http.StatusForbidden, "workspace.owner_immutable", "workspace owner can not be targeted"},
	{ErrAdminRemovesAdmin, http.StatusForbidden, "workspace.admin_removes_admin", "admins can not remove other admins"},
	{ErrSelfRemoval, http.StatusBadRequest, "workspace.self_removal", "use the leave workspace operation instead"},
	{ErrOwnerLeave, http.StatusBadRequest, "workspace.owner_leave", "owner can not leave workspace"},

	{ErrTaskNotPending, http.StatusBadRequest, "task.not_pending", "task is not in pending state"},
	{ErrTaskNotInProgress, http.StatusBadRequest, "task.not_in_progress", "task is not in progress"},

	{ErrConcurrentModification, http.StatusConflict, "common.concurrent_modification", "concurrent modification"},
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, r := range responses {
		if errors.Is(genericErr, r.Err) {
			c.JSON(r.Status, &misc.ErrorBody{Code: r.Code, Message: r.Message})
			c.Abort()
			return
		}
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
