package bizerror_test

import (
	"net/http"
	"testing"

	"cowork/bizerror"
	"cowork/testinfra"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestErrorHandling(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.ReleaseMode)

	buildEngine := func(err error) *gin.Engine {
		engine := gin.New()
		engine.Use(bizerror.ErrorHandling())
		engine.GET("/", func(c *gin.Context) {
			panic(err)
		})
		return engine
	}

	t.Run("sentinels map to stable status and code", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{bizerror.ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated"},
			{bizerror.ErrForbidden, http.StatusForbidden, "security.forbidden"},
			{bizerror.ErrAlreadyMember, http.StatusBadRequest, "workspace.already_member"},
			{bizerror.ErrNotWorkspaceMember, http.StatusBadRequest, "workspace.not_member"},
			{bizerror.ErrSelfInvite, http.StatusBadRequest, "workspace.self_invite"},
			{bizerror.ErrInvitePending, http.StatusBadRequest, "workspace.invite_pending"},
			{bizerror.ErrInviteExpired, http.StatusBadRequest, "workspace.invite_expired"},
			{bizerror.ErrInvalidRole, http.StatusBadRequest, "workspace.invalid_role"},
			{bizerror.ErrSelfRoleUpdate, http.StatusBadRequest, "workspace.self_role_update"},
			{bizerror.ErrOwnerImmutable, http.StatusForbidden, "workspace.owner_immutable"},
			{bizerror.ErrAdminRemovesAdmin, http.StatusForbidden, "workspace.admin_removes_admin"},
			{bizerror.ErrSelfRemoval, http.StatusBadRequest, "workspace.self_removal"},
			{bizerror.ErrOwnerLeave, http.StatusBadRequest, "workspace.owner_leave"},
			{bizerror.ErrTaskNotPending, http.StatusBadRequest, "task.not_pending"},
			{bizerror.ErrTaskNotInProgress, http.StatusBadRequest, "task.not_in_progress"},
			{bizerror.ErrConcurrentModification, http.StatusConflict, "common.concurrent_modification"},
		}
		for _, c := range cases {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			status, body := testinfra.ExecuteRequest(req, buildEngine(c.err))
			Expect(status).To(Equal(c.status), "error %v", c.err)
			Expect(body).To(ContainSubstring(`"code":"` + c.code + `"`))
		}
	})

	t.Run("missing records map to 404", func(t *testing.T) {
		for _, err := range []error{bizerror.ErrNotFound, gorm.ErrRecordNotFound} {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			status, body := testinfra.ExecuteRequest(req, buildEngine(err))
			Expect(status).To(Equal(http.StatusNotFound))
			Expect(body).To(ContainSubstring(`"code":"common.record_not_found"`))
		}
	})

	t.Run("bad params map to 400", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		status, body := testinfra.ExecuteRequest(req, buildEngine(&bizerror.ErrBadParam{}))
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
	})

	t.Run("unknown errors map to 500", func(t *testing.T) {
		engine := gin.New()
		engine.Use(bizerror.ErrorHandling())
		engine.GET("/", func(c *gin.Context) {
			panic("something went sideways")
		})
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		status, body := testinfra.ExecuteRequest(req, engine)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(ContainSubstring(`"code":"common.internal_server_error"`))
	})
}
