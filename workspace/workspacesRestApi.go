package workspace

import (
	"io"
	"net/http"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/misc"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterWorkspacesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/workspaces", middleWares...)
	g.POST("", handleCreateWorkspace)
	g.GET("", handleQueryWorkspaces)
	g.GET(":id", handleDetailWorkspace)
	g.PUT(":id", handleUpdateWorkspace)
	g.DELETE(":id", handleDeleteWorkspace)

	g.GET(":id/members", handleQueryWorkspaceMembers)
	g.PUT(":id/members/:memberId/role", handleUpdateMemberRole)
	g.DELETE(":id/members/:memberId", handleRemoveWorkspaceMember)
	g.POST(":id/leave", handleLeaveWorkspace)

	g.GET(":id/dashboard", handleQueryDashboard)
	g.POST(":id/invitations", handleCreateInvitation)

	g.POST(":id/logo", handleUploadLogo)
	g.GET(":id/logo", handleDownloadLogo)

	i := r.Group("/v1/invitations", middleWares...)
	i.GET("", handleQueryInvitations)
	i.POST(":id/accept", handleAcceptInvitation)
	i.POST(":id/reject", handleRejectInvitation)
}

func parsePathID(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateWorkspace(c *gin.Context) {
	creation := domain.WorkspaceCreating{}
	if err := c.MustBindWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateWorkspaceFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryWorkspaces(c *gin.Context) {
	records, err := QueryWorkspacesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleDetailWorkspace(c *gin.Context) {
	record, err := DetailWorkspaceFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateWorkspace(c *gin.Context) {
	updating := domain.WorkspaceUpdating{}
	if err := c.MustBindWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateWorkspaceFunc(parsePathID(c, "id"), &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteWorkspace(c *gin.Context) {
	if err := DeleteWorkspaceFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryWorkspaceMembers(c *gin.Context) {
	records, err := QueryWorkspaceMembersFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleUpdateMemberRole(c *gin.Context) {
	updating := domain.WorkspaceMemberRoleUpdating{}
	if err := c.MustBindWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	err := UpdateMemberRoleFunc(parsePathID(c, "id"), parsePathID(c, "memberId"), &updating,
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleRemoveWorkspaceMember(c *gin.Context) {
	err := RemoveWorkspaceMemberFunc(parsePathID(c, "id"), parsePathID(c, "memberId"),
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleLeaveWorkspace(c *gin.Context) {
	if err := LeaveWorkspaceFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryDashboard(c *gin.Context) {
	record, err := QueryDashboardFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCreateInvitation(c *gin.Context) {
	creation := domain.WorkspaceInvitationCreating{}
	if err := c.MustBindWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateInvitationFunc(parsePathID(c, "id"), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryInvitations(c *gin.Context) {
	records, err := QueryInvitationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleAcceptInvitation(c *gin.Context) {
	if err := AcceptInvitationFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleRejectInvitation(c *gin.Context) {
	if err := RejectInvitationFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleUploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	file, err := fileHeader.Open()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer file.Close()

	if err := UploadLogoFunc(parsePathID(c, "id"), file, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDownloadLogo(c *gin.Context) {
	r, err := DownloadLogoFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	defer r.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, r); err != nil {
		panic(err)
	}
}
