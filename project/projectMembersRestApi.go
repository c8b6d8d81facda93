package project

import (
	"net/http"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/misc"
	"cowork/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterProjectMembersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/project-members", middleWares...)
	g.POST("", handleAddProjectMember)
	g.GET("", handleQueryProjectMembers)
	g.PUT(":projectId/:memberId", handleUpdateProjectMemberPermission)
	g.DELETE("", handleRemoveProjectMember)
}

func handleAddProjectMember(c *gin.Context) {
	creation := domain.ProjectMemberCreation{}
	if err := c.MustBindWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := AddProjectMemberFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryProjectMembers(c *gin.Context) {
	query := domain.ProjectMemberQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryProjectMembersFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleUpdateProjectMemberPermission(c *gin.Context) {
	updating := domain.ProjectMemberPermissionUpdating{}
	if err := c.MustBindWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	err := UpdateProjectMemberPermissionFunc(parsePathID(c, "projectId"), parsePathID(c, "memberId"),
		&updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleRemoveProjectMember(c *gin.Context) {
	deletion := domain.ProjectMemberDeletion{}
	if err := c.MustBindWith(&deletion, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := RemoveProjectMemberFunc(&deletion, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
