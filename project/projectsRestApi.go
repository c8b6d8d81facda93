package project

import (
	"net/http"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/misc"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterProjectsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/projects", middleWares...)
	g.POST("", handleCreateProject)
	g.GET("", handleQueryProjects)
	g.GET(":id", handleDetailProject)
	g.PUT(":id", handleUpdateProject)
	g.DELETE(":id", handleDeleteProject)
}

func parsePathID(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateProject(c *gin.Context) {
	creation := domain.ProjectCreating{}
	if err := c.MustBindWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateProjectFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryProjects(c *gin.Context) {
	query := domain.ProjectQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryProjectsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleDetailProject(c *gin.Context) {
	record, err := DetailProjectFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateProject(c *gin.Context) {
	updating := domain.ProjectUpdating{}
	if err := c.MustBindWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateProjectFunc(parsePathID(c, "id"), &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteProject(c *gin.Context) {
	if err := DeleteProjectFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
