package task

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

func RegisterTasksRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/tasks", middleWares...)
	g.POST("", handleCreateTask)
	g.GET("", handleQueryTasks)
	g.GET(":id", handleDetailTask)
	g.PUT(":id", handleUpdateTask)
	g.DELETE(":id", handleDeleteTask)

	s := r.Group("/v1/task-starts", middleWares...)
	s.POST("", handleStartTask)

	f := r.Group("/v1/task-completions", middleWares...)
	f.POST("", handleCompleteTask)
}

func parsePathID(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateTask(c *gin.Context) {
	creation := domain.TaskCreating{}
	if err := c.MustBindWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateTaskFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryTasks(c *gin.Context) {
	query := domain.TaskQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryTasksFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleDetailTask(c *gin.Context) {
	record, err := DetailTaskFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateTask(c *gin.Context) {
	updating := domain.TaskUpdating{}
	if err := c.MustBindWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateTaskFunc(parsePathID(c, "id"), &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteTask(c *gin.Context) {
	if err := DeleteTaskFunc(parsePathID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleStartTask(c *gin.Context) {
	transition := domain.TaskTransition{}
	if err := c.MustBindWith(&transition, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := StartTaskFunc(&transition, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCompleteTask(c *gin.Context) {
	transition := domain.TaskTransition{}
	if err := c.MustBindWith(&transition, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CompleteTaskFunc(&transition, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
