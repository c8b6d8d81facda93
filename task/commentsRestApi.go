package task

import (
	"net/http"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/misc"
	"cowork/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterTaskCommentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/task-comments", middleWares...)
	g.POST("", handleCreateComment)
	g.GET("", handleQueryComments)
}

func handleCreateComment(c *gin.Context) {
	creation := domain.CommentCreating{}
	if err := c.MustBindWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateCommentFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryComments(c *gin.Context) {
	query := domain.CommentQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryCommentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}
