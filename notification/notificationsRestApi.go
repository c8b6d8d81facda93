package notification

import (
	"net/http"

	"cowork/bizerror"
	"cowork/misc"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterNotificationsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/notifications", middleWares...)
	g.GET("", handleQueryNotifications)
	g.POST(":id/read", handleMarkRead)
	g.POST("read-all", handleMarkAllRead)
}

func handleQueryNotifications(c *gin.Context) {
	query := NotificationQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := QueryNotifications(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleMarkRead(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := MarkRead(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleMarkAllRead(c *gin.Context) {
	if err := MarkAllRead(session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
