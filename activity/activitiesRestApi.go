package activity

import (
	"net/http"

	"cowork/bizerror"
	"cowork/misc"
	"cowork/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterActivitiesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/activities", middleWares...)
	g.GET("", handleQueryActivities)

	s := r.Group("/v1/activity-search", middleWares...)
	s.GET("", handleSearchActivities)
}

func handleQueryActivities(c *gin.Context) {
	query := ActivityQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := QueryActivitiesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(*records))})
}

func handleSearchActivities(c *gin.Context) {
	query := ActivitySearchQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := SearchActivitiesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(records))})
}
