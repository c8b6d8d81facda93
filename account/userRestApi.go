package account

import (
	"net/http"

	"cowork/bizerror"
	"cowork/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	// registration is open, listing requires a session
	r.POST("/v1/users", handleCreateUser)

	g := r.Group("/v1/users", middleWares...)
	g.GET("", handleQueryUsers)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	info, err := CreateUserFunc(&creation)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}
