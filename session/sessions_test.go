package session_test

import (
	"net/http"
	"net/http/httptest"

	"cowork/bizerror"
	"cowork/session"
	"cowork/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

var _ = Describe("SimpleAuthFilter", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		router.GET("/me", session.SimpleAuthFilter(), func(c *gin.Context) {
			c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
		})
	})

	It("should pass the session through when the token is valid", func() {
		token := uuid.New().String()
		session.TokenCache.Set(token, &session.Session{Token: token,
			Identity: session.Identity{ID: 1, Name: "ann", Nickname: "Ann"}}, cache.DefaultExpiration)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"token":"` + token + `", "identity":{"id":"1","name":"ann","nickname":"Ann"}}`))
	})

	It("should reject requests without a token cookie", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(ContainSubstring(`"code":"common.unauthenticated"`))
	})

	It("should reject unknown tokens", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "stale-token"})
		status, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})
})

var _ = Describe("ExtractSessionFromGinContext", func() {
	It("should fall back to an anonymous session", func() {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		s := session.ExtractSessionFromGinContext(c)
		Expect(s.Token).To(BeEmpty())
		Expect(s.Context).ToNot(BeNil())
	})

	It("should ignore injected sessions without a token", func() {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		session.InjectSessionIntoGinContext(c, &session.Session{})
		s := session.ExtractSessionFromGinContext(c)
		Expect(s.Token).To(BeEmpty())
	})

	It("should clone the injected session and carry the request context", func() {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		session.InjectSessionIntoGinContext(c, &session.Session{Token: "t",
			Identity: session.Identity{ID: 2, Name: "bob"}})
		s := session.ExtractSessionFromGinContext(c)
		Expect(s.Token).To(Equal("t"))
		Expect(s.Identity.ID).To(Equal(types.ID(2)))
		Expect(s.Context).To(Equal(c.Request.Context()))
	})
})
