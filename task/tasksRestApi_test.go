package task_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/session"
	"cowork/task"
	"cowork/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func buildTaskRouter() *gin.Engine {
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	router.Use(func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, &session.Session{
			Token: "test-token", Identity: session.Identity{ID: 10, Name: "ann"},
		})
	})
	task.RegisterTasksRestAPI(router)
	task.RegisterTaskCommentsRestAPI(router)
	return router
}

func TestTasksRestAPI(t *testing.T) {
	RegisterTestingT(t)
	router := buildTaskRouter()

	t.Run("create task passes the payload through", func(t *testing.T) {
		var payload *domain.TaskCreating
		task.CreateTaskFunc = func(c *domain.TaskCreating, sec *session.Session) (*domain.Task, error) {
			payload = c
			return &domain.Task{ID: 123, ProjectID: c.ProjectID, Title: c.Title,
				Status: domain.TaskStatusPending}, nil
		}
		defer func() { task.CreateTaskFunc = task.CreateTask }()

		req := httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewReader([]byte(
			`{"projectId":"10","title":"fix login","priority":"high"}`)))
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"id":"123"`))
		Expect(payload.ProjectID).To(Equal(types.ID(10)))
		Expect(payload.Title).To(Equal("fix login"))
		Expect(payload.Priority).To(Equal("high"))
	})

	t.Run("create task rejects invalid payloads", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewReader([]byte(`{"title":""}`)))
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
	})

	t.Run("query requires the project id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		status, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("start conflict surfaces as 409", func(t *testing.T) {
		task.StartTaskFunc = func(tr *domain.TaskTransition, sec *session.Session) (*domain.Task, error) {
			return nil, bizerror.ErrConcurrentModification
		}
		defer func() { task.StartTaskFunc = task.StartTask }()

		req := httptest.NewRequest(http.MethodPost, "/v1/task-starts", bytes.NewReader([]byte(`{"taskId":"5"}`)))
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(ContainSubstring(`"code":"common.concurrent_modification"`))
	})

	t.Run("completing a pending task surfaces as 400", func(t *testing.T) {
		task.CompleteTaskFunc = func(tr *domain.TaskTransition, sec *session.Session) (*domain.Task, error) {
			return nil, bizerror.ErrTaskNotInProgress
		}
		defer func() { task.CompleteTaskFunc = task.CompleteTask }()

		req := httptest.NewRequest(http.MethodPost, "/v1/task-completions", bytes.NewReader([]byte(`{"taskId":"5"}`)))
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"task.not_in_progress"`))
	})

	t.Run("missing tasks surface as 404", func(t *testing.T) {
		task.DetailTaskFunc = func(id types.ID, sec *session.Session) (*domain.Task, error) {
			return nil, bizerror.ErrNotFound
		}
		defer func() { task.DetailTaskFunc = task.DetailTask }()

		req := httptest.NewRequest(http.MethodGet, "/v1/tasks/404404", nil)
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(ContainSubstring(`"code":"common.record_not_found"`))
	})

	t.Run("unexpected errors surface as 500", func(t *testing.T) {
		task.DeleteTaskFunc = func(id types.ID, sec *session.Session) error {
			return errors.New("db gone")
		}
		defer func() { task.DeleteTaskFunc = task.DeleteTask }()

		req := httptest.NewRequest(http.MethodDelete, "/v1/tasks/1", nil)
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(ContainSubstring(`"code":"common.internal_server_error"`))
	})

	t.Run("comments roundtrip through the handler", func(t *testing.T) {
		task.QueryCommentsFunc = func(q *domain.CommentQuery, sec *session.Session) (*[]domain.CommentDetail, error) {
			return &[]domain.CommentDetail{
				{Comment: domain.Comment{ID: 1, TaskID: q.TaskID, Content: "hello"}, AuthorName: "ann"},
			}, nil
		}
		defer func() { task.QueryCommentsFunc = task.QueryComments }()

		req := httptest.NewRequest(http.MethodGet, "/v1/task-comments?taskId=9", nil)
		status, body := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"authorName":"ann"`))
		Expect(body).To(ContainSubstring(`"total":1`))
	})
}
