package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/internal/schema"
	"todo-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// TodoStore is the persistence the handlers need. *repository.TodoRepository implements it.
type TodoStore interface {
	List(ctx context.Context, skip, limit int) ([]models.Todo, error)
	Get(ctx context.Context, id int64) (models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Update(ctx context.Context, id int64, patch models.TodoPatch) (models.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Pinger reports whether the database is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// TodoController maps the HTTP API onto a TodoStore.
type TodoController struct {
	store TodoStore
	db    Pinger
}

// NewTodoController returns a controller using store for todos and db for readiness checks.
func NewTodoController(store TodoStore, db Pinger) *TodoController {
	return &TodoController{store: store, db: db}
}

// Root confirms the API is up.
func (h *TodoController) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Todo API is running!"})
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *TodoController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready returns 200 if the database is reachable. Used by K8s readiness probes.
func (h *TodoController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
		return
	}
	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn(ctx, "Readiness ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// ListTodos returns todos in insertion order. Supports ?skip=N&limit=M.
func (h *TodoController) ListTodos(c *gin.Context) {
	ctx := c.Request.Context()
	skip, ok := queryInt(c, "skip", defaultSkip)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", defaultLimit)
	if !ok {
		return
	}
	todos, err := h.store.List(ctx, skip, limit)
	if err != nil {
		internalError(c, "ListTodos failed", err)
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponses(todos))
}

// GetTodo returns one todo or 404.
func (h *TodoController) GetTodo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	todo, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		storeError(c, "GetTodo failed", id, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponse(todo))
}

// CreateTodo validates the body and stores a new todo.
func (h *TodoController) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	body, err := c.GetRawData()
	if err != nil {
		validationError(c, schema.NewFieldError([]string{"body"}, "could not read request body", "body_error"))
		return
	}
	req, err := schema.DecodeCreate(body)
	if err != nil {
		validationError(c, err)
		return
	}
	todo := req.Todo()
	if err := h.store.Create(ctx, &todo); err != nil {
		internalError(c, "CreateTodo failed", err)
		return
	}
	logger.Debug(ctx, "Todo created", "id", todo.ID)
	c.JSON(http.StatusOK, models.NewTodoResponse(todo))
}

// UpdateTodo applies a partial update. Only fields present in the body change.
func (h *TodoController) UpdateTodo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		validationError(c, schema.NewFieldError([]string{"body"}, "could not read request body", "body_error"))
		return
	}
	req, err := schema.DecodeUpdate(body)
	if err != nil {
		validationError(c, err)
		return
	}
	todo, err := h.store.Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		storeError(c, "UpdateTodo failed", id, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponse(todo))
}

// DeleteTodo permanently removes a todo.
func (h *TodoController) DeleteTodo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		storeError(c, "DeleteTodo failed", id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		validationError(c, schema.NewFieldError([]string{"path", "id"}, "Input should be a valid integer", "int_parsing"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		validationError(c, schema.NewFieldError([]string{"query", name}, "Input should be a valid integer", "int_parsing"))
		return 0, false
	}
	if n < 0 {
		validationError(c, schema.NewFieldError([]string{"query", name}, "Input should be greater than or equal to 0", "greater_than_equal"))
		return 0, false
	}
	return n, true
}

func validationError(c *gin.Context, err error) {
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		internalError(c, "Request validation failed", err)
		return
	}
	logger.Debug(c.Request.Context(), "Request rejected", "error", ve.Error())
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": ve.Fields})
}

// storeError maps repository errors: missing ids are routine and only logged at debug.
func storeError(c *gin.Context, msg string, id int64, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		logger.Debug(c.Request.Context(), "Todo not found", "id", id)
		c.JSON(http.StatusNotFound, gin.H{"detail": "Todo not found"})
		return
	}
	internalError(c, msg, err, "id", id)
}

func internalError(c *gin.Context, msg string, err error, args ...interface{}) {
	ctx := c.Request.Context()
	if ctx.Err() != nil && isContextErr(err) {
		// client went away; nobody is left to read a response
		c.Abort()
		return
	}
	logger.Error(ctx, msg, append([]interface{}{"error", err}, args...)...)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
