package tasks

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// TodosController serves task resources. The route guard only proves the
// request is authenticated; ownership is decided per record here, so a
// Manager browsing another user's tasks is refused even though the same
// Manager passes the admin gate elsewhere.
type TodosController struct {
	Logger Logger
	Repo   RepositoryManager
	Policy AccessPolicy
	Key    string
}

func NewTodosController(repo RepositoryManager, policy AccessPolicy, contextKey string) *TodosController {
	if contextKey == "" {
		contextKey = "user"
	}
	return &TodosController{
		Logger: defLogger{},
		Repo:   repo,
		Policy: policy,
		Key:    contextKey,
	}
}

func RegisterTodoRoutes[T any](app router.Router[T], controller *TodosController, guard router.MiddlewareFunc) {
	grp := app.Group("/todos")
	grp.Use(guard)

	grp.Get("/", controller.ListOwn).SetName("todos.list")
	grp.Get("/user/:owner", controller.ListForUser).SetName("todos.list-for-user")
	grp.Get("/:id", controller.Show).SetName("todos.show")
	grp.Post("/", controller.Create).SetName("todos.create")
	grp.Post("/:id/complete", controller.Complete).SetName("todos.complete")
}

// ListOwn lists the authenticated user's own tasks
func (c *TodosController) ListOwn(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.Key)
	if !ok {
		return renderError(ctx, ErrNoToken)
	}

	return c.listFor(ctx, claims.UserID())
}

// ListForUser lists another user's tasks. Administrator may list anyone's;
// everyone else only their own.
func (c *TodosController) ListForUser(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.Key)
	if !ok {
		return renderError(ctx, ErrNoToken)
	}

	ownerID := ctx.Param("owner")

	if !c.Policy.CanViewUser(claims.Role(), claims.UserID(), ownerID).Allowed() {
		c.Logger.Warn("todo list denied",
			"requester", claims.UserID(),
			"owner", ownerID,
			"role", claims.Role().String(),
		)
		return renderError(ctx, ErrForbidden)
	}

	return c.listFor(ctx, ownerID)
}

func (c *TodosController) listFor(ctx router.Context, ownerID string) error {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return renderError(ctx, errors.New("invalid owner identifier", errors.CategoryBadInput))
	}

	records, err := c.Repo.Todos().ListByOwner(ctx.Context(), owner)
	if err != nil {
		c.Logger.Error("todos list error", "error", err)
		return renderError(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to list todos"))
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"success": true,
		"data":    records,
	})
}

// Show returns a single task. The record's owner decides access, so a
// task id leaks nothing to users who cannot view its owner.
func (c *TodosController) Show(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.Key)
	if !ok {
		return renderError(ctx, ErrNoToken)
	}

	record, err := c.loadTodo(ctx)
	if err != nil {
		return renderError(ctx, err)
	}

	if !c.Policy.CanViewUser(claims.Role(), claims.UserID(), record.OwnerID.String()).Allowed() {
		return renderError(ctx, ErrForbidden)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"success": true,
		"data":    record,
	})
}

// Complete marks a task done. Same access rule as Show.
func (c *TodosController) Complete(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.Key)
	if !ok {
		return renderError(ctx, ErrNoToken)
	}

	record, err := c.loadTodo(ctx)
	if err != nil {
		return renderError(ctx, err)
	}

	if !c.Policy.CanViewUser(claims.Role(), claims.UserID(), record.OwnerID.String()).Allowed() {
		return renderError(ctx, ErrForbidden)
	}

	updated, err := c.Repo.Todos().MarkCompleted(ctx.Context(), record.ID, true)
	if err != nil {
		c.Logger.Error("todo complete error", "error", err)
		return renderError(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to complete todo"))
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"success": true,
		"data":    updated,
	})
}

func (c *TodosController) loadTodo(ctx router.Context) (*Todo, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, errors.New("invalid todo identifier", errors.CategoryBadInput)
	}

	record, err := c.Repo.Todos().GetByID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, errors.New("todo not found", errors.CategoryNotFound)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load todo")
	}

	return record, nil
}

// CreateTodoPayload is the request body for creating a task
type CreateTodoPayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

// Create creates a task owned by the authenticated user. The owner comes
// from the verified claims, never from the payload.
func (c *TodosController) Create(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.Key)
	if !ok {
		return renderError(ctx, ErrNoToken)
	}

	payload := new(CreateTodoPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("todo create parse payload", "error", err)
		return renderError(ctx, errors.New("invalid request payload", errors.CategoryBadInput))
	}

	owner, err := uuid.Parse(claims.UserID())
	if err != nil {
		return renderError(ctx, errors.New("invalid owner identifier", errors.CategoryBadInput))
	}

	createTodo := CreateTodoHandler{repo: c.Repo}
	record, err := createTodo.Execute(ctx.Context(), CreateTodoMessage{
		Title:       payload.Title,
		Description: payload.Description,
		OwnerID:     owner,
	})
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryValidation {
			return ctx.JSON(router.StatusBadRequest, router.ViewContext{
				"success": false,
				"error":   richErr.Message,
			})
		}

		c.Logger.Error("todo create error", "error", err)
		return renderError(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to create todo"))
	}

	return ctx.JSON(router.StatusCreated, router.ViewContext{
		"success": true,
		"data":    record,
	})
}
