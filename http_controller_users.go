package tasks

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// UsersController serves the user-management surface. Every handler runs
// behind the admin route guard; the per-record checks here are the second
// layer for resources the gate alone does not decide.
type UsersController struct {
	Logger Logger
	Repo   RepositoryManager
	Policy AccessPolicy
	Key    string
}

func NewUsersController(repo RepositoryManager, policy AccessPolicy, contextKey string) *UsersController {
	if contextKey == "" {
		contextKey = "user"
	}
	return &UsersController{
		Logger: defLogger{},
		Repo:   repo,
		Policy: policy,
		Key:    contextKey,
	}
}

func RegisterUserRoutes[T any](app router.Router[T], controller *UsersController, guard router.MiddlewareFunc) {
	grp := app.Group("/admin/users")
	grp.Use(guard)

	grp.Get("/", controller.List).SetName("admin.users.list")
	grp.Get("/:id", controller.Show).SetName("admin.users.show")
	grp.Post("/", controller.Create).SetName("admin.users.create")
}

// List renders all users. Reaching this handler means the admin gate
// already passed, so both Administrator and Manager see the listing.
func (c *UsersController) List(ctx router.Context) error {
	records, err := c.Repo.Users().ListAll(ctx.Context())
	if err != nil {
		c.Logger.Error("users list error", "error", err)
		return renderError(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to list users"))
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"success": true,
		"data":    records,
	})
}

// Show returns a single user. Administrator may view anyone; everyone else
// only themselves. A Manager asking for another user's record gets a 403,
// not a not-found.
func (c *UsersController) Show(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.Key)
	if !ok {
		return renderError(ctx, ErrNoToken)
	}

	targetID := ctx.Param("id")

	if !c.Policy.CanViewUser(claims.Role(), claims.UserID(), targetID).Allowed() {
		c.Logger.Warn("user view denied",
			"requester", claims.UserID(),
			"target", targetID,
			"role", claims.Role().String(),
		)
		return renderError(ctx, ErrForbidden)
	}

	record, err := c.Repo.Users().GetByIdentifier(ctx.Context(), targetID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return renderError(ctx, errors.New("user not found", errors.CategoryNotFound))
		}
		c.Logger.Error("user show error", "error", err)
		return renderError(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to load user"))
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"success": true,
		"data":    record,
	})
}

// CreateUserPayload is the admin-area request body for creating a user
type CreateUserPayload struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone_number" json:"phone_number"`
	Password  string `form:"password" json:"password"`
	Role      int    `form:"role" json:"role"`
}

// Validate will validate the payload
func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber("US"))),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.Role, validation.Min(int(RoleAdministrator)), validation.Max(int(RoleGuest))),
	)
}

// Create registers a user with an explicit role. Only reachable behind the
// admin gate.
func (c *UsersController) Create(ctx router.Context) error {
	payload := new(CreateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("user create parse payload", "error", err)
		return renderError(ctx, errors.New("invalid request payload", errors.CategoryBadInput))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"success":    false,
			"error":      "Validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	role := RoleCode(payload.Role)
	if !role.IsValid() {
		role = RoleGeneralUser
	}

	registerUser := RegisterUserHandler{repo: c.Repo}
	record, err := registerUser.Execute(ctx.Context(), RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
		Role:      role,
	})
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict {
			return ctx.JSON(router.StatusConflict, router.ViewContext{
				"success": false,
				"error":   "user already exists",
			})
		}

		c.Logger.Error("user create error", "error", err)
		return renderError(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to create user"))
	}

	return ctx.JSON(router.StatusCreated, router.ViewContext{
		"success": true,
		"data":    record,
	})
}

// renderError maps the error taxonomy to JSON responses with the right
// status code. Internals respond with a generic message.
func renderError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	message := richErr.Message

	switch richErr.Category {
	case errors.CategoryAuth:
		if status == 0 {
			status = router.StatusUnauthorized
		}
	case errors.CategoryAuthz:
		if status == 0 {
			status = router.StatusForbidden
		}
	case errors.CategoryNotFound:
		status = router.StatusNotFound
	case errors.CategoryBadInput, errors.CategoryValidation:
		status = router.StatusBadRequest
	case errors.CategoryRateLimit:
		status = router.StatusTooManyRequests
	default:
		status = router.StatusInternalServerError
		message = "An unexpected server error occurred"
	}

	return ctx.JSON(status, router.ViewContext{
		"success": false,
		"error":   message,
	})
}
