package tasks

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CreateTodoMessage struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	DueAt       *time.Time `json:"due_at"`
}

func (e CreateTodoMessage) Type() string { return "todo.create" }

type CreateTodoHandler struct {
	repo RepositoryManager
}

func NewCreateTodoHandler(repo RepositoryManager) *CreateTodoHandler {
	return &CreateTodoHandler{repo: repo}
}

func (h *CreateTodoHandler) Execute(ctx context.Context, event CreateTodoMessage) (*Todo, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during todo creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateTodoHandler) execute(ctx context.Context, event CreateTodoMessage) (*Todo, error) {
	if event.Title == "" {
		return nil, goerrors.New("todo title is required", goerrors.CategoryValidation)
	}

	if event.OwnerID == uuid.Nil {
		return nil, goerrors.New("todo owner is required", goerrors.CategoryValidation)
	}

	todo := &Todo{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		todo.Title = event.Title
		todo.Description = event.Description
		todo.OwnerID = event.OwnerID
		todo.DueAt = event.DueAt

		var err error
		if todo, err = h.repo.Todos().CreateTx(ctx, tx, todo); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create todo")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "todo creation transaction failed")
	}

	return todo, nil
}
