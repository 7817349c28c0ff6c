package tasks

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Todos interface {
	repository.Repository[*Todo]

	ListByOwner(ctx context.Context, ownerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Todo, error)
	ListByOwnerTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Todo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Todo, error)
	Create(ctx context.Context, record *Todo, criteria ...repository.InsertCriteria) (*Todo, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Todo, criteria ...repository.InsertCriteria) (*Todo, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, completed bool) (*Todo, error)
}

type todos struct {
	repository.Repository[*Todo]
	db *bun.DB
}

var (
	_ Todos                        = (*todos)(nil)
	_ repository.Repository[*Todo] = (*todos)(nil)
)

func NewTodosRepository(db *bun.DB) Todos {
	repo := repository.NewRepository[*Todo](db, repository.ModelHandlers[*Todo]{
		NewRecord: func() *Todo { return &Todo{} },
		GetID: func(t *Todo) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Todo, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &todos{
		Repository: repo,
		db:         db,
	}
}

func (a *todos) ListByOwner(ctx context.Context, ownerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Todo, error) {
	return a.ListByOwnerTx(ctx, a.db, ownerID, criteria...)
}

func (a *todos) ListByOwnerTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*Todo, error) {
	records := []*Todo{}
	q := tx.NewSelect().Model(&records)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.owner_id = ?", ownerID).
		Order("tdo.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *todos) GetByID(ctx context.Context, id uuid.UUID) (*Todo, error) {
	record := &Todo{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *todos) Create(ctx context.Context, record *Todo, criteria ...repository.InsertCriteria) (*Todo, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *todos) CreateTx(ctx context.Context, tx bun.IDB, record *Todo, criteria ...repository.InsertCriteria) (*Todo, error) {
	prepareTodoDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *todos) MarkCompleted(ctx context.Context, id uuid.UUID, completed bool) (*Todo, error) {
	record := &Todo{}
	record.ID = id
	record.Completed = completed

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func prepareTodoDefaults(record *Todo) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
