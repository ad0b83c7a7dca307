package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var SetFavoriteSQL = `UPDATE "contacts" AS "cnt"
SET
	"favorite" = ?
WHERE
	"cnt"."deleted_at" IS NULL
AND (
	"cnt"."id" = ? AND "cnt"."owner_id" = ?
) RETURNING *;`

// Contacts is the owner-scoped address book store. Every operation takes the
// owning account's id; a contact belonging to someone else reads as not found.
type Contacts interface {
	repository.Repository[*Contact]

	CreateOwned(ctx context.Context, ownerID uuid.UUID, record *Contact) (*Contact, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, favorite *bool) ([]*Contact, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*Contact, error)
	UpdateByOwner(ctx context.Context, ownerID uuid.UUID, record *Contact) (*Contact, error)
	SetFavorite(ctx context.Context, ownerID, id uuid.UUID, favorite bool) (*Contact, error)
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error
}

type contacts struct {
	repository.Repository[*Contact]
	db *bun.DB
}

var _ Contacts = (*contacts)(nil)

func NewContactsRepository(db *bun.DB) Contacts {
	repo := repository.NewRepository[*Contact](db, repository.ModelHandlers[*Contact]{
		NewRecord: func() *Contact { return &Contact{} },
		GetID: func(c *Contact) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Contact, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &contacts{
		Repository: repo,
		db:         db,
	}
}

func (r *contacts) CreateOwned(ctx context.Context, ownerID uuid.UUID, record *Contact) (*Contact, error) {
	record.OwnerID = ownerID
	return r.Repository.CreateTx(ctx, r.db, record)
}

func (r *contacts) ListByOwner(ctx context.Context, ownerID uuid.UUID, favorite *bool) ([]*Contact, error) {
	var records []*Contact

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.owner_id = ?", ownerID.String()).
		Where("?TableAlias.deleted_at IS NULL").
		Order("name ASC")

	if favorite != nil {
		q = q.Where("?TableAlias.favorite = ?", *favorite)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *contacts) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*Contact, error) {
	record := &Contact{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.owner_id = ?", ownerID.String()).
		Where("?TableAlias.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id":       id.String(),
					"owner_id": ownerID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *contacts) UpdateByOwner(ctx context.Context, ownerID uuid.UUID, record *Contact) (*Contact, error) {
	// Ownership check first so a foreign id reads as not found, not as a
	// silent cross-account write.
	if _, err := r.GetByOwner(ctx, ownerID, record.ID); err != nil {
		return nil, err
	}

	record.OwnerID = ownerID
	return r.Repository.UpdateTx(ctx, r.db, record, repository.UpdateByID(record.ID.String()))
}

func (r *contacts) SetFavorite(ctx context.Context, ownerID, id uuid.UUID, favorite bool) (*Contact, error) {
	res, err := r.Repository.RawTx(ctx, r.db, SetFavoriteSQL, favorite, id.String(), ownerID.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return res[0], nil
}

func (r *contacts) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	record, err := r.GetByOwner(ctx, ownerID, id)
	if err != nil {
		return err
	}

	// Model carries the soft_delete tag, so this marks deleted_at.
	_, err = r.db.NewDelete().
		Model(record).
		Where("?TableAlias.id = ?", record.ID.String()).
		Exec(ctx)

	return err
}
