package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/db"
)

// HolderRepository handles database operations for holders
type HolderRepository struct {
	db *db.DB
}

// NewHolderRepository creates a new holder repository
func NewHolderRepository(db *db.DB) *HolderRepository {
	return &HolderRepository{db: db}
}

// Create inserts a new holder
func (r *HolderRepository) Create(ctx context.Context, holder *models.Holder) error {
	query := `
		INSERT INTO holder (holder_code, name, org_unit, portrait_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		holder.HolderCode,
		holder.Name,
		holder.OrgUnit,
		holder.PortraitRef,
		holder.CreatedAt,
		holder.UpdatedAt,
	)

	if uniqueViolation(err) {
		return &models.DuplicateKeyError{Kind: "holder", Key: holder.HolderCode}
	}
	if err != nil {
		return models.StoreError("create holder", err)
	}

	return nil
}

// Get retrieves a holder by code
func (r *HolderRepository) Get(ctx context.Context, holderCode string) (*models.Holder, error) {
	query := `
		SELECT holder_code, name, org_unit, portrait_ref, created_at, updated_at
		FROM holder
		WHERE holder_code = $1
	`

	holder := &models.Holder{}
	err := r.db.QueryRow(ctx, query, holderCode).Scan(
		&holder.HolderCode,
		&holder.Name,
		&holder.OrgUnit,
		&holder.PortraitRef,
		&holder.CreatedAt,
		&holder.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "holder", Key: holderCode}
	}
	if err != nil {
		return nil, models.StoreError("get holder", err)
	}

	return holder, nil
}

// Update mutates a holder's name, unit and portrait. The code itself is
// immutable once created.
func (r *HolderRepository) Update(ctx context.Context, holder *models.Holder) error {
	query := `
		UPDATE holder
		SET name = $2, org_unit = $3, portrait_ref = $4, updated_at = NOW()
		WHERE holder_code = $1
	`

	result, err := r.db.Exec(ctx, query,
		holder.HolderCode,
		holder.Name,
		holder.OrgUnit,
		holder.PortraitRef,
	)

	if err != nil {
		return models.StoreError("update holder", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "holder", Key: holder.HolderCode}
	}

	return nil
}

// Delete removes a holder. Referential safety (no asset still pointing at
// the holder) is enforced by the assignment service before calling this.
func (r *HolderRepository) Delete(ctx context.Context, holderCode string) error {
	query := `DELETE FROM holder WHERE holder_code = $1`

	result, err := r.db.Exec(ctx, query, holderCode)
	if err != nil {
		return models.StoreError("delete holder", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "holder", Key: holderCode}
	}

	return nil
}

// List retrieves all holders ordered by code
func (r *HolderRepository) List(ctx context.Context) ([]*models.Holder, error) {
	query := `
		SELECT holder_code, name, org_unit, portrait_ref, created_at, updated_at
		FROM holder
		ORDER BY holder_code ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, models.StoreError("list holders", err)
	}
	defer rows.Close()

	var holders []*models.Holder
	for rows.Next() {
		holder := &models.Holder{}
		err := rows.Scan(
			&holder.HolderCode,
			&holder.Name,
			&holder.OrgUnit,
			&holder.PortraitRef,
			&holder.CreatedAt,
			&holder.UpdatedAt,
		)
		if err != nil {
			return nil, models.StoreError("scan holder", err)
		}
		holders = append(holders, holder)
	}

	if err := rows.Err(); err != nil {
		return nil, models.StoreError("iterate holders", err)
	}

	return holders, nil
}
