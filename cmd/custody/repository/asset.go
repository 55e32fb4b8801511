package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/db"
)

// AssetRepository handles database operations for assets
type AssetRepository struct {
	db *db.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *db.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `serial, category, make, model, color, holder_code, credential_ref, created_at, updated_at`

func scanAsset(row pgx.Row) (*models.Asset, error) {
	asset := &models.Asset{}
	err := row.Scan(
		&asset.Serial,
		&asset.Category,
		&asset.Make,
		&asset.Model,
		&asset.Color,
		&asset.HolderCode,
		&asset.CredentialRef,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Create inserts a new asset
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO asset (serial, category, make, model, color, holder_code, credential_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		asset.Serial,
		asset.Category,
		asset.Make,
		asset.Model,
		asset.Color,
		asset.HolderCode,
		asset.CredentialRef,
		asset.CreatedAt,
		asset.UpdatedAt,
	)

	if uniqueViolation(err) {
		return &models.DuplicateKeyError{Kind: "asset", Key: asset.Serial}
	}
	if err != nil {
		return models.StoreError("create asset", err)
	}

	return nil
}

// Get retrieves an asset by serial code
func (r *AssetRepository) Get(ctx context.Context, serial string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE serial = $1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, serial))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "asset", Key: serial}
	}
	if err != nil {
		return nil, models.StoreError("get asset", err)
	}

	return asset, nil
}

// UpdateDescriptive mutates the free-text fields of an asset. Category and
// serial are immutable after registration.
func (r *AssetRepository) UpdateDescriptive(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE asset
		SET make = $2, model = $3, color = $4, updated_at = NOW()
		WHERE serial = $1
	`

	result, err := r.db.Exec(ctx, query,
		asset.Serial,
		asset.Make,
		asset.Model,
		asset.Color,
	)

	if err != nil {
		return models.StoreError("update asset", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "asset", Key: asset.Serial}
	}

	return nil
}

// SetHolder binds or clears the asset's holder reference. A nil holderCode
// unassigns the asset.
func (r *AssetRepository) SetHolder(ctx context.Context, serial string, holderCode *string) error {
	query := `
		UPDATE asset
		SET holder_code = $2, updated_at = NOW()
		WHERE serial = $1
	`

	result, err := r.db.Exec(ctx, query, serial, holderCode)
	if uniqueViolation(err) && holderCode != nil {
		// The asset_one_per_category index caught a concurrent assign that
		// slipped past the service-level check. Name the held serial the
		// way the check itself would.
		return r.holderConflict(ctx, serial, *holderCode)
	}
	if err != nil {
		return models.StoreError("set asset holder", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "asset", Key: serial}
	}

	return nil
}

func (r *AssetRepository) holderConflict(ctx context.Context, serial, holderCode string) error {
	var category models.Category
	var heldSerial string
	err := r.db.QueryRow(ctx, `
		SELECT a.category, held.serial
		FROM asset a
		JOIN asset held ON held.holder_code = $2 AND held.category = a.category
		WHERE a.serial = $1
	`, serial, holderCode).Scan(&category, &heldSerial)
	if err != nil {
		return models.StoreError("resolve assignment conflict", err)
	}

	return &models.ConflictingAssignmentError{
		HolderCode:        holderCode,
		Category:          category,
		ConflictingSerial: heldSerial,
	}
}

// SetCredentialRef caches the encoded credential token reference
func (r *AssetRepository) SetCredentialRef(ctx context.Context, serial string, ref *string) error {
	query := `
		UPDATE asset
		SET credential_ref = $2, updated_at = NOW()
		WHERE serial = $1
	`

	result, err := r.db.Exec(ctx, query, serial, ref)
	if err != nil {
		return models.StoreError("set credential ref", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "asset", Key: serial}
	}

	return nil
}

// Delete retires an asset. Custody history is intentionally left in place;
// the ledger is the audit trail.
func (r *AssetRepository) Delete(ctx context.Context, serial string) error {
	query := `DELETE FROM asset WHERE serial = $1`

	result, err := r.db.Exec(ctx, query, serial)
	if err != nil {
		return models.StoreError("delete asset", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "asset", Key: serial}
	}

	return nil
}

// List retrieves all assets ordered by serial
func (r *AssetRepository) List(ctx context.Context) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset ORDER BY serial ASC`
	return r.queryAssets(ctx, query)
}

// ListByCategory retrieves all assets of a given category
func (r *AssetRepository) ListByCategory(ctx context.Context, category models.Category) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE category = $1 ORDER BY serial ASC`
	return r.queryAssets(ctx, query, category)
}

// ListByHolder retrieves all assets currently assigned to a holder
func (r *AssetRepository) ListByHolder(ctx context.Context, holderCode string) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE holder_code = $1 ORDER BY serial ASC`
	return r.queryAssets(ctx, query, holderCode)
}

// FindHeldByCategory returns the asset of the given category currently
// assigned to the holder, or nil when there is none. Used for the
// one-asset-per-category-per-holder conflict check.
func (r *AssetRepository) FindHeldByCategory(ctx context.Context, holderCode string, category models.Category) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE holder_code = $1 AND category = $2 LIMIT 1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, holderCode, category))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, models.StoreError("find held asset", err)
	}

	return asset, nil
}

// CountByHolder returns how many assets reference the holder. Used by the
// holder-delete referential check.
func (r *AssetRepository) CountByHolder(ctx context.Context, holderCode string) (int, error) {
	query := `SELECT COUNT(*) FROM asset WHERE holder_code = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, holderCode).Scan(&count); err != nil {
		return 0, models.StoreError("count assets by holder", err)
	}

	return count, nil
}

func (r *AssetRepository) queryAssets(ctx context.Context, query string, args ...any) ([]*models.Asset, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, models.StoreError("list assets", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, models.StoreError("scan asset", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, models.StoreError("iterate assets", err)
	}

	return assets, nil
}
