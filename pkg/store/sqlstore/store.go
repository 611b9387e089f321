// Package sqlstore persists the catalog and assets with database/sql. Open
// uses the pure-Go SQLite driver; New accepts any *sql.DB speaking the same
// dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-assetform/pkg/model"
	"github.com/goliatone/go-assetform/pkg/store"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for migration and write events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how new asset ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

// Store implements store.Catalog and store.AssetSink over SQL.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	nextID func() string
}

var (
	_ store.Catalog   = (*Store)(nil)
	_ store.AssetSink = (*Store)(nil)
)

// New wraps an open database handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		now:    time.Now,
		nextID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open opens a SQLite database at dsn and applies migrations.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %q: %w", dsn, err)
	}
	s := New(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migration %d: %w", i, err)
		}
	}
	s.logger.Debug("sqlstore migrated", zap.Int("statements", len(migrations)))
	return nil
}

func (s *Store) AssetType(ctx context.Context, id string) (model.AssetType, error) {
	var at model.AssetType
	err := s.db.QueryRowContext(ctx, selectAssetType, id).
		Scan(&at.ID, &at.Name, &at.Description, &at.Icon, &at.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AssetType{}, store.NotFound("asset type", id)
	}
	if err != nil {
		return model.AssetType{}, fmt.Errorf("sqlstore: asset type %q: %w", id, err)
	}
	return at, nil
}

func (s *Store) AssetTypes(ctx context.Context) ([]model.AssetType, error) {
	rows, err := s.db.QueryContext(ctx, selectAssetTypes)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: asset types: %w", err)
	}
	defer rows.Close()

	var out []model.AssetType
	for rows.Next() {
		var at model.AssetType
		if err := rows.Scan(&at.ID, &at.Name, &at.Description, &at.Icon, &at.Status); err != nil {
			return nil, fmt.Errorf("sqlstore: scan asset type: %w", err)
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// CoreFields returns the asset type's core fields in stored order. An asset
// type without fields yields an empty set; an unknown one yields
// store.ErrNotFound.
func (s *Store) CoreFields(ctx context.Context, assetTypeID string) (model.FieldSet, error) {
	fields, err := s.queryFields(ctx, selectCoreFields, assetTypeID)
	if err != nil {
		return model.FieldSet{}, err
	}
	if len(fields) == 0 {
		if err := s.exists(ctx, assetTypeExists, "asset type", assetTypeID); err != nil {
			return model.FieldSet{}, err
		}
	}
	return model.FieldSet{Origin: model.OriginCore, OwnerID: assetTypeID, Fields: fields}, nil
}

func (s *Store) Forms(ctx context.Context, assetTypeID string) ([]model.FormDefinition, error) {
	rows, err := s.db.QueryContext(ctx, selectForms, assetTypeID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: forms: %w", err)
	}
	defer rows.Close()

	var out []model.FormDefinition
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: forms: %w", err)
	}
	if len(out) == 0 {
		if err := s.exists(ctx, assetTypeExists, "asset type", assetTypeID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) Form(ctx context.Context, id string) (model.FormDefinition, error) {
	form, err := scanForm(s.db.QueryRowContext(ctx, selectForm, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.FormDefinition{}, store.NotFound("form", id)
	}
	return form, err
}

func (s *Store) FormFields(ctx context.Context, formID string) (model.FieldSet, error) {
	fields, err := s.queryFields(ctx, selectFormFields, formID)
	if err != nil {
		return model.FieldSet{}, err
	}
	if len(fields) == 0 {
		if err := s.exists(ctx, formExists, "form", formID); err != nil {
			return model.FieldSet{}, err
		}
	}
	return model.FieldSet{Origin: model.OriginCustom, OwnerID: formID, Fields: fields}, nil
}

// PutAssetType upserts an asset type and replaces its core fields.
func (s *Store) PutAssetType(ctx context.Context, at model.AssetType, core model.FieldSet) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertAssetType, at.ID, at.Name, at.Description, at.Icon, string(at.Status)); err != nil {
			return fmt.Errorf("sqlstore: upsert asset type %q: %w", at.ID, err)
		}
		return replaceFields(ctx, tx, deleteCoreFields, insertCoreField, at.ID, core.Fields)
	})
}

// PutForm upserts a form definition and replaces its custom fields.
func (s *Store) PutForm(ctx context.Context, form model.FormDefinition, fields model.FieldSet) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertForm, form.ID, form.Name, form.Description, form.AssetTypeID,
			form.Version, form.IsPublished, string(form.Status)); err != nil {
			return fmt.Errorf("sqlstore: upsert form %q: %w", form.ID, err)
		}
		return replaceFields(ctx, tx, deleteFormFields, insertFormField, form.ID, fields.Fields)
	})
}

// CreateAsset inserts a new asset, minting an id when none is set.
func (s *Store) CreateAsset(ctx context.Context, asset model.Asset) (model.Asset, error) {
	if asset.ID == "" {
		asset.ID = s.nextID()
	}
	data, err := encodeData(asset.Data)
	if err != nil {
		return model.Asset{}, err
	}
	now := s.now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	if _, err := s.db.ExecContext(ctx, insertAsset,
		asset.ID, asset.Name, asset.AssetTypeID, asset.ParentID,
		string(asset.HierarchyLevel), string(asset.Status), string(asset.Criticality), asset.Location,
		data, formatTime(now), formatTime(now),
	); err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: insert asset: %w", err)
	}
	s.logger.Info("asset created", zap.String("asset_id", asset.ID), zap.String("asset_type_id", asset.AssetTypeID))
	return asset, nil
}

// UpdateAsset rewrites an existing asset and returns the stored record.
func (s *Store) UpdateAsset(ctx context.Context, asset model.Asset) (model.Asset, error) {
	data, err := encodeData(asset.Data)
	if err != nil {
		return model.Asset{}, err
	}
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, updateAsset,
		asset.Name, asset.AssetTypeID, asset.ParentID,
		string(asset.HierarchyLevel), string(asset.Status), string(asset.Criticality), asset.Location,
		data, formatTime(now), asset.ID,
	)
	if err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: update asset %q: %w", asset.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: update asset %q: %w", asset.ID, err)
	}
	if affected == 0 {
		return model.Asset{}, store.NotFound("asset", asset.ID)
	}
	s.logger.Info("asset updated", zap.String("asset_id", asset.ID))
	return s.Asset(ctx, asset.ID)
}

// Asset loads a stored asset.
func (s *Store) Asset(ctx context.Context, id string) (model.Asset, error) {
	var (
		asset               model.Asset
		data                string
		created, updated    string
		level, status, crit string
	)
	err := s.db.QueryRowContext(ctx, selectAsset, id).Scan(
		&asset.ID, &asset.Name, &asset.AssetTypeID, &asset.ParentID,
		&level, &status, &crit, &asset.Location, &data, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, store.NotFound("asset", id)
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: asset %q: %w", id, err)
	}
	asset.HierarchyLevel = model.HierarchyLevel(level)
	asset.Status = model.AssetStatus(status)
	asset.Criticality = model.CriticalityLevel(crit)
	if err := json.Unmarshal([]byte(data), &asset.Data); err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: decode asset %q data: %w", id, err)
	}
	if asset.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: asset %q created_at: %w", id, err)
	}
	if asset.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return model.Asset{}, fmt.Errorf("sqlstore: asset %q updated_at: %w", id, err)
	}
	return asset, nil
}

func (s *Store) exists(ctx context.Context, query, kind, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.NotFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: lookup %s %q: %w", kind, id, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeData(data model.FormValue) (string, error) {
	if data == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("sqlstore: encode asset data: %w", err)
	}
	return string(encoded), nil
}
