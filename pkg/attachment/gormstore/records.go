package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// ============================================================================
// Record operations
// ============================================================================

// Insert persists a new record. The unique index on
// (owner_id, parent_hash, name) turns racing duplicate creations into
// ErrAlreadyExists at the storage engine, not just in application checks.
func (s *Store) Insert(ctx context.Context, record *attachment.Record) error {
	if record.Hash == "" || record.Name == "" {
		return &attachment.StoreError{
			Code:    attachment.ErrInvalidArgument,
			Message: "record hash and name are required",
		}
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return &attachment.StoreError{
				Code:    attachment.ErrAlreadyExists,
				Message: "sibling with this name already exists",
				Path:    record.Name,
			}
		}
		return &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
			Path:    record.Name,
		}
	}
	return nil
}

// GetByHash retrieves a record by its hash.
func (s *Store) GetByHash(ctx context.Context, hash string) (*attachment.Record, error) {
	var record attachment.Record
	err := s.db.WithContext(ctx).Where("hash = ?", hash).First(&record).Error
	if err != nil {
		return nil, notFound(err, "record not found", hash)
	}
	return &record, nil
}

// LookupChild resolves a name within a directory, scoped to an owner.
// Name matching is exact: the query binds hash and name as parameters and
// relies on the column collation being case-sensitive.
func (s *Store) LookupChild(ctx context.Context, ownerID, parentHash, name string, kind attachment.Kind) (*attachment.Record, error) {
	query := s.db.WithContext(ctx).
		Where("owner_id = ? AND parent_hash = ? AND name = ?", ownerID, parentHash, name)
	if kind != attachment.KindAny {
		query = query.Where("kind = ?", kind)
	}

	var record attachment.Record
	if err := query.First(&record).Error; err != nil {
		return nil, notFound(err, "no sibling with this name", name)
	}
	return &record, nil
}

// ListChildren returns every record under the given parent, sorted by name.
func (s *Store) ListChildren(ctx context.Context, ownerID, parentHash string) ([]*attachment.Record, error) {
	var records []*attachment.Record
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND parent_hash = ?", ownerID, parentHash).
		Order("name").
		Find(&records).Error
	if err != nil {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
		}
	}
	return records, nil
}

// UpdateName renames a record in place; the hash is unchanged.
func (s *Store) UpdateName(ctx context.Context, hash, newName string) error {
	if newName == "" {
		return &attachment.StoreError{
			Code:    attachment.ErrInvalidArgument,
			Message: "new name must not be empty",
		}
	}

	result := s.db.WithContext(ctx).
		Model(&attachment.Record{}).
		Where("hash = ?", hash).
		Update("name", newName)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return &attachment.StoreError{
				Code:    attachment.ErrAlreadyExists,
				Message: "sibling with this name already exists",
				Path:    newName,
			}
		}
		return &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: result.Error.Error(),
			Path:    newName,
		}
	}
	if result.RowsAffected == 0 {
		return &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}
	return nil
}

// CommitSize records a file's physical byte length and bumps its revision.
func (s *Store) CommitSize(ctx context.Context, hash string, sizeBytes int64, editedAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&attachment.Record{}).
		Where("hash = ?", hash).
		Updates(map[string]any{
			"size_bytes": sizeBytes,
			"edited_at":  editedAt,
			"revision":   gorm.Expr("revision + 1"),
		})
	if result.Error != nil {
		return &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: result.Error.Error(),
			Path:    hash,
		}
	}
	if result.RowsAffected == 0 {
		return &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}
	return nil
}

// TouchEdited bumps a record's EditedAt timestamp.
func (s *Store) TouchEdited(ctx context.Context, hash string, editedAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&attachment.Record{}).
		Where("hash = ?", hash).
		Update("edited_at", editedAt)
	if result.Error != nil {
		return &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: result.Error.Error(),
			Path:    hash,
		}
	}
	if result.RowsAffected == 0 {
		return &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}
	return nil
}

// Delete removes a record by hash. Deleting a missing hash succeeds so that
// compensation paths can run unconditionally.
func (s *Store) Delete(ctx context.Context, hash string) error {
	err := s.db.WithContext(ctx).
		Where("hash = ?", hash).
		Delete(&attachment.Record{}).Error
	if err != nil {
		return &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
			Path:    hash,
		}
	}
	return nil
}

// SumSizesByAccount aggregates SizeBytes across the account's records using
// a SQL SUM scoped by account identity.
func (s *Store) SumSizesByAccount(ctx context.Context, accountID string) (int64, error) {
	var total *int64
	err := s.db.WithContext(ctx).
		Model(&attachment.Record{}).
		Where("account_id = ?", accountID).
		Select("SUM(size_bytes)").
		Scan(&total).Error
	if err != nil {
		return 0, &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
		}
	}
	if total == nil {
		// SUM over zero rows yields NULL
		return 0, nil
	}
	return *total, nil
}

// ListProvisional returns provisional file records created before the
// cutoff, oldest first.
func (s *Store) ListProvisional(ctx context.Context, olderThan time.Time) ([]*attachment.Record, error) {
	var records []*attachment.Record
	err := s.db.WithContext(ctx).
		Where("kind = ? AND size_bytes = 0 AND revision = 0 AND created_at < ?",
			attachment.KindFile, olderThan).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
		}
	}
	return records, nil
}

// Healthcheck verifies the database connection is alive.
func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
