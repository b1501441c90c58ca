package gormstore

import (
	"context"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// ============================================================================
// Channel operations
// ============================================================================

// FindByHandle resolves a live channel by its handle. Removed channels do
// not resolve.
func (s *Store) FindByHandle(ctx context.Context, handle string) (*attachment.Channel, error) {
	var channel attachment.Channel
	err := s.db.WithContext(ctx).
		Where("handle = ? AND removed = ?", handle, false).
		First(&channel).Error
	if err != nil {
		return nil, notFound(err, "channel not found", handle)
	}
	return &channel, nil
}

// GetByID retrieves a channel by ID, removed or not.
func (s *Store) GetByID(ctx context.Context, id string) (*attachment.Channel, error) {
	var channel attachment.Channel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&channel).Error
	if err != nil {
		return nil, notFound(err, "channel not found", id)
	}
	return &channel, nil
}

// ListLive returns every non-removed channel, sorted by handle.
func (s *Store) ListLive(ctx context.Context) ([]*attachment.Channel, error) {
	var channels []*attachment.Channel
	err := s.db.WithContext(ctx).
		Where("removed = ?", false).
		Order("handle").
		Find(&channels).Error
	if err != nil {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
		}
	}
	return channels, nil
}

// Put creates or replaces a channel.
func (s *Store) Put(ctx context.Context, channel *attachment.Channel) error {
	if channel.ID == "" || channel.Handle == "" {
		return &attachment.StoreError{
			Code:    attachment.ErrInvalidArgument,
			Message: "channel id and handle are required",
		}
	}

	if err := s.db.WithContext(ctx).Save(channel).Error; err != nil {
		return &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: err.Error(),
			Path:    channel.Handle,
		}
	}
	return nil
}
