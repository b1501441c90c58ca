package namespace

import (
	"context"
	"math"

	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/content"
)

// Unbounded is the limit sentinel for owners with no resolvable ceiling.
const Unbounded int64 = math.MaxInt64

// QuotaInfo reports storage accounting for a resolved owner, or for the
// whole backing store in the root context.
//
// Free is limit minus usage and is deliberately not clamped: a negative
// value means the account is over its ceiling, and how to present that is
// the caller's decision.
type QuotaInfo struct {
	Used int64
	Free int64
}

// Accountant computes aggregate storage usage per account and resolves
// per-owner ceilings.
//
// Usage aggregates at account level, not per owner or directory: several
// channels sharing an account draw from the same allowance. Enforcement is
// advisory-after-the-fact; the accountant only measures and resolves
// limits, the creation sequence compensates.
type Accountant struct {
	records    attachment.RecordStore
	store      content.Store
	tierLimits map[string]int64
}

// NewAccountant creates a quota accountant.
//
// tierLimits maps a channel service tier to its upload ceiling in bytes;
// tiers absent from the map fall back to the backing store's capacity, and
// to Unbounded when the store has none.
func NewAccountant(records attachment.RecordStore, store content.Store, tierLimits map[string]int64) *Accountant {
	return &Accountant{
		records:    records,
		store:      store,
		tierLimits: tierLimits,
	}
}

// Usage returns the aggregate committed size across every record sharing
// the account identity.
func (a *Accountant) Usage(ctx context.Context, accountID string) (int64, error) {
	return a.records.SumSizesByAccount(ctx, accountID)
}

// Limit resolves the owner's storage ceiling: the service-tier ceiling if
// one is configured, otherwise the backing store's total capacity,
// otherwise Unbounded.
func (a *Accountant) Limit(ctx context.Context, owner *attachment.Channel) (int64, error) {
	if limit, ok := a.tierLimits[owner.Tier]; ok && limit > 0 {
		return limit, nil
	}

	stats, err := a.store.Stats(ctx)
	if err != nil {
		return 0, err
	}
	if stats.Unlimited() {
		return Unbounded, nil
	}
	return stats.TotalSize, nil
}

// Info returns (used, free) for the owner's account.
func (a *Accountant) Info(ctx context.Context, owner *attachment.Channel) (*QuotaInfo, error) {
	used, err := a.Usage(ctx, owner.AccountID)
	if err != nil {
		return nil, err
	}
	limit, err := a.Limit(ctx, owner)
	if err != nil {
		return nil, err
	}

	free := Unbounded
	if limit != Unbounded {
		free = limit - used
	}
	return &QuotaInfo{Used: used, Free: free}, nil
}

// StoreInfo returns whole-backing-store totals, used by the root context
// where no owner is resolved.
func (a *Accountant) StoreInfo(ctx context.Context) (*QuotaInfo, error) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	free := Unbounded
	if !stats.Unlimited() {
		free = stats.AvailableSize
	}
	return &QuotaInfo{Used: stats.UsedSize, Free: free}, nil
}
