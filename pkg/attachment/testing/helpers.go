package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// TestChannel returns a minimal live channel suitable for seeding a store.
func TestChannel(id, handle string) *attachment.Channel {
	return &attachment.Channel{
		ID:        id,
		Handle:    handle,
		AccountID: "account-" + id,
		Tier:      "free",
		CreatedAt: time.Now(),
	}
}

// TestDirectory returns a directory record under the given parent.
func TestDirectory(ownerID, accountID, parentHash, name string) *attachment.Record {
	now := time.Now()
	return &attachment.Record{
		Hash:       attachment.NewHash(),
		OwnerID:    ownerID,
		AccountID:  accountID,
		ParentHash: parentHash,
		Name:       name,
		Kind:       attachment.KindDirectory,
		CreatedAt:  now,
		EditedAt:   now,
	}
}

// TestFile returns a file record of the given size under the given parent.
func TestFile(ownerID, accountID, parentHash, name string, sizeBytes int64) *attachment.Record {
	now := time.Now()
	return &attachment.Record{
		Hash:       attachment.NewHash(),
		OwnerID:    ownerID,
		AccountID:  accountID,
		ParentHash: parentHash,
		Name:       name,
		Kind:       attachment.KindFile,
		MimeType:   "application/octet-stream",
		SizeBytes:  sizeBytes,
		CreatedAt:  now,
		EditedAt:   now,
	}
}

// mustInsert inserts a record and fails the test on error.
func mustInsert(t *testing.T, store attachment.Store, record *attachment.Record) {
	t.Helper()
	require.NoError(t, store.Insert(t.Context(), record))
}

// mustPut stores a channel and fails the test on error.
func mustPut(t *testing.T, store attachment.Store, channel *attachment.Channel) {
	t.Helper()
	require.NoError(t, store.Put(t.Context(), channel))
}

// AssertErrorCode checks that an error carries the expected code.
func AssertErrorCode(t *testing.T, expected attachment.ErrorCode, err error, msgAndArgs ...any) bool {
	t.Helper()
	if err == nil {
		return assert.Fail(t, "Expected an error but got nil", msgAndArgs...)
	}
	code, ok := attachment.CodeOf(err)
	if !ok {
		return assert.Fail(t, "Expected a store error, got: "+err.Error(), msgAndArgs...)
	}
	return assert.Equal(t, expected, code, msgAndArgs...)
}
