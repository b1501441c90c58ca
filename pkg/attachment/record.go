package attachment

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes directory records from file records.
type Kind string

const (
	// KindDirectory marks a record as a directory (no bytes of its own)
	KindDirectory Kind = "directory"

	// KindFile marks a record as a file backed by physical bytes
	KindFile Kind = "file"

	// KindAny matches both kinds in lookups
	KindAny Kind = ""
)

// RootParentHash is the parent sentinel for records that live directly under
// an owner's namespace root.
const RootParentHash = ""

// Record is the sole persisted entity of the attachment namespace,
// representing files and directories uniformly.
//
// Each record is addressed by an opaque Hash generated at creation and never
// reused. The Hash doubles as the record's physical storage addressing key:
// a directory's physical location is the slash-joined chain of hashes from
// the owner's root down to it (exclusive of the owner root itself), and a
// file's physical location is its directory's location joined with its own
// hash.
//
// Directories carry no content: MimeType, SizeBytes, and Revision are
// meaningful for files only and stay zero-valued for directories. A file
// record with SizeBytes == 0 is provisional; creation commits the real size
// only after the physical write succeeds.
type Record struct {
	Hash       string `gorm:"primaryKey;size:36" json:"hash"`
	OwnerID    string `gorm:"index;not null;size:36;uniqueIndex:idx_sibling_name" json:"owner_id"`
	AccountID  string `gorm:"index;not null;size:36" json:"account_id"`
	CreatorID  string `gorm:"size:36" json:"creator_id"`
	Name       string `gorm:"not null;size:255;uniqueIndex:idx_sibling_name" json:"name"`
	ParentHash string `gorm:"index;size:36;uniqueIndex:idx_sibling_name" json:"parent_hash"`
	Kind       Kind   `gorm:"not null;size:16" json:"kind"`

	MimeType  string `gorm:"size:255" json:"mime_type,omitempty"`
	SizeBytes int64  `gorm:"not null;default:0" json:"size_bytes"`
	Revision  int64  `gorm:"not null;default:0" json:"revision"`

	CreatedAt time.Time `json:"created_at"`
	EditedAt  time.Time `gorm:"index" json:"edited_at"`

	// Access policy snapshot inherited from the owning channel's defaults at
	// creation time. Stored as comma-separated identity lists; the gate
	// consults the channel's live policy, these are retained for audit.
	AllowList string `json:"allow_list,omitempty"`
	DenyList  string `json:"deny_list,omitempty"`
}

// TableName returns the table name for Record.
func (Record) TableName() string {
	return "attachment_records"
}

// IsDirectory reports whether the record is a directory.
func (r *Record) IsDirectory() bool {
	return r.Kind == KindDirectory
}

// IsProvisional reports whether a file record is still in the in-progress
// state between insert and size commit.
func (r *Record) IsProvisional() bool {
	return r.Kind == KindFile && r.SizeBytes == 0 && r.Revision == 0
}

// ETag returns a content fingerprint suitable for caching layers.
//
// The fingerprint changes whenever the file's content changes (the revision
// is bumped on every size commit) but is stable across renames.
func (r *Record) ETag() string {
	return r.Hash + "-" + strconv.FormatInt(r.Revision, 10)
}

// NewHash generates a fresh record hash.
//
// Hashes are opaque, globally unique, and never reused; they double as
// physical storage path segments, so they must not contain separators.
func NewHash() string {
	return uuid.NewString()
}
