package attachment

import "time"

// Capability names a storage permission that a channel's access policy can
// grant to an acting identity.
type Capability string

const (
	// CapabilityViewStorage permits listing and reading within the channel's
	// namespace
	CapabilityViewStorage Capability = "view_storage"

	// CapabilityWriteStorage permits creating and renaming within the
	// channel's namespace
	CapabilityWriteStorage Capability = "write_storage"
)

// Channel is the identity that namespace content belongs to: the root of a
// per-owner storage sub-tree.
//
// Channels are addressed externally by their human-readable Handle (the
// first path segment of every logical path) and internally by ID. A removed
// channel stays in the directory for audit but no longer resolves and no
// longer accepts writes.
type Channel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Handle    string    `gorm:"uniqueIndex;not null;size:255" json:"handle"`
	AccountID string    `gorm:"index;not null;size:36" json:"account_id"`
	Tier      string    `gorm:"size:64" json:"tier,omitempty"`
	Removed   bool      `gorm:"not null;default:false" json:"removed"`
	CreatedAt time.Time `json:"created_at"`

	// Policy holds the channel's configured access policy, or nil when the
	// channel has none (unrestricted beyond the global block-public switch).
	// Persisted backends serialize it alongside the channel row.
	Policy *AccessPolicy `gorm:"serializer:json" json:"policy,omitempty"`
}

// TableName returns the table name for Channel.
func (Channel) TableName() string {
	return "channels"
}

// AccessPolicy maps acting identities to the storage capabilities they are
// explicitly granted on a channel.
//
// A configured (non-nil) policy is closed: identities absent from Grants
// hold no capabilities at all. Deny entries take precedence over grants,
// mirroring the allow/deny list shape that records inherit at creation.
type AccessPolicy struct {
	// Grants maps an acting identity to its granted capabilities
	Grants map[string][]Capability `json:"grants,omitempty"`

	// Deny lists identities refused all access regardless of grants
	Deny []string `json:"deny,omitempty"`
}

// Permits reports whether the policy grants the capability to the identity.
func (p *AccessPolicy) Permits(actorID string, cap Capability) bool {
	if p == nil {
		return false
	}
	for _, denied := range p.Deny {
		if denied == actorID {
			return false
		}
	}
	for _, granted := range p.Grants[actorID] {
		if granted == cap {
			return true
		}
	}
	return false
}
