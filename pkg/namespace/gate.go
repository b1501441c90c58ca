package namespace

import (
	"github.com/marmos91/attachfs/pkg/attachment"
)

// Gate evaluates whether an acting identity may view or write within a
// resolved namespace.
//
// The gate is stateless and re-evaluated on every directory operation; it
// never caches a verdict across calls, so policy changes take effect on
// the next operation.
type Gate struct {
	// blockPublic denies all access to unauthenticated, non-owning,
	// non-observing actors regardless of per-channel policy.
	blockPublic bool
}

// NewGate creates a permission gate with the given global policy.
func NewGate(blockPublic bool) *Gate {
	return &Gate{blockPublic: blockPublic}
}

// CanView reports whether the actor may list and read within the owner's
// namespace.
//
// A nil owner is the root context (the listing of all owners), which is
// always viewable. The owner itself always passes. Otherwise the global
// block-public switch is checked first, then the channel's configured
// access policy: a configured policy requires an explicit view_storage
// grant; no policy means no per-channel restriction.
func (g *Gate) CanView(actor *Actor, owner *attachment.Channel) bool {
	if owner == nil {
		return true
	}
	if actor != nil && actor.ID == owner.ID {
		return true
	}
	if g.blockedPublic(actor) {
		return false
	}
	if owner.Policy != nil {
		return actor != nil && owner.Policy.Permits(actor.ID, attachment.CapabilityViewStorage)
	}
	return true
}

// CanWrite reports whether the actor may create and rename within the
// owner's namespace.
//
// Nothing is writable without a resolved owner. The owner itself always
// passes; other actors need an explicit write_storage grant when the
// channel carries a policy.
func (g *Gate) CanWrite(actor *Actor, owner *attachment.Channel) bool {
	if owner == nil {
		return false
	}
	if actor != nil && actor.ID == owner.ID {
		return true
	}
	if g.blockedPublic(actor) {
		return false
	}
	if owner.Policy != nil {
		return actor != nil && owner.Policy.Permits(actor.ID, attachment.CapabilityWriteStorage)
	}
	return true
}

// blockedPublic applies the global block-public switch: it denies actors
// that are neither authenticated nor observing.
func (g *Gate) blockedPublic(actor *Actor) bool {
	if !g.blockPublic {
		return false
	}
	return actor == nil || (!actor.Authenticated() && !actor.Observer)
}
