package namespace

// Actor is the opaque acting-identity descriptor supplied to every
// namespace operation.
//
// Authentication happens outside this core: whoever constructs the Actor
// has already established who is acting. An empty ID means the actor is
// unauthenticated (public access).
//
// Resolution populates the Owner fields as a side effect: resolving a path
// is also authentication-context population, a deliberate cross-component
// coupling. The populated fields let the transport shell log and bill
// against the resolved owner without re-resolving.
type Actor struct {
	// ID is the acting identity, or empty for unauthenticated access.
	ID string

	// Observer marks an authenticated identity acting on a namespace it
	// does not own. Observers pass the block-public switch but are still
	// subject to the owner's access policy.
	Observer bool

	// OwnerID and OwnerHandle identify the channel whose namespace the
	// actor is operating in. Populated by Service.Resolve.
	OwnerID     string
	OwnerHandle string
}

// IsOwner reports whether the actor is the resolved owner itself.
func (a *Actor) IsOwner() bool {
	return a.ID != "" && a.ID == a.OwnerID
}

// Authenticated reports whether the actor carries an established identity.
func (a *Actor) Authenticated() bool {
	return a.ID != ""
}
