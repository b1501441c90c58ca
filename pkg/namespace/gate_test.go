package namespace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/namespace"
)

func TestGateRootContextIsAlwaysViewableNeverWritable(t *testing.T) {
	gate := namespace.NewGate(true)

	assert.True(t, gate.CanView(nil, nil))
	assert.True(t, gate.CanView(&namespace.Actor{ID: "anyone"}, nil))
	assert.False(t, gate.CanWrite(nil, nil))
	assert.False(t, gate.CanWrite(&namespace.Actor{ID: "anyone"}, nil))
}

func TestGateOwnerAlwaysPasses(t *testing.T) {
	owner := &attachment.Channel{
		ID:     "alice-id",
		Handle: "alice",
		Policy: &attachment.AccessPolicy{Deny: []string{"alice-id"}},
	}

	// Even a self-denying policy and the block-public switch cannot lock
	// the owner out.
	gate := namespace.NewGate(true)
	actor := &namespace.Actor{ID: "alice-id"}

	assert.True(t, gate.CanView(actor, owner))
	assert.True(t, gate.CanWrite(actor, owner))
}

func TestGateBlockPublicSwitch(t *testing.T) {
	owner := &attachment.Channel{ID: "alice-id", Handle: "alice"}

	open := namespace.NewGate(false)
	closed := namespace.NewGate(true)

	anonymous := &namespace.Actor{}
	observer := &namespace.Actor{ID: "bob", Observer: true}

	// Without the switch an unrestricted channel is open to everyone.
	assert.True(t, open.CanView(nil, owner))
	assert.True(t, open.CanView(anonymous, owner))
	assert.True(t, open.CanWrite(anonymous, owner))

	// With the switch only authenticated or observing actors get through.
	assert.False(t, closed.CanView(nil, owner))
	assert.False(t, closed.CanView(anonymous, owner))
	assert.False(t, closed.CanWrite(anonymous, owner))
	assert.True(t, closed.CanView(observer, owner))
	assert.True(t, closed.CanView(&namespace.Actor{ID: "carol"}, owner))
}

func TestGateConfiguredPolicyIsClosed(t *testing.T) {
	owner := &attachment.Channel{
		ID:     "alice-id",
		Handle: "alice",
		Policy: &attachment.AccessPolicy{
			Grants: map[string][]attachment.Capability{
				"viewer": {attachment.CapabilityViewStorage},
				"editor": {attachment.CapabilityViewStorage, attachment.CapabilityWriteStorage},
				"denied": {attachment.CapabilityViewStorage},
			},
			Deny: []string{"denied"},
		},
	}
	gate := namespace.NewGate(false)

	tests := []struct {
		name     string
		actor    *namespace.Actor
		canView  bool
		canWrite bool
	}{
		{"nil actor", nil, false, false},
		{"anonymous", &namespace.Actor{}, false, false},
		{"ungranted identity", &namespace.Actor{ID: "stranger"}, false, false},
		{"view only grant", &namespace.Actor{ID: "viewer"}, true, false},
		{"full grant", &namespace.Actor{ID: "editor"}, true, true},
		{"deny overrides grant", &namespace.Actor{ID: "denied"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canView, gate.CanView(tt.actor, owner))
			assert.Equal(t, tt.canWrite, gate.CanWrite(tt.actor, owner))
		})
	}
}

// Every read path of the directory node must fail closed when view is not
// granted, before any record lookup can distinguish existing names.
func TestGateDeniedReadsAreForbiddenNotNotFound(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	alice.Policy = &attachment.AccessPolicy{
		Grants: map[string][]attachment.Capability{},
	}
	if err := f.records.Put(t.Context(), alice); err != nil {
		t.Fatal(err)
	}

	owner := ownerActor(alice)
	root, err := f.service.Resolve(t.Context(), owner, "/attach/alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := root.CreateFile(t.Context(), "secret.txt", []byte("s"), "text/plain"); err != nil {
		t.Fatal(err)
	}

	stranger := &namespace.Actor{ID: "stranger"}
	dir, err := f.service.Resolve(t.Context(), stranger, "/attach/alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = dir.ListChildren(t.Context())
	assert.True(t, attachment.IsCode(err, attachment.ErrForbidden))

	_, err = dir.Child(t.Context(), "secret.txt")
	assert.True(t, attachment.IsCode(err, attachment.ErrForbidden))

	_, err = dir.Child(t.Context(), "does-not-exist")
	assert.True(t, attachment.IsCode(err, attachment.ErrForbidden))

	_, err = dir.CreateFile(t.Context(), "intrusion.txt", []byte("x"), "text/plain")
	assert.True(t, attachment.IsCode(err, attachment.ErrForbidden))
}
