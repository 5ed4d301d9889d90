package source

import (
	"context"
	"fmt"

	"github.com/authdata/authdata/internal/identity"
)

// Base carries what every adapter has in common. Adapters embed it and
// override the lookups they support, the defaults report ErrNotImplemented.
type Base struct {
	name        string
	oid         identity.OIDGenerator
	provisioner Provisioner
}

// NewBase creates the shared adapter state.
func NewBase(name string, oid identity.OIDGenerator, provisioner Provisioner) Base {
	return Base{name: name, oid: oid, provisioner: provisioner}
}

// Name implements Source.
func (b Base) Name() string {
	return b.name
}

// OID implements Source.
func (b Base) OID(username string) string {
	return b.oid.OID(username)
}

// GetData implements Source.
func (b Base) GetData(context.Context, string, string) (*identity.Record, error) {
	return nil, fmt.Errorf("%s get data: %w", b.name, ErrNotImplemented)
}

// GetUserData implements Source.
func (b Base) GetUserData(context.Context, identity.Filter) (*identity.UserList, error) {
	return nil, fmt.Errorf("%s get user data: %w", b.name, ErrNotImplemented)
}

// Provision records that oid was resolved from this source as externalID.
func (b Base) Provision(ctx context.Context, oid, externalID string) error {
	if b.provisioner == nil {
		return fmt.Errorf("%s: %w", b.name, ErrNoProvisioner)
	}

	if err := b.provisioner.ProvisionUser(ctx, oid, externalID, b.name); err != nil {
		return fmt.Errorf("%s provision %s: %w", b.name, oid, err)
	}

	return nil
}
