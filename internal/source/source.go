// Package source defines the contract every external identity source
// implements, the helpers shared by the adapter families and the registry
// that turns configured bindings into adapter instances.
package source

import (
	"context"

	"github.com/authdata/authdata/internal/identity"
)

// Source is one configured external identity source.
//
// Instances are built per request by Bindings.Open and must not be shared
// between requests.
type Source interface {
	// Name is the binding name the source was opened under.
	Name() string

	// GetData looks up exactly one user. The attribute names the query
	// attribute that routed the request, value is the source local
	// identifier. ErrNotFound is returned when nothing matches.
	GetData(ctx context.Context, attribute, value string) (*identity.Record, error)

	// GetUserData lists users matching the recognized filters in a single,
	// unpaginated page. Unrecognized filters are ignored.
	GetUserData(ctx context.Context, filter identity.Filter) (*identity.UserList, error)

	// OID derives the canonical identifier from a source local username.
	OID(username string) string
}

// Provisioner persists resolved users into the local store.
type Provisioner interface {
	ProvisionUser(ctx context.Context, oid, externalID, externalSource string) error
}

// Extractor reads the canonical fields from a raw source entry U and from
// the role entries R it carries. Missing values are returned as "".
type Extractor[U, R any] interface {
	ExternalID(entry U) string
	Username(entry U) string
	FirstName(entry U) string
	LastName(entry U) string

	// RoleEntries returns the role carrying parts of entry.
	RoleEntries(entry U) []R

	School(entry U, role R) string
	Role(entry U, role R) string
	Group(entry U, role R) string
	Municipality(entry U, role R) string
}
