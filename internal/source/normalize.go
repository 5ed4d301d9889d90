package source

import (
	"context"

	"github.com/authdata/authdata/internal/identity"
)

// Normalize turns a raw entry into the canonical record. The username is
// replaced by its OID and every role entry becomes one role assignment with
// school, municipality and role translated through codes.
func Normalize[U, R any](x Extractor[U, R], oid func(string) string, entry U, codes Codes) identity.Record {
	roleEntries := x.RoleEntries(entry)

	rec := identity.Record{
		Username:   oid(x.Username(entry)),
		FirstName:  x.FirstName(entry),
		LastName:   x.LastName(entry),
		Roles:      make([]identity.RoleAssignment, 0, len(roleEntries)),
		Attributes: []identity.Attribute{},
	}

	for _, r := range roleEntries {
		rec.Roles = append(rec.Roles, identity.RoleAssignment{
			School:       code(codes.School, x.School(entry, r)),
			Role:         code(codes.Role, x.Role(entry, r)),
			Group:        x.Group(entry, r),
			Municipality: code(codes.Municipality, x.Municipality(entry, r)),
		})
	}

	return rec
}

// Resolve normalizes entry and provisions the resulting OID under the
// binding of b.
func Resolve[U, R any](ctx context.Context, b Base, x Extractor[U, R], codes Codes, entry U) (identity.Record, error) {
	rec := Normalize(x, b.OID, entry, codes)

	if err := b.Provision(ctx, rec.Username, x.ExternalID(entry)); err != nil {
		return identity.Record{}, err
	}

	return rec, nil
}

// ResolveAll resolves every entry into one listing page.
func ResolveAll[U, R any](ctx context.Context, b Base, x Extractor[U, R], codes Codes, entries []U) (*identity.UserList, error) {
	records := make([]identity.Record, 0, len(entries))

	for _, entry := range entries {
		rec, err := Resolve(ctx, b, x, codes, entry)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return identity.NewUserList(records), nil
}
