// Package resolver routes identity lookups to the local store or to the
// external source bound to the query attribute or municipality.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	userctl "github.com/authdata/authdata/internal/db/controller/user"
	"github.com/authdata/authdata/internal/db/models"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/source"
)

// ErrNotFound is returned when neither the local store nor a source knows the user.
var ErrNotFound = source.ErrNotFound

// lookupTimeout bounds a shared source lookup.
const lookupTimeout = 2 * time.Minute

// Bindings opens sources by binding, attribute or municipality name.
type Bindings interface {
	Has(name string) bool
	Open(name string) (source.Source, error)
	AttributeSource(attribute string) (string, error)
	ForMunicipality(municipality string) (source.Source, error)
}

// Resolver answers user queries. It is safe for concurrent use, sources are
// opened per call.
type Resolver struct {
	db       *gorm.DB
	bindings Bindings
	lookups  singleflight.Group
}

// New creates a resolver.
func New(db *gorm.DB, bindings Bindings) *Resolver {
	return &Resolver{db: db, bindings: bindings}
}

// Query resolves the user holding attribute=value.
//
// A local user with that active attribute wins. Otherwise the source bound to
// the attribute is asked and the user's active local attributes are appended
// to its answer.
func (r *Resolver) Query(ctx context.Context, attribute, value string) (*identity.Record, error) {
	db := r.db.WithContext(ctx)

	user, err := userctl.GetByAttribute(db, attribute, value)
	switch {
	case err == nil:
		return r.render(ctx, user)
	case errors.Is(err, userctl.ErrMultipleUsersFound):
		log.Warn().Str("attribute", attribute).Msg("attribute value is held by several users")

		return nil, ErrNotFound
	case !errors.Is(err, userctl.ErrUserNotFound):
		return nil, err
	}

	name, err := r.bindings.AttributeSource(attribute)
	if err != nil {
		if errors.Is(err, source.ErrUnboundSource) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return r.external(ctx, name, attribute, value)
}

// QueryUsername resolves a user by OID.
func (r *Resolver) QueryUsername(ctx context.Context, username string) (*identity.Record, error) {
	user, err := userctl.GetByUsername(r.db.WithContext(ctx), username)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) || errors.Is(err, userctl.ErrUsernameEmpty) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return r.render(ctx, user)
}

// ListUsers lists users of the municipality's source, or of the local store
// when the municipality is not bound to a source.
func (r *Resolver) ListUsers(ctx context.Context, filter identity.Filter) (*identity.UserList, error) {
	if filter.Municipality != "" {
		src, err := r.bindings.ForMunicipality(filter.Municipality)

		switch {
		case err == nil:
			defer source.Close(src)

			return src.GetUserData(ctx, filter)
		case !errors.Is(err, source.ErrUnboundSource):
			return nil, err
		}
	}

	db := r.db.WithContext(ctx)

	users, err := userctl.List(db, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list local users: %w", err)
	}

	records := make([]identity.Record, 0, len(users))

	for i := range users {
		rec, err := userctl.Record(db, &users[i])
		if err != nil {
			return nil, fmt.Errorf("failed to render user %s: %w", users[i].Username, err)
		}

		records = append(records, *rec)
	}

	return identity.NewUserList(records), nil
}

// DisableAttribute soft deletes a user attribute.
func (r *Resolver) DisableAttribute(ctx context.Context, id uint64) error {
	return userctl.DisableAttribute(r.db.WithContext(ctx), id)
}

// render answers for a known local user. Users provisioned from a source are
// refreshed from it, a source that is no longer configured falls back to the
// local data.
func (r *Resolver) render(ctx context.Context, user *models.User) (*identity.Record, error) {
	if user.IsExternal() {
		if r.bindings.Has(user.ExternalSource) {
			return r.external(ctx, user.ExternalSource, user.ExternalSource, user.ExternalID)
		}

		log.Warn().
			Str("event", "source.unbound").
			Str("source", user.ExternalSource).
			Str("username", user.Username).
			Msg("source is not configured, answering from the local store")
	}

	return userctl.Record(r.db.WithContext(ctx), user)
}

// external asks the source bound as name and appends the active local
// attributes of the user. Concurrent identical lookups share one source call.
// The shared call does not stop when one caller goes away, each caller only
// stops waiting for it.
func (r *Resolver) external(ctx context.Context, name, attribute, value string) (*identity.Record, error) {
	results := r.lookups.DoChan(name+"\x00"+value, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		src, err := r.bindings.Open(name)
		if err != nil {
			return nil, err
		}

		defer source.Close(src)

		return src.GetData(lookupCtx, attribute, value)
	})

	var res singleflight.Result

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}

	if res.Err != nil {
		return nil, res.Err
	}

	shared, ok := res.Val.(*identity.Record)
	if !ok || shared == nil {
		return nil, ErrNotFound
	}

	rec := shared.Clone()

	db := r.db.WithContext(ctx)

	user, err := userctl.GetByUsername(db, rec.Username)
	if errors.Is(err, userctl.ErrUserNotFound) {
		return rec, nil
	}

	if err != nil {
		return nil, err
	}

	attributes, err := userctl.ActiveAttributes(db, user.ID)
	if err != nil {
		return nil, err
	}

	rec.Attributes = append(rec.Attributes, attributes...)

	return rec, nil
}
