// Package ldapsource implements the directory adapters: a generic,
// configuration driven LDAP source and the site specific kinds built on it.
package ldapsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/source"
)

const encodingBase64 = "base64"

// ErrInvalidValue is returned for a query value that can't be decoded.
var ErrInvalidValue = errors.New("invalid query value")

// Source is an LDAP backed source. It binds lazily on the first query and
// keeps the connection until Close.
type Source struct {
	source.Base

	cfg     config.LDAP
	codes   source.Codes
	extract source.Extractor[*ldap.Entry, entryRole]
	dial    Dialer

	conn Conn
}

// New creates an unconnected source.
func New(base source.Base, cfg config.LDAP, codes source.Codes, dial Dialer) *Source {
	if dial == nil {
		dial = Dial
	}

	return &Source{
		Base:    base,
		cfg:     cfg,
		codes:   codes,
		extract: extractor{cfg: cfg},
		dial:    dial,
	}
}

// connect dials and binds once. A bind failure fails the current request.
func (s *Source) connect(ctx context.Context) (Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}

	conn, err := s.dial(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	if err = conn.Bind(s.cfg.Username, s.cfg.Password); err != nil {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}

		return nil, fmt.Errorf("%s: failed to bind as %s: %w", s.Name(), s.cfg.Username, err)
	}

	s.conn = conn

	return conn, nil
}

// search runs a subtree search below baseDN.
func (s *Source) search(ctx context.Context, baseDN, filter string) ([]*ldap.Entry, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	req := ldap.NewSearchRequest(
		baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		s.cfg.Timeout,
		false,
		filter,
		extractor{cfg: s.cfg}.attributes(),
		nil,
	)

	log.Debug().Str("source", s.Name()).Str("base", baseDN).Str("filter", filter).Msg("ldap search")

	result, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: search failed: %w", s.Name(), err)
	}

	return result.Entries, nil
}

// GetData implements source.Source. The query attribute does not change the
// search, the user filter template decides which attribute value is matched.
func (s *Source) GetData(ctx context.Context, _, value string) (*identity.Record, error) {
	filter, err := userFilter(s.cfg, value)
	if err != nil {
		log.Warn().
			Err(err).
			Str("event", "ldap.invalid_value").
			Str("source", s.Name()).
			Msg("query value can't be decoded")

		return nil, fmt.Errorf("%s: %w", s.Name(), source.ErrNotFound)
	}

	entries, err := s.search(ctx, s.cfg.BaseDN, filter)
	if err != nil {
		return nil, err
	}

	entry, ok := source.First(s.Name(), value, entries)
	if !ok {
		return nil, source.ErrNotFound
	}

	rec, err := source.Resolve(ctx, s.Base, s.extract, s.codes, entry)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// GetUserData implements source.Source. School and group are the recognized
// filters, all matches are returned in one page.
func (s *Source) GetUserData(ctx context.Context, filter identity.Filter) (*identity.UserList, error) {
	baseDN, ldapFilter := listQuery(s.cfg, filter.School, filter.Group)

	entries, err := s.search(ctx, baseDN, ldapFilter)
	if err != nil {
		return nil, err
	}

	return source.ResolveAll(ctx, s.Base, s.extract, s.codes, entries)
}

// Close closes the directory connection if one was opened.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil

	return err
}
