// Package dreamschool implements the HTTP API source of the Dreamschool
// school information service.
//
// Failures of the API are absorbed: a broken listing is an empty listing and
// a broken lookup is a missing user. Every absorbed failure is reported as a
// source.fail_soft event.
package dreamschool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/source"
)

// Kind is the registered kind name.
const Kind = "dreamschool"

// DefaultTeacherPermission classifies a role as teacher.
const DefaultTeacherPermission = "dreamdiary.diary.supervisor"

const (
	paramID           = "id"
	paramOrganisation = "organisations__id"
	paramGroup        = "groups__title"

	defaultTimeout = 30 * time.Second
	maxBodySize    = 32 << 20
)

// ErrUnexpectedStatus is returned for non 200 responses.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// Source queries the Dreamschool user API.
type Source struct {
	source.Base

	cfg    config.HTTP
	codes  source.Codes
	orgs   organisationMap
	client *http.Client
}

// New creates a source. A nil client gets one with the configured timeout.
func New(base source.Base, cfg config.HTTP, codes source.Codes, client *http.Client) *Source {
	if client == nil {
		timeout := defaultTimeout
		if cfg.Timeout > 0 {
			timeout = time.Duration(cfg.Timeout) * time.Second
		}

		client = &http.Client{Timeout: timeout}
	}

	return &Source{
		Base:   base,
		cfg:    cfg,
		codes:  codes,
		orgs:   organisationMap(cfg.OrganisationMap),
		client: client,
	}
}

func (s *Source) extractor(municipality string) source.Extractor[user, role] {
	return extractor{
		teacherPermission: s.cfg.TeacherPermission,
		organisations:     s.orgs,
		municipality:      municipality,
	}
}

// GetData implements source.Source. The value is the Dreamschool user id.
func (s *Source) GetData(ctx context.Context, _, value string) (*identity.Record, error) {
	users, err := s.fetch(ctx, url.Values{paramID: {value}})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		source.FailSoft(s.Name(), "get_data", err)

		return nil, source.ErrNotFound
	}

	u, ok := source.First(s.Name(), value, users)
	if !ok {
		return nil, source.ErrNotFound
	}

	rec, err := source.Resolve(ctx, s.Base, s.extractor(""), s.codes, u)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// GetUserData implements source.Source. The school is translated to an
// organisation id through the organisation map and filtered server side,
// as is the group. A school missing from the map matches nobody.
func (s *Source) GetUserData(ctx context.Context, filter identity.Filter) (*identity.UserList, error) {
	params := url.Values{}

	if filter.School != "" {
		orgID, ok := s.orgs.lookup(filter.Municipality, filter.School)
		if !ok {
			log.Debug().
				Str("source", s.Name()).
				Str("municipality", filter.Municipality).
				Str("school", filter.School).
				Msg("school has no organisation id")

			return identity.EmptyUserList(), nil
		}

		params.Set(paramOrganisation, strconv.Itoa(orgID))
	}

	if filter.Group != "" {
		params.Set(paramGroup, filter.Group)
	}

	users, err := s.fetch(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		source.FailSoft(s.Name(), "get_user_data", err)

		return identity.EmptyUserList(), nil
	}

	return source.ResolveAll(ctx, s.Base, s.extractor(filter.Municipality), s.codes, users)
}

// fetch GETs the user API with params and decodes the objects listing.
func (s *Source) fetch(ctx context.Context, params url.Values) ([]user, error) {
	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	q := u.Query()
	for k, v := range params {
		q[k] = v
	}

	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if s.cfg.Username != "" {
		req.SetBasicAuth(s.cfg.Username, s.cfg.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload listing
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.Objects, nil
}

// NewKind returns the registered dreamschool kind.
func NewKind() source.Kind {
	return source.Kind{
		Name: Kind,
		Prepare: func(cfg config.Source) (config.Source, error) {
			if cfg.OID.Salt == "" {
				cfg.OID.Salt = Kind
			}

			if cfg.HTTP.TeacherPermission == "" {
				cfg.HTTP.TeacherPermission = DefaultTeacherPermission
			}

			if err := source.Validate(cfg.HTTP); err != nil {
				return cfg, err
			}

			_, err := identity.NewOIDGenerator(cfg.OID.Salt, cfg.OID.MaxLength)

			return cfg, err
		},
		New: func(name string, cfg config.Source, env source.Env) (source.Source, error) {
			oid, err := identity.NewOIDGenerator(cfg.OID.Salt, cfg.OID.MaxLength)
			if err != nil {
				return nil, err
			}

			codes := source.Codes{
				School:       source.NewCodeTable(cfg.SchoolCodes),
				Municipality: source.NewCodeTable(cfg.MunicipalityCodes),
			}

			return New(source.NewBase(name, oid, env.Provisioner), cfg.HTTP, codes, env.HTTPClient), nil
		},
	}
}
