package resolver_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/db/models"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/provision"
	"github.com/authdata/authdata/internal/resolver"
	"github.com/authdata/authdata/internal/source"
)

// directory is an in memory source keyed by source local id.
type directory struct {
	mu    sync.Mutex
	users map[string]identity.Record
	calls int
}

func (d *directory) get(id string) (identity.Record, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	rec, ok := d.users[id]

	return rec, ok
}

type memorySource struct {
	source.Base
	dir *directory
}

func (s memorySource) GetData(ctx context.Context, _, value string) (*identity.Record, error) {
	rec, ok := s.dir.get(value)
	if !ok {
		return nil, source.ErrNotFound
	}

	rec.Username = s.OID(rec.Username)

	if err := s.Provision(ctx, rec.Username, value); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (s memorySource) GetUserData(context.Context, identity.Filter) (*identity.UserList, error) {
	records := make([]identity.Record, 0, len(s.dir.users))
	for _, rec := range s.dir.users {
		rec.Username = s.OID(rec.Username)
		records = append(records, rec)
	}

	return identity.NewUserList(records), nil
}

// gate holds slowSource lookups until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

// slowSource answers like memorySource once its gate opens and gives up when
// its context ends first.
type slowSource struct {
	memorySource
	gate *gate
}

func (s slowSource) GetData(ctx context.Context, attribute, value string) (*identity.Record, error) {
	s.gate.entered <- struct{}{}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.gate.release:
	}

	return s.memorySource.GetData(ctx, attribute, value)
}

// brokenSource implements none of the lookups.
type brokenSource struct {
	source.Base
}

type env struct {
	db       *gorm.DB
	dir      *directory
	resolver *resolver.Resolver
	oid      identity.OIDGenerator
	gate     *gate
}

func setup(t *testing.T) *env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	dir := &directory{users: map[string]identity.Record{
		"42": {
			Username:  "bar",
			FirstName: "Ldap",
			LastName:  "Opettaja",
			Roles:     []identity.RoleAssignment{{School: "00001", Role: identity.RoleTeacher, Municipality: "1234567-8"}},
		},
	}}

	oid, err := identity.NewOIDGenerator("memory", 0)
	require.NoError(t, err)

	memoryKind := source.Kind{
		Name: "memory",
		New: func(name string, _ config.Source, e source.Env) (source.Source, error) {
			return memorySource{Base: source.NewBase(name, oid, e.Provisioner), dir: dir}, nil
		},
	}

	brokenKind := source.Kind{
		Name: "broken",
		New: func(name string, _ config.Source, e source.Env) (source.Source, error) {
			return brokenSource{Base: source.NewBase(name, oid, e.Provisioner)}, nil
		},
	}

	slow := &gate{entered: make(chan struct{}, 8), release: make(chan struct{})}

	slowKind := source.Kind{
		Name: "slow",
		New: func(name string, _ config.Source, e source.Env) (source.Source, error) {
			base := source.NewBase(name, oid, e.Provisioner)

			return slowSource{memorySource: memorySource{Base: base, dir: dir}, gate: slow}, nil
		},
	}

	registry := source.NewRegistry()
	require.NoError(t, registry.Register(memoryKind, brokenKind, slowKind))

	bindings, err := registry.Bind(&config.Config{
		Sources: map[string]config.Source{
			"mem":    {Kind: "memory"},
			"broken": {Kind: "broken"},
			"slow":   {Kind: "slow"},
		},
		Bindings: config.Bindings{
			Attributes:     map[string]string{"mem": "mem", "broken_id": "broken", "slow_id": "slow"},
			Municipalities: map[string]string{"KuntaYksi": "mem", "Rikki": "broken"},
		},
	}, source.Env{Provisioner: provision.New(db)})
	require.NoError(t, err)

	return &env{db: db, dir: dir, resolver: resolver.New(db, bindings), oid: oid, gate: slow}
}

// localUser creates a purely local teacher of "Keskustan koulu".
func (e *env) localUser(t *testing.T) models.User {
	t.Helper()

	local, err := provision.EnsureSource(e.db, models.LocalSourceName)
	require.NoError(t, err)

	role := models.Role{Name: identity.RoleTeacher}
	require.NoError(t, e.db.Create(&role).Error)

	municipality := models.Municipality{Name: "Esimerkkikunta", MunicipalityID: "7654321-0", SourceID: local.ID}
	require.NoError(t, e.db.Create(&municipality).Error)

	school := models.School{Name: "Keskustan koulu", SchoolID: "00042", MunicipalityID: municipality.ID, SourceID: local.ID}
	require.NoError(t, e.db.Create(&school).Error)

	user := models.User{Username: "MPASSOID.local", FirstName: "Liisa", LastName: "Local"}
	require.NoError(t, e.db.Create(&user).Error)

	require.NoError(t, e.db.Create(&models.Attendance{
		UserID: user.ID, SchoolID: school.ID, RoleID: role.ID, Group: "7A", SourceID: local.ID,
	}).Error)

	attribute := models.Attribute{Name: "facebook_id"}
	require.NoError(t, e.db.Create(&attribute).Error)
	require.NoError(t, e.db.Create(&models.UserAttribute{
		UserID: user.ID, AttributeID: attribute.ID, Value: "liisa-fb", SourceID: local.ID,
	}).Error)

	return user
}

func TestQueryExternal(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	rec, err := e.resolver.Query(ctx, "mem", "42")
	require.NoError(t, err)

	assert.Equal(t, e.oid.OID("bar"), rec.Username)
	assert.Equal(t, "Ldap", rec.FirstName)
	assert.Equal(t, []identity.Attribute{{Name: "mem", Value: "42"}}, rec.Attributes)
	assert.Equal(t, 1, e.dir.calls)

	var user models.User
	require.NoError(t, e.db.Where("username = ?", rec.Username).First(&user).Error)
	assert.Equal(t, "mem", user.ExternalSource)
	assert.Equal(t, "42", user.ExternalID)

	// the user is now known locally and is refreshed from its source
	again, err := e.resolver.Query(ctx, "mem", "42")
	require.NoError(t, err)
	assert.Equal(t, rec, again)
	assert.Equal(t, 2, e.dir.calls)

	byName, err := e.resolver.QueryUsername(ctx, rec.Username)
	require.NoError(t, err)
	assert.Equal(t, rec, byName)
	assert.Equal(t, 3, e.dir.calls)

	var count int64
	require.NoError(t, e.db.Model(&models.UserAttribute{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestQueryNotFound(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.resolver.Query(ctx, "mem", "404")
	require.ErrorIs(t, err, resolver.ErrNotFound)

	_, err = e.resolver.Query(ctx, "unbound", "42")
	require.ErrorIs(t, err, resolver.ErrNotFound)
	assert.Equal(t, 1, e.dir.calls)

	_, err = e.resolver.QueryUsername(ctx, "MPASSOID.nobody")
	require.ErrorIs(t, err, resolver.ErrNotFound)
}

func TestQueryLocalUser(t *testing.T) {
	e := setup(t)
	e.localUser(t)

	want := &identity.Record{
		Username:   "MPASSOID.local",
		FirstName:  "Liisa",
		LastName:   "Local",
		Roles:      []identity.RoleAssignment{{School: "00042", Role: identity.RoleTeacher, Group: "7A", Municipality: "7654321-0"}},
		Attributes: []identity.Attribute{{Name: "facebook_id", Value: "liisa-fb"}},
	}

	rec, err := e.resolver.Query(context.Background(), "facebook_id", "liisa-fb")
	require.NoError(t, err)
	assert.Equal(t, want, rec)

	rec, err = e.resolver.QueryUsername(context.Background(), "MPASSOID.local")
	require.NoError(t, err)
	assert.Equal(t, want, rec)
	assert.Zero(t, e.dir.calls)
}

func TestQueryUnconfiguredSourceFallsBackToLocal(t *testing.T) {
	e := setup(t)

	require.NoError(t, provision.New(e.db).ProvisionUser(context.Background(), "MPASSOID.gone", "7", "gone"))

	rec, err := e.resolver.QueryUsername(context.Background(), "MPASSOID.gone")
	require.NoError(t, err)
	assert.Equal(t, "MPASSOID.gone", rec.Username)
	assert.Empty(t, rec.Roles)
	assert.Equal(t, []identity.Attribute{{Name: "gone", Value: "7"}}, rec.Attributes)
}

func TestNotImplementedIsFatal(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.resolver.Query(ctx, "broken_id", "1")
	require.ErrorIs(t, err, source.ErrNotImplemented)

	_, err = e.resolver.ListUsers(ctx, identity.Filter{Municipality: "rikki"})
	require.ErrorIs(t, err, source.ErrNotImplemented)
}

func TestListUsers(t *testing.T) {
	e := setup(t)
	e.localUser(t)
	ctx := context.Background()

	list, err := e.resolver.ListUsers(ctx, identity.Filter{Municipality: "kuntayksi", School: "LdapKoulu1"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, e.oid.OID("bar"), list.Results[0].Username)

	list, err = e.resolver.ListUsers(ctx, identity.Filter{Municipality: "esimerkkikunta"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "MPASSOID.local", list.Results[0].Username)
	assert.Nil(t, list.Next)
	assert.Nil(t, list.Previous)

	list, err = e.resolver.ListUsers(ctx, identity.Filter{Municipality: "Nowhere"})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Results)

	list, err = e.resolver.ListUsers(ctx, identity.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}

func TestDisableAttribute(t *testing.T) {
	e := setup(t)
	e.localUser(t)
	ctx := context.Background()

	var row models.UserAttribute
	require.NoError(t, e.db.First(&row).Error)

	require.NoError(t, e.resolver.DisableAttribute(ctx, row.ID))

	_, err := e.resolver.Query(ctx, "facebook_id", "liisa-fb")
	require.ErrorIs(t, err, resolver.ErrNotFound)

	var count int64
	require.NoError(t, e.db.Model(&models.UserAttribute{}).Where("id = ?", row.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rows are never deleted")
}

func TestConcurrentQueries(t *testing.T) {
	e := setup(t)

	var wg sync.WaitGroup

	errs := make(chan error, 8)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := e.resolver.Query(context.Background(), "mem", "42")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var users int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestCancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	e := setup(t)

	cancelled, cancel := context.WithCancel(context.Background())

	type result struct {
		rec *identity.Record
		err error
	}

	first := make(chan result, 1)
	second := make(chan result, 1)

	go func() {
		rec, err := e.resolver.Query(cancelled, "slow_id", "42")
		first <- result{rec, err}
	}()

	<-e.gate.entered

	go func() {
		rec, err := e.resolver.Query(context.Background(), "slow_id", "42")
		second <- result{rec, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	got := <-first
	require.ErrorIs(t, got.err, context.Canceled)

	close(e.gate.release)

	got = <-second
	require.NoError(t, got.err)
	assert.Equal(t, e.oid.OID("bar"), got.rec.Username)
	assert.Equal(t, []identity.Attribute{{Name: "slow", Value: "42"}}, got.rec.Attributes)
}
