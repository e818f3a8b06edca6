package mockapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/session"
	"github.com/five82/stockroom/internal/state"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(DefaultSeed(), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newTestClient(t *testing.T, ts *httptest.Server, opts ...api.Option) (*api.Client, *session.Memory) {
	t.Helper()
	creds := &session.Memory{}
	opts = append([]api.Option{api.WithCredentials(creds)}, opts...)
	c, err := api.NewClient(ts.URL+"/api", opts...)
	require.NoError(t, err)
	return c, creds
}

func TestServer_LoginAndRefreshEverything(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, creds := newTestClient(t, ts)
	ctx := context.Background()

	cred, err := client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)
	assert.Equal(t, RoleCompany, cred.Role)
	stored, ok := creds.Get()
	require.True(t, ok)
	assert.Equal(t, cred.Token, stored.Token)

	store := state.NewStore(client, nil)
	require.NoError(t, store.RefreshAll(ctx))

	snap := store.Snapshot()
	require.Len(t, snap.Categories.Items, 2)
	require.Len(t, snap.Products.Items, 2)
	assert.Equal(t, "Fasteners", snap.CategoryName(snap.Products.Items[0].CategoryID))
	require.Len(t, snap.Sales.Items, 1)
	assert.InDelta(t, 20.0, snap.Sales.Items[0].Total, 0.001)
	require.Len(t, snap.Purchases.Items, 1)
}

func TestServer_BadPassword(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, creds := newTestClient(t, ts)

	_, err := client.Login(context.Background(), api.LoginRequest{Username: "acme", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))
	assert.False(t, api.IsSessionInvalidated(err), "auth paths never invalidate")
	_, ok := creds.Get()
	assert.False(t, ok)
}

func TestServer_RegisterThenDuplicate(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, _ := newTestClient(t, ts)
	ctx := context.Background()

	req := api.RegisterRequest{Username: "globex", Password: "secret", CompanyName: "Globex"}
	require.NoError(t, client.Register(ctx, req))

	err := client.Register(ctx, req)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))

	cred, err := client.Login(ctx, api.LoginRequest{Username: "globex", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, RoleCompany, cred.Role)
}

func TestServer_CRUDThroughCollections(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, _ := newTestClient(t, ts)
	ctx := context.Background()
	_, err := client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)

	store := state.NewStore(client, nil)
	_, err = store.Categories.Fetch(ctx)
	require.NoError(t, err)

	added, err := store.Categories.Add(ctx, api.CategoryInput{Name: "Paint"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), added.ID)

	updated, err := store.Categories.Update(ctx, added.ID, api.CategoryInput{Name: "Paints"})
	require.NoError(t, err)
	assert.Equal(t, "Paints", updated.Name)

	removed, err := store.Categories.Remove(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	names := []string{}
	for _, c := range store.Categories.Snapshot().Items {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Tools", "Paints"}, names)

	_, err = store.Categories.Remove(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	assert.Len(t, store.Categories.Snapshot().Items, 2)
}

func TestServer_ServerComputesLineTotal(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, _ := newTestClient(t, ts)
	ctx := context.Background()
	_, err := client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)

	in := api.NewLineInput("Claw hammer", 3, 14.5)
	in.Total = 1
	var sale api.Sale
	require.NoError(t, client.Do(ctx, http.MethodPost, "/sales", in, &sale))
	assert.InDelta(t, 43.5, sale.Total, 0.001)
}

func TestServer_ValidationErrorsAreBadRequest(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, _ := newTestClient(t, ts)
	ctx := context.Background()
	_, err := client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)

	err = client.Do(ctx, http.MethodPost, "/products", api.ProductInput{Name: "x"}, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
	assert.Equal(t, "sku is required", api.Message(err))

	err = client.Do(ctx, http.MethodPut, "/sales/abc", api.NewLineInput("x", 1, 1), nil)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
}

func TestServer_RevokedTokenInvalidatesSession(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t)
	expired := make(chan struct{}, 1)
	client, creds := newTestClient(t, ts, api.WithSessionExpired(func() { expired <- struct{}{} }))
	ctx := context.Background()
	_, err := client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)

	assert.Equal(t, 1, srv.Revoke())

	store := state.NewStore(client, nil)
	_, err = store.Products.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, api.IsSessionInvalidated(err))
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))
	_, ok := creds.Get()
	assert.False(t, ok)

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("session-expired callback not fired")
	}

	snap := store.Products.Snapshot()
	assert.False(t, snap.Loading)
	assert.Error(t, snap.Err)
}

func TestServer_ExpiredToken(t *testing.T) {
	t.Parallel()
	var offset atomic.Int64
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base.Add(time.Duration(offset.Load())) }
	srv, ts := newTestServer(t, WithClock(clock), WithTokenTTL(time.Minute))

	token, err := srv.Issue("acme")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/categories", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	offset.Store(int64(2 * time.Minute))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_AdminRoutesRequireAdmin(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t)

	call := func(user string) int {
		token, err := srv.Issue(user)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/admin/companies", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusForbidden, call("acme"))
	assert.Equal(t, http.StatusOK, call("admin"))
}

func TestServer_DisabledCompanyCannotLogin(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	client, creds := newTestClient(t, ts)

	_, err := client.Login(context.Background(), api.LoginRequest{Username: "hooli", Password: "hooli"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))
	assert.Equal(t, "account is disabled", api.Message(err))
	_, ok := creds.Get()
	assert.False(t, ok)
}

func TestServer_CompanyStatusToggle(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	ctx := context.Background()

	admin, adminCreds := newTestClient(t, ts)
	_, err := admin.Login(ctx, api.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	store := state.NewStore(admin, nil, state.WithCredentials(adminCreds))
	require.NoError(t, store.RefreshAll(ctx))

	companies := store.Companies.Snapshot().Items
	require.Len(t, companies, 2)
	assert.Equal(t, api.Company{ID: 2, Username: "acme", CompanyName: "Acme Supplies", Role: RoleCompany, Active: true}, companies[0])
	assert.False(t, companies[1].Active)
	assert.False(t, store.Categories.Snapshot().Loaded)

	acme, _ := newTestClient(t, ts)
	_, err = acme.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)

	got, err := store.SetCompanyActive(ctx, 2, false)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// deactivation ends acme's open session
	err = acme.Do(ctx, http.MethodGet, "/categories", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))
	_, err = acme.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	_, err = store.SetCompanyActive(ctx, 3, true)
	require.NoError(t, err)
	hooli, _ := newTestClient(t, ts)
	cred, err := hooli.Login(ctx, api.LoginRequest{Username: "hooli", Password: "hooli"})
	require.NoError(t, err)
	assert.Equal(t, RoleCompany, cred.Role)

	assert.Equal(t, 1, store.Snapshot().Dashboard().ActiveCompanies)
}

func TestServer_CompanyStatusRejectsUnknownAndAdmin(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	ctx := context.Background()
	admin, adminCreds := newTestClient(t, ts)
	_, err := admin.Login(ctx, api.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	store := state.NewStore(admin, nil, state.WithCredentials(adminCreds))

	_, err = store.SetCompanyActive(ctx, 99, false)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	_, err = store.SetCompanyActive(ctx, 1, false)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
	assert.Equal(t, "user is not a company", api.Message(err))

	_, ok := adminCreds.Get()
	assert.True(t, ok, "client errors keep the admin signed in")
}

func TestServer_RegisteredCompanyIsListed(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	ctx := context.Background()
	client, creds := newTestClient(t, ts)
	require.NoError(t, client.Register(ctx, api.RegisterRequest{Username: "globex", Password: "pw", CompanyName: "Globex"}))

	_, err := client.Login(ctx, api.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	store := state.NewStore(client, nil, state.WithCredentials(creds))
	companies, err := store.Companies.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 3)
	assert.Equal(t, "Globex", companies[2].CompanyName)
	assert.True(t, companies[2].Active)
}

func TestServer_MissingBearer(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoadSeed(t *testing.T) {
	path := t.TempDir() + "/seed.yaml"
	content := strings.Join([]string{
		"users:",
		"  - {username: ops, password: pw, role: admin}",
		"categories:",
		"  - name: Widgets",
		"products:",
		"  - {name: Sprocket, category: 1, sku: W-1, price: 2.5, qty: 3}",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	srv := New(seed)
	assert.Equal(t, Counts{Categories: 1, Products: 1}, srv.Counts())

	_, err = srv.Issue("ops")
	require.NoError(t, err)
	_, err = LoadSeed(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}
