package app

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/mockapi"
	"github.com/five82/stockroom/internal/ui"
)

func testOptions(t *testing.T) (Options, *mockapi.Server) {
	t.Helper()
	srv := mockapi.New(mockapi.DefaultSeed())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("session_path = %q\nlog_file = %q\n",
		filepath.Join(dir, "session.toml"), filepath.Join(dir, "stockroom.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	return Options{
		ConfigPath: cfgPath,
		PrefsPath:  filepath.Join(dir, "prefs.toml"),
		APIBase:    ts.URL + "/api",
	}, srv
}

func TestLoginPersistsAcrossSetups(t *testing.T) {
	opts, _ := testOptions(t)
	ctx := context.Background()

	_, err := WhoAmI(opts)
	assert.ErrorIs(t, err, ErrNoSession)

	cred, err := Login(ctx, opts, "acme", "acme")
	require.NoError(t, err)
	assert.Equal(t, mockapi.RoleCompany, cred.Role)

	who, err := WhoAmI(opts)
	require.NoError(t, err)
	assert.Equal(t, cred, who)

	had, err := Logout(opts)
	require.NoError(t, err)
	assert.True(t, had)

	_, err = WhoAmI(opts)
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestLoginFailure(t *testing.T) {
	opts, _ := testOptions(t)

	_, err := Login(context.Background(), opts, "acme", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, api.StatusCode(err))
}

func TestRegisterThenLogin(t *testing.T) {
	opts, _ := testOptions(t)
	ctx := context.Background()

	require.NoError(t, Register(ctx, opts, api.RegisterRequest{Username: "initech", Password: "tps-report", CompanyName: "Initech"}))
	_, err := Login(ctx, opts, "initech", "tps-report")
	require.NoError(t, err)
}

func TestEphemeralSessionIsNotPersisted(t *testing.T) {
	opts, _ := testOptions(t)
	opts.Ephemeral = true

	_, err := Login(context.Background(), opts, "acme", "acme")
	require.NoError(t, err)

	_, err = WhoAmI(opts)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSetup_RevokedSessionSignalsExpiry(t *testing.T) {
	opts, srv := testOptions(t)
	ctx := context.Background()

	env, err := Setup(opts)
	require.NoError(t, err)
	t.Cleanup(env.Close)
	assert.Equal(t, ui.LocationLogin, env.Location.Get())

	_, err = env.Client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)
	require.NoError(t, env.Store.RefreshAll(ctx))

	env.Location.Set("/products")
	srv.Revoke()

	_, err = env.Store.Products.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, api.IsSessionInvalidated(err))
	assert.False(t, env.HasSession())

	select {
	case <-env.Expired:
	default:
		t.Fatal("expected expiry notification")
	}
}

func TestSetup_NoInvalidationOnLoginScreen(t *testing.T) {
	opts, srv := testOptions(t)
	ctx := context.Background()

	env, err := Setup(opts)
	require.NoError(t, err)
	t.Cleanup(env.Close)

	_, err = env.Client.Login(ctx, api.LoginRequest{Username: "acme", Password: "acme"})
	require.NoError(t, err)
	srv.Revoke()

	_, err = env.Store.Sales.Fetch(ctx)
	require.Error(t, err)
	assert.False(t, api.IsSessionInvalidated(err))
	assert.True(t, env.HasSession())
}
