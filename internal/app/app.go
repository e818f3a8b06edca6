package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/config"
	"github.com/five82/stockroom/internal/logging"
	"github.com/five82/stockroom/internal/prefs"
	"github.com/five82/stockroom/internal/session"
	"github.com/five82/stockroom/internal/state"
	"github.com/five82/stockroom/internal/ui"
)

// Options configure the stockroom application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/stockroom/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	APIBase    string // overrides config and environment
	Ephemeral  bool   // keep the session in memory only
	Debug      bool
}

// Env is the wired set of dependencies shared by the TUI and the CLI commands.
type Env struct {
	Config   config.Config
	Logger   *zap.Logger
	Session  session.Keeper
	Client   *api.Client
	Store    *state.Store
	Location *Location
	Expired  chan struct{}
}

// Setup loads configuration and builds the client stack without starting
// anything.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if base := strings.TrimSpace(opts.APIBase); base != "" {
		cfg.APIBase = base
	}
	if opts.PollEvery > 0 {
		cfg.PollEvery = time.Duration(opts.PollEvery) * time.Second
	}
	cfg.Debug = cfg.Debug || opts.Debug

	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	var keeper session.Keeper = &session.Memory{}
	if !opts.Ephemeral {
		store, err := session.Open(cfg.SessionPath)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		logger.Debug("session store", zap.String("path", store.Path()))
		keeper = store
	}

	env := &Env{
		Config:   cfg,
		Logger:   logger,
		Session:  keeper,
		Location: NewLocation(ui.LocationLogin),
		Expired:  make(chan struct{}, 1),
	}

	client, err := api.NewClient(cfg.APIBase,
		api.WithCredentials(keeper),
		api.WithLogger(logger.Named("api")),
		api.WithLocation(env.Location.Get),
		api.WithSessionExpired(env.notifyExpired),
	)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	env.Client = client
	env.Store = state.NewStore(client, logger.Named("state"), state.WithCredentials(keeper))
	return env, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	_ = e.Logger.Sync()
}

// HasSession reports whether a credential is stored.
func (e *Env) HasSession() bool {
	_, ok := e.Session.Get()
	return ok
}

func (e *Env) notifyExpired() {
	e.Logger.Warn("session invalidated by server")
	select {
	case e.Expired <- struct{}{}:
	default:
	}
}

// Run boots the stockroom TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		env.Logger.Warn("load prefs", zap.Error(err))
	}

	env.Logger.Info("starting",
		zap.String("api_base", env.Client.BaseURL()),
		zap.Duration("poll", env.Config.PollEvery),
		zap.Bool("session", env.HasSession()))

	StartPoller(ctx, env.Store, env.Config.PollEvery, env.HasSession, env.Logger.Named("poller"))

	return ui.Run(ui.Options{
		Context:     ctx,
		Client:      env.Client,
		Store:       env.Store,
		Expired:     env.Expired,
		SetLocation: env.Location.Set,
		LogPath:     env.Config.LogFile,
		Prefs:       userPrefs,
		PrefsPath:   opts.PrefsPath,
		Logger:      env.Logger.Named("ui"),
	})
}

// Login signs in and persists the credential for later runs.
func Login(ctx context.Context, opts Options, username, password string) (session.Credential, error) {
	env, err := Setup(opts)
	if err != nil {
		return session.Credential{}, err
	}
	defer env.Close()

	cred, err := env.Client.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		env.Logger.Warn("login failed", zap.String("user", username), zap.Error(err))
		return session.Credential{}, err
	}
	env.Logger.Info("logged in", zap.String("user", username), zap.String("role", cred.Role))
	return cred, nil
}

// Register creates an account on the server.
func Register(ctx context.Context, opts Options, req api.RegisterRequest) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Client.Register(ctx, req); err != nil {
		return err
	}
	env.Logger.Info("registered", zap.String("user", req.Username))
	return nil
}

// Logout forgets the stored credential. It reports whether one existed.
func Logout(opts Options) (bool, error) {
	env, err := Setup(opts)
	if err != nil {
		return false, err
	}
	defer env.Close()

	had := env.HasSession()
	env.Client.Logout()
	return had, nil
}

// ErrNoSession is returned by WhoAmI when nobody is signed in.
var ErrNoSession = errors.New("not logged in")

// WhoAmI returns the stored credential.
func WhoAmI(opts Options) (session.Credential, error) {
	env, err := Setup(opts)
	if err != nil {
		return session.Credential{}, err
	}
	defer env.Close()

	cred, ok := env.Session.Get()
	if !ok {
		return session.Credential{}, ErrNoSession
	}
	return cred, nil
}
