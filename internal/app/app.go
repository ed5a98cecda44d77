package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"example.com/dictation/internal/api"
	"example.com/dictation/internal/config"
	"example.com/dictation/internal/credentials"
	"example.com/dictation/internal/guest"
	"example.com/dictation/internal/protocol"
	"example.com/dictation/internal/wsclient"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	store   credentials.Store
	closers []func() error

	api       *api.Client
	guestOpts guest.Options

	mu       sync.Mutex
	identity guest.Identity

	ws      *wsclient.Manager
	session *protocol.Session
}

type Options struct {
	Dialer wsclient.Dialer   // optional; defaults to a gorilla/websocket dialer
	Store  credentials.Store // optional; overrides cfg.Credentials.Store
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		cfg:       cfg,
		log:       log,
		api:       api.New(cfg.API.BaseURL, cfg.API.Timeout, log),
		guestOpts: guest.Options{LanguageID: cfg.Guest.LanguageID, Log: log},
	}

	// --- Credential store ---
	a.store = opts.Store
	if a.store == nil {
		store, closeStore, err := OpenStore(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closers = append(a.closers, closeStore)
	}

	// --- Guest identity ---
	// A failed registration is not fatal: the identity stays local and the
	// credential source retries on the next connect.
	id, err := guest.Bootstrap(ctx, a.store, a.api, a.guestOpts)
	if err != nil {
		log.Warn("guest registration failed, continuing offline", "err", err)
	}
	a.identity = id

	// --- Connection + session ---
	dialer := opts.Dialer
	if dialer == nil {
		dialer = wsclient.WebSocketDialer{HandshakeTimeout: cfg.WS.HandshakeTimeout}
	}
	a.ws = wsclient.NewManager(wsclient.Config{
		URL:                  cfg.WS.URL,
		MaxReconnectAttempts: cfg.WS.MaxReconnectAttempts,
		ReconnectDelay:       cfg.WS.ReconnectDelay,
		HeartbeatInterval:    cfg.WS.HeartbeatInterval,
	}, dialer, wsclient.CredentialFunc(a.token), log)
	a.session = protocol.NewSession(a.ws, log)
	a.ws.SetHandler(a.session.HandleEnvelope)
	a.ws.SetStatusListener(a.session.OnConnectionStatus)

	return a, nil
}

// OpenStore opens the credential store named by cfg. The returned close
// function is never nil.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (credentials.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Credentials.Store {
	case "memory":
		return credentials.NewMemoryStore(), noop, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		return credentials.NewRedisStore(rdb, cfg.Credentials.Profile, cfg.Redis.CredTTL), rdb.Close, nil
	default:
		s, err := credentials.OpenSQLite(cfg.SQLite.Path, cfg.Credentials.Profile, log)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
}

// token hands the connection manager the current bearer token, retrying
// guest registration when the last attempt failed.
func (a *App) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.identity.Registered() {
		return a.identity.Token, nil
	}
	id, err := guest.Bootstrap(ctx, a.store, a.api, a.guestOpts)
	if err != nil {
		return "", err
	}
	a.identity = id
	return id.Token, nil
}

// Identity returns the guest the app is running as.
func (a *App) Identity() guest.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

func (a *App) Session() *protocol.Session {
	return a.session
}

// Logout drops the stored guest, registers a new one and reconnects as it.
func (a *App) Logout(ctx context.Context) error {
	a.session.Disconnect()

	id, err := guest.Renew(ctx, a.store, a.api, a.guestOpts)
	a.mu.Lock()
	a.identity = id
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return a.session.Connect(ctx)
}

// Run connects (unless auto-connect is off) and drives the console on in
// and out until /quit, end of input or ctx cancellation.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	console := NewConsole(a.session, out, a.Logout)
	updates, unsubscribe := a.session.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.WS.AutoConnect {
		a.log.Info("connecting", "url", a.cfg.WS.URL, "user", a.Identity().Name)
		if err := a.session.Connect(gctx); err != nil {
			// The manager keeps retrying abnormal failures on its own.
			a.log.Warn("initial connect failed", "err", err)
		}
	}

	g.Go(func() error {
		console.Render(a.session.Snapshot())
		for {
			select {
			case <-gctx.Done():
				return nil
			case st, ok := <-updates:
				if !ok {
					return nil
				}
				console.Render(st)
			}
		}
	})

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		// Blocked reads on in cannot be interrupted; this goroutine ends with
		// the input.
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case err := <-readErr:
				return err
			case line := <-lines:
				if err := console.Exec(gctx, line); err != nil {
					if errors.Is(err, errQuit) {
						return nil
					}
					return err
				}
			}
		}
	})

	err := g.Wait()
	a.session.Disconnect()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
