// Package guest gives a first-time user an anonymous identity and keeps it
// across launches.
package guest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/dictation/internal/api"
	"example.com/dictation/internal/auth"
	"example.com/dictation/internal/credentials"
	"example.com/dictation/internal/ident"
)

const userTypeGuest = "guest"

type Registrar interface {
	RegisterGuest(ctx context.Context, req api.GuestRegisterRequest) (api.AuthResponse, error)
}

type Identity struct {
	ID ident.ID
	// Name is what the UI shows; FullName is what the server stores, which
	// may carry a "_suffix".
	Name       string
	FullName   string
	UserType   string
	LanguageID int
	Token      string
}

// Registered reports whether the server knows this identity.
func (i Identity) Registered() bool {
	return i.Token != ""
}

type Options struct {
	LanguageID int
	// Leeway treats tokens expiring this soon as already expired.
	Leeway time.Duration
	Rand   *rand.Rand
	Now    func() time.Time
	Log    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.LanguageID <= 0 {
		o.LanguageID = 1
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(o.Now().UnixNano()))
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	return o
}

// NewID builds a client-side guest id: guest_<unix millis>_<9 random chars>.
func NewID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("guest_%d_%s", now.UnixMilli(), random)
}

// DisplayName drops the suffix the server appends to guest names.
func DisplayName(fullName string) string {
	name, _, _ := strings.Cut(fullName, "_")
	return name
}

// Bootstrap returns the stored identity when there is a usable one and
// registers a fresh guest otherwise. When registration fails the local,
// unregistered identity is returned together with the error so the caller
// can carry on offline and try again later.
func Bootstrap(ctx context.Context, store credentials.Store, reg Registrar, opts Options) (Identity, error) {
	opts = opts.withDefaults()
	log := opts.Log.With("component", "guest")

	c, err := store.Load(ctx)
	switch {
	case err == nil && c.Token != "":
		_, ierr := auth.Inspect(c.Token, opts.Now(), opts.Leeway)
		if !errors.Is(ierr, auth.ErrExpired) {
			if ierr != nil {
				log.Debug("stored token is opaque, using it as is", "err", ierr)
			}
			return fromCredentials(c), nil
		}
		log.Info("stored token expired, registering a new guest", "user_id", c.User.ID.String())
		if err := store.Clear(ctx); err != nil {
			log.Warn("failed to clear expired credentials", "err", err)
		}
	case err != nil && !errors.Is(err, credentials.ErrNotFound):
		log.Warn("failed to load stored credentials", "err", err)
	}

	return register(ctx, store, reg, opts, log)
}

// Renew forgets the stored identity and registers a new guest, the way
// logging out does.
func Renew(ctx context.Context, store credentials.Store, reg Registrar, opts Options) (Identity, error) {
	opts = opts.withDefaults()
	if err := store.Clear(ctx); err != nil {
		return Identity{}, fmt.Errorf("guest: clear credentials: %w", err)
	}
	return register(ctx, store, reg, opts, opts.Log.With("component", "guest"))
}

func register(ctx context.Context, store credentials.Store, reg Registrar, opts Options, log *slog.Logger) (Identity, error) {
	name := Name(opts.Rand)
	local := Identity{
		ID:         ident.ID(NewID(opts.Now())),
		Name:       name,
		FullName:   name,
		UserType:   userTypeGuest,
		LanguageID: opts.LanguageID,
	}

	res, err := reg.RegisterGuest(ctx, api.GuestRegisterRequest{
		FullName:           name,
		LearningLanguageID: opts.LanguageID,
	})
	if err != nil {
		log.Error("failed to register guest user", "name", name, "err", err)
		return local, fmt.Errorf("guest: register: %w", err)
	}

	c := credentials.Credentials{Token: res.Token, User: res.User}
	if err := store.Save(ctx, c); err != nil {
		log.Warn("failed to persist credentials", "err", err)
	}

	id := fromCredentials(c)
	id.Name = name
	log.Info("registered guest", "user_id", id.ID.String(), "name", name)
	return id, nil
}

func fromCredentials(c credentials.Credentials) Identity {
	userType := c.User.UserType
	if userType == "" {
		userType = userTypeGuest
	}
	return Identity{
		ID:         c.User.ID,
		Name:       DisplayName(c.User.FullName),
		FullName:   c.User.FullName,
		UserType:   userType,
		LanguageID: c.User.LearningLanguageID,
		Token:      c.Token,
	}
}
