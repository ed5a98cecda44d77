package guest

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/dictation/internal/api"
	"example.com/dictation/internal/auth"
	"example.com/dictation/internal/credentials"
	"example.com/dictation/internal/ident"
)

type fakeRegistrar struct {
	calls []api.GuestRegisterRequest
	token string
	err   error
}

func (r *fakeRegistrar) RegisterGuest(ctx context.Context, req api.GuestRegisterRequest) (api.AuthResponse, error) {
	r.calls = append(r.calls, req)
	if r.err != nil {
		return api.AuthResponse{}, r.err
	}
	return api.AuthResponse{
		User: api.User{
			ID:                 ident.FromInt(int64(100 + len(r.calls))),
			FullName:           req.FullName + "_1712345678",
			LearningLanguageID: req.LearningLanguageID,
			UserType:           "guest",
		},
		Token: r.token,
	}, nil
}

func signed(t *testing.T, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.Sign([]byte("server"), "7", ttl)
	require.NoError(t, err)
	return tok
}

func testOptions() Options {
	return Options{LanguageID: 1, Rand: rand.New(rand.NewSource(1))}
}

func TestBootstrap_Scenarios(t *testing.T) {
	ctx := context.Background()

	type scenario struct {
		name string
		run  func(t *testing.T)
	}

	cases := []scenario{
		{
			name: "first launch registers and persists",
			run: func(t *testing.T) {
				store := credentials.NewMemoryStore()
				reg := &fakeRegistrar{token: signed(t, time.Hour)}

				id, err := Bootstrap(ctx, store, reg, testOptions())
				require.NoError(t, err)
				require.Len(t, reg.calls, 1)
				assert.Equal(t, 1, reg.calls[0].LearningLanguageID)

				assert.True(t, id.Registered())
				assert.Equal(t, ident.ID("101"), id.ID)
				assert.Equal(t, reg.calls[0].FullName, id.Name)
				assert.Equal(t, reg.calls[0].FullName+"_1712345678", id.FullName)

				c, err := store.Load(ctx)
				require.NoError(t, err)
				assert.Equal(t, reg.token, c.Token)
			},
		},
		{
			name: "stored credential is reused",
			run: func(t *testing.T) {
				store := credentials.NewMemoryStore()
				tok := signed(t, time.Hour)
				require.NoError(t, store.Save(ctx, credentials.Credentials{
					Token: tok,
					User:  api.User{ID: "7", FullName: "Cáo Vui vẻ_1712345678", UserType: "guest", LearningLanguageID: 2},
				}))
				reg := &fakeRegistrar{token: "unused"}

				id, err := Bootstrap(ctx, store, reg, testOptions())
				require.NoError(t, err)
				assert.Empty(t, reg.calls)
				assert.Equal(t, ident.ID("7"), id.ID)
				assert.Equal(t, "Cáo Vui vẻ", id.Name)
				assert.Equal(t, 2, id.LanguageID)
				assert.Equal(t, tok, id.Token)
			},
		},
		{
			name: "opaque stored token is trusted",
			run: func(t *testing.T) {
				store := credentials.NewMemoryStore()
				require.NoError(t, store.Save(ctx, credentials.Credentials{Token: "opaque", User: api.User{ID: "9"}}))
				reg := &fakeRegistrar{}

				id, err := Bootstrap(ctx, store, reg, testOptions())
				require.NoError(t, err)
				assert.Empty(t, reg.calls)
				assert.Equal(t, "opaque", id.Token)
				assert.Equal(t, "guest", id.UserType)
			},
		},
		{
			name: "expired token triggers a new registration",
			run: func(t *testing.T) {
				store := credentials.NewMemoryStore()
				require.NoError(t, store.Save(ctx, credentials.Credentials{Token: signed(t, -time.Minute), User: api.User{ID: "7"}}))
				fresh := signed(t, time.Hour)
				reg := &fakeRegistrar{token: fresh}

				id, err := Bootstrap(ctx, store, reg, testOptions())
				require.NoError(t, err)
				require.Len(t, reg.calls, 1)
				assert.Equal(t, fresh, id.Token)

				c, err := store.Load(ctx)
				require.NoError(t, err)
				assert.Equal(t, fresh, c.Token)
			},
		},
		{
			name: "registration failure returns a local identity",
			run: func(t *testing.T) {
				store := credentials.NewMemoryStore()
				reg := &fakeRegistrar{err: errors.New("connection refused")}

				id, err := Bootstrap(ctx, store, reg, testOptions())
				require.Error(t, err)
				assert.False(t, id.Registered())
				assert.Regexp(t, regexp.MustCompile(`^guest_\d+_[0-9a-f]{9}$`), id.ID.String())
				assert.NotEmpty(t, id.Name)
				assert.Equal(t, "guest", id.UserType)

				_, err = store.Load(ctx)
				assert.ErrorIs(t, err, credentials.ErrNotFound)
			},
		},
		{
			name: "renew replaces the stored identity",
			run: func(t *testing.T) {
				store := credentials.NewMemoryStore()
				reg := &fakeRegistrar{token: signed(t, time.Hour)}

				first, err := Bootstrap(ctx, store, reg, testOptions())
				require.NoError(t, err)
				second, err := Renew(ctx, store, reg, testOptions())
				require.NoError(t, err)

				assert.NotEqual(t, first.ID, second.ID)
				c, err := store.Load(ctx)
				require.NoError(t, err)
				assert.Equal(t, second.ID, c.User.ID)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}

func TestName(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		n := Name(r)
		var creature, adjective string
		for _, c := range creatures {
			if strings.HasPrefix(n, c+" ") && len(c) > len(creature) {
				creature = c
			}
		}
		require.NotEmpty(t, creature, n)
		adjective = strings.TrimPrefix(n, creature+" ")
		assert.Contains(t, adjectives, adjective)
		assert.NotContains(t, n, "_")
	}
}

func TestNewIDAndDisplayName(t *testing.T) {
	now := time.UnixMilli(1712345678901)
	id := NewID(now)
	assert.True(t, strings.HasPrefix(id, "guest_1712345678901_"))
	assert.Len(t, strings.TrimPrefix(id, "guest_1712345678901_"), 9)
	assert.NotEqual(t, id, NewID(now))

	assert.Equal(t, "Cáo Vui vẻ", DisplayName("Cáo Vui vẻ_1712345678"))
	assert.Equal(t, "Cáo Vui vẻ", DisplayName("Cáo Vui vẻ"))
	assert.Equal(t, "", DisplayName(""))
}
