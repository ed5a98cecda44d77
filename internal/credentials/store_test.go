package credentials

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/dictation/internal/api"
)

func sampleCredentials() Credentials {
	email := "cao@example.com"
	return Credentials{
		Token: "header.payload.sig",
		User: api.User{
			ID:                 "42",
			Email:              &email,
			FullName:           "Cáo Vui vẻ_1712345678",
			LearningLanguageID: 1,
			UserType:           "guest",
			IsActive:           true,
			CreatedAt:          "2024-05-01T10:00:00Z",
		},
	}
}

// exercise runs the same contract against every Store.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	want := sampleCredentials()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Token = "rotated"
	require.NoError(t, s.Save(ctx, want))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Token)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	// clearing twice is fine
	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")

	s, err := OpenSQLite(path, "default", nil)
	require.NoError(t, err)
	defer s.Close()

	exercise(t, s)
}

func TestSQLiteStore_SurvivesReopenAndSeparatesProfiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	s1, err := OpenSQLite(path, "alice", nil)
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, sampleCredentials()))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path, "alice", nil)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleCredentials(), got)

	s3, err := OpenSQLite(path, "bob", nil)
	require.NoError(t, err)
	defer s3.Close()
	_, err = s3.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ", "default", nil)
	assert.Error(t, err)
}
