package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/session"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	t.Setenv(session.TokenEnv, "")
	fs := afero.NewMemMapFs()
	s := &session.FileTokenStore{Fs: fs, Dir: "/home/u/.listify"}

	info, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, info)

	require.Error(t, s.Save("  ", nil))
	require.NoError(t, s.Save("Bearer abc.def", nil))

	st, err := fs.Stat("/home/u/.listify/credentials.json")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", st.Mode().Perm().String())

	info, err = s.Load()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "abc.def", info.Token)
	assert.Equal(t, "file", info.Source)

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete(), "deleting twice is fine")
	info, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFileTokenStoreCorruptFile(t *testing.T) {
	t.Setenv(session.TokenEnv, "")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/d/credentials.json", []byte("{nope"), 0o600))

	_, err := (&session.FileTokenStore{Fs: fs, Dir: "/d"}).Load()
	assert.Error(t, err)
}

func TestExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	got := session.Expiry(tok)
	require.NotNil(t, got)
	assert.True(t, exp.Equal(*got))

	claims, ok := session.Claims(tok)
	require.True(t, ok)
	assert.Equal(t, "1", claims["sub"])

	assert.Nil(t, session.Expiry("opaque-token"))
	_, ok = session.Claims("opaque-token")
	assert.False(t, ok)
}
