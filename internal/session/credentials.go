package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
)

const credFileName = "credentials.json"

// TokenEnv overrides the stored credential when set.
const TokenEnv = "LISTIFY_TOKEN"

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // from the JWT exp claim when present
}

// TokenStore persists the single bearer credential.
type TokenStore interface {
	Load() (*TokenInfo, error)
	Save(token string, expires *time.Time) error
	Delete() error
}

// FileTokenStore keeps the credential in <Dir>/credentials.json, owner-only.
type FileTokenStore struct {
	Fs  afero.Fs
	Dir string
}

func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{Fs: afero.NewOsFs(), Dir: dir}
}

func (s *FileTokenStore) path() string {
	return filepath.Join(s.Dir, credFileName)
}

// Load returns nil, nil when there is no credential.
func (s *FileTokenStore) Load() (*TokenInfo, error) {
	// 1) env override
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		tok := stripBearer(env)
		return &TokenInfo{Token: tok, Source: "env", ExpiresAt: Expiry(tok)}, nil
	}

	// 2) file
	b, err := afero.ReadFile(s.Fs, s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	if ti.Token == "" {
		return nil, nil
	}
	return &ti, nil
}

func (s *FileTokenStore) Save(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := s.Fs.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := afero.WriteFile(s.Fs, s.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Delete() error {
	if err := s.Fs.Remove(s.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

// Claims decodes a JWT credential without verifying it. Opaque tokens
// report false.
func Claims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Expiry reads the exp claim, if any.
func Expiry(token string) *time.Time {
	claims, ok := Claims(token)
	if !ok {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
