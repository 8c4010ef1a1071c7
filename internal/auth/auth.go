package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/config"
)

// Argon2id parameters
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// ErrInvalidHash is returned for hashes that are not encoded argon2id hashes
var ErrInvalidHash = errors.New("invalid argon2id hash")

type Authenticator interface {
	Authenticate(r *http.Request) bool
}

// Challenger is implemented by authenticators that tell clients how to
// authenticate when a request is rejected
type Challenger interface {
	Challenge(w http.ResponseWriter)
}

// NoAuth is an authenticator that allows all requests
type NoAuth struct{}

func (n *NoAuth) Authenticate(r *http.Request) bool {
	return true
}

// APIKeyAuth authenticates requests using a config-specified API key in the
// apikey query parameter or the X-API-Key header
type APIKeyAuth struct {
	APIKey string
}

func (a *APIKeyAuth) Authenticate(r *http.Request) bool {
	providedKey := r.Header.Get("X-API-Key")
	if providedKey == "" {
		providedKey = r.URL.Query().Get("apikey")
	}
	return subtle.ConstantTimeCompare([]byte(providedKey), []byte(a.APIKey)) == 1
}

// BasicAuth authenticates requests with HTTP Basic credentials checked
// against an argon2id hash
type BasicAuth struct {
	User string
	Hash string
}

func (b *BasicAuth) Authenticate(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(b.User)) != 1 {
		return false
	}
	match, err := VerifyPassword(pass, b.Hash)
	return err == nil && match
}

func (b *BasicAuth) Challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="launchcal"`)
}

// NewAuthenticator creates an authenticator based on the auth configuration
func NewAuthenticator(cfg config.AuthConfig) (Authenticator, error) {
	switch cfg.Method {
	case "apikey":
		return &APIKeyAuth{APIKey: cfg.APIKey}, nil
	case "basic":
		user, hash, err := LoadCredentials(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return &BasicAuth{User: user, Hash: hash}, nil
	default:
		return &NoAuth{}, nil
	}
}

// HashPassword creates an encoded argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword checks a password against an encoded argon2id hash
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: hash: %v", ErrInvalidHash, err)
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// LoadCredentials reads a "user:hash" credentials file
func LoadCredentials(path string) (user, hash string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	user, hash, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok || user == "" || hash == "" {
		return "", "", fmt.Errorf("invalid credentials file %s (expected user:hash)", path)
	}
	return user, hash, nil
}

// WriteCredentials hashes password and writes a read-only credentials file
func WriteCredentials(path, user, password string) error {
	if user == "" || strings.Contains(user, ":") {
		return fmt.Errorf("invalid user name %q", user)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	return os.WriteFile(path, []byte(user+":"+hash+"\n"), 0400)
}
