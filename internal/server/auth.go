package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/logging"
)

// Token kinds embedded in the signed payload
const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

var (
	errInvalidToken  = errors.New("invalid token")
	errExpiredToken  = errors.New("token expired")
	errBadCredential = errors.New("invalid username or password")
)

// user is an in-memory account record. Passwords are stored as salted
// SHA-256 digests; there is no persistence, accounts live for the process.
type user struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	passwordHash string
	salt         string
	CreatedAt    time.Time `json:"created_at"`
}

// authService issues HMAC-signed bearer tokens. The scheme is
// base64(username|kind|expiry) + "." + base64(HMAC-SHA256 over the payload).
type authService struct {
	secret []byte
	cfg    config.ServerConfig
	logger logging.Logger

	mu    sync.RWMutex
	users map[string]*user
}

func newAuthService(cfg config.ServerConfig, logger logging.Logger) *authService {
	secret := []byte(cfg.AuthSecret)
	if len(secret) == 0 {
		// Ephemeral secret: issued tokens die with the process, which is
		// the safe default when no secret is configured
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	return &authService{
		secret: secret,
		cfg:    cfg,
		logger: logger,
		users:  make(map[string]*user),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *user  `json:"user,omitempty"`
}

func (a *authService) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "username and a password of at least 8 characters are required"})
		return
	}

	a.mu.Lock()
	if _, exists := a.users[req.Username]; exists {
		a.mu.Unlock()
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, errorResponse{Error: "username already taken"})
		return
	}

	salt := newSalt()
	u := &user{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		passwordHash: hashPassword(req.Password, salt),
		salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}
	a.users[req.Username] = u
	a.mu.Unlock()

	a.logger.Info("user registered", logging.String("username", u.Username))

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, a.issueTokens(u))
}

func (a *authService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid request body"})
		return
	}

	a.mu.RLock()
	u, exists := a.users[req.Username]
	a.mu.RUnlock()

	if !exists || subtle.ConstantTimeCompare(
		[]byte(hashPassword(req.Password, u.salt)),
		[]byte(u.passwordHash)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{Error: errBadCredential.Error()})
		return
	}

	render.JSON(w, r, a.issueTokens(u))
}

func (a *authService) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid request body"})
		return
	}

	username, err := a.verifyToken(req.RefreshToken, tokenKindRefresh)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	a.mu.RLock()
	u, exists := a.users[username]
	a.mu.RUnlock()
	if !exists {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{Error: errInvalidToken.Error()})
		return
	}

	render.JSON(w, r, a.issueTokens(u))
}

func (a *authService) issueTokens(u *user) tokenResponse {
	return tokenResponse{
		AccessToken:  a.signToken(u.Username, tokenKindAccess, a.cfg.AccessTokenTTL),
		RefreshToken: a.signToken(u.Username, tokenKindRefresh, a.cfg.RefreshTokenTTL),
		TokenType:    "Bearer",
		ExpiresIn:    int64(a.cfg.AccessTokenTTL.Seconds()),
		User:         u,
	}
}

func (a *authService) signToken(username, kind string, ttl time.Duration) string {
	expiry := time.Now().Add(ttl).Unix()
	payload := fmt.Sprintf("%s|%s|%d", username, kind, expiry)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(encoded))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return encoded + "." + sig
}

func (a *authService) verifyToken(token, wantKind string) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", errInvalidToken
	}

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(encoded))
	wantSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(sig), []byte(wantSig)) != 1 {
		return "", errInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errInvalidToken
	}
	parts := strings.Split(string(payload), "|")
	if len(parts) != 3 || parts[1] != wantKind {
		return "", errInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", errInvalidToken
	}
	if time.Now().Unix() > expiry {
		return "", errExpiredToken
	}
	return parts[0], nil
}

func newSalt() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
