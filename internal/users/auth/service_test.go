// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/mail"
	"github.com/chorostat/chorostat/internal/platform/sec"
	"github.com/chorostat/chorostat/internal/users/auth"
)

// # Test Doubles

// fakeUserRepo keeps accounts in memory, indexed the same three ways the
// Postgres repository resolves them.
type fakeUserRepo struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*auth.User)}
}

func (repo *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (repo *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	stored := *user
	repo.users[user.ID] = &stored
	return nil
}

func (repo *fakeUserRepo) Update(_ context.Context, user *auth.User) error {
	stored := *user
	repo.users[user.ID] = &stored
	return nil
}

func (repo *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (repo *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	delete(repo.users, id)
	return nil
}

func (repo *fakeUserRepo) MarkVerified(_ context.Context, userID string) error {
	user, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.IsVerified = true
	return nil
}

// fakeSessionRepo tracks refresh sessions by token hash.
type fakeSessionRepo struct {
	sessions map[string]*auth.Session // keyed by ID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (repo *fakeSessionRepo) Create(_ context.Context, session *auth.Session) error {
	stored := *session
	repo.sessions[session.ID] = &stored
	return nil
}

func (repo *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (repo *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	session, ok := repo.sessions[sessionID]
	if !ok {
		return apperr.NotFound("Session")
	}
	session.IsRevoked = true
	return nil
}

func (repo *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, session := range repo.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepo) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	for _, session := range repo.sessions {
		if session.UserID == userID && session.ID != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepo) DeleteExpired(context.Context) error { return nil }

func (repo *fakeSessionRepo) active() []*auth.Session {
	var out []*auth.Session
	for _, session := range repo.sessions {
		if !session.IsRevoked {
			out = append(out, session)
		}
	}
	return out
}

// fakeTokenStore stands in for both Redis token repositories.
type fakeTokenStore struct {
	tokens map[string]string // token -> userID
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (store *fakeTokenStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	store.tokens[token] = userID
	return nil
}

func (store *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	userID, ok := store.tokens[token]
	if !ok {
		return "", apperr.NotFound("Token")
	}
	return userID, nil
}

func (store *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(store.tokens, token)
	return nil
}

// fakeTokenProvider returns a predictable access token.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "jwt-for-" + userID, nil
}

// fakeMailer records every outbound message.
type fakeMailer struct {
	sent []mail.Message
}

func (mailer *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	mailer.sent = append(mailer.sent, msg)
	return nil
}

// # Helpers

type fixture struct {
	service  *auth.Service
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	resets   *fakeTokenStore
	verifies *fakeTokenStore
	mailer   *fakeMailer
}

func newFixture() *fixture {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	resets := newFakeTokenStore()
	verifies := newFakeTokenStore()
	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(users, sessions, resets, verifies, fakeTokenProvider{}, mailer, "https://chorostat.app", logger)
	return &fixture{
		service:  service,
		users:    users,
		sessions: sessions,
		resets:   resets,
		verifies: verifies,
		mailer:   mailer,
	}
}

// registerVerified enrolls an account and flips it to verified so login tests
// can focus on credential handling.
func registerVerified(t *testing.T, fix *fixture, username, email, password string) *auth.User {
	t.Helper()

	user, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	require.NoError(t, fix.users.MarkVerified(context.Background(), user.ID))
	return user
}

// # Registration

/*
TestService_Register_CreatesUnverifiedMember verifies the enrollment defaults:
member role, unverified state, hashed password, and an activation email
carrying the stored verification token.
*/
func TestService_Register_CreatesUnverifiedMember(t *testing.T) {
	fix := newFixture()

	user, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "carto",
		Email:    "carto@example.com",
		Password: "s3cretpass",
	})

	require.NoError(t, err)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.False(t, user.IsVerified)

	// ── 1. Password hashed at rest ────────────────────────────────────────
	stored := fix.users.users[user.ID]
	assert.NotEqual(t, "s3cretpass", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("s3cretpass", stored.PasswordHash))

	// ── 2. Activation mail references the parked token ────────────────────
	require.Len(t, fix.mailer.sent, 1)
	assert.Equal(t, "carto@example.com", fix.mailer.sent[0].To)
	require.Len(t, fix.verifies.tokens, 1)
	for token := range fix.verifies.tokens {
		assert.Contains(t, fix.mailer.sent[0].Body, token)
	}
}

/*
TestService_Register_RejectsDuplicateIdentity covers both uniqueness checks.
*/
func TestService_Register_RejectsDuplicateIdentity(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")

	_, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "other",
		Email:    "carto@example.com",
		Password: "s3cretpass",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	_, err = fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "carto",
		Email:    "new@example.com",
		Password: "s3cretpass",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestService_Register_HonorsRequestedRole confirms the service trusts the
role the transport layer forwards (the admin gate lives in the handler).
*/
func TestService_Register_HonorsRequestedRole(t *testing.T) {
	fix := newFixture()

	user, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "ops",
		Email:    "ops@example.com",
		Password: "s3cretpass",
		Role:     sec.RoleAdmin,
	})

	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, user.Role)
}

// # Login

/*
TestService_Login_IssuesSessionTokens verifies that a successful login returns
an access token and persists a refresh session keyed by the token hash.
*/
func TestService_Login_IssuesSessionTokens(t *testing.T) {
	fix := newFixture()
	user := registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")

	session, err := fix.service.Login(context.Background(), auth.LoginInput{
		Login:     "carto@example.com",
		Password:  "s3cretpass",
		UserAgent: "test-agent",
		IPAddress: "203.0.113.9",
	})

	require.NoError(t, err)
	assert.Equal(t, "jwt-for-"+user.ID, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	// The raw refresh token must never be stored. Only its hash is tracked.
	stored, err := fix.sessions.FindByTokenHash(context.Background(), sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, "test-agent", stored.UserAgent)
}

/*
TestService_Login_AcceptsUsernameOrEmail exercises the flexible lookup.
*/
func TestService_Login_AcceptsUsernameOrEmail(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")

	_, err := fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "s3cretpass"})
	require.NoError(t, err)

	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "carto@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
}

/*
TestService_Login_RejectsBadCredentials confirms the generic unauthorized
response for unknown identities and wrong passwords alike.
*/
func TestService_Login_RejectsBadCredentials(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")

	_, err := fix.service.Login(context.Background(), auth.LoginInput{Login: "ghost", Password: "s3cretpass"})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_Login_RequiresVerifiedEmail enforces the activation gate: correct
credentials on an unverified account must not produce a session.
*/
func TestService_Login_RequiresVerifiedEmail(t *testing.T) {
	fix := newFixture()

	_, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "pending",
		Email:    "pending@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "pending", Password: "s3cretpass"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Empty(t, fix.sessions.active())
}

// # Session Lifecycle

/*
TestService_RefreshSession_RotatesTokens verifies the rotation mechanism:
the old session is revoked, a new one is created, and the old refresh token
can never be replayed.
*/
func TestService_RefreshSession_RotatesTokens(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")

	login, err := fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "s3cretpass"})
	require.NoError(t, err)

	rotated, err := fix.service.RefreshSession(context.Background(), login.RefreshToken, "agent", "203.0.113.9")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token fails.
	_, err = fix.service.RefreshSession(context.Background(), login.RefreshToken, "agent", "203.0.113.9")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	require.Len(t, fix.sessions.active(), 1)
	assert.Equal(t, sec.HashToken(rotated.RefreshToken), fix.sessions.active()[0].TokenHash)
}

/*
TestService_Logout_IsIdempotent covers the double-logout and unknown-token paths.
*/
func TestService_Logout_IsIdempotent(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")

	login, err := fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "s3cretpass"})
	require.NoError(t, err)

	require.NoError(t, fix.service.Logout(context.Background(), login.RefreshToken))
	assert.Empty(t, fix.sessions.active())

	// Second logout and bogus tokens both succeed silently.
	require.NoError(t, fix.service.Logout(context.Background(), login.RefreshToken))
	require.NoError(t, fix.service.Logout(context.Background(), "never-issued"))
}

// # Password Recovery

/*
TestService_PasswordReset_FullFlow walks forgot-password end to end: the
token is stored and mailed, the reset replaces the hash, every session is
revoked, and the token is single-use.
*/
func TestService_PasswordReset_FullFlow(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "oldpassword")

	_, err := fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "oldpassword"})
	require.NoError(t, err)

	// ── 1. Request ────────────────────────────────────────────────────────
	require.NoError(t, fix.service.RequestPasswordReset(context.Background(), "carto@example.com"))
	require.Len(t, fix.resets.tokens, 1)
	require.Len(t, fix.mailer.sent, 2) // activation mail + reset mail

	var token string
	for stored := range fix.resets.tokens {
		token = stored
	}
	assert.Contains(t, fix.mailer.sent[1].Body, token)

	// ── 2. Reset ──────────────────────────────────────────────────────────
	require.NoError(t, fix.service.ResetPassword(context.Background(), token, "newpassword"))
	assert.Empty(t, fix.sessions.active(), "all sessions revoked after reset")

	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "oldpassword"})
	require.Error(t, err)
	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "newpassword"})
	require.NoError(t, err)

	// ── 3. Token is single-use ────────────────────────────────────────────
	err = fix.service.ResetPassword(context.Background(), token, "anotherpass")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_RequestPasswordReset_SilentForUnknownEmail guards against
account enumeration through the recovery endpoint.
*/
func TestService_RequestPasswordReset_SilentForUnknownEmail(t *testing.T) {
	fix := newFixture()

	require.NoError(t, fix.service.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, fix.resets.tokens)
	assert.Empty(t, fix.mailer.sent)
}

/*
TestService_ChangePassword_RequiresCurrentPassword verifies the guarded
credential rotation and that other devices are logged out.
*/
func TestService_ChangePassword_RequiresCurrentPassword(t *testing.T) {
	fix := newFixture()
	user := registerVerified(t, fix, "carto", "carto@example.com", "oldpassword")

	first, err := fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "oldpassword"})
	require.NoError(t, err)
	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "carto", Password: "oldpassword"})
	require.NoError(t, err)

	err = fix.service.ChangePassword(context.Background(), user.ID, "wrong-pass", "newpassword", first.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	require.NoError(t, fix.service.ChangePassword(context.Background(), user.ID, "oldpassword", "newpassword", first.RefreshToken))

	// Only the session that performed the change survives.
	require.Len(t, fix.sessions.active(), 1)
	assert.Equal(t, sec.HashToken(first.RefreshToken), fix.sessions.active()[0].TokenHash)
}

// # Email Verification

/*
TestService_VerifyEmail_ActivatesAccount confirms token resolution, account
activation, and single-use cleanup.
*/
func TestService_VerifyEmail_ActivatesAccount(t *testing.T) {
	fix := newFixture()

	user, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "pending",
		Email:    "pending@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	var token string
	for stored := range fix.verifies.tokens {
		token = stored
	}
	require.NotEmpty(t, token)

	require.NoError(t, fix.service.VerifyEmail(context.Background(), token))
	assert.True(t, fix.users.users[user.ID].IsVerified)
	assert.Empty(t, fix.verifies.tokens)

	// Verified accounts can log in.
	_, err = fix.service.Login(context.Background(), auth.LoginInput{Login: "pending", Password: "s3cretpass"})
	require.NoError(t, err)
}

/*
TestService_ResendVerification_SkipsVerifiedAccounts ensures re-sends only
apply to accounts still awaiting activation.
*/
func TestService_ResendVerification_SkipsVerifiedAccounts(t *testing.T) {
	fix := newFixture()
	registerVerified(t, fix, "carto", "carto@example.com", "s3cretpass")
	fix.mailer.sent = nil
	fix.verifies.tokens = map[string]string{}

	require.NoError(t, fix.service.ResendVerification(context.Background(), "carto@example.com"))
	assert.Empty(t, fix.mailer.sent)

	_, err := fix.service.Register(context.Background(), auth.RegisterInput{
		Username: "pending",
		Email:    "pending@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	fix.mailer.sent = nil

	require.NoError(t, fix.service.ResendVerification(context.Background(), "pending@example.com"))
	require.Len(t, fix.mailer.sent, 1)
	assert.Equal(t, "pending@example.com", fix.mailer.sent[0].To)
}
