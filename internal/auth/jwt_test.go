package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, 0)
	require.NoError(t, err)
	return ts
}

func parseUnverified(t *testing.T, token string) *claims {
	t.Helper()
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &claims{})
	require.NoError(t, err)
	return parsed.Claims.(*claims)
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)

	ts, err := NewTokenService("this-is-16-chars", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, ts.ttl)

	ts, err = NewTokenService("this-is-16-chars", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, ts.ttl)
}

func TestGenerate_Claims(t *testing.T) {
	ts, err := NewTokenService(testSecret, 90*time.Minute)
	require.NoError(t, err)

	token, err := ts.Generate("cv37rs3pp9olc6atsptg")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	c := parseUnverified(t, token)
	assert.Equal(t, "cv37rs3pp9olc6atsptg", c.Subject)
	assert.Equal(t, "movie-platform", c.Issuer)
	assert.Equal(t, 90*time.Minute, c.ExpiresAt.Sub(c.IssuedAt.Time))
}

func TestGenerate_RequiresSubject(t *testing.T) {
	_, err := newTestTokenService(t).Generate("")
	assert.Error(t, err)
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("cv37rs3pp9olc6atsptg")
	require.NoError(t, err)

	got, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "cv37rs3pp9olc6atsptg", got)
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("user-1", -time.Second)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Generate("user-1")
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, c claims) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	other, err := NewTokenService("wrong-secret-32-chars-long!!!!!!", 0)
	require.NoError(t, err)
	foreignSecret, err := other.Generate("user-1")
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not.a.jwt.token",
		"tampered":       valid[:len(valid)-3] + "xxx",
		"foreign secret": foreignSecret,
		"foreign issuer": sign(jwt.SigningMethodHS256, ts.secret, claims{jwt.RegisteredClaims{
			Subject: "user-1", Issuer: "someone-else", ExpiresAt: future,
		}}),
		"no subject": sign(jwt.SigningMethodHS256, ts.secret, claims{jwt.RegisteredClaims{
			Issuer: issuer, ExpiresAt: future,
		}}),
		"no expiry": sign(jwt.SigningMethodHS256, ts.secret, claims{jwt.RegisteredClaims{
			Subject: "user-1", Issuer: issuer,
		}}),
		"HS512": sign(jwt.SigningMethodHS512, ts.secret, claims{jwt.RegisteredClaims{
			Subject: "user-1", Issuer: issuer, ExpiresAt: future,
		}}),
		"alg none": sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims{jwt.RegisteredClaims{
			Subject: "user-1", Issuer: issuer, ExpiresAt: future,
		}}),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Validate(token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
