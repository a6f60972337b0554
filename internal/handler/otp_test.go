package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func TestOTPLifecycle(t *testing.T) {
	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodPost, "/auth/reset-password", nil)
	key := resetPasswordOTPKey("xiaoming")

	ok, err := h.checkOTP(r, key, "123456")
	require.NoError(t, err)
	assert.False(t, ok, "未发送过的验证码不能通过")

	otp, err := h.issueOTP(r, key)
	require.NoError(t, err)
	assert.NotEmpty(t, otp)

	ttl, err := h.redisClient.TTL(r.Context(), key).Result()
	require.NoError(t, err)
	assert.Equal(t, 900*time.Second, ttl)

	ok, err = h.checkOTP(r, key, otp+"0")
	require.NoError(t, err)
	assert.False(t, ok)

	// 校验失败不会删除验证码
	ok, err = h.checkOTP(r, key, otp)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, h.dropOTP(r, key))
	ok, err = h.checkOTP(r, key, otp)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPKeysAreSeparated(t *testing.T) {
	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodPost, "/me/email", nil)

	otp, err := h.issueOTP(r, changeEmailOTPKey("xiaoming", "new@example.com"))
	require.NoError(t, err)

	for _, key := range []string{
		changeEmailOTPKey("xiaoming", "other@example.com"),
		changeEmailOTPKey("xiaohong", "new@example.com"),
		resetPasswordOTPKey("xiaoming"),
	} {
		ok, err := h.checkOTP(r, key, otp)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestOTPExpirationMinutes(t *testing.T) {
	h := newTestHandler(t)
	assert.Equal(t, 15, h.otpExpirationMinutes())
}

func TestIssueToken(t *testing.T) {
	h := newTestHandler(t)
	person := &domain.Person{ID: 42, Permissions: []domain.Role{domain.RoleUser, domain.RoleOffice}}
	now := time.Now().Truncate(time.Second)

	ss, expiration, err := h.issueToken(person, now)
	require.NoError(t, err)
	assert.True(t, now.Add(time.Hour).Equal(expiration))

	claims := &AuthClaims{}
	_, err = jwt.ParseWithClaims(ss, claims, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, []string{"USER", "OFFICE"}, claims.Roles)
	assert.True(t, expiration.Equal(claims.ExpiresAt.Time))
}

func TestSetAuthCookie(t *testing.T) {
	tests := []struct {
		environment string
		secure      bool
		sameSite    http.SameSite
	}{
		{"development", false, 0},
		{"production", true, http.SameSiteStrictMode},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			h := newTestHandler(t)
			h.config.Environment = tt.environment

			rec := httptest.NewRecorder()
			h.setAuthCookie(rec, "token", time.Now().Add(time.Hour))

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, authCookieName, cookies[0].Name)
			assert.Equal(t, "token", cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
			assert.Equal(t, tt.secure, cookies[0].Secure)
			assert.Equal(t, tt.sameSite, cookies[0].SameSite)
		})
	}
}
