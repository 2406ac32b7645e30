package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/scissors/internal/auth"
	"github.com/mmeshcher/scissors/internal/models"
)

func TestRegisterHandler(t *testing.T) {
	env := newTestEnv(t)

	type want struct {
		statusCode int
		body       string
	}

	tests := []struct {
		name string
		body string
		want want
	}{
		{
			name: "positive test",
			body: `{"username":"alice","email":"alice@example.com","password":"secret","password_confirm":"secret"}`,
			want: want{statusCode: http.StatusCreated},
		},
		{
			name: "negative: duplicate username",
			body: `{"username":"alice","email":"other@example.com","password":"secret"}`,
			want: want{statusCode: http.StatusConflict, body: "username or email already exists\n"},
		},
		{
			name: "negative: password mismatch",
			body: `{"username":"bob","email":"bob@example.com","password":"secret","password_confirm":"other"}`,
			want: want{statusCode: http.StatusBadRequest, body: "passwords don't match\n"},
		},
		{
			name: "negative: missing email",
			body: `{"username":"carol","password":"secret"}`,
			want: want{statusCode: http.StatusBadRequest},
		},
		{
			name: "negative: malformed email",
			body: `{"username":"dave","email":"dave","password":"secret"}`,
			want: want{statusCode: http.StatusBadRequest, body: "email address is not valid\n"},
		},
		{
			name: "negative: malformed body",
			body: `{"username":`,
			want: want{statusCode: http.StatusBadRequest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			result, body := env.serve(req)

			assert.Equal(t, tt.want.statusCode, result.StatusCode)
			if tt.want.body != "" {
				assert.Equal(t, tt.want.body, body)
			}
			if result.StatusCode == http.StatusCreated {
				assert.NotContains(t, body, "hashed_password")
				assert.NotContains(t, body, "secret")
			}
		})
	}
}

func TestTokenHandler(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.login(t, "alice")

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "password")

	type want struct {
		statusCode int
		cookie     bool
	}

	tests := []struct {
		name        string
		contentType string
		body        string
		want        want
	}{
		{
			name:        "positive: json credentials",
			contentType: "application/json",
			body:        `{"username":"alice","password":"password"}`,
			want:        want{statusCode: http.StatusOK, cookie: true},
		},
		{
			name:        "positive: form credentials",
			contentType: "application/x-www-form-urlencoded",
			body:        form.Encode(),
			want:        want{statusCode: http.StatusOK, cookie: true},
		},
		{
			name:        "negative: wrong password",
			contentType: "application/json",
			body:        `{"username":"alice","password":"wrong"}`,
			want:        want{statusCode: http.StatusUnauthorized},
		},
		{
			name:        "negative: unknown user",
			contentType: "application/json",
			body:        `{"username":"nobody","password":"password"}`,
			want:        want{statusCode: http.StatusUnauthorized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			result, body := env.serve(req)
			require.Equal(t, tt.want.statusCode, result.StatusCode)

			cookies := result.Cookies()
			if !tt.want.cookie {
				assert.Empty(t, cookies)
				return
			}

			require.Len(t, cookies, 1)
			assert.Equal(t, auth.CookieName, cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)

			var token models.Token
			require.NoError(t, json.Unmarshal([]byte(body), &token))
			assert.Equal(t, auth.TokenType, token.TokenType)
			assert.Equal(t, cookies[0].Value, token.AccessToken)

			session, err := env.tokens.Parse(token.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, userID, session.UserID)

			list := httptest.NewRequest(http.MethodGet, "/api/links", nil)
			list.AddCookie(cookies[0])
			listResult, _ := env.serve(list)
			assert.Equal(t, http.StatusNoContent, listResult.StatusCode, "issued cookie opens owner routes")
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	env := newTestEnv(t)

	result, body := env.serve(httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, result.StatusCode)

	cookies := result.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
	assert.Contains(t, body, "Logout successfully")
}
