package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSharedCode(t *testing.T) {
	ctx := context.Background()
	v := NewSharedCode("334510")

	assert.True(t, v.Verify(ctx, "334510"))
	assert.False(t, v.Verify(ctx, "334511"))
	assert.False(t, v.Verify(ctx, ""))
	assert.False(t, NewSharedCode("").Verify(ctx, ""), "an unset code never matches")
}

type fakeTokens struct{ valid string }

func (f fakeTokens) VerifyIDToken(_ context.Context, tok string) (*fbauth.Token, error) {
	if tok == f.valid {
		return &fbauth.Token{UID: "admin"}, nil
	}
	return nil, errors.New("invalid token")
}

func TestFirebaseVerifier(t *testing.T) {
	v := NewFirebaseVerifier(fakeTokens{valid: "good"})
	assert.True(t, v.Verify(context.Background(), "good"))
	assert.False(t, v.Verify(context.Background(), "bad"))
	assert.False(t, v.Verify(context.Background(), ""))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secret", Middleware(NewSharedCode("334510")), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"no credential", "", "", http.StatusUnauthorized},
		{"wrong code", AccessCodeHeader, "000000", http.StatusUnauthorized},
		{"access code header", AccessCodeHeader, "334510", http.StatusOK},
		{"bearer", "Authorization", "Bearer 334510", http.StatusOK},
		{"bearer wrong", "Authorization", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secret", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}
