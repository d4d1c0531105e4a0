package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mintgate/internal/admintoken"
	authoritystore "mintgate/internal/mint/store/authority"
)

// =============================================================================
// Authority Middleware Test Suite
// =============================================================================

type AuthorityMiddlewareSuite struct {
	suite.Suite
	tokens    *admintoken.Service
	authority *authoritystore.InMemoryAuthorityStore
	handler   http.Handler
	seen      string
}

func TestAuthorityMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthorityMiddlewareSuite))
}

func (s *AuthorityMiddlewareSuite) SetupTest() {
	s.tokens = admintoken.New("test-signing-key", "mintgate")
	s.authority = authoritystore.New("admin-1")
	s.seen = ""

	logger := slog.New(slog.DiscardHandler)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.seen = GetAdminSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	s.handler = RequireAuthority(s.tokens, s.authority, logger)(inner)
}

func (s *AuthorityMiddlewareSuite) request(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/pools", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *AuthorityMiddlewareSuite) TestRequireAuthority() {
	s.Run("missing header is unauthorized", func() {
		rec := s.request("")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Empty(s.seen)
	})

	s.Run("non-bearer scheme is unauthorized", func() {
		rec := s.request("Basic abc123")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("invalid token is unauthorized", func() {
		rec := s.request("Bearer not-a-token")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("valid token for the authority passes with subject in context", func() {
		token, err := s.tokens.Generate("admin-1", time.Hour)
		s.Require().NoError(err)

		rec := s.request("Bearer " + token)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal("admin-1", s.seen)
	})

	s.Run("valid token for a non-authority subject is rejected", func() {
		token, err := s.tokens.Generate("intruder", time.Hour)
		s.Require().NoError(err)

		rec := s.request("Bearer " + token)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("authority transfer moves the capability", func() {
		oldToken, err := s.tokens.Generate("admin-1", time.Hour)
		s.Require().NoError(err)
		newToken, err := s.tokens.Generate("admin-2", time.Hour)
		s.Require().NoError(err)

		s.Require().NoError(s.authority.Transfer(context.Background(), "admin-2"))

		rec := s.request("Bearer " + oldToken)
		s.Equal(http.StatusUnauthorized, rec.Code)

		rec = s.request("Bearer " + newToken)
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal("admin-2", s.seen)
	})
}
