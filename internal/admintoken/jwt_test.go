package admintoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "mintgate/pkg/domain-errors"
)

// =============================================================================
// Admin Token Service Test Suite
// =============================================================================

type AdminTokenSuite struct {
	suite.Suite
	service *Service
}

func TestAdminTokenSuite(t *testing.T) {
	suite.Run(t, new(AdminTokenSuite))
}

func (s *AdminTokenSuite) SetupTest() {
	s.service = New("test-signing-key", "mintgate")
}

func (s *AdminTokenSuite) TestGenerateAndValidate() {
	s.Run("round trip returns the subject", func() {
		token, err := s.service.Generate("admin-1", time.Hour)
		s.Require().NoError(err)

		subject, err := s.service.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal("admin-1", subject)
	})

	s.Run("expired token is rejected", func() {
		token, err := s.service.Generate("admin-1", -time.Minute)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("token signed with a different key is rejected", func() {
		other := New("other-key", "mintgate")
		token, err := other.Generate("admin-1", time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("token from a different issuer is rejected", func() {
		other := New("test-signing-key", "someone-else")
		token, err := other.Generate("admin-1", time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
	})

	s.Run("garbage token is rejected", func() {
		_, err := s.service.ValidateToken("not.a.jwt")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
