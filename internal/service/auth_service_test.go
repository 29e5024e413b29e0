package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/repository"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

type AuthSuite struct {
	suite.Suite
	users   *repository.MemoryUserRepository
	service *AuthService
	ctx     context.Context
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = repository.NewMemoryUserRepository()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}}
	s.service = NewAuthService(cfg, AuthDependencies{UserRepo: s.users})
}

func (s *AuthSuite) register(username, email string) *domain.User {
	user, token, _, err := s.service.Register(s.ctx, RegisterInput{
		Username: username,
		Name:     "Anna",
		Surname:  "Sidorova",
		Age:      30,
		Email:    email,
		Password: "secret-password",
	})
	s.Require().NoError(err)
	s.NotEmpty(token)
	return user
}

func (s *AuthSuite) TestRegister() {
	s.Run("creates an active account and logs it in", func() {
		user := s.register("anna", "anna@example.com")
		s.True(user.IsActive)
		s.False(user.IsStaff)
		s.NotEqual("secret-password", user.PasswordHash)
	})

	s.Run("refuses age of 18 and below", func() {
		for _, age := range []int{18, 17, 0, -3} {
			_, _, _, err := s.service.Register(s.ctx, RegisterInput{
				Username: "young", Name: "a", Surname: "b",
				Age: age, Email: "young@example.com", Password: "secret-password",
			})
			s.Require().Error(err, "age %d", age)
			s.True(apperrors.IsCode(err, "VALIDATION_FAILED"), "age %d", age)
		}
	})

	s.Run("refuses short passwords", func() {
		_, _, _, err := s.service.Register(s.ctx, RegisterInput{
			Username: "u", Name: "a", Surname: "b",
			Age: 30, Email: "u@example.com", Password: "short",
		})
		s.True(apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	s.Run("refuses duplicate username and email", func() {
		s.register("taken", "taken@example.com")

		_, _, _, err := s.service.Register(s.ctx, RegisterInput{
			Username: "taken", Name: "a", Surname: "b",
			Age: 30, Email: "other@example.com", Password: "secret-password",
		})
		s.True(apperrors.IsCode(err, "CONFLICT"))

		_, _, _, err = s.service.Register(s.ctx, RegisterInput{
			Username: "other", Name: "a", Surname: "b",
			Age: 30, Email: "taken@example.com", Password: "secret-password",
		})
		s.True(apperrors.IsCode(err, "CONFLICT"))
	})
}

func (s *AuthSuite) TestLogin() {
	s.Run("valid credentials return a token", func() {
		s.register("anna", "anna@example.com")
		user, token, exp, err := s.service.Login(s.ctx, "anna", "secret-password")
		s.Require().NoError(err)
		s.Equal("anna", user.Username)
		s.NotEmpty(token)
		s.False(exp.IsZero())
	})

	s.Run("wrong password is unauthorized", func() {
		s.register("bob", "bob@example.com")
		_, _, _, err := s.service.Login(s.ctx, "bob", "wrong-password")
		s.True(apperrors.IsCode(err, "UNAUTHORIZED"))
	})

	s.Run("unknown username is unauthorized, not not-found", func() {
		_, _, _, err := s.service.Login(s.ctx, "ghost", "whatever-pass")
		s.True(apperrors.IsCode(err, "UNAUTHORIZED"))
	})

	s.Run("disabled account is forbidden", func() {
		user := s.register("carol", "carol@example.com")
		user.IsActive = false
		s.Require().NoError(s.users.Update(s.ctx, user))

		_, _, _, err := s.service.Login(s.ctx, "carol", "secret-password")
		s.True(apperrors.IsCode(err, "FORBIDDEN"))
	})
}

func (s *AuthSuite) TestChangePassword() {
	user := s.register("dave", "dave@example.com")

	s.Run("requires the current password", func() {
		err := s.service.ChangePassword(s.ctx, user.ID, "wrong", "another-secret")
		s.True(apperrors.IsCode(err, "UNAUTHORIZED"))
	})

	s.Run("new password takes effect", func() {
		s.Require().NoError(s.service.ChangePassword(s.ctx, user.ID, "secret-password", "another-secret"))

		_, _, _, err := s.service.Login(s.ctx, "dave", "secret-password")
		s.Error(err)
		_, _, _, err = s.service.Login(s.ctx, "dave", "another-secret")
		s.NoError(err)
	})
}

func (s *AuthSuite) TestProfileUpdates() {
	s.Run("telegram handle", func() {
		user := s.register("erin", "erin@example.com")
		updated, err := s.service.UpdateTelegram(s.ctx, user.ID, "@erin_tg")
		s.Require().NoError(err)
		s.Equal("@erin_tg", updated.TelegramAccount)

		_, err = s.service.UpdateTelegram(s.ctx, user.ID, "  ")
		s.True(apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	s.Run("full name", func() {
		user := s.register("frank", "frank@example.com")
		updated, err := s.service.UpdateFullName(s.ctx, user.ID, "Fyodor", "Ivanov")
		s.Require().NoError(err)
		s.Equal("Fyodor Ivanov", updated.FullName())
	})

	s.Run("email uniqueness excludes the user itself", func() {
		user := s.register("gina", "gina@example.com")
		s.register("henry", "henry@example.com")

		_, err := s.service.UpdateEmail(s.ctx, user.ID, "gina@example.com")
		s.NoError(err)

		_, err = s.service.UpdateEmail(s.ctx, user.ID, "henry@example.com")
		s.True(apperrors.IsCode(err, "CONFLICT"))
	})
}
