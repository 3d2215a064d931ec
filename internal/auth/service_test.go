package auth

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	passwords     map[string]string // email -> password hash
	userIDs       map[string]string // email -> userID
	usersByID     map[int64]*User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	return &mockUserRepository{
		passwords: map[string]string{
			"admin@pflegewerk.de":  string(hashedPassword),
			"hr@pflegewerk.de":     string(hashedPassword),
			"viewer@pflegewerk.de": string(hashedPassword),
		},
		userIDs: map[string]string{
			"admin@pflegewerk.de":  "1",
			"hr@pflegewerk.de":     "2",
			"viewer@pflegewerk.de": "3",
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Email: "admin@pflegewerk.de", Name: "Admin", Role: RoleAdmin},
			2: {ID: 2, Email: "hr@pflegewerk.de", Name: "HR", Role: RoleHR},
			3: {ID: 3, Email: "viewer@pflegewerk.de", Name: "Viewer", Role: RoleViewer},
		},
	}
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, string, error) {
	if m.returnError {
		return "", "", m.errorToReturn
	}
	if hash, ok := m.passwords[email]; ok {
		return hash, m.userIDs[email], nil
	}
	return "", "", ErrUserNotFound
}

func (m *mockUserRepository) GetUserByID(userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if u, ok := m.usersByID[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		service  *Service
		userRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		userRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(
			"test-access-secret-at-least-32-chars!!",
			"test-refresh-secret-at-least-32-chars!",
			15*time.Minute,
			7*24*time.Hour,
		)
		service = NewService(userRepo, tokenGen)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("returns tokens for valid credentials", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "hr@pflegewerk.de",
				Password: "correct_password",
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("2"))
			gomega.Expect(claims.Email).To(gomega.Equal("hr@pflegewerk.de"))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "hr@pflegewerk.de",
				Password: "wrong_password",
			})

			gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown email", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "nobody@pflegewerk.de",
				Password: "correct_password",
			})

			gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
		})

		ginkgo.It("rejects a login with missing fields", func() {
			_, err := service.Authenticate(LoginDTO{Email: "hr@pflegewerk.de"})

			gomega.Expect(err).To(gomega.HaveOccurred())
			_, isValidation := err.(ValidationError)
			gomega.Expect(isValidation).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("issues a new token pair for a valid refresh token", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "admin@pflegewerk.de",
				Password: "correct_password",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(refreshed.RefreshToken).NotTo(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(refreshed.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("1"))
		})

		ginkgo.It("rejects garbage refresh tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects expired refresh tokens", func() {
			expiredGen := NewJWTTokenGenerator(
				"test-access-secret-at-least-32-chars!!",
				"test-refresh-secret-at-least-32-chars!",
				15*time.Minute,
				7*24*time.Hour,
			)
			expiredGen.RefreshTokenTTL = -time.Hour

			token, err := expiredGen.GenerateRefreshToken("2", "hr@pflegewerk.de")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.RefreshTokens(token)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("GetUserWithPermissions", func() {
		ginkgo.It("expands the admin role into the full permission set", func() {
			user, err := service.GetUserWithPermissions(1)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Permissions).To(gomega.ContainElements(
				PermAdmin, PermManageEmployees, PermDeleteEmployees,
				PermManageSettings, PermRunScans,
			))
		})

		ginkgo.It("grants hr management but not deletion or settings", func() {
			user, err := service.GetUserWithPermissions(2)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.HasPermission(PermManageEmployees)).To(gomega.BeTrue())
			gomega.Expect(user.HasPermission(PermAcknowledgeAlerts)).To(gomega.BeTrue())
			gomega.Expect(user.HasPermission(PermDeleteEmployees)).To(gomega.BeFalse())
			gomega.Expect(user.HasPermission(PermManageSettings)).To(gomega.BeFalse())
		})

		ginkgo.It("leaves the viewer with read access only", func() {
			user, err := service.GetUserWithPermissions(3)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Permissions).To(gomega.ConsistOf(PermViewEmployees))
			gomega.Expect(user.IsViewer()).To(gomega.BeTrue())
		})

		ginkgo.It("propagates repository errors", func() {
			userRepo.returnError = true
			userRepo.errorToReturn = ErrUserNotFound

			_, err := service.GetUserWithPermissions(1)
			gomega.Expect(err).To(gomega.MatchError(ErrUserNotFound))
		})
	})
})
