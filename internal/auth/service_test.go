package auth_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/xtractpay/xtractpay/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepo struct {
	users      map[string]*auth.User
	hashes     map[string]string
	idsByEmail map[string]string
	lastLogin  map[string]time.Time
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:      make(map[string]*auth.User),
		hashes:     make(map[string]string),
		idsByEmail: make(map[string]string),
		lastLogin:  make(map[string]time.Time),
	}
}

func (m *mockUserRepo) addUser(id, email, password, role string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.users[id] = &auth.User{ID: id, Email: email, Role: role}
	m.hashes[email] = string(hash)
	m.idsByEmail[email] = id
}

func (m *mockUserRepo) GetCredentialsByEmail(email string) (string, string, error) {
	hash, ok := m.hashes[email]
	if !ok {
		return "", "", errors.New("not found")
	}
	return hash, m.idsByEmail[email], nil
}

func (m *mockUserRepo) GetAuthUser(userID string) (*auth.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *mockUserRepo) UpdateLastLogin(userID string, at time.Time) error {
	m.lastLogin[userID] = at
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		service *auth.Service
		repo    *mockUserRepo
	)

	BeforeEach(func() {
		repo = newMockUserRepo()
		repo.addUser("emp_1", "eko@xtractpay.dev", "secret-password", auth.RoleEmployee)
		tokenGen := auth.NewJWTTokenGenerator("test-access-secret", "test-refresh-secret")
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("should return tokens for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "eko@xtractpay.dev",
				Password: "secret-password",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("should record the login time", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "eko@xtractpay.dev",
				Password: "secret-password",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastLogin).To(HaveKey("emp_1"))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "eko@xtractpay.dev",
				Password: "wrong",
			})

			Expect(errors.Is(err, auth.ErrInvalidCredentials)).To(BeTrue())
		})

		It("should reject an unknown email with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@xtractpay.dev",
				Password: "whatever",
			})

			Expect(errors.Is(err, auth.ErrInvalidCredentials)).To(BeTrue())
		})
	})

	Describe("token validation", func() {
		It("should round-trip claims through an access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "eko@xtractpay.dev",
				Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("emp_1"))
			Expect(claims.Role).To(Equal(auth.RoleEmployee))
		})

		It("should reject garbage tokens", func() {
			_, err := service.ValidateAccessToken("not.a.token")
			Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
		})

		It("should reject a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("other-secret", "other-refresh")
			token, err := otherGen.GenerateAccessToken(&auth.User{ID: "emp_1", Role: auth.RoleEmployee})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
		})
	})

	Describe("RefreshTokens", func() {
		It("should rotate the token pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "eko@xtractpay.dev",
				Password: "secret-password",
			})
			Expect(err).NotTo(HaveOccurred())

			rotated, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(rotated.AccessToken).NotTo(BeEmpty())
			Expect(rotated.RefreshToken).NotTo(BeEmpty())
		})
	})
})

var _ = Describe("CheckAccess", func() {
	DescribeTable("resource and action matrix",
		func(role, resource, action string, expected bool) {
			Expect(auth.CheckAccess(role, resource, action)).To(Equal(expected))
		},
		Entry("employee can create expenses", auth.RoleEmployee, "expenses", "create", true),
		Entry("employee can view expenses", auth.RoleEmployee, "expenses", "view", true),
		Entry("employee cannot approve expenses", auth.RoleEmployee, "expenses", "approve", false),
		Entry("manager can approve expenses", auth.RoleManager, "expenses", "approve", true),
		Entry("manager cannot delete expenses", auth.RoleManager, "expenses", "delete", false),
		Entry("admin can delete expenses", auth.RoleAdmin, "expenses", "delete", true),
		Entry("employee cannot view users", auth.RoleEmployee, "users", "view", false),
		Entry("manager can view users", auth.RoleManager, "users", "view", true),
		Entry("manager cannot edit users", auth.RoleManager, "users", "edit", false),
		Entry("admin can edit users", auth.RoleAdmin, "users", "edit", true),
		Entry("manager can view reports", auth.RoleManager, "reports", "view", true),
		Entry("employee cannot export reports", auth.RoleEmployee, "reports", "export", false),
		Entry("unknown resource is denied", auth.RoleAdmin, "payments", "view", false),
		Entry("unknown action is denied", auth.RoleAdmin, "expenses", "transmogrify", false),
	)
})

var _ = Describe("HasMinimumRole", func() {
	It("should pass a role at or above the minimum", func() {
		Expect(auth.HasMinimumRole(auth.RoleManager, auth.RoleManager)).To(BeTrue())
		Expect(auth.HasMinimumRole(auth.RoleAdmin, auth.RoleManager)).To(BeTrue())
	})

	It("should fail a role below the minimum", func() {
		Expect(auth.HasMinimumRole(auth.RoleEmployee, auth.RoleManager)).To(BeFalse())
	})

	It("should never pass unknown roles", func() {
		Expect(auth.HasMinimumRole("superuser", auth.RoleEmployee)).To(BeFalse())
		Expect(auth.HasMinimumRole("", auth.RoleEmployee)).To(BeFalse())
	})
})

var _ = Describe("RBACAuthorization middleware", func() {
	var rbac *auth.RBACAuthorization

	BeforeEach(func() {
		rbac = auth.NewRBACAuthorization(slog.Default())
	})

	invoke := func(guard func(http.Handler) http.Handler, user *auth.User) *httptest.ResponseRecorder {
		handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("should let a manager through the user view guard", func() {
		rec := invoke(rbac.Require("users", "view"), &auth.User{ID: "man_1", Role: auth.RoleManager})
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should deny an employee the user view guard", func() {
		rec := invoke(rbac.Require("users", "view"), &auth.User{ID: "emp_1", Role: auth.RoleEmployee})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should deny a manager the user management guard", func() {
		rec := invoke(rbac.RequireManageUsers(), &auth.User{ID: "man_1", Role: auth.RoleManager})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should let an admin through the user management guard", func() {
		rec := invoke(rbac.RequireManageUsers(), &auth.User{ID: "adm_1", Role: auth.RoleAdmin})
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should answer 401 when no user is in context", func() {
		rec := invoke(rbac.Require("users", "view"), nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
