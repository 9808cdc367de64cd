package user_test

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	users map[string]*user.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*user.User)}
}

func (m *mockUserRepository) Create(u *user.User) error {
	if _, exists := m.users[u.ID]; exists {
		return errors.New("duplicate key")
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) GetByID(id string) (*user.User, error) {
	u, exists := m.users[id]
	if !exists {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepository) GetByPhone(phone string) (*user.User, error) {
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepository) GetAll() ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) MaxSequenceForPrefix(prefix string) (int, error) {
	max := 0
	for id := range m.users {
		if !strings.HasPrefix(id, prefix+"_") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, prefix+"_")); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Delete(id string) error {
	delete(m.users, id)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

var _ = Describe("UserService", func() {
	var (
		service  *user.Service
		mockRepo *mockUserRepository
	)

	newUserDTO := func(email, role string) user.CreateUserDTO {
		return user.CreateUserDTO{
			Email:    email,
			Name:     "Test User",
			Password: "long-enough-password",
			Role:     role,
		}
	}

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, fakeHasher{}, logger)
	})

	Describe("CreateUser", func() {
		It("should assign role-prefixed sequential ids", func() {
			first, err := service.CreateUser(newUserDTO("a@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.ID).To(Equal("emp_1"))

			second, err := service.CreateUser(newUserDTO("b@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal("emp_2"))

			manager, err := service.CreateUser(newUserDTO("c@x.dev", auth.RoleManager))
			Expect(err).NotTo(HaveOccurred())
			Expect(manager.ID).To(Equal("man_1"))
		})

		It("should continue the sequence after the highest existing id", func() {
			mockRepo.users["emp_7"] = &user.User{ID: "emp_7", Email: "old@x.dev"}

			created, err := service.CreateUser(newUserDTO("new@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal("emp_8"))
		})

		It("should reject a duplicate email", func() {
			_, err := service.CreateUser(newUserDTO("a@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateUser(newUserDTO("a@x.dev", auth.RoleManager))
			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
		})

		It("should store the hashed password, never the plaintext", func() {
			created, err := service.CreateUser(newUserDTO("a@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.PasswordHash).To(Equal("hashed:long-enough-password"))
		})

		It("should initialize an empty team for managers", func() {
			created, err := service.CreateUser(newUserDTO("m@x.dev", auth.RoleManager))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ManagedEmployees).NotTo(BeNil())
			Expect(created.ManagedEmployees).To(BeEmpty())
		})
	})

	Describe("AssignEmployee", func() {
		BeforeEach(func() {
			_, err := service.CreateUser(newUserDTO("m@x.dev", auth.RoleManager))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateUser(newUserDTO("e@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should add the employee to the manager's team", func() {
			Expect(service.AssignEmployee("man_1", "emp_1")).To(Succeed())

			ids, err := service.ManagedEmployeeIDs("man_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("emp_1"))
		})

		It("should be idempotent", func() {
			Expect(service.AssignEmployee("man_1", "emp_1")).To(Succeed())
			Expect(service.AssignEmployee("man_1", "emp_1")).To(Succeed())

			ids, err := service.ManagedEmployeeIDs("man_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))
		})

		It("should refuse to assign to a non-manager", func() {
			err := service.AssignEmployee("emp_1", "emp_1")
			Expect(err).To(HaveOccurred())
		})

		It("should remove the employee on unassign", func() {
			Expect(service.AssignEmployee("man_1", "emp_1")).To(Succeed())
			Expect(service.UnassignEmployee("man_1", "emp_1")).To(Succeed())

			ids, err := service.ManagedEmployeeIDs("man_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("EmployeeIDByPhone", func() {
		It("should resolve a known phone number", func() {
			dto := newUserDTO("e@x.dev", auth.RoleEmployee)
			dto.PhoneNumber = "+15550102"
			_, err := service.CreateUser(dto)
			Expect(err).NotTo(HaveOccurred())

			id, err := service.EmployeeIDByPhone("+15550102")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("emp_1"))
		})

		It("should fail for an unknown phone number", func() {
			_, err := service.EmployeeIDByPhone("+10000000")
			Expect(errors.Is(err, user.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("auth repository surface", func() {
		BeforeEach(func() {
			_, err := service.CreateUser(newUserDTO("e@x.dev", auth.RoleEmployee))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should expose credentials by email", func() {
			hash, id, err := service.GetCredentialsByEmail("e@x.dev")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("emp_1"))
			Expect(hash).To(HavePrefix("hashed:"))
		})

		It("should project the domain user onto the auth principal", func() {
			principal, err := service.GetAuthUser("emp_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.ID).To(Equal("emp_1"))
			Expect(principal.Role).To(Equal(auth.RoleEmployee))
		})
	})
})

var _ = Describe("FormatID", func() {
	It("should map roles to their id prefixes", func() {
		Expect(user.FormatID(auth.RoleEmployee, 7)).To(Equal("emp_7"))
		Expect(user.FormatID(auth.RoleManager, 3)).To(Equal("man_3"))
		Expect(user.FormatID(auth.RoleAdmin, 1)).To(Equal("adm_1"))
	})
})
