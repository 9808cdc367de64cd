package user

import (
	"log/slog"
	"time"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/auth"
)

// Repository defines the data access methods for users
type Repository interface {
	Create(u *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByPhone(phone string) (*User, error)
	GetAll() ([]*User, error)
	MaxSequenceForPrefix(prefix string) (int, error)
	Update(u *User) error
	Delete(id string) error
}

// PasswordHasher hashes plaintext passwords for storage
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// CreateUser registers an account with a role-prefixed sequential id.
// The id is assigned by reading the highest existing sequence and adding
// one; two concurrent creations can race to the same id and the second
// insert fails on the primary key.
func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("user validation failed", "error", err, "email", dto.Email)
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internalerrors.NewConflictError("email already registered", internalerrors.ErrCodeValidationFailed)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	seq, err := s.repo.MaxSequenceForPrefix(IDPrefix(dto.Role))
	if err != nil {
		s.logger.Error("failed to read id sequence", "error", err, "role", dto.Role)
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:           FormatID(dto.Role, seq+1),
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         dto.Role,
		Department:   dto.Department,
		PhoneNumber:  dto.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.Role == auth.RoleManager {
		u.ManagedEmployees = StringList{}
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "user_id", u.ID)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "department", u.Department)

	return u, nil
}

func (s *Service) GetUser(id string) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internalerrors.ErrEmployeeNotFound
	}
	return u, nil
}

func (s *Service) ListUsers() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) UpdateUser(id string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internalerrors.ErrEmployeeNotFound
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Department != nil {
		u.Department = *dto.Department
	}
	if dto.PhoneNumber != nil {
		u.PhoneNumber = *dto.PhoneNumber
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	return u, nil
}

func (s *Service) DeleteUser(id string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internalerrors.ErrEmployeeNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// AssignEmployee adds an employee to a manager's team
func (s *Service) AssignEmployee(managerID, employeeID string) error {
	manager, err := s.repo.GetByID(managerID)
	if err != nil {
		return internalerrors.ErrEmployeeNotFound
	}
	if manager.Role != auth.RoleManager {
		return internalerrors.NewValidationError("user is not a manager", internalerrors.ErrCodeValidationFailed)
	}
	if _, err := s.repo.GetByID(employeeID); err != nil {
		return internalerrors.ErrEmployeeNotFound
	}

	if manager.ManagedEmployees.Contains(employeeID) {
		return nil
	}

	manager.ManagedEmployees = append(manager.ManagedEmployees, employeeID)
	manager.UpdatedAt = time.Now()
	return s.repo.Update(manager)
}

// UnassignEmployee removes an employee from a manager's team
func (s *Service) UnassignEmployee(managerID, employeeID string) error {
	manager, err := s.repo.GetByID(managerID)
	if err != nil {
		return internalerrors.ErrEmployeeNotFound
	}

	kept := manager.ManagedEmployees[:0]
	for _, id := range manager.ManagedEmployees {
		if id != employeeID {
			kept = append(kept, id)
		}
	}
	manager.ManagedEmployees = kept
	manager.UpdatedAt = time.Now()
	return s.repo.Update(manager)
}

// EmployeeIDByPhone resolves a submitter id for the extraction pipeline
func (s *Service) EmployeeIDByPhone(phone string) (string, error) {
	u, err := s.repo.GetByPhone(phone)
	if err != nil {
		return "", ErrNotFound
	}
	return u.ID, nil
}

// ManagedEmployeeIDs returns the employee ids a manager owns
func (s *Service) ManagedEmployeeIDs(managerID string) ([]string, error) {
	manager, err := s.repo.GetByID(managerID)
	if err != nil {
		return nil, ErrNotFound
	}
	return manager.ManagedEmployees, nil
}

// GetCredentialsByEmail implements the auth user repository
func (s *Service) GetCredentialsByEmail(email string) (string, string, error) {
	u, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", "", ErrNotFound
	}
	return u.PasswordHash, u.ID, nil
}

// GetAuthUser implements the auth user repository
func (s *Service) GetAuthUser(userID string) (*auth.User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return u.ToAuthUser(), nil
}

// UpdateLastLogin implements the auth user repository
func (s *Service) UpdateLastLogin(userID string, at time.Time) error {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = at
	return s.repo.Update(u)
}
