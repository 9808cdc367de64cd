package user

import (
	"errors"
	"strings"

	"github.com/xtractpay/xtractpay/internal/auth"
)

// CreateUserDTO is the admin-facing account creation payload
type CreateUserDTO struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phone_number"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	switch dto.Role {
	case auth.RoleEmployee, auth.RoleManager, auth.RoleAdmin:
	case "":
		return errors.New("role is required")
	default:
		return errors.New("role must be employee, manager or admin")
	}
	return nil
}

// UpdateUserDTO patches profile fields; nil fields are left untouched
type UpdateUserDTO struct {
	Name        *string `json:"name,omitempty"`
	Department  *string `json:"department,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Role        *string `json:"role,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Role != nil {
		switch *dto.Role {
		case auth.RoleEmployee, auth.RoleManager, auth.RoleAdmin:
		default:
			return errors.New("role must be employee, manager or admin")
		}
	}
	return nil
}

// AssignEmployeeDTO adds or removes an employee from a manager's team
type AssignEmployeeDTO struct {
	EmployeeID string `json:"employee_id"`
}

func (dto AssignEmployeeDTO) Validate() error {
	if dto.EmployeeID == "" {
		return errors.New("employee_id is required")
	}
	return nil
}
