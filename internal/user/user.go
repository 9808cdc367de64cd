package user

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xtractpay/xtractpay/internal/auth"
)

// User is an account in the directory. IDs are role-prefixed sequence
// strings like "emp_7" or "man_3", assigned at creation time.
type User struct {
	ID               string     `json:"id" gorm:"primaryKey;column:user_id"`
	Email            string     `json:"email" gorm:"uniqueIndex;not null"`
	Name             string     `json:"name" gorm:"not null"`
	PasswordHash     string     `json:"-" gorm:"column:password_hash;not null"`
	Role             string     `json:"role" gorm:"not null;default:employee"`
	Department       string     `json:"department"`
	PhoneNumber      string     `json:"phone_number" gorm:"column:phone_number;index"`
	ManagedEmployees StringList `json:"managed_employees,omitempty" gorm:"column:managed_employees;type:jsonb"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "users"
}

// IDPrefix returns the sequence prefix for a role
func IDPrefix(role string) string {
	switch role {
	case auth.RoleManager:
		return "man"
	case auth.RoleAdmin:
		return "adm"
	default:
		return "emp"
	}
}

// FormatID builds a role-prefixed id from a sequence number
func FormatID(role string, seq int) string {
	return fmt.Sprintf("%s_%d", IDPrefix(role), seq)
}

func (u *User) ToAuthUser() *auth.User {
	return &auth.User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
	}
}

// StringList stores a JSON array of strings in a single column
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into StringList", value)
		}
	}
	return json.Unmarshal(bytes, l)
}

func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already registered")
)
