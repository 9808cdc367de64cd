package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/xtractpay/xtractpay/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id string) (*user.User, error) {
	var u user.User
	err := r.db.Where("user_id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByPhone(phone string) (*user.User, error) {
	var u user.User
	err := r.db.Where("phone_number = ?", phone).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// MaxSequenceForPrefix reads the highest sequence currently assigned for
// an id prefix. The read and the subsequent insert are not atomic.
func (r *UserRepository) MaxSequenceForPrefix(prefix string) (int, error) {
	var ids []string
	err := r.db.Model(&user.User{}).
		Where("user_id LIKE ?", prefix+`\_%`).
		Pluck("user_id", &ids).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, id := range ids {
		raw := strings.TrimPrefix(id, prefix+"_")
		if n, err := strconv.Atoi(raw); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(u).Error
}

func (r *UserRepository) Delete(id string) error {
	return r.db.Where("user_id = ?", id).Delete(&user.User{}).Error
}
