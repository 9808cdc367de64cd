package postgres

import (
	"time"

	"github.com/xtractpay/xtractpay/internal/grievance"
	"gorm.io/gorm"
)

// GrievanceRepository implements the grievance.Repository interface using GORM
type GrievanceRepository struct {
	db *gorm.DB
}

func NewGrievanceRepository(db *gorm.DB) grievance.Repository {
	return &GrievanceRepository{db: db}
}

func (r *GrievanceRepository) Create(g *grievance.Grievance) error {
	return r.db.Create(g).Error
}

func (r *GrievanceRepository) GetByID(id string) (*grievance.Grievance, error) {
	var g grievance.Grievance
	err := r.db.Where("grievance_id = ?", id).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, grievance.ErrGrievanceNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GrievanceRepository) GetByEmployeeID(employeeID string) ([]*grievance.Grievance, error) {
	var grievances []*grievance.Grievance
	err := r.db.Where("employee_id = ?", employeeID).
		Order("submitted_at DESC").
		Find(&grievances).Error
	return grievances, err
}

func (r *GrievanceRepository) GetAll() ([]*grievance.Grievance, error) {
	var grievances []*grievance.Grievance
	err := r.db.Order("submitted_at DESC").Find(&grievances).Error
	return grievances, err
}

func (r *GrievanceRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&grievance.Grievance{}).Count(&count).Error
	return count, err
}

func (r *GrievanceRepository) Update(g *grievance.Grievance) error {
	g.UpdatedAt = time.Now()
	return r.db.Save(g).Error
}
