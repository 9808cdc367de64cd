package postgres

import (
	"time"

	"github.com/xtractpay/xtractpay/internal/bill"
	"gorm.io/gorm"
)

// BillRepository implements the bill.Repository interface using GORM
type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) bill.Repository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(b *bill.Bill) error {
	return r.db.Create(b).Error
}

func (r *BillRepository) GetByID(id string) (*bill.Bill, error) {
	var b bill.Bill
	err := r.db.Where("bill_id = ?", id).First(&b).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bill.ErrBillNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BillRepository) GetByEmployeeID(employeeID string) ([]*bill.Bill, error) {
	var bills []*bill.Bill
	err := r.db.Where("employee_id = ?", employeeID).
		Order("submitted_at DESC").
		Find(&bills).Error
	return bills, err
}

func (r *BillRepository) GetByEmployeeIDs(employeeIDs []string) ([]*bill.Bill, error) {
	var bills []*bill.Bill
	err := r.db.Where("employee_id IN ?", employeeIDs).
		Order("submitted_at DESC").
		Find(&bills).Error
	return bills, err
}

func (r *BillRepository) GetAll() ([]*bill.Bill, error) {
	var bills []*bill.Bill
	err := r.db.Order("submitted_at DESC").Find(&bills).Error
	return bills, err
}

func (r *BillRepository) GetFlagged() ([]*bill.Bill, error) {
	var bills []*bill.Bill
	err := r.db.Where("is_flagged = ?", true).
		Order("submitted_at DESC").
		Find(&bills).Error
	return bills, err
}

// Update replaces the whole row; concurrent writers last-write-wins
func (r *BillRepository) Update(b *bill.Bill) error {
	b.UpdatedAt = time.Now()
	return r.db.Save(b).Error
}
