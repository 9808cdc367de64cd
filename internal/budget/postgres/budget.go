package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xtractpay/xtractpay/internal/budget"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) CreateBudget(b *budget.BudgetItem) error {
	if err := r.db.Create(b).Error; err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) GetBudget(id string) (*budget.BudgetItem, error) {
	var b budget.BudgetItem
	err := r.db.Where("budget_id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budget.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &b, nil
}

func (r *BudgetRepository) GetBudgetsByFiscalYear(year int) ([]*budget.BudgetItem, error) {
	var budgets []*budget.BudgetItem
	err := r.db.Where("fiscal_year = ?", year).
		Order("quarter ASC, category ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (r *BudgetRepository) GetBudgetByTarget(category, department string, year int) (*budget.BudgetItem, error) {
	var b budget.BudgetItem
	err := r.db.Where("category = ? AND department = ? AND fiscal_year = ?", category, department, year).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budget.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget by target: %w", err)
	}
	return &b, nil
}

func (r *BudgetRepository) UpdateBudget(b *budget.BudgetItem) error {
	if err := r.db.Save(b).Error; err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) DeleteBudget(id string) error {
	result := r.db.Where("budget_id = ?", id).Delete(&budget.BudgetItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return budget.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) CreateControl(c *budget.SpendingControl) error {
	if err := r.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create spending control: %w", err)
	}
	return nil
}

func (r *BudgetRepository) GetControl(id string) (*budget.SpendingControl, error) {
	var c budget.SpendingControl
	err := r.db.Where("control_id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budget.ErrControlNotFound
		}
		return nil, fmt.Errorf("failed to get spending control: %w", err)
	}
	return &c, nil
}

func (r *BudgetRepository) GetActiveControls() ([]*budget.SpendingControl, error) {
	var controls []*budget.SpendingControl
	err := r.db.Where("active = ?", true).Find(&controls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active controls: %w", err)
	}
	return controls, nil
}

func (r *BudgetRepository) GetAllControls() ([]*budget.SpendingControl, error) {
	var controls []*budget.SpendingControl
	err := r.db.Order("created_at DESC").Find(&controls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list controls: %w", err)
	}
	return controls, nil
}

func (r *BudgetRepository) UpdateControl(c *budget.SpendingControl) error {
	if err := r.db.Save(c).Error; err != nil {
		return fmt.Errorf("failed to update spending control: %w", err)
	}
	return nil
}

func (r *BudgetRepository) DeleteControl(id string) error {
	result := r.db.Where("control_id = ?", id).Delete(&budget.SpendingControl{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete spending control: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return budget.ErrControlNotFound
	}
	return nil
}
