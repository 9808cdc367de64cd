package budget

import "errors"

// CreateBudgetDTO allocates a budget line
type CreateBudgetDTO struct {
	Category   string  `json:"category"`
	Department string  `json:"department"`
	Allocated  float64 `json:"allocated"`
	FiscalYear int     `json:"fiscal_year"`
	Quarter    int     `json:"quarter"`
}

func (dto CreateBudgetDTO) Validate() error {
	if dto.Category == "" {
		return errors.New("category is required")
	}
	if dto.Department == "" {
		return errors.New("department is required")
	}
	if dto.Allocated <= 0 {
		return errors.New("allocated amount must be greater than 0")
	}
	if dto.FiscalYear < 2000 {
		return errors.New("a valid fiscal year is required")
	}
	if dto.Quarter < 1 || dto.Quarter > 4 {
		return errors.New("quarter must be between 1 and 4")
	}
	return nil
}

// UpdateBudgetDTO adjusts an allocation
type UpdateBudgetDTO struct {
	Allocated *float64 `json:"allocated,omitempty"`
}

func (dto UpdateBudgetDTO) Validate() error {
	if dto.Allocated != nil && *dto.Allocated <= 0 {
		return errors.New("allocated amount must be greater than 0")
	}
	return nil
}

// CreateControlDTO defines a spending cap
type CreateControlDTO struct {
	Type   string  `json:"type"`
	Target string  `json:"target"`
	Limit  float64 `json:"limit"`
	Period string  `json:"period"`
}

func (dto CreateControlDTO) Validate() error {
	if dto.Type != ControlTypeDepartment && dto.Type != ControlTypeCategory {
		return errors.New("type must be department or category")
	}
	if dto.Target == "" {
		return errors.New("target is required")
	}
	if dto.Limit <= 0 {
		return errors.New("limit must be greater than 0")
	}
	switch dto.Period {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
	default:
		return errors.New("period must be monthly, quarterly or yearly")
	}
	return nil
}

// UpdateControlDTO adjusts a spending cap
type UpdateControlDTO struct {
	Limit  *float64 `json:"limit,omitempty"`
	Active *bool    `json:"active,omitempty"`
}

func (dto UpdateControlDTO) Validate() error {
	if dto.Limit != nil && *dto.Limit <= 0 {
		return errors.New("limit must be greater than 0")
	}
	return nil
}
