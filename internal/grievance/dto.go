package grievance

import "errors"

// CreateGrievanceDTO is the filing payload
type CreateGrievanceDTO struct {
	BillID      string   `json:"bill_id"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Attachments []string `json:"attachments"`
}

func (dto CreateGrievanceDTO) Validate() error {
	if dto.Description == "" {
		return errors.New("description is required")
	}
	return nil
}

// ResolveGrievanceDTO closes a grievance with an outcome
type ResolveGrievanceDTO struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

func (dto ResolveGrievanceDTO) Validate() error {
	if dto.Status != StatusResolved && dto.Status != StatusRejected {
		return errors.New("status must be either 'resolved' or 'rejected'")
	}
	if dto.Resolution == "" {
		return errors.New("resolution is required")
	}
	return nil
}
