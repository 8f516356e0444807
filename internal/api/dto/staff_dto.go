package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	Module         string   `json:"module"`
	AttentionTypes []string `json:"attention_types"`
}

// UpdateStaffRequest payload. Omitted fields stay unchanged.
type UpdateStaffRequest struct {
	FullName       *string  `json:"full_name"`
	Module         *string  `json:"module"`
	AttentionTypes []string `json:"attention_types"`
}

// SetStaffStatusRequest payload.
type SetStaffStatusRequest struct {
	Status string `json:"status"`
}

// StaffResponse is the staff view without credentials.
type StaffResponse struct {
	ID               string             `json:"id"`
	FullName         string             `json:"full_name"`
	Email            string             `json:"email"`
	Module           string             `json:"module"`
	Status           domain.StaffStatus `json:"status"`
	AttentionTypes   []string           `json:"attention_types"`
	LastStatusChange time.Time          `json:"last_status_change"`
	CurrentTicket    *string            `json:"current_ticket,omitempty"`
}

// StaffView maps a domain staff member to its response shape.
func StaffView(staff *domain.Staff) StaffResponse {
	types := make([]string, 0, len(staff.AttentionTypes))
	for _, attentionType := range staff.AttentionTypes {
		types = append(types, string(attentionType))
	}
	return StaffResponse{
		ID:               staff.ID,
		FullName:         staff.FullName,
		Email:            staff.Email,
		Module:           staff.Module,
		Status:           staff.Status,
		AttentionTypes:   types,
		LastStatusChange: staff.LastStatusChange,
	}
}
