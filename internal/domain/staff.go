package domain

import "time"

// StaffStatus enumerates availability states for branch staff.
type StaffStatus string

const (
	StaffStatusAvailable StaffStatus = "AVAILABLE"
	StaffStatusBusy      StaffStatus = "BUSY"
	StaffStatusOffline   StaffStatus = "OFFLINE"
)

// Staff models a branch executive who attends customers at a desk module.
// Status is BUSY exactly while one ATTENDING ticket references the member.
type Staff struct {
	ID               string
	FullName         string
	Email            string
	PasswordHash     string
	Module           string
	Status           StaffStatus
	AttentionTypes   []AttentionType
	LastStatusChange time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Supports reports whether the staff member can handle the given category.
func (s *Staff) Supports(t AttentionType) bool {
	for _, supported := range s.AttentionTypes {
		if supported == t {
			return true
		}
	}
	return false
}
