package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// CreateStaffInput carries the data for registering a staff member.
type CreateStaffInput struct {
	FullName       string
	Email          string
	Password       string
	Module         string
	AttentionTypes []string
}

// UpdateStaffInput carries the mutable staff fields. Nil means unchanged.
type UpdateStaffInput struct {
	FullName       *string
	Module         *string
	AttentionTypes []string
}

// StaffOverview pairs a staff member with the ticket they are serving.
type StaffOverview struct {
	Staff         *domain.Staff `json:"staff"`
	CurrentTicket *string       `json:"current_ticket,omitempty"`
}

// StaffService manages staff records and their availability status.
type StaffService struct {
	uow        repository.UnitOfWork
	repos      repository.Repositories
	audit      *AuditService
	bcryptCost int
	logger     *zap.Logger
}

// NewStaffService creates the service.
func NewStaffService(uow repository.UnitOfWork, repos repository.Repositories, audit *AuditService, bcryptCost int, logger *zap.Logger) *StaffService {
	return &StaffService{uow: uow, repos: repos, audit: audit, bcryptCost: bcryptCost, logger: logger}
}

// Create registers a staff member. New members start AVAILABLE so the
// scheduler can pick them up immediately.
func (s *StaffService) Create(ctx context.Context, input CreateStaffInput) (*domain.Staff, error) {
	if input.FullName == "" || input.Email == "" || input.Password == "" || input.Module == "" {
		return nil, apperrors.NewValidationError("full_name, email, password and module are required", nil)
	}
	attentionTypes, err := parseAttentionTypes(input.AttentionTypes)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now().UTC()
	staff := &domain.Staff{
		ID:               uuid.NewString(),
		FullName:         input.FullName,
		Email:            input.Email,
		PasswordHash:     hash,
		Module:           input.Module,
		Status:           domain.StaffStatusAvailable,
		AttentionTypes:   attentionTypes,
		LastStatusChange: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repos.Staff.Create(ctx, staff); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email or desk module already in use", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// Get returns one staff member by id.
func (s *StaffService) Get(ctx context.Context, id string) (*domain.Staff, error) {
	staff, err := s.repos.Staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// List returns all staff with the ticket each busy member is serving.
func (s *StaffService) List(ctx context.Context) ([]StaffOverview, error) {
	members, err := s.repos.Staff.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	overviews := make([]StaffOverview, 0, len(members))
	for i := range members {
		member := &members[i]
		overview := StaffOverview{Staff: member}
		if member.Status == domain.StaffStatusBusy {
			ticket, err := s.repos.Tickets.FindAttendingByStaff(ctx, member.ID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			if ticket != nil {
				overview.CurrentTicket = &ticket.Number
			}
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

// Update edits a staff member's profile fields.
func (s *StaffService) Update(ctx context.Context, id string, input UpdateStaffInput) (*domain.Staff, error) {
	var updated *domain.Staff
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		staff, err := r.Staff.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("staff member", nil)
			}
			return err
		}

		if input.FullName != nil {
			staff.FullName = *input.FullName
		}
		if input.Module != nil {
			staff.Module = *input.Module
		}
		if input.AttentionTypes != nil {
			attentionTypes, err := parseAttentionTypes(input.AttentionTypes)
			if err != nil {
				return err
			}
			staff.AttentionTypes = attentionTypes
		}
		staff.UpdatedAt = time.Now().UTC()

		if err := r.Staff.Update(ctx, staff); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.NewConflict("desk module already in use", nil)
			}
			return err
		}
		updated = staff
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

// SetStatus changes availability. BUSY is owned by the scheduler and cannot
// be set by hand, and a member serving a ticket must finish or the ticket
// must be resolved before going AVAILABLE or OFFLINE.
func (s *StaffService) SetStatus(ctx context.Context, id string, status domain.StaffStatus, actor string) (*domain.Staff, error) {
	if status == domain.StaffStatusBusy {
		return nil, apperrors.NewValidationError("busy status is set by assignment only", nil)
	}
	if status != domain.StaffStatusAvailable && status != domain.StaffStatusOffline {
		return nil, apperrors.NewValidationError("unknown staff status", map[string]any{"status": string(status)})
	}

	var updated *domain.Staff
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		staff, err := r.Staff.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("staff member", nil)
			}
			return err
		}

		if staff.Status == domain.StaffStatusBusy {
			if _, err := r.Tickets.FindAttendingByStaff(ctx, staff.ID); err == nil {
				return apperrors.NewConflict("finish the current ticket before changing status", nil)
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}

		now := time.Now().UTC()
		if err := r.Staff.SetStatus(ctx, staff.ID, status, now); err != nil {
			return err
		}
		staff.Status = status
		staff.LastStatusChange = now
		staff.UpdatedAt = now
		updated = staff
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(domain.AuditStaffStatusChanged, actor, "staff", updated.ID, string(status))
	return updated, nil
}

func parseAttentionTypes(raw []string) ([]domain.AttentionType, error) {
	if len(raw) == 0 {
		return nil, apperrors.NewValidationError("at least one attention type is required", nil)
	}
	types := make([]domain.AttentionType, 0, len(raw))
	for _, value := range raw {
		attentionType, err := domain.ParseAttentionType(value)
		if err != nil {
			return nil, apperrors.NewValidationError("unknown attention type", map[string]any{"attention_type": value})
		}
		types = append(types, attentionType)
	}
	return types, nil
}
