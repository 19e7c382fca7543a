package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

type userDirectory interface {
	List(ctx context.Context, role *enums.UserRole, limit, offset int) ([]models.User, int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
}

type donationReporter interface {
	StatusReport(ctx context.Context) (map[enums.FoodStatus]int64, error)
}

// UserListFilters narrows the admin user directory.
type UserListFilters struct {
	Role   *enums.UserRole
	Limit  int
	Offset int
}

// UserList is a page of the user directory.
type UserList struct {
	Users []users.UserDTO `json:"users"`
	Total int64           `json:"total"`
}

// DonationReport aggregates donations per pipeline status.
type DonationReport struct {
	Counts map[enums.FoodStatus]int64 `json:"counts"`
	Total  int64                      `json:"total"`
}

// Service exposes the admin console operations.
type Service interface {
	ListUsers(ctx context.Context, filters UserListFilters) (*UserList, error)
	SetUserActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*uuid.UUID, error)
	DonationReport(ctx context.Context) (*DonationReport, error)
}

type service struct {
	users     userDirectory
	donations donationReporter
}

// NewService wires the admin service.
func NewService(directory userDirectory, donations donationReporter) (Service, error) {
	if directory == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	if donations == nil {
		return nil, fmt.Errorf("donation reporter is required")
	}
	return &service{users: directory, donations: donations}, nil
}

func (s *service) ListUsers(ctx context.Context, filters UserListFilters) (*UserList, error) {
	if filters.Role != nil && !filters.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}
	rows, total, err := s.users.List(ctx, filters.Role, filters.Limit, filters.Offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return &UserList{Users: out, Total: total}, nil
}

func (s *service) SetUserActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	// Admins cannot lock themselves out.
	if !active && actorID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}
	affected, err := s.users.SetActive(ctx, userID, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set user active")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return &userID, nil
}

func (s *service) DonationReport(ctx context.Context) (*DonationReport, error) {
	counts, err := s.donations.StatusReport(ctx)
	if err != nil {
		return nil, err
	}
	report := &DonationReport{Counts: map[enums.FoodStatus]int64{}}
	for _, status := range enums.FoodStatusValues() {
		report.Counts[status] = counts[status]
		report.Total += counts[status]
	}
	return report, nil
}
