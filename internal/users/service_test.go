package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

type stubProfileRepo struct {
	users   map[uuid.UUID]*models.User
	updates map[string]any
}

func (s *stubProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubProfileRepo) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	user := s.users[id]
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if anon, ok := updates["is_anonymous"].(bool); ok {
		user.IsAnonymous = anon
	}
	return nil
}

func TestProfileNotFound(t *testing.T) {
	svc, err := NewService(&stubProfileRepo{users: map[uuid.UUID]*models.User{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Profile(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	userID := uuid.New()
	repo := &stubProfileRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "donor@example.com", Name: "Old Name", Role: enums.UserRoleDonor, IsActive: true},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "New Name"
	anon := true
	dto, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{Name: &name, IsAnonymous: &anon})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Name != "New Name" || !dto.IsAnonymous {
		t.Fatalf("updates not applied: %+v", dto)
	}
	if _, ok := repo.updates["latitude"]; ok {
		t.Fatal("unprovided field must not be written")
	}
	if _, ok := repo.updates["updated_at"]; !ok {
		t.Fatal("updated_at not stamped")
	}
}

func TestUpdateProfileNoFieldsIsRead(t *testing.T) {
	userID := uuid.New()
	repo := &stubProfileRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "a@b.c", Name: "Name", Role: enums.UserRoleNGO, IsActive: true},
	}}
	svc, _ := NewService(repo)

	dto, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.updates != nil {
		t.Fatal("no update should be issued")
	}
	if dto.Name != "Name" {
		t.Fatalf("unexpected dto %+v", dto)
	}
}
