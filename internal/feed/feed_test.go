package feed

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

func donor() donations.Actor {
	return donations.Actor{UserID: uuid.New(), Role: enums.UserRoleDonor}
}

func ngo() donations.Actor {
	return donations.Actor{UserID: uuid.New(), Role: enums.UserRoleNGO}
}

func TestResolveDefaultsToAvailablePending(t *testing.T) {
	filters, err := Resolve(Query{}, donor())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filters.Status == nil || *filters.Status != enums.FoodStatusPending {
		t.Fatalf("expected pending pin, got %+v", filters)
	}
	if filters.CreatorUID != nil || filters.NGOUID != nil {
		t.Fatal("available scope must not bind a viewer")
	}
}

func TestResolveAvailableKeepsExplicitStatus(t *testing.T) {
	filters, err := Resolve(Query{Scope: ScopeAvailable, Status: "donated"}, donor())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filters.Status == nil || *filters.Status != enums.FoodStatusDonated {
		t.Fatalf("explicit status lost: %+v", filters)
	}
}

func TestResolveStatusAllClearsFilter(t *testing.T) {
	viewer := donor()
	filters, err := Resolve(Query{Scope: ScopeMine, Status: StatusAll}, viewer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filters.Status != nil {
		t.Fatal("status=all must clear the status filter")
	}
	if filters.CreatorUID == nil || *filters.CreatorUID != viewer.UserID {
		t.Fatalf("mine scope must bind the creator: %+v", filters)
	}
}

func TestResolveAcceptedRequiresNGO(t *testing.T) {
	_, err := Resolve(Query{Scope: ScopeAccepted}, donor())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	viewer := ngo()
	filters, err := Resolve(Query{Scope: ScopeAccepted}, viewer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filters.NGOUID == nil || *filters.NGOUID != viewer.UserID {
		t.Fatalf("accepted scope must bind the ngo: %+v", filters)
	}
}

func TestResolveRejectsUnknownInputs(t *testing.T) {
	_, err := Resolve(Query{Scope: "everything"}, donor())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for scope, got %v", err)
	}
	_, err = Resolve(Query{Status: "teleported"}, donor())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for status, got %v", err)
	}
}

func TestResolveTrimsSearch(t *testing.T) {
	filters, err := Resolve(Query{Search: "  biryani  ", Status: StatusAll, Scope: ScopeMine}, donor())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filters.Search != "biryani" {
		t.Fatalf("search not trimmed: %q", filters.Search)
	}
}
