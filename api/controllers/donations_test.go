package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/api/middleware"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type stubDonationsService struct {
	created    *donations.DonationView
	createErr  error
	transition donations.TransitionInput
	listFilter donations.ListFilters
	list       *donations.DonationList
}

func (s *stubDonationsService) Create(_ context.Context, actor donations.Actor, input donations.CreateInput) (*donations.DonationView, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	view := &donations.DonationView{
		ID:         uuid.New(),
		FoodName:   input.FoodName,
		Quantity:   input.Quantity,
		Status:     enums.FoodStatusPending,
		CreatorUID: actor.UserID,
	}
	s.created = view
	return view, nil
}

func (s *stubDonationsService) Get(_ context.Context, id uuid.UUID) (*donations.DonationView, error) {
	return &donations.DonationView{ID: id, Status: enums.FoodStatusPending}, nil
}

func (s *stubDonationsService) List(_ context.Context, _ pagination.Params, filters donations.ListFilters) (*donations.DonationList, error) {
	s.listFilter = filters
	if s.list != nil {
		return s.list, nil
	}
	return &donations.DonationList{}, nil
}

func (s *stubDonationsService) Transition(_ context.Context, input donations.TransitionInput) (*donations.DonationView, error) {
	s.transition = input
	return &donations.DonationView{ID: input.DonationID, Status: input.Target}, nil
}

func (s *stubDonationsService) StatusReport(_ context.Context) (map[enums.FoodStatus]int64, error) {
	return map[enums.FoodStatus]int64{}, nil
}

func authedRequest(method, target string, body []byte, userID uuid.UUID, role enums.UserRole) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCreateDonationReturns201(t *testing.T) {
	svc := &stubDonationsService{}
	donor := uuid.New()
	body := []byte(`{"food_name":"Veg biryani","quantity":"15 plates","image_upload_id":"b7f3f1c2-8d7e-4a39-9a65-2f4f4be06c11","latitude":19.07,"longitude":72.87,"address":"Bandra West"}`)

	req := authedRequest(http.MethodPost, "/api/v1/donations", body, donor, enums.UserRoleDonor)
	resp := httptest.NewRecorder()
	CreateDonation(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.created == nil || svc.created.FoodName != "Veg biryani" {
		t.Fatalf("service not invoked with body: %+v", svc.created)
	}
}

func TestCreateDonationRejectsMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/donations", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()
	CreateDonation(&stubDonationsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestTransitionDonationParsesTarget(t *testing.T) {
	svc := &stubDonationsService{}
	ngo := uuid.New()
	donationID := uuid.New()

	req := authedRequest(http.MethodPost, "/api/v1/donations/"+donationID.String()+"/status", []byte(`{"status":"accepted"}`), ngo, enums.UserRoleNGO)
	req = withURLParam(req, "donationID", donationID.String())
	resp := httptest.NewRecorder()
	TransitionDonation(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.transition.Target != enums.FoodStatusAccepted || svc.transition.DonationID != donationID {
		t.Fatalf("unexpected transition input: %+v", svc.transition)
	}
	if svc.transition.Actor.UserID != ngo || svc.transition.Actor.Role != enums.UserRoleNGO {
		t.Fatalf("actor not forwarded: %+v", svc.transition.Actor)
	}
}

func TestTransitionDonationRejectsUnknownStatus(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/donations/x/status", []byte(`{"status":"teleported"}`), uuid.New(), enums.UserRoleNGO)
	req = withURLParam(req, "donationID", uuid.New().String())
	resp := httptest.NewRecorder()
	TransitionDonation(&stubDonationsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListDonationsScopes(t *testing.T) {
	donor := uuid.New()
	ngo := uuid.New()

	t.Run("default scope pins pending", func(t *testing.T) {
		svc := &stubDonationsService{}
		req := authedRequest(http.MethodGet, "/api/v1/donations", nil, donor, enums.UserRoleDonor)
		resp := httptest.NewRecorder()
		ListDonations(svc, nil).ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
		if svc.listFilter.Status == nil || *svc.listFilter.Status != enums.FoodStatusPending {
			t.Fatalf("expected pending filter, got %+v", svc.listFilter)
		}
	})

	t.Run("mine scope filters by creator", func(t *testing.T) {
		svc := &stubDonationsService{}
		req := authedRequest(http.MethodGet, "/api/v1/donations?scope=mine&status=all", nil, donor, enums.UserRoleDonor)
		resp := httptest.NewRecorder()
		ListDonations(svc, nil).ServeHTTP(resp, req)

		if svc.listFilter.CreatorUID == nil || *svc.listFilter.CreatorUID != donor {
			t.Fatalf("creator filter missing: %+v", svc.listFilter)
		}
		if svc.listFilter.Status != nil {
			t.Fatal("status=all must clear the status filter")
		}
	})

	t.Run("accepted scope is ngo only", func(t *testing.T) {
		svc := &stubDonationsService{}
		req := authedRequest(http.MethodGet, "/api/v1/donations?scope=accepted", nil, donor, enums.UserRoleDonor)
		resp := httptest.NewRecorder()
		ListDonations(svc, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", resp.Code)
		}

		req = authedRequest(http.MethodGet, "/api/v1/donations?scope=accepted", nil, ngo, enums.UserRoleNGO)
		resp = httptest.NewRecorder()
		ListDonations(svc, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
		if svc.listFilter.NGOUID == nil || *svc.listFilter.NGOUID != ngo {
			t.Fatalf("ngo filter missing: %+v", svc.listFilter)
		}
	})
}

func TestGetDonationParsesID(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/donations/"+id.String(), nil)
	req = withURLParam(req, "donationID", id.String())
	resp := httptest.NewRecorder()
	GetDonation(&stubDonationsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data donations.DonationView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ID != id {
		t.Fatalf("unexpected id %s", envelope.Data.ID)
	}
}
