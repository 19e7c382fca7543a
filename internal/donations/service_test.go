package donations

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type stubRepo struct {
	records       map[uuid.UUID]*models.FoodRecord
	updateCalls   int
	forceZeroRows bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[uuid.UUID]*models.FoodRecord)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, record *models.FoodRecord) (*models.FoodRecord, error) {
	s.records[record.ID] = record
	return record, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.FoodRecord, string, error) {
	out := make([]models.FoodRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, *record)
	}
	return out, "", nil
}

func (s *stubRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.FoodStatus, updates map[string]any) (int64, error) {
	s.updateCalls++
	if s.forceZeroRows {
		return 0, nil
	}
	record, ok := s.records[id]
	if !ok || record.Status != from {
		return 0, nil
	}
	applyUpdates(record, updates)
	return 1, nil
}

func (s *stubRepo) CountByStatus(ctx context.Context) (map[enums.FoodStatus]int64, error) {
	counts := make(map[enums.FoodStatus]int64)
	for _, record := range s.records {
		counts[record.Status]++
	}
	return counts, nil
}

func applyUpdates(record *models.FoodRecord, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "status":
			record.Status = value.(enums.FoodStatus)
		case "updated_at":
			record.UpdatedAt = value.(time.Time)
		case "accepted_at":
			ts := value.(time.Time)
			record.AcceptedAt = &ts
		case "picked_up_at":
			ts := value.(time.Time)
			record.PickedUpAt = &ts
		case "in_transit_at":
			ts := value.(time.Time)
			record.InTransitAt = &ts
		case "donated_at":
			ts := value.(time.Time)
			record.DonatedAt = &ts
		case "ngo_details":
			var snapshot models.IdentitySnapshot
			if err := json.Unmarshal([]byte(value.(string)), &snapshot); err == nil {
				record.NGODetails = &snapshot
			}
		}
	}
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubUsers struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubPublisher struct {
	events []CreatedEvent
	err    error
}

func (s *stubPublisher) PublishDonationCreated(ctx context.Context, event CreatedEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubUploads struct {
	uploads map[uuid.UUID]*models.MediaUpload
}

func (s *stubUploads) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error) {
	upload, ok := s.uploads[id]
	if !ok || upload.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return upload, nil
}

type fixture struct {
	svc       Service
	repo      *stubRepo
	users     *stubUsers
	uploads   *stubUploads
	publisher *stubPublisher
	clock     *fakeClock
	donorID   uuid.UUID
	ngoID     uuid.UUID
	uploadID  uuid.UUID
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newStubRepo()
	publisher := &stubPublisher{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	donorID := uuid.New()
	ngoID := uuid.New()
	users := &stubUsers{users: map[uuid.UUID]*models.User{
		donorID: {ID: donorID, Email: "donor@example.com", Name: "Donor", Role: enums.UserRoleDonor, IsActive: true},
		ngoID:   {ID: ngoID, Email: "ngo@example.org", Name: "Helping Hands", Role: enums.UserRoleNGO, IsActive: true},
	}}

	uploadID := uuid.New()
	uploads := &stubUploads{uploads: map[uuid.UUID]*models.MediaUpload{
		uploadID: {
			ID:        uploadID,
			OwnerID:   donorID,
			ObjectKey: "media/donation/biryani.jpg",
			PublicURL: "https://storage.googleapis.com/mealbridge/media/donation/biryani.jpg",
		},
	}}

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})

	svc, err := NewService(repo, stubTx{}, users, uploads, publisher, logg, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, users: users, uploads: uploads, publisher: publisher, clock: clock, donorID: donorID, ngoID: ngoID, uploadID: uploadID}
}

func (f *fixture) createDonation(t *testing.T) *DonationView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), Actor{UserID: f.donorID, Role: enums.UserRoleDonor}, CreateInput{
		FoodName:      "Vegetable Biryani",
		Quantity:      "5kg",
		ImageUploadID: f.uploadID,
		Latitude:      12.97,
		Longitude:     77.59,
		Address:       "12 Main St",
	})
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return view
}

func TestCreatePublishesEvent(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)

	if view.Status != enums.FoodStatusPending {
		t.Fatalf("expected pending, got %s", view.Status)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.publisher.events))
	}
	event := f.publisher.events[0]
	if event.DonationID != view.ID {
		t.Fatal("event donation id mismatch")
	}
	if event.DonorName != "Donor" {
		t.Fatalf("unexpected donor name %q", event.DonorName)
	}
}

func TestCreateResolvesImageFromUpload(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)

	if view.ImageURL != "https://storage.googleapis.com/mealbridge/media/donation/biryani.jpg" {
		t.Fatalf("image url not taken from upload: %q", view.ImageURL)
	}
}

func TestCreateRejectsUnknownUpload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), Actor{UserID: f.donorID, Role: enums.UserRoleDonor}, CreateInput{
		FoodName:      "Vegetable Biryani",
		Quantity:      "5kg",
		ImageUploadID: uuid.New(),
		Latitude:      12.97,
		Longitude:     77.59,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.repo.records) != 0 {
		t.Fatal("record created despite dangling image reference")
	}
}

func TestCreateRejectsUploadOwnedByAnotherUser(t *testing.T) {
	f := newFixture(t)
	f.uploads.uploads[f.uploadID].OwnerID = f.ngoID

	_, err := f.svc.Create(context.Background(), Actor{UserID: f.donorID, Role: enums.UserRoleDonor}, CreateInput{
		FoodName:      "Vegetable Biryani",
		Quantity:      "5kg",
		ImageUploadID: f.uploadID,
		Latitude:      12.97,
		Longitude:     77.59,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateMasksAnonymousDonor(t *testing.T) {
	f := newFixture(t)
	f.users.users[f.donorID].IsAnonymous = true

	view := f.createDonation(t)
	if view.CreatorName != "Anonymous" {
		t.Fatalf("expected masked creator, got %q", view.CreatorName)
	}
	if f.publisher.events[0].DonorName != "Anonymous" {
		t.Fatal("event leaked anonymous donor name")
	}
}

func TestCreatePublishFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = context.DeadlineExceeded

	view := f.createDonation(t)
	if _, err := f.svc.Get(context.Background(), view.ID); err != nil {
		t.Fatalf("donation should exist despite publish failure: %v", err)
	}
}

func TestCreateRejectsNonDonor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), Actor{UserID: f.ngoID, Role: enums.UserRoleNGO}, CreateInput{
		FoodName: "Bread", Quantity: "10 loaves",
	})
	if err == nil || errCode(t, err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestFullLifecycleStampsMonotonicTimestamps(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)
	ctx := context.Background()

	steps := []struct {
		target enums.FoodStatus
		actor  Actor
	}{
		{enums.FoodStatusAccepted, Actor{UserID: f.ngoID, Role: enums.UserRoleNGO}},
		{enums.FoodStatusPickup, Actor{UserID: f.donorID, Role: enums.UserRoleDonor}},
		{enums.FoodStatusInTransit, Actor{UserID: f.ngoID, Role: enums.UserRoleNGO}},
		{enums.FoodStatusDonated, Actor{UserID: f.ngoID, Role: enums.UserRoleNGO}},
	}
	for _, step := range steps {
		f.clock.Advance(10 * time.Minute)
		updated, err := f.svc.Transition(ctx, TransitionInput{DonationID: view.ID, Target: step.target, Actor: step.actor})
		if err != nil {
			t.Fatalf("transition to %s: %v", step.target, err)
		}
		if updated.Status != step.target {
			t.Fatalf("expected %s, got %s", step.target, updated.Status)
		}
	}

	final, err := f.svc.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stamps := []*time.Time{final.AcceptedAt, final.PickedUpAt, final.InTransitAt, final.DonatedAt}
	prev := final.CreatedAt
	for i, stamp := range stamps {
		if stamp == nil {
			t.Fatalf("stage timestamp %d missing", i)
		}
		if !stamp.After(prev) {
			t.Fatalf("stage timestamp %d not after previous (%s vs %s)", i, stamp, prev)
		}
		prev = *stamp
	}
}

func TestAcceptPinsNGOIdentity(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)
	ctx := context.Background()

	accepted, err := f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusAccepted,
		Actor:      Actor{UserID: f.ngoID, Role: enums.UserRoleNGO},
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.NGOUID == nil || *accepted.NGOUID != f.ngoID {
		t.Fatal("ngo identity not pinned")
	}

	// Move to pickup so another NGO could plausibly try in_transit.
	if _, err := f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusPickup,
		Actor:      Actor{UserID: f.donorID, Role: enums.UserRoleDonor},
	}); err != nil {
		t.Fatalf("pickup: %v", err)
	}

	otherNGO := uuid.New()
	f.users.users[otherNGO] = &models.User{ID: otherNGO, Role: enums.UserRoleNGO, Name: "Other", IsActive: true}
	_, err = f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusInTransit,
		Actor:      Actor{UserID: otherNGO, Role: enums.UserRoleNGO},
	})
	if err == nil || errCode(t, err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for other ngo, got %v", err)
	}
}

func TestSameStateTransitionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)
	ctx := context.Background()

	if _, err := f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusAccepted,
		Actor:      Actor{UserID: f.ngoID, Role: enums.UserRoleNGO},
	}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	first, _ := f.svc.Get(ctx, view.ID)
	callsBefore := f.repo.updateCalls

	again, err := f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusAccepted,
		Actor:      Actor{UserID: f.ngoID, Role: enums.UserRoleNGO},
	})
	if err != nil {
		t.Fatalf("re-accept should succeed: %v", err)
	}
	if f.repo.updateCalls != callsBefore {
		t.Fatal("idempotent request must not write")
	}
	if again.AcceptedAt == nil || !again.AcceptedAt.Equal(*first.AcceptedAt) {
		t.Fatal("accepted_at re-stamped on idempotent request")
	}
}

func TestConcurrentLossRaisesStateConflict(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)
	ctx := context.Background()

	// The guarded update hits zero rows while the stored record still shows a
	// different status than the target.
	f.repo.forceZeroRows = true
	_, err := f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusAccepted,
		Actor:      Actor{UserID: f.ngoID, Role: enums.UserRoleNGO},
	})
	if err == nil || errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConcurrentLossToSameTargetIsNoop(t *testing.T) {
	f := newFixture(t)
	view := f.createDonation(t)
	ctx := context.Background()

	// Another request already moved the record to the same target.
	f.repo.forceZeroRows = true
	stored := f.repo.records[view.ID]
	stored.Status = enums.FoodStatusAccepted
	stored.NGODetails = &models.IdentitySnapshot{UID: f.ngoID, Name: "Helping Hands"}

	got, err := f.svc.Transition(ctx, TransitionInput{
		DonationID: view.ID,
		Target:     enums.FoodStatusAccepted,
		Actor:      Actor{UserID: f.ngoID, Role: enums.UserRoleNGO},
	})
	if err != nil {
		t.Fatalf("expected noop success, got %v", err)
	}
	if got.Status != enums.FoodStatusAccepted {
		t.Fatalf("unexpected status %s", got.Status)
	}
}

func TestTransitionUnknownDonation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Transition(context.Background(), TransitionInput{
		DonationID: uuid.New(),
		Target:     enums.FoodStatusAccepted,
		Actor:      Actor{UserID: f.ngoID, Role: enums.UserRoleNGO},
	})
	if err == nil || errCode(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
