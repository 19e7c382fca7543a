package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/mailer"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type stubNotifyRepo struct {
	created []models.Notification
}

func (s *stubNotifyRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotifyRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.created = append(s.created, *notification)
	return nil
}

func (s *stubNotifyRepo) List(ctx context.Context, params listParams) ([]models.Notification, *pagination.Cursor, error) {
	return s.created, nil, nil
}

func (s *stubNotifyRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	return markResult{Found: true, Updated: true}, nil
}

func (s *stubNotifyRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return int64(len(s.created)), nil
}

type stubNGOLister struct {
	ngos []models.User
	err  error
}

func (s *stubNGOLister) ListActiveNGOs(ctx context.Context) ([]models.User, error) {
	return s.ngos, s.err
}

type recordingSender struct {
	sent    []mailer.Message
	failFor map[string]error
}

func (r *recordingSender) Send(msg mailer.Message) error {
	if err, ok := r.failFor[msg.To]; ok {
		return err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func ngoAt(name string, lonOffset float64) models.User {
	lat := 0.0
	lon := lonOffset
	addr := "somewhere"
	return models.User{
		ID:        uuid.New(),
		Email:     name + "@example.org",
		Name:      name,
		Role:      enums.UserRoleNGO,
		IsActive:  true,
		Latitude:  &lat,
		Longitude: &lon,
		Address:   &addr,
	}
}

func testEvent() donations.CreatedEvent {
	return donations.CreatedEvent{
		DonationID: uuid.New(),
		FoodName:   "Dal Rice",
		Quantity:   "4kg",
		Latitude:   0,
		Longitude:  0,
		Address:    "12 Main St",
		DonorName:  "Donor",
		CreatedAt:  time.Now(),
	}
}

func newNotifyService(t *testing.T, repo *stubNotifyRepo, ngos *stubNGOLister, sender *recordingSender) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	svc, err := NewService(repo, ngos, sender, Config{Recipients: 3}, logg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestFanoutPicksNearestThree(t *testing.T) {
	// Offsets sort as 1 < 5 < 10 < 15 < 20 degrees from the origin.
	ngos := []models.User{
		ngoAt("ten", 10), ngoAt("five", 5), ngoAt("twenty", 20), ngoAt("one", 1), ngoAt("fifteen", 15),
	}
	repo := &stubNotifyRepo{}
	sender := &recordingSender{}
	svc := newNotifyService(t, repo, &stubNGOLister{ngos: ngos}, sender)

	if err := svc.Fanout(context.Background(), testEvent()); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(sender.sent))
	}
	wantOrder := []string{"one@example.org", "five@example.org", "ten@example.org"}
	for i, want := range wantOrder {
		if sender.sent[i].To != want {
			t.Fatalf("recipient %d: expected %s, got %s", i, want, sender.sent[i].To)
		}
	}
	if len(repo.created) != 3 {
		t.Fatalf("expected 3 notification rows, got %d", len(repo.created))
	}
	for _, n := range repo.created {
		if n.Type != enums.NotificationTypeDonationNearby {
			t.Fatalf("unexpected notification type %s", n.Type)
		}
		if n.DonationID == nil {
			t.Fatal("notification missing donation id")
		}
	}
}

func TestFanoutSkipsNGOsWithoutLocation(t *testing.T) {
	noLocation := models.User{ID: uuid.New(), Email: "nowhere@example.org", Role: enums.UserRoleNGO, IsActive: true}
	ngos := []models.User{noLocation, ngoAt("one", 1)}
	sender := &recordingSender{}
	svc := newNotifyService(t, &stubNotifyRepo{}, &stubNGOLister{ngos: ngos}, sender)

	if err := svc.Fanout(context.Background(), testEvent()); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "one@example.org" {
		t.Fatalf("unexpected recipients %+v", sender.sent)
	}
}

func TestFanoutFailureDoesNotBlockOthers(t *testing.T) {
	ngos := []models.User{ngoAt("one", 1), ngoAt("five", 5), ngoAt("ten", 10)}
	sender := &recordingSender{failFor: map[string]error{
		"five@example.org": errors.New("smtp timeout"),
	}}
	repo := &stubNotifyRepo{}
	svc := newNotifyService(t, repo, &stubNGOLister{ngos: ngos}, sender)

	err := svc.Fanout(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if got := len(multierr.Errors(err)); got != 1 {
		t.Fatalf("expected 1 aggregated failure, got %d: %v", got, err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("intact recipients should still get mail, got %d", len(sender.sent))
	}
	if len(repo.created) != 2 {
		t.Fatalf("failed recipient should not get a row, got %d", len(repo.created))
	}
}

func TestFanoutFewerNGOsThanCap(t *testing.T) {
	ngos := []models.User{ngoAt("one", 1)}
	sender := &recordingSender{}
	svc := newNotifyService(t, &stubNotifyRepo{}, &stubNGOLister{ngos: ngos}, sender)

	if err := svc.Fanout(context.Background(), testEvent()); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
}

func TestFanoutEmailMentionsDonation(t *testing.T) {
	ngos := []models.User{ngoAt("one", 1)}
	sender := &recordingSender{}
	svc := newNotifyService(t, &stubNotifyRepo{}, &stubNGOLister{ngos: ngos}, sender)

	event := testEvent()
	if err := svc.Fanout(context.Background(), event); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	subject := sender.sent[0].Subject
	if want := fmt.Sprintf("Food available nearby: %s", event.FoodName); subject != want {
		t.Fatalf("unexpected subject %q", subject)
	}
}
