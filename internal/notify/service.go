package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/geo"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/mailer"
	"github.com/mealbridge/mealbridge-backend/pkg/metrics"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type ngoLister interface {
	ListActiveNGOs(ctx context.Context) ([]models.User, error)
}

// Service exposes notification reads plus the donation fan-out.
type Service interface {
	Fanout(ctx context.Context, event donations.CreatedEvent) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ListParams filters the notification list.
type ListParams struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Limit      int
	Cursor     string
}

// ListResult wraps notifications plus the next page cursor.
type ListResult struct {
	Notifications []models.Notification `json:"notifications"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}

type service struct {
	repo       Repository
	ngos       ngoLister
	sender     mailer.Sender
	logg       *logger.Logger
	domain     *metrics.DomainMetrics
	recipients int
	now        func() time.Time
}

// Config carries the fan-out tuning knobs.
type Config struct {
	// Recipients caps how many nearby NGOs get notified per donation.
	Recipients int
}

// NewService builds the notify service.
func NewService(repo Repository, ngos ngoLister, sender mailer.Sender, cfg Config, logg *logger.Logger, domain *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if ngos == nil {
		return nil, fmt.Errorf("ngo lister required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	recipients := cfg.Recipients
	if recipients <= 0 {
		recipients = 3
	}
	return &service{
		repo:       repo,
		ngos:       ngos,
		sender:     sender,
		logg:       logg,
		domain:     domain,
		recipients: recipients,
		now:        time.Now,
	}, nil
}

// Fanout notifies the nearest NGOs about a fresh donation. Each recipient is
// handled independently: one failed email never blocks the others, and the
// aggregated error is returned for observability only.
func (s *service) Fanout(ctx context.Context, event donations.CreatedEvent) error {
	ngos, err := s.ngos.ListActiveNGOs(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ngos")
	}

	candidates := make([]geo.Ranked, 0, len(ngos))
	byID := make(map[string]*models.User, len(ngos))
	for i := range ngos {
		ngo := &ngos[i]
		if !ngo.HasLocation() {
			continue
		}
		id := ngo.ID.String()
		byID[id] = ngo
		candidates = append(candidates, geo.Ranked{
			ID:    id,
			Point: geo.Point{Latitude: *ngo.Latitude, Longitude: *ngo.Longitude},
		})
	}

	origin := geo.Point{Latitude: event.Latitude, Longitude: event.Longitude}
	nearest := geo.NearestN(origin, candidates, s.recipients)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"donation_id": event.DonationID.String(),
		"recipients":  len(nearest),
	})
	s.logg.Info(logCtx, "dispatching donation fan-out")

	var errs error
	for _, ranked := range nearest {
		ngo := byID[ranked.ID]
		if err := s.notifyOne(ctx, event, ngo, ranked.DistanceKm); err != nil {
			if s.domain != nil {
				s.domain.IncFanoutMail("failed")
			}
			s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{"ngo_id": ranked.ID}), "fan-out recipient failed")
			errs = multierr.Append(errs, fmt.Errorf("ngo %s: %w", ranked.ID, err))
			continue
		}
		if s.domain != nil {
			s.domain.IncFanoutMail("sent")
		}
	}
	return errs
}

func (s *service) notifyOne(ctx context.Context, event donations.CreatedEvent, ngo *models.User, distanceKm float64) error {
	subject := fmt.Sprintf("Food available nearby: %s", event.FoodName)
	html := fmt.Sprintf(
		"<p>%s donated <strong>%s (%s)</strong> about %.1f km from you.</p><p>Pickup address: %s</p>",
		event.DonorName, event.FoodName, event.Quantity, distanceKm, event.Address,
	)
	if err := s.sender.Send(mailer.Message{To: ngo.Email, Subject: subject, HTML: html}); err != nil {
		return err
	}

	donationID := event.DonationID
	notification := &models.Notification{
		ID:         uuid.New(),
		UserID:     ngo.ID,
		Type:       enums.NotificationTypeDonationNearby,
		Title:      subject,
		Message:    fmt.Sprintf("%s (%s) available %.1f km away", event.FoodName, event.Quantity, distanceKm),
		DonationID: &donationID,
		CreatedAt:  s.now().UTC(),
	}
	return s.repo.Create(ctx, notification)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	notifications, next, err := s.repo.List(ctx, listParams{
		UserID:     params.UserID,
		UnreadOnly: params.UnreadOnly,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Notifications: notifications}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and notification id required")
	}
	mark, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return count, nil
}
