package donations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/metrics"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// EventPublisher pushes the donation-created event to the worker. Publishing
// is best-effort; failures never roll back the donation.
type EventPublisher interface {
	PublishDonationCreated(ctx context.Context, event CreatedEvent) error
}

// Service defines donation lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*DonationView, error)
	Get(ctx context.Context, id uuid.UUID) (*DonationView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*DonationList, error)
	Transition(ctx context.Context, input TransitionInput) (*DonationView, error)
	StatusReport(ctx context.Context) (map[enums.FoodStatus]int64, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	users     userReader
	uploads   UploadReader
	publisher EventPublisher
	logg      *logger.Logger
	domain    *metrics.DomainMetrics
	now       func() time.Time
}

// Option tweaks service construction.
type Option func(*service)

// WithClock overrides the time source, used to make timestamps deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDomainMetrics attaches the transition counter.
func WithDomainMetrics(m *metrics.DomainMetrics) Option {
	return func(s *service) {
		s.domain = m
	}
}

// NewService builds a donations service with the required dependencies.
func NewService(repo Repository, tx txRunner, users userReader, uploads UploadReader, publisher EventPublisher, logg *logger.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if uploads == nil {
		return nil, fmt.Errorf("upload reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{
		repo:      repo,
		tx:        tx,
		users:     users,
		uploads:   uploads,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*DonationView, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role != enums.UserRoleDonor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only donors can post donations")
	}

	donor, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donor")
	}
	if !donor.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	upload, err := s.uploads.FindOwned(ctx, input.ImageUploadID, actor.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image upload not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image upload")
	}

	now := s.now().UTC()
	record := &models.FoodRecord{
		ID:               uuid.New(),
		FoodName:         input.FoodName,
		Quantity:         input.Quantity,
		Description:      input.Description,
		PickupGuidelines: input.PickupGuidelines,
		ImageURL:         upload.PublicURL,
		UseTime:          input.UseTime,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		Address:          input.Address,
		CreatedBy:        donor.Snapshot(),
		Status:           enums.FoodStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}

	s.publishCreated(ctx, record)

	view := NewView(record)
	return &view, nil
}

func (s *service) publishCreated(ctx context.Context, record *models.FoodRecord) {
	if s.publisher == nil {
		return
	}
	event := CreatedEvent{
		DonationID: record.ID,
		FoodName:   record.FoodName,
		Quantity:   record.Quantity,
		Latitude:   record.Latitude,
		Longitude:  record.Longitude,
		Address:    record.Address,
		DonorName:  displayName(record.CreatedBy),
		CreatedAt:  record.CreatedAt,
	}
	if err := s.publisher.PublishDonationCreated(ctx, event); err != nil {
		ctx = s.logg.WithDonationID(ctx, record.ID.String())
		s.logg.Warn(ctx, "publishing donation-created event failed")
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DonationView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	view := NewView(record)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*DonationList, error) {
	records, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donations")
	}
	views := make([]DonationView, 0, len(records))
	for i := range records {
		views = append(views, NewView(&records[i]))
	}
	return &DonationList{Donations: views, NextCursor: next}, nil
}

func (s *service) StatusReport(ctx context.Context) (map[enums.FoodStatus]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count donations")
	}
	return counts, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*DonationView, error) {
	if input.DonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	record, err := s.repo.FindByID(ctx, input.DonationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}

	var ngoSnapshot *models.IdentitySnapshot
	if input.Target == enums.FoodStatusAccepted && record.Status != enums.FoodStatusAccepted {
		snapshot, err := s.actorSnapshot(ctx, input.Actor)
		if err != nil {
			return nil, err
		}
		ngoSnapshot = snapshot
	}

	now := s.now().UTC()
	plan, err := planTransition(record, input.Target, input.Actor, ngoSnapshot, now)
	if err != nil {
		return nil, err
	}
	if plan.noop {
		view := NewView(record)
		return &view, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.UpdateStatusFrom(ctx, record.ID, record.Status, plan.updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply transition")
		}
		if rows > 0 {
			return nil
		}
		// Lost the race: someone moved the record first. Re-read to decide
		// between an idempotent no-op and a genuine conflict.
		current, err := repo.FindByID(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload donation")
		}
		if current.Status == input.Target {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "donation was updated concurrently")
	})
	if err != nil {
		return nil, err
	}

	if s.domain != nil {
		s.domain.IncTransition(input.Target.String())
	}

	updated, err := s.repo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload donation")
	}
	view := NewView(updated)
	return &view, nil
}

func (s *service) actorSnapshot(ctx context.Context, actor Actor) (*models.IdentitySnapshot, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ngo")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}
	snapshot := user.Snapshot()
	return &snapshot, nil
}

// NewView projects a stored record into its wire shape, masking identities
// flagged anonymous.
func NewView(record *models.FoodRecord) DonationView {
	view := DonationView{
		ID:               record.ID,
		FoodName:         record.FoodName,
		Quantity:         record.Quantity,
		Description:      record.Description,
		PickupGuidelines: record.PickupGuidelines,
		ImageURL:         record.ImageURL,
		UseTime:          record.UseTime,
		Latitude:         record.Latitude,
		Longitude:        record.Longitude,
		Address:          record.Address,
		Status:           record.Status,
		CreatorName:      displayName(record.CreatedBy),
		CreatorUID:       record.CreatedBy.UID,
		AcceptedAt:       record.AcceptedAt,
		PickedUpAt:       record.PickedUpAt,
		InTransitAt:      record.InTransitAt,
		DonatedAt:        record.DonatedAt,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if record.NGODetails != nil {
		uid := record.NGODetails.UID
		view.NGOUID = &uid
		view.NGOName = displayName(*record.NGODetails)
	}
	return view
}

func displayName(snapshot models.IdentitySnapshot) string {
	if snapshot.IsAnonymous {
		return "Anonymous"
	}
	return snapshot.Name
}
