package messages

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UploadReader resolves an upload owned by the sender.
type UploadReader interface {
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error)
}

// Service exposes direct messaging between donors, NGOs, and admins.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*MessageView, error)
	ListConversation(ctx context.Context, viewerID, otherID uuid.UUID, params pagination.Params) (*ConversationPage, error)
	MarkConversationRead(ctx context.Context, viewerID, otherID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, viewerID uuid.UUID) (int64, error)
}

type service struct {
	repo    Repository
	users   userReader
	uploads UploadReader
}

// NewService wires the messaging service. uploads may be nil when image
// attachments are disabled.
func NewService(repo Repository, users userReader, uploads UploadReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader is required")
	}
	return &service{repo: repo, users: users, uploads: uploads}, nil
}

func (s *service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*MessageView, error) {
	if senderID == uuid.Nil || input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender and receiver are required")
	}
	if senderID == input.ReceiverID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	text := strings.TrimSpace(input.Text)
	if text == "" && input.UploadID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message needs text or an attachment")
	}

	receiver, err := s.users.FindByID(ctx, input.ReceiverID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receiver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receiver")
	}
	if !receiver.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver account is deactivated")
	}

	message := &models.Message{
		ID:              uuid.New(),
		ConversationKey: models.ConversationKeyFor(senderID, input.ReceiverID),
		SenderID:        senderID,
		ReceiverID:      input.ReceiverID,
		Text:            text,
	}

	if input.UploadID != nil {
		if s.uploads == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "attachments are not enabled")
		}
		upload, err := s.uploads.FindOwned(ctx, *input.UploadID, senderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "upload not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load upload")
		}
		name := path.Base(upload.ObjectKey)
		message.ImageURL = &upload.PublicURL
		message.FileName = &name
		message.FileType = &upload.ContentType
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store message")
	}

	view := NewView(message)
	return &view, nil
}

func (s *service) ListConversation(ctx context.Context, viewerID, otherID uuid.UUID, params pagination.Params) (*ConversationPage, error) {
	if viewerID == uuid.Nil || otherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both participants are required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListConversation(ctx, listParams{
		ConversationKey: models.ConversationKeyFor(viewerID, otherID),
		Limit:           params.Limit,
		Cursor:          cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversation")
	}

	page := &ConversationPage{Messages: make([]MessageView, 0, len(rows))}
	for i := range rows {
		page.Messages = append(page.Messages, NewView(&rows[i]))
	}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func (s *service) MarkConversationRead(ctx context.Context, viewerID, otherID uuid.UUID) (int64, error) {
	if viewerID == uuid.Nil || otherID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "both participants are required")
	}
	updated, err := s.repo.MarkConversationRead(ctx, models.ConversationKeyFor(viewerID, otherID), viewerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark conversation read")
	}
	return updated, nil
}

func (s *service) UnreadCount(ctx context.Context, viewerID uuid.UUID) (int64, error) {
	if viewerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "viewer is required")
	}
	count, err := s.repo.CountUnread(ctx, viewerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}
