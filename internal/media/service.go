package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

const maxUploadBytes = 10 * 1024 * 1024

type objectStore interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// UploadInput models an image upload request.
type UploadInput struct {
	Kind        UploadKind
	FileName    string
	ContentType string
	Data        []byte
}

// UploadOutput is returned to the client after a completed upload.
type UploadOutput struct {
	UploadID  uuid.UUID `json:"upload_id"`
	ObjectKey string    `json:"object_key"`
	PublicURL string    `json:"public_url"`
}

// Service stores image uploads and records their ownership.
type Service interface {
	Upload(ctx context.Context, ownerID uuid.UUID, input UploadInput) (*UploadOutput, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error)
	Remove(ctx context.Context, id, ownerID uuid.UUID) error
}

type service struct {
	repo   Repository
	store  objectStore
	bucket string
}

// NewService constructs a media service backed by the provided repository and object store.
func NewService(repo Repository, store objectStore, bucket string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	return &service{repo: repo, store: store, bucket: bucket}, nil
}

func (s *service) Upload(ctx context.Context, ownerID uuid.UUID, input UploadInput) (*UploadOutput, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	if _, err := ParseUploadKind(string(input.Kind)); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid upload kind")
	}
	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	contentType := strings.TrimSpace(input.ContentType)
	if !isAllowedMime(contentType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content_type not allowed")
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is empty")
	}
	if len(input.Data) > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d bytes", maxUploadBytes))
	}

	uploadID := uuid.New()
	objectKey := buildObjectKey(input.Kind, uploadID, fileName)

	publicURL, err := s.store.UploadObject(ctx, s.bucket, objectKey, contentType, bytes.NewReader(input.Data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, "push object")
	}

	row := &models.MediaUpload{
		ID:          uploadID,
		OwnerID:     ownerID,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   int64(len(input.Data)),
		PublicURL:   publicURL,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		// Orphaned blobs are worse than a failed request.
		_ = s.store.DeleteObject(ctx, s.bucket, objectKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist upload row")
	}

	return &UploadOutput{UploadID: uploadID, ObjectKey: objectKey, PublicURL: publicURL}, nil
}

func (s *service) Get(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error) {
	upload, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "upload not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load upload")
	}
	return upload, nil
}

func (s *service) Remove(ctx context.Context, id, ownerID uuid.UUID) error {
	upload, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "upload not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load upload")
	}
	if err := s.store.DeleteObject(ctx, s.bucket, upload.ObjectKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	if err := s.repo.Delete(ctx, upload.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete upload row")
	}
	return nil
}

func buildObjectKey(kind UploadKind, id uuid.UUID, fileName string) string {
	return fmt.Sprintf("media/%s/%s/%s", kind, id.String(), fileName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
