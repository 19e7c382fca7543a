package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

type stubMediaRepo struct {
	rows      map[uuid.UUID]*models.MediaUpload
	createErr error
}

func newStubMediaRepo() *stubMediaRepo {
	return &stubMediaRepo{rows: map[uuid.UUID]*models.MediaUpload{}}
}

func (s *stubMediaRepo) Create(_ context.Context, upload *models.MediaUpload) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.rows[upload.ID] = upload
	return nil
}

func (s *stubMediaRepo) FindOwned(_ context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error) {
	upload, ok := s.rows[id]
	if !ok || upload.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return upload, nil
}

func (s *stubMediaRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

type stubObjectStore struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (s *stubObjectStore) UploadObject(_ context.Context, bucket, object, contentType string, body io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploaded = append(s.uploaded, object)
	return "https://storage.googleapis.com/" + bucket + "/" + object, nil
}

func (s *stubObjectStore) DeleteObject(_ context.Context, bucket, object string) error {
	s.deleted = append(s.deleted, object)
	return nil
}

func newMediaFixture(t *testing.T) (Service, *stubMediaRepo, *stubObjectStore) {
	t.Helper()
	repo := newStubMediaRepo()
	store := &stubObjectStore{}
	svc, err := NewService(repo, store, "mealbridge-media")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, store
}

func TestUploadStoresObjectAndRow(t *testing.T) {
	svc, repo, store := newMediaFixture(t)
	owner := uuid.New()

	out, err := svc.Upload(context.Background(), owner, UploadInput{
		Kind:        UploadKindDonationPhoto,
		FileName:    "rice bowls.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(store.uploaded) != 1 {
		t.Fatal("object not pushed")
	}
	if !strings.HasPrefix(out.ObjectKey, "media/donation/") || !strings.HasSuffix(out.ObjectKey, "/rice-bowls.jpg") {
		t.Fatalf("unexpected object key %q", out.ObjectKey)
	}
	row, ok := repo.rows[out.UploadID]
	if !ok {
		t.Fatal("upload row not persisted")
	}
	if row.OwnerID != owner || row.PublicURL != out.PublicURL || row.SizeBytes != int64(len("jpeg-bytes")) {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestUploadValidation(t *testing.T) {
	svc, _, _ := newMediaFixture(t)
	owner := uuid.New()

	cases := []struct {
		name  string
		input UploadInput
	}{
		{"bad kind", UploadInput{Kind: "spreadsheet", FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}},
		{"bad mime", UploadInput{Kind: UploadKindDonationPhoto, FileName: "a.exe", ContentType: "application/octet-stream", Data: []byte("x")}},
		{"empty body", UploadInput{Kind: UploadKindDonationPhoto, FileName: "a.jpg", ContentType: "image/jpeg"}},
		{"no name", UploadInput{Kind: UploadKindDonationPhoto, ContentType: "image/jpeg", Data: []byte("x")}},
	}
	for _, tc := range cases {
		_, err := svc.Upload(context.Background(), owner, tc.input)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestUploadStorageFailureIsUploadFailed(t *testing.T) {
	svc, _, store := newMediaFixture(t)
	store.uploadErr = errors.New("503 backend error")

	_, err := svc.Upload(context.Background(), uuid.New(), UploadInput{
		Kind:        UploadKindMessageAttachment,
		FileName:    "receipt.png",
		ContentType: "image/png",
		Data:        []byte("png"),
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUploadFailed {
		t.Fatalf("expected upload failed, got %v", err)
	}
}

func TestUploadRowFailureCleansUpObject(t *testing.T) {
	svc, repo, store := newMediaFixture(t)
	repo.createErr = errors.New("insert failed")

	_, err := svc.Upload(context.Background(), uuid.New(), UploadInput{
		Kind:        UploadKindDonationPhoto,
		FileName:    "bread.webp",
		ContentType: "image/webp",
		Data:        []byte("webp"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.deleted) != 1 {
		t.Fatal("orphaned object not removed")
	}
}

func TestRemoveEnforcesOwnership(t *testing.T) {
	svc, repo, store := newMediaFixture(t)
	owner := uuid.New()
	id := uuid.New()
	repo.rows[id] = &models.MediaUpload{ID: id, OwnerID: owner, ObjectKey: "media/profile/x/pic.png"}

	err := svc.Remove(context.Background(), id, uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}

	if err := svc.Remove(context.Background(), id, owner); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "media/profile/x/pic.png" {
		t.Fatalf("object not deleted: %v", store.deleted)
	}
	if _, ok := repo.rows[id]; ok {
		t.Fatal("row not deleted")
	}
}
