package media

import (
	"fmt"
	"strings"
)

// UploadKind scopes an upload to the feature it belongs to.
type UploadKind string

const (
	UploadKindDonationPhoto     UploadKind = "donation"
	UploadKindMessageAttachment UploadKind = "message"
	UploadKindProfilePhoto      UploadKind = "profile"
)

var allowedMimeTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ParseUploadKind converts raw input into an UploadKind.
func ParseUploadKind(value string) (UploadKind, error) {
	switch UploadKind(value) {
	case UploadKindDonationPhoto, UploadKindMessageAttachment, UploadKindProfilePhoto:
		return UploadKind(value), nil
	}
	return "", fmt.Errorf("invalid upload kind %q", value)
}

func isAllowedMime(mimeType string) bool {
	for _, candidate := range allowedMimeTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}
