package validation

import (
	"fmt"
	"strings"

	"github.com/buildlink/onboarding-api/internal/models"
	apperrors "github.com/buildlink/onboarding-api/pkg/errors"
	"github.com/buildlink/onboarding-api/pkg/metrics"
)

// MaxFileSize is the hard per-file limit applied at attach time.
const MaxFileSize = 10 * 1024 * 1024 // 10 MB

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var officeDocTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var credentialTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// FileSlot names an attach target for policy purposes. Identity slots each
// have their own policy; all credential collections share one; project
// media accepts images only.
type FileSlot string

const (
	FileSlotGovernmentID FileSlot = "government_id"
	FileSlotRegistration FileSlot = "registration_certificate"
	FileSlotSelfie       FileSlot = "selfie"
	FileSlotCredential   FileSlot = "credential"
	FileSlotProjectMedia FileSlot = "project_media"
)

// SlotForIdentity maps an identity slot to its file policy slot.
func SlotForIdentity(slot models.IdentitySlot) FileSlot {
	switch slot {
	case models.SlotGovernmentID:
		return FileSlotGovernmentID
	case models.SlotRegistrationCer:
		return FileSlotRegistration
	default:
		return FileSlotSelfie
	}
}

// CheckFile applies the attach-time policy: oversize files and files whose
// type is outside the slot's allow-list are rejected with a user-facing
// message and no state mutation.
func CheckFile(slot FileSlot, meta models.FileMetadata) error {
	if meta.Size > MaxFileSize {
		metrics.FileRejections.WithLabelValues(string(slot), "oversize").Inc()
		return apperrors.FilePolicyError(
			fmt.Sprintf("%s exceeds the 10 MB limit", meta.Name))
	}

	contentType := strings.ToLower(meta.ContentType)
	var allowed bool
	switch slot {
	case FileSlotSelfie, FileSlotProjectMedia:
		allowed = imageTypes[contentType]
	case FileSlotGovernmentID, FileSlotRegistration:
		allowed = imageTypes[contentType] || officeDocTypes[contentType]
	case FileSlotCredential:
		allowed = credentialTypes[contentType]
	}

	if !allowed {
		metrics.FileRejections.WithLabelValues(string(slot), "type").Inc()
		return apperrors.FilePolicyError(
			fmt.Sprintf("file type %s is not allowed for %s", meta.ContentType, slot))
	}

	return nil
}
