package queue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/multierr"

	"github.com/angelmondragon/kickstock-backend/pkg/db"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/storage"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

const genericBinary = "application/octet-stream"

// AttachImages stores each upload independently. A failed file is reported in
// its ImageResult and never undoes the files that succeeded.
func (s *service) AttachImages(ctx context.Context, queueID uint, uploads []ImageUpload) ([]ImageResult, error) {
	if len(uploads) == 0 {
		return nil, validation.Field("files", "at least one file is required")
	}
	if s.limits.MaxFiles > 0 && len(uploads) > s.limits.MaxFiles {
		return nil, validation.Field("files", fmt.Sprintf("at most %d files per request", s.limits.MaxFiles))
	}

	entry, err := loadEntry(ctx, s.repo, queueID)
	if err != nil {
		return nil, err
	}
	if entry.Status == enums.ObjectStateArchived {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "queue entry is archived")
	}

	ctx = s.logg.WithQueueID(ctx, queueID)
	results := make([]ImageResult, 0, len(uploads))
	for _, upload := range uploads {
		result := s.attachOne(ctx, entry.ID, upload)
		if result.Err != nil {
			typed := pkgerrors.As(result.Err)
			result.Code = string(typed.Code())
			result.Error = typed.Message()
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"filename": result.Filename,
				"code":     result.Code,
			}), "image rejected")
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) attachOne(ctx context.Context, queueID uint, upload ImageUpload) ImageResult {
	name := strings.TrimSpace(upload.Filename)
	if name == "" {
		name = "image"
	}
	result := ImageResult{Filename: name}

	reject := func(err error) ImageResult {
		s.metrics.IncUpload(metrics.UploadRejected)
		result.Err = err
		return result
	}
	fail := func(err error) ImageResult {
		s.metrics.IncUpload(metrics.UploadFailed)
		result.Err = err
		return result
	}

	if upload.Body == nil {
		return reject(pkgerrors.New(pkgerrors.CodeValidation, "file is empty"))
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, s.limits.MaxBytes+1))
	if err != nil {
		return reject(pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read file"))
	}
	if len(data) == 0 {
		return reject(pkgerrors.New(pkgerrors.CodeValidation, "file is empty"))
	}
	if int64(len(data)) > s.limits.MaxBytes {
		return reject(pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d bytes", s.limits.MaxBytes)))
	}

	contentType := detectImageType(data, upload.ContentType)
	if contentType == "" {
		return reject(pkgerrors.New(pkgerrors.CodeValidation, "file must be an image"))
	}

	key := storage.ObjectKey(queueID, name)
	size := int64(len(data))
	if err := s.store.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return fail(pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store image"))
	}

	row := &models.Image{
		Base:     models.NewBase(nil),
		QueueID:  queueID,
		Filename: name,
		Filepath: key,
		Filetype: contentType,
		Filesize: size,
	}
	if err := s.repo.CreateImage(ctx, row); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			err = multierr.Append(err, delErr)
		}
		if db.IsForeignKeyViolation(err) {
			return fail(pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "queue entry not found"))
		}
		return fail(pkgerrors.Wrap(pkgerrors.CodeStorage, err, "record image"))
	}

	s.metrics.IncUpload(metrics.UploadStored)
	dto := imageFromModel(row)
	result.Image = &dto
	return result
}

// detectImageType sniffs data and returns its image MIME type, or "" when the
// payload is not an image. The declared type is used only when sniffing finds
// nothing more specific than generic binary.
func detectImageType(data []byte, declared string) string {
	detected := mimetype.Detect(data)
	if isImage(detected.String()) {
		return detected.String()
	}
	if !detected.Is(genericBinary) {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(declared))
	if err != nil || !isImage(mediaType) {
		return ""
	}
	return strings.ToLower(mediaType)
}

func isImage(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(mediaType), "image/")
}
