package queue

import (
	"io"
	"time"

	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
)

// EnqueueInput is a raw intake submission.
type EnqueueInput struct {
	UserID     uint           `json:"user_id" validate:"required"`
	RawText    string         `json:"raw_text" validate:"required"`
	Photos     []string       `json:"photos"`
	Properties map[string]any `json:"properties"`
}

// EntryDTO is the transport shape of a queue entry.
type EntryDTO struct {
	ID         uint              `json:"id"`
	UserID     uint              `json:"user_id"`
	RawText    string            `json:"raw_text"`
	Photos     []string          `json:"photos"`
	Status     enums.ObjectState `json:"status"`
	ShoeID     *uint             `json:"shoe_id,omitempty"`
	Active     bool              `json:"active"`
	Properties map[string]any    `json:"properties"`
	Images     []ImageDTO        `json:"images,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ImageDTO describes one stored attachment.
type ImageDTO struct {
	ID        uint      `json:"id"`
	QueueID   uint      `json:"queue_id"`
	Filename  string    `json:"filename"`
	Filepath  string    `json:"filepath"`
	Filetype  string    `json:"filetype"`
	Filesize  int64     `json:"filesize"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageUpload is one file handed to AttachImages. ContentType is the declared
// type and is only consulted when the payload cannot be sniffed.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageResult reports the outcome for one uploaded file. Exactly one of Image
// and Err is set.
type ImageResult struct {
	Filename string    `json:"filename"`
	Image    *ImageDTO `json:"image,omitempty"`
	Code     string    `json:"code,omitempty"`
	Error    string    `json:"error,omitempty"`
	Err      error     `json:"-"`
}

// OK reports whether the file was stored.
func (r ImageResult) OK() bool { return r.Err == nil }

// ListParams filters the queue listing.
type ListParams struct {
	UserID uint
	Status *enums.ObjectState
	Limit  int
	Cursor string
}

// ListResult wraps one page of queue entries.
type ListResult struct {
	Items      []EntryDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func fromModel(e *models.QueueEntry) *EntryDTO {
	if e == nil {
		return nil
	}
	dto := &EntryDTO{
		ID:         e.ID,
		UserID:     e.UserID,
		RawText:    e.RawText,
		Photos:     nonNil(e.Photos),
		Status:     e.Status,
		ShoeID:     e.ShoeID,
		Active:     e.Active,
		Properties: e.Properties,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if len(e.Images) > 0 {
		dto.Images = make([]ImageDTO, 0, len(e.Images))
		for i := range e.Images {
			dto.Images = append(dto.Images, imageFromModel(&e.Images[i]))
		}
	}
	return dto
}

func imageFromModel(img *models.Image) ImageDTO {
	return ImageDTO{
		ID:        img.ID,
		QueueID:   img.QueueID,
		Filename:  img.Filename,
		Filepath:  img.Filepath,
		Filetype:  img.Filetype,
		Filesize:  img.Filesize,
		CreatedAt: img.CreatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
