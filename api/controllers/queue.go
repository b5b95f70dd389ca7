package controllers

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/kickstock-backend/api/middleware"
	"github.com/angelmondragon/kickstock-backend/api/responses"
	"github.com/angelmondragon/kickstock-backend/api/validators"
	"github.com/angelmondragon/kickstock-backend/internal/queue"
	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/pkg/config"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/pagination"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

type enqueueResponse struct {
	*queue.EntryDTO
	Message string `json:"message"`
}

type attachImagesResponse struct {
	QueueID uint                `json:"queue_id"`
	Stored  int                 `json:"stored"`
	Failed  int                 `json:"failed"`
	Results []queue.ImageResult `json:"results"`
}

// QueueEnqueue accepts raw listing text as JSON or as form fields.
func QueueEnqueue(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "queue service unavailable"))
			return
		}

		input, err := decodeEnqueue(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.UserID == 0 {
			input.UserID = middleware.UserIDFromContext(r.Context())
		}

		entry, err := svc.Enqueue(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, enqueueResponse{
			EntryDTO: entry,
			Message:  "Text successfully added to queue.",
		})
	}
}

func decodeEnqueue(r *http.Request) (queue.EnqueueInput, error) {
	var input queue.EnqueueInput
	if !isFormRequest(r) {
		// Missing fields are reported together by the service.
		return input, validators.DecodeOptionalJSON(r, &input)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	input.RawText = r.FormValue("raw_text")
	if raw := strings.TrimSpace(r.FormValue("user_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"user_id": "must be a positive integer"})
		}
		input.UserID = uint(id)
	}
	input.Photos = r.Form["photos"]
	return input, nil
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func QueueList(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "queue service unavailable"))
			return
		}

		params, err := queueListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result.Items, result.NextCursor)
	}
}

func queueListParams(r *http.Request) (queue.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return queue.ListParams{}, err
	}
	userID, err := validators.ParseQueryUint(r, "user_id")
	if err != nil {
		return queue.ListParams{}, err
	}
	params := queue.ListParams{
		UserID: userID,
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseObjectState(raw)
		if err != nil {
			return queue.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]string{"status": raw})
		}
		params.Status = &status
	}
	return params, nil
}

func QueueGet(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "queue service unavailable"))
			return
		}

		id, err := validators.URLParamID(r, "queueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// QueueAttachImages stores the multipart "files" against a queue entry. Each
// file succeeds or fails on its own; the response lists every outcome.
func QueueAttachImages(svc queue.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "queue service unavailable"))
			return
		}

		id, err := validators.URLParamID(r, "queueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if limit := requestBodyLimit(media); limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "upload too large"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "multipart form with files is required"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		uploads, closeAll, err := openUploads(r.MultipartForm.File["files"])
		defer closeAll()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.AttachImages(r.Context(), id, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := attachImagesResponse{QueueID: id, Results: results}
		for _, res := range results {
			if res.OK() {
				resp.Stored++
			} else {
				resp.Failed++
			}
		}
		responses.WriteSuccess(w, resp)
	}
}

func requestBodyLimit(media config.MediaConfig) int64 {
	perFile := media.MaxUploadBytes()
	if perFile <= 0 || media.MaxFilesPerReq <= 0 {
		return 0
	}
	return perFile*int64(media.MaxFilesPerReq) + multipartOverhead
}

func openUploads(headers []*multipart.FileHeader) ([]queue.ImageUpload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	uploads := make([]queue.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload").WithDetails(map[string]string{"filename": fh.Filename})
		}
		files = append(files, f)
		uploads = append(uploads, queue.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

func QueueStart(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return queueMove(svc, logg, queue.Service.Start)
}

func QueueCancel(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return queueMove(svc, logg, queue.Service.Cancel)
}

func QueueArchive(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return queueMove(svc, logg, queue.Service.Archive)
}

type queueMoveFunc func(queue.Service, context.Context, uint) (*queue.EntryDTO, error)

func queueMove(svc queue.Service, logg *logger.Logger, move queueMoveFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "queue service unavailable"))
			return
		}

		id, err := validators.URLParamID(r, "queueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := move(svc, r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// QueuePromote turns a queue entry into a catalogued shoe.
func QueuePromote(svc queue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "queue service unavailable"))
			return
		}

		id, err := validators.URLParamID(r, "queueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input shoes.CreateShoeInput
		if err := validators.DecodeOptionalJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Promote(r.Context(), id, input, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
