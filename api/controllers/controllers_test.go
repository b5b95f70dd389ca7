package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/kickstock-backend/api/middleware"
	"github.com/angelmondragon/kickstock-backend/internal/audit"
	"github.com/angelmondragon/kickstock-backend/internal/queue"
	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/internal/users"
	"github.com/angelmondragon/kickstock-backend/pkg/config"
	"github.com/angelmondragon/kickstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type apiEnv struct {
	logg   *logger.Logger
	users  users.Service
	shoes  shoes.Service
	queue  queue.Service
	audit  audit.Service
	media  config.MediaConfig
	userID uint
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	client := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
	m := metrics.NewLifecycleMetrics(prometheus.NewRegistry())

	userSvc, err := users.NewService(users.NewRepository(client.DB()))
	require.NoError(t, err)
	auditSvc, err := audit.NewService(audit.NewRepository(client.DB()))
	require.NoError(t, err)
	shoeSvc, err := shoes.NewService(shoes.NewRepository(client.DB()), client, auditSvc, m, logg)
	require.NoError(t, err)

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	media := config.MediaConfig{MaxUploadMB: 1, MaxFilesPerReq: 4}
	queueSvc, err := queue.NewService(queue.NewRepository(client.DB()), client, store, shoeSvc,
		queue.UploadLimits{MaxBytes: media.MaxUploadBytes(), MaxFiles: media.MaxFilesPerReq}, m, logg)
	require.NoError(t, err)

	return &apiEnv{
		logg:   logg,
		users:  userSvc,
		shoes:  shoeSvc,
		queue:  queueSvc,
		audit:  auditSvc,
		media:  media,
		userID: dbtest.SeedUser(t, client, "ops@example.com"),
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRequest(method, target string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithActor(req.Context(), "ops@example.com")
	return req.WithContext(ctx)
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(t *testing.T, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestAPIStatus(t *testing.T) {
	rec, env := serve(t, APIStatus(), httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeData(t, env, &body)
	assert.Equal(t, "system is fully operational", body["message"])
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})

	rec, _ := serve(t, HealthReady(cfg, logg, stubPinger{}, stubPinger{}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-KickStock-Env"))

	rec, _ = serve(t, HealthReady(cfg, logg, stubPinger{}, nil), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "redis is optional")

	rec, env := serve(t, HealthReady(cfg, logg, stubPinger{}, stubPinger{err: errors.New("dial tcp: refused")}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STORAGE_ERROR", env.Error.Code)

	rec, _ = serve(t, HealthLive(cfg), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	e := newAPIEnv(t)

	rec, env := serve(t, UserCreate(e.users, e.logg), newRequest(http.MethodPost, "/api/v1/users", map[string]any{"email": "Seller@Example.com"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user users.UserDTO
	decodeData(t, env, &user)
	assert.Equal(t, "seller@example.com", user.Email)

	rec, env = serve(t, UserCreate(e.users, e.logg), newRequest(http.MethodPost, "/api/v1/users", map[string]any{"email": "seller@example.com"}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, env = serve(t, UserCreate(e.users, e.logg), newRequest(http.MethodPost, "/api/v1/users", map[string]any{"email": "nope"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "email")

	rec, _ = serve(t, UserGet(e.users, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "userId", idString(user.ID)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = serve(t, UserGet(e.users, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "userId", "9999"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, _ = serve(t, UserGet(e.users, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "userId", "abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueEnqueueAcceptsFormAndJSON(t *testing.T) {
	e := newAPIEnv(t)

	form := url.Values{"raw_text": {"Jordan 1 Chicago, size 9"}, "user_id": {idString(e.userID)}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec, env := serve(t, QueueEnqueue(e.queue, e.logg), req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID      uint   `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeData(t, env, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, "Text successfully added to queue.", created.Message)

	rec, env = serve(t, QueueEnqueue(e.queue, e.logg), newRequest(http.MethodPost, "/api/v1/queue", map[string]any{"user_id": e.userID}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "raw_text")

	// user id falls back to the token's user
	req = newRequest(http.MethodPost, "/api/v1/queue", map[string]any{"raw_text": "Yeezy 350"})
	req = req.WithContext(middleware.WithUserID(req.Context(), e.userID))
	rec, _ = serve(t, QueueEnqueue(e.queue, e.logg), req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	form = url.Values{"raw_text": {"x"}, "user_id": {"abc"}}
	req = httptest.NewRequest(http.MethodPost, "/api/v1/queue", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec, env = serve(t, QueueEnqueue(e.queue, e.logg), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "user_id")
}

func TestQueueAttachImagesReportsEachFile(t *testing.T) {
	e := newAPIEnv(t)
	entry, err := e.queue.Enqueue(context.Background(), queue.EnqueueInput{UserID: e.userID, RawText: "Air Force 1"})
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "front.png")
	require.NoError(t, err)
	_, _ = part.Write(pngHeader)
	part, err = mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("just text"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, env := serve(t, QueueAttachImages(e.queue, e.media, e.logg), withParam(req, "queueId", idString(entry.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		QueueID uint `json:"queue_id"`
		Stored  int  `json:"stored"`
		Failed  int  `json:"failed"`
		Results []struct {
			Filename string `json:"filename"`
			Code     string `json:"code"`
		} `json:"results"`
	}
	decodeData(t, env, &resp)
	assert.Equal(t, entry.ID, resp.QueueID)
	assert.Equal(t, 1, resp.Stored)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Results[0].Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Results[1].Code)

	rec, env = serve(t, QueueGet(e.queue, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "queueId", idString(entry.ID)))
	require.Equal(t, http.StatusOK, rec.Code)
	var got queue.EntryDTO
	decodeData(t, env, &got)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "image/png", got.Images[0].Filetype)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec, _ = serve(t, QueueAttachImages(e.queue, e.media, e.logg), withParam(req, "queueId", idString(entry.ID)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueLifecycleAndPromote(t *testing.T) {
	e := newAPIEnv(t)
	entry, err := e.queue.Enqueue(context.Background(), queue.EnqueueInput{UserID: e.userID, RawText: "Dunk Low Panda size 10"})
	require.NoError(t, err)
	id := idString(entry.ID)

	rec, _ := serve(t, QueueStart(e.queue, e.logg), withParam(newRequest(http.MethodPost, "/", nil), "queueId", id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := serve(t, QueueStart(e.queue, e.logg), withParam(newRequest(http.MethodPost, "/", nil), "queueId", id))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	promote := map[string]any{"brand": "Nike", "model": "Dunk Low", "size": "10", "color": "Black/White"}
	rec, env = serve(t, QueuePromote(e.queue, e.logg), withParam(newRequest(http.MethodPost, "/", promote), "queueId", id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		Queue queue.EntryDTO `json:"queue"`
		Shoe  shoes.ShoeDTO  `json:"shoe"`
	}
	decodeData(t, env, &result)
	assert.Equal(t, "Completed", result.Queue.Status.String())
	require.NotNil(t, result.Queue.ShoeID)
	assert.Equal(t, result.Shoe.ID, *result.Queue.ShoeID)
	assert.Equal(t, e.userID, result.Shoe.UserID)

	trail, err := e.audit.Trail(context.Background(), result.Shoe.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "ops@example.com", trail[0].Actor)

	rec, _ = serve(t, QueueCancel(e.queue, e.logg), withParam(newRequest(http.MethodPost, "/", nil), "queueId", id))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = serve(t, QueueArchive(e.queue, e.logg), withParam(newRequest(http.MethodPost, "/", nil), "queueId", id))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = serve(t, QueueList(e.queue, e.logg), newRequest(http.MethodGet, "/api/v1/queue?status=Archived&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []queue.EntryDTO `json:"items"`
	}
	decodeData(t, env, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entry.ID, page.Items[0].ID)

	rec, _ = serve(t, QueueList(e.queue, e.logg), newRequest(http.MethodGet, "/api/v1/queue?status=Lost", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShoeLifecycleOverHTTP(t *testing.T) {
	e := newAPIEnv(t)

	createReq := newRequest(http.MethodPost, "/api/v1/shoes", map[string]any{
		"brand": "Nike",
		"model": "Air Max 90",
		"size":  "10.5",
		"color": "White",
	})
	createReq = createReq.WithContext(middleware.WithUserID(createReq.Context(), e.userID))
	rec, env := serve(t, ShoeCreate(e.shoes, e.logg), createReq)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var shoe shoes.ShoeDTO
	decodeData(t, env, &shoe)
	assert.Equal(t, "Unlisted", shoe.ListingStatus.String())
	id := idString(shoe.ID)

	post := func(h http.HandlerFunc, body any) (*httptest.ResponseRecorder, envelope) {
		return serve(t, h, withParam(newRequest(http.MethodPost, "/", body), "shoeId", id))
	}

	rec, env = post(ShoeTransitionPayment(e.shoes, e.logg), map[string]any{"payment_status": "Completed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = post(ShoeTransitionListing(e.shoes, e.logg), map[string]any{"listing_status": "Listed", "listing_id": "EB-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = post(ShoeTransitionListing(e.shoes, e.logg), map[string]any{"listing_status": "Sold"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = post(ShoeTransitionListing(e.shoes, e.logg), map[string]any{"listing_status": "Gone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "listing_status")

	rec, _ = post(ShoeTransitionListing(e.shoes, e.logg), map[string]any{"listing_status": "Sold", "buyer_username": "sneakerhead", "sale_price": "180.00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = post(ShoeTransitionShipping(e.shoes, e.logg), map[string]any{"shipping_status": "Shipped"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = post(ShoeTransitionPayment(e.shoes, e.logg), map[string]any{"payment_status": "Completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = post(ShoeTransitionShipping(e.shoes, e.logg), map[string]any{"shipping_status": "Shipped", "tracking_number": "1Z999"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &shoe)
	require.NotNil(t, shoe.ShippingTrackingNumber)
	assert.Equal(t, "1Z999", *shoe.ShippingTrackingNumber)

	rec, env = serve(t, AuditTrail(e.audit, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "shoeId", id))
	require.Equal(t, http.StatusOK, rec.Code)
	var trail []audit.Entry
	decodeData(t, env, &trail)
	actions := make([]string, 0, len(trail))
	for _, entry := range trail {
		actions = append(actions, entry.ActionType)
		assert.Equal(t, "ops@example.com", entry.Actor)
	}
	assert.Equal(t, []string{"created", "listed", "sold", "payment_completed", "shipped"}, actions)

	rec, env = serve(t, ShoeTransactions(e.shoes, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "shoeId", id))
	require.Equal(t, http.StatusOK, rec.Code)
	var history []shoes.TransactionDTO
	decodeData(t, env, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "Listed", history[0].ListingStatus.String())
	assert.Equal(t, "Sold", history[1].ListingStatus.String())
}

func TestShoeUpdateRejectsStatusFields(t *testing.T) {
	e := newAPIEnv(t)
	shoe, err := e.shoes.CreateShoe(context.Background(), shoes.CreateShoeInput{UserID: e.userID, Brand: "Adidas"})
	require.NoError(t, err)
	id := idString(shoe.ID)

	rec, env := serve(t, ShoeUpdate(e.shoes, e.logg), withParam(newRequest(http.MethodPatch, "/", map[string]any{"listing_status": "Sold"}), "shoeId", id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = serve(t, ShoeUpdate(e.shoes, e.logg), withParam(newRequest(http.MethodPatch, "/", map[string]any{"model": "Samba OG"}), "shoeId", id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated shoes.ShoeDTO
	decodeData(t, env, &updated)
	assert.Equal(t, "Samba OG", updated.Model)

	rec, env = serve(t, ShoeList(e.shoes, e.logg), newRequest(http.MethodGet, "/api/v1/shoes?brand=Adidas", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []shoes.ShoeDTO `json:"items"`
	}
	decodeData(t, env, &page)
	assert.Len(t, page.Items, 1)

	rec, _ = serve(t, ShoeGet(e.shoes, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "shoeId", "424242"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditRecordUsesCallerAsActor(t *testing.T) {
	e := newAPIEnv(t)
	shoe, err := e.shoes.CreateShoe(context.Background(), shoes.CreateShoeInput{UserID: e.userID})
	require.NoError(t, err)

	rec, env := serve(t, AuditRecord(e.audit, e.logg), withParam(newRequest(http.MethodPost, "/", map[string]any{"action_type": "photographed"}), "shoeId", idString(shoe.ID)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry audit.Entry
	decodeData(t, env, &entry)
	assert.Equal(t, "photographed", entry.ActionType)
	assert.Equal(t, "ops@example.com", entry.Actor)

	rec, _ = serve(t, AuditRecord(e.audit, e.logg), withParam(newRequest(http.MethodPost, "/", map[string]any{}), "shoeId", idString(shoe.ID)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, AuditTrail(e.audit, e.logg), withParam(newRequest(http.MethodGet, "/", nil), "shoeId", "777"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
