package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/freelancehub/internal/auth"
	"github.com/nurpe/freelancehub/internal/config"
	"github.com/nurpe/freelancehub/internal/excel"
	"github.com/nurpe/freelancehub/internal/filestore"
	"github.com/nurpe/freelancehub/internal/http/middleware"
	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/pdf"
	"github.com/nurpe/freelancehub/internal/repository/memory"
	"github.com/nurpe/freelancehub/internal/service"
)

type syncEmitter struct {
	store *memory.NotificationStore
}

func (e syncEmitter) Emit(events ...model.NotificationEvent) {
	for _, ev := range events {
		projectID := ev.ProjectID
		_ = e.store.Create(context.Background(), &model.Notification{
			UserID:    ev.RecipientID,
			Message:   ev.Message,
			Type:      ev.Type,
			ProjectID: &projectID,
			BidID:     ev.BidID,
		})
	}
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	parser *auth.Parser
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.NewStore()
	notifications := memory.NewNotificationStore()
	users := memory.NewUsers()
	files, err := filestore.NewLocal(t.TempDir(), 1<<20)
	require.NoError(t, err)
	events := syncEmitter{store: notifications}
	log := zerolog.Nop()

	handler := NewHandler(Services{
		Projects:      service.NewProjectService(st, users, events, log),
		Bids:          service.NewBidService(st, events, log),
		Deliverables:  service.NewDeliverableService(st, files, log),
		Notifications: service.NewNotificationService(notifications),
		Reports:       service.NewReportService(st, users, excel.NewGenerator(), pdf.NewGenerator()),
	}, log)

	cfg := &config.Config{
		Environment: "test",
		HTTP: config.HTTPConfig{
			CORSAllowedOrigins: []string{"*"},
			RateLimitRPS:       1000,
			RateLimitBurst:     1000,
		},
	}
	parser := auth.NewParser("test-secret")
	return &testAPI{
		t:      t,
		router: NewRouter(handler, middleware.Auth(parser), cfg, log),
		parser: parser,
	}
}

func (a *testAPI) token(p model.Principal) string {
	token, err := a.parser.Sign(p, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(p *model.Principal, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(*p))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) json(p *model.Principal, method, path string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(a.t, err)
		body = bytes.NewReader(raw)
	}
	return a.do(p, method, path, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthzIsPublic(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(nil, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(nil, http.MethodGet, "/api/projects", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	client := model.Principal{UserID: uuid.New(), Role: model.UserRoleClient}
	f1 := model.Principal{UserID: uuid.New(), Role: model.UserRoleFreelancer}
	f2 := model.Principal{UserID: uuid.New(), Role: model.UserRoleFreelancer}

	rec := api.json(&client, http.MethodPost, "/api/projects", map[string]any{
		"title":           "Landing page",
		"description":     "Marketing site",
		"budget":          500,
		"deadline":        "2026-12-01",
		"category":        "web",
		"skills_required": []string{"html"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[model.Project](t, rec)
	require.Equal(t, model.ProjectStatusOpen, project.Status)
	base := "/api/projects/" + project.ID.String()

	rec = api.json(&f1, http.MethodPost, base+"/bids", map[string]any{"amount": 400, "proposal": "fast", "delivery_days": 10})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b1 := decode[model.Bid](t, rec)
	rec = api.json(&f2, http.MethodPost, base+"/bids", map[string]any{"amount": 450, "proposal": "solid", "delivery_days": 7})
	require.Equal(t, http.StatusCreated, rec.Code)
	b2 := decode[model.Bid](t, rec)

	rec = api.json(&f1, http.MethodPost, base+"/bids", map[string]any{"amount": 390, "proposal": "again", "delivery_days": 9})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(&client, http.MethodGet, base+"/bids/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	rec = api.do(&f1, http.MethodGet, base+"/bids", nil, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.json(&client, http.MethodPost, "/api/bids/"+b1.ID.String()+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = api.json(&client, http.MethodPost, "/api/bids/"+b2.ID.String()+"/accept", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid state")

	rec = api.do(&f2, http.MethodGet, "/api/notifications", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[struct {
		Data []model.Notification `json:"data"`
	}](t, rec)
	require.Len(t, notes.Data, 1)
	require.Equal(t, model.NotificationBidRejected, notes.Data[0].Type)

	rec = api.json(&f2, http.MethodPost, "/api/notifications/read", map[string]any{"ids": []string{notes.Data[0].ID.String()}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(&f2, http.MethodGet, "/api/notifications/unread-count", nil, "")
	require.JSONEq(t, `{"unread":0}`, rec.Body.String())

	rec = api.upload(&f2, base+"/deliverables", "work.txt", "nope")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.upload(&f1, base+"/deliverables", "work.txt", "draft one")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	deliverable := decode[model.Deliverable](t, rec)
	require.Equal(t, "work.txt", deliverable.OriginalFileName)
	require.NotContains(t, rec.Body.String(), "file_location")

	rec = api.do(&client, http.MethodGet, "/api/deliverables/"+deliverable.ID.String()+"/download", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "draft one", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "work.txt")

	rec = api.json(&client, http.MethodPost, base+"/approve", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.json(&f1, http.MethodPost, base+"/mark-for-review", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.json(&client, http.MethodPost, base+"/request-revisions", map[string]any{"message": "please fix X"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(&f1, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Project](t, rec)
	require.Equal(t, model.ProjectStatusInProgress, got.Status)
	require.Equal(t, "please fix X", *got.RevisionNotes)

	rec = api.json(&f1, http.MethodPost, base+"/mark-for-review", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.json(&client, http.MethodPost, base+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(&f1, http.MethodGet, base+"/statement", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, contentTypePDF, rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestBadRequests(t *testing.T) {
	api := newTestAPI(t)
	client := model.Principal{UserID: uuid.New(), Role: model.UserRoleClient}

	rec := api.do(&client, http.MethodGet, "/api/projects/not-a-uuid", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(&client, http.MethodGet, "/api/projects/"+uuid.NewString(), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.json(&client, http.MethodPost, "/api/projects", map[string]any{
		"title":       "x",
		"description": "y",
		"budget":      10,
		"deadline":    "next tuesday",
		"category":    "web",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "deadline")

	rec = api.json(&client, http.MethodPost, "/api/notifications/read", map[string]any{"ids": []string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func (a *testAPI) upload(p *model.Principal, path, name, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(a.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(a.t, err)
	require.NoError(a.t, w.WriteField("description", "draft"))
	require.NoError(a.t, w.Close())
	return a.do(p, http.MethodPost, path, &body, w.FormDataContentType())
}
