package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/crossref"
	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/provider"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type okDepositor struct{}

func (okDepositor) Deposit(_ context.Context, _ *crossref.Config, batchID string, _ []byte) (*crossref.DepositResult, error) {
	return &crossref.DepositResult{BatchID: batchID, StatusCode: 200, Message: "SUCCESS"}, nil
}

type handlerEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupAdminContentHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_content_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	contentRepo := repository.NewContentRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	userRepo := repository.NewUserRepository(db)
	doiService := service.NewDOIService(config.CrossrefConfig{
		Enabled:         true,
		DepositURL:      "https://test.crossref.org/servlet/deposit",
		LoginID:         "press",
		LoginPassword:   "secret",
		DOIPrefix:       "10.5555",
		DepositorName:   "Press Desk",
		DepositorEmail:  "doi@press.example",
		ResourceBaseURL: "https://press.example/contents",
	}, contentRepo, okDepositor{})
	workflow := service.NewWorkflowService(config.ContentConfig{}, contentRepo, doiService, nil)

	h := &Handler{Container: &provider.Container{
		ContentRepo:     contentRepo,
		JournalRepo:     journalRepo,
		UserRepo:        userRepo,
		DOIService:      doiService,
		WorkflowService: workflow,
		ReviewService:   service.NewReviewService(config.ReviewConfig{}, contentRepo, journalRepo, userRepo, workflow),
	}}
	return h, db
}

func seedHandlerContent(t *testing.T, db *gorm.DB, slug, status string) *models.Content {
	t.Helper()
	content := &models.Content{
		Slug:           slug,
		Type:           constants.ContentTypeArticle,
		Title:          "Title " + slug,
		Status:         status,
		CrossrefStatus: constants.CrossrefStatusNotRegistered,
	}
	if err := db.Create(content).Error; err != nil {
		t.Fatalf("create content failed: %v", err)
	}
	return content
}

func newAdminTestRouter(h *Handler, principal *service.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(handlershared.ContextKeyUserID, principal.UserID)
			c.Set(handlershared.ContextKeyEmail, principal.Email)
			c.Set(handlershared.ContextKeyRole, principal.Role)
			c.Set(handlershared.ContextKeyElevated, principal.Elevated)
		}
		c.Next()
	})
	r.PATCH("/admin/contents/:id/status", h.UpdateContentStatus)
	r.POST("/admin/contents/:id/doi", h.RetryContentDOI)
	r.GET("/admin/review/pending", h.GetPendingReview)
	r.POST("/admin/review/:type/:id/approve", h.ApproveReviewItem)
	r.POST("/admin/review/:type/:id/reject", h.RejectReviewItem)
	return r
}

func performAdminRequest(t *testing.T, r *gin.Engine, method, path, body string) handlerEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var env handlerEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return env
}

func adminTestPrincipal() *service.Principal {
	return &service.Principal{UserID: 1, Email: "admin@press.example", Role: constants.UserRoleAdmin}
}

func TestUpdateContentStatusPublishesAndRegistersDOI(t *testing.T) {
	h, db := setupAdminContentHandlerTest(t)
	content := seedHandlerContent(t, db, "handler-paper", constants.ContentStatusReview)
	r := newAdminTestRouter(h, adminTestPrincipal())

	env := performAdminRequest(t, r, http.MethodPatch, fmt.Sprintf("/admin/contents/%d/status", content.ID), `{"status":"published"}`)
	if env.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d msg=%s", env.StatusCode, env.Msg)
	}
	var result service.TransitionResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal transition result failed: %v", err)
	}
	if !result.Success || result.Content.Status != constants.ContentStatusPublished {
		t.Fatalf("unexpected transition result: %+v", result)
	}
	if result.DOI == nil || *result.DOI != "10.5555/handler-paper" {
		t.Fatalf("unexpected doi: %v", result.DOI)
	}
	if result.DOIRegistration == nil || !result.DOIRegistration.Success {
		t.Fatalf("expected successful doi registration, got %+v", result.DOIRegistration)
	}
	if env.Msg == "" || env.Msg != result.Message {
		t.Fatalf("envelope msg should carry the localized message, got %q / %q", env.Msg, result.Message)
	}
}

func TestUpdateContentStatusErrorCodes(t *testing.T) {
	h, db := setupAdminContentHandlerTest(t)
	draft := seedHandlerContent(t, db, "draft-paper", constants.ContentStatusDraft)

	cases := []struct {
		name      string
		principal *service.Principal
		path      string
		body      string
		want      int
	}{
		{name: "invalid status", principal: adminTestPrincipal(), path: fmt.Sprintf("/admin/contents/%d/status", draft.ID), body: `{"status":"LIMBO"}`, want: 400},
		{name: "missing body", principal: adminTestPrincipal(), path: fmt.Sprintf("/admin/contents/%d/status", draft.ID), body: `{}`, want: 400},
		{name: "bad id", principal: adminTestPrincipal(), path: "/admin/contents/abc/status", body: `{"status":"REVIEW"}`, want: 400},
		{name: "not found", principal: adminTestPrincipal(), path: "/admin/contents/9999/status", body: `{"status":"REVIEW"}`, want: 404},
		{name: "strict transition", principal: adminTestPrincipal(), path: fmt.Sprintf("/admin/contents/%d/status", draft.ID), body: `{"status":"ARCHIVED"}`, want: 400},
		{name: "forbidden author", principal: &service.Principal{UserID: 5, Email: "stranger@example.com", Role: constants.UserRoleAuthor}, path: fmt.Sprintf("/admin/contents/%d/status", draft.ID), body: `{"status":"PUBLISHED"}`, want: 403},
		{name: "anonymous", principal: nil, path: fmt.Sprintf("/admin/contents/%d/status", draft.ID), body: `{"status":"REVIEW"}`, want: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAdminTestRouter(h, tc.principal)
			env := performAdminRequest(t, r, http.MethodPatch, tc.path, tc.body)
			if env.StatusCode != tc.want {
				t.Fatalf("status_code want %d got %d msg=%s", tc.want, env.StatusCode, env.Msg)
			}
		})
	}

	var stored models.Content
	if err := db.First(&stored, draft.ID).Error; err != nil {
		t.Fatalf("reload content failed: %v", err)
	}
	if stored.Status != constants.ContentStatusDraft {
		t.Fatalf("failed requests must not mutate status, got %s", stored.Status)
	}
}

func TestRetryContentDOINotEligibleForDraft(t *testing.T) {
	h, db := setupAdminContentHandlerTest(t)
	draft := seedHandlerContent(t, db, "not-yet", constants.ContentStatusDraft)
	r := newAdminTestRouter(h, adminTestPrincipal())

	env := performAdminRequest(t, r, http.MethodPost, fmt.Sprintf("/admin/contents/%d/doi", draft.ID), "")
	if env.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", env.StatusCode)
	}
}

func TestReviewEndpoints(t *testing.T) {
	h, db := setupAdminContentHandlerTest(t)
	pending := seedHandlerContent(t, db, "queued-paper", constants.ContentStatusReview)
	seedHandlerContent(t, db, "quiet-draft", constants.ContentStatusDraft)
	r := newAdminTestRouter(h, adminTestPrincipal())

	env := performAdminRequest(t, r, http.MethodGet, "/admin/review/pending", "")
	if env.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", env.StatusCode)
	}
	var snapshot service.PendingReview
	if err := json.Unmarshal(env.Data, &snapshot); err != nil {
		t.Fatalf("unmarshal pending review failed: %v", err)
	}
	if len(snapshot.Content) != 1 || snapshot.Content[0].ID != pending.ID {
		t.Fatalf("unexpected pending content: %+v", snapshot.Content)
	}
	if snapshot.Journals == nil || snapshot.Users == nil {
		t.Fatalf("empty queues should serialize as arrays")
	}

	env = performAdminRequest(t, r, http.MethodPost, fmt.Sprintf("/admin/review/comment/%d/approve", pending.ID), "")
	if env.StatusCode != 400 {
		t.Fatalf("invalid type status_code want 400 got %d", env.StatusCode)
	}
	env = performAdminRequest(t, r, http.MethodPost, "/admin/review/content/4242/reject", "")
	if env.StatusCode != 404 {
		t.Fatalf("missing item status_code want 404 got %d", env.StatusCode)
	}

	env = performAdminRequest(t, r, http.MethodPost, fmt.Sprintf("/admin/review/content/%d/reject", pending.ID), "")
	if env.StatusCode != 0 {
		t.Fatalf("reject status_code want 0 got %d msg=%s", env.StatusCode, env.Msg)
	}
	var stored models.Content
	if err := db.First(&stored, pending.ID).Error; err != nil {
		t.Fatalf("reload content failed: %v", err)
	}
	if stored.Status != constants.ContentStatusDraft {
		t.Fatalf("rejected content should return to draft, got %s", stored.Status)
	}

	author := newAdminTestRouter(h, &service.Principal{UserID: 3, Email: "a@example.com", Role: constants.UserRoleAuthor})
	env = performAdminRequest(t, author, http.MethodPost, fmt.Sprintf("/admin/review/content/%d/approve", pending.ID), "")
	if env.StatusCode != 403 {
		t.Fatalf("author approve status_code want 403 got %d", env.StatusCode)
	}
}
