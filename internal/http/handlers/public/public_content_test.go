package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/provider"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type publicEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Facets     json.RawMessage `json:"facets"`
}

func setupPublicContentHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_content_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	contentRepo := repository.NewContentRepository(db)
	authorRepo := repository.NewAuthorRepository(db)
	tagRepo := repository.NewTagRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	userRepo := repository.NewUserRepository(db)
	workflow := service.NewWorkflowService(config.ContentConfig{}, contentRepo, nil, nil)
	contentService := service.NewContentService(config.ContentConfig{}, contentRepo, authorRepo, tagRepo, journalRepo, userRepo, nil, workflow)

	h := New(&provider.Container{
		ContentRepo:     contentRepo,
		WorkflowService: workflow,
		ContentService:  contentService,
		TagService:      service.NewTagService(tagRepo),
		JournalService:  service.NewJournalService(journalRepo),
	})
	return h, db
}

func newPublicTestRouter(h *Handler, principal *service.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(handlershared.ContextKeyUserID, principal.UserID)
			c.Set(handlershared.ContextKeyEmail, principal.Email)
			c.Set(handlershared.ContextKeyRole, principal.Role)
		}
		c.Next()
	})
	r.GET("/public/contents", h.GetContents)
	r.GET("/public/contents/:slug", h.GetContentBySlug)
	r.POST("/me/contents", h.CreateMyContent)
	r.POST("/me/contents/:id/submit", h.SubmitMyContent)
	return r
}

func performPublicRequest(t *testing.T, r *gin.Engine, method, path, body string) publicEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var env publicEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return env
}

func TestAuthorCreateAndSubmitFlow(t *testing.T) {
	h, db := setupPublicContentHandlerTest(t)
	writer := &service.Principal{UserID: 2, Email: "writer@example.com", Role: constants.UserRoleAuthor}
	r := newPublicTestRouter(h, writer)

	env := performPublicRequest(t, r, http.MethodPost, "/me/contents", `{"title":"Field Notes","status":"PUBLISHED","tags":["Ethnography"]}`)
	if env.StatusCode != 0 {
		t.Fatalf("create status_code want 0 got %d msg=%s", env.StatusCode, env.Msg)
	}
	var created models.Content
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("unmarshal content failed: %v", err)
	}
	if created.Status != constants.ContentStatusDraft || created.Slug != "field-notes" {
		t.Fatalf("unexpected created content: %+v", created)
	}

	env = performPublicRequest(t, r, http.MethodPost, fmt.Sprintf("/me/contents/%d/submit", created.ID), "")
	if env.StatusCode != 0 {
		t.Fatalf("submit status_code want 0 got %d msg=%s", env.StatusCode, env.Msg)
	}
	var stored models.Content
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload content failed: %v", err)
	}
	if stored.Status != constants.ContentStatusReview {
		t.Fatalf("submitted content should be in review, got %s", stored.Status)
	}

	stranger := newPublicTestRouter(h, &service.Principal{UserID: 3, Email: "other@example.com", Role: constants.UserRoleAuthor})
	env = performPublicRequest(t, stranger, http.MethodPost, fmt.Sprintf("/me/contents/%d/submit", created.ID), "")
	if env.StatusCode != 403 {
		t.Fatalf("stranger submit status_code want 403 got %d", env.StatusCode)
	}

	anonymous := newPublicTestRouter(h, nil)
	env = performPublicRequest(t, anonymous, http.MethodPost, "/me/contents", `{"title":"Nope"}`)
	if env.StatusCode != 401 {
		t.Fatalf("anonymous create status_code want 401 got %d", env.StatusCode)
	}
}

func TestPublicContentsOnlyExposePublished(t *testing.T) {
	h, db := setupPublicContentHandlerTest(t)
	now := time.Now()
	live := models.Content{Slug: "live", Type: constants.ContentTypeArticle, Title: "Live", Status: constants.ContentStatusPublished, PublishedAt: &now, CrossrefStatus: constants.CrossrefStatusNotRegistered}
	hidden := models.Content{Slug: "hidden", Type: constants.ContentTypeArticle, Title: "Hidden", Status: constants.ContentStatusReview, CrossrefStatus: constants.CrossrefStatusNotRegistered}
	if err := db.Create(&live).Error; err != nil {
		t.Fatalf("create live content failed: %v", err)
	}
	if err := db.Create(&hidden).Error; err != nil {
		t.Fatalf("create hidden content failed: %v", err)
	}
	r := newPublicTestRouter(h, nil)

	env := performPublicRequest(t, r, http.MethodGet, "/public/contents?page=1&page_size=10", "")
	if env.StatusCode != 0 {
		t.Fatalf("list status_code want 0 got %d", env.StatusCode)
	}
	var items []models.Content
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("unmarshal items failed: %v", err)
	}
	if len(items) != 1 || items[0].Slug != "live" {
		t.Fatalf("unexpected public items: %+v", items)
	}
	if len(env.Facets) == 0 || string(env.Facets) == "null" {
		t.Fatalf("facets should be present")
	}

	env = performPublicRequest(t, r, http.MethodGet, "/public/contents/hidden", "")
	if env.StatusCode != 404 {
		t.Fatalf("hidden detail status_code want 404 got %d", env.StatusCode)
	}
	env = performPublicRequest(t, r, http.MethodGet, "/public/contents/live", "")
	if env.StatusCode != 0 {
		t.Fatalf("live detail status_code want 0 got %d", env.StatusCode)
	}
}
