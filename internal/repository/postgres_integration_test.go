//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.ContentTag{},
		&models.ContentAuthor{},
		&models.Content{},
		&models.Tag{},
		&models.Author{},
		&models.Journal{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Journal{},
		&models.Author{},
		&models.Tag{},
		&models.Content{},
		&models.ContentAuthor{},
		&models.ContentTag{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresContentSearchAndFacets(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewContentRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	tag := &models.Tag{Name: "climate"}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("create tag failed: %v", err)
	}
	rows := []*models.Content{
		{Slug: "pg-ocean", Type: constants.ContentTypeArticle, Title: "Ocean Currents", Status: constants.ContentStatusPublished, PublishedAt: &now, CrossrefStatus: constants.CrossrefStatusNotRegistered},
		{Slug: "pg-glacier", Type: constants.ContentTypeCaseStudy, Title: "Glacier Retreat", Status: constants.ContentStatusPublished, PublishedAt: &now, CrossrefStatus: constants.CrossrefStatusNotRegistered},
		{Slug: "pg-draft", Type: constants.ContentTypeArticle, Title: "Ocean Draft", Status: constants.ContentStatusDraft, CrossrefStatus: constants.CrossrefStatusNotRegistered},
	}
	for _, row := range rows {
		if err := repo.Create(row); err != nil {
			t.Fatalf("create content %s failed: %v", row.Slug, err)
		}
	}
	if err := repo.ReplaceTags(rows[0].ID, []uint{tag.ID}); err != nil {
		t.Fatalf("replace tags failed: %v", err)
	}

	items, total, err := repo.List(ContentListFilter{Page: 1, PageSize: 10, Status: constants.ContentStatusPublished, Search: "OCEAN"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Slug != "pg-ocean" {
		t.Fatalf("case-insensitive search want pg-ocean got total=%d items=%+v", total, items)
	}

	facets, err := repo.Facets(ContentListFilter{Status: constants.ContentStatusPublished})
	if err != nil {
		t.Fatalf("facets failed: %v", err)
	}
	if len(facets.Types) != 2 {
		t.Fatalf("type facets want 2 got %+v", facets.Types)
	}
	if len(facets.Tags) != 1 || facets.Tags[0].Value != "climate" || facets.Tags[0].Count != 1 {
		t.Fatalf("unexpected tag facets: %+v", facets.Tags)
	}
}

func TestPostgresDOIClaimIsExclusive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewContentRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	content := &models.Content{Slug: "pg-claim", Type: constants.ContentTypeArticle, Title: "Claim", Status: constants.ContentStatusReview, CrossrefStatus: constants.CrossrefStatusNotRegistered}
	if err := repo.Create(content); err != nil {
		t.Fatalf("create content failed: %v", err)
	}
	if _, err := repo.ApplyStatus(content.ID, constants.ContentStatusPublished, now); err != nil {
		t.Fatalf("apply status failed: %v", err)
	}

	claimed, err := repo.ClaimDOIRegistration(content.ID, now, now.Add(-time.Minute))
	if err != nil || !claimed {
		t.Fatalf("first claim want true got %v err=%v", claimed, err)
	}
	claimed, err = repo.ClaimDOIRegistration(content.ID, now, now.Add(-time.Minute))
	if err != nil || claimed {
		t.Fatalf("second claim want false got %v err=%v", claimed, err)
	}

	written, err := repo.CompleteDOIRegistration(content.ID, "10.1234/pg-claim", "SUCCESS")
	if err != nil || !written {
		t.Fatalf("complete want true got %v err=%v", written, err)
	}
	written, err = repo.CompleteDOIRegistration(content.ID, "10.1234/other", "SUCCESS")
	if err != nil || written {
		t.Fatalf("doi must not be overwritten, got %v err=%v", written, err)
	}

	stored, err := repo.GetByID(content.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.PublishedAt == nil || stored.DOI == nil || *stored.DOI != "10.1234/pg-claim" {
		t.Fatalf("unexpected stored content: %+v", stored)
	}
}
