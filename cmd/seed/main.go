package main

import (
	"context"
	"time"

	"github.com/pressdesk/internal/app"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"

	"golang.org/x/crypto/bcrypt"
)

type seedContent struct {
	Title    string
	Type     string
	Status   string
	Abstract string
	Tags     []string
	Authors  []service.AuthorInput
	Journal  string
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := app.PrepareDatabase(cfg); err != nil {
		stdLog.Fatalf("prepare database: %v", err)
	}

	userRepo := repository.NewUserRepository(models.DB)
	journalRepo := repository.NewJournalRepository(models.DB)
	contentRepo := repository.NewContentRepository(models.DB)

	// 作者账号
	authors := []struct {
		Email string
		Name  string
	}{
		{Email: "ada@example.com", Name: "Ada Lovelace"},
		{Email: "grace@example.com", Name: "Grace Hopper"},
	}
	for _, item := range authors {
		existing, err := userRepo.GetByEmail(item.Email)
		if err != nil {
			stdLog.Printf("Failed to load user %s: %v", item.Email, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("User already exists: %s", item.Email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		user := &models.User{
			Email:        item.Email,
			PasswordHash: string(hash),
			Name:         item.Name,
			Role:         constants.UserRoleAuthor,
			Status:       constants.UserStatusActive,
			Locale:       "en-US",
		}
		if err := userRepo.Create(user); err != nil {
			stdLog.Printf("Failed to create user %s: %v", item.Email, err)
		} else {
			stdLog.Printf("Created user: %s", item.Email)
		}
	}

	// 期刊
	journals := []models.Journal{
		{Slug: "computing-review", Title: "Computing Review", ISSN: "1234-5678", Description: "Peer reviewed computing research", Status: constants.JournalStatusPublished},
		{Slug: "teaching-notes", Title: "Teaching Notes", Description: "Notes for classroom use", Status: constants.JournalStatusDraft},
	}
	journalIDs := map[string]uint{}
	for i := range journals {
		journal := journals[i]
		existing, err := journalRepo.GetBySlug(journal.Slug, false)
		if err != nil {
			stdLog.Printf("Failed to load journal %s: %v", journal.Slug, err)
			continue
		}
		if existing != nil {
			journalIDs[journal.Slug] = existing.ID
			stdLog.Printf("Journal already exists: %s", journal.Slug)
			continue
		}
		if journal.Status == constants.JournalStatusPublished {
			now := time.Now()
			journal.PublishedAt = &now
		}
		if err := journalRepo.Create(&journal); err != nil {
			stdLog.Printf("Failed to create journal %s: %v", journal.Slug, err)
			continue
		}
		journalIDs[journal.Slug] = journal.ID
		stdLog.Printf("Created journal: %s", journal.Slug)
	}

	// 内容：不挂 DOI 登记，已发布内容由后台手动重试登记
	contentService := service.NewContentService(
		cfg.Content,
		contentRepo,
		repository.NewAuthorRepository(models.DB),
		repository.NewTagRepository(models.DB),
		journalRepo,
		userRepo,
		nil,
		service.NewWorkflowService(cfg.Content, contentRepo, nil, nil),
	)
	seedPrincipal := service.SystemPrincipal()
	contents := []seedContent{
		{
			Title:    "Analytical Engines Revisited",
			Type:     constants.ContentTypeArticle,
			Status:   constants.ContentStatusPublished,
			Abstract: "A look back at programmable computation.",
			Tags:     []string{"history", "computing"},
			Authors:  []service.AuthorInput{{Name: "Ada Lovelace", Email: "ada@example.com"}},
			Journal:  "computing-review",
		},
		{
			Title:    "Compilers for Everyone",
			Type:     constants.ContentTypeCaseStudy,
			Status:   constants.ContentStatusReview,
			Abstract: "Teaching compilation with small languages.",
			Tags:     []string{"compilers", "education"},
			Authors:  []service.AuthorInput{{Name: "Grace Hopper", Email: "grace@example.com"}},
		},
		{
			Title:   "Draft Notes on Debugging",
			Type:    constants.ContentTypeTeachingNote,
			Status:  constants.ContentStatusDraft,
			Tags:    []string{"debugging"},
			Authors: []service.AuthorInput{{Name: "Grace Hopper", Email: "grace@example.com"}},
			Journal: "teaching-notes",
		},
	}
	for _, item := range contents {
		slug := service.Slugify(item.Title)
		existing, err := contentRepo.GetBySlug(slug, false)
		if err != nil {
			stdLog.Printf("Failed to load content %s: %v", slug, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Content already exists: %s", slug)
			continue
		}
		input := service.ContentInput{
			Title:    item.Title,
			Slug:     slug,
			Type:     item.Type,
			Status:   item.Status,
			Abstract: item.Abstract,
			Tags:     item.Tags,
			Authors:  item.Authors,
		}
		if id, ok := journalIDs[item.Journal]; ok {
			input.JournalID = &id
		}
		if _, err := contentService.CreateByAdmin(context.Background(), seedPrincipal, input); err != nil {
			stdLog.Printf("Failed to create content %s: %v", slug, err)
			continue
		}
		stdLog.Printf("Created content: %s (%s)", slug, item.Status)
	}

	stdLog.Printf("Seed completed")
}
