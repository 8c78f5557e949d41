package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"
)

func newReviewServiceForTest(env *serviceTestEnv, registrar DOIRegistrar) *ReviewService {
	workflow := NewWorkflowService(config.ContentConfig{}, env.contentRepo, registrar, nil)
	return NewReviewService(config.ReviewConfig{}, env.contentRepo, env.journalRepo, env.userRepo, workflow)
}

func createReviewUser(t *testing.T, env *serviceTestEnv, email, role string, createdAt time.Time) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         resolveNameFromEmail(email),
		Role:         role,
		Status:       constants.UserStatusActive,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := env.userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createReviewJournal(t *testing.T, env *serviceTestEnv, slug, status string) *models.Journal {
	t.Helper()
	journal := &models.Journal{Slug: slug, Title: "Journal " + slug, Status: status}
	if err := env.journalRepo.Create(journal); err != nil {
		t.Fatalf("create journal failed: %v", err)
	}
	return journal
}

func TestGetPendingReviewFiltersEachQueue(t *testing.T) {
	env := setupServiceTestEnv(t, "review_pending")
	svc := newReviewServiceForTest(env, nil)
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	inReview := env.createContent(t, "in-review", constants.ContentStatusReview, "writer@example.com")
	env.createContent(t, "still-draft", constants.ContentStatusDraft)
	env.createContent(t, "already-live", constants.ContentStatusPublished)

	draftJournal := createReviewJournal(t, env, "draft-journal", constants.JournalStatusDraft)
	createReviewJournal(t, env, "live-journal", constants.JournalStatusPublished)

	fresh := createReviewUser(t, env, "fresh@example.com", constants.UserRoleAuthor, fixed.Add(-48*time.Hour))
	createReviewUser(t, env, "stale@example.com", constants.UserRoleAuthor, fixed.Add(-10*24*time.Hour))
	createReviewUser(t, env, "boss@example.com", constants.UserRoleAdmin, fixed.Add(-time.Hour))

	pending, err := svc.GetPendingReview(context.Background())
	if err != nil {
		t.Fatalf("get pending review failed: %v", err)
	}
	if len(pending.Content) != 1 || pending.Content[0].ID != inReview.ID {
		t.Fatalf("unexpected content queue: %+v", pending.Content)
	}
	if len(pending.Content[0].Authors) != 1 || pending.Content[0].Authors[0].Email != "writer@example.com" {
		t.Fatalf("expected author summary, got %+v", pending.Content[0].Authors)
	}
	if _, err := time.Parse(time.RFC3339, pending.Content[0].CreatedAt); err != nil {
		t.Fatalf("created_at should be RFC3339, got %q", pending.Content[0].CreatedAt)
	}
	if len(pending.Journals) != 1 || pending.Journals[0].ID != draftJournal.ID {
		t.Fatalf("unexpected journal queue: %+v", pending.Journals)
	}
	if len(pending.Users) != 1 || pending.Users[0].ID != fresh.ID {
		t.Fatalf("unexpected user queue: %+v", pending.Users)
	}
}

func TestGetPendingReviewEmptyQueuesAreNotNil(t *testing.T) {
	env := setupServiceTestEnv(t, "review_empty")
	svc := newReviewServiceForTest(env, nil)

	pending, err := svc.GetPendingReview(context.Background())
	if err != nil {
		t.Fatalf("get pending review failed: %v", err)
	}
	if pending.Content == nil || pending.Journals == nil || pending.Users == nil {
		t.Fatalf("queues should be empty slices, got %+v", pending)
	}
}

func TestReviewApproveAndRejectContent(t *testing.T) {
	env := setupServiceTestEnv(t, "review_content")
	registrar := &stubRegistrar{configured: true, result: &DOIRegistrationResult{Success: false, Error: "offline"}}
	svc := newReviewServiceForTest(env, registrar)
	approved := env.createContent(t, "approve-me", constants.ContentStatusReview)
	rejected := env.createContent(t, "reject-me", constants.ContentStatusReview)

	result, err := svc.Approve(context.Background(), adminPrincipal(), "content", approved.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !result.Changed || result.Status != constants.ContentStatusPublished || result.Transition == nil {
		t.Fatalf("unexpected approve result: %+v", result)
	}
	if registrar.callCount() != 1 {
		t.Fatalf("approve should attempt doi registration once, got %d", registrar.callCount())
	}

	result, err = svc.Reject(context.Background(), adminPrincipal(), "CONTENT", rejected.ID)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if !result.Changed || result.Status != constants.ContentStatusDraft {
		t.Fatalf("unexpected reject result: %+v", result)
	}
	result.Localize("zh-CN")
	if result.Message == "" {
		t.Fatalf("localized message should not be empty")
	}

	if _, err := svc.Approve(context.Background(), adminPrincipal(), "content", 4242); !errors.Is(err, ErrReviewItemNotFound) {
		t.Fatalf("expected ErrReviewItemNotFound, got %v", err)
	}
}

func TestReviewApproveJournalAndUser(t *testing.T) {
	env := setupServiceTestEnv(t, "review_journal_user")
	svc := newReviewServiceForTest(env, nil)
	journal := createReviewJournal(t, env, "pending-journal", constants.JournalStatusDraft)
	user := createReviewUser(t, env, "newbie@example.com", constants.UserRoleAuthor, time.Now())

	result, err := svc.Approve(context.Background(), adminPrincipal(), "journal", journal.ID)
	if err != nil {
		t.Fatalf("approve journal failed: %v", err)
	}
	if !result.Changed || result.Status != constants.JournalStatusPublished {
		t.Fatalf("unexpected journal result: %+v", result)
	}
	again, err := svc.Approve(context.Background(), adminPrincipal(), "journal", journal.ID)
	if err != nil {
		t.Fatalf("second approve failed: %v", err)
	}
	if again.Changed {
		t.Fatalf("second approve should be a no-op")
	}

	userResult, err := svc.Approve(context.Background(), adminPrincipal(), "user", user.ID)
	if err != nil {
		t.Fatalf("approve user failed: %v", err)
	}
	if userResult.Changed {
		t.Fatalf("user approval must not change state")
	}
	stored, err := env.userRepo.GetByID(user.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.Status != constants.UserStatusActive || stored.Role != constants.UserRoleAuthor {
		t.Fatalf("user mutated: %+v", stored)
	}
}

func TestReviewDecisionValidation(t *testing.T) {
	env := setupServiceTestEnv(t, "review_validation")
	svc := newReviewServiceForTest(env, nil)
	content := env.createContent(t, "guarded", constants.ContentStatusReview, "writer@example.com")

	if _, err := svc.Approve(context.Background(), adminPrincipal(), "comment", content.ID); !errors.Is(err, ErrInvalidReviewType) {
		t.Fatalf("expected ErrInvalidReviewType, got %v", err)
	}
	writer := authorPrincipal("writer@example.com")
	if _, err := svc.Approve(context.Background(), writer, "content", content.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if stored := env.reload(t, content.ID); stored.Status != constants.ContentStatusReview {
		t.Fatalf("forbidden approve mutated status to %s", stored.Status)
	}
}
