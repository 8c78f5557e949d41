package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"
)

func TestListCreatedSinceExcludesAdminsAndOldUsers(t *testing.T) {
	db := setupRepositoryTestDB(t, "user_created_since")
	repo := NewUserRepository(db)
	now := time.Now()

	seed := []struct {
		email   string
		role    string
		created time.Time
	}{
		{"old@example.com", constants.UserRoleAuthor, now.Add(-10 * 24 * time.Hour)},
		{"admin@example.com", constants.UserRoleAdmin, now.Add(-time.Hour)},
		{"reader@example.com", constants.UserRoleReader, now.Add(-2 * time.Hour)},
		{"author@example.com", constants.UserRoleAuthor, now.Add(-30 * time.Minute)},
	}
	for _, item := range seed {
		user := &models.User{
			Email:        item.email,
			PasswordHash: "x",
			Role:         item.role,
			CreatedAt:    item.created,
		}
		if err := repo.Create(user); err != nil {
			t.Fatalf("create user %s failed: %v", item.email, err)
		}
	}

	users, err := repo.ListCreatedSince(now.Add(-7*24*time.Hour), constants.UserRoleAdmin, 50)
	if err != nil {
		t.Fatalf("list created since failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users want 2 got %d", len(users))
	}
	if users[0].Email != "author@example.com" || users[1].Email != "reader@example.com" {
		t.Fatalf("unexpected order: %s, %s", users[0].Email, users[1].Email)
	}
}

func TestListCreatedSinceHonorsLimit(t *testing.T) {
	db := setupRepositoryTestDB(t, "user_created_limit")
	repo := NewUserRepository(db)
	for i := 0; i < 4; i++ {
		user := &models.User{
			Email:        fmt.Sprintf("u%d@example.com", i),
			PasswordHash: "x",
			Role:         constants.UserRoleReader,
		}
		if err := repo.Create(user); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	users, err := repo.ListCreatedSince(time.Now().Add(-time.Hour), constants.UserRoleAdmin, 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("users want 3 got %d", len(users))
	}
}

func TestGetByEmailIsCaseInsensitive(t *testing.T) {
	db := setupRepositoryTestDB(t, "user_by_email")
	repo := NewUserRepository(db)
	if err := repo.Create(&models.User{Email: "grace@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	user, err := repo.GetByEmail("  Grace@Example.COM ")
	if err != nil || user == nil {
		t.Fatalf("expected user, got %+v err=%v", user, err)
	}
	missing, err := repo.GetByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing user, got %+v err=%v", missing, err)
	}
}

func TestAuthorFindOrCreateMatchesByEmailThenName(t *testing.T) {
	db := setupRepositoryTestDB(t, "author_find_or_create")
	repo := NewAuthorRepository(db)

	first, err := repo.FindOrCreate(models.Author{Name: "Grace Hopper", Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("create author failed: %v", err)
	}
	again, err := repo.FindOrCreate(models.Author{Name: "G. Hopper", Email: "GRACE@example.com"})
	if err != nil {
		t.Fatalf("find author failed: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("email match should reuse author %d, got %d", first.ID, again.ID)
	}

	anon, err := repo.FindOrCreate(models.Author{Name: "Anonymous"})
	if err != nil {
		t.Fatalf("create anonymous author failed: %v", err)
	}
	anonAgain, err := repo.FindOrCreate(models.Author{Name: " Anonymous "})
	if err != nil {
		t.Fatalf("find anonymous author failed: %v", err)
	}
	if anon.ID != anonAgain.ID {
		t.Fatalf("name match should reuse author %d, got %d", anon.ID, anonAgain.ID)
	}

	list, err := repo.ListByEmail("grace@example.com")
	if err != nil || len(list) != 1 {
		t.Fatalf("list by email want 1, got %d err=%v", len(list), err)
	}
}

func TestUserListFiltersAndLookups(t *testing.T) {
	db := setupRepositoryTestDB(t, "user_list_filters")
	repo := NewUserRepository(db)
	for i, role := range []string{constants.UserRoleAuthor, constants.UserRoleAuthor, constants.UserRoleReader} {
		user := &models.User{
			Email:        fmt.Sprintf("Member%d@Example.com", i),
			PasswordHash: "x",
			Role:         role,
			Status:       constants.UserStatusActive,
		}
		if err := repo.Create(user); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	users, total, err := repo.List(UserListFilter{Role: constants.UserRoleAuthor, Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(users) != 1 {
		t.Fatalf("want total 2 and one row, got total=%d rows=%d", total, len(users))
	}

	got, err := repo.GetByEmail("  member2@example.COM ")
	if err != nil || got == nil || got.Role != constants.UserRoleReader {
		t.Fatalf("email lookup should ignore case, got %+v err=%v", got, err)
	}
	if missing, err := repo.GetByID(9999); err != nil || missing != nil {
		t.Fatalf("missing user should be (nil, nil), got %+v err=%v", missing, err)
	}

	if err := repo.UpdateStatus(got.ID, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	disabled, _ := repo.GetByID(got.ID)
	if disabled.TokenVersion != 1 || disabled.TokenInvalidBefore == nil {
		t.Fatalf("disabling should revoke tokens, got version=%d", disabled.TokenVersion)
	}
}

func TestAuthzAuditLogListFilters(t *testing.T) {
	db := setupRepositoryTestDB(t, "authz_audit_filters")
	repo := NewAuthzAuditLogRepository(db)
	target := uint(7)
	old := time.Now().Add(-48 * time.Hour)
	rows := []*models.AuthzAuditLog{
		{OperatorUserID: 1, TargetUserID: &target, Action: "user_roles_set", Role: "editor"},
		{OperatorUserID: 1, Action: "role_create", Role: "copyeditor"},
		{OperatorUserID: 2, TargetUserID: &target, Action: "user_roles_set", Role: "reviewer", CreatedAt: old},
	}
	for _, row := range rows {
		if err := repo.Create(row); err != nil {
			t.Fatalf("create audit log failed: %v", err)
		}
	}
	if err := repo.Create(nil); err != nil {
		t.Fatalf("nil log should be ignored: %v", err)
	}

	logs, total, err := repo.List(AuthzAuditLogListFilter{TargetUserID: target})
	if err != nil || total != 2 || len(logs) != 2 {
		t.Fatalf("target filter: total=%d rows=%d err=%v", total, len(logs), err)
	}
	from := time.Now().Add(-time.Hour)
	logs, total, err = repo.List(AuthzAuditLogListFilter{Action: "user_roles_set", CreatedFrom: &from})
	if err != nil || total != 1 || logs[0].Role != "editor" {
		t.Fatalf("action+time filter: total=%d logs=%+v err=%v", total, logs, err)
	}
}
