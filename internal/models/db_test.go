package models

import "testing"

func TestWithSQLitePragmas(t *testing.T) {
	cases := map[string]string{
		"pressdesk.db":                     "pressdesk.db?_pragma=busy_timeout(5000)",
		"file:x?mode=memory&cache=shared":  "file:x?mode=memory&cache=shared&_pragma=busy_timeout(5000)",
		"app.db?_pragma=busy_timeout(100)": "app.db?_pragma=busy_timeout(100)",
	}
	for in, want := range cases {
		if got := withSQLitePragmas(in); got != want {
			t.Fatalf("withSQLitePragmas(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenDBAndMigrate(t *testing.T) {
	db, err := OpenDB("SQLite", "file:models_open?mode=memory&cache=shared", DBPoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	for _, table := range Tables() {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("table for %T missing", table)
		}
	}

	if _, err := OpenDB("mysql", "root@/x", DBPoolConfig{}); err == nil {
		t.Fatalf("unsupported driver should fail")
	}
	if err := AutoMigrateDB(nil); err == nil {
		t.Fatalf("nil db should fail")
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db, err := OpenDB("sqlite", "file:models_admin?mode=memory&cache=shared", DBPoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	editor := User{Email: "chief@example.com", PasswordHash: "x", Name: "Chief", Role: "AUTHOR", Status: "active"}
	if err := db.Create(&editor).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	result, err := EnsureDefaultAdmin(db, " Chief@Example.com ", "")
	if err != nil || result != AdminPromoted {
		t.Fatalf("promote: result=%q err=%v", result, err)
	}
	var reloaded User
	if err := db.First(&reloaded, editor.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Role != "ADMIN" || reloaded.PasswordHash != "x" {
		t.Fatalf("promoted user = %+v", reloaded)
	}

	result, err = EnsureDefaultAdmin(db, "other@example.com", "secret-pass")
	if err != nil || result != AdminExists {
		t.Fatalf("second run: result=%q err=%v", result, err)
	}
	var count int64
	db.Model(&User{}).Count(&count)
	if count != 1 {
		t.Fatalf("user count = %d, want 1", count)
	}
}

func TestEnsureDefaultAdminFallbackPassword(t *testing.T) {
	db, err := OpenDB("sqlite", "file:models_admin_fallback?mode=memory&cache=shared", DBPoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := AutoMigrateDB(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	result, err := EnsureDefaultAdmin(db, "", "")
	if err != nil || result != AdminCreatedFallback {
		t.Fatalf("create: result=%q err=%v", result, err)
	}
	var admin User
	if err := db.Where("email = ?", defaultAdminEmail).First(&admin).Error; err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.PasswordHash == defaultAdminPassword || admin.Role != "ADMIN" {
		t.Fatalf("admin = %+v", admin)
	}
}
