package repository

import "testing"

func TestLikeClause(t *testing.T) {
	clause, args := likeClause("sqlite", " 50%_off\\ ", []string{"title", " ", "slug"})
	if clause != `(title LIKE ? ESCAPE '\' OR slug LIKE ? ESCAPE '\')` {
		t.Fatalf("sqlite clause = %s", clause)
	}
	if len(args) != 2 || args[0] != `%50\%\_off\\%` {
		t.Fatalf("args = %v", args)
	}

	clause, _ = likeClause("postgres", "x", []string{"contents.title"})
	if clause != `(contents.title ILIKE ? ESCAPE '\')` {
		t.Fatalf("postgres clause = %s", clause)
	}

	if clause, args := likeClause("sqlite", "  ", []string{"title"}); clause != "" || args != nil {
		t.Fatalf("blank keyword should add nothing: %q %v", clause, args)
	}
	if clause, _ := likeClause("sqlite", "x", nil); clause != "" {
		t.Fatalf("no columns should add nothing: %q", clause)
	}
}

func TestDialectOfNil(t *testing.T) {
	if got := dialectOf(nil); got != "sqlite" {
		t.Fatalf("dialectOf(nil) = %q", got)
	}
}
