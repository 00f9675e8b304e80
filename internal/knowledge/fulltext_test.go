package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestSanitizeFTS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jwt", `"jwt"`},
		{"token refresh", `"token" OR "refresh"`},
		{`say "hi" NEAR(x)`, `"say" OR "hi" OR "NEAR(x)"`},
		{`  ""  `, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFTS(tt.in); got != tt.want {
			t.Errorf("sanitizeFTS(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSearchTopics(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, "p", "auth", "jwt", "Tokens are signed JWTs refreshed every 15 minutes.")
	mustWrite(t, s, "p", "auth", "sessions", "Sessions live in Redis.")
	mustWrite(t, s, "p", "billing", "invoices", "Invoices are generated nightly.")

	hits, err := s.SearchTopics(context.Background(), "p", "redis sessions", 5)
	if err != nil {
		t.Fatalf("SearchTopics: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits")
	}
	if hits[0].Domain != "auth" || hits[0].Topic != "sessions" {
		t.Errorf("top hit = %s/%s, want auth/sessions", hits[0].Domain, hits[0].Topic)
	}
	for _, h := range hits {
		if h.Topic == "invoices" {
			t.Errorf("unrelated topic matched: %+v", h)
		}
	}
}

func TestSearchTopics_SeesLatestContent(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, "p", "auth", "jwt", "nothing here")

	hits, err := s.SearchTopics(context.Background(), "p", "kerberos", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits = %v, want none", hits)
	}

	mustWrite(t, s, "p", "auth", "jwt", "now using kerberos")
	hits, err = s.SearchTopics(context.Background(), "p", "kerberos", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("hits after write = %d, want 1", len(hits))
	}
}

func TestSearchTopics_EmptyQueryAndMissingProject(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SearchTopics(context.Background(), "p", "   ", 5); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
	hits, err := s.SearchTopics(context.Background(), "ghost", "anything", 5)
	if err != nil || len(hits) != 0 {
		t.Errorf("SearchTopics(ghost) = (%v, %v), want empty", hits, err)
	}
}

func TestSearchTopics_IndexOpenFailure(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, "p", "auth", "jwt", "tokens")

	errDriver := errors.New("driver unavailable")
	orig := openDB
	openDB = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errDriver
	}
	t.Cleanup(func() { openDB = orig })

	if _, err := s.SearchTopics(context.Background(), "p", "tokens", 5); !errors.Is(err, errDriver) {
		t.Errorf("err = %v, want the opener's error", err)
	}
}
