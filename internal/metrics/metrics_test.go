package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	Register()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status want 200 got %d", w.Code)
	}
	return w.Body.String()
}

func TestObserveTransitionIncrementsCounter(t *testing.T) {
	ObserveTransition("ARCHIVED", "DRAFT")
	ObserveTransition("ARCHIVED", "DRAFT")
	body := scrape(t)
	want := `pressdesk_content_transitions_total{from="ARCHIVED",to="DRAFT"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("metrics output missing %s\n%s", want, body)
	}
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	Register()
	ObserveDOIRegistration(DOIResultFailed)
	ObserveDeposit(150 * time.Millisecond)
	SetReviewQueueSize("content", 3)

	body := scrape(t)
	for _, want := range []string{
		`pressdesk_doi_registrations_total{result="failed"}`,
		"pressdesk_crossref_deposit_duration_seconds_bucket",
		`pressdesk_review_queue_items{kind="content"} 3`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}
