package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

func TestQStashPublisher_ScheduleStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	startsAt := now.Add(90 * time.Minute)

	type captured struct {
		path    string
		headers http.Header
		payload StartGamePayload
	}
	got := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload StartGamePayload
		if err := jsoniter.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		got <- captured{path: r.URL.Path, headers: r.Header.Clone(), payload: payload}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://games.example.com",
		Retries:          3,
		InternalJobToken: "internal-secret",
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	publisher.now = func() time.Time { return now }

	if err := publisher.ScheduleStart(context.Background(), "game-42", startsAt); err != nil {
		t.Fatalf("schedule start: %v", err)
	}

	req := <-got
	if req.path != "/v2/publish/https://games.example.com"+StartGamePath {
		t.Fatalf("unexpected publish path: %s", req.path)
	}
	if req.payload.GameID != "game-42" {
		t.Fatalf("unexpected payload: %+v", req.payload)
	}
	checks := map[string]string{
		"Authorization":                        "Bearer qstash-token",
		"Upstash-Delay":                        "5400s",
		"Upstash-Retries":                      "3",
		"Upstash-Forward-X-Internal-Job-Token": "internal-secret",
		"Upstash-Deduplication-Id":             "start-game-game-42-1777635000",
	}
	for header, want := range checks {
		if value := req.headers.Get(header); value != want {
			t.Fatalf("header %s = %q, want %q", header, value, want)
		}
	}
}

func TestQStashPublisher_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad token"))
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name string
		cfg  QStashPublisherConfig
		want string
	}{
		{name: "missing base url", cfg: QStashPublisherConfig{TargetBaseURL: "https://games.example.com"}, want: "QSTASH_BASE_URL"},
		{name: "bad target scheme", cfg: QStashPublisherConfig{BaseURL: srv.URL, TargetBaseURL: "ftp://games.example.com"}, want: "JOB_CALLBACK_BASE_URL"},
		{name: "non 2xx", cfg: QStashPublisherConfig{BaseURL: srv.URL, TargetBaseURL: "https://games.example.com"}, want: "status=401"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			publisher, err := NewQStashPublisher(tc.cfg, logging.NewNop())
			if err == nil {
				err = publisher.ScheduleStart(context.Background(), "game-1", time.Now().Add(time.Hour))
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestPublish_RejectsEmptyPathAndSendsEmptyObject(t *testing.T) {
	t.Parallel()

	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies <- strings.TrimSpace(string(raw))
		if r.Header.Get("Upstash-Delay") != "" {
			t.Errorf("unexpected delay header %q", r.Header.Get("Upstash-Delay"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: srv.URL, TargetBaseURL: "https://games.example.com"}, logging.NewNop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := publisher.Publish(context.Background(), Job{Path: " / "}); err == nil {
		t.Fatalf("expected empty path to fail")
	}
	if err := publisher.Publish(context.Background(), Job{Path: "v1/internal/ping"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if body := <-bodies; body != "{}" {
		t.Fatalf("expected empty object body, got %q", body)
	}
}

func TestDelaySeconds(t *testing.T) {
	t.Parallel()

	if got := delaySeconds(-time.Second); got != "0s" {
		t.Fatalf("negative delay: %s", got)
	}
	if got := delaySeconds(1500 * time.Millisecond); got != "2s" {
		t.Fatalf("rounded delay: %s", got)
	}
}
