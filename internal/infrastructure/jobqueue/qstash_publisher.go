// Package jobqueue schedules delayed HTTP callbacks through Upstash QStash.
package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

// StartGamePath is the internal callback that starts a game once its start time arrives.
const StartGamePath = "/v1/internal/jobs/start-game"

const defaultPublishTimeout = 10 * time.Second

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
}

// StartGamePayload is the body QStash forwards to StartGamePath.
type StartGamePayload struct {
	GameID string `json:"game_id"`
}

// Job is one delayed callback. DeduplicationID lets QStash drop repeats of the same job.
type Job struct {
	Path            string
	Payload         any
	Delay           time.Duration
	DeduplicationID string
}

type QStashPublisher struct {
	client     *http.Client
	publishURL string
	targetURL  string
	headers    http.Header
	logger     *logging.Logger
	now        func() time.Time
}

// NewQStashPublisher checks both base URLs up front so a bad deployment fails at boot.
func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	publishBase, err := httpBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBase, err := httpBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid JOB_CALLBACK_BASE_URL")
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+strings.TrimSpace(cfg.Token))
	headers.Set("Content-Type", "application/json")
	headers.Set("Upstash-Method", http.MethodPost)
	if cfg.Retries > 0 {
		headers.Set("Upstash-Retries", strconv.Itoa(cfg.Retries))
	}
	if token := strings.TrimSpace(cfg.InternalJobToken); token != "" {
		headers.Set("Upstash-Forward-X-Internal-Job-Token", token)
	}

	return &QStashPublisher{
		client:     &http.Client{Timeout: timeout},
		publishURL: publishBase + "/v2/publish/",
		targetURL:  targetBase,
		headers:    headers,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// ScheduleStart publishes a delayed start-game callback. Rescheduling the same start time is deduplicated.
func (p *QStashPublisher) ScheduleStart(ctx context.Context, gameID string, startsAt time.Time) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return crerr.New("game id is required")
	}
	return p.Publish(ctx, Job{
		Path:            StartGamePath,
		Payload:         StartGamePayload{GameID: gameID},
		Delay:           startsAt.Sub(p.now()),
		DeduplicationID: "start-game-" + gameID + "-" + strconv.FormatInt(startsAt.Unix(), 10),
	})
}

func (p *QStashPublisher) Publish(ctx context.Context, job Job) error {
	path := "/" + strings.TrimLeft(strings.TrimSpace(job.Path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	target := p.targetURL + path
	delay := delaySeconds(job.Delay)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	payload := job.Payload
	if payload == nil {
		payload = struct{}{}
	}
	if err := jsoniter.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", target),
			attribute.String("qstash.delay", delay),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL+target, strings.NewReader(buf.String()))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header = p.headers.Clone()
	if job.Delay > 0 {
		req.Header.Set("Upstash-Delay", delay)
	}
	if id := strings.TrimSpace(job.DeduplicationID); id != "" {
		req.Header.Set("Upstash-Deduplication-Id", id)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Wrapf(err, "publish qstash job target_url=%s", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return crerr.Newf("publish qstash job status=%d target_url=%s body=%s", resp.StatusCode, target, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", delay, "deduplication_id", job.DeduplicationID)
	return nil
}

// delaySeconds renders QStash's delay header, rounding to whole seconds.
func delaySeconds(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return strconv.FormatInt(int64(d.Round(time.Second)/time.Second), 10) + "s"
}

func httpBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", crerr.New("value is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", crerr.Newf("%q has empty host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
