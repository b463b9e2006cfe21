package handlers_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/abrezinsky/outletplay/internal/handlers"
	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/testutil"
)

// liveStream is an open connection to the live endpoint
type liveStream struct {
	resp   *http.Response
	lines  chan string
	cancel context.CancelFunc
}

func openLive(t *testing.T, server *httptest.Server) *liveStream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/game/live", nil)
	if err != nil {
		cancel()
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("failed to open live stream: %v", err)
	}

	s := &liveStream{resp: resp, lines: make(chan string, 64), cancel: cancel}
	go func() {
		defer close(s.lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
	}()
	t.Cleanup(s.close)
	return s
}

func (s *liveStream) close() {
	s.cancel()
	s.resp.Body.Close()
}

// next returns the next non-empty line
func (s *liveStream) next(t *testing.T) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				t.Fatal("live stream closed")
			}
			if line != "" {
				return line
			}
		case <-timeout:
			t.Fatal("timed out waiting for a live line")
		}
	}
}

// nextEvent skips comments and returns the fields of the next event
func (s *liveStream) nextEvent(t *testing.T) map[string]string {
	t.Helper()
	fields := map[string]string{}
	for {
		line := s.next(t)
		if strings.HasPrefix(line, ":") {
			continue
		}
		key, value, _ := strings.Cut(line, ": ")
		fields[key] = value
		if key == "data" {
			return fields
		}
	}
}

// newLiveServer starts a server closed after every stream opened later in the test
func newLiveServer(t *testing.T, setup *testSetup) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(setup.router)
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLive_Headers(t *testing.T) {
	setup := newTestSetup(t)
	server := newLiveServer(t, setup)

	stream := openLive(t, server)

	if stream.resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", stream.resp.StatusCode)
	}
	if ct := stream.resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	if cc := stream.resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected no-cache, got %q", cc)
	}
	if line := stream.next(t); line != ": connected" {
		t.Errorf("expected connected comment, got %q", line)
	}
}

func TestLive_DeliversWinEvents(t *testing.T) {
	setup := newTestSetup(t)
	server := newLiveServer(t, setup)

	testutil.SeedPrize(t, setup.repo, "Free parking", 3)
	setup.game.SetRandomizer(testutil.AlwaysWin())

	first := openLive(t, server)
	second := openLive(t, server)
	waitFor(t, "two subscriptions", func() bool { return setup.feed.Size() == 2 })

	rec := setup.do(http.MethodPost, "/api/game/play", "", setup.userToken(t, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("play failed: %d %s", rec.Code, rec.Body.String())
	}

	for _, stream := range []*liveStream{first, second} {
		fields := stream.nextEvent(t)
		if fields["event"] != "win" {
			t.Errorf("expected win event, got %q", fields["event"])
		}
		var event models.WinEvent
		if err := json.Unmarshal([]byte(fields["data"]), &event); err != nil {
			t.Fatalf("data is not a win event: %v", err)
		}
		if fields["id"] != event.ID || event.ID == "" {
			t.Errorf("expected id field %q to match payload id %q", fields["id"], event.ID)
		}
		if event.Prize != "Free parking" || event.Message != "A visitor just won: Free parking!" {
			t.Errorf("unexpected event %+v", event)
		}
		if _, err := time.Parse(time.RFC3339, event.WonAt); err != nil {
			t.Errorf("wonAt is not RFC3339: %q", event.WonAt)
		}
	}
}

func TestLive_NoEventOnLoss(t *testing.T) {
	setup := newTestSetup(t)
	server := newLiveServer(t, setup)

	stream := openLive(t, server)
	waitFor(t, "subscription", func() bool { return setup.feed.Size() == 1 })

	setup.do(http.MethodPost, "/api/game/play", "", setup.userToken(t, 1))
	setup.feed.Publish(models.WinEvent{ID: "marker", Prize: "marker"})

	if fields := stream.nextEvent(t); fields["id"] != "marker" {
		t.Errorf("expected only the marker event, got %v", fields)
	}
}

func TestLive_KeepAlive(t *testing.T) {
	setup := newTestSetup(t)
	server := newLiveServer(t, setup)

	stream := openLive(t, server)
	stream.next(t)

	if line := stream.next(t); line != ": keep-alive" {
		t.Errorf("expected keep-alive comment, got %q", line)
	}
}

func TestLive_DisconnectUnsubscribes(t *testing.T) {
	setup := newTestSetup(t)
	server := newLiveServer(t, setup)

	stream := openLive(t, server)
	waitFor(t, "subscription", func() bool { return setup.feed.Size() == 1 })

	stream.close()

	waitFor(t, "unsubscribe", func() bool { return setup.feed.Size() == 0 })
}

func TestLive_CloseLiveEndsStreams(t *testing.T) {
	setup := newTestSetup(t)
	server := newLiveServer(t, setup)

	stream := openLive(t, server)
	waitFor(t, "subscription", func() bool { return setup.feed.Size() == 1 })

	setup.handlers.CloseLive()
	setup.handlers.CloseLive()

	waitFor(t, "unsubscribe", func() bool { return setup.feed.Size() == 0 })
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stream.lines:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("expected the stream to end")
		}
	}
}

func TestLive_RejectsViewersAfterClose(t *testing.T) {
	setup := newTestSetup(t)
	setup.handlers.CloseLive()

	rec := setup.do(http.MethodGet, "/api/game/live", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), handlers.ErrCodeUnavailable) {
		t.Errorf("expected %s code, got %s", handlers.ErrCodeUnavailable, rec.Body.String())
	}

	// Other routes keep serving while live streams are closed
	rec = setup.do(http.MethodGet, "/api/game/status", "", setup.userToken(t, 1))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status to keep working, got %d", rec.Code)
	}
}
