package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/loadsim"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

func newTestServer(t *testing.T, health func() map[string]bool) (*Server, *httptest.Server) {
	t.Helper()
	session := presentation.NewSession(presentation.NewTable(theme.Get("sentry")), nil)
	s := NewServer(session, health, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(s.NewRouter())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return s, ts
}

func posture(seq uint64, angle float64, status string) collectors.Update {
	return collectors.Update{
		Source: telemetry.CollectorName,
		Data:   telemetry.Result{Seq: seq, Reading: telemetry.Reading{Angle: angle, Status: status}},
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestStateEndpoint(t *testing.T) {
	s, ts := newTestServer(t, nil)
	s.Handle(posture(1, 110, "Warning: Slouching!"))
	s.Handle(collectors.Update{Source: loadsim.CollectorName, Data: loadsim.Sample{Percent: 27, Changed: true}})

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var st State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "Warning: Slouching!", st.LastKnownStatus)
	assert.Equal(t, uint64(1), st.LastSeq)
	require.NotNil(t, st.Last)
	assert.True(t, st.Last.AlertActive)
	require.Len(t, st.Log, 1)
	assert.Equal(t, "[ALERT] Posture integrity critical: 110°", st.Log[0].Message)
	require.NotNil(t, st.Load)
	assert.Equal(t, 27, *st.Load)
	assert.Equal(t, "sentry", st.Variant)
}

func TestStaleAndFailedUpdatesDoNotChangeState(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.Handle(posture(3, 150, "Normal"))
	s.Handle(posture(2, 100, "Warning: Slouching!"))
	s.Handle(collectors.Update{Source: telemetry.CollectorName, Error: errors.New("refused")})

	st := s.State()
	assert.Equal(t, "Normal", st.LastKnownStatus)
	assert.Equal(t, uint64(3), st.LastSeq)
	assert.Empty(t, st.Log)
}

func TestHealthEndpoint(t *testing.T) {
	healthy := map[string]bool{"posture": true, "load": true}
	_, ts := newTestServer(t, func() map[string]bool { return healthy })

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body.Status)

	healthy = map[string]bool{"posture": false, "load": true}
	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body.Status)
	assert.False(t, body.Collectors["posture"])
}

func TestIndexPageServed(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestIndexPageColoursLogAndHonoursStyleChanged(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	page := string(body)
	assert.Contains(t, page, "d.style.color = e.color")
	assert.Contains(t, page, "r.style_changed")
	assert.Contains(t, page, "m.render.seq <= lastSeq")
}

func TestWSRequiresUpgrade(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketSnapshotThenRenders(t *testing.T) {
	s, ts := newTestServer(t, nil)
	s.Handle(posture(1, 150, "Normal"))

	conn := dial(t, ts)
	first := readMessage(t, conn)
	require.Equal(t, TypeSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, "Normal", first.Snapshot.LastKnownStatus)

	s.Handle(posture(2, 95, "Warning: Slouching!"))
	m := readMessage(t, conn)
	require.Equal(t, TypeRender, m.Type)
	require.NotNil(t, m.Render)
	assert.Equal(t, uint64(2), m.Render.Seq)
	assert.Equal(t, "WARNING", m.Render.Label)
	assert.Equal(t, 0.0, m.Render.AngleDisplayPercent)
	assert.True(t, m.Render.StyleChanged)
	require.NotNil(t, m.Render.NewLogEntry)
	assert.Equal(t, "[ALERT] Posture integrity critical: 95°", m.Render.NewLogEntry.Message)

	s.Handle(collectors.Update{Source: loadsim.CollectorName, Data: loadsim.Sample{Percent: 33}})
	m = readMessage(t, conn)
	require.Equal(t, TypeLoad, m.Type)
	require.NotNil(t, m.Load)
	assert.Equal(t, 33, *m.Load)
}

// A browser connecting while renders are being applied must see every
// render either folded into its snapshot or as a later message.
func TestClientAttachingMidStreamMissesNoRender(t *testing.T) {
	s, ts := newTestServer(t, nil)
	const last = 60

	go func() {
		for seq := uint64(1); seq <= last; seq++ {
			status := "Normal"
			if seq%2 == 0 {
				status = "Warning: Slouching!"
			}
			s.Handle(posture(seq, 120, status))
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(5 * time.Millisecond)
	conn := dial(t, ts)
	first := readMessage(t, conn)
	require.Equal(t, TypeSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)

	next := first.Snapshot.LastSeq + 1
	for next <= last {
		m := readMessage(t, conn)
		require.Equal(t, TypeRender, m.Type)
		if m.Render.Seq < next {
			continue
		}
		require.Equal(t, next, m.Render.Seq, "render %d never reached the client", next)
		next++
	}
}

func TestConsumeStopsOnClose(t *testing.T) {
	s, _ := newTestServer(t, nil)
	updates := make(chan collectors.Update, 2)
	updates <- posture(1, 140, "Normal")
	close(updates)

	done := make(chan struct{})
	go func() {
		s.Consume(context.Background(), updates)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not return after channel close")
	}
	assert.Equal(t, "Normal", s.State().LastKnownStatus)
}

func TestHubDisconnectsClientsOnShutdown(t *testing.T) {
	session := presentation.NewSession(presentation.NewTable(theme.Get("sentry")), nil)
	s := NewServer(session, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Hub().Run(ctx)
	ts := httptest.NewServer(s.NewRouter())
	defer ts.Close()

	conn := dial(t, ts)
	_ = readMessage(t, conn)
	assert.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection should be closed after shutdown")
	assert.Eventually(t, func() bool { return s.Hub().ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
