package progress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/jobs"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.ServeWS(w, r))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	return env
}

func TestHubBroadcastsJobStatus(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	// Registration races the first broadcast; retry until the client is in.
	go func() {
		for i := 0; i < 50; i++ {
			hub.PublishJob(jobs.JobStatus{ID: "j1", State: jobs.StateRunning, Total: 3})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	env := readEnvelope(t, conn)
	assert.Equal(t, EventJobStatus, env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "j1", data["id"])
	assert.Equal(t, string(jobs.StateRunning), data["state"])
	assert.NotZero(t, env.Timestamp)
}

func TestHubBroadcastsSyncResult(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	result := &domain.SyncResult{ListsCreated: 2}
	go func() {
		for i := 0; i < 50; i++ {
			hub.PublishSyncResult("full", result)
			time.Sleep(20 * time.Millisecond)
		}
	}()

	env := readEnvelope(t, conn)
	assert.Equal(t, EventSyncCompleted, env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "full", data["operation"])
}
