package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatStreamEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	conn := dialStream(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello"}))

	var chunks []string
	var done map[string]interface{}
	for done == nil {
		var frame map[string]interface{}
		require.NoError(t, conn.ReadJSON(&frame))
		switch {
		case frame["chunk"] != nil:
			chunks = append(chunks, frame["chunk"].(string))
		case frame["done"] == true:
			done = frame
		default:
			t.Fatalf("unexpected frame: %v", frame)
		}
	}

	require.Len(t, chunks, 1)
	assert.Equal(t, noDocsAnswer, chunks[0])
	assert.NotEmpty(t, done["session_id"])
	assert.NotNil(t, done["sources"])
}

func TestChatStreamEndpoint_EmptyMessage(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	conn := dialStream(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "  "}))

	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "Message cannot be empty", frame["error"])

	// 连接保持打开, 可以继续发送
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello"}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, noDocsAnswer, frame["chunk"])
}

func TestChatStreamEndpoint_KeepsSession(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	conn := dialStream(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello", "session_id": "ws-sess"}))

	var sessionID string
	for sessionID == "" {
		var frame map[string]interface{}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame["done"] == true {
			sessionID = frame["session_id"].(string)
		}
	}
	assert.Equal(t, "ws-sess", sessionID)

	resp, err := http.Get(srv.URL + "/api/sessions/ws-sess/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
