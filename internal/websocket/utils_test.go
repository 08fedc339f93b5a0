package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// echoServer upgrades, reads one request and answers it n times from
// concurrent goroutines.
func echoServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var req RequestPayload
		if err := ReadJSON(conn, &req); err != nil {
			t.Errorf("ReadJSON: %v", err)
			return
		}
		out := NewWriter(conn)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := out.WriteError("echo " + string(req.Action)); err != nil {
					t.Errorf("WriteError: %v", err)
				}
			}()
		}
		wg.Wait()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWriterConcurrentWrites(t *testing.T) {
	const n = 20
	srv := echoServer(t, n)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(RequestPayload{Action: ActionPing}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	for i := 0; i < n; i++ {
		var resp ErrorResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("ReadJSON %d: %v", i, err)
		}
		if resp.Event != EventError || resp.Error != "echo ping" {
			t.Errorf("unexpected response %+v", resp)
		}
	}
}
