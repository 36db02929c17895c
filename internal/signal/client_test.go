package signal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_ReceiveNew(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   []string
		wantErr bool
	}{
		{
			name:   "data message",
			status: http.StatusOK,
			body:   `[{"envelope":{"dataMessage":{"message":"/balance"}}}]`,
			want:   []string{"/balance"},
		},
		{
			name:   "sync message from own device",
			status: http.StatusOK,
			body:   `[{"envelope":{"syncMessage":{"sentMessage":{"message":"/add 5"}}}}]`,
			want:   []string{"/add 5"},
		},
		{
			name:   "mixed batch keeps order",
			status: http.StatusOK,
			body: `[{"envelope":{"dataMessage":{"message":"/balance"}}},` +
				`{"envelope":{"syncMessage":{"sentMessage":{"message":"/history"}}}}]`,
			want: []string{"/balance", "/history"},
		},
		{
			name:   "envelope without text skipped",
			status: http.StatusOK,
			body:   `[{"envelope":{}}]`,
			want:   nil,
		},
		{
			name:   "null body means no messages",
			status: http.StatusOK,
			body:   "null",
			want:   nil,
		},
		{
			name:   "empty body means no messages",
			status: http.StatusOK,
			body:   "",
			want:   nil,
		},
		{
			name:   "malformed body treated as no messages",
			status: http.StatusOK,
			body:   `{"not":"an array"`,
			want:   nil,
		},
		{
			name:    "non-200 status is an error",
			status:  http.StatusBadGateway,
			body:    "upstream down",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method = %s, want GET", r.Method)
				}
				if want := "/v1/receive/+447700900000"; r.URL.Path != want {
					t.Errorf("path = %s, want %s", r.URL.Path, want)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "+447700900000", "+447700900001", time.Second)
			got, err := client.ReceiveNew(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("ReceiveNew() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReceiveNew() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ReceiveNew() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ReceiveNew()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClient_Send(t *testing.T) {
	t.Run("posts message, number and recipients", func(t *testing.T) {
		var received sendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if r.URL.Path != "/v2/send" {
				t.Errorf("path = %s, want /v2/send", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %s", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "+447700900000", "+447700900001", time.Second)
		if err := client.Send(context.Background(), "💰 Balance: £10.50"); err != nil {
			t.Fatalf("Send() error = %v", err)
		}

		if received.Message != "💰 Balance: £10.50" {
			t.Errorf("message = %q", received.Message)
		}
		if received.Number != "+447700900000" {
			t.Errorf("number = %q", received.Number)
		}
		if len(received.Recipients) != 1 || received.Recipients[0] != "+447700900001" {
			t.Errorf("recipients = %v", received.Recipients)
		}
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "number not registered", http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "+447700900000", "+447700900001", time.Second)
		if err := client.Send(context.Background(), "hello"); err == nil {
			t.Fatal("Send() error = nil, want error")
		}
	})

	t.Run("unreachable server is an error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "+447700900000", "+447700900001", 200*time.Millisecond)
		if err := client.Send(context.Background(), "hello"); err == nil {
			t.Fatal("Send() error = nil, want error")
		}
	})
}
