package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/config"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

func testSettings(channelID int, auth string) *store.SettingsStore {
	cfg := &config.Config{}
	cfg.PayHero.ChannelID = channelID
	cfg.PayHero.AuthToken = auth
	return store.NewSettingsStore(cfg)
}

func TestPayHeroPushSuccess(t *testing.T) {
	var got map[string]interface{}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"QUEUED"}`))
	}))
	defer srv.Close()

	settings := testSettings(1941, "dGVzdA==")
	g := NewPayHeroGateway(srv.URL, "https://example.com/callback.php", settings, zap.NewNop())

	res := g.Push(context.Background(), 99, "0712345678", "FY'S-123456", "FYS PROPERTY BOT")
	if !res.Success {
		t.Fatalf("push failed: %s", res.Message)
	}
	if gotAuth != "Basic dGVzdA==" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if got["provider"] != "m-pesa" {
		t.Errorf("provider = %v", got["provider"])
	}
	if got["external_reference"] != "FY'S-123456" {
		t.Errorf("external_reference = %v", got["external_reference"])
	}
	if got["channel_id"].(float64) != 1941 {
		t.Errorf("channel_id = %v", got["channel_id"])
	}
	if got["phone_number"] != "0712345678" {
		t.Errorf("phone_number = %v", got["phone_number"])
	}
}

func TestPayHeroPushNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad credentials"}`))
	}))
	defer srv.Close()

	g := NewPayHeroGateway(srv.URL, "", testSettings(1, "x"), zap.NewNop())
	res := g.Push(context.Background(), 50, "0712345678", "FY'S-1", "bot")
	if res.Success {
		t.Fatal("push should fail on non-2xx status")
	}
}

func TestPayHeroPushNeverRetries(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		// Kill the connection mid-request so the client sees a
		// transport error, the case retries would normally kick in on.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("server does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	}))
	defer srv.Close()

	g := NewPayHeroGateway(srv.URL, "", testSettings(1, "x"), zap.NewNop())
	res := g.Push(context.Background(), 50, "0712345678", "FY'S-3", "bot")
	if res.Success {
		t.Fatal("push should fail on transport error")
	}
	// A second attempt could prompt the customer's phone twice.
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestPayHeroPushUsesLiveCredentials(t *testing.T) {
	var gotChannel float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotChannel = body["channel_id"].(float64)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	settings := testSettings(1941, "old")
	g := NewPayHeroGateway(srv.URL, "", settings, zap.NewNop())

	// Admin rotates credentials between pushes; the gateway must pick
	// up the new channel without being rebuilt.
	settings.SetPayHero(2024, "new")
	res := g.Push(context.Background(), 10, "0712345678", "FY'S-2", "bot")
	if !res.Success {
		t.Fatalf("push failed: %s", res.Message)
	}
	if gotChannel != 2024 {
		t.Errorf("channel_id = %v, want 2024", gotChannel)
	}
}
