package gamma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

func TestGetMarketByToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		if got := r.URL.Query().Get("clob_token_ids_in"); got != "77" {
			t.Errorf("clob_token_ids_in = %q, want 77", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"id": "512329",
			"question": "Will it rain tomorrow?",
			"slug": "will-it-rain-tomorrow",
			"tokens": [
				{"token_id": "77", "outcome": "Yes", "winner": false},
				{"token_id": "78", "outcome": "No", "winner": false}
			]
		}]`))
	}))
	t.Cleanup(srv.Close)

	md, err := New(srv.URL).GetMarketByToken(context.Background(), "77")
	if err != nil {
		t.Fatalf("GetMarketByToken() error = %v", err)
	}
	want := domain.MarketMetadata{
		AssetID:  "77",
		Question: "Will it rain tomorrow?",
		Slug:     "will-it-rain-tomorrow",
		Outcome:  "Yes",
	}
	if md != want {
		t.Errorf("GetMarketByToken() = %+v, want %+v", md, want)
	}
}

func TestGetMarketByTokenOutcomeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id": "1", "question": "Q?", "slug": "q", "tokens": [{"token_id": "99", "outcome": "Yes"}]}]`))
	}))
	t.Cleanup(srv.Close)

	md, err := New(srv.URL).GetMarketByToken(context.Background(), "77")
	if err != nil {
		t.Fatalf("GetMarketByToken() error = %v", err)
	}
	if md.Outcome != "Unknown" {
		t.Errorf("Outcome = %q, want Unknown when the token is absent", md.Outcome)
	}
}

func TestGetMarketByTokenErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty result list", http.StatusOK, `[]`, domain.ErrNotFound},
		{"not found", http.StatusNotFound, `{"error":"not found"}`, domain.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			_, err := New(srv.URL).GetMarketByToken(context.Background(), "77")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetMarketByToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
