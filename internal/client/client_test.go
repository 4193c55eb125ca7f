package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
)

func TestNewNotConfigured(t *testing.T) {
	if _, err := New("  ", 0); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New("not a url", 0); err == nil {
		t.Fatalf("expected invalid url error")
	}
}

func TestSubmit(t *testing.T) {
	var got model.Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/scores" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(model.SubmitResult{Success: true, Score: 42, Rank: 3, IsHighScore: true})
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	start := time.UnixMilli(1_700_000_000_000)
	attempt := model.Attempt{TargetText: "abc", Input: "abd", StartedAt: start, EndedAt: start.Add(1500 * time.Millisecond)}
	res, err := c.Submit(context.Background(), SubmissionFor(attempt, "zoe", start.Add(2*time.Second)))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 42 || res.Rank != 3 || !res.IsHighScore {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got.Username != "zoe" || got.StartTime != start.UnixMilli() || got.EndTime != start.UnixMilli()+1500 || got.SubmittedAt != start.UnixMilli()+2000 {
		t.Fatalf("unexpected wire submission: %+v", got)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Input too long"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.Submit(context.Background(), model.Submission{})
	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if !rerr.Rejected() || rerr.Error() != "Input too long" {
		t.Fatalf("unexpected remote error: %+v", rerr)
	}
}

func TestLeaderboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected limit %q", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(`[{"rank":1,"username":"a","score":900,"cpm":300,"accuracy":99.1}]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	entries, err := c.Leaderboard(context.Background(), 5)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "a" || entries[0].Accuracy != 99.1 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
