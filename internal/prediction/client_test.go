package prediction_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/prediction"
)

func TestPredictSendsFeaturesAndReturnsRawBody(t *testing.T) {
	var gotBody []byte
	var gotMethod, gotCT string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": 0.87}`))
	}))
	defer srv.Close()

	client := prediction.NewClient(srv.URL+"/predict", time.Second, zerolog.Nop())

	req := model.NewPredictionRequest(map[string]json.RawMessage{
		"goal":            json.RawMessage(`5000`),
		"campaign_length": json.RawMessage(`30`),
		"country":         json.RawMessage(`"US"`),
		"category":        json.RawMessage(`"Games"`),
		"sub_category":    json.RawMessage(`"Tabletop Games"`),
		"description":     json.RawMessage(`"A board game"`),
		"name":            json.RawMessage(`"ignored"`),
	})

	res, err := client.Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if gotMethod != http.MethodPost || gotCT != "application/json" {
		t.Errorf("unexpected request %s %s", gotMethod, gotCT)
	}

	var sent map[string]any
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("upstream body not JSON: %v", err)
	}
	want := map[string]any{
		"x1": float64(5000), "x2": float64(30), "x3": "US",
		"x4": "Games", "x5": "Tabletop Games", "x6": "A board game",
	}
	if len(sent) != len(want) {
		t.Fatalf("expected exactly %d keys, got %v", len(want), sent)
	}
	for k, v := range want {
		if sent[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, sent[k])
		}
	}

	if string(res.Body) != `{"results": 0.87}` {
		t.Errorf("body not verbatim: %s", res.Body)
	}
}

func TestPredictNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := prediction.NewClient(srv.URL, time.Second, zerolog.Nop())

	_, err := client.Predict(context.Background(), model.PredictionRequest{})

	var se *prediction.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
}

func TestPredictHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := prediction.NewClient(srv.URL, 0, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Predict(ctx, model.PredictionRequest{}); err == nil {
		t.Fatal("expected error once the context expires")
	}
}
