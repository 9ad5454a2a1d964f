package service_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/unclebandit/kickstarter-backend/internal/prediction"
	"github.com/unclebandit/kickstarter-backend/internal/queue"
	"github.com/unclebandit/kickstarter-backend/internal/service"
	"github.com/unclebandit/kickstarter-backend/internal/testutil"
)

func encode(t *testing.T, ev queue.Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestWorkerStoresPredictionForCreatedCampaign(t *testing.T) {
	campaigns := testutil.NewMockCampaignRepo(testutil.Campaign(1, 5))
	predictions := &testutil.MockPredictionRepo{}
	predictor := &testutil.MockPredictor{Result: &prediction.Result{StatusCode: 200, Body: []byte(`{"results":1}`)}}

	w := service.NewPredictionWorker(campaigns, predictions, predictor, zerolog.Nop())

	if err := w.Handle(encode(t, queue.NewEvent(queue.CampaignCreated, 1, 5))); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(predictions.Saved) != 1 {
		t.Fatalf("expected one stored prediction, got %d", len(predictions.Saved))
	}
	p := predictions.Saved[0]
	if p.CampaignID != 1 || string(p.Response) != `{"results":1}` {
		t.Errorf("unexpected prediction %+v", p)
	}

	var sent map[string]any
	if err := json.Unmarshal(p.Request, &sent); err != nil {
		t.Fatalf("request not JSON: %v", err)
	}
	if sent["x1"] != float64(5000) || sent["x3"] != "US" || sent["x6"] != "A board game" {
		t.Errorf("features not taken from stored campaign: %v", sent)
	}
}

func TestWorkerNonJSONResponseStoredAsString(t *testing.T) {
	predictions := &testutil.MockPredictionRepo{}
	predictor := &testutil.MockPredictor{Result: &prediction.Result{StatusCode: 200, Body: []byte("success")}}
	w := service.NewPredictionWorker(testutil.NewMockCampaignRepo(testutil.Campaign(1, 5)), predictions, predictor, zerolog.Nop())

	if err := w.Handle(encode(t, queue.NewEvent(queue.CampaignUpdated, 1, 5))); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if string(predictions.Saved[0].Response) != `"success"` {
		t.Errorf("unexpected stored response %s", predictions.Saved[0].Response)
	}
}

func TestWorkerSkipsDeletedAndMissing(t *testing.T) {
	predictor := &testutil.MockPredictor{}
	w := service.NewPredictionWorker(testutil.NewMockCampaignRepo(), &testutil.MockPredictionRepo{}, predictor, zerolog.Nop())

	if err := w.Handle(encode(t, queue.NewEvent(queue.CampaignDeleted, 1, 5))); err != nil {
		t.Errorf("deleted event: %v", err)
	}
	if err := w.Handle(encode(t, queue.NewEvent(queue.CampaignCreated, 1, 5))); err != nil {
		t.Errorf("missing campaign: %v", err)
	}
	if err := w.Handle([]byte("not json")); err != nil {
		t.Errorf("malformed event: %v", err)
	}
	if predictor.Calls != 0 {
		t.Errorf("predictor should not run, got %d calls", predictor.Calls)
	}
}

func TestWorkerPredictorFailureIsRetryable(t *testing.T) {
	predictor := &testutil.MockPredictor{Err: errors.New("upstream 503")}
	predictions := &testutil.MockPredictionRepo{}
	w := service.NewPredictionWorker(testutil.NewMockCampaignRepo(testutil.Campaign(1, 5)), predictions, predictor, zerolog.Nop())

	if err := w.Handle(encode(t, queue.NewEvent(queue.CampaignCreated, 1, 5))); err == nil {
		t.Fatal("expected error so the queue retries")
	}
	if len(predictions.Saved) != 0 {
		t.Errorf("nothing should be stored on failure")
	}
}
