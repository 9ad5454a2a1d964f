package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/prediction"
	"github.com/unclebandit/kickstarter-backend/internal/queue"
	"github.com/unclebandit/kickstarter-backend/internal/service"
	"github.com/unclebandit/kickstarter-backend/internal/testutil"
)

func newService(repo *testutil.MockCampaignRepo, predictor *testutil.MockPredictor, q queue.Queue) *service.CampaignService {
	return &service.CampaignService{
		CampaignRepo: repo,
		Predictor:    predictor,
		Queue:        q,
		Logger:       zerolog.Nop(),
	}
}

func TestCreateCampaignUsesPathUser(t *testing.T) {
	repo := testutil.NewMockCampaignRepo()
	svc := newService(repo, &testutil.MockPredictor{}, nil)

	goal, length := 100.0, 30
	c, err := svc.CreateCampaign(context.Background(), 5, model.CampaignInput{
		Goal: &goal, CampaignLength: &length, Country: "US", Category: "Art",
		SubCategory: "Painting", Description: "Paint",
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if c.UserID != 5 || c.ID == 0 || repo.AddCalls != 1 {
		t.Errorf("unexpected campaign %+v (add calls %d)", c, repo.AddCalls)
	}
}

func TestUpdateCampaignMissingSkipsUpdate(t *testing.T) {
	repo := testutil.NewMockCampaignRepo()
	svc := newService(repo, &testutil.MockPredictor{}, nil)

	_, err := svc.UpdateCampaign(context.Background(), 5, 42, model.CampaignChanges{Description: testutil.StrPtr("x")})

	var nf *appErrors.ErrCampaignNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.UpdateCalls != 0 {
		t.Errorf("Update must not run when the lookup finds nothing")
	}
}

func TestUpdateCampaignOtherOwnerIsNotFound(t *testing.T) {
	repo := testutil.NewMockCampaignRepo(testutil.Campaign(7, 9))
	svc := newService(repo, &testutil.MockPredictor{}, nil)

	_, err := svc.UpdateCampaign(context.Background(), 5, 7, model.CampaignChanges{Description: testutil.StrPtr("x")})

	var nf *appErrors.ErrCampaignNotFound
	if !errors.As(err, &nf) || repo.UpdateCalls != 0 {
		t.Fatalf("expected not found without update, got %v (updates %d)", err, repo.UpdateCalls)
	}
}

func TestUpdateCampaignReturnsStoredCampaign(t *testing.T) {
	repo := testutil.NewMockCampaignRepo(testutil.Campaign(7, 5))
	svc := newService(repo, &testutil.MockPredictor{}, nil)

	updated, err := svc.UpdateCampaign(context.Background(), 5, 7, model.CampaignChanges{Description: testutil.StrPtr("new")})
	if err != nil {
		t.Fatalf("UpdateCampaign: %v", err)
	}
	if updated.ID != 7 || updated.Description != "new" {
		t.Errorf("unexpected campaign %+v", updated)
	}
}

func TestDeleteCampaignReturnsRemaining(t *testing.T) {
	repo := testutil.NewMockCampaignRepo(testutil.Campaign(1, 5), testutil.Campaign(2, 5), testutil.Campaign(3, 6))
	svc := newService(repo, &testutil.MockPredictor{}, nil)

	left, err := svc.DeleteCampaign(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
	if len(left) != 1 || left[0].ID != 2 {
		t.Errorf("expected only campaign 2 left, got %+v", left)
	}
}

func TestDeleteCampaignLookupErrorSkipsRemove(t *testing.T) {
	repo := testutil.NewMockCampaignRepo(testutil.Campaign(1, 5))
	repo.Err = errors.New("db down")
	svc := newService(repo, &testutil.MockPredictor{}, nil)

	if _, err := svc.DeleteCampaign(context.Background(), 5, 1); err == nil {
		t.Fatal("expected error")
	}
	if repo.RemoveCalls != 0 {
		t.Errorf("Remove must not run when the lookup fails")
	}
}

func TestPredictCampaignForwardsBodyFeatures(t *testing.T) {
	repo := testutil.NewMockCampaignRepo(testutil.Campaign(1, 5))
	predictor := &testutil.MockPredictor{Result: &prediction.Result{StatusCode: 200, Body: []byte(`{"ok":true}`)}}
	svc := newService(repo, predictor, nil)

	features := model.PredictionRequest{X1: json.RawMessage(`"999"`)}
	res, err := svc.PredictCampaign(context.Background(), 5, 1, features)
	if err != nil {
		t.Fatalf("PredictCampaign: %v", err)
	}
	if string(res.Body) != `{"ok":true}` {
		t.Errorf("unexpected result %s", res.Body)
	}
	if string(predictor.Last.X1) != `"999"` {
		t.Errorf("expected body features, got %s", predictor.Last.X1)
	}
}

func TestPredictCampaignMissingSkipsPredictor(t *testing.T) {
	predictor := &testutil.MockPredictor{}
	svc := newService(testutil.NewMockCampaignRepo(), predictor, nil)

	if _, err := svc.PredictCampaign(context.Background(), 5, 1, model.PredictionRequest{}); err == nil {
		t.Fatal("expected not found")
	}
	if predictor.Calls != 0 {
		t.Errorf("predictor must not be called, got %d calls", predictor.Calls)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	q := queue.NewInMemoryQueue(zerolog.Nop())
	q.Backoff = func(int) time.Duration { return 0 }

	events := make(chan queue.Event, 3)
	q.Subscribe(queue.CampaignEventsTopic, func(body []byte) error {
		ev, err := queue.DecodeEvent(body)
		if err == nil {
			events <- ev
		}
		return err
	})

	repo := testutil.NewMockCampaignRepo()
	svc := newService(repo, &testutil.MockPredictor{}, q)
	ctx := context.Background()

	goal, length := 10.0, 5
	c, err := svc.CreateCampaign(ctx, 5, model.CampaignInput{Goal: &goal, CampaignLength: &length,
		Country: "US", Category: "Art", SubCategory: "Painting", Description: "d"})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if _, err := svc.UpdateCampaign(ctx, 5, c.ID, model.CampaignChanges{}); err != nil {
		t.Fatalf("UpdateCampaign: %v", err)
	}
	if _, err := svc.DeleteCampaign(ctx, 5, c.ID); err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
	q.Wait()
	close(events)

	seen := map[queue.EventType]int{}
	for ev := range events {
		if ev.CampaignID != c.ID || ev.UserID != 5 {
			t.Errorf("unexpected event %+v", ev)
		}
		seen[ev.Type]++
	}
	for _, want := range []queue.EventType{queue.CampaignCreated, queue.CampaignUpdated, queue.CampaignDeleted} {
		if seen[want] != 1 {
			t.Errorf("expected one %s event, got %d", want, seen[want])
		}
	}
}

type failingQueue struct{}

func (failingQueue) Publish(context.Context, string, []byte) error { return errors.New("broker down") }
func (failingQueue) Subscribe(string, func([]byte) error) error   { return nil }

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	svc := newService(testutil.NewMockCampaignRepo(), &testutil.MockPredictor{}, failingQueue{})

	goal, length := 10.0, 5
	_, err := svc.CreateCampaign(context.Background(), 5, model.CampaignInput{Goal: &goal, CampaignLength: &length,
		Country: "US", Category: "Art", SubCategory: "Painting", Description: "d"})
	if err != nil {
		t.Fatalf("publish failure leaked into CreateCampaign: %v", err)
	}
}
