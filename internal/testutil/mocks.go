// Package testutil holds in-memory stand-ins for the stores and the
// prediction service, plus token helpers, for handler and service tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/prediction"
)

// MockCampaignRepo keeps campaigns in memory and counts calls. Err, when
// set, is returned by every method.
type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int

	Err error

	FindByIDCalls     int
	FindByUserIDCalls int
	AddCalls          int
	UpdateCalls       int
	RemoveCalls       int

	LastAdded   model.Campaign
	LastChanges model.CampaignChanges
}

func NewMockCampaignRepo(seed ...model.Campaign) *MockCampaignRepo {
	m := &MockCampaignRepo{campaigns: map[int]*model.Campaign{}, nextID: 100}
	for i := range seed {
		c := seed[i]
		m.campaigns[c.ID] = &c
	}
	return m
}

// Calls is the total number of store calls made.
func (m *MockCampaignRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FindByIDCalls + m.FindByUserIDCalls + m.AddCalls + m.UpdateCalls + m.RemoveCalls
}

func (m *MockCampaignRepo) FindByID(ctx context.Context, id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByIDCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) FindByUserID(ctx context.Context, userID int) ([]model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByUserIDCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := []model.Campaign{}
	for _, c := range m.campaigns {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCampaignRepo) Add(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	m.LastAdded = *c
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) Update(ctx context.Context, id int, changes model.CampaignChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	m.LastChanges = changes
	if m.Err != nil {
		return m.Err
	}
	c, ok := m.campaigns[id]
	if !ok {
		return nil
	}
	if changes.Name != nil {
		c.Name = *changes.Name
	}
	if changes.Goal != nil {
		c.Goal = *changes.Goal
	}
	if changes.CampaignLength != nil {
		c.CampaignLength = *changes.CampaignLength
	}
	if changes.Country != nil {
		c.Country = *changes.Country
	}
	if changes.Category != nil {
		c.Category = *changes.Category
	}
	if changes.SubCategory != nil {
		c.SubCategory = *changes.SubCategory
	}
	if changes.Description != nil {
		c.Description = *changes.Description
	}
	return nil
}

func (m *MockCampaignRepo) Remove(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls++
	if m.Err != nil {
		return m.Err
	}
	delete(m.campaigns, id)
	return nil
}

// MockUserRepo serves a fixed user list.
type MockUserRepo struct {
	mu    sync.Mutex
	Users []model.User
	Err   error

	FindCalls   int
	RemoveCalls int
	RemovedID   int
}

func (m *MockUserRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FindCalls + m.RemoveCalls
}

func (m *MockUserRepo) Find(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.User{}, m.Users...), nil
}

func (m *MockUserRepo) Remove(ctx context.Context, id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls++
	m.RemovedID = id
	if m.Err != nil {
		return nil, m.Err
	}
	for i, u := range m.Users {
		if u.ID == id {
			m.Users = append(m.Users[:i], m.Users[i+1:]...)
			return &u, nil
		}
	}
	return nil, nil
}

// MockPredictor records what it was asked to score.
type MockPredictor struct {
	mu     sync.Mutex
	Result *prediction.Result
	Err    error

	Calls int
	Last  model.PredictionRequest
}

func (m *MockPredictor) Predict(ctx context.Context, req model.PredictionRequest) (*prediction.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Last = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

type MockPredictionRepo struct {
	mu    sync.Mutex
	Saved []model.Prediction
	Err   error
}

func (m *MockPredictionRepo) Save(ctx context.Context, p *model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p.ID = len(m.Saved) + 1
	m.Saved = append(m.Saved, *p)
	return nil
}

// Campaign returns a complete campaign owned by userID.
func Campaign(id, userID int) model.Campaign {
	return model.Campaign{
		ID:             id,
		UserID:         userID,
		Name:           "Board game",
		Goal:           5000,
		CampaignLength: 30,
		Country:        "US",
		Category:       "Games",
		SubCategory:    "Tabletop Games",
		Description:    "A board game",
	}
}

// Token signs an HS256 token for subject that expires in an hour.
func Token(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func StrPtr(s string) *string { return &s }
