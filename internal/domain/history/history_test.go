package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/astrobsm/criticalcare/internal/engine"
	"github.com/astrobsm/criticalcare/internal/platform/auth"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

type mockRepo struct {
	store map[uuid.UUID]*Calculation
	err   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Calculation)}
}

func (m *mockRepo) Create(_ context.Context, c *Calculation) error {
	if m.err != nil {
		return m.err
	}
	m.store[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Calculation, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Calculation, int, error) {
	var matched []*Calculation
	for _, c := range m.store {
		if f.Calculator != "" && c.Calculator != f.Calculator {
			continue
		}
		if f.UserID != "" && c.UserID != f.UserID {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ComputedAt.After(matched[j].ComputedAt) })
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func userContext(user string, roles ...string) context.Context {
	ctx := context.WithValue(context.Background(), auth.UserIDKey, user)
	return context.WithValue(ctx, auth.UserRolesKey, roles)
}

func outcome(calc string, at time.Time) *engine.Outcome {
	return &engine.Outcome{ID: uuid.New(), Calculator: calc, ComputedAt: at, Result: result.New(calc)}
}

func TestService_Record(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	out := outcome("burns", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	err := svc.Record(userContext("dr-a", auth.RoleClinician), input.Record{"weight": 70}, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.Get(context.Background(), out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "dr-a" || got.Calculator != "burns" || !got.ComputedAt.Equal(out.ComputedAt) {
		t.Errorf("unexpected record %+v", got)
	}
	var in map[string]interface{}
	if err := json.Unmarshal(got.Input, &in); err != nil || in["weight"] != 70.0 {
		t.Errorf("input not stored verbatim: %s", got.Input)
	}
	var res result.Result
	if err := json.Unmarshal(got.Result, &res); err != nil || res.Calculator != "burns" {
		t.Errorf("result not stored: %s", got.Result)
	}
}

func TestService_RecordErrors(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Record(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil outcome")
	}

	repo := newMockRepo()
	repo.err = errors.New("connection refused")
	svc = NewService(repo)
	if err := svc.Record(context.Background(), nil, outcome("vte", time.Now())); err == nil {
		t.Error("expected repository error to surface")
	}
}

func TestService_SatisfiesRecorder(t *testing.T) {
	var _ engine.Recorder = NewService(newMockRepo())
}

func seed(t *testing.T, svc *Service) []*engine.Outcome {
	t.Helper()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var outs []*engine.Outcome
	for i, user := range []string{"dr-a", "dr-a", "dr-b"} {
		out := outcome("sepsis", base.Add(time.Duration(i)*time.Hour))
		if err := svc.Record(userContext(user), input.Record{}, out); err != nil {
			t.Fatal(err)
		}
		outs = append(outs, out)
	}
	return outs
}

func newRequest(ctx context.Context, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_ListCalculations(t *testing.T) {
	svc := NewService(newMockRepo())
	seed(t, svc)
	h := NewHandler(svc)

	tests := []struct {
		name  string
		ctx   context.Context
		query string
		total int
	}{
		{"clinician sees own", userContext("dr-a", auth.RoleClinician), "", 2},
		{"clinician cannot widen", userContext("dr-b", auth.RoleClinician), "?user=dr-a", 1},
		{"admin sees all", userContext("root", auth.RoleAdmin), "", 3},
		{"admin filters by user", userContext("root", auth.RoleAdmin), "?user=dr-a", 2},
		{"calculator filter", userContext("root", auth.RoleAdmin), "?calculator=burns", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRequest(tt.ctx, "/history"+tt.query)
			if err := h.ListCalculations(c); err != nil {
				t.Fatal(err)
			}
			var body struct {
				Data  []Calculation `json:"data"`
				Total int           `json:"total"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Total != tt.total || len(body.Data) != tt.total {
				t.Errorf("total = %d (%d rows), want %d", body.Total, len(body.Data), tt.total)
			}
		})
	}
}

func TestHandler_ListNewestFirstWithLinks(t *testing.T) {
	svc := NewService(newMockRepo())
	outs := seed(t, svc)
	h := NewHandler(svc)

	c, rec := newRequest(userContext("root", auth.RoleAdmin), "/history?limit=2")
	if err := h.ListCalculations(c); err != nil {
		t.Fatal(err)
	}
	var body struct {
		Data []Calculation `json:"data"`
		Next string        `json:"next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 2 || body.Data[0].ID != outs[2].ID {
		t.Errorf("expected newest first, got %+v", body.Data)
	}
	if body.Next != "/history?limit=2&offset=2" {
		t.Errorf("next = %q", body.Next)
	}
}

func TestHandler_GetCalculation(t *testing.T) {
	svc := NewService(newMockRepo())
	outs := seed(t, svc)
	h := NewHandler(svc)

	tests := []struct {
		name string
		ctx  context.Context
		id   string
		want int
	}{
		{"owner", userContext("dr-a", auth.RoleClinician), outs[0].ID.String(), http.StatusOK},
		{"admin", userContext("root", auth.RoleAdmin), outs[2].ID.String(), http.StatusOK},
		{"other user", userContext("dr-b", auth.RoleClinician), outs[0].ID.String(), http.StatusNotFound},
		{"missing", userContext("root", auth.RoleAdmin), uuid.New().String(), http.StatusNotFound},
		{"bad id", userContext("root", auth.RoleAdmin), "not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRequest(tt.ctx, "/history/"+tt.id)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			err := h.GetCalculation(c)
			code := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			} else if err != nil {
				t.Fatal(err)
			}
			if code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}
