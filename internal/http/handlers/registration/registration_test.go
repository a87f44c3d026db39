package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/compuse/compuse-api/internal/metrics"
	"github.com/compuse/compuse-api/internal/storage"
	"github.com/compuse/compuse-api/internal/types"
	"github.com/compuse/compuse-api/internal/validation"
)

// fakeStore is an in-memory storage.Storage for handler tests.
type fakeStore struct {
	mu         sync.Mutex
	regs       map[string]types.AuthorRegistration
	order      []string
	nextID     int
	failAll    error
	lastFilter types.RegistrationFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{regs: make(map[string]types.AuthorRegistration)}
}

func (f *fakeStore) CreateRegistration(_ context.Context, reg types.AuthorRegistration) (types.AuthorRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return types.AuthorRegistration{}, f.failAll
	}
	f.nextID++
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	reg.Status = types.StatusPending
	reg.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	reg.UpdatedAt = reg.CreatedAt
	f.regs[reg.ID] = reg
	f.order = append(f.order, reg.ID)
	return reg, nil
}

func (f *fakeStore) GetRegistrationByID(_ context.Context, id string) (types.AuthorRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return types.AuthorRegistration{}, f.failAll
	}
	reg, ok := f.regs[id]
	if !ok {
		return types.AuthorRegistration{}, storage.ErrNotFound
	}
	return reg, nil
}

func (f *fakeStore) ListRegistrations(_ context.Context, filter types.RegistrationFilter) ([]types.AuthorRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := make([]types.AuthorRegistration, 0)
	for i := len(f.order) - 1; i >= 0; i-- {
		if reg, ok := f.regs[f.order[i]]; ok {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateRegistrationStatus(_ context.Context, id string, status types.RegistrationStatus) (types.AuthorRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return types.AuthorRegistration{}, storage.ErrNotFound
	}
	reg.Status = status
	f.regs[id] = reg
	return reg, nil
}

func (f *fakeStore) DeleteRegistration(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.regs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.regs, id)
	return nil
}

func (f *fakeStore) Close() error { return nil }

type RegistrationHandlerSuite struct {
	suite.Suite
	store   *fakeStore
	metrics *metrics.Metrics
	router  chi.Router
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	s.store = newFakeStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	v := validation.New()

	r := chi.NewRouter()
	r.Post("/api/registrations", Create(s.store, v, s.metrics))
	r.Get("/api/registrations", List(s.store))
	r.Get("/api/registrations/{id}", GetByID(s.store))
	r.Patch("/api/registrations/{id}/status", UpdateStatus(s.store, v))
	r.Delete("/api/registrations/{id}", Delete(s.store))
	s.router = r
}

func (s *RegistrationHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"work_title": "Samba do Cais",
	"author_name": "Maria Souza",
	"email": "maria@example.com",
	"cpf": "52998224725"
}`

func (s *RegistrationHandlerSuite) TestCreate() {
	s.Run("valid registration is stored and rendered formatted", func() {
		rec := s.do(http.MethodPost, "/api/registrations", validBody)
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		var got types.AuthorRegistration
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.NotEmpty(got.ID)
		s.Equal("529.982.247-25", got.CPF)
		s.Equal(types.StatusPending, got.Status)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RegistrationsCreated))
	})

	s.Run("invalid cpf is rejected on the server", func() {
		body := strings.Replace(validBody, "52998224725", "52998224724", 1)
		rec := s.do(http.MethodPost, "/api/registrations", body)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.JSONEq(`{"status":"error","error":"field cpf must be a valid CPF"}`, rec.Body.String())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RegistrationsRejected.WithLabelValues(metrics.ReasonInvalidCPF)))
	})

	s.Run("repdigit cpf is rejected", func() {
		body := strings.Replace(validBody, "52998224725", "111.111.111-11", 1)
		rec := s.do(http.MethodPost, "/api/registrations", body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing fields are listed", func() {
		rec := s.do(http.MethodPost, "/api/registrations", `{"cpf":"52998224725"}`)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "field work_title is required")
		s.Contains(rec.Body.String(), "field author_name is required")
		s.Contains(rec.Body.String(), "field email is required")
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RegistrationsRejected.WithLabelValues(metrics.ReasonValidation)))
	})

	s.Run("empty body", func() {
		rec := s.do(http.MethodPost, "/api/registrations", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.JSONEq(`{"status":"error","error":"request body is empty"}`, rec.Body.String())
	})

	s.Run("storage failure", func() {
		s.store.failAll = errors.New("disk full")
		defer func() { s.store.failAll = nil }()

		rec := s.do(http.MethodPost, "/api/registrations", validBody)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.JSONEq(`{"status":"error","error":"disk full"}`, rec.Body.String())
	})
}

func (s *RegistrationHandlerSuite) TestGetByID() {
	rec := s.do(http.MethodPost, "/api/registrations", validBody)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created types.AuthorRegistration
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	rec = s.do(http.MethodGet, "/api/registrations/"+created.ID, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var got types.AuthorRegistration
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(created.ID, got.ID)
	s.Equal("529.982.247-25", got.CPF)

	rec = s.do(http.MethodGet, "/api/registrations/unknown", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RegistrationHandlerSuite) TestList() {
	s.Run("empty list is an array", func() {
		rec := s.do(http.MethodGet, "/api/registrations", "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[]`, rec.Body.String())
	})

	s.do(http.MethodPost, "/api/registrations", validBody)
	s.do(http.MethodPost, "/api/registrations", strings.Replace(validBody, "52998224725", "11144477735", 1))

	s.Run("filters are passed through", func() {
		rec := s.do(http.MethodGet, "/api/registrations?status=pending&cpf=529.982.247-25", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(types.StatusPending, s.store.lastFilter.Status)
		s.Equal("529.982.247-25", s.store.lastFilter.CPF)
	})

	s.Run("newest first, formatted", func() {
		rec := s.do(http.MethodGet, "/api/registrations", "")
		s.Require().Equal(http.StatusOK, rec.Code)

		var got []types.AuthorRegistration
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Require().Len(got, 2)
		s.Equal("111.444.777-35", got[0].CPF)
		s.Equal("529.982.247-25", got[1].CPF)
	})

	s.Run("unknown status filter", func() {
		rec := s.do(http.MethodGet, "/api/registrations?status=archived", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RegistrationHandlerSuite) TestUpdateStatus() {
	rec := s.do(http.MethodPost, "/api/registrations", validBody)
	var created types.AuthorRegistration
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	rec = s.do(http.MethodPatch, "/api/registrations/"+created.ID+"/status", `{"status":"approved"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var updated types.AuthorRegistration
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal(types.StatusApproved, updated.Status)

	rec = s.do(http.MethodPatch, "/api/registrations/"+created.ID+"/status", `{"status":"archived"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"status":"error","error":"field status must be one of: pending approved rejected"}`, rec.Body.String())

	rec = s.do(http.MethodPatch, "/api/registrations/unknown/status", `{"status":"approved"}`)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RegistrationHandlerSuite) TestDelete() {
	rec := s.do(http.MethodPost, "/api/registrations", validBody)
	var created types.AuthorRegistration
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	rec = s.do(http.MethodDelete, "/api/registrations/"+created.ID, "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"deleted"}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/registrations/"+created.ID, "")
	s.Equal(http.StatusNotFound, rec.Code)
}
