package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	leadstransport "crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memStore struct {
	mu      sync.Mutex
	tokens  map[uuid.UUID]APIToken
	touched []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{tokens: map[uuid.UUID]APIToken{}}
}

func (m *memStore) CreateToken(_ context.Context, token APIToken) (APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.ID] = token
	return token, nil
}

func (m *memStore) GetActiveToken(_ context.Context, id uuid.UUID) (APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok || token.RevokedAt != nil {
		return APIToken{}, ErrTokenNotFound
	}
	return token, nil
}

func (m *memStore) ListTokens(_ context.Context, companyID uuid.UUID) ([]APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]APIToken, 0)
	for _, t := range m.tokens {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) RevokeToken(_ context.Context, companyID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok || token.CompanyID != companyID || token.RevokedAt != nil {
		return ErrTokenNotFound
	}
	now := token.CreatedAt
	token.RevokedAt = &now
	m.tokens[id] = token
	return nil
}

func (m *memStore) TouchToken(_ context.Context, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
}

// stubIntaker reports the second submission of a first name as duplicate.
type stubIntaker struct {
	seen      map[string]uuid.UUID
	companyID uuid.UUID
	tokenName string
}

func (s *stubIntaker) Intake(_ context.Context, companyID uuid.UUID, tokenName string, req leadstransport.IntakeLeadRequest) (leadstransport.LeadResponse, bool, error) {
	s.companyID, s.tokenName = companyID, tokenName
	if id, ok := s.seen[req.FirstName]; ok {
		return leadstransport.LeadResponse{ID: id, FirstName: req.FirstName}, true, nil
	}
	id := uuid.New()
	s.seen[req.FirstName] = id
	return leadstransport.LeadResponse{ID: id, FirstName: req.FirstName}, false, nil
}

type testEnv struct {
	engine   *gin.Engine
	store    *memStore
	intaker  *stubIntaker
	tenantID uuid.UUID
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		store:    newMemStore(),
		intaker:  &stubIntaker{seen: map[string]uuid.UUID{}},
		tenantID: uuid.New(),
	}
	log := logger.NewWithWriter("test", io.Discard)
	h := NewHandler(env.store, env.intaker, validator.New(), log)

	env.engine = gin.New()
	admin := env.engine.Group("/admin", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextTenantIDKey, env.tenantID)
		c.Next()
	})
	admin.POST("/api-tokens", h.CreateToken)
	admin.GET("/api-tokens", h.ListTokens)
	admin.DELETE("/api-tokens/:id", h.RevokeToken)
	env.engine.POST("/public/leads", TokenAuthMiddleware(env.store, log), h.SubmitLead)
	return env
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(HeaderAPIToken, token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) issueToken(t *testing.T) CreateTokenResponse {
	t.Helper()
	rec := e.do(http.MethodPost, "/admin/api-tokens", "", gin.H{"name": "Website form"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create token status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp CreateTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestSubmitLeadCreatesThenFlagsDuplicate(t *testing.T) {
	env := newTestEnv()
	token := env.issueToken(t)
	body := gin.H{"funnelId": uuid.NewString(), "firstName": "Maria"}

	rec := env.do(http.MethodPost, "/public/leads", token.Token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if env.intaker.companyID != env.tenantID || env.intaker.tokenName != "Website form" {
		t.Fatalf("intake called with company %v token %q", env.intaker.companyID, env.intaker.tokenName)
	}

	rec = env.do(http.MethodPost, "/public/leads", token.Token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("second submit status = %d", rec.Code)
	}
	var resp leadstransport.IntakeLeadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Duplicate {
		t.Fatal("expected duplicate flag")
	}
	if len(env.store.touched) != 2 {
		t.Fatalf("token touched %d times, want 2", len(env.store.touched))
	}
}

func TestSubmitLeadRejectsBadTokens(t *testing.T) {
	env := newTestEnv()
	token := env.issueToken(t)
	body := gin.H{"funnelId": uuid.NewString(), "firstName": "Maria"}

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "nope"},
		{"wrong secret", "crm_" + token.ID.String() + ".deadbeef"},
		{"unknown id", "crm_" + uuid.NewString() + ".deadbeef"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := env.do(http.MethodPost, "/public/leads", tc.token, body); rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRevokedTokenStopsWorking(t *testing.T) {
	env := newTestEnv()
	token := env.issueToken(t)

	if rec := env.do(http.MethodDelete, "/admin/api-tokens/"+token.ID.String(), "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("revoke status = %d", rec.Code)
	}
	rec := env.do(http.MethodPost, "/public/leads", token.Token, gin.H{"funnelId": uuid.NewString(), "firstName": "Maria"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSubmitLeadValidatesBody(t *testing.T) {
	env := newTestEnv()
	token := env.issueToken(t)

	rec := env.do(http.MethodPost, "/public/leads", token.Token, gin.H{"firstName": "Maria"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListTokensHidesSecrets(t *testing.T) {
	env := newTestEnv()
	token := env.issueToken(t)

	rec := env.do(http.MethodGet, "/admin/api-tokens", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(token.Token)) {
		t.Fatal("listing leaked the plaintext token")
	}
}
