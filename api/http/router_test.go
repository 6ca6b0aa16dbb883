package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/RegaWeng/riseUp/api/http"
	"github.com/RegaWeng/riseUp/api/http/handlers"
	"github.com/RegaWeng/riseUp/api/http/presenter"
	"github.com/RegaWeng/riseUp/pkg/auth"
	"github.com/RegaWeng/riseUp/pkg/catalog"
	"github.com/RegaWeng/riseUp/pkg/health"
	"github.com/RegaWeng/riseUp/pkg/kv"
	"github.com/RegaWeng/riseUp/pkg/role"
	"github.com/RegaWeng/riseUp/pkg/saved"
	"github.com/RegaWeng/riseUp/pkg/security/jwt"
)

const (
	testSecret = "test-secret"
	testIssuer = "riseup-test"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []auth.User
}

func (r *memoryUsers) Create(_ context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return auth.ErrUserAlreadyExists
		}
	}
	r.users = append(r.users, user)
	return nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrNotFound
}

func (r *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrNotFound
}

func (r *memoryUsers) DeleteByEmail(context.Context, ...string) (int64, error) { return 0, nil }

type testServer struct {
	app      *fiber.App
	users    *memoryUsers
	tokens   *jwt.Generator
	backend  *kv.Memory
	registry *saved.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := &memoryUsers{}
	tokens := jwt.NewGenerator(testSecret, testIssuer, time.Hour)
	backend := kv.NewMemory()
	cat := catalog.Default()
	registry := saved.NewRegistry(backend, cat, nil)
	t.Cleanup(func() { _ = registry.Close(context.Background()) })

	app := fiber.New()
	apihttp.Register(app,
		handlers.NewAuthHandler(auth.NewAuthService(users, tokens)),
		handlers.NewHealthHandler(health.NewService()),
		handlers.NewTrainingHandler(cat),
		handlers.NewSavedHandler(registry, cat, nil),
		jwt.NewAuthMiddleware(testSecret, testIssuer),
	)
	return &testServer{app: app, users: users, tokens: tokens, backend: backend, registry: registry}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// register creates an account through the API and returns its id and token.
func (s *testServer) register(t *testing.T, email string, accountType role.AccountType) (string, string) {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Test", "email": email, "password": "secret123", "type": string(accountType),
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var res struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	return res.User.ID, res.Token
}

// admin creates an admin account directly; admins cannot self-register.
func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	user, err := auth.NewUser("Admin User", "admin@riseup.com", "admin123", role.AccountAdmin)
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), user))
	token, err := s.tokens.Generate(context.Background(), user)
	require.NoError(t, err)
	return token
}

// flush waits until the account's queued state writes reach the backend.
func (s *testServer) flush(t *testing.T, accountID string) {
	t.Helper()
	m, release := s.registry.Acquire(accountID)
	defer release()
	require.NoError(t, m.Flush(context.Background()))
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	id, token := s.register(t, "alibaba@example.com", role.AccountUser)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "alibaba@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, status, string(body))

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "root@example.com", "password": "x", "type": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "hr@example.com", "password": "x", "type": "recruiter",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alibaba@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "Alibaba@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	me := decode[map[string]any](t, body)
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "user", me["type"])

	status, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRoleContextAuthorization(t *testing.T) {
	s := newTestServer(t)
	_, userToken := s.register(t, "alibaba@example.com", role.AccountUser)
	_, employerToken := s.register(t, "yourboss@company.com", role.AccountEmployer)
	adminToken := s.admin(t)

	cases := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"user in user context", userToken, "/api/v1/roles/user/state", http.StatusOK},
		{"user in employer context", userToken, "/api/v1/roles/employer/state", http.StatusForbidden},
		{"employer in employer context", employerToken, "/api/v1/roles/employer/state", http.StatusOK},
		{"employer in user context", employerToken, "/api/v1/roles/user/state", http.StatusForbidden},
		{"admin as user", adminToken, "/api/v1/roles/user/state", http.StatusOK},
		{"admin as employer", adminToken, "/api/v1/roles/employer/state", http.StatusOK},
		{"unknown role", adminToken, "/api/v1/roles/admin/state", http.StatusBadRequest},
		{"no token", "", "/api/v1/roles/user/state", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodGet, tc.path, tc.token, nil)
			assert.Equal(t, tc.status, status, string(body))
		})
	}
}

func TestSavedJobsEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alibaba@example.com", role.AccountUser)
	job := map[string]any{
		"id": "1", "title": "Test Job", "company": "Test Company", "location": "Test Location",
		"salary": "$15/hour", "skills": []string{"test skill"}, "savedDate": "2024-01-01",
	}

	for i := 0; i < 2; i++ {
		status, body := s.do(t, http.MethodPost, "/api/v1/roles/user/saved-jobs", token, job)
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body := s.do(t, http.MethodGet, "/api/v1/roles/user/saved-jobs", token, nil)
	require.Equal(t, http.StatusOK, status)
	jobs := decode[presenter.Page[saved.SavedJob]](t, body)
	require.Len(t, jobs.Items, 1, "duplicate save keeps one entry")
	assert.Equal(t, saved.KindJob, jobs.Items[0].Type)

	status, body = s.do(t, http.MethodGet, "/api/v1/roles/user/saved-jobs/1", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]any](t, body)["saved"])

	status, _ = s.do(t, http.MethodDelete, "/api/v1/roles/user/saved-jobs/1", token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/saved-jobs/1", token, nil)
	assert.Equal(t, false, decode[map[string]any](t, body)["saved"])

	status, _ = s.do(t, http.MethodPost, "/api/v1/roles/user/saved-jobs", token, map[string]any{"title": "no id"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSavedVideoFilledFromCatalog(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alibaba@example.com", role.AccountUser)

	status, body := s.do(t, http.MethodPost, "/api/v1/roles/user/saved-videos", token, map[string]any{"id": "3"})
	require.Equal(t, http.StatusCreated, status, string(body))
	video := decode[saved.SavedVideo](t, body)
	assert.Equal(t, "Safe Driving Tips", video.Title)
	assert.Equal(t, saved.KindVideo, video.Type)
	assert.NotEmpty(t, video.SavedDate)

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/items", token, nil)
	items := decode[presenter.Page[map[string]any]](t, body)
	require.Len(t, items.Items, 1)
	assert.Equal(t, "video", items.Items[0]["type"])
}

func TestCompletedVideosInCatalogOrder(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alibaba@example.com", role.AccountUser)

	for _, id := range []string{"2", "1", "2"} {
		status, _ := s.do(t, http.MethodPut, "/api/v1/roles/user/completed-videos/"+id, token, nil)
		require.Equal(t, http.StatusNoContent, status)
	}

	_, body := s.do(t, http.MethodGet, "/api/v1/roles/user/completed-videos", token, nil)
	videos := decode[presenter.Page[catalog.Video]](t, body)
	require.Len(t, videos.Items, 2)
	assert.Equal(t, "Customer Service Basics", videos.Items[0].Title)
	assert.Equal(t, "Cash Handling Safety", videos.Items[1].Title)

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/completed-videos/2", token, nil)
	assert.Equal(t, true, decode[map[string]any](t, body)["completed"])

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/progress", token, nil)
	progress := decode[saved.Progress](t, body)
	assert.Equal(t, 2, progress.CompletedCount)
	assert.Len(t, progress.Skills, 6)
}

func TestAppliedJobsAndPagination(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alibaba@example.com", role.AccountUser)

	for _, id := range []string{"a", "b", "c", "d"} {
		status, _ := s.do(t, http.MethodPut, "/api/v1/roles/user/applied-jobs/"+id, token, nil)
		require.Equal(t, http.StatusNoContent, status)
	}
	status, _ := s.do(t, http.MethodDelete, "/api/v1/roles/user/applied-jobs/b", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	_, body := s.do(t, http.MethodGet, "/api/v1/roles/user/applied-jobs/b", token, nil)
	assert.Equal(t, false, decode[map[string]any](t, body)["applied"])

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/applied-jobs?limit=2&offset=1", token, nil)
	ids := decode[presenter.Page[string]](t, body)
	assert.Equal(t, []string{"c", "d"}, ids.Items)
	assert.Equal(t, 3, ids.Total)

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/applied-jobs?offset=10", token, nil)
	ids = decode[presenter.Page[string]](t, body)
	assert.Empty(t, ids.Items)
	assert.NotNil(t, ids.Items)
}

func TestAdminViewModesDoNotLeak(t *testing.T) {
	s := newTestServer(t)
	token := s.admin(t)

	status, _ := s.do(t, http.MethodPut, "/api/v1/roles/user/applied-jobs/7", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	_, body := s.do(t, http.MethodGet, "/api/v1/roles/employer/applied-jobs/7", token, nil)
	assert.Equal(t, false, decode[map[string]any](t, body)["applied"])

	_, body = s.do(t, http.MethodGet, "/api/v1/roles/user/applied-jobs/7", token, nil)
	assert.Equal(t, true, decode[map[string]any](t, body)["applied"])
}

func TestClearState(t *testing.T) {
	s := newTestServer(t)
	id, token := s.register(t, "alibaba@example.com", role.AccountUser)

	s.do(t, http.MethodPost, "/api/v1/roles/user/saved-jobs", token, map[string]any{"id": "1"})
	s.flush(t, id)
	assert.Contains(t, s.backend.Keys(), id+":savedJobs_user")

	status, _ := s.do(t, http.MethodDelete, "/api/v1/roles/user/state", token, nil)
	require.Equal(t, http.StatusNoContent, status)
	s.flush(t, id)

	_, body := s.do(t, http.MethodGet, "/api/v1/roles/user/state", token, nil)
	snap := decode[saved.Snapshot](t, body)
	assert.Empty(t, snap.SavedJobs)
	assert.NotContains(t, s.backend.Keys(), id+":savedJobs_user")
}

func TestIdleStateEvictedAfterRequests(t *testing.T) {
	s := newTestServer(t)
	id, token := s.register(t, "alibaba@example.com", role.AccountUser)

	status, _ := s.do(t, http.MethodPut, "/api/v1/roles/user/applied-jobs/3", token, nil)
	require.Equal(t, http.StatusNoContent, status)
	s.flush(t, id)
	require.Equal(t, 1, s.registry.Len())

	require.Eventually(t, func() bool { return s.registry.Sweep(0) == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, s.registry.Len())

	// the next request reloads from the backend
	_, body := s.do(t, http.MethodGet, "/api/v1/roles/user/applied-jobs/3", token, nil)
	assert.Equal(t, true, decode[map[string]any](t, body)["applied"])
}

func TestTrainingCatalog(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/v1/training?limit=3", "", nil)
	require.Equal(t, http.StatusOK, status)
	videos := decode[presenter.Page[catalog.Video]](t, body)
	assert.Equal(t, 8, videos.Total)
	require.Len(t, videos.Items, 3)
	assert.Equal(t, "1", videos.Items[0].ID)

	status, body = s.do(t, http.MethodGet, "/api/v1/training/8", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Warehouse Organization", decode[catalog.Video](t, body).Title)

	status, _ = s.do(t, http.MethodGet, "/api/v1/training/99", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
