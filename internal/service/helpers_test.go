package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cafeDesk/internal/api/api"
	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
	"cafeDesk/internal/repo"
	"cafeDesk/internal/service"
	"cafeDesk/internal/session"
	"cafeDesk/internal/storage"
	"cafeDesk/pkg/validator"
)

const adminPassword = "espresso-shot"

// memRepo is an in-memory repo.Repository. Saves of configs and terms are
// applied under one lock, like the SQL transaction.
type memRepo struct {
	mu sync.Mutex

	regs     []model.Registration
	configs  []model.EventConfig
	terms    []model.TermsAgreement
	feedback []model.Feedback
	visits   []model.VisitorVisit

	createErr    error
	getErr       error
	deleteErr    error
	rejectDelete bool
	listErr      error
}

var _ repo.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo { return &memRepo{} }

func (m *memRepo) CreateRegistration(_ context.Context, reg *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	reg.ID = uuid.NewString()
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	m.regs = append(m.regs, *reg)
	return nil
}

func (m *memRepo) GetRegistrationByID(_ context.Context, id string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, r := range m.regs {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, repo.ErrRegistrationNotFound
}

func (m *memRepo) ListRegistrations(context.Context) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := append([]model.Registration(nil), m.regs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) DeleteRegistration(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if m.rejectDelete {
		return 0, nil
	}
	for i, r := range m.regs {
		if r.ID == id {
			m.regs = append(m.regs[:i], m.regs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memRepo) CountRegistrations(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regs), nil
}

func (m *memRepo) GetActiveEventConfig(context.Context) (*model.EventConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.configs {
		if c.IsActive {
			c := c
			return &c, nil
		}
	}
	return nil, repo.ErrEventConfigNotFound
}

func (m *memRepo) GetCurrentEventConfig(ctx context.Context) (*model.EventConfig, error) {
	if c, err := m.GetActiveEventConfig(ctx); err == nil {
		return c, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.configs) == 0 {
		return nil, repo.ErrEventConfigNotFound
	}
	latest := m.configs[0]
	for _, c := range m.configs[1:] {
		if c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}
	return &latest, nil
}

func (m *memRepo) SaveEventConfig(_ context.Context, cfg *model.EventConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.configs {
		m.configs[i].IsActive = false
	}
	cfg.IsActive = true
	cfg.UpdatedAt = time.Now()
	for i := range m.configs {
		if m.configs[i].ID == cfg.ID {
			m.configs[i] = *cfg
			return nil
		}
	}
	cfg.ID = uuid.NewString()
	m.configs = append(m.configs, *cfg)
	return nil
}

func (m *memRepo) activeConfigs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.configs {
		if c.IsActive {
			n++
		}
	}
	return n
}

func (m *memRepo) GetActiveTerms(context.Context) (*model.TermsAgreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.terms {
		if t.IsActive {
			t := t
			return &t, nil
		}
	}
	return nil, repo.ErrTermsNotFound
}

func (m *memRepo) ListTerms(context.Context) ([]model.TermsAgreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TermsAgreement, 0, len(m.terms))
	for i := len(m.terms) - 1; i >= 0; i-- {
		out = append(out, m.terms[i])
	}
	return out, nil
}

func (m *memRepo) SaveTerms(_ context.Context, terms *model.TermsAgreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.terms {
		m.terms[i].IsActive = false
	}
	terms.ID = uuid.NewString()
	terms.IsActive = true
	terms.CreatedAt = time.Now()
	terms.UpdatedAt = terms.CreatedAt
	m.terms = append(m.terms, *terms)
	return nil
}

func (m *memRepo) ListFeedback(context.Context) ([]model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Feedback(nil), m.feedback...), nil
}

func (m *memRepo) CountFeedback(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.feedback), nil
}

func (m *memRepo) CreateVisit(_ context.Context, v *model.VisitorVisit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = uuid.NewString()
	v.VisitTimestamp = time.Now()
	m.visits = append(m.visits, *v)
	return nil
}

func (m *memRepo) ListRecentVisits(_ context.Context, limit int) ([]model.VisitorVisit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.VisitorVisit, 0, limit)
	for i := len(m.visits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.visits[i])
	}
	return out, nil
}

func (m *memRepo) ListVisitedPages(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages := make([]string, 0, len(m.visits))
	for _, v := range m.visits {
		pages = append(pages, v.PageVisited)
	}
	return pages, nil
}

func (m *memRepo) CountVisits(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.visits {
		if !v.VisitTimestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (b *fakeBucket) Put(_ context.Context, object string, r io.Reader) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = make(map[string][]byte)
	}
	b.objects[object] = data
	return "http://localhost:8080/storage/payment-screenshots/" + object, nil
}

type published struct {
	msg   dto.RegistrationNoticeMessage
	delay int
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(message []byte, delaySeconds int) error {
	if p.err != nil {
		return p.err
	}
	var msg dto.RegistrationNoticeMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{msg: msg, delay: delaySeconds})
	return nil
}

type testEnv struct {
	repo    *memRepo
	bucket  *fakeBucket
	pub     *fakePublisher
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{bucket: &fakeBucket{}}
	env.init(t, env.bucket)
	return env
}

// newBucketEnv serves a real on-disk bucket through the router.
func newBucketEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	b, err := storage.NewBucket(t.TempDir(), "payment-screenshots", "", &log)
	require.NoError(t, err)

	env := &testEnv{}
	env.init(t, b, api.StaticDir{Route: b.RoutePath(), Dir: b.Dir()})
	return env
}

func (env *testEnv) init(t *testing.T, store service.ObjectStore, static ...api.StaticDir) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zerolog.Nop()
	env.repo = newMemRepo()
	env.pub = &fakePublisher{}
	sessions := session.NewRedisStore(client, time.Hour)

	svc := service.NewService(env.repo, &log, store, env.pub, sessions, service.Settings{
		AdminPasswordHash: adminPasswordHash(t),
		SessionTTL:        time.Hour,
		ReminderDelay:     24 * time.Hour,
	})
	env.handler = api.NewRouters(&api.Routers{Service: svc, Sessions: sessions, Log: &log, Static: static})
}

var (
	hashOnce   sync.Once
	hashedPass string
)

func adminPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		require.NoError(t, err)
		hashedPass = string(h)
	})
	return hashedPass
}

type apiError struct {
	Code   string                `json:"code"`
	Desc   string                `json:"desc"`
	Fields validator.FieldErrors `json:"fields"`
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
	Notices []dto.Notice    `json:"notices"`
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, jsonRequest(t, method, path, body), cookies...)
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.doJSON(t, http.MethodPost, "/v1/admin/login", dto.LoginRequest{Password: adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("payment_screenshot", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/registrations", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var errGateway = errors.New("connection to database lost")
