package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sungwon/newsletter/internal/auth"
	"github.com/sungwon/newsletter/internal/newsletter"
	"github.com/sungwon/newsletter/internal/storage"
)

type fakeService struct {
	publishFn func(ctx context.Context, req newsletter.PublishRequest) (*newsletter.PublishResult, error)
	listFn    func(ctx context.Context, req newsletter.PageRequest) (*newsletter.PageResult, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*newsletter.Record, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) (*newsletter.DeleteResult, error)
}

func (f *fakeService) Publish(ctx context.Context, req newsletter.PublishRequest) (*newsletter.PublishResult, error) {
	if f.publishFn == nil {
		return nil, errors.New("publish not configured")
	}
	return f.publishFn(ctx, req)
}

func (f *fakeService) List(ctx context.Context, req newsletter.PageRequest) (*newsletter.PageResult, error) {
	if f.listFn == nil {
		return nil, errors.New("list not configured")
	}
	return f.listFn(ctx, req)
}

func (f *fakeService) Get(ctx context.Context, id uuid.UUID) (*newsletter.Record, error) {
	if f.getFn == nil {
		return nil, errors.New("get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeService) Delete(ctx context.Context, id uuid.UUID) (*newsletter.DeleteResult, error) {
	if f.deleteFn == nil {
		return nil, errors.New("delete not configured")
	}
	return f.deleteFn(ctx, id)
}

type fakeRecipients struct {
	mu   sync.Mutex
	rows []storage.Recipient
	err  error
}

func (f *fakeRecipients) List(context.Context) ([]storage.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.Recipient{}, f.rows...), f.err
}

func (f *fakeRecipients) Create(_ context.Context, email string) (storage.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.Recipient{}, f.err
	}
	for _, r := range f.rows {
		if strings.EqualFold(r.Email, email) {
			return storage.Recipient{}, storage.ErrConflict
		}
	}
	r := storage.Recipient{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeRecipients) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeAdmins map[string]storage.Admin

func (f fakeAdmins) GetByLogin(_ context.Context, login string) (storage.Admin, error) {
	for _, a := range f {
		if a.Username == login || a.Email == login {
			return a, nil
		}
	}
	return storage.Admin{}, storage.ErrNotFound
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	router     http.Handler
	svc        *fakeService
	recipients *fakeRecipients
	admin      storage.Admin
	tokens     *auth.JWTService
	token      string
}

const testPassword = "correct-horse"

var testHash = func() string {
	h, err := auth.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
}()

func newTestEnv(t *testing.T, limiter *auth.RateLimiter) *testEnv {
	t.Helper()
	return newTestEnvWithLog(t, limiter, zerolog.Nop())
}

func newTestEnvWithLog(t *testing.T, limiter *auth.RateLimiter, log zerolog.Logger) *testEnv {
	t.Helper()
	tokens := auth.NewJWTService(auth.JWTConfig{SigningKey: "test-signing-key-of-sufficient-length", Issuer: "test"})
	admin := storage.Admin{ID: uuid.New(), Username: "admin", Email: "admin@example.com", PasswordHash: testHash, Role: auth.RoleAdmin}

	env := &testEnv{
		svc:        &fakeService{},
		recipients: &fakeRecipients{},
		admin:      admin,
		tokens:     tokens,
	}
	env.router = NewRouter(RouterConfig{
		Newsletters: env.svc,
		Recipients:  env.recipients,
		Admins:      fakeAdmins{"admin": admin},
		Tokens:      tokens,
		Verifier:    tokens,
		RateLimiter: limiter,
		DB:          fakePinger{},
		Log:         log,
		UploadsDir:  t.TempDir(),
	})

	token, _, err := tokens.Issue(auth.Principal{ID: admin.ID, Username: admin.Username, Email: admin.Email, Role: admin.Role})
	require.NoError(t, err)
	env.token = token
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+e.token)
	return req
}

// multipartBody builds a publish form. A nil image omits the file part.
func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}
