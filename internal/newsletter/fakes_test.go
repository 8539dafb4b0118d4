package newsletter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/mail"
	"github.com/sungwon/newsletter/internal/storage"
)

var errBoom = errors.New("boom")

// memRepo is an in-memory Repository with strictly increasing timestamps.
type memRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]storage.Newsletter
	clock     time.Time
	createErr error
	listErr   error
	deleteErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:  map[uuid.UUID]storage.Newsletter{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) Create(_ context.Context, arg storage.CreateNewsletterParams) (storage.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return storage.Newsletter{}, r.createErr
	}
	r.clock = r.clock.Add(time.Second)
	n := storage.Newsletter{
		ID:          uuid.New(),
		Subject:     arg.Subject,
		Description: arg.Description,
		ImageURL:    arg.ImageURL,
		CreatedAt:   r.clock,
		UpdatedAt:   r.clock,
	}
	r.rows[n.ID] = n
	return n, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]storage.Newsletter, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	all := make([]storage.Newsletter, 0, len(r.rows))
	for _, n := range r.rows {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []storage.Newsletter{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (storage.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return storage.Newsletter{}, fmt.Errorf("get: %w", storage.ErrNotFound)
	}
	return n, nil
}

func (r *memRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("delete: %w", storage.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// memAssets hands out URLs under https://cdn.test/<folder>/<n>.png.
type memAssets struct {
	mu        sync.Mutex
	seq       int
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newMemAssets() *memAssets {
	return &memAssets{uploads: map[string][]byte{}}
}

func (a *memAssets) Upload(_ context.Context, data []byte, folder string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.seq++
	url := fmt.Sprintf("https://cdn.test/%s/asset%d.png", folder, a.seq)
	a.uploads[url] = data
	return url, nil
}

func (a *memAssets) Delete(_ context.Context, derivedID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, derivedID)
	return a.deleteErr
}

func (a *memAssets) deletedIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.deleted...)
}

type staticDirectory struct {
	addrs []string
	err   error
	calls int
}

func (d *staticDirectory) ListAddresses(context.Context) ([]string, error) {
	d.calls++
	return d.addrs, d.err
}

// recordingTransport records every message and fails for configured addresses.
type recordingTransport struct {
	mu   sync.Mutex
	sent []*mail.Message
	fail map[string]error
}

func (t *recordingTransport) Name() string { return "recording" }

func (t *recordingTransport) Send(_ context.Context, msg *mail.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, msg)
	return t.fail[msg.To]
}

func (t *recordingTransport) sendsTo(addr string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, m := range t.sent {
		if m.To == addr {
			n++
		}
	}
	return n
}
