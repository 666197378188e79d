package agenda

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

var errRemote = errors.New("remote write rejected")

// fakeBackend guarda os registros "persistidos" e permite travar ou
// falhar chamadas específicas.
type fakeBackend struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Appointment

	failCreate, failUpdate, failDelete, failList bool

	lists      int
	listGate   chan struct{}
	lastTenant tenant.Context
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100, rows: map[int64]Appointment{}}
}

func (f *fakeBackend) seed(a Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[a.ID] = a
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeBackend) List(ctx context.Context, t tenant.Context, from, to time.Time) ([]Appointment, error) {
	f.mu.Lock()
	f.lists++
	f.lastTenant = t
	gate := f.listGate
	fail := f.failList
	out := make([]Appointment, 0, len(f.rows))
	for _, a := range f.rows {
		out = append(out, a)
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errRemote
	}
	return out, nil
}

func (f *fakeBackend) Create(_ context.Context, _ tenant.Context, a Appointment) (Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return Appointment{}, errRemote
	}
	f.nextID++
	a.ID = f.nextID
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeBackend) Update(_ context.Context, _ tenant.Context, a Appointment) (Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return Appointment{}, errRemote
	}
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeBackend) Delete(_ context.Context, _ tenant.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errRemote
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBackend) SetStatus(_ context.Context, _ tenant.Context, id int64, status domain.Status) (Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return Appointment{}, errRemote
	}
	a := f.rows[id]
	a.Status = string(status)
	f.rows[id] = a
	return a, nil
}
