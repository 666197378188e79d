package agenda

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

var tracer = otel.Tracer("studio-scheduler/agenda")

var (
	ErrNotFound = errors.New("agenda: appointment not found")
	ErrPending  = errors.New("agenda: appointment not saved yet")
	ErrClosed   = errors.New("agenda: coordinator closed")
)

// Backend é o colaborador remoto. Todas as chamadas levam o tenant.
type Backend interface {
	List(ctx context.Context, t tenant.Context, from, to time.Time) ([]Appointment, error)
	Create(ctx context.Context, t tenant.Context, a Appointment) (Appointment, error)
	Update(ctx context.Context, t tenant.Context, a Appointment) (Appointment, error)
	Delete(ctx context.Context, t tenant.Context, id int64) error
	SetStatus(ctx context.Context, t tenant.Context, id int64, status domain.Status) (Appointment, error)
}

type Options struct {
	Logger *logrus.Logger
	// atraso da busca de reconciliação depois de uma escrita bem-sucedida
	ReconcileDelay time.Duration
	FetchTimeout   time.Duration
	// OnError recebe toda falha remota que o usuário precisa ver
	OnError func(op string, err error)
}

const (
	DefaultReconcileDelay = time.Second
	DefaultFetchTimeout   = 8 * time.Second
)

// Coordinator aplica cada escrita primeiro no Store e só depois chama o
// backend. Em falha restaura o estado anterior e força uma nova busca.
type Coordinator struct {
	store   *Store
	backend Backend
	tenant  tenant.Context
	opts    Options
	log     *logrus.Logger

	mu          sync.Mutex
	closed      bool
	from, to    time.Time
	fetchSeq    uint64
	fetchCancel context.CancelFunc
	timer       *time.Timer

	tempSeq atomic.Int64
	wg      sync.WaitGroup
}

func NewCoordinator(store *Store, backend Backend, t tenant.Context, opts Options) (*Coordinator, error) {
	if !t.Valid() {
		return nil, tenant.ErrMissing
	}
	if opts.ReconcileDelay <= 0 {
		opts.ReconcileDelay = DefaultReconcileDelay
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Coordinator{
		store:   store,
		backend: backend,
		tenant:  t,
		opts:    opts,
		log:     log,
	}, nil
}

func (c *Coordinator) Store() *Store {
	return c.store
}

// nextTempID gera ids negativos, que nunca colidem com ids persistidos.
func (c *Coordinator) nextTempID() int64 {
	return c.tempSeq.Add(-1)
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ======================================================
// FETCH
// ======================================================

// Fetch carrega [from, to) e passa a ser o intervalo reconciliado. Uma busca
// nova cancela a anterior; o resultado de uma busca vencida é descartado.
func (c *Coordinator) Fetch(ctx context.Context, from, to time.Time) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.from, c.to = from, to
	c.mu.Unlock()

	return c.fetch(ctx)
}

// Refresh repete a busca do intervalo atual.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

func (c *Coordinator) fetch(parent context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.fetchCancel != nil {
		c.fetchCancel()
	}
	ctx, cancel := context.WithTimeout(parent, c.opts.FetchTimeout)
	c.fetchSeq++
	seq := c.fetchSeq
	c.fetchCancel = cancel
	from, to := c.from, c.to
	c.mu.Unlock()

	defer cancel()

	ctx, span := tracer.Start(ctx, "agenda.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("studio.id", int64(c.tenant.StudioID)),
		attribute.String("range.from", from.Format(time.RFC3339)),
		attribute.String("range.to", to.Format(time.RFC3339)),
	)

	list, err := c.backend.List(ctx, c.tenant, from, to)

	c.mu.Lock()
	stale := c.closed || seq != c.fetchSeq
	if seq == c.fetchSeq {
		c.fetchCancel = nil
	}
	c.mu.Unlock()

	if stale {
		// substituída por outra busca ou desmontada; nada a aplicar
		return context.Canceled
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.LogError(c.log, "agenda", "fetch", "listar agendamentos", map[string]any{
			"studio_id": c.tenant.StudioID,
			"from":      from,
			"to":        to,
		}, err)
		c.notify("fetch", err)
		return err
	}

	visible := make([]Appointment, 0, len(list))
	for _, a := range list {
		if overlaps(a, from, to) {
			visible = append(visible, a)
		}
	}
	c.store.Reset(visible)
	return nil
}

// ======================================================
// RECONCILE
// ======================================================

// scheduleRefetch agrupa reconciliações: cada chamada reinicia o relógio.
func (c *Coordinator) scheduleRefetch(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.timer != nil && c.timer.Stop() {
		c.wg.Done()
	}
	c.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		defer c.wg.Done()

		c.mu.Lock()
		current := c.timer == t
		c.mu.Unlock()
		if !current {
			return
		}
		_ = c.fetch(context.Background())
	})
	c.timer = t
}

func (c *Coordinator) notify(op string, err error) {
	if c.opts.OnError != nil && !errors.Is(err, context.Canceled) {
		c.opts.OnError(op, err)
	}
}

// failed registra a falha remota e força a busca corretiva imediata.
func (c *Coordinator) failed(op string, id int64, err error) {
	logging.LogError(c.log, "agenda", op, "escrita rejeitada", map[string]any{
		"studio_id":      c.tenant.StudioID,
		"appointment_id": id,
	}, err)
	c.notify(op, err)
	c.scheduleRefetch(0)
}

// ======================================================
// MUTATIONS
// ======================================================

// Create valida, insere com id temporário e envia. No sucesso o id
// definitivo substitui o temporário no mesmo lugar.
func (c *Coordinator) Create(ctx context.Context, a Appointment) (Appointment, error) {
	d := Draft(a)
	if err := d.Validate(); err != nil {
		return Appointment{}, err
	}
	if c.isClosed() {
		return Appointment{}, ErrClosed
	}

	a.EndTime = d.End
	if a.Status == "" {
		a.Status = string(domain.InitialStatus())
	}
	tempID := c.nextTempID()
	a.ID = tempID
	c.store.Insert(a)

	saved, err := c.backend.Create(ctx, c.tenant, a)
	if err != nil {
		if !c.isClosed() {
			c.store.Remove(tempID)
			c.failed("create", tempID, err)
		}
		return Appointment{}, err
	}

	if !c.isClosed() {
		c.store.Replace(tempID, saved)
		c.scheduleRefetch(c.opts.ReconcileDelay)
	}
	return saved, nil
}

// Update substitui o registro no lugar antes de enviar.
func (c *Coordinator) Update(ctx context.Context, a Appointment) (Appointment, error) {
	if IsTemp(a.ID) {
		return Appointment{}, ErrPending
	}
	d := Draft(a)
	if err := d.Validate(); err != nil {
		return Appointment{}, err
	}
	a.EndTime = d.End

	return c.replace(ctx, "update", a.ID, func(Appointment) Appointment { return a },
		func(ctx context.Context) (Appointment, error) {
			return c.backend.Update(ctx, c.tenant, a)
		})
}

// SetStatus é um Update restrito ao status.
func (c *Coordinator) SetStatus(ctx context.Context, id int64, status domain.Status) (Appointment, error) {
	if IsTemp(id) {
		return Appointment{}, ErrPending
	}
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return Appointment{}, err
	}
	if cur, ok := c.store.Get(id); ok && status == domain.StatusBlocked && cur.ClientID != nil {
		return Appointment{}, domain.ValidationError{Field: "status", Code: "block_with_client"}
	}

	return c.replace(ctx, "status", id, func(cur Appointment) Appointment {
		cur.Status = string(status)
		return cur
	}, func(ctx context.Context) (Appointment, error) {
		return c.backend.SetStatus(ctx, c.tenant, id, status)
	})
}

func (c *Coordinator) replace(
	ctx context.Context,
	op string,
	id int64,
	next func(Appointment) Appointment,
	remote func(context.Context) (Appointment, error),
) (Appointment, error) {
	if c.isClosed() {
		return Appointment{}, ErrClosed
	}

	pre, ok := c.store.Get(id)
	if !ok {
		return Appointment{}, ErrNotFound
	}
	c.store.Replace(id, next(pre))

	saved, err := remote(ctx)
	if err != nil {
		if !c.isClosed() {
			c.store.Replace(id, pre)
			c.failed(op, id, err)
		}
		return Appointment{}, err
	}

	if !c.isClosed() {
		c.store.Replace(id, saved)
		c.scheduleRefetch(c.opts.ReconcileDelay)
	}
	return saved, nil
}

// Delete tira o registro da tela antes de enviar. Em falha ele volta para
// a mesma posição.
func (c *Coordinator) Delete(ctx context.Context, id int64) error {
	if IsTemp(id) {
		return ErrPending
	}
	if c.isClosed() {
		return ErrClosed
	}

	pre, idx, ok := c.store.Remove(id)
	if !ok {
		return ErrNotFound
	}

	if err := c.backend.Delete(ctx, c.tenant, id); err != nil {
		if !c.isClosed() {
			c.store.InsertAt(idx, pre)
			c.failed("delete", id, err)
		}
		return err
	}

	if !c.isClosed() {
		c.scheduleRefetch(c.opts.ReconcileDelay)
	}
	return nil
}

// Close é a desmontagem: cancela a busca em andamento, descarta a
// reconciliação pendente e ignora respostas que ainda cheguem.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.fetchCancel != nil {
		c.fetchCancel()
		c.fetchCancel = nil
	}
	if c.timer != nil && c.timer.Stop() {
		c.wg.Done()
	}
	c.timer = nil
	c.mu.Unlock()

	c.wg.Wait()
}
