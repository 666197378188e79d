package audit

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
)

type Event struct {
	StudioID uint
	UserID   *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Sink é quem efetivamente persiste o evento.
type Sink interface {
	Log(ctx context.Context, ev Event) error
}

// Dispatcher grava auditoria fora do caminho da requisição. Com a fila
// cheia o evento é descartado: auditoria nunca quebra a API.
type Dispatcher struct {
	sink  Sink
	log   *logrus.Logger
	queue chan Event

	once sync.Once
	done chan struct{}
}

func NewDispatcher(sink Sink, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logging.Discard()
	}
	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, 100), // buffer seguro
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.sink.Log(context.Background(), ev); err != nil {
			logging.LogError(d.log, "audit", "worker", "gravar evento", map[string]any{
				"studio_id": ev.StudioID,
				"action":    ev.Action,
			}, err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		d.log.WithField("action", ev.Action).Warn("audit queue full, dropping event")
	}
}

// Close esvazia a fila e espera o worker terminar.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	<-d.done
}
