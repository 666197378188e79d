// Package maintenance roda as rotinas agendadas da API.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
)

// StaleCanceler é o pedaço do repositório de caixa usado aqui.
type StaleCanceler interface {
	CancelStaleCommands(ctx context.Context, openedBefore time.Time) (int64, error)
}

type Service struct {
	commands StaleCanceler
	log      *logrus.Logger
	maxAge   time.Duration
	now      func() time.Time

	cron *cron.Cron
}

func New(commands StaleCanceler, log *logrus.Logger, maxAge time.Duration) *Service {
	if log == nil {
		log = logging.Discard()
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Service{
		commands: commands,
		log:      log,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start agenda a limpeza na expressão informada (cron de 5 campos).
func (s *Service) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.CancelStale(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c

	s.log.WithField("spec", spec).Info("maintenance scheduler started")
	return nil
}

// Stop espera a execução em andamento terminar.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// CancelStale cancela comandas vazias esquecidas abertas.
func (s *Service) CancelStale(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.maxAge)

	n, err := s.commands.CancelStaleCommands(ctx, cutoff)
	if err != nil {
		logging.LogError(s.log, "maintenance", "CancelStale", "cancelar comandas", cutoff, err)
		return 0
	}

	if n > 0 {
		s.log.WithField("canceled", n).Info("stale commands canceled")
	}
	return n
}
