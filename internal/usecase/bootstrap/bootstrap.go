// Package bootstrap monta o pacote inicial da sessão (studio, equipe,
// serviços e formas de pagamento), cacheado por studio.
package bootstrap

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

type Studios interface {
	GetStudioByID(ctx context.Context, id uint) (*models.Studio, error)
	ListProfessionals(ctx context.Context, studioID uint) ([]models.User, error)
}

type Catalog interface {
	ListServices(ctx context.Context, studioID uint) ([]models.Service, error)
	ListActivePaymentMethods(ctx context.Context, studioID uint) ([]models.PaymentMethod, error)
}

type Bootstrap struct {
	studios Studios
	catalog Catalog
	guard   *tenant.SyncGuard
	metrics *metrics.Metrics
	log     *logrus.Logger
}

func New(
	studios Studios,
	catalog Catalog,
	guard *tenant.SyncGuard,
	m *metrics.Metrics,
	log *logrus.Logger,
) *Bootstrap {
	if log == nil {
		log = logging.Discard()
	}
	return &Bootstrap{
		studios: studios,
		catalog: catalog,
		guard:   guard,
		metrics: m,
		log:     log,
	}
}

// Execute devolve o cache enquanto o último sync estiver dentro da janela.
// Falhas do redis nunca derrubam o bootstrap: caem para o banco.
func (uc *Bootstrap) Execute(ctx context.Context, t tenant.Context) (*dto.Bootstrap, error) {
	if !t.Valid() {
		return nil, tenant.ErrMissing
	}

	// --------------------------------------------------
	// 1️⃣ Cache dentro da janela
	// --------------------------------------------------
	fresh, last, err := uc.guard.Fresh(ctx, t.StudioID)
	if err != nil {
		logging.LogError(uc.log, "bootstrap", "Execute", "ler último sync", t.StudioID, err)
	}
	if fresh {
		var cached dto.Bootstrap
		ok, err := uc.guard.Load(ctx, t.StudioID, &cached)
		if err != nil {
			logging.LogError(uc.log, "bootstrap", "Execute", "ler cache", t.StudioID, err)
		}
		if ok {
			cached.FromCache = true
			cached.SyncedAt = last
			uc.metrics.ObserveBootstrap(true)
			return &cached, nil
		}
	}

	// --------------------------------------------------
	// 2️⃣ Banco
	// --------------------------------------------------
	studio, err := uc.studios.GetStudioByID(ctx, t.StudioID)
	if err != nil {
		return nil, err
	}
	pros, err := uc.studios.ListProfessionals(ctx, t.StudioID)
	if err != nil {
		return nil, err
	}
	services, err := uc.catalog.ListServices(ctx, t.StudioID)
	if err != nil {
		return nil, err
	}
	methods, err := uc.catalog.ListActivePaymentMethods(ctx, t.StudioID)
	if err != nil {
		return nil, err
	}

	b := &dto.Bootstrap{
		Studio:         *studio,
		Professionals:  make([]dto.ProfessionalDTO, 0, len(pros)),
		Services:       services,
		PaymentMethods: methods,
	}
	for _, p := range pros {
		b.Professionals = append(b.Professionals, dto.FromProfessional(p))
	}

	// --------------------------------------------------
	// 3️⃣ Marca o sync
	// --------------------------------------------------
	syncedAt, err := uc.guard.Mark(ctx, t.StudioID, b)
	if err != nil {
		logging.LogError(uc.log, "bootstrap", "Execute", "gravar cache", t.StudioID, err)
	}
	b.SyncedAt = syncedAt

	uc.metrics.ObserveBootstrap(false)
	return b, nil
}

// Invalidate é chamado depois de mudanças no catálogo ou na equipe.
func (uc *Bootstrap) Invalidate(ctx context.Context, studioID uint) {
	if err := uc.guard.Invalidate(ctx, studioID); err != nil {
		logging.LogError(uc.log, "bootstrap", "Invalidate", "limpar cache", studioID, err)
	}
}
