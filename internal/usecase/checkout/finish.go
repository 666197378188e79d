package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/storage"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

var tracer = otel.Tracer("studio-scheduler/checkout")

// ======================================================
// INPUT / OUTPUT
// ======================================================

type EntryInput struct {
	MethodID       uint
	Amount         decimal.Decimal
	Installments   int
	IdempotencyKey string
}

type FinishInput struct {
	Tenant    tenant.Context
	CommandID uint
	Entries   []EntryInput
}

type FinishResult struct {
	Command  *models.Command
	Totals   domain.Totals
	Replayed bool
}

// Locker evita dois fechamentos simultâneos da mesma comanda entre réplicas.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (*cache.Lock, error)
}

// Archiver recebe o recibo depois do fechamento. Falha só é logada.
type Archiver interface {
	ArchiveReceipt(ctx context.Context, r storage.Receipt) error
}

// ======================================================
// USE CASE
// ======================================================

type FinishCommand struct {
	repo     domain.Repository
	locker   Locker
	archiver Archiver
	audit    *audit.Dispatcher
	metrics  *metrics.Metrics
	log      *logrus.Logger
	lockTTL  time.Duration
	now      func() time.Time
}

func NewFinishCommand(
	repo domain.Repository,
	locker Locker,
	archiver Archiver,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
	log *logrus.Logger,
	lockTTL time.Duration,
) *FinishCommand {
	if log == nil {
		log = logging.Discard()
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &FinishCommand{
		repo:     repo,
		locker:   locker,
		archiver: archiver,
		audit:    audit,
		metrics:  m,
		log:      log,
		lockTTL:  lockTTL,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute recebe todas as entradas do caixa num único pedido e grava tudo
// numa transação. Repetir o mesmo pedido (mesmas chaves) depois de um
// timeout devolve o resultado já gravado em vez de cobrar de novo.
func (uc *FinishCommand) Execute(ctx context.Context, in FinishInput) (res *FinishResult, err error) {
	ctx, span := tracer.Start(ctx, "checkout.finish", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("studio.id", int64(in.Tenant.StudioID)),
		attribute.Int64("command.id", int64(in.CommandID)),
		attribute.Int("entries", len(in.Entries)),
	)

	defer func() {
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			uc.metrics.ObserveFinish("error", 0)
		case res.Replayed:
			uc.metrics.ObserveFinish("replayed", 0)
		default:
			gross, _ := res.Totals.Gross.Float64()
			uc.metrics.ObserveFinish("paid", gross)
		}
	}()

	// --------------------------------------------------
	// 1️⃣ Tenant + chaves
	// --------------------------------------------------
	if !in.Tenant.Valid() {
		return nil, tenant.ErrMissing
	}
	if len(in.Entries) == 0 {
		return nil, domain.ErrNoEntries
	}

	keys := make([]string, 0, len(in.Entries))
	seen := make(map[string]struct{}, len(in.Entries))
	for _, e := range in.Entries {
		if e.IdempotencyKey == "" {
			return nil, httperr.ErrBusiness("idempotency_key_required")
		}
		if _, dup := seen[e.IdempotencyKey]; dup {
			return nil, httperr.ErrBusiness("duplicate_idempotency_key")
		}
		seen[e.IdempotencyKey] = struct{}{}
		keys = append(keys, e.IdempotencyKey)
	}

	// --------------------------------------------------
	// 2️⃣ Lock distribuído
	// --------------------------------------------------
	lock, err := uc.locker.Obtain(ctx, cache.FinishLockKey(in.Tenant.StudioID, in.CommandID), uc.lockTTL)
	if errors.Is(err, cache.ErrNotObtained) {
		return nil, domain.ErrFinishInFlight
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := lock.Release(context.Background()); rerr != nil {
			logging.LogError(uc.log, "checkout", "FinishCommand", "liberar lock", in.CommandID, rerr)
		}
	}()

	// --------------------------------------------------
	// 3️⃣ Comanda (replay quando já paga com as mesmas chaves)
	// --------------------------------------------------
	cmd, err := load(ctx, uc.repo, in.Tenant, in.CommandID)
	if err != nil {
		return nil, err
	}
	if cmd.Status == models.CommandPaid {
		return uc.replay(ctx, in, cmd, keys)
	}
	if !domain.IsOpen(cmd) {
		return nil, domain.ErrCommandClosed
	}
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyCommand
	}

	// --------------------------------------------------
	// 4️⃣ Ledger com a tabela de taxas do studio
	// --------------------------------------------------
	methods, err := uc.repo.ListPaymentMethods(ctx, in.Tenant.StudioID)
	if err != nil {
		return nil, err
	}
	table, invalid := domain.NewTable(methods)
	for _, ierr := range invalid {
		logging.LogError(uc.log, "checkout", "FinishCommand", "forma de pagamento inválida", in.Tenant.StudioID, ierr)
	}

	ledger := domain.NewLedger(cmd.Total, table)
	for _, e := range in.Entries {
		if _, err := ledger.AddEntryWithKey(e.MethodID, e.Amount, e.Installments, e.IdempotencyKey); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 5️⃣ Uma transação para tudo
	// --------------------------------------------------
	paidAt := uc.now()
	err = ledger.Finish(ctx, domain.FlushFunc(func(ctx context.Context, entries []domain.Entry) error {
		return uc.repo.Settle(ctx, domain.Settlement{
			StudioID:  in.Tenant.StudioID,
			CommandID: cmd.ID,
			Entries:   entries,
			PaidAt:    paidAt,
		})
	}))
	if err != nil {
		// chave repetida: outro pedido com as mesmas entradas já gravou
		if httperr.IsUniqueViolation(err) {
			fresh, lerr := load(ctx, uc.repo, in.Tenant, in.CommandID)
			if lerr == nil && fresh.Status == models.CommandPaid {
				return uc.replay(ctx, in, fresh, keys)
			}
		}
		return nil, err
	}

	paid, err := load(ctx, uc.repo, in.Tenant, in.CommandID)
	if err != nil {
		return nil, err
	}
	res = &FinishResult{Command: paid, Totals: ledger.Totals()}

	// --------------------------------------------------
	// 6️⃣ Auditoria + recibo
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		StudioID: in.Tenant.StudioID,
		UserID:   in.Tenant.UserRef(),
		Action:   "command_paid",
		Entity:   "command",
		EntityID: &paid.ID,
		Metadata: map[string]any{
			"gross": res.Totals.Gross.StringFixed(2),
			"net":   res.Totals.Net.StringFixed(2),
		},
	})

	uc.archive(ctx, paid, ledger.Entries(), res.Totals, paidAt)

	return res, nil
}

// replay confere se todas as chaves já pertencem a esta comanda paga.
func (uc *FinishCommand) replay(
	ctx context.Context,
	in FinishInput,
	cmd *models.Command,
	keys []string,
) (*FinishResult, error) {

	existing, err := uc.repo.FindEntriesByKeys(ctx, in.Tenant.StudioID, keys)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(keys) {
		return nil, domain.ErrCommandClosed
	}
	for _, e := range existing {
		if e.CommandID != cmd.ID {
			return nil, domain.ErrCommandClosed
		}
	}

	return &FinishResult{Command: cmd, Totals: totalsOf(cmd.Entries), Replayed: true}, nil
}

func totalsOf(entries []models.PaymentEntry) domain.Totals {
	t := domain.Totals{Gross: decimal.Zero, Fee: decimal.Zero, Net: decimal.Zero}
	for _, e := range entries {
		t.Gross = t.Gross.Add(e.Amount)
		t.Fee = t.Fee.Add(e.FeeAmount)
		t.Net = t.Net.Add(e.NetAmount)
	}
	return t
}

func (uc *FinishCommand) archive(
	ctx context.Context,
	cmd *models.Command,
	entries []domain.Entry,
	totals domain.Totals,
	paidAt time.Time,
) {
	if uc.archiver == nil {
		return
	}

	r := storage.Receipt{
		StudioID:   cmd.StudioID,
		CommandID:  cmd.ID,
		Gross:      totals.Gross,
		Fee:        totals.Fee,
		Net:        totals.Net,
		FinishedAt: paidAt,
	}
	for _, it := range cmd.Items {
		r.Items = append(r.Items, storage.ReceiptLine{
			Description: it.Name,
			Quantity:    it.Quantity,
			Total:       it.Subtotal,
		})
	}
	for _, e := range entries {
		r.Payments = append(r.Payments, storage.ReceiptPayment{
			Method:       e.MethodName,
			Amount:       e.Amount,
			Fee:          e.FeeAmount,
			Installments: e.Installments,
		})
	}

	if err := uc.archiver.ArchiveReceipt(ctx, r); err != nil {
		logging.LogError(uc.log, "checkout", "FinishCommand", "arquivar recibo", cmd.ID, err)
	}
}
