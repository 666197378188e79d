package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/storage"
)

const (
	pixID uint = iota + 1
	cashID
	creditID
)

type fakeRepo struct {
	mu       sync.Mutex
	methods  []models.PaymentMethod
	services map[uint]models.Service
	products map[uint]models.Product
	commands map[uint]models.Command
	entries  []models.PaymentEntry
	nextID   uint

	settleCalls int
	// onSettle roda antes da gravação; devolver erro aborta a transação
	onSettle func(r *fakeRepo, s domain.Settlement) error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		methods: []models.PaymentMethod{
			{ID: pixID, StudioID: 1, Name: "Pix", Category: "pix", Active: true},
			{ID: cashID, StudioID: 1, Name: "Dinheiro", Category: "cash", Active: true},
			{
				ID: creditID, StudioID: 1, Name: "Crédito", Category: "credit", MaxInstallments: 6, Active: true,
				CreditRates: datatypes.JSON(`[{"from":1,"to":1,"rate":"3"},{"from":2,"to":6,"rate":"4.5"}]`),
			},
		},
		services: map[uint]models.Service{
			40: {ID: 40, StudioID: 1, Name: "Coloração", Price: dec("150"), Active: true},
		},
		products: map[uint]models.Product{
			50: {ID: 50, StudioID: 1, Name: "Máscara", Price: dec("25"), Stock: 10, Active: true},
		},
		commands: map[uint]models.Command{},
		nextID:   1000,
	}
}

func (r *fakeRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) ListPaymentMethods(_ context.Context, studioID uint) ([]models.PaymentMethod, error) {
	return r.methods, nil
}

func (r *fakeRepo) GetService(_ context.Context, studioID, id uint) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok || s.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *fakeRepo) GetProduct(_ context.Context, studioID, id uint) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok || p.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakeRepo) CreateCommand(_ context.Context, cmd *models.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd.ID = r.id()
	r.commands[cmd.ID] = *cmd
	return nil
}

func (r *fakeRepo) GetCommand(_ context.Context, studioID, id uint) (*models.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok || cmd.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	cmd.Items = append([]models.CommandItem(nil), cmd.Items...)
	cmd.Entries = nil
	for _, e := range r.entries {
		if e.CommandID == id {
			cmd.Entries = append(cmd.Entries, e)
		}
	}
	return &cmd, nil
}

func (r *fakeRepo) AddItem(_ context.Context, cmd *models.Command, item *models.CommandItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.commands[cmd.ID]
	if stored.Status != models.CommandOpen {
		return domain.ErrCommandClosed
	}
	item.ID = r.id()
	item.CommandID = cmd.ID
	stored.Items = append(stored.Items, *item)
	domain.Recompute(&stored)
	r.commands[cmd.ID] = stored
	return nil
}

func (r *fakeRepo) RemoveItem(_ context.Context, cmd *models.Command, itemID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.commands[cmd.ID]
	if stored.Status != models.CommandOpen {
		return domain.ErrCommandClosed
	}
	if _, err := domain.RemoveItem(&stored, itemID); err != nil {
		return err
	}
	r.commands[cmd.ID] = stored
	return nil
}

func (r *fakeRepo) CancelCommand(_ context.Context, studioID, commandID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.commands[commandID]
	if !ok || stored.StudioID != studioID || stored.Status != models.CommandOpen {
		return domain.ErrCommandClosed
	}
	stored.Status = models.CommandCanceled
	stored.CanceledAt = &at
	r.commands[commandID] = stored
	return nil
}

func (r *fakeRepo) FindEntriesByKeys(_ context.Context, studioID uint, keys []string) ([]models.PaymentEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []models.PaymentEntry
	for _, e := range r.entries {
		if e.StudioID == studioID && want[e.IdempotencyKey] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) Settle(_ context.Context, s domain.Settlement) error {
	if r.onSettle != nil {
		if err := r.onSettle(r, s); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleCalls++

	cmd := r.commands[s.CommandID]
	if cmd.Status != models.CommandOpen {
		return domain.ErrCommandClosed
	}
	paid := decimal.Zero
	for _, e := range s.Entries {
		paid = paid.Add(e.Amount)
	}
	if cmd.Total.Sub(paid).GreaterThan(domain.Tolerance) {
		return domain.ErrBalanceRemaining
	}
	for _, e := range s.Entries {
		for _, existing := range r.entries {
			if existing.IdempotencyKey == e.IdempotencyKey {
				return &pgconn.PgError{Code: "23505"}
			}
		}
	}

	r.writeEntries(s)

	for _, it := range cmd.Items {
		if it.Kind == models.ItemProduct {
			p := r.products[it.RefID]
			p.Stock -= it.Quantity
			r.products[it.RefID] = p
		}
	}

	cmd.Status = models.CommandPaid
	paidAt := s.PaidAt
	cmd.PaidAt = &paidAt
	r.commands[s.CommandID] = cmd
	return nil
}

func (r *fakeRepo) writeEntries(s domain.Settlement) {
	for _, e := range s.Entries {
		r.entries = append(r.entries, models.PaymentEntry{
			ID:             r.id(),
			StudioID:       s.StudioID,
			CommandID:      s.CommandID,
			Category:       string(e.Category),
			MethodID:       e.MethodID,
			Amount:         e.Amount,
			FeeRate:        e.FeeRate,
			FeeAmount:      e.FeeAmount,
			NetAmount:      e.NetAmount,
			Installments:   e.Installments,
			IdempotencyKey: e.IdempotencyKey,
		})
	}
}

func (r *fakeRepo) CancelStaleCommands(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, cmd := range r.commands {
		if cmd.Status == models.CommandOpen && len(cmd.Items) == 0 && cmd.CreatedAt.Before(before) {
			cmd.Status = models.CommandCanceled
			r.commands[id] = cmd
			n++
		}
	}
	return n, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

type receiptSink struct {
	receipts []storage.Receipt
}

func (s *receiptSink) ArchiveReceipt(_ context.Context, r storage.Receipt) error {
	s.receipts = append(s.receipts, r)
	return nil
}
