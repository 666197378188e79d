package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const (
	pixID uint = iota + 1
	cashID
	debitID
	creditID
)

func testTable(t *testing.T) Table {
	t.Helper()

	table, errs := NewTable([]models.PaymentMethod{
		{ID: pixID, Name: "Pix", Category: "pix", Active: true},
		{ID: cashID, Name: "Dinheiro", Category: "cash", Active: true},
		{ID: debitID, Name: "Débito", Category: "debit", Rate: dec("1.5"), Active: true},
		{
			ID: creditID, Name: "Crédito", Category: "credit", MaxInstallments: 6, Active: true,
			CreditRates: datatypes.JSON(`[{"from":1,"to":1,"rate":"3"},{"from":2,"to":6,"rate":"4.5"}]`),
		},
	})
	require.Empty(t, errs)
	require.Len(t, table, 4)
	return table
}

func assertBalanced(t *testing.T, l *Ledger) {
	t.Helper()
	tot := l.Totals()
	assert.True(t, tot.Net.Add(tot.Fee).Equal(tot.Gross), "net+fee=%s gross=%s", tot.Net.Add(tot.Fee), tot.Gross)
	for _, e := range l.Entries() {
		assert.True(t, e.NetAmount.Add(e.FeeAmount).Equal(e.Amount))
	}
}

type recorder struct {
	mu      sync.Mutex
	calls   int
	entries []Entry
	err     error
}

func (r *recorder) Flush(_ context.Context, entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.entries = entries
	return r.err
}

func TestSinglePixPaysCommand(t *testing.T) {
	l := NewLedger(dec("150.00"), testTable(t))

	_, err := l.AddEntry(pixID, dec("150.00"), 1)
	require.NoError(t, err)
	assert.True(t, l.Remaining().IsZero())
	assert.True(t, l.CanFinish())

	cmd := &models.Command{Status: models.CommandOpen, Total: dec("150.00")}
	rec := &recorder{}
	err = l.Finish(context.Background(), FlushFunc(func(ctx context.Context, entries []Entry) error {
		if err := rec.Flush(ctx, entries); err != nil {
			return err
		}
		return MarkPaid(cmd, time.Now())
	}))
	require.NoError(t, err)

	assert.Equal(t, models.CommandPaid, cmd.Status)
	assert.True(t, l.Sealed())
	assert.Equal(t, 1, rec.calls)

	_, err = l.AddEntry(cashID, dec("1"), 1)
	assert.ErrorIs(t, err, ErrSealed)
	assert.ErrorIs(t, l.Remove(l.Entries()[0].ID), ErrSealed)
	assert.ErrorIs(t, l.Finish(context.Background(), rec), ErrSealed)
	assert.False(t, l.CanFinish())
}

func TestCreditPlusCashSplit(t *testing.T) {
	l := NewLedger(dec("200.00"), testTable(t))

	credit, err := l.AddEntry(creditID, dec("120.00"), 1)
	require.NoError(t, err)
	assert.True(t, credit.FeeAmount.Equal(dec("3.60")))
	assert.True(t, credit.NetAmount.Equal(dec("116.40")))
	assert.Equal(t, CategoryCredit, credit.Category)

	assert.True(t, l.SuggestedAmount().Equal(dec("80.00")))

	cash, err := l.AddEntry(cashID, dec("80.00"), 1)
	require.NoError(t, err)
	assert.True(t, cash.FeeAmount.IsZero())
	assert.True(t, cash.NetAmount.Equal(dec("80.00")))

	assert.True(t, l.Remaining().IsZero())

	rec := &recorder{}
	require.NoError(t, l.Finish(context.Background(), rec))

	tot := l.Totals()
	assert.True(t, tot.Net.Equal(dec("196.40")))
	assert.True(t, tot.Gross.Equal(dec("200.00")))
	require.Len(t, rec.entries, 2)
	assert.NotEqual(t, rec.entries[0].IdempotencyKey, rec.entries[1].IdempotencyKey)
	assertBalanced(t, l)
}

func TestFinishDisabledWithBalanceOrNoEntries(t *testing.T) {
	l := NewLedger(dec("100.00"), testTable(t))
	rec := &recorder{}

	assert.False(t, l.CanFinish())
	assert.ErrorIs(t, l.Finish(context.Background(), rec), ErrNoEntries)

	_, err := l.AddEntry(pixID, dec("99.90"), 1)
	require.NoError(t, err)
	assert.False(t, l.CanFinish())
	assert.ErrorIs(t, l.Finish(context.Background(), rec), ErrBalanceRemaining)

	// diferença dentro da tolerância
	_, err = l.AddEntry(pixID, dec("0.06"), 1)
	require.NoError(t, err)
	assert.True(t, l.CanFinish())

	assert.Zero(t, rec.calls)
}

func TestRemainingNeverNegative(t *testing.T) {
	l := NewLedger(dec("50.00"), testTable(t))

	_, err := l.AddEntry(cashID, dec("70.00"), 1)
	require.NoError(t, err)
	assert.True(t, l.Remaining().IsZero())
	assert.True(t, l.SuggestedAmount().IsZero())
}

func TestRemoveIsLocal(t *testing.T) {
	l := NewLedger(dec("100.00"), testTable(t))

	e, err := l.AddEntry(debitID, dec("40.00"), 1)
	require.NoError(t, err)
	assert.True(t, e.FeeAmount.Equal(dec("0.60")))
	assert.True(t, l.Remaining().Equal(dec("60.00")))

	require.NoError(t, l.Remove(e.ID))
	assert.True(t, l.Remaining().Equal(dec("100.00")))
	assert.ErrorIs(t, l.Remove(e.ID), ErrEntryNotFound)
}

func TestFeeTableByInstallments(t *testing.T) {
	l := NewLedger(dec("1000.00"), testTable(t))

	e, err := l.AddEntry(creditID, dec("333.33"), 3)
	require.NoError(t, err)
	assert.True(t, e.FeeRate.Equal(dec("4.5")))
	assert.True(t, e.FeeAmount.Equal(dec("15.00")))
	assert.True(t, e.NetAmount.Equal(dec("318.33")))

	_, err = l.AddEntry(creditID, dec("10"), 7)
	assert.ErrorIs(t, err, ErrInvalidInstallments)
	_, err = l.AddEntry(pixID, dec("10"), 2)
	assert.ErrorIs(t, err, ErrInvalidInstallments)
	_, err = l.AddEntry(99, dec("10"), 1)
	assert.ErrorIs(t, err, ErrUnknownMethod)
	_, err = l.AddEntry(pixID, dec("0"), 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assertBalanced(t, l)
}

func TestFinishFailureKeepsLedgerOpen(t *testing.T) {
	l := NewLedger(dec("10.00"), testTable(t))
	_, err := l.AddEntry(pixID, dec("10.00"), 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, l.Finish(context.Background(), &recorder{err: boom}), boom)
	assert.False(t, l.Sealed())

	// a nova tentativa reaproveita as mesmas chaves
	first := l.Entries()[0].IdempotencyKey
	rec := &recorder{}
	require.NoError(t, l.Finish(context.Background(), rec))
	assert.Equal(t, first, rec.entries[0].IdempotencyKey)
}

func TestFinishRejectsDoubleSubmit(t *testing.T) {
	l := NewLedger(dec("10.00"), testTable(t))
	_, err := l.AddEntry(pixID, dec("10.00"), 1)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	var flushes atomic.Int32

	slow := FlushFunc(func(ctx context.Context, _ []Entry) error {
		flushes.Add(1)
		close(started)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- l.Finish(context.Background(), slow) }()

	<-started
	assert.ErrorIs(t, l.Finish(context.Background(), slow), ErrFinishInFlight)
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, int32(1), flushes.Load())
}

func TestLedgerFrozenWhileFinishing(t *testing.T) {
	l := NewLedger(dec("10.00"), testTable(t))
	e, err := l.AddEntry(pixID, dec("10.00"), 1)
	require.NoError(t, err)

	var flushed []Entry
	var removeErr, addErr error
	f := FlushFunc(func(ctx context.Context, entries []Entry) error {
		flushed = entries
		removeErr = l.Remove(e.ID)
		_, addErr = l.AddEntry(pixID, dec("1.00"), 1)
		return nil
	})

	require.NoError(t, l.Finish(context.Background(), f))
	assert.ErrorIs(t, removeErr, ErrFinishInFlight)
	assert.ErrorIs(t, addErr, ErrFinishInFlight)
	assert.Len(t, flushed, 1)
	assert.Equal(t, flushed, l.Entries())
	assert.True(t, l.Sealed())
}

func TestLedgerEditableAfterFailedFinish(t *testing.T) {
	l := NewLedger(dec("10.00"), testTable(t))
	e, err := l.AddEntry(pixID, dec("10.00"), 1)
	require.NoError(t, err)

	fail := FlushFunc(func(ctx context.Context, _ []Entry) error { return assert.AnError })
	assert.ErrorIs(t, l.Finish(context.Background(), fail), assert.AnError)

	assert.NoError(t, l.Remove(e.ID))
	assert.False(t, l.Sealed())
}

func TestParseMethodRejectsBadConfig(t *testing.T) {
	_, err := ParseMethod(models.PaymentMethod{ID: 1, Name: "Crédito", Category: "credit", MaxInstallments: 3})
	assert.Error(t, err)

	_, err = ParseMethod(models.PaymentMethod{
		ID: 1, Name: "Crédito", Category: "credit", MaxInstallments: 6,
		CreditRates: datatypes.JSON(`[{"from":1,"to":3,"rate":"3"}]`),
	})
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		_, err = ParseMethod(models.PaymentMethod{
			ID: 9, Name: "Crédito", Category: "credit", MaxInstallments: 1,
			CreditRates: datatypes.JSON(`[]`), Active: true,
		})
	})
	assert.ErrorContains(t, err, "credit without brackets")

	_, err = ParseMethod(models.PaymentMethod{ID: 1, Name: "Boleto", Category: "boleto"})
	assert.Error(t, err)

	m, err := ParseMethod(models.PaymentMethod{ID: 2, Name: "Pix", Category: "pix"})
	require.NoError(t, err)
	_, isPix := m.(PixMethod)
	assert.True(t, isPix)
}

func TestCommandTotals(t *testing.T) {
	cmd := &models.Command{Status: models.CommandOpen}

	require.NoError(t, AddItem(cmd, models.CommandItem{ID: 1, Kind: models.ItemService, UnitPrice: dec("80"), Quantity: 1}))
	require.NoError(t, AddItem(cmd, models.CommandItem{ID: 2, Kind: models.ItemProduct, UnitPrice: dec("35.50"), Quantity: 2}))
	assert.True(t, cmd.Total.Equal(dec("151.00")))

	_, err := RemoveItem(cmd, 1)
	require.NoError(t, err)
	assert.True(t, cmd.Total.Equal(dec("71.00")))

	require.NoError(t, Cancel(cmd, time.Now()))
	assert.ErrorIs(t, MarkPaid(cmd, time.Now()), ErrCommandClosed)
	assert.ErrorIs(t, AddItem(cmd, models.CommandItem{UnitPrice: dec("1")}), ErrCommandClosed)
}
