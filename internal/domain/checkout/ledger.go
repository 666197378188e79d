package checkout

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tolerance absorve arredondamentos no saldo restante.
var Tolerance = decimal.RequireFromString("0.05")

var hundred = decimal.NewFromInt(100)

// Entry é um pagamento parcial ainda local. Fee e Net são derivados
// do valor bruto e da taxa no momento da inclusão.
type Entry struct {
	ID             string          `json:"id"`
	Category       Category        `json:"category"`
	MethodID       uint            `json:"method_id"`
	MethodName     string          `json:"method_name"`
	Amount         decimal.Decimal `json:"amount"`
	FeeRate        decimal.Decimal `json:"fee_rate"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Installments   int             `json:"installments"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// Fee calcula taxa e líquido com duas casas. Net = gross - fee sempre.
func Fee(gross, rate decimal.Decimal) (fee, net decimal.Decimal) {
	fee = gross.Mul(rate).Div(hundred).Round(2)
	net = gross.Sub(fee)
	return fee, net
}

type Totals struct {
	Gross decimal.Decimal `json:"gross"`
	Fee   decimal.Decimal `json:"fee"`
	Net   decimal.Decimal `json:"net"`
}

// Flusher persiste todas as entradas de uma vez.
type Flusher interface {
	Flush(ctx context.Context, entries []Entry) error
}

type FlushFunc func(ctx context.Context, entries []Entry) error

func (f FlushFunc) Flush(ctx context.Context, entries []Entry) error { return f(ctx, entries) }

// Ledger acumula os pagamentos de uma sessão de caixa contra o total
// da comanda. Depois de um Finish bem-sucedido fica imutável.
type Ledger struct {
	mu      sync.Mutex
	total   decimal.Decimal
	methods Table
	entries []Entry

	sealed   bool
	inFlight atomic.Bool
}

func NewLedger(total decimal.Decimal, methods Table) *Ledger {
	return &Ledger{total: total.Round(2), methods: methods}
}

func (l *Ledger) Total() decimal.Decimal {
	return l.total
}

// AddEntry inclui um pagamento com a taxa da tabela. O valor informado
// não é limitado ao saldo: quem sugere o valor é SuggestedAmount.
func (l *Ledger) AddEntry(methodID uint, amount decimal.Decimal, installments int) (Entry, error) {
	return l.addEntry(methodID, amount, installments, uuid.NewString())
}

// AddEntryWithKey é usado ao reconstruir o ledger a partir de um pedido
// que já traz a chave de idempotência de cada entrada.
func (l *Ledger) AddEntryWithKey(methodID uint, amount decimal.Decimal, installments int, key string) (Entry, error) {
	if key == "" {
		key = uuid.NewString()
	}
	return l.addEntry(methodID, amount, installments, key)
}

func (l *Ledger) addEntry(methodID uint, amount decimal.Decimal, installments int, key string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sealed {
		return Entry{}, ErrSealed
	}
	if l.inFlight.Load() {
		return Entry{}, ErrFinishInFlight
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}
	if installments == 0 {
		installments = 1
	}

	m, err := l.methods.Get(methodID)
	if err != nil {
		return Entry{}, err
	}
	rate, err := m.FeeRate(installments)
	if err != nil {
		return Entry{}, err
	}

	fee, net := Fee(amount, rate)

	e := Entry{
		ID:             uuid.NewString(),
		Category:       m.Category(),
		MethodID:       m.ID(),
		MethodName:     m.Name(),
		Amount:         amount,
		FeeRate:        rate,
		FeeAmount:      fee,
		NetAmount:      net,
		Installments:   installments,
		IdempotencyKey: key,
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// Remove tira uma entrada antes do fechamento. Não há efeito remoto.
func (l *Ledger) Remove(entryID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sealed {
		return ErrSealed
	}
	if l.inFlight.Load() {
		return ErrFinishInFlight
	}
	for i, e := range l.entries {
		if e.ID == entryID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) paidLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Remaining = max(0, total - soma dos valores brutos)
func (l *Ledger) Remaining() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingLocked()
}

func (l *Ledger) remainingLocked() decimal.Decimal {
	r := l.total.Sub(l.paidLocked())
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// SuggestedAmount é o valor pré-preenchido para a próxima entrada.
func (l *Ledger) SuggestedAmount() decimal.Decimal {
	return l.Remaining()
}

func (l *Ledger) Totals() Totals {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := Totals{Gross: decimal.Zero, Fee: decimal.Zero, Net: decimal.Zero}
	for _, e := range l.entries {
		t.Gross = t.Gross.Add(e.Amount)
		t.Fee = t.Fee.Add(e.FeeAmount)
		t.Net = t.Net.Add(e.NetAmount)
	}
	return t
}

func (l *Ledger) CanFinish() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canFinishLocked() == nil
}

func (l *Ledger) canFinishLocked() error {
	if l.sealed {
		return ErrSealed
	}
	if len(l.entries) == 0 {
		return ErrNoEntries
	}
	if l.remainingLocked().GreaterThan(Tolerance) {
		return ErrBalanceRemaining
	}
	return nil
}

func (l *Ledger) Sealed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sealed
}

// Finish entrega todas as entradas ao flusher numa única chamada. Enquanto
// o envio roda, o ledger recusa edições e outro Finish com ErrFinishInFlight,
// antes de qualquer I/O.
func (l *Ledger) Finish(ctx context.Context, f Flusher) error {
	l.mu.Lock()
	if !l.inFlight.CompareAndSwap(false, true) {
		l.mu.Unlock()
		return ErrFinishInFlight
	}
	defer l.inFlight.Store(false)

	if err := l.canFinishLocked(); err != nil {
		l.mu.Unlock()
		return err
	}
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	if err := f.Flush(ctx, entries); err != nil {
		return err
	}

	l.mu.Lock()
	l.sealed = true
	l.mu.Unlock()
	return nil
}
