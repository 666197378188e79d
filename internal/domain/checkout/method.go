package checkout

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

type Category string

const (
	CategoryPix    Category = "pix"
	CategoryCash   Category = "cash"
	CategoryCredit Category = "credit"
	CategoryDebit  Category = "debit"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryPix, CategoryCash, CategoryCredit, CategoryDebit:
		return c, nil
	}
	return "", fmt.Errorf("checkout: unknown category %q", s)
}

// Method é a forma de pagamento já validada. Cada categoria tem sua
// própria estrutura; só o crédito carrega tabela de parcelamento.
type Method interface {
	ID() uint
	Name() string
	Category() Category
	// FeeRate devolve a taxa percentual para o número de parcelas.
	FeeRate(installments int) (decimal.Decimal, error)
	MaxInstallments() int
}

type base struct {
	id   uint
	name string
}

func (b base) ID() uint           { return b.id }
func (b base) Name() string       { return b.name }
func (base) MaxInstallments() int { return 1 }

type PixMethod struct{ base }

func (PixMethod) Category() Category { return CategoryPix }
func (PixMethod) FeeRate(installments int) (decimal.Decimal, error) {
	return zeroRate(installments)
}

type CashMethod struct{ base }

func (CashMethod) Category() Category { return CategoryCash }
func (CashMethod) FeeRate(installments int) (decimal.Decimal, error) {
	return zeroRate(installments)
}

type DebitMethod struct {
	base
	Rate decimal.Decimal
}

func (DebitMethod) Category() Category { return CategoryDebit }
func (m DebitMethod) FeeRate(installments int) (decimal.Decimal, error) {
	if installments != 1 {
		return decimal.Zero, ErrInvalidInstallments
	}
	return m.Rate, nil
}

// Bracket vale de From até To parcelas, inclusive.
type Bracket struct {
	From int             `json:"from" validate:"min=1"`
	To   int             `json:"to" validate:"gtefield=From"`
	Rate decimal.Decimal `json:"rate"`
}

type CreditMethod struct {
	base
	Brackets []Bracket
	Max      int
}

func (CreditMethod) Category() Category     { return CategoryCredit }
func (m CreditMethod) MaxInstallments() int { return m.Max }

func (m CreditMethod) FeeRate(installments int) (decimal.Decimal, error) {
	if installments < 1 || installments > m.Max {
		return decimal.Zero, ErrInvalidInstallments
	}
	for _, b := range m.Brackets {
		if installments >= b.From && installments <= b.To {
			return b.Rate, nil
		}
	}
	return decimal.Zero, ErrInvalidInstallments
}

func zeroRate(installments int) (decimal.Decimal, error) {
	if installments != 1 {
		return decimal.Zero, ErrInvalidInstallments
	}
	return decimal.Zero, nil
}

// ===============================
// Parse (fronteira com o banco)
// ===============================

type methodRecord struct {
	ID              uint      `validate:"required"`
	Name            string    `validate:"required,max=60"`
	Category        Category  `validate:"required,oneof=pix cash credit debit"`
	MaxInstallments int       `validate:"min=1,max=24"`
	Brackets        []Bracket `validate:"required_if=Category credit,dive"`
}

var validate = validator.New()

// ParseMethod converte o registro cadastrado no tipo certo da categoria,
// rejeitando configurações incompletas.
func ParseMethod(pm models.PaymentMethod) (Method, error) {
	rec := methodRecord{
		ID:              pm.ID,
		Name:            pm.Name,
		Category:        Category(pm.Category),
		MaxInstallments: pm.MaxInstallments,
	}
	if rec.MaxInstallments == 0 {
		rec.MaxInstallments = 1
	}

	if rec.Category == CategoryCredit && len(pm.CreditRates) > 0 {
		if err := json.Unmarshal(pm.CreditRates, &rec.Brackets); err != nil {
			return nil, fmt.Errorf("checkout: method %d: credit rates: %w", pm.ID, err)
		}
	}

	if err := validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("checkout: method %d: %w", pm.ID, err)
	}
	if pm.Rate.IsNegative() {
		return nil, fmt.Errorf("checkout: method %d: negative rate", pm.ID)
	}

	b := base{id: rec.ID, name: rec.Name}

	switch rec.Category {
	case CategoryPix:
		return PixMethod{b}, nil
	case CategoryCash:
		return CashMethod{b}, nil
	case CategoryDebit:
		return DebitMethod{base: b, Rate: pm.Rate}, nil
	}

	if len(rec.Brackets) == 0 {
		return nil, fmt.Errorf("checkout: method %d: credit without brackets", pm.ID)
	}
	brackets := append([]Bracket(nil), rec.Brackets...)
	sort.Slice(brackets, func(i, j int) bool { return brackets[i].From < brackets[j].From })
	for i, br := range brackets {
		if br.Rate.IsNegative() {
			return nil, fmt.Errorf("checkout: method %d: negative bracket rate", pm.ID)
		}
		if i > 0 && br.From <= brackets[i-1].To {
			return nil, fmt.Errorf("checkout: method %d: overlapping brackets", pm.ID)
		}
	}
	if brackets[len(brackets)-1].To < rec.MaxInstallments {
		return nil, fmt.Errorf("checkout: method %d: brackets do not cover %d installments", pm.ID, rec.MaxInstallments)
	}

	return CreditMethod{base: b, Brackets: brackets, Max: rec.MaxInstallments}, nil
}

// Table indexa as formas de pagamento ativas do studio.
type Table map[uint]Method

// NewTable ignora formas inativas e devolve os erros das inválidas
// junto com a tabela das válidas.
func NewTable(methods []models.PaymentMethod) (Table, []error) {
	t := make(Table, len(methods))
	var errs []error
	for _, pm := range methods {
		if !pm.Active {
			continue
		}
		m, err := ParseMethod(pm)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t[m.ID()] = m
	}
	return t, errs
}

func (t Table) Get(id uint) (Method, error) {
	m, ok := t[id]
	if !ok {
		return nil, ErrUnknownMethod
	}
	return m, nil
}
