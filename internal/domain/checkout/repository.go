package checkout

import (
	"context"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// Settlement é tudo o que o fechamento grava numa única transação.
type Settlement struct {
	StudioID  uint
	CommandID uint
	Entries   []Entry
	PaidAt    time.Time
}

type Repository interface {
	// -------- Catálogo --------
	ListPaymentMethods(
		ctx context.Context,
		studioID uint,
	) ([]models.PaymentMethod, error)

	GetService(
		ctx context.Context,
		studioID uint,
		serviceID uint,
	) (*models.Service, error)

	GetProduct(
		ctx context.Context,
		studioID uint,
		productID uint,
	) (*models.Product, error)

	// -------- Comanda --------
	CreateCommand(
		ctx context.Context,
		cmd *models.Command,
	) error

	// GetCommand carrega itens e pagamentos já gravados
	GetCommand(
		ctx context.Context,
		studioID uint,
		commandID uint,
	) (*models.Command, error)

	// AddItem e RemoveItem travam a comanda aberta e recalculam o total no banco
	AddItem(
		ctx context.Context,
		cmd *models.Command,
		item *models.CommandItem,
	) error

	RemoveItem(
		ctx context.Context,
		cmd *models.Command,
		itemID uint,
	) error

	// CancelCommand é condicional: só vale para comanda aberta
	CancelCommand(
		ctx context.Context,
		studioID uint,
		commandID uint,
		at time.Time,
	) error

	// -------- Fechamento --------
	FindEntriesByKeys(
		ctx context.Context,
		studioID uint,
		keys []string,
	) ([]models.PaymentEntry, error)

	// Settle grava pagamentos, lançamentos, baixa de estoque e marca a comanda como paga
	Settle(
		ctx context.Context,
		s Settlement,
	) error

	// -------- Manutenção --------
	CancelStaleCommands(
		ctx context.Context,
		openedBefore time.Time,
	) (int64, error)
}
