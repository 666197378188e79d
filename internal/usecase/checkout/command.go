package checkout

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

var ErrCommandNotFound = httperr.ErrBusiness("command_not_found")

func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}

func load(ctx context.Context, repo domain.Repository, t tenant.Context, commandID uint) (*models.Command, error) {
	if !t.Valid() {
		return nil, tenant.ErrMissing
	}
	cmd, err := repo.GetCommand(ctx, t.StudioID, commandID)
	if err != nil {
		return nil, notFound(err, "command_not_found")
	}
	return cmd, nil
}

// ======================================================
// OPEN
// ======================================================

type OpenCommand struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewOpenCommand(repo domain.Repository, audit *audit.Dispatcher) *OpenCommand {
	return &OpenCommand{repo: repo, audit: audit}
}

func (uc *OpenCommand) Execute(
	ctx context.Context,
	t tenant.Context,
	clientID *uint,
	appointmentID *uint,
) (*models.Command, error) {

	if !t.Valid() {
		return nil, tenant.ErrMissing
	}

	cmd := &models.Command{
		StudioID:      t.StudioID,
		ClientID:      clientID,
		AppointmentID: appointmentID,
		Status:        models.CommandOpen,
	}
	domain.Recompute(cmd)

	if err := uc.repo.CreateCommand(ctx, cmd); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		StudioID: t.StudioID,
		UserID:   t.UserRef(),
		Action:   "command_opened",
		Entity:   "command",
		EntityID: &cmd.ID,
	})

	return cmd, nil
}

// ======================================================
// GET
// ======================================================

type GetCommand struct {
	repo domain.Repository
}

func NewGetCommand(repo domain.Repository) *GetCommand {
	return &GetCommand{repo: repo}
}

func (uc *GetCommand) Execute(ctx context.Context, t tenant.Context, commandID uint) (*models.Command, error) {
	return load(ctx, uc.repo, t, commandID)
}

// ======================================================
// ITEMS
// ======================================================

type ItemInput struct {
	Kind           string
	RefID          uint
	ProfessionalID *uint
	Quantity       int
}

type AddItem struct {
	repo domain.Repository
}

func NewAddItem(repo domain.Repository) *AddItem {
	return &AddItem{repo: repo}
}

// Execute copia nome e preço do catálogo para o item; o total é recalculado.
func (uc *AddItem) Execute(
	ctx context.Context,
	t tenant.Context,
	commandID uint,
	in ItemInput,
) (*models.Command, error) {

	cmd, err := load(ctx, uc.repo, t, commandID)
	if err != nil {
		return nil, err
	}
	if !domain.IsOpen(cmd) {
		return nil, domain.ErrCommandClosed
	}

	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	item := models.CommandItem{
		Kind:           in.Kind,
		RefID:          in.RefID,
		ProfessionalID: in.ProfessionalID,
		Quantity:       qty,
	}

	switch in.Kind {
	case models.ItemService:
		s, err := uc.repo.GetService(ctx, t.StudioID, in.RefID)
		if err != nil {
			return nil, notFound(err, "service_not_found")
		}
		item.Name, item.UnitPrice = s.Name, s.Price
	case models.ItemProduct:
		p, err := uc.repo.GetProduct(ctx, t.StudioID, in.RefID)
		if err != nil {
			return nil, notFound(err, "product_not_found")
		}
		item.Name, item.UnitPrice = p.Name, p.Price
	default:
		return nil, httperr.ErrBusiness("invalid_item_kind")
	}

	if err := domain.AddItem(cmd, item); err != nil {
		return nil, err
	}

	// o item recém-incluído é o último; o repositório preenche o id
	added := &cmd.Items[len(cmd.Items)-1]
	if err := uc.repo.AddItem(ctx, cmd, added); err != nil {
		return nil, err
	}
	// o total gravado vale sobre o local: outro item pode ter entrado junto
	return load(ctx, uc.repo, t, commandID)
}

type RemoveItem struct {
	repo domain.Repository
}

func NewRemoveItem(repo domain.Repository) *RemoveItem {
	return &RemoveItem{repo: repo}
}

func (uc *RemoveItem) Execute(
	ctx context.Context,
	t tenant.Context,
	commandID uint,
	itemID uint,
) (*models.Command, error) {

	cmd, err := load(ctx, uc.repo, t, commandID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.RemoveItem(cmd, itemID); err != nil {
		return nil, err
	}
	if err := uc.repo.RemoveItem(ctx, cmd, itemID); err != nil {
		return nil, err
	}
	return load(ctx, uc.repo, t, commandID)
}

// ======================================================
// CANCEL
// ======================================================

type CancelCommand struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCancelCommand(repo domain.Repository, audit *audit.Dispatcher) *CancelCommand {
	return &CancelCommand{repo: repo, audit: audit}
}

func (uc *CancelCommand) Execute(ctx context.Context, t tenant.Context, commandID uint) (*models.Command, error) {
	cmd, err := load(ctx, uc.repo, t, commandID)
	if err != nil {
		return nil, err
	}
	now := timezone.Now()
	if err := domain.Cancel(cmd, now); err != nil {
		return nil, err
	}
	if err := uc.repo.CancelCommand(ctx, t.StudioID, cmd.ID, now); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		StudioID: t.StudioID,
		UserID:   t.UserRef(),
		Action:   "command_canceled",
		Entity:   "command",
		EntityID: &cmd.ID,
	})
	return cmd, nil
}
