package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

type CheckoutGormRepository struct {
	db *gorm.DB
}

func NewCheckoutGormRepository(db *gorm.DB) *CheckoutGormRepository {
	return &CheckoutGormRepository{db: db}
}

// --------------------------------------------------
// Catálogo
// --------------------------------------------------

func (r *CheckoutGormRepository) ListPaymentMethods(
	ctx context.Context,
	studioID uint,
) ([]models.PaymentMethod, error) {

	var methods []models.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("id ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *CheckoutGormRepository) GetService(
	ctx context.Context,
	studioID uint,
	serviceID uint,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ? AND active = ?", serviceID, studioID, true).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CheckoutGormRepository) GetProduct(
	ctx context.Context,
	studioID uint,
	productID uint,
) (*models.Product, error) {

	var p models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ? AND active = ?", productID, studioID, true).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// --------------------------------------------------
// Comanda
// --------------------------------------------------

func (r *CheckoutGormRepository) CreateCommand(
	ctx context.Context,
	cmd *models.Command,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cmd).Error
}

func (r *CheckoutGormRepository) GetCommand(
	ctx context.Context,
	studioID uint,
	commandID uint,
) (*models.Command, error) {

	var cmd models.Command
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND studio_id = ?", commandID, studioID).
		First(&cmd).Error; err != nil {
		return nil, err
	}
	return &cmd, nil
}

// lockOpen trava a linha da comanda até o fim da transação e exige status aberto.
func lockOpen(tx *gorm.DB, studioID, commandID uint) (*models.Command, error) {
	var cmd models.Command
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND studio_id = ?", commandID, studioID).
		First(&cmd).Error; err != nil {
		return nil, err
	}
	if cmd.Status != models.CommandOpen {
		return nil, checkout.ErrCommandClosed
	}
	return &cmd, nil
}

// syncTotal recalcula o total a partir dos itens gravados.
func syncTotal(tx *gorm.DB, commandID uint) error {
	return tx.Model(&models.Command{}).
		Where("id = ?", commandID).
		Update("total", gorm.Expr(
			"(SELECT COALESCE(SUM(subtotal), 0) FROM command_items WHERE command_id = ?)",
			commandID,
		)).Error
}

func (r *CheckoutGormRepository) AddItem(
	ctx context.Context,
	cmd *models.Command,
	item *models.CommandItem,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpen(tx, cmd.StudioID, cmd.ID); err != nil {
			return err
		}
		item.CommandID = cmd.ID
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return syncTotal(tx, cmd.ID)
	})
}

func (r *CheckoutGormRepository) RemoveItem(
	ctx context.Context,
	cmd *models.Command,
	itemID uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpen(tx, cmd.StudioID, cmd.ID); err != nil {
			return err
		}
		res := tx.
			Where("id = ? AND command_id = ?", itemID, cmd.ID).
			Delete(&models.CommandItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return checkout.ErrItemNotFound
		}
		return syncTotal(tx, cmd.ID)
	})
}

// CancelCommand só cancela comanda ainda aberta; paga ou já cancelada
// volta ErrCommandClosed sem tocar na linha.
func (r *CheckoutGormRepository) CancelCommand(
	ctx context.Context,
	studioID uint,
	commandID uint,
	at time.Time,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Command{}).
		Where("id = ? AND studio_id = ? AND status = ?", commandID, studioID, models.CommandOpen).
		Updates(map[string]any{
			"status":      models.CommandCanceled,
			"canceled_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return checkout.ErrCommandClosed
	}
	return nil
}

// --------------------------------------------------
// Fechamento
// --------------------------------------------------

func (r *CheckoutGormRepository) FindEntriesByKeys(
	ctx context.Context,
	studioID uint,
	keys []string,
) ([]models.PaymentEntry, error) {

	if len(keys) == 0 {
		return nil, nil
	}

	var entries []models.PaymentEntry
	if err := r.db.WithContext(ctx).
		Where("studio_id = ? AND idempotency_key IN ?", studioID, keys).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *CheckoutGormRepository) Settle(
	ctx context.Context,
	s checkout.Settlement,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// 1️⃣ trava a comanda; outro fechamento espera aqui
		cmd, err := lockOpen(tx, s.StudioID, s.CommandID)
		if err != nil {
			return err
		}

		// o total pode ter mudado depois que o ledger foi montado
		paid := decimal.Zero
		for _, e := range s.Entries {
			paid = paid.Add(e.Amount)
		}
		if cmd.Total.Sub(paid).GreaterThan(checkout.Tolerance) {
			return checkout.ErrBalanceRemaining
		}

		// 2️⃣ pagamentos + livro caixa
		for _, e := range s.Entries {
			entry := models.PaymentEntry{
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
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			commandID := s.CommandID
			ft := models.FinancialTransaction{
				StudioID:       s.StudioID,
				CommandID:      &commandID,
				PaymentEntryID: &entry.ID,
				Type:           "income",
				Category:       string(e.Category),
				Description:    fmt.Sprintf("Comanda #%d - %s", s.CommandID, e.MethodName),
				GrossAmount:    e.Amount,
				FeeAmount:      e.FeeAmount,
				NetAmount:      e.NetAmount,
				OccurredAt:     s.PaidAt,
			}
			if err := tx.Create(&ft).Error; err != nil {
				return err
			}
		}

		// 3️⃣ baixa de estoque dos produtos vendidos
		var items []models.CommandItem
		if err := tx.
			Where("command_id = ? AND kind = ?", s.CommandID, models.ItemProduct).
			Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Model(&models.Product{}).
				Where("id = ? AND studio_id = ?", it.RefID, s.StudioID).
				Update("stock", gorm.Expr("stock - ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		// 4️⃣ comanda paga
		return tx.Model(&models.Command{}).
			Where("id = ? AND status = ?", s.CommandID, models.CommandOpen).
			Updates(map[string]any{
				"status":  models.CommandPaid,
				"paid_at": s.PaidAt,
			}).Error
	})
}

// --------------------------------------------------
// Manutenção
// --------------------------------------------------

// CancelStaleCommands cancela comandas abertas e vazias criadas antes do corte.
func (r *CheckoutGormRepository) CancelStaleCommands(
	ctx context.Context,
	openedBefore time.Time,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Command{}).
		Where("status = ? AND created_at < ?", models.CommandOpen, openedBefore).
		Where("NOT EXISTS (SELECT 1 FROM command_items ci WHERE ci.command_id = commands.id)").
		Updates(map[string]any{
			"status":      models.CommandCanceled,
			"canceled_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// Compile-time check
var _ checkout.Repository = (*CheckoutGormRepository)(nil)
