package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// Recompute refaz subtotais e o total da comanda a partir dos itens.
func Recompute(cmd *models.Command) {
	total := decimal.Zero
	for i := range cmd.Items {
		it := &cmd.Items[i]
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		total = total.Add(it.Subtotal)
	}
	cmd.Total = total
}

func IsOpen(cmd *models.Command) bool {
	return cmd.Status == models.CommandOpen
}

// AddItem inclui o item e recalcula o total. Só comandas abertas.
func AddItem(cmd *models.Command, item models.CommandItem) error {
	if !IsOpen(cmd) {
		return ErrCommandClosed
	}
	if item.UnitPrice.IsNegative() || item.Quantity < 0 {
		return ErrInvalidAmount
	}
	cmd.Items = append(cmd.Items, item)
	Recompute(cmd)
	return nil
}

func RemoveItem(cmd *models.Command, itemID uint) (models.CommandItem, error) {
	if !IsOpen(cmd) {
		return models.CommandItem{}, ErrCommandClosed
	}
	for i, it := range cmd.Items {
		if it.ID == itemID {
			cmd.Items = append(cmd.Items[:i], cmd.Items[i+1:]...)
			Recompute(cmd)
			return it, nil
		}
	}
	return models.CommandItem{}, ErrItemNotFound
}

// MarkPaid é terminal e acontece uma única vez.
func MarkPaid(cmd *models.Command, now time.Time) error {
	if !IsOpen(cmd) {
		return ErrCommandClosed
	}
	cmd.Status = models.CommandPaid
	cmd.PaidAt = &now
	return nil
}

// Cancel é o soft delete da comanda.
func Cancel(cmd *models.Command, now time.Time) error {
	if !IsOpen(cmd) {
		return ErrCommandClosed
	}
	cmd.Status = models.CommandCanceled
	cmd.CanceledAt = &now
	return nil
}
