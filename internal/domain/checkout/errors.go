package checkout

import (
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
)

var (
	ErrUnknownMethod       = httperr.ErrBusiness("payment_method_not_found")
	ErrInvalidInstallments = httperr.ErrBusiness("invalid_installments")
	ErrInvalidAmount       = httperr.ErrBusiness("invalid_amount")
	ErrEntryNotFound       = httperr.ErrBusiness("payment_entry_not_found")
	ErrItemNotFound        = httperr.ErrBusiness("command_item_not_found")
	ErrBalanceRemaining    = httperr.ErrBusiness("balance_remaining")
	ErrNoEntries           = httperr.ErrBusiness("no_payment_entries")
	ErrSealed              = httperr.ErrBusiness("ledger_sealed")
	ErrFinishInFlight      = httperr.ErrBusiness("finish_in_progress")
	ErrCommandClosed       = httperr.ErrBusiness("command_not_open")
	ErrEmptyCommand        = httperr.ErrBusiness("command_empty")
)
