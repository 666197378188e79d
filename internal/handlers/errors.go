package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	appointmentDomain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/middleware"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

type businessMessage struct {
	status  int
	message string
}

// businessMessages traduz os códigos de negócio para o status HTTP e a mensagem exibida.
var businessMessages = map[string]businessMessage{
	"studio_not_found":       {http.StatusNotFound, "Studio não encontrado."},
	"professional_not_found": {http.StatusNotFound, "Profissional não encontrado."},
	"client_not_found":       {http.StatusNotFound, "Cliente não encontrado."},
	"service_not_found":      {http.StatusNotFound, "Serviço não encontrado."},
	"product_not_found":      {http.StatusNotFound, "Produto não encontrado."},
	"appointment_not_found":  {http.StatusNotFound, "Agendamento não encontrado."},
	"command_not_found":      {http.StatusNotFound, "Comanda não encontrada."},
	"command_item_not_found": {http.StatusNotFound, "Item não encontrado na comanda."},

	"time_conflict":         {http.StatusConflict, "Conflito de horário."},
	"finish_in_progress":    {http.StatusConflict, "Esta comanda já está sendo finalizada."},
	"command_not_open":      {http.StatusConflict, "A comanda não está mais aberta."},
	"ledger_sealed":         {http.StatusConflict, "Pagamento já finalizado."},
	"invalid_status":        {http.StatusBadRequest, "Status inválido."},
	"invalid_range":         {http.StatusBadRequest, "Período inválido."},
	"range_too_large":       {http.StatusBadRequest, "Período muito longo."},
	"invalid_view":          {http.StatusBadRequest, "Visão de agenda inválida."},
	"invalid_date":          {http.StatusBadRequest, "Data inválida."},
	"invalid_date_or_time":  {http.StatusBadRequest, "Data ou hora inválida."},
	"too_soon":              {http.StatusBadRequest, "Horário inválido."},
	"outside_working_hours": {http.StatusBadRequest, "Fora do horário de atendimento."},
	"invalid_item_kind":     {http.StatusBadRequest, "Tipo de item inválido."},
	"invalid_phone":         {http.StatusBadRequest, "Telefone inválido."},

	"payment_method_not_found":  {http.StatusBadRequest, "Forma de pagamento não encontrada."},
	"invalid_installments":      {http.StatusBadRequest, "Número de parcelas inválido."},
	"invalid_amount":            {http.StatusBadRequest, "Valor inválido."},
	"payment_entry_not_found":   {http.StatusNotFound, "Pagamento não encontrado."},
	"balance_remaining":         {http.StatusUnprocessableEntity, "Ainda há saldo a pagar."},
	"no_payment_entries":        {http.StatusUnprocessableEntity, "Informe ao menos um pagamento."},
	"command_empty":             {http.StatusUnprocessableEntity, "A comanda não tem itens."},
	"idempotency_key_required":  {http.StatusBadRequest, "Chave de idempotência obrigatória."},
	"duplicate_idempotency_key": {http.StatusBadRequest, "Chave de idempotência repetida no pedido."},
}

var validationMessages = map[string]string{
	"professional_id": "Selecione o profissional.",
	"client_id":       "Selecione o cliente.",
	"service_ids":     "Selecione ao menos um serviço válido.",
	"end_time":        "O término precisa ser depois do início.",
	"start_time":      "Informe o horário de início.",
	"status":          "Status inválido.",
}

// respondError é o ponto único de tradução de erros de use case para HTTP.
func respondError(c *gin.Context, log *logrus.Logger, module, fn string, err error) {
	if errors.Is(err, tenant.ErrMissing) {
		httperr.Unauthorized(c, "tenant_required", "Nenhum studio ativo na sessão.")
		return
	}

	var ve appointmentDomain.ValidationError
	if errors.As(err, &ve) {
		msg, ok := validationMessages[ve.Field]
		if !ok {
			msg = "Dados inválidos."
		}
		httperr.Invalid(c, ve.Field, ve.Code, msg)
		return
	}

	if code, ok := httperr.Code(err); ok {
		if bm, ok := businessMessages[code]; ok {
			httperr.Write(c, bm.status, code, bm.message)
			return
		}
		httperr.BadRequest(c, code, "Operação não permitida.")
		return
	}

	logging.LogError(log, module, fn, c.FullPath(), map[string]any{
		"request_id": c.GetString(httperr.RequestIDKey),
	}, err)
	httperr.Internal(c, "internal_error", "Erro interno. Tente novamente.")
}

// tenantOf devolve a capacidade gravada pelo middleware ou responde 401.
func tenantOf(c *gin.Context) (tenant.Context, bool) {
	t, ok := middleware.Tenant(c)
	if !ok {
		httperr.Unauthorized(c, "tenant_required", "Nenhum studio ativo na sessão.")
		return tenant.Context{}, false
	}
	return t, true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := parseUint(c.Param(name))
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return id, true
}
