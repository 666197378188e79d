package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	"github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/middleware"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorRecorder(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, logging.Discard(), "test", "respond", err)
	return w
}

func TestRespondErrorMapsBusinessCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{checkout.ErrFinishInFlight, http.StatusConflict},
		{checkout.ErrBalanceRemaining, http.StatusUnprocessableEntity},
		{httperr.ErrBusiness("appointment_not_found"), http.StatusNotFound},
		{httperr.ErrBusiness("time_conflict"), http.StatusConflict},
		{httperr.ErrBusiness("something_unmapped"), http.StatusBadRequest},
		{tenant.ErrMissing, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := errorRecorder(tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), "error_code")
	}
}

func TestRespondErrorKeepsValidationField(t *testing.T) {
	w := errorRecorder(appointment.ValidationError{Field: "client_id", Code: "required"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"client_id"`)
	assert.Contains(t, w.Body.String(), "Selecione o cliente.")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3,5", "8"})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 5, 8}, ids)

	_, err = parseIDs([]string{"3,x"})
	assert.Error(t, err)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}

func TestFillPaymentMethodValidatesCreditBrackets(t *testing.T) {
	pm := models.PaymentMethod{StudioID: 1, Active: true}
	err := fillPaymentMethod(&pm, PaymentMethodRequest{
		Category:        "credit",
		Name:            "Crédito",
		MaxInstallments: 6,
		CreditRates: []checkout.Bracket{
			{From: 1, To: 1, Rate: decimal.RequireFromString("3")},
			{From: 2, To: 6, Rate: decimal.RequireFromString("4.5")},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pm.CreditRates)

	// faixas não cobrem as 10 parcelas
	err = fillPaymentMethod(&pm, PaymentMethodRequest{
		Category:        "credit",
		Name:            "Crédito",
		MaxInstallments: 10,
		CreditRates:     []checkout.Bracket{{From: 1, To: 6, Rate: decimal.RequireFromString("4")}},
	})
	assert.Error(t, err)

	err = fillPaymentMethod(&pm, PaymentMethodRequest{Category: "pix", Name: "Pix"})
	require.NoError(t, err)
	assert.Equal(t, 1, pm.MaxInstallments)
	assert.Nil(t, pm.CreditRates)
}

func TestRegisterRejectsBadEmailDomainBeforeTouchingDB(t *testing.T) {
	h := NewAuthHandler(nil, &config.Config{JWTSecret: "x"})
	h.checkEmail = func(string) bool { return false }

	r := gin.New()
	r.POST("/register", h.Register)

	body := `{"studio_name":"Bela","studio_slug":"bela","name":"Ana","email":"ana@nope.invalid","password":"123456"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_email_domain")
}

func TestLoginRequiresBody(t *testing.T) {
	h := NewAuthHandler(nil, &config.Config{JWTSecret: "x"})
	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func withTenant(t tenant.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextTenant, t)
		c.Next()
	}
}

func TestCommandFinishValidatesBodyAndID(t *testing.T) {
	h := NewCommandHandler(nil, nil, nil, nil, nil, nil, logging.Discard())
	tc, _ := tenant.New(1, 2, models.RoleReception)

	r := gin.New()
	r.POST("/commands/:id/finish", withTenant(tc), h.Finish)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/commands/abc/finish", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_id")

	// sem entradas o binding já recusa
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/commands/9/finish", bytes.NewBufferString(`{"entries":[]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestHandlersRequireTenant(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil, nil, nil, logging.Discard())
	r := gin.New()
	r.GET("/appointments", h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments?from=2026-03-02&to=2026-03-03", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "tenant_required")
}

func TestAppointmentListRequiresRange(t *testing.T) {
	h := NewAppointmentHandler(nil, nil, nil, nil, nil, nil, logging.Discard())
	tc, _ := tenant.New(1, 2, models.RoleOwner)
	r := gin.New()
	r.GET("/appointments", withTenant(tc), h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments?from=2026-03-02", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing_range")
}
