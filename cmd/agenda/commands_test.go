package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

func TestParsePayment(t *testing.T) {
	cases := []struct {
		in           string
		method       uint
		amount       string
		installments int
		wantErr      bool
	}{
		{in: "3", method: 3, amount: "0", installments: 1},
		{in: "3:49,90", method: 3, amount: "49.9", installments: 1},
		{in: "4:120:3", method: 4, amount: "120", installments: 3},
		{in: "0:10", wantErr: true},
		{in: "x:10", wantErr: true},
		{in: "3:-5", wantErr: true},
		{in: "3:10:0", wantErr: true},
		{in: "3:10:2:9", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			p, err := parsePayment(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.method, p.MethodID)
			assert.True(t, p.Amount.Equal(decimal.RequireFromString(tc.amount)), p.Amount.String())
			assert.Equal(t, tc.installments, p.Installments)
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("1, 2,3")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDList("1,a")
	assert.Error(t, err)
}

func TestSessionRoundTripAndWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	now := time.Now()

	s := &session{
		BaseURL:   "http://api",
		Token:     "tok",
		Tenant:    tenant.Context{StudioID: 3, UserID: 7, Role: models.RoleOwner},
		LastSync:  now,
		Bootstrap: &dto.Bootstrap{Studio: models.Studio{Name: "Studio A"}},
	}
	require.NoError(t, s.save(path))

	loaded, err := loadSession(path)
	require.NoError(t, err)
	assert.Equal(t, s.Tenant, loaded.Tenant)
	assert.True(t, loaded.fresh(now.Add(30*time.Second)))
	assert.False(t, loaded.fresh(now.Add(2*time.Minute)))

	// trocar de studio descarta o cache do anterior
	loaded.switchTenant(tenant.Context{StudioID: 4, UserID: 7})
	assert.Nil(t, loaded.Bootstrap)
	assert.False(t, loaded.fresh(now))
}

func TestLoadSessionMissing(t *testing.T) {
	_, err := loadSession(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, errNoSession)
}

// ======================================================
// END TO END
// ======================================================

func writeSession(t *testing.T, baseURL string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	t.Setenv("STUDIO_AGENDA_SESSION", path)

	s := &session{
		BaseURL:  baseURL,
		Token:    "tok",
		Tenant:   tenant.Context{StudioID: 3, UserID: 7, Role: models.RoleOwner},
		LastSync: time.Now(),
		Bootstrap: &dto.Bootstrap{
			Studio: models.Studio{Name: "Studio A", Timezone: "UTC", DayStartHour: 8, DayEndHour: 20, SlotMinutes: 15},
			Professionals: []dto.ProfessionalDTO{
				{ID: 1, Name: "Bia"},
			},
			PaymentMethods: []models.PaymentMethod{
				{ID: 1, Name: "Pix", Category: "pix", Active: true},
				{ID: 2, Name: "Dinheiro", Category: "cash", Active: true},
			},
		},
	}
	require.NoError(t, s.save(path))
}

func TestSyncWithinWindowSkipsServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("chamada inesperada: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()
	writeSession(t, srv.URL)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"sync"}, &out))
	assert.Contains(t, out.String(), "ainda válido")
}

func TestViewRendersFetchedDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/me/appointments", r.URL.Path)
		assert.Equal(t, "3", r.Header.Get("X-Studio-ID"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []dto.AppointmentDTO{{
				ID:             11,
				ProfessionalID: 1,
				ClientName:     "Ana",
				StartTime:      at(9, 0),
				EndTime:        at(9, 45),
				Status:         "confirmed",
			}},
			"total": 1,
		})
	}))
	defer srv.Close()
	writeSession(t, srv.URL)

	var out bytes.Buffer
	err := run(context.Background(), []string{"view", "-view", "professional", "-date", "2026-03-10"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "09:00 │#11 Ana")
}

func TestCheckoutSplitsAndFinishesOnce(t *testing.T) {
	finishCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/me/commands/5":
			_ = json.NewEncoder(w).Encode(models.Command{ID: 5, Status: "open", Total: decimal.RequireFromString("100")})

		case r.Method == http.MethodPost && r.URL.Path == "/api/me/commands/5/finish":
			finishCalls++
			var body dto.FinishCommandDTO
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) || !assert.Len(t, body.Entries, 2) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			assert.True(t, body.Entries[0].Amount.Equal(decimal.RequireFromString("60")))
			// o segundo pagamento sem valor leva o restante
			assert.True(t, body.Entries[1].Amount.Equal(decimal.RequireFromString("40")))
			assert.NotEmpty(t, body.Entries[0].IdempotencyKey)
			assert.NotEqual(t, body.Entries[0].IdempotencyKey, body.Entries[1].IdempotencyKey)

			_ = json.NewEncoder(w).Encode(dto.FinishResultDTO{
				CommandID: 5,
				Status:    "paid",
				Gross:     decimal.RequireFromString("100"),
				Fee:       decimal.Zero,
				Net:       decimal.RequireFromString("100"),
			})

		default:
			t.Errorf("chamada inesperada: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	writeSession(t, srv.URL)

	var out bytes.Buffer
	err := run(context.Background(), []string{"checkout", "-command", "5", "-pay", "1:60", "-pay", "2"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, finishCalls)
	assert.Contains(t, out.String(), "comanda 5 paid")
}

func TestCheckoutRefusesOpenBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/me/commands/5" {
			t.Errorf("fechamento não deveria ser enviado: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(models.Command{ID: 5, Status: "open", Total: decimal.RequireFromString("100")})
	}))
	defer srv.Close()
	writeSession(t, srv.URL)

	err := run(context.Background(), []string{"checkout", "-command", "5", "-pay", "1:30"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "70.00")
}

func TestRunWithoutSession(t *testing.T) {
	t.Setenv("STUDIO_AGENDA_SESSION", filepath.Join(t.TempDir(), "none.json"))

	err := run(context.Background(), []string{"view"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errNoSession)
}

func TestNewRejectsOffGridStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("chamada inesperada: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()
	writeSession(t, srv.URL)

	err := run(context.Background(), []string{"new", "-at", "2026-03-10T09:37", "-professional", "1", "-block", "-minutes", "30"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fora da grade de 15 minutos")
	assert.Contains(t, err.Error(), "09:30")
}
