package appointment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

func uptr(v uint) *uint { return &v }

func day(h, m int) time.Time {
	return time.Date(2026, 10, 14, h, m, 0, 0, time.UTC)
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		ProfessionalID: 1,
		ClientID:       uptr(2),
		ServiceIDs:     []uint{3},
		Start:          day(9, 30),
		End:            day(10, 0),
		Status:         StatusScheduled,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name  string
		edit  func(d *Draft)
		field string
	}{
		{"sem profissional", func(d *Draft) { d.ProfessionalID = 0 }, "professional_id"},
		{"sem cliente", func(d *Draft) { d.ClientID = nil }, "client_id"},
		{"sem serviço", func(d *Draft) { d.ServiceIDs = nil }, "service_ids"},
		{"fim igual ao início", func(d *Draft) { d.End = d.Start }, "end_time"},
		{"fim antes do início", func(d *Draft) { d.End = d.Start.Add(-time.Minute) }, "end_time"},
		{"bloqueio com cliente", func(d *Draft) { d.Status = StatusBlocked }, "client_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.edit(&d)

			err := d.Validate()
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestBlockDraftNeedsNoClientOrService(t *testing.T) {
	d := Draft{ProfessionalID: 1, Start: day(12, 0), End: day(13, 0), Status: StatusBlocked}
	assert.NoError(t, d.Validate())
}

func TestWithDurationDerivesEnd(t *testing.T) {
	d := Draft{Start: day(9, 30)}.WithDuration(30)
	assert.Equal(t, day(10, 0), d.End)

	explicit := Draft{Start: day(9, 30), End: day(11, 0)}.WithDuration(30)
	assert.Equal(t, day(11, 0), explicit.End)
}

func TestComposeSumsAndSnapshots(t *testing.T) {
	services := []models.Service{
		{ID: 1, Name: "Corte", Price: decimal.RequireFromString("50.00"), DurationMin: 30, Color: "#f00"},
		{ID: 2, Name: "Escova", Price: decimal.RequireFromString("35.50"), DurationMin: 45, Color: "#0f0"},
	}

	c, err := Compose(services)
	require.NoError(t, err)
	assert.Equal(t, "Corte + Escova", c.Name)
	assert.True(t, c.Price.Equal(decimal.RequireFromString("85.50")))
	assert.Equal(t, 75, c.DurationMin)
	assert.Equal(t, "#f00", c.Color)

	ap := &models.Appointment{}
	require.NoError(t, c.ApplyTo(ap))

	// renomear o serviço depois não altera o histórico
	services[0].Name = "Corte novo"

	snap, err := Constituents(ap)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "Corte", snap[0].Name)
	assert.Equal(t, "Corte + Escova", ap.ServiceName)
	assert.Equal(t, 75, ap.ServiceDuration)
}

func TestComposeRejectsInvalidServices(t *testing.T) {
	_, err := Compose(nil)
	assert.Error(t, err)

	_, err = Compose([]models.Service{{Name: "x", Price: decimal.NewFromInt(-1), DurationMin: 10}})
	assert.Error(t, err)

	_, err = Compose([]models.Service{{Name: "x", Price: decimal.NewFromInt(10)}})
	assert.Error(t, err)
}

func TestApplyStatusAllowsAnyTransition(t *testing.T) {
	now := day(15, 0)
	ap := &models.Appointment{ClientID: uptr(1), Status: string(StatusCompleted)}

	for _, st := range AllStatuses() {
		if st == StatusBlocked {
			continue
		}
		require.NoError(t, ApplyStatus(ap, st, now))
		assert.Equal(t, string(st), ap.Status)
	}

	require.NoError(t, ApplyStatus(ap, StatusCompleted, now))
	require.NotNil(t, ap.CompletedAt)
	assert.Nil(t, ap.CancelledAt)

	require.NoError(t, ApplyStatus(ap, StatusCanceled, now))
	require.NotNil(t, ap.CancelledAt)
	assert.Nil(t, ap.CompletedAt)

	assert.Error(t, ApplyStatus(ap, StatusBlocked, now))
}

func TestRecommendedOrder(t *testing.T) {
	chain := []Status{StatusScheduled, StatusConfirmed, StatusArrived, StatusInProgress, StatusCompleted}
	for i := 0; i < len(chain)-1; i++ {
		next, ok := RecommendedNext(chain[i])
		require.True(t, ok)
		assert.Equal(t, chain[i+1], next)
	}
	_, ok := RecommendedNext(StatusCompleted)
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" No_Show ")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, st)

	_, err = ParseStatus("deleted")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestWorkingHoursAndSlots(t *testing.T) {
	wh := &models.WorkingHours{
		Active:     true,
		StartTime:  "09:00",
		EndTime:    "12:00",
		LunchStart: "10:00",
		LunchEnd:   "10:30",
	}

	assert.True(t, IsWithinWorkingHours(wh, day(9, 0), day(10, 0)))
	assert.False(t, IsWithinWorkingHours(wh, day(9, 30), day(10, 15)))
	assert.False(t, IsWithinWorkingHours(wh, day(11, 30), day(12, 30)))
	assert.False(t, IsWithinWorkingHours(&models.WorkingHours{}, day(9, 0), day(10, 0)))

	shift, ok := ShiftOn(wh, day(0, 0))
	require.True(t, ok)

	busy := []models.Appointment{
		{StartTime: day(11, 0), EndTime: day(11, 30), Status: string(StatusConfirmed)},
		{StartTime: day(9, 0), EndTime: day(9, 30), Status: string(StatusCanceled)},
	}

	slots := FreeSlots(shift, 30*time.Minute, 30*time.Minute, busy, time.Time{})
	assert.Equal(t, []TimeSlot{
		{Start: "09:00", End: "09:30"},
		{Start: "09:30", End: "10:00"},
		{Start: "10:30", End: "11:00"},
		{Start: "11:30", End: "12:00"},
	}, slots)

	late := FreeSlots(shift, 30*time.Minute, 30*time.Minute, nil, day(11, 0))
	assert.Equal(t, []TimeSlot{{Start: "11:00", End: "11:30"}, {Start: "11:30", End: "12:00"}}, late)
}
