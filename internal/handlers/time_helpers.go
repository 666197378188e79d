package handlers

import (
	"strconv"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

// locationFromStudio resolve o fuso oficial do studio.
func locationFromStudio(studio *models.Studio) *time.Location {
	if studio == nil {
		return timezone.Location("")
	}
	return timezone.Location(studio.Timezone)
}

func parseDateInStudio(studio *models.Studio, dateStr string) (time.Time, error) {
	if studio == nil {
		return timezone.ParseDate(dateStr, "")
	}
	return timezone.ParseDate(dateStr, studio.Timezone)
}

// parseInstant aceita RFC3339 ou só a data (meia-noite no fuso do studio).
func parseInstant(studio *models.Studio, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return parseDateInStudio(studio, s)
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	return uint(v), err
}

// isHHMM valida horários de expediente no formato 15:04.
func isHHMM(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
