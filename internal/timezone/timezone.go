// Package timezone resolve o fuso de cada studio.
package timezone

import (
	"sync"
	"time"
	_ "time/tzdata" // containers sem zoneinfo
)

const DefaultTimezone = "America/Sao_Paulo"

const dateLayout = "2006-01-02"

// cache de *time.Location por nome; LoadLocation relê o tzdata a cada chamada
var cache sync.Map

func load(tz string) (*time.Location, bool) {
	if tz == "" {
		return nil, false
	}
	if loc, ok := cache.Load(tz); ok {
		return loc.(*time.Location), true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, false
	}
	cache.Store(tz, loc)
	return loc, true
}

func IsValid(tz string) bool {
	_, ok := load(tz)
	return ok
}

// Location devolve o fuso pedido, o padrão do produto quando ele é
// inválido e UTC em último caso.
func Location(tz string) *time.Location {
	if loc, ok := load(tz); ok {
		return loc
	}
	if loc, ok := load(DefaultTimezone); ok {
		return loc
	}
	return time.UTC
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDate lê AAAA-MM-DD como meia-noite no fuso informado.
func ParseDate(date, tz string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, Location(tz))
}
