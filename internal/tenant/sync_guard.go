package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// SyncGuard guarda o último sync de cada studio e o payload sincronizado.
// Dentro da janela o chamador reaproveita o cache em vez de resincronizar.
type SyncGuard struct {
	rdb    *redis.Client
	window time.Duration
	now    func() time.Time
}

func NewSyncGuard(rdb *redis.Client, window time.Duration) *SyncGuard {
	return &SyncGuard{rdb: rdb, window: window, now: time.Now}
}

func syncKey(studioID uint) string {
	return fmt.Sprintf("studio:%d:last_sync", studioID)
}

func payloadKey(studioID uint) string {
	return fmt.Sprintf("studio:%d:bootstrap", studioID)
}

// Fresh reporta se o último sync ainda está dentro da janela, junto com o instante dele.
func (g *SyncGuard) Fresh(ctx context.Context, studioID uint) (bool, time.Time, error) {
	if g == nil || g.rdb == nil {
		return false, time.Time{}, nil
	}

	raw, err := g.rdb.Get(ctx, syncKey(studioID)).Result()
	if err == redis.Nil {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, fmt.Errorf("tenant: read last sync: %w", err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, time.Time{}, nil
	}
	last := time.Unix(0, unix)

	return g.now().Sub(last) < g.window, last, nil
}

// Load devolve o payload em cache, se houver.
func (g *SyncGuard) Load(ctx context.Context, studioID uint, dest any) (bool, error) {
	if g == nil || g.rdb == nil {
		return false, nil
	}

	raw, err := g.rdb.Get(ctx, payloadKey(studioID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("tenant: read bootstrap: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Mark grava o payload e o instante do sync. Ambos expiram com a janela.
func (g *SyncGuard) Mark(ctx context.Context, studioID uint, payload any) (time.Time, error) {
	if g == nil || g.rdb == nil {
		return time.Now(), nil
	}
	now := g.now()

	data, err := json.Marshal(payload)
	if err != nil {
		return now, fmt.Errorf("tenant: encode bootstrap: %w", err)
	}

	pipe := g.rdb.TxPipeline()
	pipe.Set(ctx, payloadKey(studioID), data, g.window)
	pipe.Set(ctx, syncKey(studioID), strconv.FormatInt(now.UnixNano(), 10), g.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return now, fmt.Errorf("tenant: mark sync: %w", err)
	}
	return now, nil
}

// Invalidate força o próximo sync a ler do banco (após mudanças de configuração).
func (g *SyncGuard) Invalidate(ctx context.Context, studioID uint) error {
	if g == nil || g.rdb == nil {
		return nil
	}
	return g.rdb.Del(ctx, syncKey(studioID), payloadKey(studioID)).Err()
}
