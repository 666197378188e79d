package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

// syncWindow evita re-sincronizar o bootstrap a cada comando.
const syncWindow = 60 * time.Second

var errNoSession = errors.New("sessão não encontrada: rode `agenda login` primeiro")

// session é o único estado persistido do cliente. Perder o arquivo só
// obriga a logar e sincronizar de novo.
type session struct {
	BaseURL   string         `json:"base_url"`
	Token     string         `json:"token"`
	Tenant    tenant.Context `json:"tenant"`
	LastSync  time.Time      `json:"last_sync"`
	Bootstrap *dto.Bootstrap `json:"bootstrap,omitempty"`
}

func sessionPath() (string, error) {
	if p := os.Getenv("STUDIO_AGENDA_SESSION"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studio-agenda", "session.json"), nil
}

func loadSession(path string) (*session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, err
	}

	var s session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("sessão corrompida (%s): %w", path, err)
	}
	if s.Token == "" || !s.Tenant.Valid() {
		return nil, errNoSession
	}
	return &s, nil
}

// save grava num arquivo temporário e renomeia, para nunca deixar meia sessão.
func (s *session) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// fresh diz se o bootstrap guardado ainda vale.
func (s *session) fresh(now time.Time) bool {
	return s.Bootstrap != nil && !s.LastSync.IsZero() && now.Sub(s.LastSync) < syncWindow
}

// switchTenant troca o studio ativo e invalida o cache do anterior.
func (s *session) switchTenant(t tenant.Context) {
	if s.Tenant.StudioID != t.StudioID {
		s.Bootstrap = nil
		s.LastSync = time.Time{}
	}
	s.Tenant = t
}
