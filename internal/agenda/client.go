package agenda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

// TenantHeader leva o studio ativo; a API confere com o token.
const TenantHeader = "X-Studio-ID"

// RemoteError é a resposta {error_code, message} da API.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Code)
}

// IsConflict indica violação de unicidade ou trava concorrente.
func (e *RemoteError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

// Client fala com a API do studio. Implementa Backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

var _ Backend = (*Client)(nil)

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, t *tenant.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if t != nil {
		req.Header.Set(TenantHeader, strconv.FormatUint(uint64(t.StudioID), 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("agenda: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		re := &RemoteError{Status: resp.StatusCode}
		var payload struct {
			Code    string `json:"error_code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Code != "" {
			re.Code, re.Message = payload.Code, payload.Message
		} else {
			re.Code = strings.TrimSpace(string(raw))
		}
		return re
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// ======================================================
// AUTH / BOOTSTRAP
// ======================================================

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login devolve o token e o contexto de tenant da sessão.
func (c *Client) Login(ctx context.Context, email, password string) (string, tenant.Context, error) {
	var out loginResponse
	err := c.do(ctx, nil, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", tenant.Context{}, err
	}

	tc, err := tenant.New(out.User.StudioID, out.User.ID, out.User.Role)
	if err != nil {
		return "", tenant.Context{}, err
	}
	c.token = out.Token
	return out.Token, tc, nil
}

func (c *Client) Bootstrap(ctx context.Context, t tenant.Context) (dto.Bootstrap, error) {
	var out dto.Bootstrap
	err := c.do(ctx, &t, http.MethodGet, "/api/me/bootstrap", nil, nil, &out)
	return out, err
}

// ======================================================
// APPOINTMENTS (Backend)
// ======================================================

func (c *Client) List(ctx context.Context, t tenant.Context, from, to time.Time) ([]Appointment, error) {
	params := url.Values{}
	params.Set("from", from.Format(time.RFC3339))
	params.Set("to", to.Format(time.RFC3339))

	var out struct {
		Data []Appointment `json:"data"`
	}
	if err := c.do(ctx, &t, http.MethodGet, "/api/me/appointments", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func writeBody(a Appointment) dto.AppointmentWriteDTO {
	body := dto.AppointmentWriteDTO{
		ProfessionalID: a.ProfessionalID,
		ClientID:       a.ClientID,
		ServiceIDs:     a.ServiceIDs,
		StartTime:      a.StartTime,
		Status:         a.Status,
		Notes:          a.Notes,
	}
	if !a.EndTime.IsZero() {
		end := a.EndTime
		body.EndTime = &end
	}
	return body
}

func (c *Client) Create(ctx context.Context, t tenant.Context, a Appointment) (Appointment, error) {
	var out Appointment
	err := c.do(ctx, &t, http.MethodPost, "/api/me/appointments", nil, writeBody(a), &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, t tenant.Context, a Appointment) (Appointment, error) {
	var out Appointment
	path := fmt.Sprintf("/api/me/appointments/%d", a.ID)
	err := c.do(ctx, &t, http.MethodPut, path, nil, writeBody(a), &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, t tenant.Context, id int64) error {
	return c.do(ctx, &t, http.MethodDelete, fmt.Sprintf("/api/me/appointments/%d", id), nil, nil, nil)
}

func (c *Client) SetStatus(ctx context.Context, t tenant.Context, id int64, status domain.Status) (Appointment, error) {
	var out Appointment
	path := fmt.Sprintf("/api/me/appointments/%d/status", id)
	err := c.do(ctx, &t, http.MethodPatch, path, nil, dto.StatusDTO{Status: string(status)}, &out)
	return out, err
}

// ======================================================
// COMMANDS
// ======================================================

func (c *Client) OpenCommand(ctx context.Context, t tenant.Context, in dto.OpenCommandDTO) (models.Command, error) {
	var out models.Command
	err := c.do(ctx, &t, http.MethodPost, "/api/me/commands", nil, in, &out)
	return out, err
}

func (c *Client) GetCommand(ctx context.Context, t tenant.Context, id uint) (models.Command, error) {
	var out models.Command
	err := c.do(ctx, &t, http.MethodGet, fmt.Sprintf("/api/me/commands/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) AddCommandItem(ctx context.Context, t tenant.Context, id uint, in dto.CommandItemDTO) (models.Command, error) {
	var out models.Command
	err := c.do(ctx, &t, http.MethodPost, fmt.Sprintf("/api/me/commands/%d/items", id), nil, in, &out)
	return out, err
}

func (c *Client) FinishCommand(ctx context.Context, t tenant.Context, id uint, in dto.FinishCommandDTO) (dto.FinishResultDTO, error) {
	var out dto.FinishResultDTO
	err := c.do(ctx, &t, http.MethodPost, fmt.Sprintf("/api/me/commands/%d/finish", id), nil, in, &out)
	return out, err
}
