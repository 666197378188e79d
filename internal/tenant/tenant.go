// Package tenant carries the active studio explicitly through every data call.
package tenant

import (
	"errors"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

var ErrMissing = errors.New("tenant: studio id required")

// Context é a capacidade de acesso a um studio: toda consulta recebe um.
type Context struct {
	StudioID uint
	UserID   uint
	Role     string
}

func New(studioID, userID uint, role string) (Context, error) {
	if studioID == 0 {
		return Context{}, ErrMissing
	}
	return Context{StudioID: studioID, UserID: userID, Role: role}, nil
}

func (c Context) Valid() bool {
	return c.StudioID != 0
}

// CanManage indica papéis com acesso a financeiro e configurações.
func (c Context) CanManage() bool {
	return c.Role == models.RoleOwner || c.Role == models.RoleManager
}

// UserRef devolve o ponteiro usado nos registros de auditoria.
func (c Context) UserRef() *uint {
	if c.UserID == 0 {
		return nil
	}
	id := c.UserID
	return &id
}
