package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	ucBootstrap "github.com/BruksfildServices01/studio-scheduler/internal/usecase/bootstrap"
)

type MeHandler struct {
	db        *gorm.DB
	bootstrap *ucBootstrap.Bootstrap
	log       *logrus.Logger
}

func NewMeHandler(db *gorm.DB, bootstrap *ucBootstrap.Bootstrap, log *logrus.Logger) *MeHandler {
	return &MeHandler{db: db, bootstrap: bootstrap, log: log}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Studio").
		Where("id = ? AND studio_id = ?", t.UserID, t.StudioID).
		First(&user).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Usuário não encontrado.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"studio": user.Studio,
	})
}

// Bootstrap devolve o pacote inicial da sessão; dentro da janela de sync vem do cache.
func (h *MeHandler) Bootstrap(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	b, err := h.bootstrap.Execute(c.Request.Context(), t)
	if err != nil {
		respondError(c, h.log, "bootstrap", "Bootstrap", err)
		return
	}
	c.JSON(http.StatusOK, b)
}
