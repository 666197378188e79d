package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/storage"
)

// AvatarUploader grava a foto já convertida e devolve a URL pública.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, studioID, professionalID uint, raw []byte) (string, error)
}

type ProfessionalHandler struct {
	db      *gorm.DB
	avatars AvatarUploader
	cache   Invalidator
	log     *logrus.Logger
}

func NewProfessionalHandler(db *gorm.DB, avatars AvatarUploader, cache Invalidator, log *logrus.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{db: db, avatars: avatars, cache: cache, log: log}
}

type CreateProfessionalRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Phone       string `json:"phone"`
	Role        string `json:"role" binding:"omitempty,oneof=manager reception professional"`
	JobTitle    string `json:"job_title"`
	Schedulable *bool  `json:"schedulable"`
}

type UpdateProfessionalRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	JobTitle    *string `json:"job_title,omitempty"`
	Role        *string `json:"role,omitempty" binding:"omitempty,oneof=manager reception professional"`
	Schedulable *bool   `json:"schedulable,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// List devolve a equipe ativa na ordem das colunas da agenda.
func (h *ProfessionalHandler) List(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var users []models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("studio_id = ? AND active = ?", t.StudioID, true).
		Order("name ASC").
		Find(&users).Error; err != nil {
		httperr.Internal(c, "failed_to_list_professionals", "Erro ao listar equipe.")
		return
	}

	out := make([]dto.ProfessionalDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.FromProfessional(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProfessionalHandler) Create(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var req CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Erro ao processar a senha.")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleProfessional
	}
	schedulable := role == models.RoleProfessional
	if req.Schedulable != nil {
		schedulable = *req.Schedulable
	}

	user := models.User{
		StudioID:     t.StudioID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         role,
		JobTitle:     req.JobTitle,
		Schedulable:  schedulable,
		Active:       true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Conflict(c, "email_already_exists", "Este e-mail já está cadastrado.")
			return
		}
		httperr.Internal(c, "failed_to_create_professional", "Erro ao cadastrar profissional.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), t.StudioID)

	httpresp.Created(c, dto.FromProfessional(user))
}

func (h *ProfessionalHandler) find(c *gin.Context) (*models.User, bool) {
	t, ok := tenantOf(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND studio_id = ?", id, t.StudioID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "professional_not_found", "Profissional não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_professional", "Erro ao buscar profissional.")
		return nil, false
	}
	return &user, true
}

func (h *ProfessionalHandler) Update(c *gin.Context) {
	user, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	// o dono não perde o papel por aqui
	if user.Role == models.RoleOwner && (req.Role != nil || (req.Active != nil && !*req.Active)) {
		httperr.Forbidden(c, "owner_immutable", "O dono do studio não pode ser alterado por aqui.")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.JobTitle != nil {
		user.JobTitle = *req.JobTitle
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Schedulable != nil {
		user.Schedulable = *req.Schedulable
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.db.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_professional", "Erro ao salvar profissional.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), user.StudioID)

	c.JSON(http.StatusOK, dto.FromProfessional(*user))
}

// UploadAvatar recebe a foto (multipart "avatar"), converte para WebP e grava no bucket.
func (h *ProfessionalHandler) UploadAvatar(c *gin.Context) {
	user, ok := h.find(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		httperr.BadRequest(c, "missing_avatar", "Envie a imagem no campo avatar.")
		return
	}
	if fh.Size > storage.MaxAvatarSize {
		httperr.BadRequest(c, "image_too_big", "Imagem muito grande (máx. 5 MB).")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Não foi possível ler a imagem.")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, storage.MaxAvatarSize+1))
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Não foi possível ler a imagem.")
		return
	}

	url, err := h.avatars.UploadAvatar(c.Request.Context(), user.StudioID, user.ID, raw)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		httperr.Write(c, http.StatusServiceUnavailable, "storage_disabled", "Upload de imagens não configurado.")
		return
	case errors.Is(err, storage.ErrImageTooBig):
		httperr.BadRequest(c, "image_too_big", "Imagem muito grande (máx. 5 MB).")
		return
	case errors.Is(err, storage.ErrInvalidImage):
		httperr.BadRequest(c, "invalid_image", "Formato de imagem não suportado.")
		return
	case err != nil:
		logging.LogError(h.log, "professional", "UploadAvatar", "upload", user.ID, err)
		httperr.Internal(c, "failed_to_upload_avatar", "Erro ao enviar a imagem.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(user).
		Update("avatar_url", url).Error; err != nil {
		httperr.Internal(c, "failed_to_update_professional", "Erro ao salvar profissional.")
		return
	}
	user.AvatarURL = url
	h.cache.Invalidate(c.Request.Context(), user.StudioID)

	c.JSON(http.StatusOK, dto.FromProfessional(*user))
}
