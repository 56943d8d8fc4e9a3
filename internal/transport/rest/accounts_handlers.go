package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/accounts"
)

type accountsService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (domain.User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, in accounts.UpdateSettingsInput) (domain.User, error)
	UploadImage(ctx context.Context, userID uuid.UUID, kind accounts.ImageKind, filename, contentType string, r io.Reader) (domain.User, error)
	RemoveImage(ctx context.Context, userID uuid.UUID, kind accounts.ImageKind) (domain.User, error)
}

type AccountsHandler struct {
	svc accountsService
	log *slog.Logger
}

func NewAccountsHandler(svc accountsService, log *slog.Logger) *AccountsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AccountsHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.accounts")),
	}
}

type userResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Username       *string   `json:"username"`
	DisplayPicture *string   `json:"displayPicture"`
	Banner         *string   `json:"banner"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Username:       u.Username,
		DisplayPicture: u.DisplayPicture,
		Banner:         u.Banner,
		CreatedAt:      u.CreatedAt,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func (h *AccountsHandler) Register(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "Register"))

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.svc.Register(c.Request.Context(), accounts.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user), "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AccountsHandler) Login(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "Login"))

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user), "token": token})
}

func (h *AccountsHandler) GetSettings(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "GetSettings"))

	user, err := h.svc.GetSettings(c.Request.Context(), authedUserID(c))
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type updateSettingsRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (h *AccountsHandler) UpdateSettings(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "UpdateSettings"))

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.svc.UpdateSettings(c.Request.Context(), authedUserID(c), accounts.UpdateSettingsInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("settings updated", slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *AccountsHandler) UploadDisplayPicture(c *gin.Context) {
	h.uploadImage(c, accounts.ImageDisplayPicture)
}

func (h *AccountsHandler) UploadBanner(c *gin.Context) {
	h.uploadImage(c, accounts.ImageBanner)
}

func (h *AccountsHandler) uploadImage(c *gin.Context, kind accounts.ImageKind) {
	log := h.log.With(slog.String("rpc", "UploadImage"), slog.String("kind", string(kind)))

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, log, err)
		return
	}
	defer file.Close()

	user, err := h.svc.UploadImage(
		c.Request.Context(),
		authedUserID(c),
		kind,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("image uploaded", slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *AccountsHandler) RemoveDisplayPicture(c *gin.Context) {
	h.removeImage(c, accounts.ImageDisplayPicture)
}

func (h *AccountsHandler) RemoveBanner(c *gin.Context) {
	h.removeImage(c, accounts.ImageBanner)
}

func (h *AccountsHandler) removeImage(c *gin.Context, kind accounts.ImageKind) {
	log := h.log.With(slog.String("rpc", "RemoveImage"), slog.String("kind", string(kind)))

	user, err := h.svc.RemoveImage(c.Request.Context(), authedUserID(c), kind)
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("image removed", slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
