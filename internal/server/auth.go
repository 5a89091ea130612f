package server

import (
	"log"
	"net/http"
	"strings"

	"tasktracker/internal/auth"
	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	user := models.User{
		ID:       uuid.New().String(),
		Email:    normalizeEmail(req.Email),
		Password: string(hash),
		Name:     strings.TrimSpace(req.Name),
	}

	// Гонку двух регистраций с одним email разрешает уникальный индекс в БД,
	// а не предварительная проверка существования.
	if err := api.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		if err == errors.ErrEmailTaken {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrEmailTaken.Error()})
			return
		}
		log.Println("[ERROR] Не удалось создать пользователя:", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	token, err := api.tokens.Issue(user.ID)
	if err != nil {
		log.Println("[ERROR] Не удалось выпустить токен:", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	// Неизвестный email и неверный пароль дают одинаковый ответ,
	// чтобы не раскрывать, какие адреса зарегистрированы.
	user, err := api.users.GetUserByEmail(ctx.Request.Context(), normalizeEmail(req.Email))
	if err != nil {
		if err != errors.ErrUserNotFound {
			log.Println("[ERROR] Не удалось получить пользователя:", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
			return
		}
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidCredentials.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidCredentials.Error()})
		return
	}

	token, err := api.tokens.Issue(user.ID)
	if err != nil {
		log.Println("[ERROR] Не удалось выпустить токен:", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (api *TaskAPI) me(ctx *gin.Context) {
	userID := auth.UserIDFromContext(ctx)

	user, err := api.users.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		if err == errors.ErrUserNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrUserNotFound.Error()})
			return
		}
		log.Println("[ERROR] Не удалось получить пользователя:", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
