package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/internal/domain"
)

// @Summary Текущий пользователь
// @Description Возвращает профиль авторизованного пользователя
// @Tags Пользователи
// @Produce json
// @Success 200 {object} domain.User "Профиль пользователя"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/me [get]
func (h *Handler) getCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), userID)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Получить пользователя по ID
// @Tags Пользователи
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} domain.User "Профиль пользователя"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (h *Handler) getUserByID(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	role, _ := getUserRole(c)
	if requesterID != id && role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), id)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Обновить пользователя
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body domain.UpdateUserDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType "Пользователь обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	role, _ := getUserRole(c)
	if requesterID != id && role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return
	}

	var input domain.UpdateUserDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	// Активностью аккаунта управляет только администратор.
	if input.IsActive != nil && role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return
	}

	if err := h.services.User.Update(c.Request.Context(), id, input); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "пользователь обновлен")
}

// @Summary Сменить пароль
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body domain.PasswordUpdateDTO true "Текущий и новый пароль"
// @Success 200 {object} messageResponseType "Пароль изменен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /users/{id}/password [put]
func (h *Handler) updatePassword(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if requesterID != id {
		forbiddenResponse(c)
		return
	}

	var input domain.PasswordUpdateDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.User.UpdatePassword(c.Request.Context(), id, input); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "пароль изменен")
}

// @Summary Список пользователей
// @Description Возвращает список пользователей, доступно администратору
// @Tags Пользователи
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {array} domain.User "Список пользователей"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /users [get]
func (h *Handler) getUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.services.User.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("ошибка получения списка пользователей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, users)
}

// @Summary Деактивировать пользователя
// @Description Мягкое удаление: аккаунт помечается неактивным
// @Tags Пользователи
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 204 {object} nil "Пользователь деактивирован"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [delete]
func (h *Handler) deactivateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.User.Deactivate(c.Request.Context(), id); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	noContentResponse(c)
}
