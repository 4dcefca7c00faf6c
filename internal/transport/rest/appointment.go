package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/internal/domain"
)

// @Summary Записаться на прием
// @Description Создает запись на прием, занимая слот врача. Слот достается ровно одному из конкурирующих запросов
// @Tags Записи
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Данные записи"
// @Success 201 {object} map[string]interface{} "ID созданной записи"
// @Failure 400 {object} errorResponseBody "Ошибка валидации, дата в прошлом или некорректная причина"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Failure 409 {object} errorResponseBody "Слот уже занят"
// @Security ApiKeyAuth
// @Router /appointments [post]
func (h *Handler) createAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Appointment.Create(c.Request.Context(), userID, input)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		h.logger.Error("ошибка создания записи на прием", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Список записей
// @Description Пациент видит свои записи, врач видит записи к себе, администратор все
// @Tags Записи
// @Produce json
// @Param status query string false "Статус записи"
// @Param start_date query string false "Начало диапазона (YYYY-MM-DD)"
// @Param end_date query string false "Конец диапазона (YYYY-MM-DD)"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список записей"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := domain.AppointmentFilter{
		Limit:  limit,
		Offset: offset,
	}

	if status := c.Query("status"); status != "" {
		appointmentStatus := domain.AppointmentStatus(status)
		filter.Status = &appointmentStatus
	}

	if startDate := c.Query("start_date"); startDate != "" {
		if parsed, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartDate = &parsed
		}
	}

	if endDate := c.Query("end_date"); endDate != "" {
		if parsed, err := time.Parse("2006-01-02", endDate); err == nil {
			end := parsed.AddDate(0, 0, 1)
			filter.EndDate = &end
		}
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter, userID, role)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		h.logger.Error("ошибка получения списка записей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	paginatedSuccessResponse(c, appointments, total, page, filter.Limit)
}

// @Summary Получить запись по ID
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Данные записи"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Отменить запись
// @Description Переводит запись в cancelled и освобождает слот. Запись в финальном статусе отменить нельзя
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} messageResponseType "Запись отменена"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Запись уже в финальном статусе"
// @Security ApiKeyAuth
// @Router /appointments/{id}/cancel [put]
func (h *Handler) cancelAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Appointment.Cancel(c.Request.Context(), id, userID, role); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		h.logger.Error("ошибка отмены записи", zap.Int64("id", id), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	messageResponse(c, http.StatusOK, "запись отменена")
}

// @Summary Сменить статус записи
// @Description Переводит запись в completed или no_show, доступно врачу записи и администратору
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateAppointmentStatusDTO true "Новый статус"
// @Success 200 {object} messageResponseType "Статус обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Запись уже в финальном статусе"
// @Security ApiKeyAuth
// @Router /appointments/{id}/status [put]
func (h *Handler) updateAppointmentStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var input domain.UpdateAppointmentStatusDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Appointment.UpdateStatus(c.Request.Context(), id, userID, role, input); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		h.logger.Error("ошибка смены статуса записи", zap.Int64("id", id), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	messageResponse(c, http.StatusOK, "статус записи обновлен")
}
