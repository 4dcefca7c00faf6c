package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/internal/domain"
)

// maxPhotoSize ограничивает размер загружаемого фото профиля.
const maxPhotoSize = 5 << 20

// @Summary Список врачей
// @Description Возвращает список врачей с фильтром по специализации
// @Tags Врачи
// @Produce json
// @Param specialization query string false "Специализация"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список врачей"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /doctors [get]
func (h *Handler) getDoctors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := domain.DoctorFilter{
		Limit:  limit,
		Offset: offset,
	}

	if spec := c.Query("specialization"); spec != "" {
		specialization := domain.Specialization(spec)
		filter.Specialization = &specialization
	}

	doctors, total, err := h.services.Doctor.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения списка врачей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	paginatedSuccessResponse(c, doctors, total, page, filter.Limit)
}

// @Summary Получить врача по ID
// @Tags Врачи
// @Produce json
// @Param id path int true "ID врача"
// @Success 200 {object} domain.Doctor "Профиль врача"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Router /doctors/{id} [get]
func (h *Handler) getDoctorByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	doctor, err := h.services.Doctor.GetByID(c.Request.Context(), id)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, doctor)
}

// @Summary Доступность врача
// @Description Возвращает свободные слоты врача: недельную сетку либо конкретные интервалы на дату
// @Tags Врачи
// @Produce json
// @Param id path int true "ID врача"
// @Param date query string false "Дата в формате YYYY-MM-DD"
// @Success 200 {object} domain.DoctorAvailability "Свободные слоты"
// @Failure 400 {object} errorResponseBody "Неверный формат параметров"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Router /doctors/{id}/availability [get]
func (h *Handler) getDoctorAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	doctor, err := h.services.Doctor.GetByID(c.Request.Context(), id)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	if date := c.Query("date"); date != "" {
		slots, err := h.services.Schedule.FreeSlotsInRange(c.Request.Context(), doctor, date, date)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}

		successResponse(c, http.StatusOK, gin.H{
			"doctor_id": doctor.ID,
			"date":      date,
			"slots":     slots,
		})
		return
	}

	availability, err := h.services.Schedule.GetAvailability(c.Request.Context(), doctor)
	if err != nil {
		h.logger.Error("ошибка получения доступности врача", zap.Int64("id", id), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, availability)
}

// @Summary Профиль текущего врача
// @Tags Врачи
// @Produce json
// @Success 200 {object} domain.Doctor "Профиль врача"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Security ApiKeyAuth
// @Router /doctors/me [get]
func (h *Handler) getMyDoctorProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	doctor, err := h.services.Doctor.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, doctor)
}

// @Summary Создать профиль врача
// @Description Создает профиль врача и материализует недельную сетку слотов, доступно администратору
// @Tags Врачи
// @Accept json
// @Produce json
// @Param input body domain.CreateDoctorDTO true "Данные врача"
// @Success 201 {object} map[string]interface{} "ID созданного профиля"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /doctors [post]
func (h *Handler) createDoctor(c *gin.Context) {
	var input domain.CreateDoctorDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Doctor.Create(c.Request.Context(), input)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Обновить профиль врача
// @Description Обновляет профиль; смена дней приема перестраивает сетку слотов
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param input body domain.UpdateDoctorDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType "Профиль обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Security ApiKeyAuth
// @Router /doctors/{id} [put]
func (h *Handler) updateDoctor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageDoctor(c, id) {
		return
	}

	var input domain.UpdateDoctorDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Doctor.Update(c.Request.Context(), id, input); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "профиль врача обновлен")
}

// @Summary Загрузить фото врача
// @Tags Врачи
// @Accept mpfd
// @Produce json
// @Param id path int true "ID врача"
// @Param photo formData file true "Файл изображения"
// @Success 200 {object} messageResponseType "Фото загружено"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Security ApiKeyAuth
// @Router /doctors/{id}/photo [post]
func (h *Handler) uploadDoctorPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageDoctor(c, id) {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "файл не найден в запросе")
		return
	}

	if fileHeader.Size > maxPhotoSize {
		badRequestResponse(c, "файл слишком большой")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("ошибка открытия файла", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("ошибка чтения файла", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	if err := h.services.Doctor.UploadProfilePhoto(c.Request.Context(), id, data, fileHeader.Filename); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "фото загружено")
}

// @Summary Удалить фото врача
// @Tags Врачи
// @Produce json
// @Param id path int true "ID врача"
// @Success 204 {object} nil "Фото удалено"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Security ApiKeyAuth
// @Router /doctors/{id}/photo [delete]
func (h *Handler) deleteDoctorPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageDoctor(c, id) {
		return
	}

	if err := h.services.Doctor.DeleteProfilePhoto(c.Request.Context(), id); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	noContentResponse(c)
}

// canManageDoctor пропускает администратора и врача-владельца профиля.
// При отказе ответ уже записан.
func (h *Handler) canManageDoctor(c *gin.Context, doctorID int64) bool {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return false
	}

	role, _ := getUserRole(c)
	if role == domain.UserRoleAdmin {
		return true
	}

	doctor, err := h.services.Doctor.GetByUserID(c.Request.Context(), userID)
	if err != nil || doctor.ID != doctorID {
		forbiddenResponse(c)
		return false
	}

	return true
}
