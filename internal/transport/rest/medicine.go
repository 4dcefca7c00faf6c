package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medibook/internal/domain"
)

// @Summary Каталог препаратов
// @Description Возвращает список препаратов с поиском и фильтрами
// @Tags Препараты
// @Produce json
// @Param search query string false "Поиск по названию или действующему веществу"
// @Param prescription_required query bool false "Только рецептурные / безрецептурные"
// @Param in_stock query bool false "Только в наличии"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список препаратов"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /medicines [get]
func (h *Handler) getMedicines(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := domain.MedicineFilter{
		Limit:  limit,
		Offset: offset,
	}

	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	if raw := c.Query("prescription_required"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			filter.PrescriptionRequired = &value
		}
	}

	if raw := c.Query("in_stock"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			filter.InStock = &value
		}
	}

	medicines, total, err := h.services.Medicine.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения каталога препаратов", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	paginatedSuccessResponse(c, medicines, total, page, filter.Limit)
}

// @Summary Получить препарат по ID
// @Tags Препараты
// @Produce json
// @Param id path int true "ID препарата"
// @Success 200 {object} domain.Medicine "Данные препарата"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Препарат не найден"
// @Router /medicines/{id} [get]
func (h *Handler) getMedicineByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	medicine, err := h.services.Medicine.GetByID(c.Request.Context(), id)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, medicine)
}

// @Summary Добавить препарат
// @Description Добавляет препарат в каталог, доступно администратору
// @Tags Препараты
// @Accept json
// @Produce json
// @Param input body domain.CreateMedicineDTO true "Данные препарата"
// @Success 201 {object} map[string]interface{} "ID созданного препарата"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /medicines [post]
func (h *Handler) createMedicine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateMedicineDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Medicine.Create(c.Request.Context(), userID, input)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Обновить препарат
// @Tags Препараты
// @Accept json
// @Produce json
// @Param id path int true "ID препарата"
// @Param input body domain.UpdateMedicineDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType "Препарат обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Препарат не найден"
// @Security ApiKeyAuth
// @Router /medicines/{id} [put]
func (h *Handler) updateMedicine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var input domain.UpdateMedicineDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Medicine.Update(c.Request.Context(), id, input); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "препарат обновлен")
}

// @Summary Изменить остаток препарата
// @Description Изменяет остаток на дельту; остаток не может стать отрицательным
// @Tags Препараты
// @Accept json
// @Produce json
// @Param id path int true "ID препарата"
// @Param input body domain.UpdateStockDTO true "Дельта остатка"
// @Success 200 {object} map[string]interface{} "Новый остаток"
// @Failure 400 {object} errorResponseBody "Ошибка валидации или недостаточный остаток"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Препарат не найден"
// @Security ApiKeyAuth
// @Router /medicines/{id}/stock [put]
func (h *Handler) updateMedicineStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var input domain.UpdateStockDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	stock, err := h.services.Medicine.UpdateStock(c.Request.Context(), id, input)
	if err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		badRequestResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, gin.H{"stock": stock})
}

// @Summary Удалить препарат
// @Tags Препараты
// @Produce json
// @Param id path int true "ID препарата"
// @Success 204 {object} nil "Препарат удален"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Препарат не найден"
// @Security ApiKeyAuth
// @Router /medicines/{id} [delete]
func (h *Handler) deleteMedicine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Medicine.Delete(c.Request.Context(), id); err != nil {
		if domainErrorResponse(c, err) {
			return
		}
		internalServerErrorResponse(c)
		return
	}

	noContentResponse(c)
}
