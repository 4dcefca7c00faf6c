package domain

import "errors"

// Ошибки предметной области. Транспортный слой разбирает их через
// errors.Is и отображает в коды ответа: конфликт слота и финальный
// статус записи в 409, отсутствие сущности в 404, запрет в 403,
// ошибки валидации в 400.
var (
	ErrUserNotFound        = errors.New("пользователь не найден")
	ErrDoctorNotFound      = errors.New("врач не найден")
	ErrAppointmentNotFound = errors.New("запись на прием не найдена")
	ErrMedicineNotFound    = errors.New("препарат не найден")
	ErrSlotNotFound        = errors.New("слот не найден")

	ErrSlotUnavailable  = errors.New("выбранный слот времени уже занят")
	ErrAlreadyFinalized = errors.New("запись уже находится в финальном статусе")

	ErrPastDateTime  = errors.New("дата приема должна быть в будущем")
	ErrInvalidReason = errors.New("некорректная причина обращения")

	ErrForbidden = errors.New("доступ запрещен")
)
