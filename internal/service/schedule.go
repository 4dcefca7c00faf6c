package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/domain"
	"medibook/internal/repository"
)

// ScheduleServiceImpl отдает свободные слоты врача. Ответы кэшируются в
// Redis на короткий TTL; кэш носит рекомендательный характер, границей
// конкурентности остается условный UPDATE в Postgres.
type ScheduleServiceImpl struct {
	doctorRepo repository.DoctorRepository
	cache      *redis.Client
	cfg        config.ScheduleConfig
	logger     *zap.Logger
}

func NewScheduleService(doctorRepo repository.DoctorRepository, cache *redis.Client, cfg config.ScheduleConfig, logger *zap.Logger) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		doctorRepo: doctorRepo,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
	}
}

func availabilityCacheKey(doctorID int64) string {
	return fmt.Sprintf("availability:doctor:%d", doctorID)
}

func (s *ScheduleServiceImpl) GetAvailability(ctx context.Context, doctor *domain.Doctor) (*domain.DoctorAvailability, error) {
	key := availabilityCacheKey(doctor.ID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var availability domain.DoctorAvailability
			if err := json.Unmarshal([]byte(cached), &availability); err == nil {
				return &availability, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("ошибка чтения кэша доступности", zap.Int64("doctorId", doctor.ID), zap.Error(err))
		}
	}

	slots, err := s.doctorRepo.GetSlots(ctx, doctor.ID)
	if err != nil {
		s.logger.Error("ошибка получения слотов врача", zap.Int64("doctorId", doctor.ID), zap.Error(err))
		return nil, errors.New("ошибка при получении расписания врача")
	}

	freeSlots := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsBooked {
			freeSlots = append(freeSlots, slot)
		}
	}

	availability := &domain.DoctorAvailability{
		DoctorID:        doctor.ID,
		AvailableDays:   doctor.AvailableDays,
		FreeSlots:       freeSlots,
		ConsultationFee: doctor.ConsultationFee,
	}

	if s.cache != nil {
		data, err := json.Marshal(availability)
		if err == nil {
			if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn("ошибка записи кэша доступности", zap.Int64("doctorId", doctor.ID), zap.Error(err))
			}
		}
	}

	return availability, nil
}

// FreeSlotsInRange разворачивает недельную сетку врача в конкретные даты
// диапазона [from, to] и отдает только свободные интервалы.
func (s *ScheduleServiceImpl) FreeSlotsInRange(ctx context.Context, doctor *domain.Doctor, from, to string) ([]domain.SlotRange, error) {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return nil, errors.New("некорректная дата начала диапазона")
	}

	end, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return nil, errors.New("некорректная дата конца диапазона")
	}
	end = end.AddDate(0, 0, 1)

	if !start.Before(end) {
		return nil, errors.New("дата начала диапазона позже даты конца")
	}

	availability, err := s.GetAvailability(ctx, doctor)
	if err != nil {
		return nil, err
	}

	free := make(map[string]bool, len(availability.FreeSlots))
	for _, slot := range availability.FreeSlots {
		free[slot.Day+" "+slot.Time] = true
	}

	candidates := domain.GenerateSlots(doctor.AvailableDays, domain.DefaultWorkingHours, s.cfg.SlotInterval, start, end)

	result := make([]domain.SlotRange, 0, len(candidates))
	for _, candidate := range candidates {
		day, tm := domain.SlotKey(candidate.Start, loc)
		if free[day+" "+tm] {
			result = append(result, candidate)
		}
	}

	return result, nil
}

// InvalidateCache сбрасывает кэш доступности после брони, отмены или
// смены дней приема. Ошибка сброса только логируется: кэш протухнет сам
// по TTL.
func (s *ScheduleServiceImpl) InvalidateCache(ctx context.Context, doctorID int64) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, availabilityCacheKey(doctorID)).Err(); err != nil {
		s.logger.Warn("ошибка сброса кэша доступности", zap.Int64("doctorId", doctorID), zap.Error(err))
	}
}
