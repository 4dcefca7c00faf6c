package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/domain"
)

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	nextID       int64
	appointments map[int64]*domain.Appointment
	slots        map[string]bool
	failInsert   bool
	createCalls  int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[int64]*domain.Appointment),
		slots:        make(map[string]bool),
	}
}

func slotKey(doctorID int64, day, startTime string) string {
	return fmt.Sprintf("%d|%s|%s", doctorID, day, startTime)
}

func (r *fakeAppointmentRepo) addSlot(doctorID int64, day, startTime string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slotKey(doctorID, day, startTime)] = false
}

func (r *fakeAppointmentRepo) removeSlot(doctorID int64, day, startTime string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, slotKey(doctorID, day, startTime))
}

func (r *fakeAppointmentRepo) slotBooked(doctorID int64, day, startTime string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[slotKey(doctorID, day, startTime)]
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO, fee float64, day, startTime string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createCalls++

	key := slotKey(dto.DoctorID, day, startTime)
	booked, ok := r.slots[key]
	if !ok || booked {
		return 0, domain.ErrSlotUnavailable
	}

	if r.failInsert {
		// Транзакция откатывается целиком, слот остается свободным.
		return 0, errors.New("ошибка вставки записи")
	}

	r.slots[key] = true
	r.nextID++
	r.appointments[r.nextID] = &domain.Appointment{
		ID:        r.nextID,
		PatientID: patientID,
		DoctorID:  dto.DoctorID,
		DateTime:  dto.DateTime,
		Reason:    dto.Reason,
		Notes:     dto.Notes,
		Status:    domain.AppointmentStatusScheduled,
		Fee:       fee,
	}

	return r.nextID, nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}

	copied := *appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) Cancel(ctx context.Context, id, doctorID int64, day, startTime string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return false, domain.ErrAppointmentNotFound
	}

	if appointment.Status != domain.AppointmentStatusScheduled {
		return false, domain.ErrAlreadyFinalized
	}
	appointment.Status = domain.AppointmentStatusCancelled

	key := slotKey(doctorID, day, startTime)
	if _, exists := r.slots[key]; !exists {
		return false, nil
	}
	r.slots[key] = false

	return true, nil
}

func (r *fakeAppointmentRepo) Finalize(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return domain.ErrAppointmentNotFound
	}

	if appointment.Status != domain.AppointmentStatusScheduled {
		return domain.ErrAlreadyFinalized
	}
	appointment.Status = status

	return nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Appointment
	for _, appointment := range r.appointments {
		if filter.PatientID != nil && appointment.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && appointment.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.Status != nil && appointment.Status != *filter.Status {
			continue
		}
		result = append(result, *appointment)
	}

	return result, nil
}

func (r *fakeAppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	appointments, err := r.List(ctx, filter)
	return len(appointments), err
}

// fakeAvailability смотрит в ту же карту слотов, что и fakeAppointmentRepo.
type fakeAvailability struct {
	repo *fakeAppointmentRepo
}

func (a *fakeAvailability) IsAvailable(ctx context.Context, doctorID int64, day, startTime string) (bool, error) {
	a.repo.mu.Lock()
	defer a.repo.mu.Unlock()
	booked, ok := a.repo.slots[slotKey(doctorID, day, startTime)]
	return ok && !booked, nil
}

func (a *fakeAvailability) MarkBooked(ctx context.Context, doctorID int64, day, startTime string) error {
	a.repo.mu.Lock()
	defer a.repo.mu.Unlock()
	key := slotKey(doctorID, day, startTime)
	if booked, ok := a.repo.slots[key]; !ok || booked {
		return domain.ErrSlotUnavailable
	}
	a.repo.slots[key] = true
	return nil
}

func (a *fakeAvailability) MarkFree(ctx context.Context, doctorID int64, day, startTime string) error {
	a.repo.mu.Lock()
	defer a.repo.mu.Unlock()
	key := slotKey(doctorID, day, startTime)
	if _, ok := a.repo.slots[key]; !ok {
		return domain.ErrSlotNotFound
	}
	a.repo.slots[key] = false
	return nil
}

type fakeDoctorRepo struct {
	doctors map[int64]*domain.Doctor
}

func (r *fakeDoctorRepo) Create(ctx context.Context, dto domain.CreateDoctorDTO, slots []domain.Slot) (int64, error) {
	return 0, errors.New("не реализовано")
}

func (r *fakeDoctorRepo) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, domain.ErrDoctorNotFound
	}
	return doctor, nil
}

func (r *fakeDoctorRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	for _, doctor := range r.doctors {
		if doctor.UserID == userID {
			return doctor, nil
		}
	}
	return nil, domain.ErrDoctorNotFound
}

func (r *fakeDoctorRepo) Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error {
	return nil
}

func (r *fakeDoctorRepo) ReplaceSlots(ctx context.Context, doctorID int64, slots []domain.Slot) error {
	return nil
}

func (r *fakeDoctorRepo) UpdatePhoto(ctx context.Context, id int64, photoURL string) error {
	return nil
}

func (r *fakeDoctorRepo) List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, error) {
	return nil, nil
}

func (r *fakeDoctorRepo) CountByFilter(ctx context.Context, filter domain.DoctorFilter) (int, error) {
	return 0, nil
}

func (r *fakeDoctorRepo) GetSlots(ctx context.Context, doctorID int64) ([]domain.Slot, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[int64]*domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user domain.CreateUserDTO) (int64, error) {
	return 0, errors.New("не реализовано")
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error {
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}

func (r *fakeUserRepo) Deactivate(ctx context.Context, id int64) error {
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

type fakeSchedule struct {
	mu            sync.Mutex
	invalidations []int64
}

func (s *fakeSchedule) GetAvailability(ctx context.Context, doctor *domain.Doctor) (*domain.DoctorAvailability, error) {
	return &domain.DoctorAvailability{DoctorID: doctor.ID}, nil
}

func (s *fakeSchedule) FreeSlotsInRange(ctx context.Context, doctor *domain.Doctor, from, to string) ([]domain.SlotRange, error) {
	return nil, nil
}

func (s *fakeSchedule) InvalidateCache(ctx context.Context, doctorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations = append(s.invalidations, doctorID)
}

type fakeNotifier struct {
	mu        sync.Mutex
	booked    []int64
	cancelled []int64
}

func (n *fakeNotifier) NotifyBooked(appointment domain.Appointment, patientEmail, patientPhone, doctorEmail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, appointment.ID)
}

func (n *fakeNotifier) NotifyCancelled(appointment domain.Appointment, patientEmail, patientPhone string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, appointment.ID)
}

type appointmentFixture struct {
	svc      *AppointmentServiceImpl
	repo     *fakeAppointmentRepo
	schedule *fakeSchedule
	notifier *fakeNotifier
	dateTime time.Time
	day      string
	tm       string
}

const (
	testDoctorID     = int64(1)
	testDoctorUserID = int64(100)
	testPatientID    = int64(200)
	otherPatientID   = int64(201)
)

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()

	repo := newFakeAppointmentRepo()
	doctors := &fakeDoctorRepo{doctors: map[int64]*domain.Doctor{
		testDoctorID: {
			ID:              testDoctorID,
			UserID:          testDoctorUserID,
			ConsultationFee: 1500,
			AvailableDays:   []string{"Monday"},
		},
	}}
	users := &fakeUserRepo{users: map[int64]*domain.User{
		testPatientID:    {ID: testPatientID, Email: "patient@test.ru", Phone: "+79210000001"},
		testDoctorUserID: {ID: testDoctorUserID, Email: "doctor@test.ru", Phone: "+79110000001"},
	}}
	schedule := &fakeSchedule{}
	notifier := &fakeNotifier{}

	cfg := config.ScheduleConfig{
		SlotInterval: 30 * time.Minute,
		Timezone:     "UTC",
		CacheTTL:     time.Minute,
	}

	svc := NewAppointmentService(repo, &fakeAvailability{repo: repo}, doctors, users, schedule, notifier, cfg, zap.NewNop())

	dateTime := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	day, tm := domain.SlotKey(dateTime, time.UTC)
	repo.addSlot(testDoctorID, day, tm)

	return &appointmentFixture{
		svc:      svc,
		repo:     repo,
		schedule: schedule,
		notifier: notifier,
		dateTime: dateTime,
		day:      day,
		tm:       tm,
	}
}

func (f *appointmentFixture) createDTO() domain.CreateAppointmentDTO {
	return domain.CreateAppointmentDTO{
		DoctorID: testDoctorID,
		DateTime: f.dateTime,
		Reason:   "плановый осмотр",
	}
}

func TestAppointmentCreate(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if id == 0 {
		t.Fatal("ожидался ненулевой ID")
	}

	if !f.repo.slotBooked(testDoctorID, f.day, f.tm) {
		t.Error("слот должен быть занят после брони")
	}

	appointment, err := f.repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("запись не сохранена: %v", err)
	}
	if appointment.Status != domain.AppointmentStatusScheduled {
		t.Errorf("ожидался статус scheduled, получен %s", appointment.Status)
	}
	if appointment.Fee != 1500 {
		t.Errorf("стоимость должна копироваться из профиля врача, получено %v", appointment.Fee)
	}

	if len(f.schedule.invalidations) != 1 || f.schedule.invalidations[0] != testDoctorID {
		t.Error("кэш доступности должен сбрасываться после брони")
	}
	if len(f.notifier.booked) != 1 {
		t.Error("уведомление о брони должно быть отправлено")
	}
}

func TestAppointmentCreateConcurrentSingleWinner(t *testing.T) {
	f := newAppointmentFixture(t)

	const workers = 16

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = f.svc.Create(context.Background(), testPatientID+int64(n), f.createDTO())
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domain.ErrSlotUnavailable):
		default:
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}

	if winners != 1 {
		t.Fatalf("слот должен достаться ровно одному запросу, победителей: %d", winners)
	}
	if len(f.repo.appointments) != 1 {
		t.Fatalf("должна сохраниться ровно одна запись, сохранено: %d", len(f.repo.appointments))
	}
}

func TestAppointmentCreatePastDateTime(t *testing.T) {
	f := newAppointmentFixture(t)

	dto := f.createDTO()
	dto.DateTime = time.Now().Add(-time.Hour)

	_, err := f.svc.Create(context.Background(), testPatientID, dto)
	if !errors.Is(err, domain.ErrPastDateTime) {
		t.Fatalf("ожидалась ErrPastDateTime, получено %v", err)
	}

	if f.repo.createCalls != 0 {
		t.Error("хранилище не должно вызываться для даты в прошлом")
	}
}

func TestAppointmentCreateInvalidReason(t *testing.T) {
	f := newAppointmentFixture(t)

	long := make([]rune, domain.MaxReasonLength+1)
	for i := range long {
		long[i] = 'а'
	}

	tests := []struct {
		name   string
		reason string
	}{
		{"пустая причина", ""},
		{"одни пробелы", "   "},
		{"слишком длинная", string(long)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := f.createDTO()
			dto.Reason = tt.reason

			_, err := f.svc.Create(context.Background(), testPatientID, dto)
			if !errors.Is(err, domain.ErrInvalidReason) {
				t.Fatalf("ожидалась ErrInvalidReason, получено %v", err)
			}
		})
	}

	if f.repo.createCalls != 0 {
		t.Error("хранилище не должно вызываться при некорректной причине")
	}
}

func TestAppointmentCreateDoctorNotFound(t *testing.T) {
	f := newAppointmentFixture(t)

	dto := f.createDTO()
	dto.DoctorID = 999

	_, err := f.svc.Create(context.Background(), testPatientID, dto)
	if !errors.Is(err, domain.ErrDoctorNotFound) {
		t.Fatalf("ожидалась ErrDoctorNotFound, получено %v", err)
	}
}

func TestAppointmentCreateRollbackKeepsSlotFree(t *testing.T) {
	f := newAppointmentFixture(t)
	f.repo.failInsert = true

	_, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}

	if f.repo.slotBooked(testDoctorID, f.day, f.tm) {
		t.Fatal("после отката транзакции слот должен остаться свободным")
	}

	f.repo.failInsert = false
	if _, err := f.svc.Create(context.Background(), testPatientID, f.createDTO()); err != nil {
		t.Fatalf("повторная бронь освободившегося слота должна пройти: %v", err)
	}
}

func TestAppointmentCancelFreesSlot(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if err := f.svc.Cancel(context.Background(), id, testPatientID, domain.UserRolePatient); err != nil {
		t.Fatalf("неожиданная ошибка отмены: %v", err)
	}

	if f.repo.slotBooked(testDoctorID, f.day, f.tm) {
		t.Error("слот должен освободиться после отмены")
	}

	appointment, _ := f.repo.GetByID(context.Background(), id)
	if appointment.Status != domain.AppointmentStatusCancelled {
		t.Errorf("ожидался статус cancelled, получен %s", appointment.Status)
	}

	if len(f.notifier.cancelled) != 1 {
		t.Error("уведомление об отмене должно быть отправлено")
	}

	// Освободившийся слот можно занять снова.
	if _, err := f.svc.Create(context.Background(), otherPatientID, f.createDTO()); err != nil {
		t.Fatalf("повторная бронь освобожденного слота должна пройти: %v", err)
	}
}

func TestAppointmentCancelForbidden(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if err := f.svc.Cancel(context.Background(), id, otherPatientID, domain.UserRolePatient); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("чужой пациент: ожидалась ErrForbidden, получено %v", err)
	}

	// Врач записи и администратор отменять могут.
	if err := f.svc.Cancel(context.Background(), id, testDoctorUserID, domain.UserRoleDoctor); err != nil {
		t.Fatalf("врач записи должен иметь право на отмену: %v", err)
	}
}

func TestAppointmentCancelAlreadyFinalized(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if err := f.repo.Finalize(context.Background(), id, domain.AppointmentStatusCompleted); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Cancel(context.Background(), id, testPatientID, domain.UserRolePatient); !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("ожидалась ErrAlreadyFinalized, получено %v", err)
	}
}

func TestAppointmentCancelSlotDrift(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// Врач сменил дни приема, слот исчез из сетки. Отмена все равно
	// проходит.
	f.repo.removeSlot(testDoctorID, f.day, f.tm)

	if err := f.svc.Cancel(context.Background(), id, testPatientID, domain.UserRolePatient); err != nil {
		t.Fatalf("отмена при отсутствии слота должна пройти: %v", err)
	}

	appointment, _ := f.repo.GetByID(context.Background(), id)
	if appointment.Status != domain.AppointmentStatusCancelled {
		t.Errorf("ожидался статус cancelled, получен %s", appointment.Status)
	}
}

func TestAppointmentUpdateStatus(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	dto := domain.UpdateAppointmentStatusDTO{Status: domain.AppointmentStatusCompleted}

	if err := f.svc.UpdateStatus(context.Background(), id, testPatientID, domain.UserRolePatient, dto); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("пациент: ожидалась ErrForbidden, получено %v", err)
	}

	if err := f.svc.UpdateStatus(context.Background(), id, testDoctorUserID, domain.UserRoleDoctor, dto); err != nil {
		t.Fatalf("врач записи должен завершать прием: %v", err)
	}

	appointment, _ := f.repo.GetByID(context.Background(), id)
	if appointment.Status != domain.AppointmentStatusCompleted {
		t.Errorf("ожидался статус completed, получен %s", appointment.Status)
	}

	// Финальный статус терминален.
	if err := f.svc.UpdateStatus(context.Background(), id, testDoctorUserID, domain.UserRoleDoctor, dto); !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("ожидалась ErrAlreadyFinalized, получено %v", err)
	}
	if err := f.svc.Cancel(context.Background(), id, testPatientID, domain.UserRolePatient); !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("отмена завершенной записи: ожидалась ErrAlreadyFinalized, получено %v", err)
	}
}

func TestAppointmentListScoping(t *testing.T) {
	f := newAppointmentFixture(t)

	id, err := f.svc.Create(context.Background(), testPatientID, f.createDTO())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	appointments, total, err := f.svc.List(context.Background(), domain.AppointmentFilter{}, testPatientID, domain.UserRolePatient)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(appointments) != 1 || appointments[0].ID != id {
		t.Errorf("пациент должен видеть свою запись, получено %d", total)
	}

	_, total, err = f.svc.List(context.Background(), domain.AppointmentFilter{}, otherPatientID, domain.UserRolePatient)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("чужой пациент не должен видеть запись, получено %d", total)
	}

	_, total, err = f.svc.List(context.Background(), domain.AppointmentFilter{}, testDoctorUserID, domain.UserRoleDoctor)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("врач должен видеть записи к себе, получено %d", total)
	}
}
