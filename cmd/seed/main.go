package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"medibook/config"
	"medibook/internal/domain"
	"medibook/internal/repository"
	"medibook/pkg/auth"
	"medibook/pkg/database"
)

// Наполняет базу демонстрационными данными: врачи с сеткой слотов,
// пациенты и каталог препаратов.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("запуск наполнения базы")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatalf("подключение к БД: %v", err)
	}
	defer db.Close()

	gofakeit.Seed(time.Now().UnixNano())

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	passwordHash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("хеширование пароля: %v", err)
	}

	adminID, err := seedAdmin(ctx, repos, passwordHash)
	if err != nil {
		log.Fatalf("создание администратора: %v", err)
	}

	if err := seedDoctors(ctx, repos, cfg.Schedule.SlotInterval, passwordHash, 10); err != nil {
		log.Fatalf("создание врачей: %v", err)
	}

	if err := seedPatients(ctx, repos, passwordHash, 50); err != nil {
		log.Fatalf("создание пациентов: %v", err)
	}

	if err := seedMedicines(ctx, repos, adminID, 30); err != nil {
		log.Fatalf("создание препаратов: %v", err)
	}

	log.Println("наполнение базы завершено")
}

func seedAdmin(ctx context.Context, repos *repository.Repositories, passwordHash string) (int64, error) {
	if existing, err := repos.User.GetByEmail(ctx, "admin@medibook.ru"); err == nil {
		return existing.ID, nil
	}

	return repos.User.Create(ctx, domain.CreateUserDTO{
		FirstName: "Админ",
		LastName:  "Системы",
		Email:     "admin@medibook.ru",
		Phone:     "+79990000000",
		Password:  passwordHash,
		Role:      domain.UserRoleAdmin,
	})
}

func seedDoctors(ctx context.Context, repos *repository.Repositories, interval time.Duration, passwordHash string, count int) error {
	log.Printf("создание %d врачей", count)

	specializations := []domain.Specialization{
		domain.SpecializationCardiology,
		domain.SpecializationNeurology,
		domain.SpecializationPediatrics,
		domain.SpecializationOrthopedics,
		domain.SpecializationDermatology,
		domain.SpecializationGynecology,
		domain.SpecializationGeneral,
	}

	daysets := [][]string{
		{"Monday", "Wednesday", "Friday"},
		{"Tuesday", "Thursday", "Saturday"},
		{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	}

	for i := 0; i < count; i++ {
		userID, err := repos.User.Create(ctx, domain.CreateUserDTO{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Phone:     fmt.Sprintf("+7911%07d", gofakeit.Number(0, 9999999)),
			Password:  passwordHash,
			Role:      domain.UserRoleDoctor,
		})
		if err != nil {
			return err
		}

		availableDays := daysets[gofakeit.Number(0, len(daysets)-1)]
		slots := domain.WeeklySlots(availableDays, domain.DefaultWorkingHours, interval)

		_, err = repos.Doctor.Create(ctx, domain.CreateDoctorDTO{
			UserID:          userID,
			Specialization:  specializations[gofakeit.Number(0, len(specializations)-1)],
			Qualifications:  []string{gofakeit.JobTitle(), gofakeit.JobDescriptor()},
			ExperienceYears: gofakeit.Number(1, 30),
			ConsultationFee: float64(gofakeit.Number(1000, 5000)),
			AvailableDays:   availableDays,
			Hospital:        gofakeit.Company(),
			LicenseNumber:   fmt.Sprintf("LIC-%06d", gofakeit.Number(100000, 999999)),
		}, slots)
		if err != nil {
			return err
		}
	}

	log.Println("врачи созданы")
	return nil
}

func seedPatients(ctx context.Context, repos *repository.Repositories, passwordHash string, count int) error {
	log.Printf("создание %d пациентов", count)

	for i := 0; i < count; i++ {
		_, err := repos.User.Create(ctx, domain.CreateUserDTO{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Phone:     fmt.Sprintf("+7921%07d", gofakeit.Number(0, 9999999)),
			Password:  passwordHash,
			Role:      domain.UserRolePatient,
		})
		if err != nil {
			return err
		}
	}

	log.Println("пациенты созданы")
	return nil
}

func seedMedicines(ctx context.Context, repos *repository.Repositories, addedBy int64, count int) error {
	log.Printf("создание %d препаратов", count)

	dosageForms := []domain.DosageForm{
		domain.DosageFormTablet,
		domain.DosageFormCapsule,
		domain.DosageFormSyrup,
		domain.DosageFormInjection,
		domain.DosageFormOintment,
		domain.DosageFormDrops,
		domain.DosageFormInhaler,
	}

	categories := []domain.MedicineCategory{
		domain.MedicineCategoryAntibiotic,
		domain.MedicineCategoryAnalgesic,
		domain.MedicineCategoryAntihistamine,
		domain.MedicineCategoryAntacid,
		domain.MedicineCategoryVitamin,
		domain.MedicineCategoryOther,
	}

	for i := 0; i < count; i++ {
		prescriptionRequired := gofakeit.Bool()

		_, err := repos.Medicine.Create(ctx, addedBy, domain.CreateMedicineDTO{
			Name:                 fmt.Sprintf("%s-%d", gofakeit.ProductName(), i),
			GenericName:          gofakeit.NounAbstract(),
			Manufacturer:         gofakeit.Company(),
			DosageForm:           dosageForms[gofakeit.Number(0, len(dosageForms)-1)],
			Strength:             fmt.Sprintf("%d мг", gofakeit.Number(5, 500)),
			Price:                float64(gofakeit.Number(50, 3000)),
			Stock:                gofakeit.Number(0, 200),
			ExpiryDate:           time.Now().AddDate(gofakeit.Number(1, 3), 0, 0),
			PrescriptionRequired: &prescriptionRequired,
			Category:             categories[gofakeit.Number(0, len(categories)-1)],
			SideEffects:          []string{gofakeit.NounAbstract(), gofakeit.NounAbstract()},
		})
		if err != nil {
			return err
		}
	}

	log.Println("препараты созданы")
	return nil
}
