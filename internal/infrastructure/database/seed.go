package database

import (
	"context"
	"fmt"

	"parknet-backend/internal/domain"
	"parknet-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedResident describes one resident created by Seed. Every seeded resident gets
// one available slot per vehicle type.
type SeedResident struct {
	FullName   string
	DocumentID string
	Email      string
	Apartment  string
	Phone      string
	Role       string
}

var DefaultSeed = []SeedResident{
	{FullName: "Administrador", DocumentID: "1000000000", Email: "admin@parknet.local", Apartment: "ADM", Role: domain.RoleAdmin},
	{FullName: "Ana Ruiz", DocumentID: "1000000001", Email: "ana@parknet.local", Apartment: "101", Phone: "3000000001", Role: domain.RoleResident},
	{FullName: "Bruno Diaz", DocumentID: "1000000002", Email: "bruno@parknet.local", Apartment: "102", Phone: "3000000002", Role: domain.RoleResident},
	{FullName: "Carla Mejia", DocumentID: "1000000003", Email: "carla@parknet.local", Apartment: "201", Phone: "3000000003", Role: domain.RoleResident},
	{FullName: "Diego Lopez", DocumentID: "1000000004", Email: "diego@parknet.local", Apartment: "202", Phone: "3000000004", Role: domain.RoleResident},
	{FullName: "Elena Soto", DocumentID: "1000000005", Email: "elena@parknet.local", Apartment: "301", Phone: "3000000005", Role: domain.RoleResident},
}

// Reset deletes all rows, children first.
func Reset(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		models := Models()
		for i := len(models) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
				return fmt.Errorf("reset %T: %w", models[i], err)
			}
		}
		return nil
	})
}

// Seed inserts residents with a shared password and one available slot per vehicle type.
func Seed(ctx context.Context, db *gorm.DB, password string, residents []SeedResident) ([]domain.Resident, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	out := make([]domain.Resident, 0, len(residents))
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sr := range residents {
			if !validation.IsValidEmail(sr.Email) {
				return fmt.Errorf("seed %q: %w", sr.Email, domain.ErrInvalidInput)
			}
			r := domain.Resident{
				FullName:     sr.FullName,
				DocumentID:   sr.DocumentID,
				Email:        sr.Email,
				PasswordHash: string(hash),
				Apartment:    sr.Apartment,
				PhoneNumber:  sr.Phone,
				Role:         sr.Role,
			}
			if r.Role == "" {
				r.Role = domain.RoleResident
			}
			for _, vt := range domain.VehicleTypes {
				r.Slots = append(r.Slots, domain.VehicleSlot{VehicleType: vt, Available: true})
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("seed %s: %w", sr.Email, err)
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
