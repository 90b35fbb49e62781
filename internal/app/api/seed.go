package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	petsdomain "github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
	petsports "github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
	userdomain "github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
)

const (
	demoAdminEmail    = "admin@monito.com"
	demoAdminPassword = "admin123"
)

type demoPet struct {
	id, code, name, species, breed, image string
	price                                 float64
}

var demoPets = []demoPet{
	{"pet-fluffy", "MO231", "Fluffy", "Chó", "Pomeranian Trắng", "https://images.unsplash.com/photo-1637591085948-ad0de3d5c5b7", 6000000},
	{"pet-coco", "MO502", "Coco", "Chó", "Poodle Tiny Vàng", "https://images.unsplash.com/photo-1583511655826-05700d52f4d9", 3000000},
	{"pet-bella", "MO102", "Bella", "Chó", "Poodle Tiny Sepia", "https://images.unsplash.com/photo-1593134257782-e89567b7718a", 4500000},
	{"pet-alaska", "MO512", "Alaska", "Chó", "Alaskan Malamute", "https://images.unsplash.com/photo-1541364983171-a8ba01e95cfc", 8000000},
	{"pet-milo", "MO231", "Milo", "Chó", "Pembroke Corgi", "https://images.unsplash.com/photo-1575425186775-b8de9a427e67", 7000000},
	{"pet-max", "MO502", "Max", "Chó", "Pembroke Corgi", "https://images.unsplash.com/photo-1612774412771-005ed8e861d2", 9000000},
	{"pet-luna", "MC101", "Luna", "Mèo", "Scottish Fold", "https://images.unsplash.com/photo-1529778873920-4da4926a72c2", 5500000},
	{"pet-kitty", "MC102", "Kitty", "Mèo", "Anh Lông Ngắn", "https://images.unsplash.com/photo-1573865526739-10659fec78a5", 4800000},
	{"pet-oliver", "MC103", "Oliver", "Mèo", "Maine Coon", "https://images.unsplash.com/photo-1568152950566-c1bf43f4ab28", 7800000},
	{"pet-mochi", "MC104", "Mochi", "Mèo", "Munchkin", "https://images.unsplash.com/photo-1518791841217-8f162f1e1131", 6500000},
}

// seedDemoData creates the dashboard admin and a small pet catalog. Existing
// records are left untouched so restarts do not reset availability.
func seedDemoData(ctx context.Context, users userports.Service, pets petsports.Repository, logger *slog.Logger) error {
	_, err := users.Register(ctx, userports.RegisterInput{
		Name:     "Admin User",
		Email:    demoAdminEmail,
		Password: demoAdminPassword,
		Role:     userdomain.RoleAdmin,
	})
	switch {
	case err == nil:
		logger.Info("demo admin created", slog.String("email", demoAdminEmail))
	case errors.Is(err, userports.ErrDuplicateEmail):
	default:
		return fmt.Errorf("seed admin: %w", err)
	}

	created := 0
	for _, p := range demoPets {
		if _, err := pets.GetByID(ctx, p.id); err == nil {
			continue
		} else if !errors.Is(err, petsports.ErrNotFound) {
			return fmt.Errorf("seed pet %s: %w", p.id, err)
		}
		pet, err := petsdomain.NewPet(p.id, p.code, p.name, p.species, p.price)
		if err != nil {
			return fmt.Errorf("seed pet %s: %w", p.id, err)
		}
		pet.Breed = p.breed
		pet.ImageURL = p.image
		if _, err := pets.Save(ctx, pet); err != nil {
			return fmt.Errorf("seed pet %s: %w", p.id, err)
		}
		created++
	}
	logger.Info("demo pets seeded", slog.Int("created", created))
	return nil
}
