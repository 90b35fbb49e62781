package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyID      = errors.New("pet id is required")
	ErrEmptyName    = errors.New("pet name is required")
	ErrEmptySpecies = errors.New("pet species is required")
	ErrInvalidPrice = errors.New("pet price must be greater or equal to zero")
)

// Pet is a catalog entry. Available flips only through the inventory coordinator
// once an order references the pet.
type Pet struct {
	ID        string
	Code      string
	Name      string
	Species   string
	Breed     string
	Price     float64
	ImageURL  string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPet validates the invariants and builds an available pet.
func NewPet(id, code, name, species string, price float64) (*Pet, error) {
	p := &Pet{
		ID:        strings.TrimSpace(id),
		Code:      strings.TrimSpace(code),
		Name:      strings.TrimSpace(name),
		Species:   strings.TrimSpace(species),
		Price:     price,
		Available: true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate re-applies core invariants for persistence.
func (p *Pet) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Species == "" {
		return ErrEmptySpecies
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
