package valueobject

import (
	"fmt"

	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

type ProblemCategory string

const (
	CategoryOther     ProblemCategory = "other"
	CategoryPollution ProblemCategory = "pollution"
	CategoryPlants    ProblemCategory = "plants"
	CategoryDamage    ProblemCategory = "damage"
	CategoryWater     ProblemCategory = "water"
	CategoryAnimals   ProblemCategory = "animals"
)

func (c ProblemCategory) IsValid() bool {
	switch c {
	case CategoryOther, CategoryPollution, CategoryPlants, CategoryDamage, CategoryWater, CategoryAnimals:
		return true
	}
	return false
}

// NewProblemCategory разбирает категорию; пустая строка даёт "other".
func NewProblemCategory(category string) (ProblemCategory, error) {
	if category == "" {
		return CategoryOther, nil
	}
	c := ProblemCategory(category)
	if !c.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная категория проблемы")
	}
	return c, nil
}

// Severity - степень серьёзности проблемы от 1 до 6.
type Severity int

const (
	MinSeverity     Severity = 1
	MaxSeverity     Severity = 6
	DefaultSeverity Severity = 3
)

// NewSeverity проверяет диапазон; ноль трактуется как значение по умолчанию.
func NewSeverity(v int) (Severity, error) {
	if v == 0 {
		return DefaultSeverity, nil
	}
	s := Severity(v)
	if s < MinSeverity || s > MaxSeverity {
		return 0, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("серьёзность должна быть от %d до %d", MinSeverity, MaxSeverity))
	}
	return s, nil
}

// Coordinates - точка на карте.
type Coordinates struct {
	Lat float64
	Lng float64
}

func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "широта должна быть в диапазоне [-90, 90]")
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "долгота должна быть в диапазоне [-180, 180]")
	}
	return Coordinates{Lat: lat, Lng: lng}, nil
}
