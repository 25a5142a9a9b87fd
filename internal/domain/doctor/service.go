package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if d.ExperienceYears < 0 {
		return fmt.Errorf("experience_years must not be negative")
	}
	if d.Rating < 0 || d.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	if d.ConsultationFee < 0 {
		return fmt.Errorf("consultation_fee must not be negative")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Rating < 0 || d.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, params, limit, offset)
}
