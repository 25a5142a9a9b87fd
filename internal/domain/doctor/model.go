package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	Rating          float64   `db:"rating" json:"rating"`
	ImageURL        *string   `db:"image_url" json:"image_url,omitempty"`
	Bio             *string   `db:"bio" json:"bio,omitempty"`
	ConsultationFee int       `db:"consultation_fee" json:"consultation_fee"`
	Languages       []string  `db:"languages" json:"languages"`
	Education       *string   `db:"education" json:"education,omitempty"`
	Hospital        *string   `db:"hospital" json:"hospital,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
