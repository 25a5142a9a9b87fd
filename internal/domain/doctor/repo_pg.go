package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docdelight/docdelight/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, name, specialization, experience_years, rating, image_url, bio,
	consultation_fee, languages, education, hospital, created_at, updated_at`

func (r *repoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.ExperienceYears, &d.Rating,
		&d.ImageURL, &d.Bio, &d.ConsultationFee, &d.Languages, &d.Education, &d.Hospital,
		&d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, name, specialization, experience_years, rating, image_url, bio,
			consultation_fee, languages, education, hospital)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		d.ID, d.Name, d.Specialization, d.ExperienceYears, d.Rating, d.ImageURL, d.Bio,
		d.ConsultationFee, d.Languages, d.Education, d.Hospital)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET name=$2, specialization=$3, experience_years=$4, rating=$5,
			image_url=$6, bio=$7, consultation_fee=$8, languages=$9, education=$10,
			hospital=$11, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.ExperienceYears, d.Rating,
		d.ImageURL, d.Bio, d.ConsultationFee, d.Languages, d.Education, d.Hospital)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	query := `SELECT ` + doctorCols + ` FROM doctor WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctor WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["specialization"]; ok {
		query += fmt.Sprintf(` AND specialization = $%d`, idx)
		countQuery += fmt.Sprintf(` AND specialization = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["hospital"]; ok {
		query += fmt.Sprintf(` AND hospital = $%d`, idx)
		countQuery += fmt.Sprintf(` AND hospital = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["min_rating"]; ok {
		query += fmt.Sprintf(` AND rating >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND rating >= $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY rating DESC, name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}
