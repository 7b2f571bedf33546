package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personen-api/internal/domain"
)

// ErrPersonNotFound reports that no personen row matches the requested id.
var ErrPersonNotFound = errors.New("person not found")

// PersonRepository is the persistence contract for person records.
type PersonRepository interface {
	Create(ctx context.Context, person domain.Person) (int64, error)
	List(ctx context.Context) ([]domain.Person, error)
	GetByID(ctx context.Context, id int64) (domain.Person, error)
	Update(ctx context.Context, person domain.Person) (domain.Person, error)
	Delete(ctx context.Context, id int64) error
}

// PgPersonRepository implements PersonRepository using pgxpool.
type PgPersonRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonRepository(pool *pgxpool.Pool) *PgPersonRepository {
	return &PgPersonRepository{pool: pool}
}

func (r *PgPersonRepository) Create(ctx context.Context, person domain.Person) (int64, error) {
	const query = `
		INSERT INTO personen (vorname, nachname, plz, strasse, ort, telefonnummer, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		person.Vorname,
		person.Nachname,
		person.PLZ,
		person.Strasse,
		person.Ort,
		person.Telefonnummer,
		person.Email,
	).Scan(&id)
	return id, err
}

func (r *PgPersonRepository) List(ctx context.Context) ([]domain.Person, error) {
	const query = `
		SELECT id, vorname, nachname, plz, strasse, ort, telefonnummer, email
		FROM personen
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		var p domain.Person
		if err := scanPerson(rows.Scan, &p); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}

	return persons, rows.Err()
}

func (r *PgPersonRepository) GetByID(ctx context.Context, id int64) (domain.Person, error) {
	const query = `
		SELECT id, vorname, nachname, plz, strasse, ort, telefonnummer, email
		FROM personen
		WHERE id = $1
	`

	var p domain.Person
	err := scanPerson(r.pool.QueryRow(ctx, query, id).Scan, &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Person{}, ErrPersonNotFound
	}
	return p, err
}

// Update replaces all seven columns of a row. RETURNING collapses the
// update-and-reselect into one statement; zero matched rows surface as
// ErrPersonNotFound.
func (r *PgPersonRepository) Update(ctx context.Context, person domain.Person) (domain.Person, error) {
	const query = `
		UPDATE personen
		SET vorname = $1, nachname = $2, plz = $3, strasse = $4, ort = $5, telefonnummer = $6, email = $7
		WHERE id = $8
		RETURNING id, vorname, nachname, plz, strasse, ort, telefonnummer, email
	`

	var updated domain.Person
	err := scanPerson(r.pool.QueryRow(ctx, query,
		person.Vorname,
		person.Nachname,
		person.PLZ,
		person.Strasse,
		person.Ort,
		person.Telefonnummer,
		person.Email,
		person.ID,
	).Scan, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Person{}, ErrPersonNotFound
	}
	return updated, err
}

func (r *PgPersonRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM personen WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func scanPerson(scan func(dest ...any) error, p *domain.Person) error {
	return scan(
		&p.ID,
		&p.Vorname,
		&p.Nachname,
		&p.PLZ,
		&p.Strasse,
		&p.Ort,
		&p.Telefonnummer,
		&p.Email,
	)
}
