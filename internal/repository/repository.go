package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1`
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateScore records a subscription score calculation
func (r *Repository) CreateScore(ctx context.Context, score *models.SubscriptionScore) error {
	query := `
		INSERT INTO subscription_scores (user_id, age, no_home_period, dependents, subscription_period, income, total_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		score.UserID, score.Age, score.NoHomePeriod, score.Dependents,
		score.SubscriptionPeriod, score.Income, score.TotalScore,
	).Scan(&score.ID, &score.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score: %w", err)
	}
	return nil
}

// DeleteScoresBefore removes score records created before the given time
func (r *Repository) DeleteScoresBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscription_scores WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete scores: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted scores: %w", err)
	}
	return n, nil
}

// CreateApartment inserts an apartment
func (r *Repository) CreateApartment(ctx context.Context, apt *models.Apartment) error {
	return createApartment(ctx, r.db, apt)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func createApartment(ctx context.Context, q queryRower, apt *models.Apartment) error {
	query := `
		INSERT INTO apartments (name, location, competition_rate, min_score, avg_score, coordinates, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := q.QueryRowContext(ctx, query,
		apt.Name, apt.Location, apt.CompetitionRate, apt.MinScore, apt.AvgScore, apt.Coordinates,
	).Scan(&apt.ID, &apt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create apartment: %w", err)
	}
	return nil
}

// UpsertApartment updates the apartment with the same name and location or inserts it
func (r *Repository) UpsertApartment(ctx context.Context, apt *models.Apartment) error {
	query := `
		UPDATE apartments
		SET competition_rate = $3, min_score = $4, avg_score = $5, coordinates = $6
		WHERE name = $1 AND location = $2
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		apt.Name, apt.Location, apt.CompetitionRate, apt.MinScore, apt.AvgScore, apt.Coordinates,
	).Scan(&apt.ID, &apt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.CreateApartment(ctx, apt)
	}
	if err != nil {
		return fmt.Errorf("failed to update apartment: %w", err)
	}
	return nil
}

const apartmentColumns = `id, name, location, competition_rate, min_score, avg_score, coordinates, created_at`

func scanApartment(row interface{ Scan(...any) error }) (*models.Apartment, error) {
	apt := &models.Apartment{}
	err := row.Scan(&apt.ID, &apt.Name, &apt.Location, &apt.CompetitionRate,
		&apt.MinScore, &apt.AvgScore, &apt.Coordinates, &apt.CreatedAt)
	return apt, err
}

// ListApartments returns all apartments ordered by id
func (r *Repository) ListApartments(ctx context.Context) ([]*models.Apartment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+apartmentColumns+` FROM apartments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	defer rows.Close()

	apartments := []*models.Apartment{}
	for rows.Next() {
		apt, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment: %w", err)
		}
		apartments = append(apartments, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	return apartments, nil
}

// GetApartment retrieves an apartment by id
func (r *Repository) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apartmentColumns+` FROM apartments WHERE id = $1`, id)
	apt, err := scanApartment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("apartment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get apartment: %w", err)
	}
	return apt, nil
}

// CountApartments returns the number of stored apartments
func (r *Repository) CountApartments(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM apartments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count apartments: %w", err)
	}
	return count, nil
}

// DeleteApartment removes an apartment by id
func (r *Repository) DeleteApartment(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "apartments", id)
}

// CreateCompetitionUpload stores the apartments of an upload and the upload
// entry itself in one transaction. encode builds the entry's data from the
// apartments once their ids are known.
func (r *Repository) CreateCompetitionUpload(
	ctx context.Context,
	apartments []*models.Apartment,
	entry *models.CompetitionData,
	encode func([]*models.Apartment) (json.RawMessage, error),
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, apt := range apartments {
		if err := createApartment(ctx, tx, apt); err != nil {
			return err
		}
	}

	data, err := encode(apartments)
	if err != nil {
		return fmt.Errorf("failed to encode competition data: %w", err)
	}
	entry.Data = data

	query := `
		INSERT INTO competition_data (user_id, file_name, data, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query, entry.UserID, entry.FileName, string(entry.Data)).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create competition data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit competition upload: %w", err)
	}
	return nil
}

// ListCompetitionData returns all uploads, newest first
func (r *Repository) ListCompetitionData(ctx context.Context) ([]*models.CompetitionData, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, file_name, data, created_at
		FROM competition_data
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competition data: %w", err)
	}
	defer rows.Close()

	entries := []*models.CompetitionData{}
	for rows.Next() {
		entry := &models.CompetitionData{}
		var userID sql.NullInt64
		var data []byte
		if err := rows.Scan(&entry.ID, &userID, &entry.FileName, &data, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan competition data: %w", err)
		}
		if userID.Valid {
			entry.UserID = &userID.Int64
		}
		entry.Data = json.RawMessage(data)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list competition data: %w", err)
	}
	return entries, nil
}

// DeleteCompetitionData removes an upload entry by id. Apartments created by
// the upload are kept.
func (r *Repository) DeleteCompetitionData(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "competition_data", id)
}

func (r *Repository) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
	}
	return nil
}
