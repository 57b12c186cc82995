package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

var apartmentRowColumns = []string{"id", "name", "location", "competition_rate", "min_score", "avg_score", "coordinates", "created_at"}

func TestCreateSchema(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CreateSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("admin", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

	user := &models.User{Username: "admin", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT id, username, password_hash, created_at\s+FROM users`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindUserByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, password_hash, created_at\s+FROM users`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(3, "admin", "hash", now))

	user, err := repo.FindUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestCreateScore(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO subscription_scores`).
		WithArgs(nil, 40, 20, 3, 20, 1500, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	score := &models.SubscriptionScore{Age: 40, NoHomePeriod: 20, Dependents: 3, SubscriptionPeriod: 20, Income: 1500, TotalScore: 100}
	require.NoError(t, repo.CreateScore(context.Background(), score))
	assert.Equal(t, int64(7), score.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScoresBefore(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM subscription_scores WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.DeleteScoresBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestListApartments(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, location, competition_rate, min_score, avg_score, coordinates, created_at FROM apartments ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(apartmentRowColumns).
			AddRow(1, "래미안 아파트", "서울시 강남구", 45.0, 75, 82, []byte(`{"lat":37.5066,"lng":127.0562}`), now).
			AddRow(2, "더샵 아파트", "경기도 성남시", 8.0, 60, 65, []byte(`{"lat":37.4449,"lng":127.1389}`), now))

	apartments, err := repo.ListApartments(context.Background())
	require.NoError(t, err)
	require.Len(t, apartments, 2)
	assert.Equal(t, "래미안 아파트", apartments[0].Name)
	assert.Equal(t, models.Coordinates{Lat: 37.5066, Lng: 127.0562}, apartments[0].Coordinates)
	assert.Equal(t, 8.0, apartments[1].CompetitionRate)
}

func TestGetApartment_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM apartments WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(apartmentRowColumns))

	_, err := repo.GetApartment(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteApartment(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM apartments WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM apartments WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteApartment(context.Background(), 4))
	assert.ErrorIs(t, repo.DeleteApartment(context.Background(), 5), ErrNotFound)
}

func TestUpsertApartment_InsertsWhenMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`UPDATE apartments`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO apartments`).
		WithArgs("힐스테이트", "경기도 하남시", 22.0, 65, 69, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	apt := &models.Apartment{Name: "힐스테이트", Location: "경기도 하남시", CompetitionRate: 22, MinScore: 65, AvgScore: 69}
	require.NoError(t, repo.UpsertApartment(context.Background(), apt))
	assert.Equal(t, int64(11), apt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertApartment_Updates(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`UPDATE apartments`).
		WithArgs("힐스테이트", "경기도 하남시", 25.0, 66, 70, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, now))

	apt := &models.Apartment{Name: "힐스테이트", Location: "경기도 하남시", CompetitionRate: 25, MinScore: 66, AvgScore: 70}
	require.NoError(t, repo.UpsertApartment(context.Background(), apt))
	assert.Equal(t, int64(3), apt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedSampleApartments(t *testing.T) {
	t.Run("skips non-empty table", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM apartments`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		seeded, err := repo.SeedSampleApartments(context.Background())
		require.NoError(t, err)
		assert.False(t, seeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts samples into empty table", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM apartments`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		for i := range models.SampleApartments {
			mock.ExpectQuery(`INSERT INTO apartments`).
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(i+1, time.Now()))
		}

		seeded, err := repo.SeedSampleApartments(context.Background())
		require.NoError(t, err)
		assert.True(t, seeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateCompetitionUpload(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO apartments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(21, now))
	mock.ExpectQuery(`INSERT INTO competition_data`).
		WithArgs(nil, "upload.xlsx", `[21]`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, now))
	mock.ExpectCommit()

	apartments := []*models.Apartment{{Name: "자이", Location: "부산시 해운대구", CompetitionRate: 15, MinScore: 60, AvgScore: 64}}
	entry := &models.CompetitionData{FileName: "upload.xlsx"}
	err := repo.CreateCompetitionUpload(context.Background(), apartments, entry, func(apts []*models.Apartment) (json.RawMessage, error) {
		ids := make([]int64, 0, len(apts))
		for _, a := range apts {
			ids = append(ids, a.ID)
		}
		return json.Marshal(ids)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), entry.ID)
	assert.JSONEq(t, `[21]`, string(entry.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCompetitionUpload_RollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO apartments`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	apartments := []*models.Apartment{{Name: "자이", Location: "부산시 해운대구"}}
	err := repo.CreateCompetitionUpload(context.Background(), apartments, &models.CompetitionData{}, func([]*models.Apartment) (json.RawMessage, error) {
		return json.RawMessage(`[]`), nil
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompetitionData(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, file_name, data, created_at\s+FROM competition_data`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "file_name", "data", "created_at"}).
			AddRow(2, 1, "b.xlsx", []byte(`[]`), now).
			AddRow(1, nil, "a.xlsx", []byte(`[{"id":1}]`), now))

	entries, err := repo.ListCompetitionData(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, int64(1), *entries[0].UserID)
	assert.Nil(t, entries[1].UserID)
	assert.JSONEq(t, `[{"id":1}]`, string(entries[1].Data))
}

func TestDeleteCompetitionData_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM competition_data WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteCompetitionData(context.Background(), 8), ErrNotFound)
}
