package secrets

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var (
	secretCols = []string{"id", "user_id", "title", "encrypted_data", "iv", "type", "description", "created_at", "updated_at"}
	t1         = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2         = t1.Add(time.Hour)
)

const (
	insertQ  = `(?s)^INSERT\s+INTO\s+secrets\s*\(id,\s*user_id,\s*title,\s*encrypted_data,\s*iv,\s*type,\s*description\)\s*VALUES\s*\(\$1,.*\$7\)\s*RETURNING\s+created_at,\s*updated_at$`
	getQ     = `(?s)^SELECT\s+id,\s*user_id,.*FROM\s+secrets\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	lockQ    = `(?s)^SELECT\s+id,\s*user_id,.*FROM\s+secrets\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+FOR\s+UPDATE$`
	listQ    = `(?s)^SELECT\s+id,.*FROM\s+secrets\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+\(\$2::text\s*=\s*''\s+OR\s+type\s*=\s*\$2\)\s+ORDER\s+BY\s+created_at\s+DESC,\s*id$`
	updateQ  = `(?s)^UPDATE\s+secrets\s+SET\s+title\s*=\s*\$3,\s*encrypted_data\s*=\s*\$4,\s*iv\s*=\s*\$5,.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+updated_at$`
	deleteQ  = `(?s)^DELETE\s+FROM\s+secrets\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+id,`
	dbErrExp = `db error: .*db down`
)

func sampleRow(rows *sqlmock.Rows, id, title string, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "u-1", title, "c1ph3r", "0011", "key", "desc", created, created)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("s-1", "u-1", "api-key", "c1ph3r", "0011", "key", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(t1, t1))

	s, err := repo.Create(context.Background(), &models.Secret{
		ID: "s-1", UserID: "u-1", Title: "api-key", EncryptedData: "c1ph3r", IV: "0011", Type: models.SecretTypeKey,
	})
	require.NoError(t, err)
	assert.Equal(t, t1, s.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Secret{ID: "s-1"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(dbErrExp), err.Error())
}

func TestGetByID_ScopedToOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).
		WithArgs("s-1", "u-1").
		WillReturnRows(sampleRow(sqlmock.NewRows(secretCols), "s-1", "api-key", t1))
	mock.ExpectQuery(getQ).
		WithArgs("s-1", "u-2").
		WillReturnError(sql.ErrNoRows)

	s, err := repo.GetByID(context.Background(), "u-1", "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.SecretTypeKey, s.Type)
	assert.Equal(t, "c1ph3r", s.EncryptedData)

	_, err = repo.GetByID(context.Background(), "u-2", "s-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDForUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(lockQ).
		WithArgs("s-1", "u-1").
		WillReturnRows(sampleRow(sqlmock.NewRows(secretCols), "s-1", "api-key", t1))

	_, err := repo.GetByIDForUpdate(context.Background(), "u-1", "s-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(secretCols)
	sampleRow(rows, "s-2", "newer", t2)
	sampleRow(rows, "s-1", "older", t1)

	mock.ExpectQuery(listQ).WithArgs("u-1", "key").WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u-1", models.SecretTypeKey)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s-2", got[0].ID)
	assert.Equal(t, "s-1", got[1].ID)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WithArgs("u-1", "").WillReturnRows(sqlmock.NewRows(secretCols))

	got, err := repo.List(context.Background(), "u-1", "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "u-1", "")
	assert.Regexp(t, dbErrExp, err.Error())

	repo, mock = newRepoWithMock(t)
	rows := sqlmock.NewRows(secretCols)
	sampleRow(rows, "s-1", "a", t1).RowError(0, errors.New("db down"))
	mock.ExpectQuery(listQ).WillReturnRows(rows)

	_, err = repo.List(context.Background(), "u-1", "")
	require.Error(t, err)
	assert.Regexp(t, dbErrExp, err.Error())
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(updateQ).
		WithArgs("s-1", "u-1", "renamed", "n3w", "2233", "password", "").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(t2))

	s := &models.Secret{ID: "s-1", UserID: "u-1", Title: "renamed", EncryptedData: "n3w", IV: "2233", Type: models.SecretTypePassword}
	require.NoError(t, repo.Update(context.Background(), s))
	assert.Equal(t, t2, s.UpdatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(updateQ).WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &models.Secret{ID: "s-1", UserID: "u-2"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(deleteQ).
		WithArgs("s-1", "u-1").
		WillReturnRows(sampleRow(sqlmock.NewRows(secretCols), "s-1", "api-key", t1))
	mock.ExpectQuery(deleteQ).
		WithArgs("s-1", "u-1").
		WillReturnError(sql.ErrNoRows)

	s, err := repo.Delete(context.Background(), "u-1", "s-1")
	require.NoError(t, err)
	assert.Equal(t, "api-key", s.Title)

	_, err = repo.Delete(context.Background(), "u-1", "s-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
