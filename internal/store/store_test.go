package store

import (
	"context"
	"errors"
	"testing"

	"territory-engine/internal/geo"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return AttachDB(db), mock
}

func TestLoadCatalogs(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("SELECT id, label FROM _landmark_catalogs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).
			AddRow("theaters", "Movie Theaters").
			AddRow("empty", "Empty"))
	mock.ExpectQuery("SELECT name, lng, lat FROM _landmarks").WithArgs("theaters").
		WillReturnRows(sqlmock.NewRows([]string{"name", "lng", "lat"}).
			AddRow("Roxie Theater", -122.4224, 37.7649).
			AddRow("Castro Theatre", -122.4348, 37.7620))
	mock.ExpectQuery("SELECT name, lng, lat FROM _landmarks").WithArgs("empty").
		WillReturnRows(sqlmock.NewRows([]string{"name", "lng", "lat"}))

	cs, err := s.LoadCatalogs(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "Movie Theaters", cs[0].Label)
	require.Len(t, cs[0].Landmarks, 2)
	assert.Equal(t, "Roxie Theater", cs[0].Landmarks[0].Name)
	assert.Equal(t, -122.4224, cs[0].Landmarks[0].Longitude)
	assert.Empty(t, cs[1].Landmarks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCatalogsRejectsDuplicates(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("SELECT id, label FROM _landmark_catalogs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).AddRow("dup", "Dup"))
	mock.ExpectQuery("SELECT name, lng, lat FROM _landmarks").WithArgs("dup").
		WillReturnRows(sqlmock.NewRows([]string{"name", "lng", "lat"}).
			AddRow("A", 1.0, 1.0).
			AddRow("A", 2.0, 2.0))

	_, err := s.LoadCatalogs(context.Background())
	assert.ErrorContains(t, err, "duplicate landmark")
}

func TestUpsertCatalog(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO _landmark_catalogs").WithArgs("libraries", "Libraries", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.UpsertCatalog(context.Background(), "libraries", "Libraries", 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLandmarks(t *testing.T) {
	s, mock := newMock(t)
	lms := []geo.Landmark{
		{GeoPoint: geo.GeoPoint{Longitude: -122.41, Latitude: 37.77}, Name: "Main"},
		{GeoPoint: geo.GeoPoint{Longitude: -122.43, Latitude: 37.76}, Name: "Mission"},
	}
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM _landmarks").WithArgs("libraries").WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO _landmarks")
	prep.ExpectExec().WithArgs("libraries", "Main", -122.41, 37.77, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("libraries", "Mission", -122.43, 37.76, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.ReplaceLandmarks(context.Background(), "libraries", lms))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLandmarksRollsBack(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM _landmarks").WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO _landmarks")
	prep.ExpectExec().WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := s.ReplaceLandmarks(context.Background(), "x", []geo.Landmark{{Name: "A"}})
	assert.ErrorContains(t, err, `insert landmark "A"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	require.NoError(t, AttachDB(db).Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
