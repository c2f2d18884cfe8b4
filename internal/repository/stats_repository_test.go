package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("(SELECT COUNT(*) FROM users WHERE role = 'student') AS total_students")).
		WillReturnRows(sqlmock.NewRows([]string{"total_courses", "total_students", "total_instructors", "total_enrollments"}).AddRow(4, 10, 2, 15))

	totals, err := repo.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, totals.Courses)
	assert.Equal(t, 10, totals.Students)
	assert.Equal(t, 2, totals.Instructors)
	assert.Equal(t, 15, totals.Enrollments)
}
