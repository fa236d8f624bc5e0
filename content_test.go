package curio

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/curio/apperr"
)

func newStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	s := newStoreFromDB(sqlx.NewDb(db, "sqlmock"))
	return s, mock, func() { db.Close() }
}

func articleKind() ContentKind {
	return ContentKind{Key: "article", Label: "Articles", Table: "article", IDCol: "article_id", PageSize: 20}
}

func bookKind() ContentKind {
	return ContentKind{Key: "book", Label: "Books", Table: "book", IDCol: "book_id", HasCover: true, HasAuthor: true, PageSize: 20}
}

var contentCols = []string{"id", "user_id", "user_name", "title", "body", "html", "brief", "brief_html",
	"tags", "url", "i_public", "i_type", "i_category", "i_good", "good", "good_at", "click",
	"created_at", "updated_at", "author", "press", "file"}

func TestGetContentNotFound(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM article WHERE article_id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(contentCols))

	_, err := s.GetContent(context.Background(), articleKind(), 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetContentAliasesPrimaryKey(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(contentCols).AddRow(
		int64(7), int64(3), "ana", "Title", "Body", "<p>Body</p>", nil, nil,
		nil, nil, int16(1), int16(0), int16(2), int16(0), int16(0), nil, int64(4),
		time.Now(), nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT article_id AS id")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	c, err := s.GetContent(context.Background(), articleKind(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "ana", c.OwnerName)
	assert.Equal(t, int16(2), c.Category)
	assert.False(t, c.Author.Valid)
}

func TestInsertContentBookCarriesExtras(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	in := ContentInput{
		Title:    "SICP",
		Body:     "classic",
		Public:   1,
		Category: 2,
		Author:   "Abelson",
		Press:    "MIT Press",
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO book")).
		WithArgs(int64(3), "ana", "SICP", "classic", "<p>classic</p>", nil, nil,
			nil, nil, int16(1), int16(0), int16(2), int16(0),
			nullStr("Abelson"), nullStr("MIT Press"), nil).
		WillReturnRows(sqlmock.NewRows([]string{"book_id"}).AddRow(int64(11)))

	id, err := s.InsertContent(context.Background(), bookKind(),
		User{ID: 3, Name: "ana"}, in, "<p>classic</p>", "")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContentEnforcesOwnership(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE article SET .+ WHERE article_id = \$13 AND user_id = \$14`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	in := ContentInput{Title: "t", Body: "b"}
	err := s.UpdateContent(context.Background(), articleKind(), 7,
		User{ID: 5, Name: "eve"}, false, in, "<p>b</p>", "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateContentSudoSkipsOwnerClause(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE article SET .+ WHERE article_id = \$13$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	in := ContentInput{Title: "t", Body: "b"}
	err := s.UpdateContent(context.Background(), articleKind(), 7,
		User{ID: 5, Name: "mod", Role: RoleModerator}, true, in, "<p>b</p>", "")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContentOwnerScoped(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM article WHERE article_id = $1 AND user_id = $2")).
		WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.DeleteContent(context.Background(), articleKind(), 7, User{ID: 3}, false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContentForbiddenForStranger(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM article WHERE article_id = $1 AND user_id = $2")).
		WithArgs(int64(7), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteContent(context.Background(), articleKind(), 7, User{ID: 99}, false)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestBumpClickIncrements(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE article SET click = click + 1 WHERE article_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.BumpClick(context.Background(), articleKind(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFeaturedTogglesTimestamp(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE article SET good = 1, good_at = now() WHERE article_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE article SET good = 0, good_at = NULL WHERE article_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetFeatured(context.Background(), articleKind(), 7, true))
	require.NoError(t, s.SetFeatured(context.Background(), articleKind(), 7, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorsAreTyped(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE article SET click")).
		WillReturnError(boom)

	err := s.BumpClick(context.Background(), articleKind(), 7)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "QUERY_FAILED", ae.Code)
	assert.ErrorIs(t, err, boom)
}
