package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/curio/apperr"
)

func newListMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testSource() Source {
	return Source{
		Table:       "article",
		IDColumn:    "article_id",
		ExcerptExpr: "brief_html",
		ViewURL:     func(id int64) string { return fmt.Sprintf("/article/view/%d", id) },
		EditURL:     func(id int64) string { return fmt.Sprintf("/my/article/edit/%d", id) },
		DeleteURL:   func(id int64) string { return fmt.Sprintf("/my/article/rm/%d", id) },
		FeatureURL: func(id int64, on bool) string {
			if on {
				return fmt.Sprintf("/my/article/good/%d", id)
			}
			return fmt.Sprintf("/my/article/good/cancel/%d", id)
		},
		CatBase: func(admin bool) string {
			if admin {
				return "/my/article/cat/"
			}
			return "/article/cat/"
		},
		SearchPath: "/article/search",
		CreatePath: "/my/article/add",
	}
}

var rowCols = []string{"id", "title", "user_name", "i_category", "i_type", "i_public", "i_good", "good", "created_at", "thumb", "excerpt", "link_url"}

func summaryRow(rows *sqlmock.Rows, id int64, title string, cat int16) *sqlmock.Rows {
	return rows.AddRow(id, title, "ana", cat, 0, 1, 0, 0, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), nil, nil, nil)
}

func TestRunPublishedCategory(t *testing.T) {
	db, mock, cleanup := newListMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM article WHERE i_public = 1 AND i_category = $1")).
		WithArgs(int16(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	rows := sqlmock.NewRows(rowCols)
	for i := int64(5); i >= 1; i-- {
		summaryRow(rows, i, fmt.Sprintf("title %d", i), 3)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT article_id AS id, title, user_name, i_category, i_type, i_public, i_good, good, created_at, NULL AS thumb, brief_html AS excerpt, NULL AS link_url FROM article WHERE i_public = 1 AND i_category = $1 ORDER BY article_id DESC LIMIT 5 OFFSET 0")).
		WithArgs(int16(3)).
		WillReturnRows(rows)

	f := NewFilter(Published()).Category(3).Page(1).Size(5)
	res, err := f.Run(context.Background(), db, testSource())
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Total)
	require.Len(t, res.Rows, 5)
	for _, r := range res.Rows {
		assert.Equal(t, int16(3), r.Category)
		assert.Equal(t, int16(1), r.Public)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalIndependentOfPage(t *testing.T) {
	db, mock, cleanup := newListMock(t)
	defer cleanup()

	// The count query carries the WHERE clause only; page and size never
	// appear in it.
	countSQL := regexp.QuoteMeta("SELECT COUNT(*) FROM article WHERE user_id = $1")
	for _, page := range []int{1, 4} {
		mock.ExpectQuery(countSQL).WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
		offset := 10 * (page - 1)
		mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf("ORDER BY article_id DESC LIMIT 10 OFFSET %d", offset))).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(rowCols))
	}

	for _, page := range []int{1, 4} {
		f := NewFilter(OwnedBy(9)).Page(page).Size(10)
		res, err := f.Run(context.Background(), db, testSource())
		require.NoError(t, err)
		assert.Equal(t, int64(42), res.Total)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageBeyondRangeIsEmptyNotError(t *testing.T) {
	db, mock, cleanup := newListMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM article WHERE i_public = 1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 20 OFFSET 180")).
		WillReturnRows(sqlmock.NewRows(rowCols))

	res, err := NewFilter(Published()).Page(10).Run(context.Background(), db, testSource())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Empty(t, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageClampsToOne(t *testing.T) {
	f := NewFilter(Published()).Page(0)
	assert.Equal(t, 1, f.PageNum())
	f = NewFilter(Published()).Page(-5)
	assert.Equal(t, 1, f.PageNum())
}

func TestFragmentOrderIsDeterministic(t *testing.T) {
	f := NewFilter(OwnedBy(7)).
		Category(2).
		Type(4).
		Featured(1).
		Search(TitleSubstring("Maps"))
	where, args := f.buildWhere()

	assert.Equal(t,
		" WHERE user_id = $1 AND i_category = $2 AND i_type = $3 AND good = $4 AND LOWER(title) LIKE $5",
		where)
	assert.Equal(t, []interface{}{int64(7), int16(2), int16(4), int16(1), "%maps%"}, args)
}

func TestNoFiltersMeansNoWhere(t *testing.T) {
	where, args := NewFilter(All()).buildWhere()
	assert.Equal(t, "", where)
	assert.Nil(t, args)
}

func TestFullTextSearchBindsTerm(t *testing.T) {
	where, args := NewFilter(Published()).Search(FullText("walking maps")).buildWhere()
	assert.Equal(t, " WHERE i_public = 1 AND search_ti @@ websearch_to_tsquery($1)", where)
	assert.Equal(t, []interface{}{"walking maps"}, args)
}

func TestSubstringSearchLowercasesAndWraps(t *testing.T) {
	where, args := NewFilter(All()).Search(TitleSubstring("GO'; DROP TABLE article--")).buildWhere()
	assert.Equal(t, " WHERE LOWER(title) LIKE $1", where)
	// Hostile input rides in an argument, never in the SQL text.
	assert.Equal(t, []interface{}{"%go'; drop table article--%"}, args)
}

func TestSearchVariantsAreExclusive(t *testing.T) {
	// A Filter holds a single search slot; setting one variant after the
	// other replaces it rather than combining.
	f := NewFilter(All()).Search(FullText("a")).Search(TitleSubstring("b"))
	where, _ := f.buildWhere()
	assert.NotContains(t, where, "websearch_to_tsquery")
	assert.Contains(t, where, "LOWER(title) LIKE")
}

func TestQueryFailurePropagates(t *testing.T) {
	db, mock, cleanup := newListMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

	_, err := NewFilter(Published()).Run(context.Background(), db, testSource())
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "QUERY_FAILED", appErr.Code)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestOrderedByDescendingID(t *testing.T) {
	db, mock, cleanup := newListMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM article")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	rows := sqlmock.NewRows(rowCols)
	summaryRow(rows, 31, "third", 0)
	summaryRow(rows, 20, "second", 0)
	summaryRow(rows, 4, "first", 0)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY article_id DESC")).WillReturnRows(rows)

	res, err := NewFilter(All()).Run(context.Background(), db, testSource())
	require.NoError(t, err)
	for i := 1; i < len(res.Rows); i++ {
		assert.Greater(t, res.Rows[i-1].ID, res.Rows[i].ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
