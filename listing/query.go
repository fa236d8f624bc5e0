package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/eringen/curio/apperr"
)

// Queryer is the subset of sqlx the builder needs; *sqlx.DB satisfies it.
type Queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// buildWhere assembles the WHERE clause from the filter. Fragments append in a
// fixed order — scope, category, type, featured, full-text, substring — and
// every user-supplied value is sent as a bound parameter, never interpolated
// into the SQL text.
func (f Filter) buildWhere() (string, []interface{}) {
	var conds []string
	var args []interface{}

	switch f.scope.kind {
	case scopeOwnedBy:
		args = append(args, f.scope.userID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	case scopePublished:
		conds = append(conds, "i_public = 1")
	}

	if f.category != nil {
		args = append(args, int16(*f.category))
		conds = append(conds, fmt.Sprintf("i_category = $%d", len(args)))
	}
	if f.ctype != nil {
		args = append(args, int16(*f.ctype))
		conds = append(conds, fmt.Sprintf("i_type = $%d", len(args)))
	}
	if f.featured != nil {
		args = append(args, int16(*f.featured))
		conds = append(conds, fmt.Sprintf("good = $%d", len(args)))
	}
	if f.search != nil {
		switch f.search.kind {
		case searchFullText:
			args = append(args, f.search.term)
			conds = append(conds, fmt.Sprintf("search_ti @@ websearch_to_tsquery($%d)", len(args)))
		case searchTitleSubstring:
			args = append(args, "%"+strings.ToLower(f.search.term)+"%")
			conds = append(conds, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Run executes the count query and the page-slice query for the filter
// against src's table and returns both results.
//
// The two queries are deliberately not wrapped in a transaction, matching the
// behavior this component replaces: under concurrent writes the total and the
// page of rows can reflect different snapshots. Acceptable for a content
// listing UI.
func (f Filter) Run(ctx context.Context, db Queryer, src Source) (Result, error) {
	where, args := f.buildWhere()

	var res Result
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", src.Table, where)
	if err := db.GetContext(ctx, &res.Total, countQuery, args...); err != nil {
		return Result{}, apperr.QueryFailed(fmt.Errorf("count %s: %w", src.Table, err))
	}

	offset := f.size * (f.page - 1)
	sliceQuery := fmt.Sprintf(
		`SELECT %s AS id, title, user_name, i_category, i_type, i_public, i_good, good, created_at, %s AS thumb, %s AS excerpt, %s AS link_url FROM %s%s ORDER BY %s DESC LIMIT %d OFFSET %d`,
		src.IDColumn,
		orNull(src.ThumbExpr), orNull(src.ExcerptExpr), orNull(src.LinkExpr),
		src.Table, where, src.IDColumn, f.size, offset,
	)
	if err := db.SelectContext(ctx, &res.Rows, sliceQuery, args...); err != nil {
		return Result{}, apperr.QueryFailed(fmt.Errorf("list %s: %w", src.Table, err))
	}
	return res, nil
}
