package curio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/curio/apperr"
	"github.com/eringen/curio/listing"
)

// ContentKind describes one content table well enough for the generic
// handlers and the listing component to drive it. Articles, notes and
// books are three kinds over the same machinery.
type ContentKind struct {
	Key        string // path segment: "article", "note", "book"
	Label      string // heading on list pages
	Table      string
	IDCol      string
	HasCover   bool // thumbnail column in listings
	HasAuthor  bool // book extras: author, press, file
	HasLink    bool // url renders as an external link
	PageSize   int
	Categories listing.Taxonomy
	Types      listing.Taxonomy
	ThumbBase  string
}

// Source builds the listing adapter for this kind.
func (k ContentKind) Source() listing.Source {
	src := listing.Source{
		Table:       k.Table,
		IDColumn:    k.IDCol,
		ExcerptExpr: "brief_html",
		ThumbBase:   k.ThumbBase,
		ViewURL:     func(id int64) string { return fmt.Sprintf("/%s/view/%d", k.Key, id) },
		EditURL:     func(id int64) string { return fmt.Sprintf("/my/%s/edit/%d", k.Key, id) },
		DeleteURL:   func(id int64) string { return fmt.Sprintf("/my/%s/rm/%d", k.Key, id) },
		FeatureURL: func(id int64, on bool) string {
			if on {
				return fmt.Sprintf("/my/%s/good/%d", k.Key, id)
			}
			return fmt.Sprintf("/my/%s/good/cancel/%d", k.Key, id)
		},
		CatBase: func(admin bool) string {
			if admin {
				return fmt.Sprintf("/my/%s/cat/", k.Key)
			}
			return fmt.Sprintf("/%s/cat/", k.Key)
		},
		SearchPath: fmt.Sprintf("/%s/search", k.Key),
		CreatePath: fmt.Sprintf("/my/%s/add", k.Key),
	}
	if k.HasCover {
		src.ThumbExpr = "file"
	}
	if k.HasLink {
		src.LinkExpr = "url"
	}
	return src
}

// selectCols is the select list shared by every content table, with the
// primary key aliased to id. Book extras are selected as NULL for tables
// that lack them.
func (k ContentKind) selectCols() string {
	author, press, file := "NULL AS author", "NULL AS press", "NULL AS file"
	if k.HasAuthor {
		author, press, file = "author", "press", "file"
	}
	return fmt.Sprintf(`%s AS id, user_id, user_name, title, body, html, brief, brief_html,
        tags, url, i_public, i_type, i_category, i_good, good, good_at, click,
        created_at, updated_at, %s, %s, %s`, k.IDCol, author, press, file)
}

// GetContent fetches one row by id.
func (s *Store) GetContent(ctx context.Context, k ContentKind, id int64) (*Content, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", k.selectCols(), k.Table, k.IDCol)
	var c Content
	if err := s.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.QueryFailed(fmt.Errorf("get %s %d: %w", k.Key, id, err))
	}
	return &c, nil
}

// InsertContent stores a new row and returns its id.
func (s *Store) InsertContent(ctx context.Context, k ContentKind, owner User, in ContentInput, html, briefHTML string) (int64, error) {
	cols := []string{"user_id", "user_name", "title", "body", "html", "brief", "brief_html",
		"tags", "url", "i_public", "i_type", "i_category", "i_good"}
	args := []interface{}{owner.ID, owner.Name, in.Title, in.Body, html,
		nullStr(in.Brief), nullStr(briefHTML), nullStr(in.Tags), nullStr(in.URL),
		in.Public, int16(in.Type), int16(in.Category), in.Good}
	if k.HasAuthor {
		cols = append(cols, "author", "press", "file")
		args = append(args, nullStr(in.Author), nullStr(in.Press), nullStr(in.File))
	}
	holders := make([]string, len(cols))
	for i := range cols {
		holders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		k.Table, strings.Join(cols, ", "), strings.Join(holders, ", "), k.IDCol)
	var id int64
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, apperr.QueryFailed(fmt.Errorf("insert %s: %w", k.Key, err))
	}
	return id, nil
}

// UpdateContent rewrites an existing row. Only the owner may update;
// a moderator editing someone else's row passes sudo.
func (s *Store) UpdateContent(ctx context.Context, k ContentKind, id int64, owner User, sudo bool, in ContentInput, html, briefHTML string) error {
	sets := []string{"title = $1", "body = $2", "html = $3", "brief = $4", "brief_html = $5",
		"tags = $6", "url = $7", "i_public = $8", "i_type = $9", "i_category = $10",
		"i_good = $11", "updated_at = $12"}
	args := []interface{}{in.Title, in.Body, html, nullStr(in.Brief), nullStr(briefHTML),
		nullStr(in.Tags), nullStr(in.URL), in.Public, int16(in.Type), int16(in.Category),
		in.Good, time.Now()}
	if k.HasAuthor {
		sets = append(sets, fmt.Sprintf("author = $%d", len(args)+1))
		args = append(args, nullStr(in.Author))
		sets = append(sets, fmt.Sprintf("press = $%d", len(args)+1))
		args = append(args, nullStr(in.Press))
		sets = append(sets, fmt.Sprintf("file = $%d", len(args)+1))
		args = append(args, nullStr(in.File))
	}
	where := fmt.Sprintf("%s = $%d", k.IDCol, len(args)+1)
	args = append(args, id)
	if !sudo {
		where += fmt.Sprintf(" AND user_id = $%d", len(args)+1)
		args = append(args, owner.ID)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", k.Table, strings.Join(sets, ", "), where)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.QueryFailed(fmt.Errorf("update %s %d: %w", k.Key, id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrForbidden
	}
	return nil
}

// DeleteContent removes a row, enforcing ownership unless sudo.
func (s *Store) DeleteContent(ctx context.Context, k ContentKind, id int64, owner User, sudo bool) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND user_id = $2", k.Table, k.IDCol)
	args := []interface{}{id, owner.ID}
	if sudo {
		query = fmt.Sprintf("DELETE FROM %s WHERE %s = $1", k.Table, k.IDCol)
		args = args[:1]
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.QueryFailed(fmt.Errorf("delete %s %d: %w", k.Key, id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrForbidden
	}
	return nil
}

// BumpClick increments the view counter. Failures are reported but the
// caller treats them as non-fatal.
func (s *Store) BumpClick(ctx context.Context, k ContentKind, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET click = click + 1 WHERE %s = $1", k.Table, k.IDCol)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return apperr.QueryFailed(fmt.Errorf("bump click %s %d: %w", k.Key, id, err))
	}
	return nil
}

// SetFeatured toggles the moderator-controlled featured flag.
func (s *Store) SetFeatured(ctx context.Context, k ContentKind, id int64, on bool) error {
	var query string
	if on {
		query = fmt.Sprintf("UPDATE %s SET good = 1, good_at = now() WHERE %s = $1", k.Table, k.IDCol)
	} else {
		query = fmt.Sprintf("UPDATE %s SET good = 0, good_at = NULL WHERE %s = $1", k.Table, k.IDCol)
	}
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return apperr.QueryFailed(fmt.Errorf("set featured %s %d: %w", k.Key, id, err))
	}
	return nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
