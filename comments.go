package curio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/curio/apperr"
)

// ListComments returns the comments on one content row, oldest first.
func (s *Store) ListComments(ctx context.Context, kind string, targetID int64) ([]Comment, error) {
	const query = `SELECT id, target_kind, target_id, user_id, user_name, body, html, created_at
        FROM comment WHERE target_kind = $1 AND target_id = $2 ORDER BY id`
	var out []Comment
	if err := s.db.SelectContext(ctx, &out, query, kind, targetID); err != nil {
		return nil, apperr.QueryFailed(fmt.Errorf("list comments %s/%d: %w", kind, targetID, err))
	}
	return out, nil
}

// InsertComment attaches a comment to a content row.
func (s *Store) InsertComment(ctx context.Context, cm Comment) (int64, error) {
	const query = `INSERT INTO comment (target_kind, target_id, user_id, user_name, body, html)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	err := s.db.GetContext(ctx, &id, query, cm.TargetKind, cm.TargetID, cm.UserID, cm.UserName, cm.Body, cm.HTML)
	if err != nil {
		return 0, apperr.QueryFailed(fmt.Errorf("insert comment: %w", err))
	}
	return id, nil
}

// GetComment fetches one comment by id.
func (s *Store) GetComment(ctx context.Context, id int64) (*Comment, error) {
	const query = `SELECT id, target_kind, target_id, user_id, user_name, body, html, created_at
        FROM comment WHERE id = $1`
	var cm Comment
	if err := s.db.GetContext(ctx, &cm, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.QueryFailed(fmt.Errorf("get comment %d: %w", id, err))
	}
	return &cm, nil
}

// DeleteComment removes a comment, enforcing ownership unless sudo.
func (s *Store) DeleteComment(ctx context.Context, id, userID int64, sudo bool) error {
	query := "DELETE FROM comment WHERE id = $1 AND user_id = $2"
	args := []interface{}{id, userID}
	if sudo {
		query = "DELETE FROM comment WHERE id = $1"
		args = args[:1]
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.QueryFailed(fmt.Errorf("delete comment %d: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrForbidden
	}
	return nil
}

func (a *App) setupCommentRoutes() {
	g := a.Echo.Group("/my/comment", requireLogin)
	g.POST("/add/:kind/:id", a.commentAdd)
	g.GET("/rm/:id", a.commentRemove)
}

func (a *App) contentKindByKey(key string) (ContentKind, bool) {
	for _, k := range a.kinds {
		if k.Key == key {
			return k, true
		}
	}
	return ContentKind{}, false
}

func (a *App) commentAdd(c echo.Context) error {
	kind, ok := a.contentKindByKey(c.Param("kind"))
	if !ok {
		return apperr.ErrNotFound
	}
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	ctx := c.Request().Context()
	content, err := a.Store.GetContent(ctx, kind, id)
	if err != nil {
		return err
	}
	u, _ := CurrentUser(c)
	if content.Public != 1 && content.OwnerID != u.ID && !u.Sudo() {
		return apperr.ErrNotFound
	}
	body := strings.TrimSpace(c.FormValue("body"))
	if body == "" {
		return redirect(c, fmt.Sprintf("/%s/view/%d", kind.Key, id))
	}
	cm := Comment{
		TargetKind: kind.Key,
		TargetID:   id,
		UserID:     u.ID,
		UserName:   u.Name,
		Body:       body,
		HTML:       a.transform.ToHTML(body),
	}
	cmID, err := a.Store.InsertComment(ctx, cm)
	if err != nil {
		return err
	}
	a.Log.Info("comment posted", zap.String("kind", kind.Key), zap.Int64("target", id), zap.Int64("comment", cmID))
	return redirect(c, fmt.Sprintf("/%s/view/%d", kind.Key, id))
}

func (a *App) commentRemove(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	u, _ := CurrentUser(c)
	cm, err := a.Store.GetComment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteComment(c.Request().Context(), id, u.ID, u.Sudo()); err != nil {
		return err
	}
	return redirect(c, fmt.Sprintf("/%s/view/%d", cm.TargetKind, cm.TargetID))
}
