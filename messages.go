package curio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/curio/apperr"
	"github.com/eringen/curio/listing"
	"github.com/eringen/curio/views"
)

const messagePageSize = 20

// CountUnread returns the number of unread inbox messages for a user.
func (s *Store) CountUnread(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM message WHERE to_user_id = $1 AND in_public = 1 AND i_status = 0`
	var n int64
	if err := s.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, apperr.QueryFailed(fmt.Errorf("count unread %d: %w", userID, err))
	}
	return n, nil
}

// ListInbox returns one page of received messages, newest first, with the
// total count for the pager.
func (s *Store) ListInbox(ctx context.Context, userID int64, page, size int) (int64, []Message, error) {
	return s.listMessages(ctx, "to_user_id", "in_public", userID, page, size)
}

// ListOutbox returns one page of sent messages, newest first.
func (s *Store) ListOutbox(ctx context.Context, userID int64, page, size int) (int64, []Message, error) {
	return s.listMessages(ctx, "user_id", "out_public", userID, page, size)
}

func (s *Store) listMessages(ctx context.Context, sideCol, visCol string, userID int64, page, size int) (int64, []Message, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM message WHERE %s = $1 AND %s = 1", sideCol, visCol)
	var total int64
	if err := s.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return 0, nil, apperr.QueryFailed(fmt.Errorf("count messages: %w", err))
	}
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT id, user_id, user_name, to_user_id, to_user_name, title, body, html,
        i_status, in_public, out_public, created_at
        FROM message WHERE %s = $1 AND %s = 1
        ORDER BY created_at DESC LIMIT %d OFFSET %d`, sideCol, visCol, size, (page-1)*size)
	var out []Message
	if err := s.db.SelectContext(ctx, &out, query, userID); err != nil {
		return 0, nil, apperr.QueryFailed(fmt.Errorf("list messages: %w", err))
	}
	return total, out, nil
}

// GetMessage fetches one message visible to the given user.
func (s *Store) GetMessage(ctx context.Context, id uuid.UUID, userID int64) (*Message, error) {
	const query = `SELECT id, user_id, user_name, to_user_id, to_user_name, title, body, html,
        i_status, in_public, out_public, created_at
        FROM message WHERE id = $1 AND (user_id = $2 OR to_user_id = $2)`
	var msg Message
	if err := s.db.GetContext(ctx, &msg, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.QueryFailed(fmt.Errorf("get message %s: %w", id, err))
	}
	return &msg, nil
}

// InsertMessage stores a new message under a fresh UUID.
func (s *Store) InsertMessage(ctx context.Context, msg Message) (uuid.UUID, error) {
	id := uuid.New()
	const query = `INSERT INTO message (id, user_id, user_name, to_user_id, to_user_name, title, body, html)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query, id, msg.FromID, msg.FromName, msg.ToID, msg.ToName,
		msg.Title, msg.Body, msg.HTML)
	if err != nil {
		return uuid.Nil, apperr.QueryFailed(fmt.Errorf("insert message: %w", err))
	}
	return id, nil
}

// MarkMessageRead flips the unread flag once the recipient opens it.
func (s *Store) MarkMessageRead(ctx context.Context, id uuid.UUID, toUserID int64) error {
	const query = `UPDATE message SET i_status = 1 WHERE id = $1 AND to_user_id = $2`
	if _, err := s.db.ExecContext(ctx, query, id, toUserID); err != nil {
		return apperr.QueryFailed(fmt.Errorf("mark read %s: %w", id, err))
	}
	return nil
}

// HideMessage removes a message from the calling user's box. The other
// party keeps their copy until they delete it too.
func (s *Store) HideMessage(ctx context.Context, id uuid.UUID, userID int64) error {
	const query = `UPDATE message SET
        in_public = CASE WHEN to_user_id = $2 THEN 0 ELSE in_public END,
        out_public = CASE WHEN user_id = $2 THEN 0 ELSE out_public END
        WHERE id = $1 AND (user_id = $2 OR to_user_id = $2)`
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return apperr.QueryFailed(fmt.Errorf("hide message %s: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrForbidden
	}
	return nil
}

func (a *App) setupMessageRoutes() {
	g := a.Echo.Group("/my/message", requireLogin)
	g.GET("", a.messageInbox)
	g.GET("/out", a.messageOutbox)
	g.GET("/add", a.messageForm)
	g.POST("/add", a.messageSend)
	g.GET("/view/:id", a.messageView)
	g.GET("/rm/:id", a.messageRemove)
}

func (a *App) messageInbox(c echo.Context) error {
	return a.messageList(c, true)
}

func (a *App) messageOutbox(c echo.Context) error {
	return a.messageList(c, false)
}

func (a *App) messageList(c echo.Context, inbox bool) error {
	u, _ := CurrentUser(c)
	page := queryPage(c)
	var (
		total int64
		msgs  []Message
		err   error
	)
	heading, base := "Inbox", "/my/message"
	if inbox {
		total, msgs, err = a.Store.ListInbox(c.Request().Context(), u.ID, page, messagePageSize)
	} else {
		heading, base = "Sent", "/my/message/out"
		total, msgs, err = a.Store.ListOutbox(c.Request().Context(), u.ID, page, messagePageSize)
	}
	if err != nil {
		return err
	}
	loc := a.Config.Location()
	rows := make([]views.MessageRow, 0, len(msgs))
	for _, m := range msgs {
		row := views.MessageRow{
			ID:    m.ID.String(),
			Title: m.Title,
			Date:  views.ShowDate(m.CreatedAt, loc),
		}
		if inbox {
			row.Peer = "from " + m.FromName
			row.Unread = m.Status == MessageUnread
		} else {
			row.Peer = "to " + m.ToName
		}
		rows = append(rows, row)
	}
	pager := listing.Pager(base, total, messagePageSize, page)
	body := views.MessageList(heading, rows, pager)
	return Render(c, views.Page(a.pageMeta(c, heading), body))
}

func (a *App) messageForm(c echo.Context) error {
	d := views.MessageFormData{
		CSRF: CsrfToken(c),
		To:   c.QueryParam("to"),
	}
	return Render(c, views.Page(a.pageMeta(c, "New message"), views.MessageForm(d)))
}

func (a *App) messageSend(c echo.Context) error {
	u, _ := CurrentUser(c)
	in := MessageInput{
		ToName: c.FormValue("to"),
		Title:  c.FormValue("title"),
		Body:   c.FormValue("body"),
	}
	errs := in.Check()
	var to *User
	if len(errs) == 0 {
		var err error
		to, err = a.Store.UserByName(c.Request().Context(), in.ToName)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				errs = append(errs, "No such user: "+in.ToName)
			} else {
				return err
			}
		} else if to.ID == u.ID {
			errs = append(errs, "You cannot message yourself.")
		}
	}
	if len(errs) > 0 {
		d := views.MessageFormData{
			CSRF:   CsrfToken(c),
			Errors: errs,
			To:     in.ToName,
			Title:  in.Title,
			Body:   in.Body,
		}
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(a.pageMeta(c, "New message"), views.MessageForm(d)))
	}
	msg := Message{
		FromID:   u.ID,
		FromName: u.Name,
		ToID:     to.ID,
		ToName:   to.Name,
		Title:    in.Title,
		Body:     in.Body,
		HTML:     a.transform.ToHTML(in.Body),
	}
	id, err := a.Store.InsertMessage(c.Request().Context(), msg)
	if err != nil {
		return err
	}
	a.Log.Info("message sent", zap.String("id", id.String()), zap.Int64("from", u.ID), zap.Int64("to", to.ID))
	return redirect(c, "/my/message/out")
}

func (a *App) messageView(c echo.Context) error {
	u, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrNotFound
	}
	msg, err := a.Store.GetMessage(c.Request().Context(), id, u.ID)
	if err != nil {
		return err
	}
	if msg.ToID == u.ID && msg.Status == MessageUnread {
		if err := a.Store.MarkMessageRead(c.Request().Context(), id, u.ID); err != nil {
			a.Log.Warn("mark read", zap.String("id", id.String()), zap.Error(err))
		}
	}
	replyTo := ""
	if msg.ToID == u.ID {
		replyTo = msg.FromName
	}
	body := views.MessageDetail(msg.Title, msg.FromName, msg.ToName,
		views.ShowDate(msg.CreatedAt, a.Config.Location()), msg.HTML, replyTo)
	return Render(c, views.Page(a.pageMeta(c, msg.Title), body))
}

func (a *App) messageRemove(c echo.Context) error {
	u, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := a.Store.HideMessage(c.Request().Context(), id, u.ID); err != nil {
		return err
	}
	return redirect(c, "/my/message")
}
