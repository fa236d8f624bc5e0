package curio

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/curio/apperr"
)

var messageCols = []string{"id", "user_id", "user_name", "to_user_id", "to_user_name",
	"title", "body", "html", "i_status", "in_public", "out_public", "created_at"}

func TestCountUnreadOnlyVisibleInbox(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM message WHERE to_user_id = $1 AND in_public = 1 AND i_status = 0")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := s.CountUnread(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestListInboxPagesAndCounts(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM message WHERE to_user_id = $1 AND in_public = 1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(41)))

	rows := sqlmock.NewRows(messageCols).AddRow(
		uuid.New(), int64(9), "bob", int64(3), "ana", "hi", "body", "<p>body</p>",
		int16(0), int16(1), int16(1), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(
		"ORDER BY created_at DESC LIMIT 20 OFFSET 40")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	total, msgs, err := s.ListInbox(context.Background(), 3, 3, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(41), total)
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob", msgs[0].FromName)
	assert.Equal(t, int16(MessageUnread), msgs[0].Status)
}

func TestGetMessageScopedToParticipants(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("(user_id = $2 OR to_user_id = $2)")).
		WithArgs(id, int64(99)).
		WillReturnRows(sqlmock.NewRows(messageCols))

	_, err := s.GetMessage(context.Background(), id, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHideMessageForbiddenForOutsider(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE message SET")).
		WithArgs(id, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.HideMessage(context.Background(), id, 99)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMarkMessageReadScopedToRecipient(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE message SET i_status = 1 WHERE id = $1 AND to_user_id = $2")).
		WithArgs(id, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.MarkMessageRead(context.Background(), id, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
