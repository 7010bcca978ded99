package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCommitsUserAndMembership(t *testing.T) {
	mock := newMockPool(t)
	store := NewMembershipStore(mock)

	pollID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO poll_users`).
		WithArgs(pollID, pgxmock.AnyArg(), "bob").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	userID, err := store.Join(context.Background(), pollID, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRollsBackWhenMembershipInsertFails(t *testing.T) {
	mock := newMockPool(t)
	store := NewMembershipStore(mock)

	pollID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO poll_users`).
		WithArgs(pollID, pgxmock.AnyArg(), "bob").
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	_, err := store.Join(context.Background(), pollID, "bob")
	require.Error(t, err)
	assert.ErrorContains(t, err, "insert membership")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMembers(t *testing.T) {
	mock := newMockPool(t)
	store := NewMembershipStore(mock)

	pollID := uuid.New()
	aliceID := uuid.New()
	bobID := uuid.New()

	mock.ExpectQuery(`SELECT poll_id, user_id, username`).
		WithArgs(pollID).
		WillReturnRows(pgxmock.NewRows([]string{"poll_id", "user_id", "username"}).
			AddRow(pollID, aliceID, "alice").
			AddRow(pollID, bobID, "bob"))

	members, err := store.ListMembers(context.Background(), pollID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, bobID, members[1].UserID)
}

func TestListMembersReturnsEmptySliceNotNil(t *testing.T) {
	mock := newMockPool(t)
	store := NewMembershipStore(mock)

	pollID := uuid.New()
	mock.ExpectQuery(`SELECT poll_id, user_id, username`).
		WithArgs(pollID).
		WillReturnRows(pgxmock.NewRows([]string{"poll_id", "user_id", "username"}))

	members, err := store.ListMembers(context.Background(), pollID)
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestIsMember(t *testing.T) {
	mock := newMockPool(t)
	store := NewMembershipStore(mock)

	pollID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(pollID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.IsMember(context.Background(), pollID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(pollID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err = store.IsMember(context.Background(), pollID, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}
