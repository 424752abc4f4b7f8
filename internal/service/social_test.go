package service

import (
	"context"
	"testing"

	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func friendshipRows(id, from, to uuid.UUID, status domain.FriendshipStatus) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "friend_id", "status", "created_at", "updated_at"}).
		AddRow(id, from, to, status, fixedNow, fixedNow)
}

func TestSendRequest(t *testing.T) {
	t.Run("not to yourself", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewSocialService(f.mock, f.notify).SendRequest(context.Background(), memberID, memberID)
		assert.ErrorIs(t, err, ErrSelfAction)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectQuery("FROM profiles WHERE id").WithArgs(mateID).WillReturnError(pgx.ErrNoRows)
		_, err := NewSocialService(f.mock, f.notify).SendRequest(context.Background(), memberID, mateID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reverse edge blocks a second request", func(t *testing.T) {
		f := newFixture(t)
		expectProfile(f.mock, testProfile(mateID, domain.RoleCloser, 0, nil))
		f.mock.ExpectQuery("SELECT EXISTS").WithArgs(memberID, mateID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		_, err := NewSocialService(f.mock, f.notify).SendRequest(context.Background(), memberID, mateID)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("creates a pending edge", func(t *testing.T) {
		f := newFixture(t)
		expectProfile(f.mock, testProfile(mateID, domain.RoleCloser, 0, nil))
		f.mock.ExpectQuery("SELECT EXISTS").WithArgs(memberID, mateID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		f.mock.ExpectQuery("INSERT INTO friendships").
			WithArgs(memberID, mateID, domain.FriendshipPending).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), fixedNow, fixedNow))
		fr, err := NewSocialService(f.mock, f.notify).SendRequest(context.Background(), memberID, mateID)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipPending, fr.Status)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestAccept_OnlyRecipient(t *testing.T) {
	f := newFixture(t)
	svc := NewSocialService(f.mock, f.notify)
	id := uuid.New()

	f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).
		WillReturnRows(friendshipRows(id, memberID, mateID, domain.FriendshipPending))
	assert.ErrorIs(t, svc.Accept(context.Background(), memberID, id), ErrForbidden)

	f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).
		WillReturnRows(friendshipRows(id, memberID, mateID, domain.FriendshipPending))
	f.mock.ExpectExec("UPDATE friendships SET status").WithArgs(id, mateID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, svc.Accept(context.Background(), mateID, id))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSendMessage_PushesToRecipient(t *testing.T) {
	f := newFixture(t)
	svc := NewSocialService(f.mock, f.notify)

	expectProfile(f.mock, testProfile(mateID, domain.RoleCloser, 0, nil))
	f.mock.ExpectQuery("INSERT INTO private_messages").
		WithArgs(memberID, mateID, "План", "Привет").
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, fixedNow))

	m, err := svc.SendMessage(context.Background(), memberID, mateID, " План ", " Привет ")
	require.NoError(t, err)
	assert.Equal(t, "Привет", m.Message)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, domain.EventPrivateMessage, f.pub.events[0].Type)
	assert.Equal(t, []uuid.UUID{mateID}, f.pub.events[0].UserIDs)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSendMessage_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewSocialService(f.mock, f.notify)

	_, err := svc.SendMessage(context.Background(), memberID, mateID, "", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SendMessage(context.Background(), memberID, memberID, "", "hi")
	assert.ErrorIs(t, err, ErrSelfAction)
}

func TestMarkRead_EmptyIsNoop(t *testing.T) {
	f := newFixture(t)
	n, err := NewSocialService(f.mock, f.notify).MarkRead(context.Background(), memberID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRemoveFriendship(t *testing.T) {
	id := uuid.New()

	t.Run("strangers are forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).
			WillReturnRows(friendshipRows(id, memberID, mateID, domain.FriendshipAccepted))
		err := NewSocialService(f.mock, f.notify).Remove(context.Background(), leaderID, id)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("either side deletes the row", func(t *testing.T) {
		for _, caller := range []uuid.UUID{memberID, mateID} {
			f := newFixture(t)
			f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).
				WillReturnRows(friendshipRows(id, memberID, mateID, domain.FriendshipAccepted))
			f.mock.ExpectExec("DELETE FROM friendships").WithArgs(id).
				WillReturnResult(pgxmock.NewResult("DELETE", 1))
			require.NoError(t, NewSocialService(f.mock, f.notify).Remove(context.Background(), caller, id))
			assert.NoError(t, f.mock.ExpectationsWereMet())
		}
	})

	t.Run("missing row", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).WillReturnError(pgx.ErrNoRows)
		err := NewSocialService(f.mock, f.notify).Remove(context.Background(), memberID, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRejectFriendship_DeletesPendingRequest(t *testing.T) {
	f := newFixture(t)
	svc := NewSocialService(f.mock, f.notify)
	id := uuid.New()

	f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).
		WillReturnRows(friendshipRows(id, memberID, mateID, domain.FriendshipPending))
	assert.ErrorIs(t, svc.Reject(context.Background(), leaderID, id), ErrForbidden)

	f.mock.ExpectQuery("FROM friendships WHERE id").WithArgs(id).
		WillReturnRows(friendshipRows(id, memberID, mateID, domain.FriendshipPending))
	f.mock.ExpectExec("DELETE FROM friendships").WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, svc.Reject(context.Background(), mateID, id))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
