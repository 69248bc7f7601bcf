package postgres

import (
	"context"
	"encoding/json"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &Store{Pool: mock}, mock
}

func TestStore_Exists(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM paths WHERE path=\$1\)`).
		WithArgs("users/u1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Exists(ctx, "users/u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_Absent(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM paths WHERE path=\$1`).
		WithArgs("users/u1").
		WillReturnRows(pgxmock.NewRows([]string{"value"}))

	v, err := s.Get(ctx, "users/u1")
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set_Upsert(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO paths \(path, value\) VALUES \(\$1, \$2\)\s+ON CONFLICT \(path\) DO UPDATE SET value = EXCLUDED\.value`).
		WithArgs("artifacts/a1", json.RawMessage(`{"name":"idol"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Set(ctx, "artifacts/a1", []byte(`{"name":"idol"}`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Remove_Subtree(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM paths WHERE path=\$1 OR path LIKE \$2`).
		WithArgs("sessions/s1", `sessions/s1/%`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, s.Remove(ctx, "sessions/s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Children(t *testing.T) {
	s, mock := newStore(t)
	defer mock.Close()
	ctx := context.Background()

	rows := pgxmock.NewRows([]string{"path"}).
		AddRow("sessions/s1/participants/u2").
		AddRow("sessions/s1/participants/u1").
		AddRow("sessions/s1/participants/u1/extra")
	mock.ExpectQuery(`SELECT path FROM paths WHERE path LIKE \$1`).
		WithArgs(`sessions/s1/participants/%`).
		WillReturnRows(rows)

	got, err := s.Children(ctx, "sessions/s1/participants")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeSubtree_EscapesMetacharacters(t *testing.T) {
	require.Equal(t, `users/a\%b/%`, likeSubtree("users/a%b"))
	require.Equal(t, `users/a\_b/%`, likeSubtree("users/a_b"))
}
