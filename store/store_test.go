package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"keubot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := s.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInferDriver(t *testing.T) {
	assert.Equal(t, "postgres", inferDriver("postgres://u:p@localhost/db"))
	assert.Equal(t, "postgres", inferDriver("host=localhost user=x dbname=y"))
	assert.Equal(t, "sqlite", inferDriver("data/keubot.db"))
}

func TestGetOrCreateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u1, err := s.GetOrCreateUser(ctx, "628111@s.whatsapp.net", "Ani")
	require.NoError(t, err)
	u2, err := s.GetOrCreateUser(ctx, "628111@s.whatsapp.net", "Ani Lestari")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)

	found, err := s.FindUserByPhone(ctx, "628111@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, "Ani Lestari", found.Name)

	_, err = s.FindUserByPhone(ctx, "unknown")
	assert.True(t, IsNotFound(err))
}

func TestTransactionDeleteRestoresBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.GetOrCreateUser(ctx, "628222@s.whatsapp.net", "")
	require.NoError(t, err)

	_, err = s.CreateTransaction(ctx, &models.Transaction{UserID: u.ID, Type: models.TypeIncome, Amount: 100000, PaymentMethod: models.PaymentCash, Date: "2026-10-01"})
	require.NoError(t, err)
	before, err := s.CreateTransaction(ctx, &models.Transaction{UserID: u.ID, Type: models.TypeIncome, Amount: 50000, PaymentMethod: models.PaymentBank, Date: "2026-10-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), before.Cash)
	assert.Equal(t, int64(50000), before.Bank)

	for _, method := range []string{models.PaymentCash, models.PaymentBank} {
		tx := &models.Transaction{UserID: u.ID, Type: models.TypeExpense, Amount: 30000, PaymentMethod: method, Date: "2026-10-02"}
		after, err := s.CreateTransaction(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, before.Total()-30000, after.Total())

		deleted, restored, err := s.DeleteTransaction(ctx, tx.ID, u.ID)
		require.NoError(t, err)
		assert.Equal(t, tx.ID, deleted.ID)
		assert.Equal(t, before.Cash, restored.Cash)
		assert.Equal(t, before.Bank, restored.Bank)
	}
}

func TestDeleteTransactionChecksOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner, _ := s.GetOrCreateUser(ctx, "owner", "")
	other, _ := s.GetOrCreateUser(ctx, "other", "")

	tx := &models.Transaction{UserID: owner.ID, Type: models.TypeExpense, Amount: 1000, Date: "2026-10-02"}
	_, err := s.CreateTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, tx.PaymentMethod)

	_, _, err = s.DeleteTransaction(ctx, tx.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.DeleteTransaction(ctx, 9999, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	bal, err := s.GetBalance(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), bal.Cash)
}

func TestCreateTransactionRejectsNonPositive(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTransaction(context.Background(), &models.Transaction{UserID: 1, Type: models.TypeExpense, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, _ := s.GetOrCreateUser(ctx, "agg", "")
	rows := []models.Transaction{
		{Type: models.TypeExpense, Amount: 25000, Category: "Makan", Date: "2026-10-01"},
		{Type: models.TypeExpense, Amount: 15000, Category: "Makan", Date: "2026-10-02"},
		{Type: models.TypeExpense, Amount: 50000, Category: "Transport", Date: "2026-10-02"},
		{Type: models.TypeIncome, Amount: 5000000, Category: "Gaji", Date: "2026-10-01"},
		{Type: models.TypeExpense, Amount: 70000, Category: "Makan", Date: "2026-09-30"},
	}
	for i := range rows {
		rows[i].UserID = u.ID
		_, err := s.CreateTransaction(ctx, &rows[i])
		require.NoError(t, err)
	}

	cats, err := s.CategoryTotals(ctx, u.ID, "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Gaji", cats[0].Category)
	var makan models.CategoryTotal
	for _, c := range cats {
		if c.Category == "Makan" {
			makan = c
		}
	}
	assert.Equal(t, int64(40000), makan.Total)
	assert.Equal(t, int64(2), makan.Count)

	days, err := s.DailyTotals(ctx, u.ID, "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, models.DailyTotal{Date: "2026-10-01", Income: 5000000, Expense: 25000}, days[0])
	assert.Equal(t, models.DailyTotal{Date: "2026-10-02", Income: 0, Expense: 65000}, days[1])

	byCat, err := s.ListTransactionsByCategory(ctx, u.ID, "makan", "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Len(t, byCat, 2)
}

func TestReconcileBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, _ := s.GetOrCreateUser(ctx, "rec", "")
	_, err := s.CreateTransaction(ctx, &models.Transaction{UserID: u.ID, Type: models.TypeIncome, Amount: 200000, PaymentMethod: models.PaymentBank, Date: "2026-10-01"})
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, &models.Transaction{UserID: u.ID, Type: models.TypeExpense, Amount: 20000, Date: "2026-10-01"})
	require.NoError(t, err)

	require.NoError(t, s.DB().Model(&models.Balance{}).Where("user_id = ?", u.ID).Updates(map[string]any{"cash": 1, "bank": 2}).Error)

	b, err := s.ReconcileBalance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-20000), b.Cash)
	assert.Equal(t, int64(200000), b.Bank)

	stored, err := s.GetBalance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Cash, stored.Cash)
	assert.Equal(t, b.Bank, stored.Bank)
}

func TestUserRoleAssignment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	finance := &models.Role{Name: "finance", DisplayName: "Keuangan", Active: true, Commands: []string{"/saldo"}}
	attendance := &models.Role{Name: "attendance", DisplayName: "Absensi", Active: true}
	require.NoError(t, s.UpsertRole(ctx, finance))
	require.NoError(t, s.UpsertRole(ctx, attendance))

	finance.Commands = []string{"/saldo", "/bulan"}
	require.NoError(t, s.UpsertRole(ctx, finance))
	got, err := s.GetRoleByName(ctx, "finance")
	require.NoError(t, err)
	assert.Equal(t, []string{"/saldo", "/bulan"}, []string(got.Commands))

	u, _ := s.GetOrCreateUser(ctx, "roles", "")
	require.NoError(t, s.UpsertUserRole(ctx, u.ID, finance.ID, nil))
	require.NoError(t, s.UpsertUserRole(ctx, u.ID, attendance.ID, &u.ID))

	roles, err := s.ListActiveUserRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "attendance", roles[0].Name)

	ok, err := s.DeactivateUserRole(ctx, u.ID, attendance.ID, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeactivateUserRole(ctx, u.ID, attendance.ID, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpsertUserRole(ctx, u.ID, attendance.ID, nil))
	var count int64
	s.DB().Model(&models.UserRole{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(2), count)

	stats, err := s.RoleStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(1), stats[0].Users)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Len(t, users[0].Roles, 2)
}

func TestAttendanceQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, _ := s.GetOrCreateUser(ctx, "att", "")
	require.NoError(t, s.CreateAttendance(ctx, &models.Attendance{UserID: u.ID, Type: models.AttendanceIn, Date: "2026-10-01", Time: "07:30:00"}))
	require.NoError(t, s.CreateAttendance(ctx, &models.Attendance{UserID: u.ID, Type: models.AttendanceOut, Date: "2026-10-01", Time: "16:00:00"}))
	require.NoError(t, s.CreateAttendance(ctx, &models.Attendance{UserID: u.ID, Type: models.AttendanceIn, Date: "2026-10-02", Time: "07:45:00"}))

	day, err := s.ListAttendanceByDate(ctx, u.ID, "2026-10-01")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, models.AttendanceIn, day[0].Type)

	month, err := s.ListAttendance(ctx, u.ID, "2026-10-01", "2026-10-31")
	require.NoError(t, err)
	assert.Len(t, month, 3)
}
