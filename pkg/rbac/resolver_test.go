package rbac

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"keubot/models"
	"keubot/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*Resolver, *store.Store) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := store.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, _ := s.DB().DB()
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	r := NewResolver(s)
	require.NoError(t, r.Seed(context.Background(), DefaultRoles()))
	return r, s
}

func TestRoleUnion(t *testing.T) {
	r, s := newResolver(t)
	ctx := context.Background()
	u, err := s.GetOrCreateUser(ctx, "union", "")
	require.NoError(t, err)
	_, err = r.AssignRoleByName(ctx, u.ID, RoleFinance, nil)
	require.NoError(t, err)
	_, err = r.AssignRoleByName(ctx, u.ID, RoleAttendance, nil)
	require.NoError(t, err)

	g, err := r.GetUserRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, g, 2)

	for _, cmd := range []string{"/saldo", "/absen", "/ocr", "/help", "/SALDO"} {
		assert.True(t, g.Command(cmd), cmd)
	}
	for _, cmd := range []string{"/jual", "/role", "/users"} {
		assert.False(t, g.Command(cmd), cmd)
	}
	assert.True(t, g.Shortcut("m"))
	assert.False(t, g.Shortcut("j"))
	assert.True(t, g.QuickNumber("9"))
	assert.True(t, g.Feature("attendance"))
	assert.False(t, g.Feature("user_management"))

	ok, err := r.CanUseCommand(ctx, u.ID, "/absen")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.CanUseShortcut(ctx, u.ID, "s")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminOverride(t *testing.T) {
	admin := Grants{{Name: RoleAdmin}}
	assert.True(t, admin.Command("/anything-new"))
	assert.True(t, admin.Shortcut("z"))
	assert.True(t, admin.QuickNumber("7"))
	assert.True(t, admin.Feature("future_feature"))

	wildcard := Grants{{Name: "auditor", Commands: []string{models.Wildcard}}}
	assert.True(t, wildcard.Command("/bulan"))
	assert.False(t, wildcard.Shortcut("m"))

	var none Grants
	assert.False(t, none.Command("/help"))
	_, ok := none.Primary()
	assert.False(t, ok)
}

func TestAssignRemove(t *testing.T) {
	r, s := newResolver(t)
	ctx := context.Background()
	u, _ := s.GetOrCreateUser(ctx, "assign", "")
	admin, _ := s.GetOrCreateUser(ctx, "boss", "")

	role, err := r.AssignRoleByName(ctx, u.ID, "Cashier", &admin.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleCashier, role.Name)

	_, err = r.AssignRoleByName(ctx, u.ID, "ghost", nil)
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = r.RemoveRoleByName(ctx, u.ID, RoleCashier, &admin.ID)
	require.NoError(t, err)
	_, err = r.RemoveRoleByName(ctx, u.ID, RoleCashier, &admin.ID)
	assert.ErrorIs(t, err, ErrNoActiveAssignment)

	require.NoError(t, r.AssignRole(ctx, u.ID, role.ID, nil))
	g, err := r.GetUserRoles(ctx, u.ID)
	require.NoError(t, err)
	primary, ok := g.Primary()
	require.True(t, ok)
	assert.Equal(t, RoleCashier, primary.Name)
	assert.Equal(t, []string{"🏪 Kasir"}, g.Labels())

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	for _, st := range stats {
		if st.Name == RoleCashier {
			assert.Equal(t, int64(1), st.Users)
		} else {
			assert.Equal(t, int64(0), st.Users)
		}
	}
}

func TestPrimaryIsMostRecent(t *testing.T) {
	r, s := newResolver(t)
	ctx := context.Background()
	u, _ := s.GetOrCreateUser(ctx, "recent", "")
	_, err := r.AssignRoleByName(ctx, u.ID, RoleFinance, nil)
	require.NoError(t, err)
	_, err = r.AssignRoleByName(ctx, u.ID, RoleAttendance, nil)
	require.NoError(t, err)

	g, err := r.GetUserRoles(ctx, u.ID)
	require.NoError(t, err)
	p, _ := g.Primary()
	assert.Equal(t, RoleAttendance, p.Name)
	assert.True(t, g.Has(RoleFinance))
}

func TestSeedIsIdempotent(t *testing.T) {
	r, s := newResolver(t)
	ctx := context.Background()
	require.NoError(t, r.Seed(ctx, DefaultRoles()))
	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 4)

	finance, err := r.GetRoleByName(ctx, " FINANCE ")
	require.NoError(t, err)
	assert.Contains(t, []string(finance.Commands), "/saldo")
}
