package bot

import (
	"testing"

	"keubot/pkg/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleAssignAndRemove(t *testing.T) {
	f := newFixture(t)
	f.user("628601", rbac.RoleAdmin)

	assert.Contains(t, f.say("628601", "/role assign 0812345 finance"), "User Tidak Ditemukan")

	// the new user introduces themself first
	assert.Contains(t, f.say("628602", "halo"), "Belum terdaftar")

	assert.Contains(t, f.say("628601", "/role assign 628602 bendahara"), "Role Tidak Ditemukan")

	reply := f.say("628601", "/role assign 628602@s.whatsapp.net finance")
	assert.Contains(t, reply, "Role Berhasil Diberikan")
	notice := f.sender.sent[len(f.sender.sent)-2]
	assert.Equal(t, "628602@s.whatsapp.net", notice.to)
	assert.Contains(t, notice.text, "Akses Baru")

	assert.Contains(t, f.say("628602", "/saldo"), "SALDO KEUANGAN ANDA")

	assert.Contains(t, f.say("628601", "/role remove 628602 finance"), "Role Berhasil Dihapus")
	assert.Contains(t, f.say("628602", "/saldo"), "Belum terdaftar")
	assert.Contains(t, f.say("628601", "/role remove 628602 finance"), "Gagal Menghapus Role")

	// reassigning reactivates the same row
	f.say("628601", "/role assign 628602 finance")
	assert.Contains(t, f.say("628602", "/saldo"), "SALDO KEUANGAN ANDA")
}

func TestLocalNumberIsNormalized(t *testing.T) {
	f := newFixture(t)
	f.user("628601", rbac.RoleAdmin)
	f.say("6281234", "halo")

	assert.Contains(t, f.say("628601", "/role assign 081234 attendance"), "Role Berhasil Diberikan")
	assert.Contains(t, f.say("6281234", "/absen status"), "STATUS ABSENSI")
}

func TestRoleListAndStats(t *testing.T) {
	f := newFixture(t)
	f.user("628603", rbac.RoleAdmin)
	f.user("628604", rbac.RoleFinance)
	f.user("628605", rbac.RoleFinance, rbac.RoleCashier)

	list := f.say("628603", "/role list")
	for _, name := range []string{"finance", "attendance", "cashier", "admin"} {
		assert.Contains(t, list, "*"+name+"*")
	}

	stats := f.say("628603", "/role stats")
	assert.Contains(t, stats, "Keuangan*\n   👥 Users: 2")
	assert.Contains(t, stats, "Kasir*\n   👥 Users: 1")

	assert.Contains(t, f.say("628603", "/role assign 628604"), "Format Salah - Role Assign")
	assert.Contains(t, f.say("628603", "/role remove"), "Format Salah - Role Remove")
	assert.Contains(t, f.say("628603", "/role rename"), "Sub-command Tidak Valid")
}

func TestUsersCommand(t *testing.T) {
	f := newFixture(t)
	f.user("628606", rbac.RoleAdmin)
	f.user("628607", rbac.RoleFinance)
	f.say("628608", "halo")

	all := f.say("628606", "/users")
	assert.Contains(t, all, "Total: 3 user")
	assert.Contains(t, all, "belum ada role")

	finance := f.say("628606", "/users finance")
	assert.Contains(t, finance, "628607")
	assert.NotContains(t, finance, "628606")
	assert.Contains(t, finance, "Total: 1 user")

	assert.Contains(t, f.say("628606", "/users auditor"), "Tidak ada user")
}

func TestAdminCommandsDeniedToOthers(t *testing.T) {
	f := newFixture(t)
	u := f.user("628609", rbac.RoleFinance)

	assert.Contains(t, f.say("628609", "/role assign 628609 admin"), "Command Tidak Tersedia")
	grants, err := f.roles.GetUserRoles(f.ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, grants.Has(rbac.RoleAdmin))
}
