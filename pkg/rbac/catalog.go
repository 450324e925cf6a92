package rbac

import "keubot/models"

// Role names of the default catalog.
const (
	RoleFinance    = "finance"
	RoleAttendance = "attendance"
	RoleCashier    = "cashier"
	RoleAdmin      = models.AdminRole
)

// DefaultRoles is the catalog seeded at startup.
func DefaultRoles() []models.Role {
	return []models.Role{
		{
			Name:         RoleFinance,
			DisplayName:  "Keuangan",
			Emoji:        "💰",
			Description:  "Pencatatan transaksi, laporan dan grafik keuangan",
			Features:     []string{"transactions", "reports", "charts", "categories", "ocr", "export"},
			Commands:     []string{"/saldo", "/hari", "/bulan", "/kategori", "/topkategori", "/chart", "/pie", "/compare", "/hapus", "/ocr", "/export", "/stats", "/menu", "/help"},
			Shortcuts:    []string{"m", "t", "g"},
			QuickNumbers: []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
			Active:       true,
		},
		{
			Name:         RoleAttendance,
			DisplayName:  "Absensi",
			Emoji:        "🏢",
			Description:  "Absensi masuk dan pulang berbasis lokasi",
			Features:     []string{"attendance"},
			Commands:     []string{"/absen", "/menu", "/help"},
			Shortcuts:    []string{},
			QuickNumbers: []string{},
			Active:       true,
		},
		{
			Name:         RoleCashier,
			DisplayName:  "Kasir",
			Emoji:        "🏪",
			Description:  "Pencatatan penjualan harian",
			Features:     []string{"sales", "ocr"},
			Commands:     []string{"/jual", "/stok", "/laporan", "/ocr", "/menu", "/help"},
			Shortcuts:    []string{"j", "s"},
			QuickNumbers: []string{"1", "2", "3", "4", "5"},
			Active:       true,
		},
		{
			Name:         RoleAdmin,
			DisplayName:  "Administrator",
			Emoji:        "👑",
			Description:  "Akses penuh termasuk manajemen pengguna dan role",
			Features:     []string{models.Wildcard},
			Commands:     []string{models.Wildcard},
			Shortcuts:    []string{models.Wildcard},
			QuickNumbers: []string{models.Wildcard},
			Active:       true,
		},
	}
}
