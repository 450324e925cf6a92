package bot

import (
	"testing"

	"keubot/models"
	"keubot/pkg/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleCommand(t *testing.T) {
	f := newFixture(t)
	u := f.user("628501", rbac.RoleCashier)

	reply := f.say("628501", "/jual 150rb Kopi Susu 10 cup")
	assert.Contains(t, reply, "Transaksi Berhasil")

	txs := f.transactions(u)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TypeIncome, txs[0].Type)
	assert.EqualValues(t, 150000, txs[0].Amount)
	assert.Equal(t, "Penjualan", txs[0].Category)
	assert.Equal(t, "penjualan kopi susu 10 cup", txs[0].Description)
	assert.Equal(t, models.PaymentCash, txs[0].PaymentMethod)

	assert.Contains(t, f.say("628501", "/jual"), "Format Salah - Penjualan")
	assert.Contains(t, f.say("628501", "/jual kopi"), "Format Salah - Penjualan")
	assert.Len(t, f.transactions(u), 1)
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t)
	f.user("628502", rbac.RoleCashier)

	assert.Contains(t, f.say("628502", "/laporan"), "Belum ada penjualan hari ini")

	f.say("628502", "/jual 150rb kopi")
	f.say("628502", "/jual 50rb teh qris")
	f.say("628502", "j 20000")
	f.say("628502", "s 250rb")

	report := f.say("628502", "2")
	assert.Contains(t, report, "LAPORAN PENJUALAN")
	assert.Contains(t, report, "Tunai: Rp 170.000")
	assert.Contains(t, report, "Non-tunai: Rp 50.000")
	assert.Contains(t, report, "Total: Rp 220.000* (3 transaksi)")
}

func TestCashierMenus(t *testing.T) {
	f := newFixture(t)
	f.user("628503", rbac.RoleCashier)

	assert.Contains(t, f.say("628503", "/menu"), "MENU KASIR")
	assert.Contains(t, f.say("628503", "3"), "Manajemen Stok")
	assert.Contains(t, f.say("628503", "9"), "Quick Command Tidak Tersedia")
	assert.Contains(t, f.say("628503", "/saldo"), "Command Tidak Tersedia")
}
