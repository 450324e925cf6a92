package bot

import (
	"fmt"
	"strings"

	"keubot/models"
)

const msgSystemError = `⚠️ *Kesalahan Sistem*

🔧 Terjadi gangguan teknis
🔄 Silakan coba lagi dalam beberapa saat`

const msgParseFailed = `❓ *Pesan Tidak Dipahami*

❌ Format pesan tidak dikenali sistem

✅ *Contoh format yang benar:*
   • bayar makan 25000
   • terima gaji 5jt
   • m 25000 (makan cepat)
   • t 15000 (transport cepat)

🚀 *Navigasi cepat:*
   • */menu* - Menu pilihan
   • */chart* - Grafik keuangan
   • */help* - Panduan lengkap`

const msgTransactionNotFound = `🔍 *Transaksi Tidak Ditemukan*

❌ ID transaksi tidak ada dalam sistem Anda
📋 Ketik */bulan* untuk melihat transaksi bulan ini

*Format yang benar:*
• /hapus [ID]
• Contoh: /hapus 123`

const msgDeleteFormat = `📝 *Format Salah - Hapus Transaksi*

*Format yang benar:*
• /hapus [ID]
• Contoh: /hapus 123

💡 *Cara mudah:*
1. Ketik */bulan* untuk lihat transaksi
2. Catat ID transaksi yang ingin dihapus
3. Ketik */hapus [ID]*

⚠️ Hapus transaksi akan mengembalikan saldo ke posisi sebelumnya`

const msgFinanceHelp = `📖 *Panduan Lengkap*

💰 *TRANSAKSI:*
   • bayar [kategori] [jumlah] - Catat pengeluaran
   • terima [kategori] [jumlah] - Catat pemasukan
   • /hapus [ID] - Hapus transaksi

💳 *METODE PEMBAYARAN:*
   • 💵 Tunai: "bayar makan tunai 25000"
   • 🏦 Rekening: "bayar makan transfer 25000"
   • Default: tunai (jika tidak disebutkan)

⚡ *SHORTCUT CEPAT:*
   • m [jumlah] - Makan
   • t [jumlah] - Transport
   • g [jumlah] - Gaji

📊 *LAPORAN:*
   • /saldo - Saldo tunai + rekening
   • /hari - Laporan hari ini
   • /bulan - Laporan bulan ini
   • /kategori [nama] - Ringkasan kategori
   • /topkategori - Kategori pengeluaran terbesar
   • /chart [minggu|bulan] - Grafik harian
   • /pie - Proporsi pengeluaran
   • /compare - Perbandingan 3 bulan
   • /export - Unduh Excel bulan ini
   • /ocr - Scan struk

💡 *Nominal:* 25000, 25rb, 25k, 1,5jt, 1 juta 500 ribu`

const msgFinanceMenu = `🏠 *MENU UTAMA*

💰 *TRANSAKSI CEPAT*
📈 1 - Catat Pemasukan
📉 2 - Catat Pengeluaran
📊 3 - Lihat Saldo

📋 *LAPORAN*
📈 4 - Grafik Keuangan
📋 5 - Rekap Bulanan
🗑️ 6 - Hapus Transaksi
🥧 9 - Grafik Kategori
📊 0 - Perbandingan 3 Bulan

ℹ️ *BANTUAN*
❓ 7 - Panduan Lengkap
🏠 8 - Kembali ke Menu

💡 Ketik angka pilihan atau gunakan command langsung`

const msgHowToIncome = `📈 *Catat Pemasukan*

Ketik dengan format:
   • terima gaji 5jt
   • dapat bonus 500rb
   • terima transfer 1,5jt
   • g 5000000 (gaji cepat)`

const msgHowToExpense = `📉 *Catat Pengeluaran*

Ketik dengan format:
   • bayar makan 25000
   • beli bensin 50rb qris
   • bayar listrik 350k transfer
   • m 25000 / t 15000 (cepat)`

const msgNoTransactions = `📋 *Belum Ada Transaksi*

❌ Belum ada transaksi tercatat pada periode ini

🚀 Mulai mencatat dengan:
   • "bayar makan 25000"
   • "terima gaji 5000000"`

const msgAttendanceHelp = `🏢 *PANDUAN ABSENSI*

• /absen masuk - Absen masuk
• /absen pulang - Absen pulang
• /absen status - Status hari ini
• /absen rekap - Rekap bulanan

📍 Setelah perintah absen, kirim lokasi terkini lalu foto selfie.
❌ Ketik "batal" untuk membatalkan proses absensi.`

const msgAttendanceCancelled = `❌ Proses absensi dibatalkan.

Gunakan:
• /absen masuk - Absen masuk
• /absen pulang - Absen pulang
• /absen status - Cek status`

const msgAttendanceInvalidChoice = "❌ Pilihan tidak valid.\n\nGunakan command cepat:\n• /absen masuk\n• /absen pulang\n• /absen status\n• /absen rekap"

const msgRemindLocation = `📍 *Menunggu Lokasi*

Silakan kirim lokasi Anda:
1. Klik 📎 (attachment)
2. Pilih 📍 Location
3. Kirim lokasi terkini

❌ Ketik "batal" untuk membatalkan`

const msgRemindPhoto = `📸 *Menunggu Foto*

Silakan kirim foto selfie untuk menyelesaikan absensi.

❌ Ketik "batal" untuk membatalkan`

const msgRemindReceipt = `📸 *Mode OCR Aktif*

Silakan kirim foto struk/nota yang ingin dibaca.

❌ Ketik "batal" untuk membatalkan mode OCR`

const msgOCRCancelled = "❌ Mode OCR dibatalkan."

const msgOCRSessionExpired = "❌ Sesi OCR sudah berakhir. Ketik /ocr untuk memulai lagi."

const msgOCRFailed = `❌ *Gagal Membaca Struk*

🔄 Pastikan foto jelas dan tidak buram, lalu ketik /ocr untuk mencoba lagi.`

const msgLowConfidence = "Kualitas gambar rendah, hasil mungkin tidak akurat"

const msgCashierHelp = `🏪 *PANDUAN KASIR*

• /jual [jumlah] [keterangan] - Catat penjualan
• /laporan - Penjualan hari ini
• /stok - Manajemen stok
• /ocr - Scan nota

⚡ *SHORTCUT:*
• j [jumlah] - Penjualan cepat
• s [jumlah] - Belanja stok

Contoh: /jual 150rb kopi susu 10 cup`

const msgCashierMenu = `🏪 *MENU KASIR*

1 - Cara catat penjualan
2 - Laporan penjualan hari ini
3 - Stok barang
4 - Panduan lengkap
5 - Kembali ke menu`

const msgSaleFormat = `📝 *Format Salah - Penjualan*

• /jual [jumlah] [keterangan]
• Contoh: /jual 150rb kopi susu`

const msgStockUnavailable = `📦 *Manajemen Stok*

🚧 Fitur stok belum tersedia.
💡 Catat belanja stok dengan: s 250rb`

const msgAdminHelp = `👑 *PANDUAN ADMINISTRATOR*

🔧 *ROLE MANAGEMENT:*
• /role list - Lihat semua role
• /role assign [nomor] [role] - Berikan role
• /role remove [nomor] [role] - Hapus role
• /role stats - Statistik role

👥 *USER MANAGEMENT:*
• /users - Lihat semua user
• /users [role] - User dengan role tertentu

📊 /stats - Statistik pesan

Contoh: /role assign 628123456789 finance`

const msgRoleAssignFormat = `📝 *Format Salah - Role Assign*

• /role assign [nomor] [role]
• Contoh: /role assign 628123456789 finance`

const msgRoleRemoveFormat = `📝 *Format Salah - Role Remove*

• /role remove [nomor] [role]
• Contoh: /role remove 628123456789 finance`

func msgUnregistered(phone string) string {
	return fmt.Sprintf(`👋 *Selamat Datang!*

⚠️ *Status:* Belum terdaftar dalam sistem
🔐 *Akses:* Perlu persetujuan administrator

📞 Hubungi admin untuk registrasi akun dan mendapatkan akses.

📱 *Nomor Anda:* %s`, phone)
}

func msgCommandDenied(cmd, role string) string {
	return fmt.Sprintf(`🚫 *Command Tidak Tersedia*

❌ Command *%s* tidak dapat digunakan
👤 *Role Anda:* %s

💡 Ketik */help* untuk melihat command yang tersedia`, cmd, role)
}

func msgShortcutDenied(s, role string) string {
	return fmt.Sprintf(`🚫 *Shortcut Tidak Tersedia*

❌ Shortcut *"%s"* tidak dapat digunakan
👤 *Role Anda:* %s

💡 Ketik */help* untuk melihat fitur yang tersedia`, s, role)
}

func msgQuickDenied(n, role string) string {
	return fmt.Sprintf(`🚫 *Quick Command Tidak Tersedia*

❌ Quick command *%s* tidak dapat digunakan
👤 *Role Anda:* %s

💡 Ketik */menu* untuk melihat opsi yang tersedia`, n, role)
}

func msgFeatureDenied(role string) string {
	return fmt.Sprintf(`🚫 *Fitur Tidak Tersedia*

❌ Pencatatan transaksi tidak tersedia untuk role Anda
👤 *Role Anda:* %s

💡 Ketik */help* untuk melihat fitur yang tersedia`, role)
}

func msgRoleUnknown(role string) string {
	return fmt.Sprintf(`❓ *Role Tidak Dikenali*

❌ Role "%s" tidak valid dalam sistem
🧑‍💼 Hubungi administrator untuk bantuan lebih lanjut`, role)
}

func msgUnknownCommand(cmd string) string {
	return fmt.Sprintf("❓ Command *%s* tidak dikenal.\n\n💡 Ketik */help* untuk melihat command yang tersedia", cmd)
}

func msgShortcutFormat(s string) string {
	return fmt.Sprintf(`📝 *Format Salah - %s*

✅ *Contoh yang benar:*
   • %s 25000
   • %s 50rb
   • %s 2jt`, strings.ToUpper(s), s, s, s)
}

func msgImageReceived(role string) string {
	return fmt.Sprintf("📸 *Foto Diterima*\n\n👤 Role Anda: %s\n💡 Ketik */ocr* sebelum mengirim struk, atau */menu* untuk fitur lain", role)
}

func msgLocationReceived(role string) string {
	return fmt.Sprintf("📍 *Lokasi Diterima*\n\n👤 Role Anda: %s\n💡 Ketik */absen masuk* atau */absen pulang* sebelum mengirim lokasi", role)
}

func msgTransactionAdded(t models.Transaction, bal models.Balance) string {
	return fmt.Sprintf(`✅ *Transaksi Berhasil Ditambahkan*

🆔 ID: #%d
💰 %s
🏷️ %s
📝 %s
💳 %s

💎 *SALDO TERKINI:*
💵 Tunai: %s
🏦 Rekening: %s
💰 Total: %s

📊 Ketik */chart* untuk lihat grafik`,
		t.ID, signedRupiah(t), t.Category, truncate(t.Description, 60), paymentLabel(t.PaymentMethod),
		rupiah(bal.Cash), rupiah(bal.Bank), rupiah(bal.Total()))
}

func msgTransactionDeleted(t models.Transaction, bal models.Balance) string {
	return fmt.Sprintf(`🗑️ *Transaksi Berhasil Dihapus*

🆔 ID: #%d
💰 %s
🏷️ %s
📝 %s
📅 %s

✅ Saldo telah dikembalikan
💰 Total saldo: %s`,
		t.ID, signedRupiah(t), t.Category, truncate(t.Description, 60), t.Date, rupiah(bal.Total()))
}

func msgBalance(bal models.Balance) string {
	status := "✅ Keuangan dalam kondisi baik"
	if bal.Total() < 0 {
		status = "⚠️ Perhatikan pengeluaran Anda"
	}
	return fmt.Sprintf(`💎 *SALDO KEUANGAN ANDA*

💵 *Tunai:* %s
🏦 *Rekening:* %s
📊 *Total:* %s

%s`, rupiah(bal.Cash), rupiah(bal.Bank), rupiah(bal.Total()), status)
}

func msgOCRStart(minutes int) string {
	return fmt.Sprintf(`📸 *MODE OCR AKTIF*

📝 Kirim foto struk/nota yang ingin dibaca
💡 Pastikan foto terang, tidak buram dan nominal terlihat jelas

⏰ Mode OCR berakhir otomatis dalam %d menit.
❌ Ketik "batal" untuk membatalkan mode OCR.`, minutes)
}

func msgOCRInvalidChoice(canSave bool) string {
	if !canSave {
		return "❓ Pilihan tidak valid.\n\nKetik:\n📝 *\"edit\"* untuk input manual\n❌ *\"batal\"* untuk batalkan"
	}
	return "❓ Pilihan tidak valid.\n\nKetik:\n✅ *\"ya\"* untuk simpan\n📝 *\"edit\"* untuk edit\n❌ *\"batal\"* untuk batalkan"
}

func msgOCREdit(cleaned string) string {
	return fmt.Sprintf(`📝 *MODE EDIT MANUAL*

📋 *Teks OCR sebagai referensi:*
`+"```%s```"+`

💡 *Ketik transaksi dalam format:*
• "bayar 50rb untuk makan"
• "terima gaji 5jt"
• "beli bensin 100ribu"`, truncate(cleaned, 300))
}

func msgAttendanceValidation(message, suggestion string) string {
	if suggestion == "" {
		return "❌ " + message
	}
	return "❌ " + message + "\n\n💡 " + suggestion
}

func msgAskLocation(typ string) string {
	emoji, label := attendanceLabel(typ)
	return fmt.Sprintf(`%s *ABSEN %s*

📍 Silakan kirim lokasi Anda dengan cara:
1. Klik 📎 (attachment)
2. Pilih 📍 Location
3. Kirim lokasi terkini

⏰ Waktu akan dicatat otomatis.
❌ Ketik "batal" untuk membatalkan.`, emoji, label)
}

func msgTooFar(distance int, radius float64, office, typ string) string {
	return fmt.Sprintf(`❌ *LOKASI TERLALU JAUH*

📏 Jarak Anda: %dm
✅ Batas maksimal: %.0fm dari %s

Gunakan:
• /absen %s - Untuk coba lagi
• /absen status - Cek status absensi`, distance, radius, office, typ)
}

func msgLocationValid(distance int, radius float64) string {
	return fmt.Sprintf(`✅ *LOKASI VALID*

📏 Jarak: %dm (maks %.0fm)

📸 Sekarang kirim foto selfie Anda untuk menyelesaikan absensi.
❌ Ketik "batal" untuk membatalkan.`, distance, radius)
}

func msgPhotoFailed(typ string) string {
	return fmt.Sprintf("❌ Gagal mengambil foto. Silakan ulangi dengan /absen %s", typ)
}

func attendanceLabel(typ string) (string, string) {
	if typ == models.AttendanceOut {
		return "🔴", "PULANG"
	}
	return "🟢", "MASUK"
}
