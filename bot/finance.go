package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"keubot/models"
	"keubot/pkg/chart"
	"keubot/pkg/export"
	"keubot/pkg/stats"
	"keubot/store"

	"go.uber.org/zap"
)

const reportItems = 5

func (b *Bot) financeCommands() map[string]handlerFunc {
	return map[string]handlerFunc{
		"/saldo":       b.cmdBalance,
		"/hari":        b.cmdToday,
		"/bulan":       b.cmdMonth,
		"/kategori":    b.cmdCategory,
		"/topkategori": b.cmdTopCategory,
		"/chart":       b.cmdChart,
		"/pie":         b.cmdPie,
		"/compare":     b.cmdCompare,
		"/hapus":       b.cmdDelete,
		"/ocr":         b.cmdOCR,
		"/export":      b.cmdExport,
		"/stats":       b.cmdStats,
		"/menu":        b.text(msgFinanceMenu),
		"/help":        b.text(msgFinanceHelp),
	}
}

func (b *Bot) financeQuick() map[string]handlerFunc {
	return map[string]handlerFunc{
		"1": b.text(msgHowToIncome),
		"2": b.text(msgHowToExpense),
		"3": b.cmdBalance,
		"4": b.cmdChart,
		"5": b.cmdMonth,
		"6": b.text(msgDeleteFormat),
		"7": b.text(msgFinanceHelp),
		"8": b.text(msgFinanceMenu),
		"9": b.cmdPie,
		"0": b.cmdCompare,
	}
}

// text is a handler that answers with a fixed message.
func (b *Bot) text(msg string) handlerFunc {
	return func(ctx context.Context, r *request, _ []string) error {
		return b.reply(ctx, r, msg)
	}
}

func (b *Bot) cmdBalance(ctx context.Context, r *request, _ []string) error {
	bal, err := b.repo.GetBalance(ctx, r.user.ID)
	if err != nil {
		return err
	}
	return b.reply(ctx, r, msgBalance(bal))
}

func (b *Bot) cmdToday(ctx context.Context, r *request, _ []string) error {
	now := b.now()
	return b.periodReport(ctx, r, "LAPORAN HARI INI", longDate(now), day(now), day(now))
}

func (b *Bot) cmdMonth(ctx context.Context, r *request, _ []string) error {
	now := b.now()
	from, to := monthRange(now)
	return b.periodReport(ctx, r, "LAPORAN BULANAN", monthLabel(now), from, to)
}

func (b *Bot) periodReport(ctx context.Context, r *request, title, period, from, to string) error {
	txs, err := b.repo.ListTransactions(ctx, r.user.ID, from, to)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return b.reply(ctx, r, msgNoTransactions)
	}
	var income, expense int64
	for _, t := range txs {
		if t.Type == models.TypeIncome {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *%s*\n📅 %s\n\n", title, period)
	fmt.Fprintf(&sb, "💰 Pemasukan: %s\n", rupiah(income))
	fmt.Fprintf(&sb, "💸 Pengeluaran: %s\n", rupiah(expense))
	fmt.Fprintf(&sb, "📈 Selisih: %s\n", rupiah(income-expense))
	fmt.Fprintf(&sb, "🧾 Jumlah transaksi: %d\n\n", len(txs))
	sb.WriteString("*Transaksi terakhir:*\n")
	for i, t := range txs {
		if i == reportItems {
			break
		}
		fmt.Fprintf(&sb, "[%s] #%d %s %s\n", dayMonth(t.Date), t.ID, signedRupiah(t), truncate(t.Description, 30))
	}
	sb.WriteString("\n💡 Hapus dengan /hapus [ID]")
	return b.reply(ctx, r, sb.String())
}

func (b *Bot) cmdCategory(ctx context.Context, r *request, args []string) error {
	from, to := monthRange(b.now())
	if len(args) > 0 {
		name := strings.Join(args, " ")
		txs, err := b.repo.ListTransactionsByCategory(ctx, r.user.ID, name, from, to)
		if err != nil {
			return err
		}
		if len(txs) == 0 {
			return b.reply(ctx, r, fmt.Sprintf("📂 Tidak ada transaksi kategori *%s* bulan ini.", name))
		}
		var sb strings.Builder
		var sum int64
		fmt.Fprintf(&sb, "📂 *KATEGORI %s*\n📅 %s\n\n", strings.ToUpper(name), monthLabel(b.now()))
		for _, t := range txs {
			sum += t.Signed()
			fmt.Fprintf(&sb, "[%s] #%d %s %s\n", dayMonth(t.Date), t.ID, signedRupiah(t), truncate(t.Description, 30))
		}
		fmt.Fprintf(&sb, "\n💰 Total: %s (%d transaksi)", rupiah(sum), len(txs))
		return b.reply(ctx, r, sb.String())
	}

	totals, err := b.repo.CategoryTotals(ctx, r.user.ID, from, to)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		return b.reply(ctx, r, msgNoTransactions)
	}
	byType := map[string]int64{}
	for _, c := range totals {
		byType[c.Type] += c.Total
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📂 *RINGKASAN KATEGORI*\n📅 %s\n", monthLabel(b.now()))
	for _, typ := range []string{models.TypeIncome, models.TypeExpense} {
		if byType[typ] == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n*%s* (%s)\n", typeLabel(typ), rupiah(byType[typ]))
		for _, c := range totals {
			if c.Type != typ {
				continue
			}
			fmt.Fprintf(&sb, "• %s: %s (%.1f%%, %dx)\n", c.Category, rupiah(c.Total), percent(c.Total, byType[typ]), c.Count)
		}
	}
	sb.WriteString("\n💡 Detail: /kategori [nama]")
	return b.reply(ctx, r, sb.String())
}

func (b *Bot) expenseTotals(ctx context.Context, userID uint) ([]models.CategoryTotal, int64, error) {
	from, to := monthRange(b.now())
	totals, err := b.repo.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return nil, 0, err
	}
	var out []models.CategoryTotal
	var sum int64
	for _, c := range totals {
		if c.Type == models.TypeExpense {
			out = append(out, c)
			sum += c.Total
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, sum, nil
}

func (b *Bot) cmdTopCategory(ctx context.Context, r *request, _ []string) error {
	cats, sum, err := b.expenseTotals(ctx, r.user.ID)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return b.reply(ctx, r, msgNoTransactions)
	}
	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 *TOP KATEGORI PENGELUARAN*\n📅 %s\n\n", monthLabel(b.now()))
	for i, c := range cats {
		if i == reportItems {
			break
		}
		rank := strconv.Itoa(i+1) + "."
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&sb, "%s %s: %s (%.1f%%)\n", rank, c.Category, rupiah(c.Total), percent(c.Total, sum))
	}
	fmt.Fprintf(&sb, "\n💸 Total pengeluaran: %s", rupiah(sum))
	return b.reply(ctx, r, sb.String())
}

func (b *Bot) cmdChart(ctx context.Context, r *request, args []string) error {
	now := b.now()
	from, to := monthRange(now)
	title := "Keuangan " + monthLabel(now)
	if len(args) > 0 && (strings.EqualFold(args[0], "minggu") || strings.EqualFold(args[0], "week")) {
		from, to = day(now.AddDate(0, 0, -6)), day(now)
		title = "Keuangan 7 Hari Terakhir"
	}
	daily, err := b.repo.DailyTotals(ctx, r.user.ID, from, to)
	if err != nil {
		return err
	}
	if len(daily) == 0 {
		return b.reply(ctx, r, msgNoTransactions)
	}
	byDate := make(map[string]models.DailyTotal, len(daily))
	var income, expense int64
	for _, d := range daily {
		byDate[d.Date] = d
		income += d.Income
		expense += d.Expense
	}
	spec := chart.Spec{Type: chart.Line, Title: title}
	in := chart.Series{Label: "Pemasukan", Color: "#4CAF50"}
	out := chart.Series{Label: "Pengeluaran", Color: "#F44336"}
	start, _ := time.ParseInLocation("2006-01-02", from, now.Location())
	end, _ := time.ParseInLocation("2006-01-02", to, now.Location())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := day(d)
		spec.Labels = append(spec.Labels, dayMonth(key))
		in.Data = append(in.Data, byDate[key].Income)
		out.Data = append(out.Data, byDate[key].Expense)
	}
	spec.Series = []chart.Series{in, out}

	status := "✅ Keuangan dalam kondisi positif"
	if income < expense {
		status = "⚠️ Pengeluaran lebih besar dari pemasukan"
	}
	caption := fmt.Sprintf("📈 *%s*\n\n💰 Pemasukan: %s\n💸 Pengeluaran: %s\n📊 Selisih: %s\n\n%s",
		title, rupiah(income), rupiah(expense), rupiah(income-expense), status)
	return b.sendChart(ctx, r, spec, caption)
}

func (b *Bot) cmdPie(ctx context.Context, r *request, _ []string) error {
	cats, sum, err := b.expenseTotals(ctx, r.user.ID)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return b.reply(ctx, r, msgNoTransactions)
	}
	spec := chart.Spec{Type: chart.Pie, Title: "Pengeluaran per Kategori"}
	ser := chart.Series{Label: "Pengeluaran"}
	for _, c := range cats {
		spec.Labels = append(spec.Labels, c.Category)
		ser.Data = append(ser.Data, c.Total)
	}
	spec.Series = []chart.Series{ser}
	caption := fmt.Sprintf("🥧 *Analisis Pengeluaran %s*\n\n💸 Total Pengeluaran: %s\n📊 Jumlah Kategori: %d",
		monthLabel(b.now()), rupiah(sum), len(cats))
	return b.sendChart(ctx, r, spec, caption)
}

func (b *Bot) cmdCompare(ctx context.Context, r *request, _ []string) error {
	now := b.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	spec := chart.Spec{Type: chart.Bar, Title: "Perbandingan 3 Bulan Terakhir"}
	in := chart.Series{Label: "Pemasukan", Color: "#4CAF50"}
	out := chart.Series{Label: "Pengeluaran", Color: "#F44336"}
	for i := 2; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		from, to := monthRange(m)
		daily, err := b.repo.DailyTotals(ctx, r.user.ID, from, to)
		if err != nil {
			return err
		}
		var income, expense int64
		for _, d := range daily {
			income += d.Income
			expense += d.Expense
		}
		spec.Labels = append(spec.Labels, monthName(m.Month()))
		in.Data = append(in.Data, income)
		out.Data = append(out.Data, expense)
	}
	spec.Series = []chart.Series{in, out}
	caption := fmt.Sprintf("📊 *Perbandingan 3 Bulan Terakhir*\n\n📅 *Bulan Ini:*\n💰 Pemasukan: %s\n💸 Pengeluaran: %s",
		rupiah(in.Data[2]), rupiah(out.Data[2]))
	return b.sendChart(ctx, r, spec, caption)
}

// sendChart renders spec as an image, falling back to a text chart when the
// renderer is missing, fails or times out.
func (b *Bot) sendChart(ctx context.Context, r *request, spec chart.Spec, caption string) error {
	b.stats.Inc(stats.Charts)
	if b.charts != nil {
		cctx, cancel := context.WithTimeout(ctx, b.chartTimeout)
		img, err := b.charts.Render(cctx, spec)
		cancel()
		if err == nil {
			if err = b.sender.SendImage(ctx, r.msg.Chat, img, caption); err == nil {
				return nil
			}
		}
		b.log.Warn("chart image unavailable, sending text chart",
			zap.String("user", r.phone),
			zap.String("chart", spec.Type),
			zap.Error(err))
	}
	return b.reply(ctx, r, chart.Text(spec, rupiah)+"\n\n"+caption)
}

func (b *Bot) cmdDelete(ctx context.Context, r *request, args []string) error {
	if len(args) != 1 {
		return b.reply(ctx, r, msgDeleteFormat)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id == 0 {
		return b.reply(ctx, r, msgDeleteFormat)
	}
	t, bal, err := b.repo.DeleteTransaction(ctx, uint(id), r.user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return b.reply(ctx, r, msgTransactionNotFound)
	}
	if err != nil {
		return err
	}
	b.log.Info("transaction deleted", zap.String("user", r.phone), zap.Uint("id", t.ID))
	return b.reply(ctx, r, msgTransactionDeleted(*t, bal))
}

func (b *Bot) cmdExport(ctx context.Context, r *request, args []string) error {
	month := b.now()
	if len(args) > 0 {
		m, err := time.ParseInLocation("2006-01", args[0], month.Location())
		if err != nil {
			return b.reply(ctx, r, "📝 Format: /export [YYYY-MM]\nContoh: /export 2026-01")
		}
		month = m
	}
	from, to := monthRange(month)
	txs, err := b.repo.ListTransactions(ctx, r.user.ID, from, to)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return b.reply(ctx, r, msgNoTransactions)
	}
	doc, err := export.Transactions("Transaksi "+monthLabel(month), txs)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("transaksi_%s_%s.xlsx", r.phone, month.Format("2006-01"))
	caption := fmt.Sprintf("📑 Export transaksi %s (%d transaksi)", monthLabel(month), len(txs))
	if err := b.sender.SendDocument(ctx, r.msg.Chat, doc, name, caption); err != nil {
		b.log.Warn("send export failed", zap.String("user", r.phone), zap.Error(err))
		return b.reply(ctx, r, "❌ Gagal mengirim file export. Silakan coba lagi.")
	}
	return nil
}

func (b *Bot) cmdStats(ctx context.Context, r *request, _ []string) error {
	snap := b.stats.Snapshot()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *STATISTIK PESAN*\n⏱️ Sejak %s\n\n", snap.Since.Format("02/01/2006 15:04"))
	for _, name := range snap.Names() {
		fmt.Fprintf(&sb, "• %s: %d\n", name, snap.Get(name))
	}
	fmt.Fprintf(&sb, "\n🔄 Sesi aktif: %d", b.sessions.CountActive())
	return b.reply(ctx, r, sb.String())
}
