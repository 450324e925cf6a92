package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"keubot/pkg/ocr"
	"keubot/pkg/parser"
	"keubot/pkg/session"
	"keubot/pkg/stats"

	"go.uber.org/zap"
)

const ocrShownCandidates = 3

func (b *Bot) cmdOCR(ctx context.Context, r *request, _ []string) error {
	b.sessions.Set(r.phone, session.OCRImage{})
	return b.reply(ctx, r, msgOCRStart(int(b.sessions.Timeout().Minutes())))
}

func (b *Bot) ocrImage(ctx context.Context, r *request) error {
	r.mutating = true
	b.stats.Inc(stats.OCR)
	if b.ocr == nil {
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, msgOCRFailed)
	}
	// progress notice only; reply logs a failed send
	_ = b.reply(ctx, r, "⏳ *Memproses gambar...*\n\n🔍 Membaca teks dari struk, mohon tunggu sebentar.")

	data, err := b.fetchImage(ctx, *r.msg.Image)
	if err != nil {
		b.log.Warn("receipt download failed", zap.String("user", r.phone), zap.Error(err))
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, msgOCRFailed)
	}
	octx, cancel := context.WithTimeout(ctx, b.ocrTimeout)
	res, err := b.ocr.ExtractText(octx, data)
	cancel()
	if err != nil {
		b.log.Warn("receipt text extraction failed", zap.String("user", r.phone), zap.Error(err))
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, msgOCRFailed)
	}

	cleaned := ocr.Clean(res.Text)
	st := session.OCRConfirmation{
		RawText:     res.Text,
		CleanedText: cleaned,
		Confidence:  res.Confidence,
		Candidates:  ocr.FindCandidates(cleaned),
	}
	b.log.Info("receipt processed",
		zap.String("user", r.phone),
		zap.Float64("confidence", res.Confidence),
		zap.Int("candidates", len(st.Candidates)))
	if _, err := b.sessions.Replace(r.phone, r.gen, st); errors.Is(err, session.ErrStale) {
		return b.reply(ctx, r, msgOCRSessionExpired)
	}
	return b.reply(ctx, r, b.ocrSummary(st))
}

func (b *Bot) ocrSummary(st session.OCRConfirmation) string {
	var sb strings.Builder
	sb.WriteString("✅ *HASIL OCR SELESAI*\n\n")
	fmt.Fprintf(&sb, "🎯 *Akurasi:* %.0f%%\n", st.Confidence)
	if st.Confidence < b.lowConfidence {
		fmt.Fprintf(&sb, "⚠️ %s\n", msgLowConfidence)
	}
	sb.WriteString("\n📝 *Teks yang ditemukan:*\n")
	sb.WriteString("```" + truncate(st.CleanedText, 300) + "```")

	if len(st.Candidates) == 0 {
		sb.WriteString("\n\n❌ *Tidak ada transaksi yang terdeteksi*\n")
		sb.WriteString("💡 Anda bisa ketik manual dalam format:\n\"bayar 50rb untuk makan\" atau \"terima gaji 5jt\"\n\n")
		sb.WriteString("🤔 *Pilih tindakan:*\n")
		sb.WriteString("📝 Ketik *\"edit\"* untuk input manual berdasarkan OCR\n")
		sb.WriteString("❌ Ketik *\"batal\"* untuk mengakhiri")
		return sb.String()
	}

	sb.WriteString("\n\n💰 *Transaksi yang terdeteksi:*\n")
	for i, c := range st.Candidates {
		if i == ocrShownCandidates {
			fmt.Fprintf(&sb, "… dan %d lainnya\n", len(st.Candidates)-ocrShownCandidates)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, truncate(c.Line, 50))
		fmt.Fprintf(&sb, "   💵 Jumlah: %s\n", rupiah(c.Amount))
		fmt.Fprintf(&sb, "   📊 Jenis: %s\n", contextLabel(c.Context))
	}
	if best, ok := ocr.Best(st.Candidates); ok && len(st.Candidates) > 1 {
		fmt.Fprintf(&sb, "\n⭐ Kemungkinan total: %s\n", rupiah(best.Amount))
	}
	sb.WriteString("\n🤔 *Pilih tindakan:*\n")
	sb.WriteString("✅ Ketik *\"ya\"* atau *\"simpan\"* untuk menyimpan transaksi\n")
	sb.WriteString("📝 Ketik *\"edit\"* untuk edit manual sebelum simpan\n")
	sb.WriteString("❌ Ketik *\"tidak\"* atau *\"batal\"* untuk membatalkan")
	return sb.String()
}

func contextLabel(c string) string {
	switch c {
	case ocr.ContextIncome:
		return "Pemasukan"
	case ocr.ContextExpense:
		return "Pengeluaran"
	}
	return "Tidak diketahui"
}

func (b *Bot) ocrConfirm(ctx context.Context, r *request, st session.OCRConfirmation) error {
	switch r.lower {
	case "ya", "simpan", "y", "yes":
		if len(st.Candidates) == 0 {
			return b.reply(ctx, r, msgOCRInvalidChoice(false))
		}
		r.mutating = true
		if !b.sessions.ClearIf(r.phone, r.gen) {
			return b.reply(ctx, r, msgOCRSessionExpired)
		}
		return b.ocrSave(ctx, r, st.Candidates)
	case "edit":
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, msgOCREdit(st.CleanedText))
	case "tidak", "batal", "cancel", "no":
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, "❌ Hasil OCR dibatalkan. Tidak ada transaksi yang disimpan.")
	}
	return b.reply(ctx, r, msgOCRInvalidChoice(len(st.Candidates) > 0))
}

func (b *Bot) ocrSave(ctx context.Context, r *request, cands []ocr.Candidate) error {
	var sb strings.Builder
	sb.WriteString("💾 *HASIL PENYIMPANAN OCR*\n\n")
	saved := 0
	for i, c := range cands {
		t, _, err := b.save(ctx, r.user.ID, candidateTransaction(c))
		if err != nil {
			b.log.Error("ocr candidate not saved", zap.String("user", r.phone), zap.String("line", c.Line), zap.Error(err))
			fmt.Fprintf(&sb, "❌ *Transaksi %d:* Gagal disimpan\n\n", i+1)
			continue
		}
		saved++
		fmt.Fprintf(&sb, "✅ *Transaksi %d:* Tersimpan (#%d)\n", i+1, t.ID)
		fmt.Fprintf(&sb, "   💰 %s\n   📊 %s\n   🏷️ %s\n\n", rupiah(t.Amount), typeLabel(t.Type), t.Category)
	}
	fmt.Fprintf(&sb, "📊 *Total tersimpan:* %d dari %d transaksi", saved, len(cands))
	return b.reply(ctx, r, sb.String())
}

// candidateTransaction classifies the candidate's line like typed text but
// keeps the amount the user confirmed. Dates and quantities on the line
// would otherwise win the parser's amount search.
func candidateTransaction(c ocr.Candidate) *parser.Transaction {
	typ := parser.ClassifyType(c.Line)
	return &parser.Transaction{
		Type:          typ,
		Amount:        c.Amount,
		Category:      parser.Categorize(c.Line, typ),
		Description:   c.Line,
		PaymentMethod: parser.PaymentMethod(c.Line),
	}
}
