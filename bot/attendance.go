package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"keubot/models"
	"keubot/pkg/media"
	"keubot/pkg/session"
	"keubot/pkg/stats"

	"go.uber.org/zap"
)

const timeLayout = "15:04:05"

func (b *Bot) attendanceCommands() map[string]handlerFunc {
	return map[string]handlerFunc{
		"/absen": b.cmdAttendance,
		"/menu":  b.cmdAttendanceMenu,
		"/help":  b.text(msgAttendanceHelp),
	}
}

func (b *Bot) cmdAttendance(ctx context.Context, r *request, args []string) error {
	if len(args) == 0 {
		return b.cmdAttendanceMenu(ctx, r, nil)
	}
	switch strings.ToLower(args[0]) {
	case "masuk", "in":
		return b.attendanceStart(ctx, r, models.AttendanceIn)
	case "pulang", "out":
		return b.attendanceStart(ctx, r, models.AttendanceOut)
	case "status", "cek":
		return b.attendanceStatus(ctx, r)
	case "rekap", "report":
		return b.attendanceSummary(ctx, r)
	}
	return b.reply(ctx, r, msgAttendanceInvalidChoice)
}

// dayRecords holds the first masuk and pulang of one calendar date.
type dayRecords struct {
	in, out *models.Attendance
}

func (d dayRecords) complete() bool { return d.in != nil && d.out != nil }

func (d *dayRecords) add(a models.Attendance) {
	switch a.Type {
	case models.AttendanceIn:
		if d.in == nil {
			d.in = &a
		}
	case models.AttendanceOut:
		if d.out == nil {
			d.out = &a
		}
	}
}

func (b *Bot) today(ctx context.Context, userID uint, now time.Time) (dayRecords, error) {
	var d dayRecords
	recs, err := b.repo.ListAttendanceByDate(ctx, userID, day(now))
	if err != nil {
		return d, err
	}
	for _, a := range recs {
		d.add(a)
	}
	return d, nil
}

// validateAttendance explains why typ cannot be recorded given today's
// records. An empty message means it can.
func validateAttendance(d dayRecords, typ string) (message, suggestion string) {
	switch typ {
	case models.AttendanceIn:
		if d.in != nil {
			if d.out != nil {
				return fmt.Sprintf("Anda sudah absen masuk hari ini pada %s", d.in.Time),
					"Gunakan /absen status untuk melihat status absensi."
			}
			return fmt.Sprintf("Anda sudah absen masuk hari ini pada %s", d.in.Time),
				"Gunakan /absen pulang untuk absen pulang."
		}
	case models.AttendanceOut:
		if d.in == nil {
			return "Anda belum absen masuk hari ini. Absen masuk dulu sebelum absen pulang.",
				"Gunakan /absen masuk untuk absen masuk dulu."
		}
		if d.out != nil {
			return fmt.Sprintf("Anda sudah absen pulang hari ini pada %s", d.out.Time),
				"Gunakan /absen status untuk melihat status absensi."
		}
	default:
		return "Tipe absensi tidak valid", ""
	}
	return "", ""
}

func (b *Bot) attendanceStart(ctx context.Context, r *request, typ string) error {
	d, err := b.today(ctx, r.user.ID, b.now())
	if err != nil {
		return err
	}
	if msg, suggestion := validateAttendance(d, typ); msg != "" {
		return b.reply(ctx, r, msgAttendanceValidation(msg, suggestion))
	}
	b.sessions.Set(r.phone, session.AttendanceLocation{Type: typ})
	return b.reply(ctx, r, msgAskLocation(typ))
}

func (b *Bot) attendanceLocation(ctx context.Context, r *request, st session.AttendanceLocation) error {
	p := *r.msg.Location
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return b.reply(ctx, r, "❌ Format lokasi tidak valid. Silakan kirim ulang lokasi Anda.")
	}
	r.mutating = true
	check := b.office.Check(p)
	b.log.Info("attendance location received",
		zap.String("user", r.phone),
		zap.String("type", st.Type),
		zap.Int("distance", check.Distance),
		zap.Bool("valid", check.Valid))
	if !check.Valid {
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, msgTooFar(check.Distance, b.office.Radius, b.office.Name, st.Type))
	}
	next := session.AttendancePhoto{
		Type:      st.Type,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Distance:  check.Distance,
	}
	if _, err := b.sessions.Replace(r.phone, r.gen, next); errors.Is(err, session.ErrStale) {
		return b.reply(ctx, r, msgAttendanceExpired(st.Type))
	}
	return b.reply(ctx, r, msgLocationValid(check.Distance, b.office.Radius))
}

func (b *Bot) attendancePhoto(ctx context.Context, r *request, st session.AttendancePhoto) error {
	r.mutating = true
	data, err := b.fetchImage(ctx, *r.msg.Image)
	if err != nil {
		b.log.Warn("attendance photo download failed", zap.String("user", r.phone), zap.Error(err))
		b.sessions.Clear(r.phone)
		return b.reply(ctx, r, msgPhotoFailed(st.Type))
	}
	// the download may outlive the session
	if !b.sessions.ClearIf(r.phone, r.gen) {
		return b.reply(ctx, r, msgAttendanceExpired(st.Type))
	}

	now := b.now()
	d, err := b.today(ctx, r.user.ID, now)
	if err != nil {
		return err
	}
	if msg, suggestion := validateAttendance(d, st.Type); msg != "" {
		return b.reply(ctx, r, msgAttendanceValidation(msg, suggestion))
	}

	rec := models.Attendance{
		UserID:    r.user.ID,
		Type:      st.Type,
		Latitude:  st.Latitude,
		Longitude: st.Longitude,
		Distance:  st.Distance,
		Date:      day(now),
		Time:      now.Format(timeLayout),
	}
	if b.photos != nil {
		path, err := b.photos.Save(r.phone, st.Type, now, data)
		if err != nil {
			b.log.Warn("attendance photo not stored", zap.String("user", r.phone), zap.Error(err))
		} else {
			rec.PhotoPath = &path
		}
	}
	if err := b.repo.CreateAttendance(ctx, &rec); err != nil {
		return err
	}
	b.stats.Inc(stats.Attendance)
	d.add(rec)
	return b.reply(ctx, r, b.attendanceSuccess(rec, d, now))
}

func (b *Bot) fetchImage(ctx context.Context, ref media.Ref) ([]byte, error) {
	if b.media == nil {
		if len(ref.Data) > 0 {
			return ref.Data, nil
		}
		return nil, media.ErrUnavailable
	}
	return b.media.Download(ctx, ref)
}

func (b *Bot) attendanceSuccess(rec models.Attendance, d dayRecords, now time.Time) string {
	emoji, label := attendanceLabel(rec.Type)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *ABSENSI %s BERHASIL*", emoji, label)
	if rec.PhotoPath == nil {
		sb.WriteString(" (TANPA FOTO)")
	}
	fmt.Fprintf(&sb, "\n\n📅 %s\n⏰ %s\n📍 Jarak: %dm dari %s\n", longDate(now), rec.Time, rec.Distance, b.office.Name)
	switch {
	case d.complete():
		sb.WriteString("\n🎉 *ABSENSI HARI INI LENGKAP!*\n")
	case rec.Type == models.AttendanceIn:
		sb.WriteString("\n⏳ Belum pulang. Jangan lupa absen pulang nanti.\n")
	}
	sb.WriteString("\nGunakan:\n• /absen status - Cek status hari ini\n")
	if !d.complete() && rec.Type == models.AttendanceIn {
		sb.WriteString("• /absen pulang - Absen pulang nanti\n")
	}
	sb.WriteString("• /absen rekap - Lihat rekap bulanan")
	return sb.String()
}

func (b *Bot) attendanceStatus(ctx context.Context, r *request) error {
	now := b.now()
	d, err := b.today(ctx, r.user.ID, now)
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *STATUS ABSENSI HARI INI*\n%s\n\n", longDate(now))
	sb.WriteString(statusLines(d))
	if d.complete() {
		sb.WriteString("\n🎉 *ABSENSI LENGKAP HARI INI*\n")
	}
	sb.WriteString("\nGunakan:\n")
	if d.in == nil {
		sb.WriteString("• /absen masuk - Absen masuk\n")
	} else if d.out == nil {
		sb.WriteString("• /absen pulang - Absen pulang\n")
	}
	sb.WriteString("• /absen rekap - Lihat rekap bulanan")
	return b.reply(ctx, r, sb.String())
}

func statusLines(d dayRecords) string {
	var sb strings.Builder
	if d.in != nil {
		fmt.Fprintf(&sb, "🟢 Absen Masuk: %s ✅\n", d.in.Time)
	} else {
		sb.WriteString("❌ Belum absen masuk\n")
	}
	if d.out != nil {
		fmt.Fprintf(&sb, "🔴 Absen Pulang: %s ✅\n", d.out.Time)
	} else {
		sb.WriteString("❌ Belum absen pulang\n")
	}
	return sb.String()
}

func (b *Bot) attendanceSummary(ctx context.Context, r *request) error {
	now := b.now()
	from, to := monthRange(now)
	recs, err := b.repo.ListAttendance(ctx, r.user.ID, from, to)
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *REKAP ABSENSI %s*\n\n", strings.ToUpper(monthLabel(now)))
	if len(recs) == 0 {
		sb.WriteString("❌ Belum ada data absensi bulan ini\n\nGunakan:\n• /absen masuk - Absen masuk\n• /absen status - Cek status hari ini")
		return b.reply(ctx, r, sb.String())
	}
	days := map[string]*dayRecords{}
	var order []string
	for _, a := range recs {
		d, ok := days[a.Date]
		if !ok {
			d = &dayRecords{}
			days[a.Date] = d
			order = append(order, a.Date)
		}
		d.add(a)
	}
	present := 0
	for _, date := range order {
		d := days[date]
		fmt.Fprintf(&sb, "📅 %s\n", dayMonth(date))
		if d.in != nil {
			present++
			fmt.Fprintf(&sb, "   🟢 Masuk: %s\n", d.in.Time)
		} else {
			sb.WriteString("   ❌ Tidak absen masuk\n")
		}
		if d.out != nil {
			fmt.Fprintf(&sb, "   🔴 Pulang: %s\n", d.out.Time)
		} else {
			sb.WriteString("   ❌ Belum pulang\n")
		}
	}
	elapsed := now.Day()
	fmt.Fprintf(&sb, "\n📈 Kehadiran: %d dari %d hari (%.0f%%)", present, elapsed, percent(int64(present), int64(elapsed)))
	return b.reply(ctx, r, sb.String())
}

func (b *Bot) cmdAttendanceMenu(ctx context.Context, r *request, _ []string) error {
	d, err := b.today(ctx, r.user.ID, b.now())
	if err != nil {
		return err
	}
	return b.reply(ctx, r, fmt.Sprintf(`🏢 *SISTEM ABSENSI*

🏪 Kantor: %s
📍 Radius Valid: %.0fm

%s
⚡ *COMMAND CEPAT:*
• /absen masuk - Absen masuk
• /absen pulang - Absen pulang
• /absen status - Cek status hari ini
• /absen rekap - Rekap bulanan`, b.office.Name, b.office.Radius, statusLines(d)))
}

func msgAttendanceExpired(typ string) string {
	return fmt.Sprintf("⏰ Sesi absensi sudah berakhir. Silakan ulangi dengan /absen %s", typ)
}
