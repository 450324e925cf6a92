package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"keubot/models"
	"keubot/pkg/address"
	"keubot/pkg/parser"
	"keubot/pkg/rbac"
	"keubot/pkg/session"
	"keubot/pkg/stats"

	"go.uber.org/zap"
)

const featureTransactions = "transactions"

var (
	digitRE    = regexp.MustCompile(`^[0-9]$`)
	shortcutRE = regexp.MustCompile(`^([a-z])\s+(.+)$`)
)

// shortcuts expand a leading letter into a sentence for the parser.
var shortcuts = map[string]string{
	"m": "bayar makan ",
	"t": "bayar transport ",
	"g": "terima gaji ",
	"j": "terima penjualan ",
	"s": "beli stok ",
}

// roleSets lists, per role, the command sets tried in order. The admin role
// falls through every set before its own.
var roleSets = map[string][]string{
	rbac.RoleFinance:    {rbac.RoleFinance},
	rbac.RoleAttendance: {rbac.RoleAttendance},
	rbac.RoleCashier:    {rbac.RoleCashier},
	rbac.RoleAdmin:      {rbac.RoleFinance, rbac.RoleAttendance, rbac.RoleCashier, rbac.RoleAdmin},
}

type handlerFunc func(ctx context.Context, r *request, args []string) error

// request carries one message through the router.
type request struct {
	msg    Message
	phone  string
	text   string
	lower  string
	user   *models.User
	grants rbac.Grants
	state  session.State
	gen    uint64
	action string
	// mutating is set once a flow step starts changing the user's state;
	// a failure after that point clears the state.
	mutating bool
}

func (r *request) roleLabel() string {
	return strings.Join(r.grants.Labels(), ", ")
}

func (r *request) roleNames() []string {
	out := make([]string, 0, len(r.grants))
	for _, role := range r.grants {
		out = append(out, role.Name)
	}
	return out
}

// Handle processes one inbound message. Errors never escape: they are
// logged and answered with a generic reply.
func (b *Bot) Handle(ctx context.Context, m Message) {
	b.stats.Inc(stats.Total)
	switch {
	case address.IsGroup(m.Chat):
		b.stats.Inc(stats.IgnoredGroup)
		return
	case address.IsBroadcast(m.Chat):
		b.stats.Inc(stats.IgnoredBroadcast)
		return
	case !address.IsPrivateChat(m.Chat):
		b.stats.Inc(stats.IgnoredNonPrivate)
		return
	}
	phone := address.Phone(m.Sender)
	if phone == "" {
		phone = address.Phone(m.Chat)
	}

	unlock := b.lockUser(phone)
	defer unlock()
	b.stats.Inc(stats.Processed)

	r := &request{msg: m, phone: phone, text: strings.TrimSpace(m.Text)}
	r.lower = strings.ToLower(r.text)
	defer b.recoverPanic(ctx, r)

	if err := b.route(ctx, r); err != nil {
		b.stats.Inc(stats.Errors)
		b.log.Error("handle message failed",
			zap.String("user", phone),
			zap.String("action", r.action),
			zap.Error(err))
		if r.mutating {
			b.sessions.Clear(phone)
		}
		_ = b.reply(ctx, r, msgSystemError)
	}
}

func (b *Bot) recoverPanic(ctx context.Context, r *request) {
	v := recover()
	if v == nil {
		return
	}
	b.stats.Inc(stats.Errors)
	b.log.Error("panic while handling message",
		zap.String("user", r.phone),
		zap.String("action", r.action),
		zap.Any("panic", v),
		zap.Stack("stack"))
	if r.mutating {
		b.sessions.Clear(r.phone)
	}
	_ = b.reply(ctx, r, msgSystemError)
}

func (b *Bot) route(ctx context.Context, r *request) error {
	user, err := b.repo.GetOrCreateUser(ctx, r.phone, r.msg.PushName)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	r.user = user

	grants, err := b.roles.GetUserRoles(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get roles: %w", err)
	}
	if len(grants) == 0 {
		b.stats.Inc(stats.IgnoredUnauthorized)
		b.log.Warn("message from user without role", zap.String("user", r.phone))
		return b.reply(ctx, r, msgUnregistered(r.phone))
	}
	r.grants = grants

	r.state, r.gen = b.sessions.Get(r.phone)
	mode := r.state.Mode()

	if st, ok := r.state.(session.OCRConfirmation); ok {
		r.action = "ocr confirm"
		return b.ocrConfirm(ctx, r, st)
	}

	if r.lower == "batal" || r.lower == "cancel" {
		switch mode {
		case session.ModeOCRImage:
			b.sessions.Clear(r.phone)
			return b.reply(ctx, r, msgOCRCancelled)
		case session.ModeAttendanceLocation, session.ModeAttendancePhoto:
			b.sessions.Clear(r.phone)
			return b.reply(ctx, r, msgAttendanceCancelled)
		}
	}

	if r.msg.Location != nil {
		return b.handleLocation(ctx, r)
	}
	if r.msg.Image != nil {
		return b.handleImage(ctx, r)
	}

	if !mode.InCapture() {
		if digitRE.MatchString(r.lower) {
			return b.dispatchQuick(ctx, r, r.lower)
		}
		if m := shortcutRE.FindStringSubmatch(r.lower); m != nil {
			if prefix, ok := shortcuts[m[1]]; ok {
				return b.handleShortcut(ctx, r, m[1], prefix+m[2])
			}
		}
	}

	if strings.HasPrefix(r.text, "/") {
		return b.dispatchCommand(ctx, r)
	}

	switch mode {
	case session.ModeOCRImage:
		return b.reply(ctx, r, msgRemindReceipt)
	case session.ModeAttendanceLocation:
		return b.reply(ctx, r, msgRemindLocation)
	case session.ModeAttendancePhoto:
		return b.reply(ctx, r, msgRemindPhoto)
	}
	return b.handleText(ctx, r)
}

func (b *Bot) handleLocation(ctx context.Context, r *request) error {
	switch st := r.state.(type) {
	case session.AttendanceLocation:
		r.action = "attendance location"
		return b.attendanceLocation(ctx, r, st)
	case session.AttendancePhoto:
		return b.reply(ctx, r, msgRemindPhoto)
	case session.OCRImage:
		return b.reply(ctx, r, msgRemindReceipt)
	}
	return b.reply(ctx, r, msgLocationReceived(r.roleLabel()))
}

func (b *Bot) handleImage(ctx context.Context, r *request) error {
	switch st := r.state.(type) {
	case session.AttendancePhoto:
		r.action = "attendance photo"
		return b.attendancePhoto(ctx, r, st)
	case session.OCRImage:
		r.action = "ocr image"
		return b.ocrImage(ctx, r)
	case session.AttendanceLocation:
		return b.reply(ctx, r, msgRemindLocation)
	}
	return b.reply(ctx, r, msgImageReceived(r.roleLabel()))
}

func (b *Bot) dispatchCommand(ctx context.Context, r *request) error {
	fields := strings.Fields(r.text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]
	r.action = cmd
	b.stats.Inc(stats.Commands)

	if !r.grants.Command(cmd) {
		b.log.Warn("command denied",
			zap.String("user", r.phone),
			zap.String("command", cmd),
			zap.Strings("roles", r.roleNames()))
		return b.reply(ctx, r, msgCommandDenied(cmd, r.roleLabel()))
	}

	unknown := ""
	for _, role := range r.grants {
		sets, ok := roleSets[role.Name]
		if !ok {
			if unknown == "" {
				unknown = role.Label()
			}
			continue
		}
		for _, set := range sets {
			if h, ok := b.commands[set][cmd]; ok {
				return h(ctx, r, args)
			}
		}
	}
	if unknown != "" {
		return b.reply(ctx, r, msgRoleUnknown(unknown))
	}
	return b.reply(ctx, r, msgUnknownCommand(cmd))
}

func (b *Bot) dispatchQuick(ctx context.Context, r *request, n string) error {
	r.action = "quick " + n
	if !r.grants.QuickNumber(n) {
		b.log.Warn("quick number denied",
			zap.String("user", r.phone),
			zap.String("number", n),
			zap.Strings("roles", r.roleNames()))
		return b.reply(ctx, r, msgQuickDenied(n, r.roleLabel()))
	}
	b.stats.Inc(stats.QuickMenu)
	for _, role := range r.grants {
		if !(rbac.Grants{role}).QuickNumber(n) {
			continue
		}
		for _, set := range roleSets[role.Name] {
			if h, ok := b.quick[set][n]; ok {
				return h(ctx, r, nil)
			}
		}
	}
	return b.reply(ctx, r, msgQuickDenied(n, r.roleLabel()))
}

func (b *Bot) handleShortcut(ctx context.Context, r *request, s, sentence string) error {
	r.action = "shortcut " + s
	if !r.grants.Shortcut(s) {
		b.log.Warn("shortcut denied",
			zap.String("user", r.phone),
			zap.String("shortcut", s),
			zap.Strings("roles", r.roleNames()))
		return b.reply(ctx, r, msgShortcutDenied(s, r.roleLabel()))
	}
	tx := parser.Parse(sentence)
	if tx == nil {
		return b.reply(ctx, r, msgShortcutFormat(s))
	}
	return b.record(ctx, r, tx)
}

func (b *Bot) handleText(ctx context.Context, r *request) error {
	r.action = "transaction"
	if !r.grants.Feature(featureTransactions) {
		return b.reply(ctx, r, msgFeatureDenied(r.roleLabel()))
	}
	tx := parser.Parse(r.text)
	if tx == nil {
		return b.reply(ctx, r, msgParseFailed)
	}
	return b.record(ctx, r, tx)
}

// record persists a parsed transaction and confirms it with the new balance.
func (b *Bot) record(ctx context.Context, r *request, p *parser.Transaction) error {
	t, bal, err := b.save(ctx, r.user.ID, p)
	if err != nil {
		return err
	}
	return b.reply(ctx, r, msgTransactionAdded(t, bal))
}

func (b *Bot) save(ctx context.Context, userID uint, p *parser.Transaction) (models.Transaction, models.Balance, error) {
	t := models.Transaction{
		UserID:        userID,
		Type:          p.Type,
		Amount:        p.Amount,
		Category:      p.Category,
		Description:   p.Description,
		PaymentMethod: p.PaymentMethod,
		Date:          day(b.now()),
	}
	bal, err := b.repo.CreateTransaction(ctx, &t)
	if err != nil {
		return t, bal, fmt.Errorf("save transaction: %w", err)
	}
	b.stats.Inc(stats.Transactions)
	return t, bal, nil
}

// reply sends text to the chat the message came from. Delivery failures are
// logged only; the message itself was handled.
func (b *Bot) reply(ctx context.Context, r *request, text string) error {
	if err := b.sender.SendText(ctx, r.msg.Chat, text); err != nil {
		b.log.Warn("send reply failed", zap.String("to", r.msg.Chat), zap.Error(err))
	}
	return nil
}
