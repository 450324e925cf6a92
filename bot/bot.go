// Package bot is the conversational core: it routes each inbound chat
// message through role checks and the per-user interaction state to the
// transaction parser, the attendance flow, the OCR flow or a command set.
package bot

import (
	"context"
	"sync"
	"time"

	"keubot/models"
	"keubot/pkg/chart"
	"keubot/pkg/geo"
	"keubot/pkg/media"
	"keubot/pkg/ocr"
	"keubot/pkg/rbac"
	"keubot/pkg/session"
	"keubot/pkg/stats"

	"go.uber.org/zap"
)

// Message is one inbound chat event.
type Message struct {
	ID       string
	Sender   string
	Chat     string
	PushName string
	Text     string
	Image    *media.Ref
	Location *geo.Point
}

// Repository is the persistence used by the router and its flows.
type Repository interface {
	GetOrCreateUser(ctx context.Context, phone, name string) (*models.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateTransaction(ctx context.Context, t *models.Transaction) (models.Balance, error)
	DeleteTransaction(ctx context.Context, id, userID uint) (*models.Transaction, models.Balance, error)
	ListTransactions(ctx context.Context, userID uint, from, to string) ([]models.Transaction, error)
	ListTransactionsByCategory(ctx context.Context, userID uint, category, from, to string) ([]models.Transaction, error)
	CategoryTotals(ctx context.Context, userID uint, from, to string) ([]models.CategoryTotal, error)
	DailyTotals(ctx context.Context, userID uint, from, to string) ([]models.DailyTotal, error)
	GetBalance(ctx context.Context, userID uint) (models.Balance, error)

	CreateAttendance(ctx context.Context, a *models.Attendance) error
	ListAttendanceByDate(ctx context.Context, userID uint, date string) ([]models.Attendance, error)
	ListAttendance(ctx context.Context, userID uint, from, to string) ([]models.Attendance, error)
}

// Roles resolves grants and manages assignments.
type Roles interface {
	GetUserRoles(ctx context.Context, userID uint) (rbac.Grants, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	AssignRoleByName(ctx context.Context, userID uint, name string, assignedBy *uint) (*models.Role, error)
	RemoveRoleByName(ctx context.Context, userID uint, name string, removedBy *uint) (*models.Role, error)
	Stats(ctx context.Context) ([]models.RoleStat, error)
}

// Sender delivers outbound messages to a chat address.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendImage(ctx context.Context, to string, img []byte, caption string) error
	SendDocument(ctx context.Context, to string, doc []byte, filename, caption string) error
}

// TextExtractor runs OCR over image bytes.
type TextExtractor interface {
	ExtractText(ctx context.Context, img []byte) (ocr.Result, error)
}

// ChartRenderer turns a chart description into an image.
type ChartRenderer interface {
	Render(ctx context.Context, s chart.Spec) ([]byte, error)
}

// MediaFetcher downloads the bytes behind an inbound image.
type MediaFetcher interface {
	Download(ctx context.Context, ref media.Ref) ([]byte, error)
}

// PhotoStore keeps attendance photos and returns their reference.
type PhotoStore interface {
	Save(owner, kind string, at time.Time, data []byte) (string, error)
}

// Counters records message statistics.
type Counters interface {
	Inc(name string)
	Add(name string, delta int64)
	Snapshot() stats.Snapshot
}

// Config wires the collaborators. Repo, Roles and Sender are required.
type Config struct {
	Repo     Repository
	Roles    Roles
	Sessions *session.Store
	Sender   Sender
	OCR      TextExtractor
	Charts   ChartRenderer
	Media    MediaFetcher
	Photos   PhotoStore
	Stats    Counters

	Office        geo.Fence
	LowConfidence float64
	OCRTimeout    time.Duration
	ChartTimeout  time.Duration
	Now           func() time.Time
	Log           *zap.Logger
}

// Bot is the router. Handle may be called concurrently; messages of one
// user are processed one at a time.
type Bot struct {
	repo     Repository
	roles    Roles
	sessions *session.Store
	sender   Sender
	ocr      TextExtractor
	charts   ChartRenderer
	media    MediaFetcher
	photos   PhotoStore
	stats    Counters

	office        geo.Fence
	lowConfidence float64
	ocrTimeout    time.Duration
	chartTimeout  time.Duration
	now           func() time.Time
	log           *zap.Logger

	commands map[string]map[string]handlerFunc
	quick    map[string]map[string]handlerFunc

	locksMu sync.Mutex
	locks   map[string]*userLock
}

// New builds a Bot, filling defaults for optional fields.
func New(cfg Config) *Bot {
	b := &Bot{
		repo:          cfg.Repo,
		roles:         cfg.Roles,
		sessions:      cfg.Sessions,
		sender:        cfg.Sender,
		ocr:           cfg.OCR,
		charts:        cfg.Charts,
		media:         cfg.Media,
		photos:        cfg.Photos,
		stats:         cfg.Stats,
		office:        cfg.Office,
		lowConfidence: cfg.LowConfidence,
		ocrTimeout:    cfg.OCRTimeout,
		chartTimeout:  cfg.ChartTimeout,
		now:           cfg.Now,
		log:           cfg.Log,
		locks:         make(map[string]*userLock),
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.sessions == nil {
		b.sessions = session.New(session.DefaultTimeout, session.WithClock(b.now), session.WithLogger(b.log))
	}
	if b.stats == nil {
		b.stats = stats.New(nil, b.log)
	}
	if b.chartTimeout <= 0 {
		b.chartTimeout = 15 * time.Second
	}
	if b.ocrTimeout <= 0 {
		b.ocrTimeout = time.Minute
	}
	if b.lowConfidence <= 0 {
		b.lowConfidence = 50
	}
	if b.office.Radius <= 0 {
		b.office = DefaultOffice
	}
	b.commands = map[string]map[string]handlerFunc{
		rbac.RoleFinance:    b.financeCommands(),
		rbac.RoleAttendance: b.attendanceCommands(),
		rbac.RoleCashier:    b.cashierCommands(),
		rbac.RoleAdmin:      b.adminCommands(),
	}
	b.quick = map[string]map[string]handlerFunc{
		rbac.RoleFinance: b.financeQuick(),
		rbac.RoleCashier: b.cashierQuick(),
	}
	return b
}

// DefaultOffice is the attendance geofence used when none is configured.
var DefaultOffice = geo.Fence{
	Name:   "RSU Muslimat Ponorogo",
	Center: geo.Point{Latitude: -7.877174871538191, Longitude: 111.47047801900142},
	Radius: 300,
}

// Sessions exposes the interaction state store, e.g. for the sweeper.
func (b *Bot) Sessions() *session.Store { return b.sessions }

type userLock struct {
	sync.Mutex
	refs int
}

// lockUser serializes messages of one sender. An entry lives only while a
// message of that sender is queued or running.
func (b *Bot) lockUser(phone string) (unlock func()) {
	b.locksMu.Lock()
	l, ok := b.locks[phone]
	if !ok {
		l = &userLock{}
		b.locks[phone] = l
	}
	l.refs++
	b.locksMu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		b.locksMu.Lock()
		if l.refs--; l.refs == 0 {
			delete(b.locks, phone)
		}
		b.locksMu.Unlock()
	}
}
