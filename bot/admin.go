package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"keubot/models"
	"keubot/pkg/address"
	"keubot/pkg/rbac"
	"keubot/store"

	"go.uber.org/zap"
)

func (b *Bot) adminCommands() map[string]handlerFunc {
	return map[string]handlerFunc{
		"/role":  b.cmdRole,
		"/users": b.cmdUsers,
		"/admin": b.text(msgAdminHelp),
		"/stats": b.cmdStats,
		"/menu":  b.text(msgAdminHelp),
		"/help":  b.text(msgAdminHelp),
	}
}

func (b *Bot) cmdRole(ctx context.Context, r *request, args []string) error {
	if len(args) == 0 {
		return b.roleList(ctx, r)
	}
	switch strings.ToLower(args[0]) {
	case "list":
		return b.roleList(ctx, r)
	case "assign":
		if len(args) != 3 {
			return b.reply(ctx, r, msgRoleAssignFormat)
		}
		return b.roleAssign(ctx, r, args[1], args[2])
	case "remove":
		if len(args) != 3 {
			return b.reply(ctx, r, msgRoleRemoveFormat)
		}
		return b.roleRemove(ctx, r, args[1], args[2])
	case "stats":
		return b.roleStats(ctx, r)
	}
	return b.reply(ctx, r, "❌ *Sub-command Tidak Valid*\n\n💡 Gunakan: /role list | assign | remove | stats")
}

func (b *Bot) roleList(ctx context.Context, r *request) error {
	roles, err := b.roles.ListRoles(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("🎭 *DAFTAR ROLE*\n\n")
	for _, role := range roles {
		status := ""
		if !role.Active {
			status = " (nonaktif)"
		}
		fmt.Fprintf(&sb, "%s *%s*%s\n   📝 %s\n   ⌨️ %s\n\n", role.Label(), role.Name, status, role.Description, strings.Join(role.Commands, " "))
	}
	sb.WriteString("💡 /role assign [nomor] [role]")
	return b.reply(ctx, r, sb.String())
}

// target resolves the user an admin command refers to. Users must have
// messaged the bot at least once.
func (b *Bot) target(ctx context.Context, number string) (*models.User, string, error) {
	phone := address.Phone(number)
	if phone == "" {
		return nil, phone, store.ErrNotFound
	}
	u, err := b.repo.FindUserByPhone(ctx, phone)
	return u, phone, err
}

func (b *Bot) roleAssign(ctx context.Context, r *request, number, name string) error {
	u, phone, err := b.target(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return b.reply(ctx, r, msgUserNotFound(number))
	}
	if err != nil {
		return err
	}
	role, err := b.roles.AssignRoleByName(ctx, u.ID, name, &r.user.ID)
	if errors.Is(err, rbac.ErrUnknownRole) {
		return b.reply(ctx, r, msgRoleNotFound(name))
	}
	if err != nil {
		return err
	}
	b.log.Info("role assigned",
		zap.String("admin", r.phone),
		zap.String("user", phone),
		zap.String("role", role.Name))
	b.notify(ctx, phone, fmt.Sprintf("🎉 *Selamat! Anda Mendapat Akses Baru*\n\n🎭 *Role:* %s\n📝 %s\n\n🚀 Ketik */help* untuk panduan atau */menu* untuk pilihan cepat",
		role.Label(), role.Description))
	return b.reply(ctx, r, fmt.Sprintf("✅ *Role Berhasil Diberikan*\n\n👤 *User:* %s\n🎭 *Role:* %s\n📅 *Status:* Aktif", phone, role.Label()))
}

func (b *Bot) roleRemove(ctx context.Context, r *request, number, name string) error {
	u, phone, err := b.target(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return b.reply(ctx, r, msgUserNotFound(number))
	}
	if err != nil {
		return err
	}
	role, err := b.roles.RemoveRoleByName(ctx, u.ID, name, &r.user.ID)
	switch {
	case errors.Is(err, rbac.ErrUnknownRole):
		return b.reply(ctx, r, msgRoleNotFound(name))
	case errors.Is(err, rbac.ErrNoActiveAssignment):
		return b.reply(ctx, r, fmt.Sprintf("❌ *Gagal Menghapus Role*\n\n⚠️ *Alasan:* user %s tidak memiliki role aktif %s", phone, role.Label()))
	case err != nil:
		return err
	}
	b.log.Info("role removed",
		zap.String("admin", r.phone),
		zap.String("user", phone),
		zap.String("role", role.Name))
	b.notify(ctx, phone, fmt.Sprintf("📢 *Akses Role Dicabut*\n\n🎭 *Role:* %s\n⚠️ *Status:* Tidak aktif lagi\n❓ Jika ini kesalahan, hubungi administrator", role.Label()))
	return b.reply(ctx, r, fmt.Sprintf("✅ *Role Berhasil Dihapus*\n\n👤 *User:* %s\n🎭 *Role:* %s\n📅 *Status:* Dicabut", phone, role.Label()))
}

func (b *Bot) roleStats(ctx context.Context, r *request) error {
	stats, err := b.roles.Stats(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("📊 *STATISTIK ROLE*\n\n")
	for _, s := range stats {
		fmt.Fprintf(&sb, "%s *%s*\n   👥 Users: %d\n\n", s.Emoji, s.DisplayName, s.Users)
	}
	return b.reply(ctx, r, strings.TrimSpace(sb.String()))
}

func (b *Bot) cmdUsers(ctx context.Context, r *request, args []string) error {
	users, err := b.repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	filter := ""
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}
	var sb strings.Builder
	sb.WriteString("👥 *DAFTAR USER*\n\n")
	n := 0
	for _, u := range users {
		var labels []string
		match := filter == ""
		for _, ur := range u.Roles {
			labels = append(labels, ur.Role.Label())
			if ur.Role.Name == filter {
				match = true
			}
		}
		if !match {
			continue
		}
		n++
		name := u.Name
		if name == "" {
			name = "-"
		}
		roles := "belum ada role"
		if len(labels) > 0 {
			roles = strings.Join(labels, ", ")
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n   🎭 %s\n", n, name, u.Phone, roles)
	}
	if n == 0 {
		sb.WriteString("❌ Tidak ada user")
	} else {
		fmt.Fprintf(&sb, "\n📊 Total: %d user", n)
	}
	return b.reply(ctx, r, sb.String())
}

// notify messages another user; failures are only logged.
func (b *Bot) notify(ctx context.Context, phone, text string) {
	if err := b.sender.SendText(ctx, address.Private(phone), text); err != nil {
		b.log.Warn("notify user failed", zap.String("user", phone), zap.Error(err))
	}
}

func msgUserNotFound(number string) string {
	return fmt.Sprintf("👤 *User Tidak Ditemukan*\n\n❌ User dengan nomor %s tidak terdaftar\n\n⚠️ User harus mengirim pesan ke bot terlebih dahulu", number)
}

func msgRoleNotFound(name string) string {
	return fmt.Sprintf("🔍 *Role Tidak Ditemukan*\n\n❌ Role \"%s\" tidak tersedia dalam sistem\n\n📋 Role tersedia: finance, attendance, cashier, admin", name)
}
