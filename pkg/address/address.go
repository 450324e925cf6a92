// Package address classifies chat addresses and turns them into user phones.
package address

import "strings"

const (
	groupSuffix     = "@g.us"
	broadcastSuffix = "@broadcast"
	userSuffix      = "@s.whatsapp.net"
	legacySuffix    = "@c.us"
)

// IsGroup reports whether addr is a group chat.
func IsGroup(addr string) bool {
	return strings.HasSuffix(strings.ToLower(addr), groupSuffix)
}

// IsBroadcast reports whether addr is a status or broadcast list.
func IsBroadcast(addr string) bool {
	return strings.HasSuffix(strings.ToLower(addr), broadcastSuffix)
}

// IsPrivateChat reports whether addr is a one-to-one chat with a user.
func IsPrivateChat(addr string) bool {
	a := strings.ToLower(addr)
	for _, suffix := range []string{userSuffix, legacySuffix} {
		if strings.HasSuffix(a, suffix) {
			return len(Phone(a)) > 0
		}
	}
	return false
}

// Phone extracts the digits of a number or chat address. A leading 0 is
// rewritten to the 62 country code. "0812-3456 789" and
// "62812345678@s.whatsapp.net" both normalize to digits only.
func Phone(addr string) string {
	if i := strings.IndexByte(addr, '@'); i >= 0 {
		addr = addr[:i]
	}
	// multi-device ids look like 62812:3@s.whatsapp.net
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		addr = addr[:i]
	}
	var b strings.Builder
	for _, r := range addr {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	if strings.HasPrefix(p, "0") {
		p = "62" + p[1:]
	}
	return p
}

// Private returns the private chat address of phone.
func Private(phone string) string {
	return Phone(phone) + userSuffix
}
