package address

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		addr                      string
		group, broadcast, private bool
	}{
		{"62812345678@s.whatsapp.net", false, false, true},
		{"62812345678@c.us", false, false, true},
		{"1203630@g.us", true, false, false},
		{"status@broadcast", false, true, false},
		{"1234@broadcast", false, true, false},
		{"@s.whatsapp.net", false, false, false},
		{"62812345678", false, false, false},
	}
	for _, c := range cases {
		if got := IsGroup(c.addr); got != c.group {
			t.Fatalf("IsGroup(%q) = %v", c.addr, got)
		}
		if got := IsBroadcast(c.addr); got != c.broadcast {
			t.Fatalf("IsBroadcast(%q) = %v", c.addr, got)
		}
		if got := IsPrivateChat(c.addr); got != c.private {
			t.Fatalf("IsPrivateChat(%q) = %v", c.addr, got)
		}
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"62812345678@s.whatsapp.net":    "62812345678",
		"62812345678:12@s.whatsapp.net": "62812345678",
		"0812-3456-789":                 "628123456789",
		"+62 812 3456 789":              "628123456789",
		"":                              "",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Fatalf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Private("0812"); got != "62812@s.whatsapp.net" {
		t.Fatalf("Private = %q", got)
	}
}
