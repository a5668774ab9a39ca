package dicomuid

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		uid := New()
		if !strings.HasPrefix(uid, Root) {
			t.Fatalf("New() = %s, want prefix %s", uid, Root)
		}
		if len(uid) > 64 {
			t.Fatalf("New() = %s is %d characters", uid, len(uid))
		}
		if !transfersyntax.IsValidUID(uid) {
			t.Fatalf("New() = %s is not a valid UID", uid)
		}
		if seen[uid] {
			t.Fatalf("New() repeated %s", uid)
		}
		seen[uid] = true
	}
}

func TestDerive(t *testing.T) {
	a, b := Derive("1.2.3.4"), Derive("1.2.3.4")
	if a != b {
		t.Errorf("Derive() = %s then %s", a, b)
	}
	if Derive("1.2.3.5") == a {
		t.Error("different seeds produced the same UID")
	}
}

func TestFromUUID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00000000-0000-0000-0000-000000000000", "2.25.0"},
		{"00000000-0000-0000-0000-000000000100", "2.25.256"},
		{"f81d4fae-7dec-11d0-a765-00a0c91e6bf6", "2.25.329800735698586629295641978511506172918"},
	}
	for _, tt := range tests {
		if got := FromUUID(uuid.MustParse(tt.in)); got != tt.want {
			t.Errorf("FromUUID(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
