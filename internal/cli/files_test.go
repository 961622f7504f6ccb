package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/craftdeck/craftdeck/internal/fsmodel"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPrintListing(t *testing.T) {
	listing := fsmodel.Listing{
		Entries: []fsmodel.Entry{
			{Name: "world", IsDirectory: true, TypeLabel: "Folder"},
			{Name: "server.jar", Size: 4096, TypeLabel: "Java Archive",
				ModifiedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		},
	}

	var sb strings.Builder
	printListing(&sb, listing)
	out := sb.String()

	if !strings.Contains(out, "NAME") || !strings.Contains(out, "MODIFIED") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "world") || !strings.Contains(out, "Folder") {
		t.Errorf("missing directory row:\n%s", out)
	}
	if !strings.Contains(out, "server.jar") || !strings.Contains(out, "4.0 KiB") {
		t.Errorf("missing file row:\n%s", out)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"abcd", "****"},
		{"ptlc_secret1234", "***********1234"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
