package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetOutputRedirectsAndRestores(t *testing.T) {
	log := NewLogger()
	if log.Output() != os.Stderr {
		t.Fatalf("new logger output = %v, want os.Stderr", log.Output())
	}

	var buf bytes.Buffer
	prev := log.Output()
	log.SetOutput(&buf)
	if log.Output() != &buf {
		t.Fatalf("Output() did not return the writer passed to SetOutput")
	}

	log.Info().Str("file", "world.dat").Msg("redirected")
	if !strings.Contains(buf.String(), "redirected") {
		t.Errorf("message not written to redirected output: %q", buf.String())
	}

	log.SetOutput(prev)
	if log.Output() != os.Stderr {
		t.Errorf("restore did not return output to os.Stderr")
	}
}
