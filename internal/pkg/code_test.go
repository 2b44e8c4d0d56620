package pkg

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRandDigits(t *testing.T) {
	for _, n := range []int{0, 1, 6, 32} {
		got, err := RandDigits(n)
		if err != nil {
			t.Fatalf("RandDigits(%d) error = %v", n, err)
		}
		if len(got) != n {
			t.Errorf("len(RandDigits(%d)) = %d", n, len(got))
		}
		if strings.Trim(got, "0123456789") != "" {
			t.Errorf("RandDigits(%d) = %q contains non digits", n, got)
		}
	}
	if _, err := RandDigits(-1); err == nil {
		t.Error("RandDigits(-1) should fail")
	}
}

func TestRandDigitsCoversAllDigits(t *testing.T) {
	got, err := RandDigits(2000)
	if err != nil {
		t.Fatal(err)
	}
	for d := '0'; d <= '9'; d++ {
		if !strings.ContainsRune(got, d) {
			t.Errorf("digit %c never produced", d)
		}
	}
}

func TestEmailCodeHTML(t *testing.T) {
	html := EmailCodeHTML("reset your password", "123456", 5*time.Minute)
	for _, want := range []string{"reset your password", "123456", "5 minutes"} {
		if !strings.Contains(html, want) {
			t.Errorf("EmailCodeHTML() missing %q: %s", want, html)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn", "json")
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("warn record missing: %s", out)
	}
}
