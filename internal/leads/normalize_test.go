package leads

import (
	"regexp"
	"testing"
	"time"
)

func TestHashPIIIgnoresCaseAndWhitespace(t *testing.T) {
	a, ok := HashPII(" Jane@EXAMPLE.com ")
	if !ok {
		t.Fatal("expected hash for non-empty input")
	}
	b, _ := HashPII("jane@example.com")
	if a != b {
		t.Fatalf("expected identical digests, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestHashPIIEmpty(t *testing.T) {
	if digest, ok := HashPII(""); ok || digest != "" {
		t.Fatalf("expected no hash for empty input, got %q", digest)
	}
}

func TestHashPIIKnownDigest(t *testing.T) {
	digest, _ := HashPII("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if digest != want {
		t.Fatalf("expected %s, got %s", want, digest)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		first string
		last  string
	}{
		{"three tokens", "Jane Q Public", "Jane", "Q Public"},
		{"empty", "", "", ""},
		{"single", "Cher", "Cher", ""},
		{"extra whitespace", "  Jane \t  Q\n Public  ", "Jane", "Q Public"},
		{"only spaces", "   ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.in)
			if first != tt.first || last != tt.last {
				t.Fatalf("SplitName(%q) = %q, %q; want %q, %q", tt.in, first, last, tt.first, tt.last)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"5551234567":      "15551234567",
		"15551234567":     "15551234567",
		"(555) 123-4567":  "15551234567",
		"+1 555.123.4567": "15551234567",
		"":                "",
		"n/a":             "",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClickID(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	got := ClickID("", "abc123", now)
	if !regexp.MustCompile(`^fb\.1\.\d+\.abc123$`).MatchString(got) {
		t.Fatalf("unexpected synthesized click id %q", got)
	}
	if got != "fb.1.1700000000123.abc123" {
		t.Fatalf("expected millis timestamp, got %q", got)
	}

	if got := ClickID("x", "abc123", now); got != "x" {
		t.Fatalf("expected explicit fbc to win, got %q", got)
	}
	if got := ClickID("", "", now); got != "" {
		t.Fatalf("expected no click id, got %q", got)
	}
}

func TestNormalizeOmitsAbsentHashes(t *testing.T) {
	id := Normalize(&Submission{Email: StringValue("a@b.co")})
	if id.EmailHash == "" {
		t.Fatal("expected email hash")
	}
	if id.PhoneHash != "" || id.FirstNameHash != "" || id.LastNameHash != "" {
		t.Fatalf("expected absent hashes, got %+v", id)
	}
}

func TestNormalizeHashesNormalizedPhone(t *testing.T) {
	id := Normalize(&Submission{Phone: StringValue("(555) 123-4567"), Name: StringValue("Jane Q Public")})
	want, _ := HashPII("15551234567")
	if id.PhoneHash != want {
		t.Fatalf("expected hash of normalized phone")
	}
	if id.FirstName != "Jane" || id.LastName != "Q Public" {
		t.Fatalf("unexpected name split: %+v", id)
	}
	wantLast, _ := HashPII("q public")
	if id.LastNameHash != wantLast {
		t.Fatalf("expected last name hash of lowercase value")
	}
}
