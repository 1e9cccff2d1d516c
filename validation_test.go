package authcore

import "testing"

func TestValidatePassword(t *testing.T) {
	policy := PasswordConfig{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}

	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes", "Str0ng!Pass", true},
		{"too short", "S0r!t", false},
		{"no upper", "weak1!password", false},
		{"no lower", "WEAK1!PASSWORD", false},
		{"no digit", "Weakest!Pass", false},
		{"no special", "Weak1Password", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validatePassword(policy, tc.password); got != tc.want {
				t.Fatalf("validatePassword(%q) = %v, want %v", tc.password, got, tc.want)
			}
		})
	}
}

func TestValidatePasswordRelaxedPolicy(t *testing.T) {
	policy := PasswordConfig{MinLength: 6}

	if !validatePassword(policy, "abcdef") {
		t.Fatal("length-only policy rejected a long-enough password")
	}
	if validatePassword(policy, "abc") {
		t.Fatal("length-only policy accepted a short password")
	}
}

func TestValidateEmail(t *testing.T) {
	open := EmailConfig{}

	cases := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a.b+c_d@sub.example.org", true},
		{"no-at-sign", false},
		{"@example.com", false},
		{"alice@", false},
		{"alice@example", false},
		{"alice@example.c", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := validateEmail(open, tc.email); got != tc.want {
			t.Fatalf("validateEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestValidateEmailDomainAllowList(t *testing.T) {
	cfg := EmailConfig{AllowedDomains: []string{"example.com", "corp.example.org"}}

	if !validateEmail(cfg, "alice@example.com") {
		t.Fatal("allowed domain rejected")
	}
	if !validateEmail(cfg, "bob@CORP.example.ORG") {
		t.Fatal("domain comparison should ignore case")
	}
	if validateEmail(cfg, "mallory@evil.com") {
		t.Fatal("unlisted domain accepted")
	}
	if validateEmail(cfg, "mallory@sub.example.com") {
		t.Fatal("subdomain of an allowed domain accepted")
	}
}

func TestSanitizeDisplayName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Alice Smith", "Alice Smith"},
		{"strips markup", "<script>Alice</script>", "Alice"},
		{"strips specials", "Al!ce @ Sm#th", "Alce  Smth"},
		{"keeps hyphen and underscore", "Mary-Jane_2", "Mary-Jane_2"},
		{"trims whitespace", "  Alice  ", "Alice"},
		{"empty after stripping", "<b></b>!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeDisplayName(tc.in, 50); got != tc.want {
				t.Fatalf("sanitizeDisplayName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeDisplayNameCapsLength(t *testing.T) {
	long := "aaaaaaaaaabbbbbbbbbb"
	if got := sanitizeDisplayName(long, 10); got != "aaaaaaaaaa" {
		t.Fatalf("sanitizeDisplayName cap = %q, want %q", got, "aaaaaaaaaa")
	}
}
