package render

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		text string
		data map[string]string
		want string
	}{
		{
			name: "single placeholder",
			text: "Hello {{displayName}}!",
			data: map[string]string{"displayName": "Ayşe"},
			want: "Hello Ayşe!",
		},
		{
			name: "multiple placeholders",
			text: "{{a}} and {{b}}",
			data: map[string]string{"a": "one", "b": "two"},
			want: "one and two",
		},
		{
			name: "unresolved placeholder renders empty",
			text: "err:{{error}} ok",
			data: map[string]string{},
			want: "err: ok",
		},
		{
			name: "nil data",
			text: "{{missing}}",
			data: nil,
			want: "",
		},
		{
			name: "no placeholders",
			text: "plain text",
			data: map[string]string{"x": "y"},
			want: "plain text",
		},
		{
			name: "repeated placeholder",
			text: "{{n}}-{{n}}",
			data: map[string]string{"n": "7"},
			want: "7-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.text, tt.data); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical address", "johndoe@example.com", "j***e@example.com"},
		{"two char local", "ab@x.io", "a***b@x.io"},
		{"single char local", "a@x.io", "a***a@x.io"},
		{"no at sign returned unchanged", "not-an-email", "not-an-email"},
		{"leading at returned unchanged", "@domain.com", "@domain.com"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskEmail(tt.email); got != tt.want {
				t.Errorf("MaskEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

// Masking twice must yield the same output as masking once.
func TestMaskEmailIdempotent(t *testing.T) {
	inputs := []string{"johndoe@example.com", "ab@x.io", "a@x.io", "plain"}
	for _, in := range inputs {
		once := MaskEmail(in)
		twice := MaskEmail(once)
		if once != twice {
			t.Errorf("MaskEmail not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestMaskID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"valid eleven digits", "12345678901", "*********01"},
		{"too short", "12345", IDNotProvided},
		{"too long", "123456789012", IDNotProvided},
		{"empty", "", IDNotProvided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskID(tt.id); got != tt.want {
				t.Errorf("MaskID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestFormatID(t *testing.T) {
	if got := FormatID("12345678901"); got != "123 456 789 01" {
		t.Errorf("FormatID = %q, want %q", got, "123 456 789 01")
	}
	// Anything that does not contain exactly eleven digits passes through.
	if got := FormatID("12345"); got != "12345" {
		t.Errorf("FormatID short input = %q, want unchanged", got)
	}
}

// formatId(stripNonDigits(formatId(x))) == formatId(x) for 11-digit x.
func TestFormatIDRoundTrip(t *testing.T) {
	ids := []string{"12345678901", "98765432109", "00000000000"}
	for _, id := range ids {
		once := FormatID(id)
		again := FormatID(StripDigits(once))
		if once != again {
			t.Errorf("FormatID round trip failed for %q: %q != %q", id, once, again)
		}
	}
}

func TestStripDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 456 789 01", "12345678901"},
		{"a1b2c3", "123"},
		{"no digits", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDigits(tt.in); got != tt.want {
			t.Errorf("StripDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
