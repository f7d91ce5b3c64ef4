package anubis

import "testing"

func TestBuildURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, path, want string
	}{
		{"https://auth.example.com/", "/v1/introspect", "https://auth.example.com/v1/introspect"},
		{"https://auth.example.com", "v1/introspect", "https://auth.example.com/v1/introspect"},
		{" https://auth.example.com ", "", "https://auth.example.com"},
		{"https://auth.example.com", "https://other.example.com/introspect", "https://other.example.com/introspect"},
	}
	for _, tt := range tests {
		if got := buildURL(tt.base, tt.path); got != tt.want {
			t.Fatalf("buildURL(%q, %q)=%q want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestHashToken_Stable(t *testing.T) {
	t.Parallel()

	a, b := hashToken("token-abc"), hashToken("token-abc")
	if a != b || a == hashToken("token-abd") || a == "token-abc" {
		t.Fatalf("unexpected token hashes %q %q", a, b)
	}
}
