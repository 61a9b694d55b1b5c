package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		wantErr bool
	}{
		{name: "plain jpg", image: "avatar.jpg", wantErr: false},
		{name: "uppercase png", image: "Avatar.PNG", wantErr: false},
		{name: "subdirectory", image: "cards/blog.webp", wantErr: false},
		{name: "dots in name", image: "me..final.jpg", wantErr: false},
		{name: "empty", image: "", wantErr: true},
		{name: "traversal", image: "../config.json", wantErr: true},
		{name: "nested traversal", image: "cards/../../secret.png", wantErr: true},
		{name: "windows traversal", image: "..\\secret.png", wantErr: true},
		{name: "absolute", image: "/etc/passwd", wantErr: true},
		{name: "no extension", image: "avatar", wantErr: true},
		{name: "script extension", image: "avatar.html", wantErr: true},
		{name: "null byte", image: "avatar.jpg\x00.html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageName(tt.image)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageName(%q) error = %v, wantErr %v", tt.image, err, tt.wantErr)
			}
		})
	}
}

func TestPathTraversalIsMarked(t *testing.T) {
	for _, name := range []string{"../config.json", "cards/../../secret.png", "..\\secret.png"} {
		if err := ValidateImageName(name); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("ValidateImageName(%q) = %v, want ErrPathTraversal", name, err)
		}
	}

	if err := ValidateImageName("avatar.html"); errors.Is(err, ErrPathTraversal) {
		t.Errorf("ValidateImageName(avatar.html) marked as traversal: %v", err)
	}

	if err := ValidatePath("../outside"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("ValidatePath(../outside) = %v, want ErrPathTraversal", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative directory", path: "images", wantErr: false},
		{name: "dot relative", path: "./public/images", wantErr: false},
		{name: "absolute data dir", path: "/srv/linkpage/images", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "parent", path: "../images", wantErr: true},
		{name: "bare parent", path: "..", wantErr: true},
		{name: "restricted", path: "/etc/ssl", wantErr: true},
		{name: "proc", path: "/proc", wantErr: true},
		{name: "shell metachar", path: "images;rm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCSSColor(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "#3b82f6", wantErr: false},
		{value: "#fff", wantErr: false},
		{value: "rebeccapurple", wantErr: false},
		{value: "oklch(0.6 0.25 240)", wantErr: false},
		{value: "rgba(0, 0, 0, 50%)", wantErr: false},
		{value: "", wantErr: true},
		{value: "red; background: url(x)", wantErr: true},
		{value: "#fff}</style><script>", wantErr: true},
		{value: "#12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateCSSColor(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCSSColor(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOrigin(t *testing.T) {
	allowedOrigins := []string{
		"http://localhost:3000",
		"127.0.0.1:3000",
	}

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{name: "allowed origin", origin: "http://localhost:3000", wantErr: false},
		{name: "allowed host", origin: "http://127.0.0.1:3000", wantErr: false},
		{name: "empty origin", origin: "", wantErr: true},
		{name: "disallowed origin", origin: "http://malicious.com", wantErr: true},
		{name: "file protocol", origin: "file:///etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrigin(tt.origin, allowedOrigins)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrigin() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Jane Doe", expected: "Jane Doe"},
		{input: "line\nbreak\ttab", expected: "line\nbreak\ttab"},
		{input: "null\x00byte", expected: "nullbyte"},
		{input: "bell\x07char", expected: "bellchar"},
	}

	for _, tt := range tests {
		if got := SanitizeInput(tt.input); got != tt.expected {
			t.Errorf("SanitizeInput(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func BenchmarkValidateImageName(b *testing.B) {
	name := "cards/" + strings.Repeat("a", 64) + ".png"
	for i := 0; i < b.N; i++ {
		_ = ValidateImageName(name)
	}
}
