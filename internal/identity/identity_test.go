package identity_test

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodtrack/prodtrack/internal/identity"
)

var idFormat = regexp.MustCompile(`^TAB-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{6}$`)

func TestGenerate_Format(t *testing.T) {
	id := identity.Generate(identity.Signals{
		UserAgent:   "Mozilla/5.0 (Linux; Android 13; SM-X200) Chrome/120.0",
		Language:    "pt-BR",
		Platform:    "Linux armv8l",
		ScreenW:     1280,
		ScreenH:     800,
		TZOffsetMin: 180,
	})

	assert.Regexp(t, idFormat, id)
	assert.True(t, identity.IsDeviceID(id))
}

func TestGenerate_DistinctAcrossCalls(t *testing.T) {
	s := identity.Signals{UserAgent: "same-agent", Language: "pt-BR"}

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := identity.Generate(s)
		require.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true
	}
}

func TestGenerate_EmptySignals(t *testing.T) {
	id := identity.Generate(identity.Signals{})
	assert.Regexp(t, idFormat, id)
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/maquina", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0)")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

	id := identity.Generate(identity.FromRequest(req))
	assert.Regexp(t, idFormat, id)
}

func TestIsDeviceID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"TAB-AB12-7788-XZ1Q9F", true},
		{"TAB-0000-0000-000000", true},
		{"tab-ab12-7788-xz1q9f", false},
		{"TAB-", false},
		{"TAB-ab!2-7788-xz1q9f", false},
		{"42", false},
		{"", false},
		{"TABLET-123", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, identity.IsDeviceID(tt.in), "input %q", tt.in)
	}
}

func TestOperatorTag(t *testing.T) {
	assert.Equal(t, "Operador-XZ1Q9F", identity.OperatorTag("TAB-AB12-7788-XZ1Q9F"))
	assert.Equal(t, "Operador-abc", identity.OperatorTag("abc"))
}

func TestDetectModel(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "android tablet",
			ua:   "Mozilla/5.0 (Linux; Android 13; SM-X200 Build/TP1A) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			want: "Android 13 - SM-X200 - Chrome",
		},
		{
			name: "ipad",
			ua:   "Mozilla/5.0 (iPad; CPU OS 16_2 like Mac OS X) AppleWebKit/605.1.15 Version/16.2 Safari/604.1",
			want: "iPad (iOS 16.2) - Safari",
		},
		{
			name: "windows edge",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0",
			want: "Windows 10 - Edge",
		},
		{
			name: "empty",
			ua:   "",
			want: "Desconhecido",
		},
		{
			name: "bare linux desktop",
			ua:   "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0",
			want: "Linux - Firefox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.DetectModel(tt.ua))
		})
	}
}
