package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaMacChrome     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaIPhoneSafari  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad          = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaAndroidPhone  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaAndroidTablet = "Mozilla/5.0 (Linux; Android 13; SM-X910) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaWinFirefox    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaWinEdge       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
)

func TestDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"desktop mac", uaMacChrome, "desktop"},
		{"iphone", uaIPhoneSafari, "mobile"},
		{"android phone", uaAndroidPhone, "mobile"},
		{"ipad", uaIPad, "tablet"},
		{"android tablet", uaAndroidTablet, "tablet"},
		{"empty", "", "desktop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Device(tt.ua))
		})
	}
}

func TestOS(t *testing.T) {
	assert.Equal(t, "macOS", OS(uaMacChrome))
	assert.Equal(t, "iOS", OS(uaIPhoneSafari))
	assert.Equal(t, "iOS", OS(uaIPad))
	assert.Equal(t, "Android", OS(uaAndroidPhone))
	assert.Equal(t, "Windows", OS(uaWinFirefox))
	assert.Equal(t, "unknown", OS(""))
}

func TestBrowser(t *testing.T) {
	assert.Equal(t, "Chrome", Browser(uaMacChrome))
	assert.Equal(t, "Safari", Browser(uaIPhoneSafari))
	assert.Equal(t, "Firefox", Browser(uaWinFirefox))
	// Edge claims to be Chrome and must win anyway
	assert.Equal(t, "Edge", Browser(uaWinEdge))
	assert.Equal(t, "unknown", Browser(""))
}
