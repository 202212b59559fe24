package challenge

import "testing"

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want bool
	}{
		{"empty", "", false},
		{"ordinary hotel page", "<html><body><h1>Riverlake Inn</h1><p>Check-in from 3pm</p></body></html>", false},
		{"captcha", "<div class='g-recaptcha'>Please complete the CAPTCHA</div>", true},
		{"cloudflare", "<script src='/cdn-cgi/challenge-platform/h/b/orchestrate'></script>", true},
		{"browser check", "<title>Just a moment...</title><p>Checking your browser before accessing</p>", true},
		{"perimeterx", "<div id='px-captcha'></div>", true},
		{"datadome", "<script src='https://ct.captcha-delivery.com/c.js'></script><!-- DataDome -->", true},
		{"human check", "Please verify you are human to continue", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Detect(tt.html); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarker(t *testing.T) {
	t.Parallel()

	if got := Marker("blocked by Incapsula"); got != "incapsula" {
		t.Errorf("expected incapsula, got %q", got)
	}
	if got := Marker("nothing here"); got != "" {
		t.Errorf("expected empty marker, got %q", got)
	}
}

func TestLooksLikeScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"prose", "Guests must be 21 to check in. Photo ID is required.", false},
		{"function", "function(e){return e.policy}", true},
		{"window global", "window.__INITIAL_STATE__ = {}", true},
		{"braces", "a{b;c}d{e;f}g", true},
		{"prose ending in document", "Check-in policy: please bring a photo ID document. Cash is not accepted at the front desk.", false},
		{"prose ending in window", "Ask for a room by the window. Late check-in is available.", false},
		{"document call", "document.getElementById('policies')", true},
		{"let binding", "let policy = data.rules", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := LooksLikeScript(tt.text); got != tt.want {
				t.Errorf("LooksLikeScript(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
