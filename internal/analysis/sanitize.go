package analysis

import (
	"net/url"
	"strings"
)

var secretMarkers = []string{"token", "key", "secret", "password", "auth"}

var youTubeHosts = map[string]bool{
	"www.youtube.com": true,
	"youtube.com":     true,
	"youtu.be":        true,
}

// Sanitize returns a copy of r that is safe to display. r is not modified.
//
//   - environment values whose key or value looks credential-like, or that
//     are longer than 50 characters, keep 3 characters at each end
//   - the GitHub token keeps 4 characters at each end, unless it is a
//     YouTube link
//   - AWS and GCP secrets keep 4 characters at each end, recursively
//   - the npm username is masked only when it looks like a credential
//
// Values of 8 characters or fewer become Redacted.
func Sanitize(r *Result) *Result {
	if r == nil {
		return nil
	}
	out := r.Clone()

	for k, v := range out.Environment {
		if looksSecret(k, v) {
			out.Environment[k] = Mask(v, 3)
		}
	}

	if gh := out.Modules.GitHub; gh != nil && gh.Token != nil {
		token := *gh.Token
		if token != "" && !isYouTubeURL(token) {
			gh.Token = Ptr(Mask(token, 4))
		}
	}

	if aws := out.Modules.AWS; aws != nil {
		for i, s := range aws.Secrets {
			aws.Secrets[i] = maskSecret(s)
		}
	}
	if gcp := out.Modules.GCP; gcp != nil {
		for i, s := range gcp.Secrets {
			gcp.Secrets[i] = maskSecret(s)
		}
	}

	if npm := out.Modules.NPM; npm != nil && npm.Username != nil {
		name := *npm.Username
		lower := strings.ToLower(name)
		if strings.Contains(lower, "token") || strings.Contains(lower, "key") ||
			strings.Contains(lower, "secret") || runeLen(name) > 20 {
			npm.Username = Ptr(Mask(name, 4))
		}
	}

	return out
}

// Mask keeps n characters at each end of s and replaces the middle with
// "***". Strings of 8 characters or fewer become Redacted.
func Mask(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= 8 {
		return Redacted
	}
	return string(runes[:n]) + "***" + string(runes[len(runes)-n:])
}

func looksSecret(key, value string) bool {
	if runeLen(value) > 50 {
		return true
	}
	lk, lv := strings.ToLower(key), strings.ToLower(value)
	for _, m := range secretMarkers {
		if strings.Contains(lk, m) || strings.Contains(lv, m) {
			return true
		}
	}
	return false
}

func isYouTubeURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return youTubeHosts[strings.ToLower(u.Hostname())]
}

func maskSecret(v any) any {
	switch t := v.(type) {
	case string:
		return Mask(t, 4)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = maskSecret(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = maskSecret(e)
		}
		return out
	default:
		return Redacted
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
