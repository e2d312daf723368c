package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xful-bep/crysknife/internal/github"
	"github.com/xful-bep/crysknife/internal/intelligence"
	"github.com/xful-bep/crysknife/internal/registry"
)

func fixtureRegistry(t *testing.T) *intelligence.Registry {
	t.Helper()
	r, err := intelligence.NewRegistry([]intelligence.InfectedPackage{
		{Name: "evil-pkg", Versions: []string{"1.0.1", "1.0.2"}, Category: "misc"},
		{Name: "@scope/bad", Versions: []string{"2.0.0"}, Category: "scope"},
		{Name: "angulartics2", Versions: []string{"14.1.1", "14.1.2"}, Category: "angular"},
	}, intelligence.Indicators{
		BundleHash:      "deadbeefcafe",
		WebhookEndpoint: "webhook.site/abc-123",
		LifecycleScript: "node bundle.js",
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// unreachable fails the test if anything calls it.
func unreachable(t *testing.T) *httptest.Server {
	t.Helper()
	return newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})
}

func newTestDispatcher(t *testing.T, reg *intelligence.Registry, npmURL, githubURL string) *Dispatcher {
	t.Helper()
	return New(Deps{
		Registry: reg,
		NPM:      registry.NewClient(npmURL, nil),
		GitHub:   github.NewClient(githubURL, "", nil),
		Sampler:  SamplerOptions{Size: 3, Concurrency: 2},
	})
}

func TestDispatcher_Errors(t *testing.T) {
	srv := unreachable(t)
	d := newTestDispatcher(t, fixtureRegistry(t), srv.URL, srv.URL)
	ctx := context.Background()

	if _, err := d.Analyze(ctx, KindNPMPackage, "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("blank query: got %v, want ErrEmptyQuery", err)
	}
	if _, err := d.Analyze(ctx, Kind("pypi-package"), "requests"); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("unknown kind: got %v, want ErrUnsupportedKind", err)
	}
}

func TestDispatcher_Kinds(t *testing.T) {
	srv := unreachable(t)
	d := newTestDispatcher(t, fixtureRegistry(t), srv.URL, srv.URL)

	got := d.Kinds()
	if len(got) != len(Kinds()) {
		t.Fatalf("Kinds() = %v, want %d kinds", got, len(Kinds()))
	}
	for _, k := range Kinds() {
		found := false
		for _, g := range got {
			if g == k {
				found = true
			}
		}
		if !found {
			t.Errorf("dispatcher has no analyzer for %s", k)
		}
	}
}

func TestDispatcher_PassesErrorsThrough(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	d := newTestDispatcher(t, fixtureRegistry(t), srv.URL, srv.URL)

	_, err := d.Analyze(context.Background(), KindNPMPackage, "left-pad")
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError, got %T: %v", err, err)
	}
	if rle.Service != "NPM" || rle.Status != http.StatusTooManyRequests {
		t.Errorf("RateLimitError = %+v", rle)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"github-account", KindGitHubAccount, false},
		{" NPM-Package ", KindNPMPackage, false},
		{"base64-input", KindBase64, false},
		{"package-json", KindPackageJSON, false},
		{"pypi", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("ParseKind(%q) error = %v, want ErrUnsupportedKind", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKind_Networked(t *testing.T) {
	for _, k := range Kinds() {
		want := k == KindGitHubAccount || k == KindNPMAccount || k == KindNPMPackage
		if got := k.Networked(); got != want {
			t.Errorf("%s.Networked() = %v, want %v", k, got, want)
		}
		if k.Label() == "Unknown" {
			t.Errorf("%s has no label", k)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&RateLimitError{Service: "GitHub", Status: 403}, "GitHub API rate limit exceeded. Please wait before trying again. (Status: 403)"},
		{&UpstreamError{Service: "NPM", Status: 500}, "NPM API error: 500"},
		{&MalformedInputError{Err: errors.New("unexpected EOF")}, "invalid JSON format: unexpected EOF"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
