package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xful-bep/crysknife/internal/fetch"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		registryURL string
		wantURL     string
	}{
		{
			name:        "default registry",
			registryURL: "",
			wantURL:     DefaultRegistry,
		},
		{
			name:        "custom registry",
			registryURL: "https://custom.registry.com",
			wantURL:     "https://custom.registry.com",
		},
		{
			name:        "trailing slash removed",
			registryURL: "https://custom.registry.com/",
			wantURL:     "https://custom.registry.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.registryURL, nil)
			if c.URL() != tt.wantURL {
				t.Errorf("NewClient().URL() = %q, want %q", c.URL(), tt.wantURL)
			}
		})
	}
}

func TestGetPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/test-package":
			w.Write([]byte(`{
				"name": "test-package",
				"description": "A test package",
				"dist-tags": {"latest": "1.0.0"},
				"versions": {"1.0.0": {"name": "test-package", "version": "1.0.0", "scripts": {"test": "echo test"}}},
				"maintainers": [{"name": "testuser", "email": "test@example.com"}],
				"author": "Test User <test@example.com> (https://example.com)",
				"keywords": "color, parser",
				"repository": "github:test/test-package"
			}`))
		case "/@scope/scoped-pkg":
			json.NewEncoder(w).Encode(PackageMetadata{Name: "@scope/scoped-pkg"})
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "Not found"}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	tests := []struct {
		name       string
		pkg        string
		wantStatus int
		wantPkg    string
	}{
		{
			name:    "existing package",
			pkg:     "test-package",
			wantPkg: "test-package",
		},
		{
			name:    "scoped package",
			pkg:     "@scope/scoped-pkg",
			wantPkg: "@scope/scoped-pkg",
		},
		{
			name:       "not found package",
			pkg:        "not-found",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "rate limited",
			pkg:        "limited",
			wantStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			pkg, err := client.GetPackage(ctx, tt.pkg)
			if got := fetch.StatusCode(err); got != tt.wantStatus {
				t.Fatalf("GetPackage() status = %d (%v), want %d", got, err, tt.wantStatus)
			}
			if tt.wantStatus == 0 && pkg.Name != tt.wantPkg {
				t.Errorf("GetPackage().Name = %q, want %q", pkg.Name, tt.wantPkg)
			}
		})
	}

	pkg, err := client.GetPackage(context.Background(), "test-package")
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Latest() != "1.0.0" {
		t.Errorf("Latest() = %q", pkg.Latest())
	}
	if pkg.Author == nil || pkg.Author.Name != "Test User" || pkg.Author.Email != "test@example.com" {
		t.Errorf("Author = %+v", pkg.Author)
	}
	if len(pkg.Keywords) != 2 || pkg.Keywords[1] != "parser" {
		t.Errorf("Keywords = %v", pkg.Keywords)
	}
	if pkg.Repository == nil || pkg.Repository.URL != "github:test/test-package" {
		t.Errorf("Repository = %+v", pkg.Repository)
	}
}

func TestGetUserPackages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/-/user/alice/package" {
			w.Write([]byte(`{"pkg-a":"write","@alice/b":"read"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	pkgs, err := client.GetUserPackages(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserPackages() error = %v", err)
	}
	if len(pkgs) != 2 || pkgs["pkg-a"] != "write" {
		t.Errorf("GetUserPackages() = %v", pkgs)
	}

	if _, err := client.GetUserPackages(context.Background(), "bob"); !fetch.IsNotFound(err) {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/-/v1/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("text"); got != "maintainer:alice" {
			t.Errorf("text = %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "250" {
			t.Errorf("size = %q", got)
		}
		w.Write([]byte(`{"total":2,"objects":[
			{"package":{"name":"a","publisher":{"username":"alice"}}},
			{"package":{"name":"b","maintainers":[{"username":"carol"}],"author":{"name":"Dave"}}}
		]}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL, nil).Search(context.Background(), "maintainer:alice", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.Total != 2 || len(res.Objects) != 2 {
		t.Fatalf("Search() = %+v", res)
	}
	if !res.Objects[0].Package.OwnedBy("Alice") {
		t.Error("publisher match should be case-insensitive")
	}
	if res.Objects[1].Package.OwnedBy("alice") {
		t.Error("b is not owned by alice")
	}
	if !res.Objects[1].Package.OwnedBy("dave") {
		t.Error("author name should match")
	}
}

func TestGetPackage_Errors(t *testing.T) {
	t.Run("Network Error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:0", nil)
		_, err := client.GetPackage(context.Background(), "pkg")
		if err == nil {
			t.Error("expected network error")
		}
	})

	t.Run("JSON Decode Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid-json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		_, err := client.GetPackage(context.Background(), "pkg")
		if err == nil {
			t.Error("expected json decoding error")
		}
	})

	t.Run("Status Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil)
		_, err := client.GetPackage(context.Background(), "pkg")
		if fetch.StatusCode(err) != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %v", err)
		}
	})
}
