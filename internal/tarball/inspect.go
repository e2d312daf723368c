// Package tarball streams a published npm tarball and looks for the worm's
// payload inside it without writing anything to disk.
package tarball

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/intelligence"
)

const (
	maxTotalSize = 100 * 1024 * 1024 // 100MB
	maxFileSize  = 10 * 1024 * 1024  // 10MB per file
	maxFiles     = 10000
)

// Finding is one indicator located in a file of the tarball.
type Finding struct {
	Path      string `json:"path"`
	Indicator string `json:"indicator"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s (%s)", f.Indicator, f.Path)
}

// Inspection is the outcome of scanning one tarball.
type Inspection struct {
	Files    int
	Shasum   string
	Findings []Finding
}

// ShasumMismatchError is returned when the tarball shasum doesn't match.
type ShasumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ShasumMismatchError) Error() string {
	return fmt.Sprintf("shasum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// Inspect downloads the tarball at tarballURL and scans it: every file is
// hashed and compared with the bundle hash, package.json lifecycle scripts
// are compared with the lifecycle signature, and JavaScript files are
// searched for the exfiltration endpoint and worm behaviour. A non-empty
// expectedShasum is verified against the SHA-1 of the whole download.
func Inspect(ctx context.Context, fc *fetch.Client, tarballURL, expectedShasum string, ind intelligence.Indicators) (*Inspection, error) {
	body, err := fc.Open(ctx, tarballURL)
	if err != nil {
		return nil, fmt.Errorf("downloading tarball: %w", err)
	}
	defer body.Close()

	hasher := sha1.New()
	reader := io.TeeReader(io.LimitReader(body, maxTotalSize+1), hasher)

	gz, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	insp, err := scan(tar.NewReader(gz), ind)
	if err != nil {
		return nil, err
	}

	// Drain any remaining data so the hasher sees everything.
	io.Copy(io.Discard, reader)

	insp.Shasum = hex.EncodeToString(hasher.Sum(nil))
	if expectedShasum != "" && insp.Shasum != expectedShasum {
		return nil, &ShasumMismatchError{Expected: expectedShasum, Actual: insp.Shasum}
	}
	return insp, nil
}

func scan(tr *tar.Reader, ind intelligence.Indicators) (*Inspection, error) {
	insp := &Inspection{}
	bundleHash := strings.ToLower(ind.BundleHash)
	webhook := strings.ToLower(ind.WebhookEndpoint)
	var totalSize int64

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		insp.Files++
		if err := validateLimits(insp.Files, header.Size, totalSize); err != nil {
			return nil, err
		}
		totalSize += header.Size

		name := cleanPath(header.Name)
		if name == "" {
			continue
		}

		data, err := io.ReadAll(io.LimitReader(tr, maxFileSize))
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}

		sum := sha256.Sum256(data)
		if bundleHash != "" && hex.EncodeToString(sum[:]) == bundleHash {
			insp.Findings = append(insp.Findings, Finding{Path: name, Indicator: "Malicious bundle.js hash detected"})
		}

		if name == "package.json" {
			insp.Findings = append(insp.Findings, scanManifest(data, ind.LifecycleScript)...)
			continue
		}
		if !isJSFile(name) {
			continue
		}
		if webhook != "" && bytes.Contains(bytes.ToLower(data), []byte(webhook)) {
			insp.Findings = append(insp.Findings, Finding{Path: name, Indicator: "Data exfiltration endpoint referenced"})
		}
		for _, behaviour := range scanWorm(string(data)) {
			insp.Findings = append(insp.Findings, Finding{Path: name, Indicator: behaviour})
		}
	}

	return insp, nil
}

func scanManifest(data []byte, lifecycle string) []Finding {
	if lifecycle == "" {
		return nil
	}
	var manifest struct {
		Scripts map[string]any `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}

	hooks := make([]string, 0, len(manifest.Scripts))
	for hook := range manifest.Scripts {
		hooks = append(hooks, hook)
	}
	sort.Strings(hooks)

	var findings []Finding
	for _, hook := range hooks {
		cmd, _ := manifest.Scripts[hook].(string)
		if strings.TrimSpace(cmd) == lifecycle {
			findings = append(findings, Finding{
				Path:      "package.json",
				Indicator: fmt.Sprintf("Malicious lifecycle script detected (%s)", hook),
			})
		}
	}
	return findings
}

func validateLimits(fileCount int, fileSize, totalSize int64) error {
	if fileCount > maxFiles {
		return fmt.Errorf("tarball exceeds maximum file count (%d)", maxFiles)
	}
	if fileSize > maxFileSize {
		return fmt.Errorf("file exceeds maximum size (%d bytes)", maxFileSize)
	}
	if totalSize+fileSize > maxTotalSize {
		return fmt.Errorf("tarball exceeds maximum total size (%d bytes)", maxTotalSize)
	}
	return nil
}

// cleanPath strips the "package/" prefix npm tarballs use. Paths with ".."
// components are rejected.
func cleanPath(name string) string {
	name = strings.TrimPrefix(name, "package/")
	name = path.Clean(name)
	if name == "." || name == "" || path.IsAbs(name) || strings.Contains(name, "..") {
		return ""
	}
	return name
}

func isJSFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".js", ".mjs", ".cjs", ".ts", ".mts", ".cts":
		return true
	}
	return false
}
