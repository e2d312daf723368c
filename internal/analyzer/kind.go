package analyzer

import (
	"fmt"
	"strings"
)

// Kind selects which source an analysis reads.
type Kind string

const (
	KindGitHubAccount Kind = "github-account"
	KindNPMAccount    Kind = "npm-account"
	KindNPMPackage    Kind = "npm-package"
	KindFileUpload    Kind = "file-upload"
	KindBase64        Kind = "base64-input"
	KindPackageJSON   Kind = "package-json"
)

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindGitHubAccount,
		KindNPMAccount,
		KindNPMPackage,
		KindFileUpload,
		KindBase64,
		KindPackageJSON,
	}
}

// ParseKind accepts a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// Networked reports whether analyses of this kind call external APIs.
func (k Kind) Networked() bool {
	switch k {
	case KindGitHubAccount, KindNPMAccount, KindNPMPackage:
		return true
	}
	return false
}

func (k Kind) Label() string {
	switch k {
	case KindGitHubAccount:
		return "GitHub Account"
	case KindNPMAccount:
		return "NPM Account"
	case KindNPMPackage:
		return "NPM Package"
	case KindFileUpload:
		return "File Upload"
	case KindBase64:
		return "Base64 Input"
	case KindPackageJSON:
		return "package.json"
	default:
		return "Unknown"
	}
}

func (k Kind) Placeholder() string {
	switch k {
	case KindGitHubAccount:
		return "Enter GitHub username..."
	case KindNPMAccount:
		return "Enter NPM username..."
	case KindNPMPackage:
		return "Enter NPM package name (name@version)..."
	case KindFileUpload:
		return "Path to a JSON file..."
	case KindBase64:
		return "Paste base64 encoded data..."
	case KindPackageJSON:
		return "Path to a package.json..."
	default:
		return "Enter search term..."
	}
}
