package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/package-url/packageurl-go"
	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/intelligence"
	"github.com/xful-bep/crysknife/internal/registry"
	"github.com/xful-bep/crysknife/internal/tarball"
)

// ParsePackageSpec splits "name@version", "@scope/name@version" or a
// "pkg:npm/..." package URL into name and version. The "latest" tag is the
// same as no version.
func ParsePackageSpec(query string) (name, version string, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", "", ErrEmptyQuery
	}

	if strings.HasPrefix(query, "pkg:") {
		purl, err := packageurl.FromString(query)
		if err != nil {
			return "", "", fmt.Errorf("invalid package URL %q: %w", query, err)
		}
		if purl.Type != packageurl.TypeNPM {
			return "", "", fmt.Errorf("package URL %q is not an npm package", query)
		}
		name = purl.Name
		if purl.Namespace != "" {
			name = purl.Namespace + "/" + purl.Name
		}
		version = purl.Version
	} else if i := strings.LastIndex(query, "@"); i > 0 {
		name, version = query[:i], query[i+1:]
	} else {
		name = query
	}

	if version == "latest" {
		version = ""
	}
	if name == "" {
		return "", "", ErrEmptyQuery
	}
	return name, version, nil
}

// NPMPackageAnalyzer checks one package against the infection registry and
// scans its registry metadata for malware signatures.
type NPMPackageAnalyzer struct {
	client *registry.Client
	reg    *intelligence.Registry
	logger *zap.Logger

	// InspectTarball downloads the checked version's tarball and scans it.
	InspectTarball bool
	fetch          *fetch.Client
}

func NewNPMPackageAnalyzer(client *registry.Client, reg *intelligence.Registry, logger *zap.Logger) *NPMPackageAnalyzer {
	return &NPMPackageAnalyzer{client: client, reg: reg, logger: logger, fetch: fetch.New(0)}
}

func (a *NPMPackageAnalyzer) Kind() Kind { return KindNPMPackage }

// Analyze checks an explicitly requested version first; a registry hit returns
// without any network call. Otherwise the package metadata is fetched and
// the latest version is checked. A clean current version of a listed package
// is reported as infected history, not active infection.
func (a *NPMPackageAnalyzer) Analyze(ctx context.Context, query string) (*analysis.Result, error) {
	name, version, err := ParsePackageSpec(query)
	if err != nil {
		return nil, err
	}
	log := a.logger.With(zap.String("package", name), zap.String("version", version))

	if version != "" {
		if check := a.reg.IsPackageInfected(name, version); check.Infected {
			log.Info("requested version is a known compromised release")
			res := analysis.NewClean()
			res.System = npmSystem("npm-registry")
			res.Modules.NPM = &analysis.NPMModule{
				PackageName:       name,
				DetectedVersion:   version,
				Suspicious:        analysis.Ptr(true),
				SuspiciousReasons: []string{fmt.Sprintf("Version %s of %s is a known compromised release", version, name)},
				InfectedPackages:  []analysis.InfectedPackageInfo{infectedInfo(a.reg, name, version)},
			}
			return res, nil
		}
	}

	meta, err := a.client.GetPackage(ctx, name)
	if err != nil {
		if fetch.IsNotFound(err) {
			log.Debug("package not found")
			res := analysis.NewClean()
			res.System.Platform = "npm"
			return res, nil
		}
		return nil, classify(serviceNPM, err)
	}

	// The current release is checked even when another version was requested.
	checked := meta.Latest()
	if version != "" && version != checked {
		log.Debug("requested version is not a known compromised release, checking the current release", zap.String("latest", checked))
	}

	npm := &analysis.NPMModule{
		PackageName:     name,
		DetectedVersion: checked,
		Suspicious:      analysis.Ptr(false),
	}

	switch check := a.reg.IsPackageInfected(name, checked); {
	case checked != "" && check.Infected:
		npm.Suspicious = analysis.Ptr(true)
		npm.SuspiciousReasons = append(npm.SuspiciousReasons,
			fmt.Sprintf("Current version %s of %s is a known compromised release", checked, name))
		npm.InfectedPackages = []analysis.InfectedPackageInfo{infectedInfo(a.reg, name, checked)}
	case a.reg.Has(name):
		info := infectedInfo(a.reg, name, checked)
		npm.HasInfectedHistory = analysis.Ptr(true)
		npm.SuspiciousReasons = append(npm.SuspiciousReasons,
			fmt.Sprintf("Current version %s is clean, but versions %s were compromised", displayVersion(checked), strings.Join(info.Versions, ", ")))
		npm.InfectedPackages = []analysis.InfectedPackageInfo{info}
	}

	if hits := a.reg.ScanText(metadataText(meta, checked)); len(hits) > 0 {
		npm.Suspicious = analysis.Ptr(true)
		npm.MalwareIndicators = append(npm.MalwareIndicators, hits...)
		npm.SuspiciousReasons = append(npm.SuspiciousReasons, hits...)
	}

	if a.InspectTarball {
		a.inspect(ctx, log, meta, checked, npm)
	}

	res := analysis.NewClean()
	res.System = npmSystem("npm-registry")
	res.Modules.NPM = npm
	return res, nil
}

// inspect adds tarball findings to npm. Download failures are logged and
// otherwise ignored; the metadata verdict stands on its own.
func (a *NPMPackageAnalyzer) inspect(ctx context.Context, log *zap.Logger, meta *registry.PackageMetadata, version string, npm *analysis.NPMModule) {
	v, ok := meta.Versions[version]
	if !ok || v.Dist.Tarball == "" {
		return
	}
	insp, err := tarball.Inspect(ctx, a.fetch, v.Dist.Tarball, v.Dist.Shasum, a.reg.Indicators())
	if err != nil {
		log.Warn("tarball inspection failed", zap.Error(err))
		return
	}
	log.Debug("tarball inspected", zap.Int("files", insp.Files), zap.Int("findings", len(insp.Findings)))
	for _, f := range insp.Findings {
		npm.MalwareIndicators = append(npm.MalwareIndicators, f.String())
		npm.SuspiciousReasons = append(npm.SuspiciousReasons, f.String())
	}
	if len(insp.Findings) > 0 {
		npm.Suspicious = analysis.Ptr(true)
	}
}

// metadataText joins the free-form fields the worm's signatures could show up
// in: description, readme, keywords and the checked version's scripts.
func metadataText(meta *registry.PackageMetadata, version string) string {
	parts := []string{meta.Description, meta.Readme, strings.Join(meta.Keywords, " ")}
	if v, ok := meta.Versions[version]; ok {
		hooks := make([]string, 0, len(v.Scripts))
		for hook := range v.Scripts {
			hooks = append(hooks, hook)
		}
		sort.Strings(hooks)
		for _, hook := range hooks {
			parts = append(parts, v.Scripts[hook])
		}
	}
	return strings.Join(parts, " ")
}

func displayVersion(v string) string {
	if v == "" {
		return "(unknown)"
	}
	return v
}
