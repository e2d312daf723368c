package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/reporter"
)

// PackageNode is one line of the package tree shown for npm results.
type PackageNode struct {
	Name     string
	Version  string
	Severity string // "critical", "medium" or empty
	Children []*PackageNode
}

// PackageTree arranges the npm module of a report under its search query:
// listed packages first, then every infected package with its known
// compromised versions. It returns nil when there is no npm module.
func PackageTree(report reporter.SecurityReport) *PackageNode {
	if report.Analysis == nil || report.Analysis.Modules.NPM == nil {
		return nil
	}
	npm := report.Analysis.Modules.NPM
	root := &PackageNode{Name: report.SearchQuery}

	infected := make(map[string]analysis.InfectedPackageInfo, len(npm.InfectedPackages))
	for _, p := range npm.InfectedPackages {
		infected[p.Name] = p
	}

	names := slices.Clone(npm.Packages)
	for _, p := range npm.InfectedPackages {
		if !slices.Contains(names, p.Name) {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 && npm.PackageName != "" {
		names = append(names, npm.PackageName)
	}

	for _, name := range names {
		node := &PackageNode{Name: name}
		if name == npm.PackageName {
			node.Version = npm.DetectedVersion
		}
		if p, ok := infected[name]; ok {
			node.Severity = "critical"
			if npm.InfectedHistory() {
				node.Severity = "medium"
			}
			if p.DetectedVersion != "" {
				node.Version = p.DetectedVersion
			}
			for _, v := range p.Versions {
				node.Children = append(node.Children, &PackageNode{Name: "compromised", Version: v})
			}
		}
		root.Children = append(root.Children, node)
	}
	return root
}

// RenderTree draws node and its descendants with box-drawing connectors.
func RenderTree(node *PackageNode) string {
	if node == nil {
		return ""
	}
	var s strings.Builder
	s.WriteString(DetailHeaderStyle.Render(node.Name))
	s.WriteString("\n")
	for i, child := range node.Children {
		renderNode(&s, child, "", i == len(node.Children)-1)
	}
	return s.String()
}

func renderNode(s *strings.Builder, node *PackageNode, prefix string, last bool) {
	connector, childPrefix := "├── ", "│   "
	if last {
		connector, childPrefix = "└── ", "    "
	}

	label := node.Name
	if node.Version != "" {
		label += "@" + node.Version
	}
	style := lipgloss.NewStyle().Foreground(ColorFg)
	if node.Severity != "" {
		style = SeverityStyle(node.Severity)
	}
	s.WriteString(prefix + connector + style.Render(label))
	if node.Severity != "" {
		s.WriteString(" " + SeverityStyle(node.Severity).Render("["+strings.ToUpper(node.Severity)+"]"))
	}
	s.WriteString("\n")

	for i, child := range node.Children {
		renderNode(s, child, prefix+childPrefix, i == len(node.Children)-1)
	}
}
