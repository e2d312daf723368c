package tarball

import (
	"regexp"
	"strings"
)

var (
	// npm publish command execution
	npmPublishPattern = regexp.MustCompile(`(?i)npm\s+publish|npm\.commands\.publish`)

	// .npmrc file access (contains auth tokens)
	npmrcAccessPattern = regexp.MustCompile(`(?i)\.npmrc|_authToken|npm_token|NPM_TOKEN`)

	// Git credential access
	gitCredentialPattern = regexp.MustCompile(`(?i)\.git-credentials|git\s+config.*credential|\.gitconfig|GIT_TOKEN|GITHUB_TOKEN`)

	// Secret scanner download or execution, used by the worm to harvest keys
	trufflehogPattern = regexp.MustCompile(`(?i)trufflehog`)

	// Repository creation through the GitHub API
	repoCreatePattern = regexp.MustCompile(`(?i)/user/repos|repos\.createForAuthenticatedUser|Shai-Hulud`)
)

// scanWorm reports self-replication and credential-harvesting behaviour in a
// JavaScript file. Every behaviour needs a second signal (exfiltration or
// command execution) before it is reported.
func scanWorm(content string) []string {
	hasExfil := strings.Contains(content, "fetch(") ||
		strings.Contains(content, "https.request") ||
		strings.Contains(content, "http.request") ||
		strings.Contains(content, "axios")
	hasExec := strings.Contains(content, "exec") || strings.Contains(content, "spawn")

	var found []string
	hasPublish := npmPublishPattern.MatchString(content)
	if hasPublish && (hasExec || hasExfil) {
		found = append(found, "Worm behavior: npm publish executed")
	}
	if npmrcAccessPattern.MatchString(content) && (hasExfil || hasPublish) {
		found = append(found, "Worm behavior: npm token theft")
	}
	if gitCredentialPattern.MatchString(content) && (hasExfil || hasExec) {
		found = append(found, "Worm behavior: git credential theft")
	}
	if trufflehogPattern.MatchString(content) && (hasExec || hasExfil) {
		found = append(found, "Worm behavior: secret scanner executed")
	}
	if repoCreatePattern.MatchString(content) && hasExfil {
		found = append(found, "Worm behavior: exfiltration repository created")
	}
	return found
}
