package analyzer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/github"
)

const (
	// ExfilRepository is the repository the worm creates on a victim account.
	ExfilRepository = "Shai-Hulud"
	payloadFile     = "data.json"
)

// GitHubAccountAnalyzer looks for the exfiltration repository on an account
// and decodes the leak payload it holds.
type GitHubAccountAnalyzer struct {
	client  *github.Client
	decoder *analysis.Decoder
	logger  *zap.Logger
}

func NewGitHubAccountAnalyzer(client *github.Client, decoder *analysis.Decoder, logger *zap.Logger) *GitHubAccountAnalyzer {
	return &GitHubAccountAnalyzer{client: client, decoder: decoder, logger: logger}
}

func (a *GitHubAccountAnalyzer) Kind() Kind { return KindGitHubAccount }

// Analyze returns a clean result when the account has no exfiltration
// repository. When the repository exists without a payload file, the GitHub
// module is flagged with an empty token. A payload that cannot be decoded
// yields the suspicious placeholder instead of an error.
func (a *GitHubAccountAnalyzer) Analyze(ctx context.Context, account string) (*analysis.Result, error) {
	account = strings.TrimPrefix(strings.TrimSpace(account), "@")
	if account == "" {
		return nil, ErrEmptyQuery
	}
	log := a.logger.With(zap.String("account", account))

	if _, err := a.client.GetRepository(ctx, account, ExfilRepository); err != nil {
		if fetch.IsNotFound(err) {
			log.Debug("no exfiltration repository")
			return analysis.NewClean(), nil
		}
		return nil, classify(serviceGitHub, err)
	}

	content, err := a.client.GetContent(ctx, account, ExfilRepository, payloadFile)
	if err != nil {
		if fetch.IsNotFound(err) {
			log.Info("exfiltration repository without payload")
			res := analysis.NewClean()
			res.Modules.GitHub = &analysis.GitHubModule{
				Authenticated: true,
				Token:         analysis.Ptr(""),
				Username:      map[string]any{},
			}
			return res, nil
		}
		return nil, classify(serviceGitHub, err)
	}

	if content.Content == "" {
		log.Warn("payload file has no inline content")
		return analysis.NewSuspicious(), nil
	}

	payload := a.decoder.Decode(content.Content, 1, account)
	if payload == nil {
		log.Warn("failed to decode payload after all attempts")
		return analysis.NewSuspicious(), nil
	}
	res, err := payload.Result()
	if err != nil {
		log.Warn("some payload modules have an unexpected shape", zap.Error(err))
	}
	return res, nil
}
