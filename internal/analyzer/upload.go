package analyzer

import (
	"context"

	"github.com/xful-bep/crysknife/internal/analysis"
)

// FileUploadAnalyzer routes uploaded JSON to the manifest or leak-data path.
type FileUploadAnalyzer struct {
	manifest *PackageJSONAnalyzer
	env      *EnvironmentAnalyzer
}

func NewFileUploadAnalyzer(manifest *PackageJSONAnalyzer, env *EnvironmentAnalyzer) *FileUploadAnalyzer {
	return &FileUploadAnalyzer{manifest: manifest, env: env}
}

func (a *FileUploadAnalyzer) Kind() Kind { return KindFileUpload }

// Analyze treats an object with dependencies, devDependencies or name as a
// package.json. Everything else is leak data.
func (a *FileUploadAnalyzer) Analyze(_ context.Context, content string) (*analysis.Result, error) {
	doc, err := analysis.ParseJSON(content)
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}
	if m, ok := doc.(map[string]any); ok && looksLikeManifest(m) {
		return a.manifest.AnalyzeManifest(m), nil
	}
	return a.env.AnalyzeDocument(doc), nil
}

func looksLikeManifest(m map[string]any) bool {
	return analysis.Truthy(m["dependencies"]) || analysis.Truthy(m["devDependencies"]) || analysis.Truthy(m["name"])
}

// Base64Analyzer decodes pasted base64 and analyzes the leak document inside.
type Base64Analyzer struct {
	decoder *analysis.Decoder
	env     *EnvironmentAnalyzer
}

func NewBase64Analyzer(decoder *analysis.Decoder, env *EnvironmentAnalyzer) *Base64Analyzer {
	return &Base64Analyzer{decoder: decoder, env: env}
}

func (a *Base64Analyzer) Kind() Kind { return KindBase64 }

func (a *Base64Analyzer) Analyze(_ context.Context, content string) (*analysis.Result, error) {
	payload := a.decoder.Decode(content, 1, string(KindBase64))
	if payload == nil {
		return nil, ErrDecodeFailed
	}
	return a.env.AnalyzeDocument(map[string]any(payload)), nil
}
