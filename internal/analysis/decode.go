package analysis

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// DefaultMaxIterations is how many base64 layers the decoder peels before
// giving up.
const DefaultMaxIterations = 5

// Payload is a decoded leak document, exactly as it was parsed.
type Payload map[string]any

// Decoder peels base64 layers off an exfiltrated payload until it finds the
// JSON leak document.
type Decoder struct {
	MaxIterations int
	logger        *zap.Logger
}

// NewDecoder returns a decoder with DefaultMaxIterations.
func NewDecoder(logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{MaxIterations: DefaultMaxIterations, logger: logger}
}

// Decode base64-decodes content and parses the result as JSON. A JSON object
// with a "system" field and either "modules" or "environment" is returned as
// is. Anything else, including text that is not JSON at all, is treated as
// another base64 layer and decoded again on the next iteration. Invalid base64
// stops decoding immediately.
//
// iteration is the layer content sits at; callers start at 1. Whitespace is
// only stripped on the first layer. A nil Payload means decoding was
// abandoned. label identifies the input in logs.
func (d *Decoder) Decode(content string, iteration int, label string) Payload {
	limit := d.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	if iteration < 1 {
		iteration = 1
	}
	log := d.logger.With(zap.String("label", label))

	for ; iteration <= limit; iteration++ {
		if iteration == 1 {
			content = stripSpace(content)
		}

		raw, err := decodeBase64(content)
		if err != nil {
			log.Debug("base64 decode failed", zap.Int("iteration", iteration), zap.Error(err))
			return nil
		}
		decoded := string(raw)
		log.Debug("decoded layer", zap.Int("iteration", iteration), zap.Int("length", len(decoded)))

		doc, err := ParseJSON(decoded)
		if err != nil {
			log.Debug("layer is not JSON, decoding again", zap.Int("iteration", iteration))
			content = decoded
			continue
		}
		if p, ok := asLeak(doc); ok {
			log.Debug("payload decoded",
				zap.Int("iterations", iteration),
				zap.Int("env_count", envCount(p)),
			)
			return p
		}
		log.Debug("JSON without leak shape, decoding again", zap.Int("iteration", iteration))
		content = decoded
	}

	log.Debug("max iterations reached", zap.Int("max_iterations", limit))
	return nil
}

// ParseJSON parses text into generic JSON values. Numbers are kept as
// json.Number so they render exactly as they were written.
func ParseJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// IsLeakShape reports whether doc is an object with a truthy "system" and a
// truthy "modules" or "environment".
func IsLeakShape(doc map[string]any) bool {
	return Truthy(doc["system"]) && (Truthy(doc["modules"]) || Truthy(doc["environment"]))
}

// IsFullLeak reports whether doc carries truthy "system", "environment" and
// "modules" blocks, the shape the environment analyzer passes through.
func IsFullLeak(doc map[string]any) bool {
	return Truthy(doc["system"]) && Truthy(doc["environment"]) && Truthy(doc["modules"])
}

func asLeak(doc any) (Payload, bool) {
	m, ok := doc.(map[string]any)
	if !ok || !IsLeakShape(m) {
		return nil, false
	}
	return Payload(m), true
}

// Truthy follows JavaScript truthiness for JSON values.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	trimmed := strings.TrimRight(s, "=")
	if b, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
		return b, nil
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	return b, nil
}

func envCount(p Payload) int {
	env, _ := p["environment"].(map[string]any)
	return len(env)
}

// Result converts the payload into a Result. System fields that are missing
// default to Unknown and environment values are rendered as strings.
//
// The returned Result is never nil. Modules are decoded one at a time: a
// module that is not an object is dropped, and a field with an unexpected
// type is left at its zero value while the rest of the module is kept. The
// error lists every module that did not decode cleanly.
func (p Payload) Result() (*Result, error) {
	res := NewClean()

	if sys, ok := p["system"].(map[string]any); ok {
		res.System.Platform = stringField(sys, "platform")
		res.System.Architecture = stringField(sys, "architecture")
		res.System.PlatformDetailed = stringField(sys, "platformDetailed")
		res.System.ArchitectureDetailed = stringField(sys, "architectureDetailed")
	}

	if env, ok := p["environment"].(map[string]any); ok {
		for k, v := range env {
			res.Environment[k] = Stringify(v)
		}
	}

	mods, ok := p["modules"].(map[string]any)
	if !ok {
		return res, nil
	}
	return res, decodeModules(mods, &res.Modules)
}

func decodeModules(mods map[string]any, into *Modules) error {
	var errs []error
	decode := func(key string, target any) bool {
		v, present := mods[key]
		if !present || v == nil {
			return false
		}
		if _, ok := v.(map[string]any); !ok {
			errs = append(errs, fmt.Errorf("module %s: expected an object, got %T", key, v))
			return false
		}
		data, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", key, err))
			return false
		}
		if err := json.Unmarshal(data, target); err != nil {
			errs = append(errs, fmt.Errorf("module %s has an unexpected shape: %w", key, err))
			var typeErr *json.UnmarshalTypeError
			return errors.As(err, &typeErr)
		}
		return true
	}

	if m := new(GitHubModule); decode("github", m) {
		into.GitHub = m
	}
	if m := new(NPMModule); decode("npm", m) {
		into.NPM = m
	}
	if m := new(SecretsModule); decode("aws", m) {
		into.AWS = m
	}
	if m := new(SecretsModule); decode("gcp", m) {
		into.GCP = m
	}
	if m := new(TruffleHogModule); decode("truffleHog", m) {
		into.TruffleHog = m
	}
	return errors.Join(errs...)
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return Unknown
	}
	if s := Stringify(v); s != "" {
		return s
	}
	return Unknown
}

// Stringify renders a JSON value the way it would appear in an environment
// variable.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
