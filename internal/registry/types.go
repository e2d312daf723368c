package registry

import (
	"encoding/json"
	"strings"
)

// PackageMetadata is the packument of an npm package.
type PackageMetadata struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	DistTags    map[string]string         `json:"dist-tags"`
	Versions    map[string]PackageVersion `json:"versions"`
	Maintainers []Person                  `json:"maintainers"`
	Author      *Person                   `json:"author,omitempty"`
	Keywords    Keywords                  `json:"keywords"`
	Repository  *Repository               `json:"repository,omitempty"`
	Readme      string                    `json:"readme"`
}

// Latest returns the version the "latest" dist-tag points to.
func (m *PackageMetadata) Latest() string {
	return m.DistTags["latest"]
}

// PackageVersion is one published version of a package.
type PackageVersion struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Scripts     map[string]string `json:"scripts"`
	Maintainers []Person          `json:"maintainers"`
	Author      *Person           `json:"author,omitempty"`
	Dist        Dist              `json:"dist"`
}

// Dist contains distribution info for a package version.
type Dist struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity"`
}

// Person is an author, maintainer or publisher. The registry serves authors
// either as an object or as a "Name <email> (url)" string; both decode.
type Person struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (p *Person) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = parsePersonString(s)
		return nil
	}
	type plain Person
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Person(v)
	return nil
}

func parsePersonString(s string) Person {
	var p Person
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '<'); i >= 0 {
		if j := strings.IndexByte(s[i:], '>'); j > 0 {
			p.Email = strings.TrimSpace(s[i+1 : i+j])
		}
		s = s[:i]
	}
	p.Name = strings.TrimSpace(s)
	return p
}

// Matches reports whether the person is identified by user, comparing the
// username and name case-insensitively.
func (p Person) Matches(user string) bool {
	if user == "" {
		return false
	}
	return strings.EqualFold(p.Username, user) || strings.EqualFold(p.Name, user)
}

// Keywords decodes from either a JSON array or a single string.
type Keywords []string

func (k *Keywords) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Anything else is ignored rather than failing the whole packument.
		*k = nil
		return nil
	}
	*k = strings.Fields(strings.ReplaceAll(s, ",", " "))
	return nil
}

// Repository represents a source repository.
type Repository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (r *Repository) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URL = s
		return nil
	}
	type plain Repository
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Repository(v)
	return nil
}

// SearchResult is the response of the /-/v1/search endpoint.
type SearchResult struct {
	Objects []SearchObject `json:"objects"`
	Total   int            `json:"total"`
}

type SearchObject struct {
	Package SearchPackage `json:"package"`
}

type SearchPackage struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Keywords    Keywords `json:"keywords"`
	Publisher   *Person  `json:"publisher,omitempty"`
	Maintainers []Person `json:"maintainers"`
	Author      *Person  `json:"author,omitempty"`
}

// OwnedBy reports whether user published, maintains or authored the package.
func (p SearchPackage) OwnedBy(user string) bool {
	if p.Publisher != nil && p.Publisher.Matches(user) {
		return true
	}
	if p.Author != nil && p.Author.Matches(user) {
		return true
	}
	for _, m := range p.Maintainers {
		if m.Matches(user) {
			return true
		}
	}
	return false
}
