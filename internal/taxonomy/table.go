// Package taxonomy maps free-text speaker attributes onto closed category
// taxonomies. One generic classifier serves all six domains; tables differ
// only in data and a couple of capability flags.
package taxonomy

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embeddedTables embed.FS

// Domain names, one per taxonomy table.
const (
	DomainExpertise    = "expertise"
	DomainIndustry     = "industry"
	DomainCredential   = "credential"
	DomainLanguage     = "language"
	DomainFormat       = "format"
	DomainAudience     = "audience"
	DomainDemographics = "demographics"
)

// Category is one entry in a taxonomy table.
type Category struct {
	Code        string   `yaml:"code"`
	DisplayName string   `yaml:"display_name"`
	Parent      string   `yaml:"parent,omitempty"`
	Aliases     []string `yaml:"aliases"`
}

// tableFile is the on-disk YAML shape of one domain table.
type tableFile struct {
	Domain           string            `yaml:"domain"`
	Version          string            `yaml:"version"`
	ScanFreeText     bool              `yaml:"scan_free_text"`
	ExactOnly        bool              `yaml:"exact_only"`
	TrackProficiency bool              `yaml:"track_proficiency"`
	Parents          map[string]string `yaml:"parents,omitempty"`
	Categories       []Category        `yaml:"categories"`
}

// alias pairs one normalized alias string with its category code,
// pre-sorted for deterministic stage-2 scanning.
type alias struct {
	text string
	code string
}

// Table is one loaded, immutable taxonomy domain. Lookup structures are
// built once at load time, the way a field registry builds its maps.
type Table struct {
	Domain           string
	Version          string
	ScanFreeText     bool
	ExactOnly        bool
	TrackProficiency bool

	categories map[string]Category

	exact      map[string]string // normalized alias -> code
	ordered    []alias           // aliases by length desc, then text
	singleWord map[string]string // one-word aliases for decomposition
}

func buildTable(tf tableFile) (*Table, error) {
	if tf.Domain == "" {
		return nil, eris.New("taxonomy: table missing domain")
	}
	t := &Table{
		Domain:           tf.Domain,
		Version:          tf.Version,
		ScanFreeText:     tf.ScanFreeText,
		ExactOnly:        tf.ExactOnly,
		TrackProficiency: tf.TrackProficiency,
		categories:       make(map[string]Category, len(tf.Categories)),
		exact:            map[string]string{},
		singleWord:       map[string]string{},
	}
	for _, c := range tf.Categories {
		if c.Code == "" {
			return nil, eris.Errorf("taxonomy: %s: category missing code", tf.Domain)
		}
		// When the table declares a parents map, every category's parent
		// must be one of the declared codes.
		if len(tf.Parents) > 0 && c.Parent != "" {
			if _, declared := tf.Parents[c.Parent]; !declared {
				return nil, eris.Errorf("taxonomy: %s: category %s has undeclared parent %s", tf.Domain, c.Code, c.Parent)
			}
		}
		if _, dup := t.categories[c.Code]; dup {
			return nil, eris.Errorf("taxonomy: %s: duplicate category %s", tf.Domain, c.Code)
		}
		t.categories[c.Code] = c
		for _, a := range c.Aliases {
			norm := NormalizeTerm(a)
			if norm == "" {
				continue
			}
			if prev, ok := t.exact[norm]; ok && prev != c.Code {
				zap.L().Debug("taxonomy: alias claimed twice, keeping first",
					zap.String("domain", tf.Domain),
					zap.String("alias", norm),
					zap.String("kept", prev),
					zap.String("dropped", c.Code),
				)
				continue
			}
			t.exact[norm] = c.Code
			t.ordered = append(t.ordered, alias{text: norm, code: c.Code})
			if !strings.Contains(norm, " ") {
				if _, ok := t.singleWord[norm]; !ok {
					t.singleWord[norm] = c.Code
				}
			}
		}
	}
	// Longer aliases are more specific and must win containment ties.
	sort.Slice(t.ordered, func(i, j int) bool {
		if len(t.ordered[i].text) != len(t.ordered[j].text) {
			return len(t.ordered[i].text) > len(t.ordered[j].text)
		}
		return t.ordered[i].text < t.ordered[j].text
	})
	return t, nil
}

// Category returns the table entry for a code, if present.
func (t *Table) Category(code string) (Category, bool) {
	c, ok := t.categories[code]
	return c, ok
}

// ParentOf returns the declared parent code for a category, or "".
func (t *Table) ParentOf(code string) string {
	return t.categories[code].Parent
}

// Codes returns all category codes in sorted order.
func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.categories))
	for code := range t.categories {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Set is the full collection of domain tables for one run.
type Set struct {
	tables map[string]*Table
}

// Table returns the table for a domain, or nil.
func (s *Set) Table(domain string) *Table {
	return s.tables[domain]
}

// Domains returns the loaded domain names in sorted order.
func (s *Set) Domains() []string {
	out := make([]string, 0, len(s.tables))
	for d := range s.tables {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// LoadEmbedded loads the taxonomy tables shipped with the binary.
func LoadEmbedded() (*Set, error) {
	return loadFS(embeddedTables, "data")
}

// LoadDir loads taxonomy tables from a directory of YAML files, overriding
// the embedded defaults. Changing tables requires a fresh full run.
func LoadDir(dir string) (*Set, error) {
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, root string) (*Set, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: read table dir")
	}
	set := &Set{tables: map[string]*Table{}}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.Join(root, e.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "taxonomy: read %s", e.Name())
		}
		var tf tableFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			return nil, eris.Wrapf(err, "taxonomy: parse %s", e.Name())
		}
		table, err := buildTable(tf)
		if err != nil {
			return nil, err
		}
		if _, dup := set.tables[table.Domain]; dup {
			return nil, eris.Errorf("taxonomy: domain %s defined twice", table.Domain)
		}
		set.tables[table.Domain] = table
		zap.L().Debug("taxonomy: table loaded",
			zap.String("domain", table.Domain),
			zap.String("version", table.Version),
			zap.Int("categories", len(table.categories)),
			zap.Int("aliases", len(table.exact)),
		)
	}
	if len(set.tables) == 0 {
		return nil, eris.New("taxonomy: no tables found")
	}
	return set, nil
}
