package vocabulary

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// vocabFile is the on-disk shape of one vocabulary data file. Flat axes use
// Values (or IDs for the provider list); hierarchical axes use Parents,
// Children and ParentOf.
type vocabFile struct {
	Axis     string            `yaml:"axis"`
	Values   map[string]string `yaml:"values"`
	IDs      []string          `yaml:"ids"`
	Parents  map[string]string `yaml:"parents"`
	Children map[string]string `yaml:"children"`
	ParentOf map[string]string `yaml:"parent_of"`
}

// Load builds a Set from the embedded vocabulary snapshot.
func Load() (*Set, error) {
	return loadFS(embedded, "data/*.yaml")
}

// LoadDir builds a Set from the embedded snapshot, then overlays any axis
// found in YAML files under dir. Files are discovered with a recursive glob
// so vocabularies may be organised in subdirectories.
func LoadDir(dir string) (*Set, error) {
	set, err := Load()
	if err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob vocabulary dir %q: %w", dir, err)
	}
	sort.Strings(matches)
	for _, rel := range matches {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return nil, fmt.Errorf("read vocabulary file %q: %w", rel, err)
		}
		if err := applyFile(set, rel, data); err != nil {
			return nil, err
		}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func loadFS(fsys fs.FS, pattern string) (*Set, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob embedded vocabularies: %w", err)
	}
	sort.Strings(matches)
	set := &Set{Abbreviations: map[string]string{}}
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read embedded vocabulary %q: %w", name, err)
		}
		if err := applyFile(set, name, data); err != nil {
			return nil, err
		}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// applyFile parses one data file and assigns it to the axis it declares.
func applyFile(set *Set, name string, data []byte) error {
	var file vocabFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse vocabulary file %q: %w", name, err)
	}

	switch file.Axis {
	case "order-type":
		set.OrderTypes = New(file.Axis, file.Values)
	case "access-mode":
		set.AccessModes = New(file.Axis, file.Values)
	case "access-type":
		set.AccessTypes = New(file.Axis, file.Values)
	case "life-cycle-status":
		set.LifeCycleStatus = New(file.Axis, file.Values)
	case "funding-body":
		set.FundingBodies = New(file.Axis, file.Values)
	case "funding-program":
		set.FundingPrograms = New(file.Axis, file.Values)
	case "target-user":
		set.TargetUsers = New(file.Axis, file.Values)
	case "country":
		set.Countries = New(file.Axis, file.Values)
	case "scientific-domain":
		set.Domains = Hierarchy{
			Parents:  New("scientific-domain", file.Parents),
			Children: New("scientific-subdomain", file.Children),
			ParentOf: file.ParentOf,
		}
	case "category":
		set.Categories = Hierarchy{
			Parents:  New("category", file.Parents),
			Children: New("subcategory", file.Children),
			ParentOf: file.ParentOf,
		}
	case "provider":
		set.Providers = NewProviderSet(file.IDs)
	case "abbreviation":
		abbrevs := make(map[string]string, len(file.Values))
		for name, abbrev := range file.Values {
			abbrevs[name] = abbrev
		}
		set.Abbreviations = abbrevs
	default:
		return fmt.Errorf("vocabulary file %q: unknown axis %q", name, file.Axis)
	}
	return nil
}
