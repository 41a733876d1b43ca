// Package config loads the suite manifest describing a verification run:
// which compiled module set to load, which module holds the entry points,
// and where its trace fixtures live. A strict-decoding YAML file with
// aggregated validation errors.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the parsed contents of a suite.yml.
type Manifest struct {
	Path string

	Name       string
	MainModule string
	Modules    []string // paths to compiled IR module JSON files
	Bundle     *BundleSpec
	Suites     map[string]*SuiteSpec
}

// BundleSpec names an external bundle of compiled modules to fetch before
// running, e.g. a shared component library published as a git repo.
type BundleSpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// SuiteSpec names one runnable verification: a trace fixture path plus an
// optional Module name. Module is decoded from the manifest but
// cmd/webspec does not read it; every suite runs against the manifest's
// MainModule.
type SuiteSpec struct {
	Trace  string
	Module string
}

type manifestFile struct {
	Name       string                `yaml:"name"`
	MainModule string                `yaml:"mainModule"`
	Modules    []string              `yaml:"modules"`
	Bundle     *bundleSpecFile       `yaml:"bundle"`
	Suites     map[string]*SuiteSpec `yaml:"suites"`
}

type bundleSpecFile struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// ValidationError aggregates every problem found in a manifest, rather
// than failing at the first.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load parses a suite manifest from disk and validates it.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	m := &Manifest{
		Path:       absPath,
		Name:       raw.Name,
		MainModule: raw.MainModule,
		Modules:    raw.Modules,
		Suites:     raw.Suites,
	}
	if raw.Bundle != nil {
		m.Bundle = &BundleSpec{
			Git:    raw.Bundle.Git,
			Rev:    raw.Bundle.Rev,
			Tag:    raw.Bundle.Tag,
			Branch: raw.Bundle.Branch,
			Path:   raw.Bundle.Path,
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.MainModule == "" {
		errs.Issues = append(errs.Issues, "mainModule must be provided")
	}
	if len(m.Modules) == 0 && m.Bundle == nil {
		errs.Issues = append(errs.Issues, "at least one of modules or bundle must be provided")
	}
	if m.Bundle != nil {
		refs := 0
		for _, r := range []string{m.Bundle.Rev, m.Bundle.Tag, m.Bundle.Branch} {
			if r != "" {
				refs++
			}
		}
		if m.Bundle.Git == "" {
			errs.Issues = append(errs.Issues, "bundle.git must be provided when bundle is set")
		}
		if refs > 1 {
			errs.Issues = append(errs.Issues, "bundle must specify at most one of rev, tag, branch")
		}
	}
	for name, suite := range m.Suites {
		if suite == nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("suites.%s must not be null", name))
			continue
		}
		if suite.Trace == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("suites.%s.trace must be provided", name))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
