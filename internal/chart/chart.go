// Package chart loads chart-of-accounts templates from YAML files. A
// template is immutable once loaded; ledger setup expands it into the
// domain's account tree.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iho/generalledger/internal/usecase"
)

// Account is one node of a template tree. Children may only appear under
// category nodes.
type Account struct {
	Code     string    `yaml:"code"`
	Category bool      `yaml:"category"`
	Debit    bool      `yaml:"debit"`
	Credit   bool      `yaml:"credit"`
	Children []Account `yaml:"children"`
}

// Template is a named chart-of-accounts tree.
type Template struct {
	Name     string    `yaml:"name"`
	Accounts []Account `yaml:"accounts"`
}

// AccountInputs converts the template tree to ledger setup inputs.
func (t *Template) AccountInputs() []usecase.TemplateAccountInput {
	return accountInputs(t.Accounts)
}

func accountInputs(accounts []Account) []usecase.TemplateAccountInput {
	inputs := make([]usecase.TemplateAccountInput, len(accounts))
	for i, a := range accounts {
		inputs[i] = usecase.TemplateAccountInput{
			Code:     a.Code,
			Category: a.Category,
			Debit:    a.Debit,
			Credit:   a.Credit,
			Children: accountInputs(a.Children),
		}
	}
	return inputs
}

// Registry holds the loaded templates by name.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// LoadDir loads every .yaml template in dir into a Registry.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read chart directory: %w", err)
	}

	registry := NewRegistry()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		tpl, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		registry.templates[tpl.Name] = tpl
	}

	return registry, nil
}

// LoadFile loads a single template file.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart template: %w", err)
	}

	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse chart template %s: %w", path, err)
	}

	if tpl.Name == "" {
		tpl.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}

	if err := validateTree(tpl.Accounts, nil); err != nil {
		return nil, fmt.Errorf("chart template %s: %w", tpl.Name, err)
	}

	return &tpl, nil
}

// Get returns a template by name.
func (r *Registry) Get(name string) (*Template, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("chart template %q not found", name)
	}
	return tpl, nil
}

// Names lists the loaded template names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// validateTree rejects trees that the ledger would refuse at setup time:
// children under leaf nodes, duplicate codes, and siblings mixing category
// and leaf nodes.
func validateTree(accounts []Account, seen map[string]bool) error {
	if seen == nil {
		seen = make(map[string]bool)
	}

	for _, a := range accounts {
		if a.Code == "" {
			return fmt.Errorf("account with empty code")
		}
		if seen[a.Code] {
			return fmt.Errorf("duplicate account code %s", a.Code)
		}
		seen[a.Code] = true

		if len(a.Children) > 0 {
			if !a.Category {
				return fmt.Errorf("account %s has children but is not a category", a.Code)
			}

			categories := 0
			for _, child := range a.Children {
				if child.Category {
					categories++
				}
			}
			if categories != 0 && categories != len(a.Children) {
				return fmt.Errorf("account %s mixes category and leaf children", a.Code)
			}

			if err := validateTree(a.Children, seen); err != nil {
				return err
			}
		}
	}

	return nil
}
