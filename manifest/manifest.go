// Package manifest provides component declaration loading and resolution.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Startup controls when a declared child is bound.
type Startup string

const (
	// StartupLazy binds the child on first use.
	StartupLazy Startup = "lazy"

	// StartupEager binds the child as soon as its parent is bound.
	StartupEager Startup = "eager"
)

// Decl is a resolved component declaration: what an instance runs and which
// children it declares. The lifecycle coordinator requires a Decl to be
// resolved before any action may be registered on an instance.
type Decl struct {
	// Name is the component name.
	Name string

	// Program identifies what the runtime environment executes.
	// Empty for pure container components.
	Program string

	// Children are the statically declared children.
	Children []ChildDecl
}

// ChildDecl declares one child of a component.
type ChildDecl struct {
	// Name is the child's name, unique within the parent.
	Name string

	// URL locates the child's own declaration.
	URL string

	// Startup controls when the child is bound. Defaults to lazy.
	Startup Startup
}

// tomlDecl is the TOML representation.
type tomlDecl struct {
	Name     string      `toml:"name"`
	Program  string      `toml:"program"`
	Children []tomlChild `toml:"children"`
}

type tomlChild struct {
	Name    string `toml:"name"`
	URL     string `toml:"url"`
	Startup string `toml:"startup"`
}

// Validate checks the declaration for structural problems.
func (d *Decl) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("declaration has no name")
	}
	seen := make(map[string]struct{}, len(d.Children))
	for _, child := range d.Children {
		if err := ValidateName(child.Name); err != nil {
			return err
		}
		if _, dup := seen[child.Name]; dup {
			return fmt.Errorf("duplicate child name %q", child.Name)
		}
		seen[child.Name] = struct{}{}
		switch child.Startup {
		case "", StartupLazy, StartupEager:
		default:
			return fmt.Errorf("child %q: unknown startup mode %q", child.Name, child.Startup)
		}
	}
	return nil
}

// ValidateName checks a single child name (one moniker segment).
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty child name")
	}
	if strings.ContainsAny(name, "/ \t\n") {
		return fmt.Errorf("invalid child name %q", name)
	}
	return nil
}

// LoadFile loads a declaration from a TOML file.
func LoadFile(path string) (*Decl, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return Parse(content)
}

// Parse parses a TOML declaration.
func Parse(content []byte) (*Decl, error) {
	var td tomlDecl
	if err := toml.Unmarshal(content, &td); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	decl := &Decl{
		Name:    td.Name,
		Program: td.Program,
	}
	for _, child := range td.Children {
		startup := Startup(child.Startup)
		if startup == "" {
			startup = StartupLazy
		}
		decl.Children = append(decl.Children, ChildDecl{
			Name:    child.Name,
			URL:     child.URL,
			Startup: startup,
		})
	}

	if err := decl.Validate(); err != nil {
		return nil, err
	}
	return decl, nil
}
