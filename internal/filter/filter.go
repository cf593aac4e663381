// Package filter defines named boolean tags over read and transcript
// attributes. A tag is an expression such as "coverage > 10 and
// category == 'novel_isoform'"; expressions may reference other tags
// by name, and references are resolved at evaluation time, so tags can
// be defined in any order.
package filter

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// maxDepth bounds tag-to-tag reference chains. Circular definitions
// run past the bound and are reported as errors.
const maxDepth = 10

var tagName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type tag struct {
	expression string
	program    *vm.Program
	deps       []string // identifiers the expression references
}

// Registry holds named tag expressions.
type Registry struct {
	tags map[string]*tag
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tags: make(map[string]*tag)}
}

// DefaultDefinitions are the built-in classification tags. Attribute
// names follow the classification output columns.
var DefaultDefinitions = map[string]string{
	"SPLICE_MATCH": `category == "splice_match"`,
	"NOVEL":        `category == "novel_isoform"`,
	"INTERGENIC":   `category == "intergenic"`,
	"ANNOTATED":    `SPLICE_MATCH or NOVEL`,
	"MONO_EXON":    `exon_count == 1`,
	"MULTI_EXON":   `exon_count > 1`,
	"NOVEL_SITES":  `novel_sites > 0`,
}

// DefaultRegistry returns a registry preloaded with the built-in tags.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for name, expression := range DefaultDefinitions {
		if err := r.Define(name, expression); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Define registers a tag under the given name, replacing any previous
// definition. The name must be a plain identifier so other expressions
// can reference it.
func (r *Registry) Define(name, expression string) error {
	if !tagName.MatchString(name) {
		return fmt.Errorf("tag name %q is not a valid identifier", name)
	}

	tree, err := parser.Parse(expression)
	if err != nil {
		return fmt.Errorf("parse tag %q: %w", name, err)
	}
	collector := &identCollector{names: make(map[string]struct{})}
	ast.Walk(&tree.Node, collector)

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("compile tag %q: %w", name, err)
	}

	deps := make([]string, 0, len(collector.names))
	for ident := range collector.names {
		deps = append(deps, ident)
	}
	sort.Strings(deps)

	r.tags[name] = &tag{expression: expression, program: program, deps: deps}
	return nil
}

// Remove deletes a tag definition. Tags still referencing it will fail
// to evaluate.
func (r *Registry) Remove(name string) {
	delete(r.tags, name)
}

// Tags returns the defined tag names in sorted order.
func (r *Registry) Tags() []string {
	names := make([]string, 0, len(r.tags))
	for name := range r.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expression returns the expression text a tag was defined with.
func (r *Registry) Expression(name string) (string, bool) {
	t, ok := r.tags[name]
	if !ok {
		return "", false
	}
	return t.expression, true
}

// Evaluate runs a tag expression against an attribute map. Referenced
// tags are evaluated first and injected as booleans; an attribute with
// the same name as a tag shadows the tag.
func (r *Registry) Evaluate(name string, attrs map[string]any) (bool, error) {
	return r.evaluate(name, attrs, 0)
}

// EvaluateAll evaluates every defined tag against the attribute map.
func (r *Registry) EvaluateAll(attrs map[string]any) (map[string]bool, error) {
	out := make(map[string]bool, len(r.tags))
	for name := range r.tags {
		v, err := r.Evaluate(name, attrs)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (r *Registry) evaluate(name string, attrs map[string]any, depth int) (bool, error) {
	if depth > maxDepth {
		return false, fmt.Errorf("tag %q: dependency chain exceeds depth %d (circular definition)", name, maxDepth)
	}
	t, ok := r.tags[name]
	if !ok {
		return false, fmt.Errorf("tag %q is not defined", name)
	}

	env := make(map[string]any, len(attrs)+len(t.deps))
	for k, v := range attrs {
		env[k] = v
	}
	for _, dep := range t.deps {
		if _, shadowed := env[dep]; shadowed {
			continue
		}
		if _, isTag := r.tags[dep]; !isTag {
			continue
		}
		v, err := r.evaluate(dep, attrs, depth+1)
		if err != nil {
			return false, err
		}
		env[dep] = v
	}

	out, err := expr.Run(t.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate tag %q: %w", name, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("tag %q: expression result is %T, want bool", name, out)
	}
	return b, nil
}

type identCollector struct {
	names map[string]struct{}
}

func (c *identCollector) Visit(node *ast.Node) {
	if ident, ok := (*node).(*ast.IdentifierNode); ok {
		c.names[ident.Value] = struct{}{}
	}
}
