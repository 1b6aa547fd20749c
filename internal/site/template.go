package site

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Template is a compiled path or command template in HCL template syntax,
// e.g. "/jobs/${sequence}/${shot}/render/${layer}/${version}".
type Template struct {
	src  string
	expr hclsyntax.Expression
}

// CompileTemplate parses src and checks that it only references allowed
// variables.
func CompileTemplate(name, src string, allowed []string) (*Template, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("template %s: %s", name, diags.Error())
	}

	known := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		known[v] = true
	}
	for _, traversal := range expr.Variables() {
		if root := traversal.RootName(); !known[root] {
			sorted := append([]string(nil), allowed...)
			sort.Strings(sorted)
			return nil, fmt.Errorf("template %s: unknown variable %q (known: %v)", name, root, sorted)
		}
	}
	return &Template{src: src, expr: expr}, nil
}

// String returns the template source.
func (t *Template) String() string { return t.src }

// Render evaluates the template.
func (t *Template) Render(vars map[string]string) (string, error) {
	values := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		values[k] = cty.StringVal(v)
	}

	val, diags := t.expr.Value(&hcl.EvalContext{Variables: values})
	if diags.HasErrors() {
		return "", fmt.Errorf("rendering %q: %s", t.src, diags.Error())
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("rendering %q: %w", t.src, err)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("rendering %q: no value", t.src)
	}
	return val.AsString(), nil
}
