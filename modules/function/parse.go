package function

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

var (
	signatureRe = regexp.MustCompile(`function\s*([^\s(]*)\s*\(([^)]*)\)`)
	bodyRe      = regexp.MustCompile(`\{([\s\S]*)\}`)

	errNoSignature = errors.New("expected a signature like function name(a, b)")
	errNoBody      = errors.New("expected a body in braces")
)

// Definition is a parsed user function.
type Definition struct {
	Name string
	Args []string
	Body hclsyntax.Expression
}

// Title returns the capitalised function name, or "" for anonymous functions.
func (d *Definition) Title() string {
	if d.Name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(d.Name)
	return string(unicode.ToUpper(r)) + d.Name[size:]
}

// Parse reads source of the form
//
//	function add(a, b) { return a + b }
//
// The body is a single HCL expression; a leading "return" and a trailing
// semicolon are accepted. The body may only reference the declared arguments.
func Parse(source string) (*Definition, error) {
	sig := signatureRe.FindStringSubmatch(source)
	if sig == nil {
		return nil, errNoSignature
	}
	body := bodyRe.FindStringSubmatch(source[strings.Index(source, sig[0])+len(sig[0]):])
	if body == nil {
		return nil, errNoBody
	}

	def := &Definition{Name: strings.TrimSpace(sig[1])}
	if def.Name != "" && !hclsyntax.ValidIdentifier(def.Name) {
		return nil, fmt.Errorf("invalid function name %q", def.Name)
	}
	declared := make(map[string]struct{})
	for _, arg := range strings.Split(sig[2], ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if !hclsyntax.ValidIdentifier(arg) {
			return nil, fmt.Errorf("invalid argument name %q", arg)
		}
		if _, dup := declared[arg]; dup {
			return nil, fmt.Errorf("duplicate argument %q", arg)
		}
		declared[arg] = struct{}{}
		def.Args = append(def.Args, arg)
	}

	text := strings.TrimSpace(body[1])
	text = strings.TrimPrefix(text, "return ")
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	if text == "" {
		return nil, errNoBody
	}
	expr, diags := hclsyntax.ParseExpression([]byte(text), "function", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse function body: %w", diags)
	}
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if _, ok := declared[root]; !ok {
			return nil, fmt.Errorf("function body references undeclared name %q", root)
		}
	}
	def.Body = expr
	return def, nil
}
