// Package parser builds the AST (internal/kryon/ast) from a token stream
// (spec §4.3) using hand-written recursive descent, pulling tokens from the
// lexer one at a time rather than pre-scanning the whole file — required so
// embedded script bodies (arbitrary Lua/JS/Python/Wren text, not UIDL token
// syntax) can be captured as raw bytes instead of being run through Next().
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/waozixyz/kryonc/internal/kryon/ast"
	"github.com/waozixyz/kryonc/internal/kryon/kerr"
	"github.com/waozixyz/kryonc/internal/kryon/lexer"
	"github.com/waozixyz/kryonc/internal/kryon/token"
)

var (
	varRefPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	tplRefPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)
)

// defaultAppProperties seeds a synthesized App wrapper (spec §4.3: "If zero
// explicit App element exists but standalone elements appear, parser
// synthesises a default App wrapper ... with default window title and size").
func defaultAppProperties(pos token.Pos) []ast.Property {
	return []ast.Property{
		{Key: "window_title", Value: ast.Value{Kind: ast.ValString, Raw: "Kryon Application", Pos: pos}, Pos: pos},
		{Key: "window_width", Value: ast.Value{Kind: ast.ValNumber, Raw: "800", Pos: pos}, Pos: pos},
		{Key: "window_height", Value: ast.Value{Kind: ast.ValNumber, Raw: "600", Pos: pos}, Pos: pos},
	}
}

type parser struct {
	lex  *lexer.Lexer
	file string
	cur  token.Token
}

// Parse tokenizes and parses one UIDL source unit into an *ast.File.
func Parse(file, src string) (*ast.File, error) {
	p := &parser{lex: lexer.New(file, src), file: file}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

func (p *parser) next() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *parser) errf(tok token.Token, format string, args ...any) error {
	return kerr.Parse(p.file, tok.Pos.Line, tok.Pos.Column, format, args...)
}

// expect verifies p.cur is of kind k, returns the (pre-advance) token, and
// advances past it. what describes the expectation for the error message.
func (p *parser) expect(k token.Kind, what string) (token.Token, error) {
	if !p.check(k) {
		return token.Token{}, p.errf(p.cur, "expected %s, got %s %q", what, p.cur.Kind, p.cur.Literal)
	}
	tok := p.cur
	if err := p.next(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *parser) skipTrivia() error {
	for p.check(token.NEWLINE) || p.check(token.COMMENT) {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseFile() (*ast.File, error) {
	f := &ast.File{}
	var topElems []*ast.Element

	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.check(token.EOF) {
			break
		}

		tok := p.cur
		switch tok.Kind {
		case token.AT_SCRIPT:
			sn, err := p.parseScript()
			if err != nil {
				return nil, err
			}
			f.Scripts = append(f.Scripts, sn)

		case token.AT_FUNCTION:
			sn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			f.Scripts = append(f.Scripts, sn)

		case token.KW_STYLE:
			sb, err := p.parseStyle()
			if err != nil {
				return nil, err
			}
			f.Styles = append(f.Styles, sb)

		case token.KW_DEFINE:
			cd, err := p.parseComponentDef()
			if err != nil {
				return nil, err
			}
			f.Components = append(f.Components, cd)

		case token.AT_INCLUDE, token.AT_VARS:
			return nil, p.errf(tok, "%s must be resolved by the preprocessor/variable expander before parsing", tok.Kind)

		case token.IDENT:
			if tok.Literal == "Font" {
				fd, err := p.parseFont()
				if err != nil {
					return nil, err
				}
				f.Fonts = append(f.Fonts, fd)
				continue
			}
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			topElems = append(topElems, el)

		default:
			return nil, p.errf(tok, "unexpected token %s at top level", tok.Kind)
		}
	}

	root, err := resolveRoot(topElems)
	if err != nil {
		return nil, err
	}
	f.Root = root
	return f, nil
}

// resolveRoot implements the implicit-App-wrapper synthesis rule of spec
// §4.3: a lone explicit App element is used as-is; any other shape of
// top-level elements is wrapped in a synthesized App. An App element
// appearing alongside siblings is rejected rather than silently absorbed,
// since App already owns the whole window and is meant to be the sole root.
func resolveRoot(elems []*ast.Element) (*ast.Element, error) {
	switch len(elems) {
	case 0:
		return nil, nil
	case 1:
		if elems[0].TypeName == "App" {
			return elems[0], nil
		}
		return synthesizeApp(elems), nil
	default:
		for _, e := range elems {
			if e.TypeName == "App" {
				return nil, kerr.Parse(e.Pos.File, e.Pos.Line, e.Pos.Column,
					"duplicate App root: 'App' must be the single root element, not one of several top-level elements")
			}
		}
		return synthesizeApp(elems), nil
	}
}

func synthesizeApp(children []*ast.Element) *ast.Element {
	pos := children[0].Pos
	return &ast.Element{
		TypeName:   "App",
		Properties: defaultAppProperties(pos),
		Children:   children,
		Pos:        pos,
	}
}

func (p *parser) parseFont() (*ast.FontDecl, error) {
	nameTok := p.cur // IDENT "Font"
	if err := p.next(); err != nil {
		return nil, err
	}
	nameStr, err := p.expect(token.STRING, "font name string")
	if err != nil {
		return nil, err
	}
	pathStr, err := p.expect(token.STRING, "font path string")
	if err != nil {
		return nil, err
	}
	return &ast.FontDecl{Name: nameStr.Literal, Path: pathStr.Literal, Pos: nameTok.Pos}, nil
}

// parseElement parses `<Type> { ... }` starting at the type-name identifier.
func (p *parser) parseElement() (*ast.Element, error) {
	nameTok, err := p.expect(token.IDENT, "element type name")
	if err != nil {
		return nil, err
	}
	return p.parseElementBody(nameTok)
}

func (p *parser) parseElementBody(nameTok token.Token) (*ast.Element, error) {
	el := &ast.Element{TypeName: nameTok.Literal, Pos: nameTok.Pos}
	if _, err := p.expect(token.LBRACE, "'{' to open element body"); err != nil {
		return nil, err
	}

	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.check(token.EOF) {
			return nil, p.errf(p.cur, "unterminated element %q: missing '}'", el.TypeName)
		}
		if p.check(token.RBRACE) {
			break
		}
		if p.check(token.PSEUDO) {
			pb, err := p.parsePseudoBlock()
			if err != nil {
				return nil, err
			}
			el.Pseudo = append(el.Pseudo, pb)
			continue
		}
		if p.check(token.KW_STYLE) {
			p.cur.Kind = token.IDENT // `style: name` here is a property, not a style block
		}
		memberTok, err := p.expect(token.IDENT, "property name or child element type")
		if err != nil {
			return nil, err
		}
		switch {
		case p.check(token.COLON):
			if err := p.next(); err != nil {
				return nil, err
			}
			prop, err := p.parseProperty(memberTok)
			if err != nil {
				return nil, err
			}
			el.Properties = append(el.Properties, prop)
		case p.check(token.LBRACE):
			child, err := p.parseElementBody(memberTok)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		default:
			return nil, p.errf(p.cur, "expected ':' (property) or '{' (child element) after %q, got %s", memberTok.Literal, p.cur.Kind)
		}
	}

	if _, err := p.expect(token.RBRACE, "'}' to close element body"); err != nil {
		return nil, err
	}
	return el, nil
}

func (p *parser) parsePseudoBlock() (ast.PseudoBlock, error) {
	tok := p.cur // PSEUDO, Literal is the state name
	if err := p.next(); err != nil {
		return ast.PseudoBlock{}, err
	}
	if _, err := p.expect(token.LBRACE, "'{' to open pseudo-state block"); err != nil {
		return ast.PseudoBlock{}, err
	}
	pb := ast.PseudoBlock{State: tok.Literal, Pos: tok.Pos}
	for {
		if err := p.skipTrivia(); err != nil {
			return ast.PseudoBlock{}, err
		}
		if p.check(token.EOF) {
			return ast.PseudoBlock{}, p.errf(p.cur, "unterminated pseudo-state block &:%s", tok.Literal)
		}
		if p.check(token.RBRACE) {
			break
		}
		keyTok, err := p.expect(token.IDENT, "property name")
		if err != nil {
			return ast.PseudoBlock{}, err
		}
		if _, err := p.expect(token.COLON, "':' after property name"); err != nil {
			return ast.PseudoBlock{}, err
		}
		prop, err := p.parseProperty(keyTok)
		if err != nil {
			return ast.PseudoBlock{}, err
		}
		pb.Properties = append(pb.Properties, prop)
	}
	if _, err := p.expect(token.RBRACE, "'}' to close pseudo-state block"); err != nil {
		return ast.PseudoBlock{}, err
	}
	return pb, nil
}

func (p *parser) parseProperty(keyTok token.Token) (ast.Property, error) {
	val, err := p.parseValue()
	if err != nil {
		return ast.Property{}, err
	}
	return ast.Property{
		Key:     keyTok.Literal,
		Value:   val,
		VarRefs: collectVarRefs(val),
		Pos:     keyTok.Pos,
	}, nil
}

// parseValue implements the value grammar of spec §4.3: string, number
// (optionally unit-bearing), boolean, color, identifier, object literal, and
// array literal.
func (p *parser) parseValue() (ast.Value, error) {
	tok := p.cur
	switch tok.Kind {
	case token.STRING:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValString, Raw: tok.Literal, TemplateRefs: scanTemplateRefs(tok.Literal), Pos: tok.Pos}, nil
	case token.NUMBER:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValNumber, Raw: tok.Literal, Pos: tok.Pos}, nil
	case token.UNIT:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValUnit, Raw: tok.Literal, Pos: tok.Pos}, nil
	case token.BOOL:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValBool, Raw: tok.Literal, Pos: tok.Pos}, nil
	case token.COLOR:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValColor, Raw: tok.Literal, Pos: tok.Pos}, nil
	case token.DOLLAR:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		nameTok, err := p.expect(token.IDENT, "identifier after '$'")
		if err != nil {
			return ast.Value{}, err
		}
		raw := "$" + nameTok.Literal
		return ast.Value{Kind: ast.ValIdent, Raw: raw, TemplateRefs: nil, Pos: tok.Pos}, nil
	case token.IDENT:
		if err := p.next(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValIdent, Raw: tok.Literal, Pos: tok.Pos}, nil
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	default:
		return ast.Value{}, p.errf(tok, "unexpected token %s in value position", tok.Kind)
	}
}

func (p *parser) parseObjectLiteral() (ast.Value, error) {
	start := p.cur.Pos
	if _, err := p.expect(token.LBRACE, "'{' to open object literal"); err != nil {
		return ast.Value{}, err
	}
	var kvs []ast.KeyValue
	for {
		if err := p.skipTrivia(); err != nil {
			return ast.Value{}, err
		}
		if p.check(token.RBRACE) {
			break
		}
		keyTok, err := p.expect(token.IDENT, "object key")
		if err != nil {
			return ast.Value{}, err
		}
		if _, err := p.expect(token.COLON, "':' after object key"); err != nil {
			return ast.Value{}, err
		}
		val, err := p.parseValue()
		if err != nil {
			return ast.Value{}, err
		}
		kvs = append(kvs, ast.KeyValue{Key: keyTok.Literal, Value: val})
		if err := p.skipTrivia(); err != nil {
			return ast.Value{}, err
		}
		if p.check(token.COMMA) {
			if err := p.next(); err != nil {
				return ast.Value{}, err
			}
			continue
		}
		break
	}
	if err := p.skipTrivia(); err != nil {
		return ast.Value{}, err
	}
	if _, err := p.expect(token.RBRACE, "'}' to close object literal"); err != nil {
		return ast.Value{}, err
	}
	return ast.Value{Kind: ast.ValObject, Object: kvs, Pos: start}, nil
}

func (p *parser) parseArrayLiteral() (ast.Value, error) {
	start := p.cur.Pos
	if _, err := p.expect(token.LBRACKET, "'[' to open array literal"); err != nil {
		return ast.Value{}, err
	}
	var items []ast.Value
	for {
		if err := p.skipTrivia(); err != nil {
			return ast.Value{}, err
		}
		if p.check(token.RBRACKET) {
			break
		}
		val, err := p.parseValue()
		if err != nil {
			return ast.Value{}, err
		}
		items = append(items, val)
		if err := p.skipTrivia(); err != nil {
			return ast.Value{}, err
		}
		if p.check(token.COMMA) {
			if err := p.next(); err != nil {
				return ast.Value{}, err
			}
			continue
		}
		break
	}
	if err := p.skipTrivia(); err != nil {
		return ast.Value{}, err
	}
	if _, err := p.expect(token.RBRACKET, "']' to close array literal"); err != nil {
		return ast.Value{}, err
	}
	return ast.Value{Kind: ast.ValArray, Array: items, Pos: start}, nil
}

// parseStyle parses `style "name" { extends: [...] <property|pseudo>* }`.
func (p *parser) parseStyle() (*ast.StyleBlock, error) {
	styleTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.STRING, "style name string")
	if err != nil {
		return nil, err
	}
	sb := &ast.StyleBlock{Name: nameTok.Literal, Pos: styleTok.Pos}
	if _, err := p.expect(token.LBRACE, "'{' to open style body"); err != nil {
		return nil, err
	}
	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.check(token.EOF) {
			return nil, p.errf(p.cur, "unterminated style %q: missing '}'", sb.Name)
		}
		if p.check(token.RBRACE) {
			break
		}
		if p.check(token.PSEUDO) {
			pb, err := p.parsePseudoBlock()
			if err != nil {
				return nil, err
			}
			sb.Pseudo = append(sb.Pseudo, pb)
			continue
		}
		keyTok, err := p.expect(token.IDENT, "property name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, "':' after property name"); err != nil {
			return nil, err
		}
		if keyTok.Literal == "extends" {
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if val.Kind != ast.ValArray {
				return nil, p.errf(keyTok, "'extends' must be an array of style names, e.g. extends: [\"base\"]")
			}
			for _, item := range val.Array {
				if item.Kind != ast.ValString {
					return nil, p.errf(keyTok, "'extends' entries must be string style names")
				}
				sb.Extends = append(sb.Extends, item.Raw)
			}
			continue
		}
		prop, err := p.parseProperty(keyTok)
		if err != nil {
			return nil, err
		}
		sb.Properties = append(sb.Properties, prop)
	}
	if _, err := p.expect(token.RBRACE, "'}' to close style body"); err != nil {
		return nil, err
	}
	return sb, nil
}

// parseComponentDef parses `Define Name { Properties { ... } <template> }`.
func (p *parser) parseComponentDef() (*ast.ComponentDef, error) {
	defTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "component name")
	if err != nil {
		return nil, err
	}
	cd := &ast.ComponentDef{Name: nameTok.Literal, Pos: defTok.Pos}
	if _, err := p.expect(token.LBRACE, "'{' to open component definition"); err != nil {
		return nil, err
	}

	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if p.check(token.KW_PROPERTIES) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LBRACE, "'{' to open Properties block"); err != nil {
			return nil, err
		}
		for {
			if err := p.skipTrivia(); err != nil {
				return nil, err
			}
			if p.check(token.EOF) {
				return nil, p.errf(p.cur, "unterminated Properties block in component %q", cd.Name)
			}
			if p.check(token.RBRACE) {
				break
			}
			pd, err := p.parsePropDecl()
			if err != nil {
				return nil, err
			}
			cd.Properties = append(cd.Properties, pd)
		}
		if _, err := p.expect(token.RBRACE, "'}' to close Properties block"); err != nil {
			return nil, err
		}
	}

	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if !p.check(token.IDENT) {
		return nil, p.errf(p.cur, "component %q is missing a template element", cd.Name)
	}
	tmplNameTok, err := p.expect(token.IDENT, "template element type")
	if err != nil {
		return nil, err
	}
	tmpl, err := p.parseElementBody(tmplNameTok)
	if err != nil {
		return nil, err
	}
	cd.Template = tmpl

	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "'}' to close component definition"); err != nil {
		return nil, err
	}
	return cd, nil
}

func (p *parser) parsePropDecl() (ast.ComponentPropDecl, error) {
	nameTok, err := p.expect(token.IDENT, "property name")
	if err != nil {
		return ast.ComponentPropDecl{}, err
	}
	if _, err := p.expect(token.COLON, "':' after property name"); err != nil {
		return ast.ComponentPropDecl{}, err
	}
	typeTok, err := p.expect(token.IDENT, "property type (String, Int, Float, Bool, Color, StyleID, Resource)")
	if err != nil {
		return ast.ComponentPropDecl{}, err
	}
	pd := ast.ComponentPropDecl{Name: nameTok.Literal, TypeHint: typeTok.Literal, Pos: nameTok.Pos}
	if p.check(token.ASSIGN) {
		if err := p.next(); err != nil {
			return ast.ComponentPropDecl{}, err
		}
		val, err := p.parseValue()
		if err != nil {
			return ast.ComponentPropDecl{}, err
		}
		pd.Default = &val
	}
	return pd, nil
}

// parseScript parses `@script "lang" [name="x"] [mode="x"] [from "path"] { body }`
// (spec §4.3, grammar confirmed against the original compiler's parser).
func (p *parser) parseScript() (*ast.ScriptNode, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	langTok, err := p.expect(token.STRING, "language string after @script")
	if err != nil {
		return nil, err
	}
	sn := &ast.ScriptNode{Language: langTok.Literal, Mode: "inline", Pos: tok.Pos}

	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if sn.From != "" && !(p.check(token.IDENT) && (p.cur.Literal == "name" || p.cur.Literal == "mode")) {
			break // an external script has no body
		}
		if p.check(token.EOF) {
			return nil, p.errf(p.cur, "unterminated @script block: missing '{'")
		}
		if p.check(token.LBRACE) {
			break
		}
		if !p.check(token.IDENT) {
			return nil, p.errf(p.cur, "expected an attribute name or '{' in @script block, got %s", p.cur.Kind)
		}
		attr := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		switch attr.Literal {
		case "name":
			if _, err := p.expect(token.ASSIGN, "'=' after 'name'"); err != nil {
				return nil, err
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			sn.Name = val.Raw
		case "mode":
			if _, err := p.expect(token.ASSIGN, "'=' after 'mode'"); err != nil {
				return nil, err
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			sn.Mode = val.Raw
		case "from":
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			sn.From = val.Raw
			sn.Mode = "external"
		default:
			return nil, p.errf(attr, "unknown @script attribute %q", attr.Literal)
		}
	}

	if sn.From == "" {
		body, err := p.lex.ScanBalancedRaw()
		if err != nil {
			return nil, err
		}
		sn.Body = body
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return sn, nil
}

// parseFunction parses `@function "lang" name(params) { body }`, sugar for a
// named inline script (spec §4.3).
func (p *parser) parseFunction() (*ast.ScriptNode, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	langTok, err := p.expect(token.STRING, "language string after @function")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(token.RPAREN) {
		if p.check(token.EOF) {
			return nil, p.errf(p.cur, "unterminated parameter list for function %q", nameTok.Literal)
		}
		paramTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, paramTok.Literal)
		if p.check(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "')' after parameters"); err != nil {
		return nil, err
	}
	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if !p.check(token.LBRACE) {
		return nil, p.errf(p.cur, "expected '{' for function body")
	}
	body, err := p.lex.ScanBalancedRaw()
	if err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	return &ast.ScriptNode{
		Name:       nameTok.Literal,
		Language:   langTok.Literal,
		Mode:       "inline",
		Params:     params,
		Body:       wrapFunctionBody(langTok.Literal, nameTok.Literal, params, body),
		IsFunction: true,
		Pos:        tok.Pos,
	}, nil
}

// wrapFunctionBody turns `@function` sugar into the same shape a hand-written
// inline script of that language would take, so the script processor's
// language-specific entry-point patterns (spec §4.8) find the function by
// the usual "function NAME(" / "def NAME(" scan without special-casing
// function-sugar nodes.
func wrapFunctionBody(lang, name string, params []string, body string) string {
	joined := strings.Join(params, ", ")
	switch lang {
	case "python":
		return fmt.Sprintf("def %s(%s):\n%s", name, joined, body)
	case "lua":
		return fmt.Sprintf("function %s(%s)\n%s\nend", name, joined, body)
	default: // javascript, wren
		return fmt.Sprintf("function %s(%s) {\n%s\n}", name, joined, body)
	}
}

func scanVarRefs(s string) []string {
	matches := varRefPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func scanTemplateRefs(s string) []string {
	matches := tplRefPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// collectVarRefs walks a value (recursing into object/array literals) to
// find every $name reference, for the component binder (spec §4.7) and the
// variable expander's template-exempt Define bodies (see DESIGN.md).
func collectVarRefs(v ast.Value) []string {
	var refs []string
	switch v.Kind {
	case ast.ValString, ast.ValIdent:
		refs = append(refs, scanVarRefs(v.Raw)...)
	case ast.ValObject:
		for _, kv := range v.Object {
			refs = append(refs, collectVarRefs(kv.Value)...)
		}
	case ast.ValArray:
		for _, item := range v.Array {
			refs = append(refs, collectVarRefs(item)...)
		}
	}
	return refs
}
