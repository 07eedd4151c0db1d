package languages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/morozRed/commenter/internal/element"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptExtractor finds documentable elements in TypeScript and
// JavaScript source files
type TypeScriptExtractor struct{}

// NewTypeScriptExtractor creates a new TypeScript/JavaScript extractor
func NewTypeScriptExtractor() *TypeScriptExtractor {
	return &TypeScriptExtractor{}
}

func (t *TypeScriptExtractor) Language() string {
	return "typescript"
}

func (t *TypeScriptExtractor) Extensions() []string {
	return []string{".ts", ".mts", ".cts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
}

// Extract parses content with a parser created for this call, so a single
// extractor can serve concurrent callers.
func (t *TypeScriptExtractor) Extract(filename string, content []byte) ([]element.CodeElement, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammarFor(filename))

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Type() == "ERROR" {
		return nil, fmt.Errorf("syntax tree for %s could not be built", filepath.Base(filename))
	}

	elements := make([]element.CodeElement, 0)
	t.collect(root, content, nil, &elements)
	return elements, nil
}

func grammarFor(filename string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

// collect walks the tree in source order. stmt is the enclosing export
// statement, if any, whose start line becomes the element's span start.
func (t *TypeScriptExtractor) collect(node *sitter.Node, content []byte, stmt *sitter.Node, out *[]element.CodeElement) {
	if node == nil {
		return
	}

	anchor := node
	if stmt != nil {
		anchor = stmt
	}

	switch node.Type() {
	case "export_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			t.collect(node.NamedChild(i), content, node, out)
		}
		return

	case "function_declaration", "generator_function_declaration":
		if el, ok := t.function(node, node, anchor, content); ok {
			*out = append(*out, el)
		}
		t.collectChildren(node.ChildByFieldName("body"), content, out)
		return

	case "method_definition":
		if stmt == nil {
			anchor = decoratedStart(node)
		}
		if el, ok := t.function(node, node, anchor, content); ok {
			*out = append(*out, el)
		}
		t.collectChildren(node.ChildByFieldName("body"), content, out)
		return

	case "class_declaration", "abstract_class_declaration":
		if el, ok := t.named(node, anchor, element.KindClass, content); ok {
			el.Signature = classSignature(node, content)
			*out = append(*out, el)
		}
		t.collectChildren(node.ChildByFieldName("body"), content, out)
		return

	case "interface_declaration":
		if el, ok := t.named(node, anchor, element.KindInterface, content); ok {
			el.Signature = "interface " + el.Name
			*out = append(*out, el)
		}
		return

	case "type_alias_declaration", "enum_declaration":
		if el, ok := t.named(node, anchor, element.KindType, content); ok {
			keyword := "type"
			if node.Type() == "enum_declaration" {
				keyword = "enum"
			}
			el.Signature = keyword + " " + el.Name
			*out = append(*out, el)
		}
		return

	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			declarator := node.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			nameNode := declarator.ChildByFieldName("name")
			valueNode := declarator.ChildByFieldName("value")
			if nameNode == nil || valueNode == nil {
				continue
			}
			switch valueNode.Type() {
			case "arrow_function", "function", "function_expression", "generator_function":
				if el, ok := t.function(valueNode, nameNode, anchor, content); ok {
					*out = append(*out, el)
				}
				t.collectChildren(valueNode.ChildByFieldName("body"), content, out)
			default:
				t.collectChildren(valueNode, content, out)
			}
		}
		return
	}

	t.collectChildren(node, content, out)
}

func (t *TypeScriptExtractor) collectChildren(node *sitter.Node, content []byte, out *[]element.CodeElement) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		t.collect(node.NamedChild(i), content, nil, out)
	}
}

func (t *TypeScriptExtractor) named(node, anchor *sitter.Node, kind element.Kind, content []byte) (element.CodeElement, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return element.CodeElement{}, false
	}
	return element.CodeElement{
		Name: nameNode.Content(content),
		Kind: kind,
		Span: spanOf(anchor, node),
	}, true
}

// function builds a function element from fn, naming it after nameSource.
// For variable-bound functions the span runs from the declaration statement
// to the end of the function value.
func (t *TypeScriptExtractor) function(fn, nameSource, anchor *sitter.Node, content []byte) (element.CodeElement, bool) {
	name := element.AnonymousName
	if nameSource == fn {
		if nameNode := fn.ChildByFieldName("name"); nameNode != nil {
			name = nameNode.Content(content)
		}
	} else if nameSource != nil {
		name = nameSource.Content(content)
	}

	returnType := element.AnyType
	if returnNode := fn.ChildByFieldName("return_type"); returnNode != nil {
		if value := trimTypeAnnotation(returnNode.Content(content)); value != "" {
			returnType = value
		}
	}

	params := extractParameters(fn, content)
	el := element.CodeElement{
		Name:       name,
		Kind:       element.KindFunction,
		Span:       spanOf(anchor, fn),
		Parameters: params,
		ReturnType: returnType,
		IsAsync:    hasChildOfType(fn, "async"),
	}
	el.Signature = functionSignature(el)
	return el, true
}

func extractParameters(fn *sitter.Node, content []byte) []element.Param {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return []element.Param{{Name: single.Content(content), Type: element.AnyType}}
	}
	paramsNode := fn.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}

	params := make([]element.Param, 0, paramsNode.NamedChildCount())
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		child := paramsNode.NamedChild(i)
		param := element.Param{Type: element.AnyType}

		switch child.Type() {
		case "comment":
			continue
		case "required_parameter", "optional_parameter":
			pattern := child.ChildByFieldName("pattern")
			if pattern == nil {
				continue
			}
			param.Name = pattern.Content(content)
			if child.Type() == "optional_parameter" {
				param.Name += "?"
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				if value := trimTypeAnnotation(typeNode.Content(content)); value != "" {
					param.Type = value
				}
			}
		case "assignment_pattern":
			left := child.ChildByFieldName("left")
			if left == nil {
				continue
			}
			param.Name = left.Content(content)
		default:
			param.Name = collapseWhitespace(child.Content(content))
		}

		if param.Name == "" {
			continue
		}
		params = append(params, param)
	}
	return params
}

func spanOf(anchor, node *sitter.Node) element.Span {
	return element.Span{
		StartLine: int(anchor.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}
}

// decoratedStart returns the first of the decorators directly preceding a
// class member, so the comment goes above them. Without decorators it
// returns node.
func decoratedStart(node *sitter.Node) *sitter.Node {
	start := node
	for prev := node.PrevNamedSibling(); prev != nil && prev.Type() == "decorator"; prev = prev.PrevNamedSibling() {
		start = prev
	}
	return start
}

func hasChildOfType(node *sitter.Node, nodeType string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == nodeType {
			return true
		}
	}
	return false
}

func classSignature(node *sitter.Node, content []byte) string {
	sig := "class"
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "class_heritage" {
			sig += " " + collapseWhitespace(child.Content(content))
			break
		}
	}
	return sig
}

func functionSignature(el element.CodeElement) string {
	parts := make([]string, 0, len(el.Parameters))
	for _, p := range el.Parameters {
		parts = append(parts, p.Name+": "+p.Type)
	}
	sig := "function " + el.Name + "(" + strings.Join(parts, ", ") + "): " + el.ReturnType
	if el.IsAsync {
		sig = "async " + sig
	}
	return sig
}

func trimTypeAnnotation(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimSpace(strings.TrimPrefix(value, ":"))
	return collapseWhitespace(value)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
