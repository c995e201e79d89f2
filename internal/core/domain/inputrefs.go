package domain

import (
	"errors"
	"text/template"
	"text/template/parse"
)

// inputsField is the promptData field holding upstream outputs.
const inputsField = "Inputs"

// inputRefs returns the stage ids a template reads, through either
// {{.Inputs.<id>}} or {{index .Inputs "<id>"}}. Every node is visited
// regardless of which branch would run. An index on .Inputs with a key
// that is not a string literal is rejected, since it cannot be checked.
func inputRefs(tmpl *template.Template) ([]string, error) {
	w := &inputWalker{}
	for _, t := range tmpl.Templates() {
		if t.Tree != nil {
			w.walk(t.Tree.Root)
		}
	}
	return w.refs, w.err
}

type inputWalker struct {
	refs []string
	err  error
}

func (w *inputWalker) walk(node parse.Node) {
	if w.err != nil {
		return
	}
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			w.walk(child)
		}
	case *parse.ActionNode:
		w.walk(n.Pipe)
	case *parse.IfNode:
		w.branch(&n.BranchNode)
	case *parse.RangeNode:
		w.branch(&n.BranchNode)
	case *parse.WithNode:
		w.branch(&n.BranchNode)
	case *parse.TemplateNode:
		w.walk(n.Pipe)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			w.walk(cmd)
		}
	case *parse.CommandNode:
		w.command(n)
	case *parse.ChainNode:
		w.walk(n.Node)
	case *parse.FieldNode:
		w.field(n.Ident)
	case *parse.VariableNode:
		if len(n.Ident) > 0 && n.Ident[0] == "$" {
			w.field(n.Ident[1:])
		}
	}
}

func (w *inputWalker) branch(n *parse.BranchNode) {
	w.walk(n.Pipe)
	w.walk(n.List)
	w.walk(n.ElseList)
}

func (w *inputWalker) field(ident []string) {
	if len(ident) >= 2 && ident[0] == inputsField {
		w.refs = append(w.refs, ident[1])
	}
}

func (w *inputWalker) command(n *parse.CommandNode) {
	if len(n.Args) >= 3 && isIdentifier(n.Args[0], "index") && isInputs(n.Args[1]) {
		key, ok := n.Args[2].(*parse.StringNode)
		if !ok {
			w.err = errors.New("index on .Inputs needs a literal stage id")
			return
		}
		w.refs = append(w.refs, key.Text)
	}
	for _, arg := range n.Args {
		w.walk(arg)
	}
}

func isIdentifier(node parse.Node, name string) bool {
	ident, ok := node.(*parse.IdentifierNode)
	return ok && ident.Ident == name
}

// isInputs reports whether node is .Inputs or $.Inputs.
func isInputs(node parse.Node) bool {
	switch n := node.(type) {
	case *parse.FieldNode:
		return len(n.Ident) == 1 && n.Ident[0] == inputsField
	case *parse.VariableNode:
		return len(n.Ident) == 2 && n.Ident[0] == "$" && n.Ident[1] == inputsField
	}
	return false
}
