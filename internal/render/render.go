package render

import (
	"fmt"
	"strings"

	"github.com/studiowebux/kycfill/internal/types"
	"github.com/studiowebux/kycfill/internal/workflow"
	"gopkg.in/yaml.v3"
)

const (
	// PlaceholderNoProfile is shown when there is nothing to render
	PlaceholderNoProfile = "No profile generated yet."
	// EmptyAnswer replaces an empty or missing answer
	EmptyAnswer = "—"
	// ProfileTitle heads the profile block
	ProfileTitle = "Client Profile"
)

// NodeKind identifies a display tree element
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodePlaceholder
	NodeStatus
	NodeError
	NodeProfile
	NodeForm
	NodeAnswerList
	NodeAnswer
)

// Node is one element of the display tree
type Node struct {
	Kind     NodeKind
	Title    string // profile and form headings
	Text     string // placeholder, status, error, profile dump, answer line
	Note     string // answer reference field
	Children []*Node
}

// Format selects the structural dump used for the profile block
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Renderer maps payloads and states to display trees
type Renderer struct {
	Format Format
}

// Default renders profiles as indented JSON
var Default = Renderer{Format: FormatJSON}

// Result renders a payload with the default renderer
func Result(result *types.GenerationResult) *Node {
	return Default.Result(result)
}

// State renders a display state with the default renderer
func State(state workflow.State) *Node {
	return Default.State(state)
}

// State renders any display state
func (r Renderer) State(state workflow.State) *Node {
	switch state.Phase {
	case workflow.PhaseProcessing:
		return root(&Node{Kind: NodeStatus, Text: state.Label})
	case workflow.PhaseError:
		return root(&Node{Kind: NodeError, Text: state.Message})
	case workflow.PhaseSuccess:
		return r.Result(state.Result)
	default:
		return r.Result(nil)
	}
}

// Result renders a payload. An absent payload or profile yields the placeholder.
func (r Renderer) Result(result *types.GenerationResult) *Node {
	if !result.HasProfile() {
		return root(&Node{Kind: NodePlaceholder, Text: PlaceholderNoProfile})
	}

	tree := root(&Node{
		Kind:  NodeProfile,
		Title: ProfileTitle,
		Text:  r.dumpProfile(result.Profile),
	})

	for _, form := range result.Forms {
		list := &Node{Kind: NodeAnswerList, Children: []*Node{}}
		for _, answer := range form.Answers {
			list.Children = append(list.Children, &Node{
				Kind: NodeAnswer,
				Text: AnswerLine(answer),
				Note: answer.ReferenceField,
			})
		}
		tree.Children = append(tree.Children, &Node{
			Kind:     NodeForm,
			Title:    FormTitle(form),
			Children: []*Node{list},
		})
	}

	return tree
}

// FormTitle labels a form block
func FormTitle(form types.Form) string {
	return fmt.Sprintf("%s - %s", form.FormID, form.FormTitle)
}

// AnswerLine formats one answer, substituting the placeholder glyph when empty
func AnswerLine(answer types.Answer) string {
	text := answer.Text()
	if text == "" {
		text = EmptyAnswer
	}
	return fmt.Sprintf("%s: %s", answer.Question, text)
}

func (r Renderer) dumpProfile(profile *types.Profile) string {
	if r.Format == FormatYAML {
		out, err := yaml.Marshal(profile.YAMLNode())
		if err != nil {
			return fmt.Sprintf("failed to format profile: %v", err)
		}
		return strings.TrimRight(string(out), "\n")
	}

	out, err := profile.Indent()
	if err != nil {
		return fmt.Sprintf("failed to format profile: %v", err)
	}
	return out
}

func root(children ...*Node) *Node {
	return &Node{Kind: NodeRoot, Children: children}
}

// Find returns the nodes of the given kind in document order
func (n *Node) Find(kind NodeKind) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if node == nil {
			return
		}
		if node.Kind == kind {
			out = append(out, node)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(n)
	return out
}
