package tctemplate

import (
	"fmt"
	"strings"
)

// frame collects the children of an open block tag. The root frame has a
// zero tag.
type frame struct {
	open  tag
	nodes []node
}

// parse builds the node tree for a token stream, enforcing tag balance.
func parse(tokens []token) ([]node, error) {
	stack := []*frame{{}}

	for _, tok := range tokens {
		top := stack[len(stack)-1]

		switch tok.kind {
		case tokenText:
			top.nodes = append(top.nodes, textNode{text: tok.text})

		case tokenTrailing:
			// Appended at the top level whatever is still open.
			stack[0].nodes = append(stack[0].nodes, textNode{text: tok.text})

		case tokenTag:
			tg, err := classify(tok.text, tok.pos)
			if err != nil {
				return nil, err
			}

			switch {
			case tg.kind.isStart():
				stack = append(stack, &frame{open: tg})

			case tg.kind.isEnd():
				if len(stack) == 1 {
					return nil, tg.fail(fmt.Errorf(
						"%w: no open tag to close", ErrUnbalancedTags,
					))
				}

				if top.open.name != tg.name {
					return nil, tg.fail(fmt.Errorf(
						"%w: expected [/%s]", ErrUnbalancedTags, top.open.name,
					))
				}

				stack = stack[:len(stack)-1]
				parent := stack[len(stack)-1]
				parent.nodes = append(parent.nodes, closeBlock(top))

			default:
				top.nodes = append(top.nodes, valueNode{
					path:   tg.path,
					escape: tg.kind == tagEscaped,
				})
			}
		}
	}

	if len(stack) > 1 {
		open := make([]string, 0, len(stack)-1)
		for _, fr := range stack[1:] {
			open = append(open, fr.open.text)
		}

		innermost := stack[len(stack)-1].open

		return nil, innermost.fail(fmt.Errorf(
			"%w: %s", ErrUnclosedTags, strings.Join(open, ", "),
		))
	}

	return stack[0].nodes, nil
}

// closeBlock turns a completed frame into its block node.
func closeBlock(fr *frame) node {
	switch fr.open.kind {
	case tagFor:
		return &forNode{
			open:       fr.open,
			item:       fr.open.item,
			collection: fr.open.path,
			body:       fr.nodes,
		}
	case tagIf:
		return &ifNode{test: fr.open.path, body: fr.nodes}
	default:
		return commentNode{}
	}
}
