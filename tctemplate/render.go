package tctemplate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/byte4ever/tcframework/pointer"
)

type node interface {
	render(r *renderer) error
}

// renderer holds the state of one Render call.
type renderer struct {
	locals any
	out    strings.Builder
}

func (r *renderer) renderNodes(nodes []node) error {
	for _, nd := range nodes {
		if err := nd.render(r); err != nil {
			return err
		}
	}

	return nil
}

type textNode struct {
	text string
}

func (n textNode) render(r *renderer) error {
	r.out.WriteString(n.text)

	return nil
}

type valueNode struct {
	path   *pointer.Pointer
	escape bool
}

func (n valueNode) render(r *renderer) error {
	val, found := n.path.Get(r.locals)

	str := stringify(val, found)
	if n.escape {
		str = EncodeHTMLEntities(str)
	}

	r.out.WriteString(str)

	return nil
}

type commentNode struct{}

func (commentNode) render(*renderer) error {
	return nil
}

type ifNode struct {
	test *pointer.Pointer
	body []node
}

func (n *ifNode) render(r *renderer) error {
	val, _ := n.test.Get(r.locals)

	if isTrue, ok := val.(bool); ok && isTrue {
		return r.renderNodes(n.body)
	}

	return nil
}

type forNode struct {
	open       tag
	item       *pointer.Pointer
	collection *pointer.Pointer
	body       []node
}

func (n *forNode) render(r *renderer) error {
	coll, found := n.collection.Get(r.locals)

	items, err := elements(coll, found)
	if err != nil {
		return n.open.fail(err)
	}

	for _, item := range items {
		root, err := n.item.Set(r.locals, item)
		if err != nil {
			return n.open.fail(fmt.Errorf("binding loop variable: %w", err))
		}

		r.locals = root

		if err := r.renderNodes(n.body); err != nil {
			return err
		}
	}

	return nil
}

// elements lists a loop collection in native order. A missing or nil
// collection yields no iterations.
func elements(coll any, found bool) ([]any, error) {
	if !found || coll == nil {
		return nil, nil
	}

	if items, ok := coll.([]any); ok {
		return items, nil
	}

	rv := reflect.ValueOf(coll)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for idx := range items {
			items[idx] = rv.Index(idx).Interface()
		}

		return items, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotIterable, coll)
	}
}
