package feeds

import (
	"encoding/xml"
	"io"
	"strings"
)

// element is one node of a parsed XML document: resolved namespace and
// local name, attributes, child elements in document order, and the
// character data written directly inside the element (CDATA included).
type element struct {
	space    string
	local    string
	attrs    []xml.Attr
	children []*element
	text     strings.Builder
}

// parseTree decodes an XML document into an element tree rooted at the
// document element. The decoder resolves namespace prefixes to URIs, so
// lookups match on (namespace, local name) regardless of the prefix the
// document chose. The input is already UTF-8 (see Normalize), so a charset
// named in the XML declaration is ignored rather than re-decoded.
func parseTree(input string) (*element, error) {
	dec := xml.NewDecoder(strings.NewReader(input))
	dec.CharsetReader = func(charset string, r io.Reader) (io.Reader, error) {
		return r, nil
	}

	var root *element
	var stack []*element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				space: t.Name.Space,
				local: t.Name.Local,
				attrs: t.Attr,
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &xml.SyntaxError{Msg: "multiple root elements"}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, &xml.SyntaxError{Msg: "no root element"}
	}
	return root, nil
}

// child returns the first child element matching the namespace and local
// name, or nil.
func (e *element) child(space, local string) *element {
	for _, c := range e.children {
		if c.space == space && c.local == local {
			return c
		}
	}
	return nil
}

// childAnyNS returns the first child element with the given local name in
// any namespace, or nil.
func (e *element) childAnyNS(local string) *element {
	for _, c := range e.children {
		if c.local == local {
			return c
		}
	}
	return nil
}

// eachChild returns every child element matching the namespace and local
// name, in document order.
func (e *element) eachChild(space, local string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.space == space && c.local == local {
			out = append(out, c)
		}
	}
	return out
}

// attr returns a pointer to the value of the named attribute, or nil when
// the attribute is absent. Attributes are matched on local name.
func (e *element) attr(local string) *string {
	for _, a := range e.attrs {
		if a.Name.Local == local {
			v := a.Value
			return &v
		}
	}
	return nil
}

// textValue returns the element's trimmed character data, or nil for a nil
// element or empty-after-trim text.
func (e *element) textValue() *string {
	if e == nil {
		return nil
	}
	return stringValue(e.text.String())
}

// stringValue trims s and collapses the empty string to absent.
func stringValue(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
