package apidoc

// Endpoint is a flattened descriptor: one full path together with its
// method definitions.
type Endpoint struct {
	Path    string
	Methods map[string]*Method
	Text    string
	Leaf    int
}

// Flatten walks the schema tree in pre-order and accumulates endpoint
// descriptors. A node's full path is the plain concatenation of its
// ancestors' path segments and its own; inconsistently-formed segments
// propagate verbatim. A node with an info map contributes one descriptor,
// a node with direct verb keys contributes another, and children are
// visited either way. Duplicate paths are not collapsed here.
func Flatten(nodes []*Node) []Endpoint {
	return flattenInto(nil, nodes, "")
}

func flattenInto(endpoints []Endpoint, nodes []*Node, prefix string) []Endpoint {
	for _, node := range nodes {
		full := prefix + node.Path
		if len(node.Info) > 0 {
			endpoints = append(endpoints, Endpoint{
				Path:    full,
				Methods: node.Info,
				Text:    node.Text,
				Leaf:    node.Leaf,
			})
		}
		if len(node.Verbs) > 0 {
			endpoints = append(endpoints, Endpoint{
				Path:    full,
				Methods: node.Verbs,
				Text:    node.Text,
				Leaf:    node.Leaf,
			})
		}
		endpoints = flattenInto(endpoints, node.Children, full)
	}
	return endpoints
}
