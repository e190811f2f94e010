// Package apidoc recovers the Proxmox API schema embedded in apidoc.js
// viewer files and flattens it into endpoint descriptors.
package apidoc

// Node is one entry of the recovered schema tree. Method definitions appear
// either under the info map or as direct verb keys; both conventions occur
// in the wild and both are preserved here.
type Node struct {
	Path     string
	Text     string
	Leaf     int
	Info     map[string]*Method
	Verbs    map[string]*Method
	Children []*Node
}

// Method describes a single HTTP operation attached to a node.
type Method struct {
	Description string
	Parameters  *Payload
	Returns     *Field
	Permissions string
	AllowToken  bool
}

// Payload is a declared parameter object: a type tag plus named fields.
type Payload struct {
	Type       string
	Properties map[string]*Field
}

// Field is a schema fragment for a parameter, a property, or a return value.
type Field struct {
	Type        string
	Description string
	Format      string
	Pattern     string
	Optional    bool
	Enum        []any
	Default     any
	Minimum     *float64
	Maximum     *float64
	MinLength   *uint64
	MaxLength   *uint64
	Items       *Field
	Properties  map[string]*Field
}

var httpVerbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// decodeForest converts a loosely-typed tree (as produced by script
// evaluation or JSON decoding) into Nodes. Entries that are not objects
// are skipped.
func decodeForest(raw []any) []*Node {
	nodes := make([]*Node, 0, len(raw))
	for _, entry := range raw {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		nodes = append(nodes, decodeNode(m))
	}
	return nodes
}

func decodeNode(m map[string]any) *Node {
	n := &Node{
		Path: stringOf(m["path"]),
		Text: stringOf(m["text"]),
	}
	if v, ok := intOf(m["leaf"]); ok {
		n.Leaf = v
	}
	if info, ok := asMap(m["info"]); ok {
		n.Info = decodeMethods(info)
	}
	for _, verb := range httpVerbs {
		def, ok := asMap(m[verb])
		if !ok {
			continue
		}
		if n.Verbs == nil {
			n.Verbs = make(map[string]*Method)
		}
		n.Verbs[verb] = decodeMethod(def)
	}
	if children, ok := m["children"].([]any); ok {
		n.Children = decodeForest(children)
	}
	return n
}

func decodeMethods(m map[string]any) map[string]*Method {
	methods := make(map[string]*Method, len(m))
	for verb, raw := range m {
		def, ok := asMap(raw)
		if !ok {
			continue
		}
		methods[verb] = decodeMethod(def)
	}
	return methods
}

func decodeMethod(m map[string]any) *Method {
	method := &Method{
		Description: stringOf(m["description"]),
		AllowToken:  boolOf(m["allowtoken"]),
	}
	if params, ok := asMap(m["parameters"]); ok {
		p := &Payload{Type: stringOf(params["type"])}
		if props, ok := asMap(params["properties"]); ok {
			p.Properties = decodeFields(props)
		}
		method.Parameters = p
	}
	if returns, ok := asMap(m["returns"]); ok && len(returns) > 0 {
		method.Returns = decodeField(returns)
	}
	switch perms := m["permissions"].(type) {
	case string:
		method.Permissions = perms
	case map[string]any:
		method.Permissions = stringOf(perms["description"])
	}
	return method
}

func decodeFields(m map[string]any) map[string]*Field {
	fields := make(map[string]*Field, len(m))
	for name, raw := range m {
		def, ok := asMap(raw)
		if !ok {
			continue
		}
		fields[name] = decodeField(def)
	}
	return fields
}

func decodeField(m map[string]any) *Field {
	f := &Field{
		Type:        stringOf(m["type"]),
		Description: stringOf(m["description"]),
		Format:      stringOf(m["format"]),
		Pattern:     stringOf(m["pattern"]),
		Optional:    boolOf(m["optional"]),
		Default:     m["default"],
	}
	if enum, ok := m["enum"].([]any); ok {
		f.Enum = enum
	}
	if v, ok := floatOf(m["minimum"]); ok {
		f.Minimum = &v
	}
	if v, ok := floatOf(m["maximum"]); ok {
		f.Maximum = &v
	}
	if v, ok := uintOf(m["minLength"]); ok {
		f.MinLength = &v
	}
	if v, ok := uintOf(m["maxLength"]); ok {
		f.MaxLength = &v
	}
	if items, ok := asMap(m["items"]); ok {
		f.Items = decodeField(items)
	}
	if props, ok := asMap(m["properties"]); ok {
		f.Properties = decodeFields(props)
	}
	return f
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// boolOf accepts JS booleans and the 0/1 integer convention used throughout
// apidoc.js for flags like optional and allowtoken.
func boolOf(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int64:
		return t != 0
	case int:
		return t != 0
	}
	return false
}

func floatOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

func intOf(v any) (int, bool) {
	f, ok := floatOf(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func uintOf(v any) (uint64, bool) {
	f, ok := floatOf(v)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}
