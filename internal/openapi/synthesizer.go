// Package openapi synthesizes an OpenAPI 3.0.3 document from flattened
// Proxmox endpoint descriptors.
package openapi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/basher83/Proxmox-OpenAPI/internal/apidoc"
	"github.com/basher83/Proxmox-OpenAPI/internal/profile"
)

// Synthesizer builds documents for a single profile. The profile only
// dresses the output (info, servers, tags, auth); it never changes how
// endpoint schemas are converted.
type Synthesizer struct {
	profile  *profile.Profile
	registry *registry
	rules    []reuseRule
}

// NewSynthesizer returns a Synthesizer for the given profile.
func NewSynthesizer(p *profile.Profile) *Synthesizer {
	return &Synthesizer{
		profile:  p,
		registry: newRegistry(p.Family),
		rules:    reuseRules(p.Family),
	}
}

// Report summarizes one Document build.
type Report struct {
	// Endpoints is the number of descriptors that carried methods.
	Endpoints int
	// Operations is the number of operations in the assembled document.
	Operations int
	// DuplicatePaths lists paths that were contributed more than once;
	// assembly keeps the last contribution.
	DuplicatePaths []string
}

var pathParamsPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Document assembles the full document. Descriptors without methods are
// skipped; duplicate paths overwrite earlier ones and are recorded in the
// report.
func (s *Synthesizer) Document(endpoints []apidoc.Endpoint) (*openapi3.T, *Report) {
	report := &Report{}
	paths := make(openapi3.Paths, len(endpoints))
	tagSet := make(map[string]struct{})

	for _, ep := range endpoints {
		if len(ep.Methods) == 0 {
			continue
		}
		report.Endpoints++
		tagSet[s.tag(ep.Path)] = struct{}{}

		item, ops := s.pathItem(ep)
		if ops == 0 {
			continue
		}
		if _, exists := paths[ep.Path]; exists {
			report.DuplicatePaths = append(report.DuplicatePaths, ep.Path)
		}
		paths[ep.Path] = item
	}
	for _, item := range paths {
		report.Operations += len(item.Operations())
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       s.profile.Title,
			Description: s.profile.Description,
			Version:     s.profile.Version,
			Contact: &openapi3.Contact{
				Name:  "Proxmox Support",
				URL:   "https://www.proxmox.com",
				Email: s.profile.ContactEmail,
			},
			License: &openapi3.License{
				Name: "AGPL-3.0",
				URL:  "https://www.gnu.org/licenses/agpl-3.0.html",
			},
		},
		Servers:    openapi3.Servers{s.server()},
		Tags:       s.tags(tagSet),
		Paths:      paths,
		Components: s.components(),
	}
	if len(s.profile.Security) > 0 {
		doc.Security = s.profile.Security
	}
	return doc, report
}

// PathItem converts a single descriptor. Callers must filter out
// descriptors without methods; those are an error here.
func (s *Synthesizer) PathItem(ep apidoc.Endpoint) (*openapi3.PathItem, error) {
	if len(ep.Methods) == 0 {
		return nil, fmt.Errorf("endpoint %s has no methods", ep.Path)
	}
	item, _ := s.pathItem(ep)
	return item, nil
}

func (s *Synthesizer) pathItem(ep apidoc.Endpoint) (*openapi3.PathItem, int) {
	verbs := make([]string, 0, len(ep.Methods))
	for verb := range ep.Methods {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)

	item := &openapi3.PathItem{}
	count := 0
	for _, verb := range verbs {
		method := ep.Methods[verb]
		if method == nil {
			continue
		}
		op := s.operation(verb, ep.Path, method)
		switch strings.ToUpper(verb) {
		case "GET":
			item.Get = op
		case "POST":
			item.Post = op
		case "PUT":
			item.Put = op
		case "DELETE":
			item.Delete = op
		case "PATCH":
			item.Patch = op
		default:
			continue
		}
		count++
	}
	return item, count
}

func (s *Synthesizer) operation(verb, path string, m *apidoc.Method) *openapi3.Operation {
	summary := m.Description
	if summary == "" {
		summary = verb + " " + path
	}
	description := m.Description
	if m.Permissions != "" {
		description += "\n\n**Required permissions:** " + m.Permissions
	}
	op := &openapi3.Operation{
		Summary:     summary,
		Description: description,
		OperationID: operationID(verb, path),
		Tags:        []string{s.tag(path)},
	}

	pathNames := pathParamNames(path)
	params := make(openapi3.Parameters, 0, len(pathNames))
	for _, name := range pathNames {
		params = append(params, &openapi3.ParameterRef{Value: &openapi3.Parameter{
			Name:        name,
			In:          "path",
			Required:    true,
			Schema:      s.registry.pathParamSchema(name, s.profile.Family),
			Description: fmt.Sprintf("The %s parameter", name),
		}})
	}

	if m.Parameters != nil && len(m.Parameters.Properties) > 0 {
		props, required := s.convertParameters(m.Parameters)
		if upper := strings.ToUpper(verb); upper == "GET" || upper == "DELETE" {
			params = append(params, s.queryParameters(m.Parameters, props, required, pathNames)...)
		} else if body := s.requestBody(props, required, pathNames); body != nil {
			op.RequestBody = body
		}
	}
	if len(params) > 0 {
		op.Parameters = params
	}

	op.Responses = s.responses(m)
	if len(s.profile.Security) > 0 {
		op.Security = &s.profile.Security
	}
	return op
}

// queryParameters turns declared properties into query parameters, skipping
// names already bound by the path. Emission is sorted by name.
func (s *Synthesizer) queryParameters(payload *apidoc.Payload, props openapi3.Schemas, required, pathNames []string) openapi3.Parameters {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(openapi3.Parameters, 0, len(names))
	for _, name := range names {
		if containsName(pathNames, name) {
			continue
		}
		param := &openapi3.Parameter{
			Name:     name,
			In:       "query",
			Required: containsName(required, name),
			Schema:   props[name],
		}
		if field := payload.Properties[name]; field != nil && field.Description != "" {
			param.Description = field.Description
		}
		params = append(params, &openapi3.ParameterRef{Value: param})
	}
	return params
}

// requestBody wraps the non-path properties in a single JSON object body.
// Returns nil when the path consumed every property.
func (s *Synthesizer) requestBody(props openapi3.Schemas, required, pathNames []string) *openapi3.RequestBodyRef {
	bodyProps := make(openapi3.Schemas, len(props))
	for name, ref := range props {
		if !containsName(pathNames, name) {
			bodyProps[name] = ref
		}
	}
	if len(bodyProps) == 0 {
		return nil
	}
	var bodyRequired []string
	for _, name := range required {
		if !containsName(pathNames, name) {
			bodyRequired = append(bodyRequired, name)
		}
	}
	sort.Strings(bodyRequired)

	schema := &openapi3.Schema{Type: "object", Properties: bodyProps}
	if len(bodyRequired) > 0 {
		schema.Required = bodyRequired
	}
	return &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
		Required: len(bodyRequired) > 0,
		Content:  openapi3.NewContentWithJSONSchemaRef(openapi3.NewSchemaRef("", schema)),
	}}
}

func (s *Synthesizer) convertParameters(payload *apidoc.Payload) (openapi3.Schemas, []string) {
	props := make(openapi3.Schemas, len(payload.Properties))
	var required []string
	for name, field := range payload.Properties {
		if field == nil {
			continue
		}
		props[name] = s.paramSchema(field)
		if !field.Optional {
			required = append(required, name)
		}
	}
	return props, required
}

var errorResponses = []struct {
	code        string
	description string
}{
	{"400", "Bad Request - Invalid input parameters or malformed request"},
	{"401", "Unauthorized - Authentication required or invalid credentials"},
	{"403", "Forbidden - Insufficient permissions for the requested operation"},
	{"404", "Not Found - Requested resource does not exist"},
	{"422", "Unprocessable Entity - Request is well-formed but contains semantic errors"},
	{"500", "Internal Server Error - Unexpected server error"},
	{"503", "Service Unavailable - Service temporarily unavailable"},
}

func (s *Synthesizer) responses(m *apidoc.Method) openapi3.Responses {
	responses := make(openapi3.Responses, len(errorResponses)+1)
	if m.Returns != nil {
		desc := m.Returns.Description
		if desc == "" {
			desc = "Successful operation"
		}
		responses["200"] = &openapi3.ResponseRef{Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(s.returnsSchema(m.Returns)),
		}}
	} else {
		desc := "Successful operation"
		responses["200"] = &openapi3.ResponseRef{Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(s.registry.ref(schemaSuccess)),
		}}
	}
	for _, e := range errorResponses {
		desc := e.description
		responses[e.code] = &openapi3.ResponseRef{Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(s.registry.ref(schemaError)),
		}}
	}
	return responses
}

// paramSchema converts one declared parameter. A reuse-rule hit short-
// circuits to a bare reference; inline schemas carry the description,
// bounds, pattern, enum, default and item type of the source field.
func (s *Synthesizer) paramSchema(f *apidoc.Field) *openapi3.SchemaRef {
	ref := s.typeSchema(f, "string")
	if ref.Ref != "" {
		return ref
	}
	schema := ref.Value
	if f.Description != "" {
		schema.Description = f.Description
	}
	if f.MinLength != nil {
		schema.MinLength = *f.MinLength
	}
	if f.MaxLength != nil {
		v := *f.MaxLength
		schema.MaxLength = &v
	}
	if f.Minimum != nil {
		v := *f.Minimum
		schema.Min = &v
	}
	if f.Maximum != nil {
		v := *f.Maximum
		schema.Max = &v
	}
	if pattern, ok := cleanPattern(f.Pattern); ok {
		schema.Pattern = pattern
	}
	if len(f.Enum) > 0 {
		schema.Enum = f.Enum
	}
	if f.Default != nil {
		schema.Default = f.Default
	}
	if f.Type == "array" && f.Items != nil {
		schema.Items = s.typeSchema(f.Items, "string")
	}
	return ref
}

// returnsSchema converts a return declaration, recursing into array items
// and object properties. Unlike parameters, the type defaults to object.
func (s *Synthesizer) returnsSchema(f *apidoc.Field) *openapi3.SchemaRef {
	ref := s.typeSchema(f, "object")
	if ref.Ref != "" {
		return ref
	}
	schema := ref.Value
	if f.Type == "array" && f.Items != nil {
		schema.Items = s.returnsSchema(f.Items)
	}
	if f.Type == "object" && len(f.Properties) > 0 {
		schema.Properties = make(openapi3.Schemas, len(f.Properties))
		for name, prop := range f.Properties {
			if prop != nil {
				schema.Properties[name] = s.returnsSchema(prop)
			}
		}
	}
	if f.Description != "" {
		schema.Description = f.Description
	}
	return ref
}

// typeSchema resolves a field to either a shared component reference or an
// inline schema with a 1:1 primitive type mapping. Unrecognized types fall
// back to string with the original type noted.
func (s *Synthesizer) typeSchema(f *apidoc.Field, defaultType string) *openapi3.SchemaRef {
	desc := strings.ToLower(f.Description)
	for _, rule := range s.rules {
		if rule.match(f, desc) {
			return s.registry.ref(rule.schema)
		}
	}

	t := f.Type
	if t == "" {
		t = defaultType
	}
	switch t {
	case "string", "integer", "number", "boolean", "array", "object", "null":
		schema := &openapi3.Schema{Type: t}
		if f.Format != "" {
			schema.Format = f.Format
		}
		return &openapi3.SchemaRef{Value: schema}
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:        "string",
		Description: "Type: " + t,
	}}
}

func (s *Synthesizer) server() *openapi3.Server {
	name := s.profile.Family.ServerName()
	words := strings.Fields(name)
	return &openapi3.Server{
		URL:         fmt.Sprintf("https://{host}:%d%s", s.profile.DefaultPort, s.profile.ServerPath),
		Description: name,
		Variables: map[string]*openapi3.ServerVariable{
			"host": {
				Default:     "localhost",
				Description: words[0] + " " + words[1] + " server hostname or IP address",
			},
		},
	}
}

func (s *Synthesizer) tags(tagSet map[string]struct{}) openapi3.Tags {
	names := make([]string, 0, len(tagSet))
	for name := range tagSet {
		names = append(names, name)
	}
	sort.Strings(names)
	tags := make(openapi3.Tags, 0, len(names))
	for _, name := range names {
		tags = append(tags, &openapi3.Tag{
			Name:        name,
			Description: titleWords(name) + " related operations",
		})
	}
	return tags
}

func (s *Synthesizer) components() *openapi3.Components {
	schemes := make(openapi3.SecuritySchemes, len(s.profile.AuthSchemes))
	for name, scheme := range s.profile.AuthSchemes {
		schemes[name] = &openapi3.SecuritySchemeRef{Value: scheme}
	}
	return &openapi3.Components{
		SecuritySchemes: schemes,
		Schemas:         s.registry.schemas,
	}
}

func (s *Synthesizer) tag(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] != "" {
		if mapped, ok := s.profile.TagMapping[parts[0]]; ok {
			return mapped
		}
		return titleWords(parts[0])
	}
	return "Default"
}

func operationID(verb, path string) string {
	p := strings.NewReplacer("/", "_", "{", "", "}", "").Replace(path)
	return strings.ToLower(verb) + "_" + strings.Trim(p, "_")
}

func pathParamNames(path string) []string {
	matches := pathParamsPattern.FindAllStringSubmatch(path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// cleanPattern unwraps /.../ or "/.../" delimiters and keeps the pattern
// only if it compiles. Invalid patterns are dropped rather than emitted.
func cleanPattern(pattern string) (string, bool) {
	if pattern == "" {
		return "", false
	}
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		pattern = pattern[1 : len(pattern)-1]
	} else if len(pattern) >= 4 && strings.HasPrefix(pattern, `"/`) && strings.HasSuffix(pattern, `/"`) {
		pattern = pattern[2 : len(pattern)-2]
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return "", false
	}
	return pattern, true
}

// titleWords matches the capitalization used for fallback tags: letters
// after a non-letter are uppercased, the rest lowered.
func titleWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
