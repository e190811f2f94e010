package apidoc

import (
	"reflect"
	"testing"
)

func TestFlattenConcatenatesSegments(t *testing.T) {
	t.Parallel()
	tree := []*Node{
		{
			Path: "/nodes",
			Text: "nodes",
			Children: []*Node{
				{
					Path: "/{node}",
					Text: "{node}",
					Info: map[string]*Method{"GET": {Description: "Node index."}},
					Children: []*Node{
						{
							Path: "/status",
							Text: "status",
							Leaf: 1,
							Info: map[string]*Method{"GET": {Description: "Read node status."}},
						},
					},
				},
			},
		},
	}

	endpoints := Flatten(tree)
	if len(endpoints) != 2 {
		t.Fatalf("want 2 endpoints, got %d: %+v", len(endpoints), endpoints)
	}
	if endpoints[0].Path != "/nodes/{node}" {
		t.Fatalf("first path: got %q", endpoints[0].Path)
	}
	if endpoints[1].Path != "/nodes/{node}/status" {
		t.Fatalf("second path: got %q", endpoints[1].Path)
	}
	if endpoints[1].Leaf != 1 || endpoints[1].Text != "status" {
		t.Fatalf("descriptor metadata: got %+v", endpoints[1])
	}
}

func TestFlattenPropagatesMalformedSegments(t *testing.T) {
	t.Parallel()
	// A segment missing its leading slash concatenates verbatim; the
	// flattener does not repair paths.
	tree := []*Node{
		{
			Path: "/a",
			Children: []*Node{
				{Path: "b", Info: map[string]*Method{"GET": {}}},
			},
		},
	}
	endpoints := Flatten(tree)
	if len(endpoints) != 1 || endpoints[0].Path != "/ab" {
		t.Fatalf("malformed concatenation: got %+v", endpoints)
	}
}

func TestFlattenEmitsBothConventions(t *testing.T) {
	t.Parallel()
	// A node carrying an info map and direct verb keys contributes two
	// descriptors for the same path.
	tree := []*Node{
		{
			Path:  "/dual",
			Info:  map[string]*Method{"GET": {Description: "via info"}},
			Verbs: map[string]*Method{"POST": {Description: "direct"}},
		},
	}
	endpoints := Flatten(tree)
	if len(endpoints) != 2 {
		t.Fatalf("want 2 descriptors, got %d", len(endpoints))
	}
	if endpoints[0].Path != "/dual" || endpoints[1].Path != "/dual" {
		t.Fatalf("paths: got %+v", endpoints)
	}
	if endpoints[0].Methods["GET"] == nil {
		t.Fatalf("info descriptor first: got %+v", endpoints[0].Methods)
	}
	if endpoints[1].Methods["POST"] == nil {
		t.Fatalf("direct-verb descriptor second: got %+v", endpoints[1].Methods)
	}
}

func TestFlattenDescendsThroughMethodlessNodes(t *testing.T) {
	t.Parallel()
	tree := []*Node{
		{
			Path: "/top",
			Info: map[string]*Method{"GET": {}},
			Children: []*Node{
				{Path: "/mid", Children: []*Node{
					{Path: "/deep", Info: map[string]*Method{"DELETE": {}}},
				}},
			},
		},
	}
	endpoints := Flatten(tree)
	if len(endpoints) != 2 {
		t.Fatalf("want 2 endpoints, got %+v", endpoints)
	}
	if endpoints[1].Path != "/top/mid/deep" {
		t.Fatalf("deep path: got %q", endpoints[1].Path)
	}
}

func TestFlattenIsPure(t *testing.T) {
	t.Parallel()
	tree := []*Node{
		{
			Path:  "/cluster",
			Info:  map[string]*Method{"GET": {Description: "Cluster index."}},
			Verbs: map[string]*Method{"POST": {Description: "direct"}},
			Children: []*Node{
				{Path: "/resources", Info: map[string]*Method{"GET": {}}},
				{Path: "/status", Info: map[string]*Method{"GET": {}}},
			},
		},
	}
	first := Flatten(tree)
	second := Flatten(tree)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeat runs over the same tree diverged:\n%+v\nvs\n%+v", first, second)
	}
}

func TestFlattenKeepsDuplicatePaths(t *testing.T) {
	t.Parallel()
	tree := []*Node{
		{Path: "/same", Info: map[string]*Method{"GET": {Description: "first"}}},
		{Path: "/same", Info: map[string]*Method{"GET": {Description: "second"}}},
	}
	endpoints := Flatten(tree)
	if len(endpoints) != 2 {
		t.Fatalf("duplicates must be preserved here, got %d", len(endpoints))
	}
}
