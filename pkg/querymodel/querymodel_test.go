package querymodel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/grum999/bulicore/pkg/rule"
)

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func sampleDocument(t *testing.T) Document {
	t.Helper()
	return Document{
		FormatIdentifier: FormatSearchFilterBasic,
		Nodes: []Node{
			{ID: "engine", Type: NodeSearchEngine},
			{ID: "path1", Type: NodeSearchFromPath, Payload: payload(t, SearchFromPathPayload{
				Path: "/art", Recursive: true, IncludeManagedOnly: true,
			})},
			{ID: "op1", Type: NodeFilterOperator, Payload: payload(t, FilterOperatorPayload{Combinator: "AND"})},
			{ID: "rule1", Type: NodeFileFilterRule, Payload: payload(t, FilterRulePayload{
				Property: "FILE_FORMAT", Operator: "IN", Operand1: []interface{}{"PNG", "KRA"},
			})},
			{ID: "rule2", Type: NodeImageFilterRule, Payload: payload(t, FilterRulePayload{
				Property: "IMAGE_WIDTH", Operator: "GE", Operand1: float64(1000),
			})},
			{ID: "sort1", Type: NodeSortRule, Payload: payload(t, SortRulePayload{
				Property: "FILE_NAME", Ascending: true, Order: 0,
			})},
			{ID: "out1", Type: NodeOutputEngine, Payload: payload(t, OutputEnginePayload{Kind: "csv"})},
		},
		Links: []Link{
			{From: "path1:out", To: "engine:paths"},
			{From: "rule1:out", To: "op1:in"},
			{From: "rule2:out", To: "op1:in"},
			{From: "op1:out", To: "engine:filter"},
			{From: "sort1:out", To: "engine:sort"},
			{From: "engine:output", To: "out1:in"},
		},
	}
}

func TestResolveFlattensFullGraph(t *testing.T) {
	doc := sampleDocument(t)
	resolved, err := Resolve(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved.Paths) != 1 || resolved.Paths[0].Dir != "/art" || !resolved.Paths[0].Recursive {
		t.Fatalf("unexpected paths: %+v", resolved.Paths)
	}
	if len(resolved.SortKeys) != 1 || !resolved.SortKeys[0].Ascending {
		t.Fatalf("unexpected sort keys: %+v", resolved.SortKeys)
	}
	if len(resolved.Outputs) != 1 || resolved.Outputs[0].Kind != "csv" {
		t.Fatalf("unexpected outputs: %+v", resolved.Outputs)
	}

	compiled, err := rule.Compile(resolved.Rule)
	if err != nil {
		t.Fatalf("resolved rule tree should compile: %v", err)
	}
	_ = compiled
}

func TestResolveRejectsUnknownNodeType(t *testing.T) {
	doc := Document{
		FormatIdentifier: FormatSearchFilterBasic,
		Nodes:            []Node{{ID: "x", Type: "SomethingElse"}},
	}
	if _, err := Resolve(doc); err == nil {
		t.Fatal("expected an error for an unknown node type")
	}
}

func TestResolveRequiresExactlyOneSearchEngine(t *testing.T) {
	doc := Document{FormatIdentifier: FormatSearchFilterBasic}
	if _, err := Resolve(doc); err == nil {
		t.Fatal("expected an error when no SearchEngine node is present")
	}
}

func TestNewNodeAssignsUniqueIDsAndEncodesPayload(t *testing.T) {
	a, err := NewNode(NodeSearchFromPath, SearchFromPathPayload{Path: "/art"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewNode(NodeSearchFromPath, SearchFromPathPayload{Path: "/art"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	var p SearchFromPathPayload
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		t.Fatal(err)
	}
	if p.Path != "/art" {
		t.Fatalf("payload round-trip mismatch: got %+v", p)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := sampleDocument(t)
	path := filepath.Join(t.TempDir(), "query.json")
	if err := SaveFile(path, doc); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// SaveFile re-indents payloads, so payloads are compared as decoded
	// JSON values rather than as raw bytes.
	normalizePayload := cmp.Transformer("payload", func(m json.RawMessage) interface{} {
		var v interface{}
		if len(m) > 0 {
			if err := json.Unmarshal(m, &v); err != nil {
				return string(m)
			}
		}
		return v
	})
	if diff := cmp.Diff(doc, got, normalizePayload); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
	os.Remove(path)
}
