// Package querymodel implements the serialisable node graph that sits
// between a query-authoring collaborator (the windowing shell, out of
// scope here) and the core: a JSON document of typed nodes and typed
// links that Resolve flattens into the SearchPath list, RuleTree,
// SortKey list, and OutputEngine descriptors the pipeline actually
// consumes.
package querymodel

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// FormatSearchFilterBasic and FormatSearchFilterAdvanced are the two
// top-level formatIdentifier values; both nodes/links schemas are
// identical, the basic form just encodes a flattened subset of what
// the advanced form can express.
const (
	FormatSearchFilterBasic    = "bulicommander-search-filter-basic"
	FormatSearchFilterAdvanced = "bulicommander-search-filter-advanced"
)

// NodeType enumerates the known node kinds. Any type string unmarshals
// into a NodeType; Resolve rejects types not listed in knownNodeTypes.
type NodeType string

const (
	NodeSearchEngine    NodeType = "SearchEngine"
	NodeSearchFromPath  NodeType = "SearchFromPath"
	NodeFileFilterRule  NodeType = "FileFilterRule"
	NodeImageFilterRule NodeType = "ImageFilterRule"
	NodeFilterOperator  NodeType = "FilterOperator"
	NodeSortRule        NodeType = "SortRule"
	NodeOutputEngine    NodeType = "OutputEngine"
)

var knownNodeTypes = map[NodeType]bool{
	NodeSearchEngine: true, NodeSearchFromPath: true, NodeFileFilterRule: true,
	NodeImageFilterRule: true, NodeFilterOperator: true, NodeSortRule: true,
	NodeOutputEngine: true,
}

// Connector names used by Links. A node graph editor may have more
// visual connectors than this, but these are the only ones the core's
// resolution logic reads.
const (
	ConnOut    = "out"
	ConnIn     = "in"
	ConnPaths  = "paths"
	ConnFilter = "filter"
	ConnSort   = "sort"
	ConnOutput = "output"
)

// Node is one typed entry in the graph: an id, a type, and a
// type-specific payload left as raw JSON until Resolve dispatches on
// Type.
type Node struct {
	ID      string          `json:"id"`
	Type    NodeType        `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Link is a directed edge between two connectors, each addressed as
// "nodeId:connector".
type Link struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Document is the top-level query file shape.
type Document struct {
	FormatIdentifier string `json:"formatIdentifier"`
	Nodes            []Node `json:"nodes"`
	Links            []Link `json:"links"`
}

// NewNode builds a Node of the given type with a fresh random ID and
// payload marshalled to JSON — the constructor a query-authoring
// collaborator uses so node IDs never collide across a document
// assembled incrementally, instead of the caller having to invent and
// track its own ID scheme.
func NewNode(t NodeType, payload interface{}) (Node, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Node{}, fmt.Errorf("querymodel: encoding %s payload: %w", t, err)
	}
	return Node{ID: uuid.NewString(), Type: t, Payload: data}, nil
}

func splitEndpoint(endpoint string) (nodeID, connector string, err error) {
	for i := len(endpoint) - 1; i >= 0; i-- {
		if endpoint[i] == ':' {
			return endpoint[:i], endpoint[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("querymodel: malformed endpoint %q, want nodeId:connector", endpoint)
}

// SearchFromPathPayload is NodeSearchFromPath's payload.
type SearchFromPathPayload struct {
	Path               string `json:"path"`
	Recursive          bool   `json:"recursive"`
	IncludeHidden      bool   `json:"includeHidden"`
	IncludeBackups     bool   `json:"includeBackups"`
	IncludeManagedOnly bool   `json:"includeManagedOnly"`
}

// FilterRulePayload is the shared payload shape for FileFilterRule and
// ImageFilterRule nodes — the distinction between the two node types
// is purely about which property list the authoring UI offered, not
// about runtime semantics, so both deserialise into this struct.
type FilterRulePayload struct {
	Property        string      `json:"property"`
	Operator        string      `json:"operator"`
	Operand1        interface{} `json:"operand1"`
	Operand2        interface{} `json:"operand2,omitempty"`
	CaseInsensitive bool        `json:"caseInsensitive"`
	DateOnly        bool        `json:"dateOnly"`
}

// FilterOperatorPayload is NodeFilterOperator's payload: which boolean
// combinator this node applies to whatever feeds its "in" connector.
type FilterOperatorPayload struct {
	Combinator string `json:"combinator"` // AND, OR, NOT
}

// SortRulePayload is NodeSortRule's payload. Order disambiguates
// multi-key sort ordering independent of the Links array's order,
// since JSON object/array order isn't a reliable wire invariant.
type SortRulePayload struct {
	Property        string `json:"property"`
	Ascending       bool   `json:"ascending"`
	CaseInsensitive bool   `json:"caseInsensitive"`
	Order           int    `json:"order"`
}

// OutputEnginePayload is NodeOutputEngine's payload: the core only
// defines the descriptor contract and progress events, leaving
// format/options entirely to the renderer, so Options is passed
// through opaquely.
type OutputEnginePayload struct {
	Kind    string                 `json:"kind"`
	Options map[string]interface{} `json:"options,omitempty"`
}
