package querymodel

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/enum"
	"github.com/grum999/bulicore/pkg/rule"
	"github.com/grum999/bulicore/pkg/sortkey"
)

// Resolved is the flattened form the pipeline consumes: a SearchPath
// list, a RuleTree, a SortKey list, and a list of OutputEngine
// descriptors.
type Resolved struct {
	Paths    []enum.SearchPath
	Rule     rule.Node
	SortKeys []sortkey.Key
	Outputs  []OutputEnginePayload
}

type graph struct {
	nodes map[string]Node
	// incomingTo["nodeID:connector"] lists every link whose To
	// endpoint is that connector of that node.
	incomingTo map[string][]Link
}

// Resolve parses and flattens doc. Unknown node types are rejected.
func Resolve(doc Document) (Resolved, error) {
	g := graph{nodes: make(map[string]Node), incomingTo: make(map[string][]Link)}
	for _, n := range doc.Nodes {
		if !knownNodeTypes[n.Type] {
			return Resolved{}, fmt.Errorf("querymodel: unknown node type %q", n.Type)
		}
		g.nodes[n.ID] = n
	}
	for _, l := range doc.Links {
		toNode, toConn, err := splitEndpoint(l.To)
		if err != nil {
			return Resolved{}, err
		}
		key := toNode + ":" + toConn
		g.incomingTo[key] = append(g.incomingTo[key], l)
	}

	engines := filterNodesByType(doc.Nodes, NodeSearchEngine)
	if len(engines) != 1 {
		return Resolved{}, fmt.Errorf("querymodel: expected exactly one SearchEngine node, found %d", len(engines))
	}
	engine := engines[0]

	paths, err := resolvePaths(g, engine.ID)
	if err != nil {
		return Resolved{}, err
	}
	ruleTree, err := resolveFilterInput(g, engine.ID+":"+ConnFilter)
	if err != nil {
		return Resolved{}, err
	}
	sortKeys, err := resolveSortKeys(g, engine.ID)
	if err != nil {
		return Resolved{}, err
	}
	outputs, err := resolveOutputs(g, engine.ID)
	if err != nil {
		return Resolved{}, err
	}

	return Resolved{Paths: paths, Rule: ruleTree, SortKeys: sortKeys, Outputs: outputs}, nil
}

func filterNodesByType(nodes []Node, t NodeType) []Node {
	var out []Node
	for _, n := range nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func resolvePaths(g graph, engineID string) ([]enum.SearchPath, error) {
	var paths []enum.SearchPath
	for _, l := range g.incomingTo[engineID+":"+ConnPaths] {
		fromNode, _, err := splitEndpoint(l.From)
		if err != nil {
			return nil, err
		}
		n, ok := g.nodes[fromNode]
		if !ok || n.Type != NodeSearchFromPath {
			return nil, fmt.Errorf("querymodel: %q feeds SearchEngine.paths but is not a SearchFromPath node", fromNode)
		}
		var p SearchFromPathPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return nil, fmt.Errorf("querymodel: decoding SearchFromPath payload for %q: %w", fromNode, err)
		}
		paths = append(paths, enum.SearchPath{
			Dir:                p.Path,
			Recursive:          p.Recursive,
			IncludeHidden:      p.IncludeHidden,
			IncludeBackups:     p.IncludeBackups,
			IncludeManagedOnly: p.IncludeManagedOnly,
		})
	}
	return paths, nil
}

// resolveFilterInput recursively resolves whatever feeds the given
// "nodeId:connector" endpoint into a rule.Node. An endpoint with no
// incoming link resolves to the empty rule.Node (matches everything).
func resolveFilterInput(g graph, endpoint string) (rule.Node, error) {
	links := g.incomingTo[endpoint]
	if len(links) == 0 {
		return rule.Node{}, nil
	}
	if len(links) > 1 {
		return rule.Node{}, fmt.Errorf("querymodel: %q has %d incoming filter links, want at most 1", endpoint, len(links))
	}
	fromNode, _, err := splitEndpoint(links[0].From)
	if err != nil {
		return rule.Node{}, err
	}
	return resolveFilterNode(g, fromNode)
}

func resolveFilterNode(g graph, nodeID string) (rule.Node, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return rule.Node{}, fmt.Errorf("querymodel: unknown node id %q", nodeID)
	}
	switch n.Type {
	case NodeFileFilterRule, NodeImageFilterRule:
		var p FilterRulePayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return rule.Node{}, fmt.Errorf("querymodel: decoding filter rule payload for %q: %w", nodeID, err)
		}
		prop, ok := descriptor.PropertyFromName(p.Property)
		if !ok {
			return rule.Node{}, fmt.Errorf("querymodel: unknown property %q on node %q", p.Property, nodeID)
		}
		op, ok := rule.OperatorFromName(p.Operator)
		if !ok {
			return rule.Node{}, fmt.Errorf("querymodel: unknown operator %q on node %q", p.Operator, nodeID)
		}
		return rule.Leaf(rule.Predicate{
			Property:        prop,
			Type:            rule.PropertyValueType(prop),
			Operator:        op,
			Operand1:        p.Operand1,
			Operand2:        p.Operand2,
			CaseInsensitive: p.CaseInsensitive,
			DateOnly:        p.DateOnly,
		}), nil

	case NodeFilterOperator:
		var p FilterOperatorPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return rule.Node{}, fmt.Errorf("querymodel: decoding filter operator payload for %q: %w", nodeID, err)
		}
		children, err := resolveChildren(g, nodeID+":"+ConnIn)
		if err != nil {
			return rule.Node{}, err
		}
		switch p.Combinator {
		case "AND":
			return rule.And(children...), nil
		case "OR":
			return rule.Or(children...), nil
		case "NOT":
			if len(children) != 1 {
				return rule.Node{}, fmt.Errorf("querymodel: NOT node %q must have exactly one child, got %d", nodeID, len(children))
			}
			return rule.Not(children[0]), nil
		default:
			return rule.Node{}, fmt.Errorf("querymodel: unknown combinator %q on node %q", p.Combinator, nodeID)
		}

	default:
		return rule.Node{}, fmt.Errorf("querymodel: node %q of type %q cannot feed a filter input", nodeID, n.Type)
	}
}

func resolveChildren(g graph, endpoint string) ([]rule.Node, error) {
	links := g.incomingTo[endpoint]
	children := make([]rule.Node, 0, len(links))
	for _, l := range links {
		fromNode, _, err := splitEndpoint(l.From)
		if err != nil {
			return nil, err
		}
		child, err := resolveFilterNode(g, fromNode)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func resolveSortKeys(g graph, engineID string) ([]sortkey.Key, error) {
	type ordered struct {
		order int
		key   sortkey.Key
	}
	var items []ordered
	for _, l := range g.incomingTo[engineID+":"+ConnSort] {
		fromNode, _, err := splitEndpoint(l.From)
		if err != nil {
			return nil, err
		}
		n, ok := g.nodes[fromNode]
		if !ok || n.Type != NodeSortRule {
			return nil, fmt.Errorf("querymodel: %q feeds SearchEngine.sort but is not a SortRule node", fromNode)
		}
		var p SortRulePayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return nil, fmt.Errorf("querymodel: decoding SortRule payload for %q: %w", fromNode, err)
		}
		prop, ok := descriptor.PropertyFromName(p.Property)
		if !ok {
			return nil, fmt.Errorf("querymodel: unknown property %q on node %q", p.Property, fromNode)
		}
		items = append(items, ordered{order: p.Order, key: sortkey.Key{
			Property: prop, Ascending: p.Ascending, CaseInsensitive: p.CaseInsensitive,
		}})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })
	keys := make([]sortkey.Key, len(items))
	for i, it := range items {
		keys[i] = it.key
	}
	return keys, nil
}

// resolveOutputs finds OutputEngine nodes wired downstream of the
// SearchEngine. Unlike the paths/filter/sort connectors, the
// SearchEngine's "output" connector is a source here: the link runs
// SearchEngine.output -> outputNode.in, so outputs are discovered by
// scanning each OutputEngine node's own incoming "in" links rather
// than the engine's incomingTo entry.
func resolveOutputs(g graph, engineID string) ([]OutputEnginePayload, error) {
	var outputs []OutputEnginePayload
	for _, n := range filterNodesByType(nodesOf(g), NodeOutputEngine) {
		links := g.incomingTo[n.ID+":"+ConnIn]
		for _, l := range links {
			fromNode, _, err := splitEndpoint(l.From)
			if err != nil {
				return nil, err
			}
			if fromNode != engineID {
				continue
			}
			var p OutputEnginePayload
			if err := json.Unmarshal(n.Payload, &p); err != nil {
				return nil, fmt.Errorf("querymodel: decoding OutputEngine payload for %q: %w", n.ID, err)
			}
			outputs = append(outputs, p)
		}
	}
	return outputs, nil
}

func nodesOf(g graph) []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}
