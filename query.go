package toml

import "fmt"

// Child is one element of a GetChildren result: either a keyed child of a
// table/inline table (Index == -1) or a positional child of an array
// (Key == "").
type Child struct {
	Key   string
	Index int
	Value Node
}

// container identifies the header a table or array-of-tables instance
// attaches to: nil for the document root, or the specific *TableNode /
// *ArrayOfTables instance it's nested under. Using instance identity
// rather than an absolute path string is what lets "fruit.variety" under
// the first [[fruit]] resolve separately from "fruit.variety" under the
// second (§4.D) - the two are unrelated arrays that happen to share a
// header spelling.
type container any

// resolver indexes a parsed document's standalone table and
// array-of-tables headers by the container they attach to and their own
// local key, so path resolution can walk straight to the right node
// instead of rescanning doc.Nodes for every segment.
type resolver struct {
	doc         *Document
	childTables map[container]map[string]*TableNode
	childGroups map[container]map[string][]*ArrayOfTables
}

func newResolver(doc *Document) *resolver {
	r := &resolver{
		doc:         doc,
		childTables: make(map[container]map[string]*TableNode),
		childGroups: make(map[container]map[string][]*ArrayOfTables),
	}
	for _, n := range doc.Nodes {
		switch node := n.(type) {
		case *TableNode:
			parent, local := r.attachPoint(node.HeaderParts)
			if r.childTables[parent] == nil {
				r.childTables[parent] = make(map[string]*TableNode)
			}
			r.childTables[parent][local] = node
		case *ArrayOfTables:
			parent, local := r.attachPoint(node.HeaderParts)
			if r.childGroups[parent] == nil {
				r.childGroups[parent] = make(map[string][]*ArrayOfTables)
			}
			r.childGroups[parent][local] = append(r.childGroups[parent][local], node)
		}
	}
	return r
}

// attachPoint walks a header's path from the document root, at each step
// picking the most recently opened array-of-tables element seen so far
// (document order is parse order, so "seen so far" is exactly "active at
// this point" per TOML's header semantics), and returns the resulting
// parent container plus the header's own last path segment.
func (r *resolver) attachPoint(parts []KeyPart) (container, string) {
	local := parts[len(parts)-1].Unquoted
	var cur container
	for _, p := range parts[:len(parts)-1] {
		key := p.Unquoted
		if groups := r.childGroups[cur][key]; len(groups) > 0 {
			cur = groups[len(groups)-1]
			continue
		}
		if tbl := r.childTables[cur][key]; tbl != nil {
			cur = tbl
			continue
		}
		// No explicit [parent] header before this one; synthesize an
		// empty placeholder table so later siblings of this same
		// implicit parent still attach to the same container.
		synthetic := &TableNode{baseNode: baseNode{nodeType: NodeTable}}
		if r.childTables[cur] == nil {
			r.childTables[cur] = make(map[string]*TableNode)
		}
		r.childTables[cur][key] = synthetic
		cur = synthetic
	}
	return cur, local
}

func rootEntries(doc *Document) []*KeyValue {
	var out []*KeyValue
	for _, n := range doc.Nodes {
		if kv, ok := n.(*KeyValue); ok {
			out = append(out, kv)
		}
	}
	return out
}

// virtualDot represents being partway through a dotted-key chain: "a.b.c = 1"
// is a single KeyValue with three KeyParts, peeled one component at a time
// as the path engine walks "a", then "b", then "c".
type virtualDot struct {
	remaining []KeyPart
	val       Node
	owner     *KeyValue
}

// scope is the container currently being searched: either a real entries
// list (document root, a table body, an array-of-tables element, or an
// inline table), or mid-peel through a dotted key.
type scope struct {
	entries        []*KeyValue
	virtual        *virtualDot
	container      container // identity of the enclosing table/AoT instance, for nested standalone headers
	noHeaderLookup bool      // true once inside an array/inline-table: standalone headers can't nest there
}

type stepKind int

const (
	stepNotFound stepKind = iota
	stepLeaf
	stepContainer
	stepGroup
)

type stepResult struct {
	kind      stepKind
	val       Node
	owner     *KeyValue
	nextScope scope
	group     []*ArrayOfTables
}

func (r *resolver) step(sc scope, key string) stepResult {
	if sc.virtual != nil {
		v := sc.virtual
		if v.remaining[0].Unquoted != key {
			return stepResult{kind: stepNotFound}
		}
		rest := v.remaining[1:]
		if len(rest) == 0 {
			return stepResult{kind: stepLeaf, val: v.val, owner: v.owner}
		}
		return stepResult{
			kind: stepContainer,
			nextScope: scope{
				virtual:        &virtualDot{remaining: rest, val: v.val, owner: v.owner},
				container:      sc.container,
				noHeaderLookup: sc.noHeaderLookup,
			},
		}
	}

	for _, kv := range sc.entries {
		if len(kv.KeyParts) == 0 || kv.KeyParts[0].Unquoted != key {
			continue
		}
		if len(kv.KeyParts) == 1 {
			return stepResult{kind: stepLeaf, val: kv.Val, owner: kv}
		}
		return stepResult{
			kind: stepContainer,
			nextScope: scope{
				virtual:        &virtualDot{remaining: kv.KeyParts[1:], val: kv.Val, owner: kv},
				container:      sc.container,
				noHeaderLookup: sc.noHeaderLookup,
			},
		}
	}

	if sc.noHeaderLookup {
		return stepResult{kind: stepNotFound}
	}

	if tbl := r.childTables[sc.container][key]; tbl != nil {
		return stepResult{
			kind: stepContainer,
			val:  tbl,
			nextScope: scope{
				entries:   tbl.Entries,
				container: tbl,
			},
		}
	}
	if grp := r.childGroups[sc.container][key]; len(grp) > 0 {
		return stepResult{kind: stepGroup, group: grp}
	}
	return stepResult{kind: stepNotFound}
}

// resolved describes exactly where a path landed: Value is always set on
// success; Owner/ArrOwner describe the one mutable location SetValue would
// replace, when there is one.
type resolved struct {
	Value    Node
	OwnerKV  *KeyValue
	ArrOwner *ArrayNode
	ArrIdx   int
}

// resolve walks a parsed path expression against the document, implementing
// §4.D's resolution rules: dotted keys peel one component at a time,
// "[N]" selects an element of an array-of-tables group or of an array
// value, and inline tables/tables are transparent containers for further
// segments.
func (r *resolver) resolve(segs []PathSegment) (*resolved, bool) {
	if len(segs) == 0 {
		return &resolved{Value: r.doc}, true
	}

	sc := scope{entries: rootEntries(r.doc)}
	var last resolved
	last.ArrIdx = -1

	i := 0
	for i < len(segs) {
		seg := segs[i]
		if seg.isIndex() {
			return nil, false
		}

		res := r.step(sc, seg.Key)
		switch res.kind {
		case stepGroup:
			i++
			if i >= len(segs) || !segs[i].isIndex() {
				return nil, false
			}
			idx := segs[i].Index
			if idx < 0 || idx >= len(res.group) {
				return nil, false
			}
			inst := res.group[idx]
			sc = scope{entries: inst.Entries, container: inst}
			last = resolved{Value: inst, ArrIdx: -1}
			i++

		case stepContainer:
			sc = res.nextScope
			if res.val != nil {
				last = resolved{Value: res.val, ArrIdx: -1}
			}
			i++

		case stepLeaf:
			last = resolved{Value: res.val, OwnerKV: res.owner, ArrIdx: -1}
			i++
			if i >= len(segs) {
				break
			}
			if segs[i].isIndex() {
				arr, ok := res.val.(*ArrayNode)
				if !ok {
					return nil, false
				}
				idx := segs[i].Index
				if idx < 0 || idx >= len(arr.Cells) {
					return nil, false
				}
				last = resolved{Value: arr.Cells[idx].Value, ArrOwner: arr, ArrIdx: idx}
				i++
				if i < len(segs) {
					it, ok := last.Value.(*InlineTableNode)
					if !ok {
						return nil, false
					}
					sc = scope{entries: it.Entries(), noHeaderLookup: true}
				}
				continue
			}
			it, ok := res.val.(*InlineTableNode)
			if !ok {
				return nil, false
			}
			sc = scope{entries: it.Entries(), noHeaderLookup: true}

		default:
			return nil, false
		}
	}

	return &last, true
}

// GetValue resolves path and returns the Node found there, or an error if
// the path does not resolve to anything in the document. An empty path
// refers to the document root itself.
func (f *Facade) GetValue(path string) (Node, error) {
	if f.doc == nil {
		return nil, ErrNilInput
	}
	if path == "" {
		return f.doc, nil
	}
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	res, ok := f.resolver().resolve(segs)
	if !ok {
		return nil, fmt.Errorf("toml: path %q not found", path)
	}
	return res.Value, nil
}

// GetChildren resolves path to a container (document root, table,
// array-of-tables element such as "fruit[0]", inline table, or array) and
// lists its immediate children. For the root, a table, or an
// array-of-tables element only its key/value lines are listed; tables opened
// beneath it by their own [header] or [[header]] are not. A path naming an
// array of tables without an index ("fruit") does not resolve and returns
// an error. Dotted-key siblings sharing a first component are grouped under
// one synthetic child, the same way a real nested table would appear. An
// empty path lists the document's root-level key/value entries.
func (f *Facade) GetChildren(path string) ([]Child, error) {
	if f.doc == nil {
		return nil, ErrNilInput
	}
	if path == "" {
		return groupedChildren(rootEntries(f.doc)), nil
	}

	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	res, ok := f.resolver().resolve(segs)
	if !ok {
		return nil, fmt.Errorf("toml: path %q not found", path)
	}

	switch v := res.Value.(type) {
	case *TableNode:
		return groupedChildren(v.Entries), nil
	case *ArrayOfTables:
		return groupedChildren(v.Entries), nil
	case *InlineTableNode:
		return groupedChildren(v.Entries()), nil
	case *ArrayNode:
		out := make([]Child, 0, len(v.Cells))
		for i, c := range v.Cells {
			out = append(out, Child{Index: i, Value: c.Value})
		}
		return out, nil
	case *Document:
		return groupedChildren(rootEntries(v)), nil
	default:
		return nil, fmt.Errorf("toml: path %q has no children", path)
	}
}

// groupedChildren buckets a flat entries list by first key component, so
// "b.c" and "b.d" show up as one child "b" whose value is a synthetic
// inline table of {c, d} - consistent with how a real nested table would
// be listed. Single-part entries pass through unchanged.
func groupedChildren(entries []*KeyValue) []Child {
	order := make([]string, 0, len(entries))
	buckets := make(map[string][]*KeyValue)
	for _, kv := range entries {
		if len(kv.KeyParts) == 0 {
			continue
		}
		first := kv.KeyParts[0].Unquoted
		if _, seen := buckets[first]; !seen {
			order = append(order, first)
		}
		buckets[first] = append(buckets[first], kv)
	}

	out := make([]Child, 0, len(order))
	for _, key := range order {
		group := buckets[key]
		if len(group) == 1 && len(group[0].KeyParts) == 1 {
			out = append(out, Child{Key: key, Index: -1, Value: group[0].Val})
			continue
		}
		synthetic := &InlineTableNode{baseNode: baseNode{nodeType: NodeInlineTable}}
		for _, kv := range group {
			raw := ""
			for j, part := range kv.KeyParts[1:] {
				if j > 0 {
					raw += "."
				}
				raw += part.Text
			}
			synthetic.Cells = append(synthetic.Cells, InlineCell{
				KV: &KeyValue{baseNode: kv.baseNode, KeyParts: kv.KeyParts[1:], RawKey: raw, Val: kv.Val},
			})
		}
		out = append(out, Child{Key: key, Index: -1, Value: synthetic})
	}
	return out
}
