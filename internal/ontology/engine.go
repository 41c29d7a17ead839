package ontology

import (
	"math"
	"slices"
	"sync"

	"github.com/yash/laeportal/internal/motion"
	"github.com/yash/laeportal/pkg/models"
)

const defaultSlabCap = 256

// slot is the internal storage unit: the public Node data plus adjacency
// lists.
type slot struct {
	Node
	out []halfEdge
	in  []halfEdge
}

// Engine is the thread-safe network graph.
//
// Storage layout:
//   - Dense append-only slot slice; re-adding an ID replaces it in place
//   - Per-node adjacency lists (out/in halfEdge slices) for O(degree) traversal
//
// Indexes:
//   - idIdx:   node ID           → slot index   (primary, all types)
//   - typeIdx: NodeType          → []slot index (insertion order)
//   - nameIdx: NodeType, "name"  → slot index
//
// Concurrency: sync.RWMutex. Mutations take a write lock, queries take a
// read lock. ForEach* callbacks receive internal pointers valid only for the
// duration of the callback.
type Engine struct {
	mu sync.RWMutex

	slots []slot

	idIdx   map[string]uint32
	typeIdx [nodeTypeCount][]uint32
	nameIdx [nodeTypeCount]map[string]uint32

	onNodeAdded func(id string)
}

// EngineOption configures an Engine instance.
type EngineOption func(*Engine)

// WithCapacity sets the initial capacity for nodes.
func WithCapacity(nodeCap int) EngineOption {
	return func(e *Engine) {
		e.slots = make([]slot, 0, nodeCap)
		e.idIdx = make(map[string]uint32, nodeCap)
	}
}

// WithNodeAddedCallback sets a callback invoked when a new node is added.
func WithNodeAddedCallback(fn func(id string)) EngineOption {
	return func(e *Engine) {
		e.onNodeAdded = fn
	}
}

// New creates an empty Engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		slots: make([]slot, 0, defaultSlabCap),
		idIdx: make(map[string]uint32, defaultSlabCap),
	}
	for i := range e.nameIdx {
		e.nameIdx[i] = make(map[string]uint32)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =========================================================================
// Mutation (write-locked)
// =========================================================================

// AddNode inserts a node into the graph. If a node with the same ID already
// exists it is replaced in place and its edges are cleared.
func (e *Engine) AddNode(n Node) {
	e.mu.Lock()
	if prev, exists := e.idIdx[n.ID]; exists {
		e.removeEdgesFor(prev)
		e.unindexName(prev)
		if old := e.slots[prev].Node.Type; old != n.Type {
			e.removeFromTypeIndex(old, prev)
			e.typeIdx[n.Type] = append(e.typeIdx[n.Type], prev)
		}
		e.slots[prev].Node = n
		e.indexName(prev)
		e.mu.Unlock()
		return
	}

	idx := e.alloc()
	e.slots[idx].Node = n
	e.idIdx[n.ID] = idx
	e.typeIdx[n.Type] = append(e.typeIdx[n.Type], idx)
	e.indexName(idx)

	callback := e.onNodeAdded
	e.mu.Unlock()

	if callback != nil {
		callback(n.ID)
	}
}

// AddEdge creates a directed relationship between two nodes identified by ID.
func (e *Engine) AddEdge(fromID, toID string, rel RelationType) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	src, ok1 := e.idIdx[fromID]
	dst, ok2 := e.idIdx[toID]
	if !ok1 || !ok2 {
		return false
	}

	e.slots[src].out = append(e.slots[src].out, halfEdge{target: dst, rel: rel})
	e.slots[dst].in = append(e.slots[dst].in, halfEdge{target: src, rel: rel})
	return true
}

// =========================================================================
// Query: copy-based (read-locked, safe to use after return)
// =========================================================================

// GetNode returns a deep copy of the node with the given ID.
func (e *Engine) GetNode(id string) (Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.idIdx[id]
	if !ok {
		return Node{}, false
	}
	return e.cloneNode(idx), true
}

// GetByName looks up a node of the given type by its exact name.
func (e *Engine) GetByName(ntype NodeType, name string) (Node, bool) {
	if ntype >= nodeTypeCount {
		return Node{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.nameIdx[ntype][name]
	if !ok {
		return Node{}, false
	}
	return e.cloneNode(idx), true
}

// FindByType returns deep copies of all nodes of the given type in
// insertion order.
func (e *Engine) FindByType(ntype NodeType) []Node {
	if ntype >= nodeTypeCount {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	indices := e.typeIdx[ntype]
	result := make([]Node, 0, len(indices))
	for _, idx := range indices {
		result = append(result, e.cloneNode(idx))
	}
	return result
}

// NearestOfType returns the node of the given type whose "location" is
// closest to pos, with its distance in km. Nodes without a location are
// skipped.
func (e *Engine) NearestOfType(ntype NodeType, pos models.Position) (Node, float64, bool) {
	if ntype >= nodeTypeCount {
		return Node{}, 0, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	best := uint32(math.MaxUint32)
	bestDist := math.Inf(1)
	for _, idx := range e.typeIdx[ntype] {
		lat, lng, ok := e.slots[idx].Node.GetLocation(KeyLocation)
		if !ok {
			continue
		}
		d := motion.DistanceKM(pos, models.Position{Lat: lat, Lng: lng})
		if d < bestDist {
			best, bestDist = idx, d
		}
	}
	if best == math.MaxUint32 {
		return Node{}, 0, false
	}
	return e.cloneNode(best), bestDist, true
}

// EdgesFrom returns all outgoing edges from a node.
func (e *Engine) EdgesFrom(id string) []Edge {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.idIdx[id]
	if !ok {
		return nil
	}
	s := &e.slots[idx]
	edges := make([]Edge, 0, len(s.out))
	for _, he := range s.out {
		edges = append(edges, Edge{
			FromID:   id,
			ToID:     e.slots[he.target].Node.ID,
			Relation: he.rel,
		})
	}
	return edges
}

// EdgesTo returns all incoming edges to a node.
func (e *Engine) EdgesTo(id string) []Edge {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.idIdx[id]
	if !ok {
		return nil
	}
	s := &e.slots[idx]
	edges := make([]Edge, 0, len(s.in))
	for _, he := range s.in {
		edges = append(edges, Edge{
			FromID:   e.slots[he.target].Node.ID,
			ToID:     id,
			Relation: he.rel,
		})
	}
	return edges
}

// =========================================================================
// Query: callback-based (read-locked, pointer valid only in callback)
// =========================================================================

// Prop returns a single property value without copying the full node.
func (e *Engine) Prop(id, key string) (PropVal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.idIdx[id]
	if !ok {
		return PropVal{}, false
	}
	return e.slots[idx].Node.Get(key)
}

// ForEachNodeOfType calls fn for every node of the given type in
// insertion order. Return false to stop early.
func (e *Engine) ForEachNodeOfType(ntype NodeType, fn func(n *Node) bool) {
	if ntype >= nodeTypeCount {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, idx := range e.typeIdx[ntype] {
		if !fn(&e.slots[idx].Node) {
			return
		}
	}
}

// ForEachEdgeFrom calls fn for every outgoing edge.
func (e *Engine) ForEachEdgeFrom(id string, fn func(rel RelationType, neighbor *Node) bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.idIdx[id]
	if !ok {
		return
	}
	for _, he := range e.slots[idx].out {
		if !fn(he.rel, &e.slots[he.target].Node) {
			return
		}
	}
}

// ForEachEdgeTo calls fn for every incoming edge.
func (e *Engine) ForEachEdgeTo(id string, fn func(rel RelationType, neighbor *Node) bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, ok := e.idIdx[id]
	if !ok {
		return
	}
	for _, he := range e.slots[idx].in {
		if !fn(he.rel, &e.slots[he.target].Node) {
			return
		}
	}
}

// =========================================================================
// Stats
// =========================================================================

// Size returns the number of nodes.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.idIdx)
}

// EdgeCount returns the total number of directed edges.
func (e *Engine) EdgeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	count := 0
	for i := range e.slots {
		count += len(e.slots[i].out)
	}
	return count
}

// TypeCount returns the number of nodes of a given type.
func (e *Engine) TypeCount(ntype NodeType) int {
	if ntype >= nodeTypeCount {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.typeIdx[ntype])
}

// =========================================================================
// Internal helpers
// =========================================================================

func (e *Engine) alloc() uint32 {
	idx := uint32(len(e.slots))
	e.slots = append(e.slots, slot{})
	return idx
}

// cloneNode returns a deep copy of the node at idx.
func (e *Engine) cloneNode(idx uint32) Node {
	src := &e.slots[idx].Node
	n := Node{ID: src.ID, Type: src.Type}
	if len(src.Props) > 0 {
		n.Props = make([]Property, len(src.Props))
		copy(n.Props, src.Props)
		for i := range n.Props {
			if n.Props[i].Val.List != nil {
				n.Props[i].Val.List = slices.Clone(n.Props[i].Val.List)
			}
		}
	}
	return n
}

func (e *Engine) indexName(idx uint32) {
	n := &e.slots[idx].Node
	if name, ok := n.GetString(KeyName); ok && name != "" {
		e.nameIdx[n.Type][name] = idx
	}
}

func (e *Engine) unindexName(idx uint32) {
	n := &e.slots[idx].Node
	if name, ok := n.GetString(KeyName); ok {
		if cur, ok := e.nameIdx[n.Type][name]; ok && cur == idx {
			delete(e.nameIdx[n.Type], name)
		}
	}
}

// removeFromTypeIndex removes idx from the type index, preserving order.
func (e *Engine) removeFromTypeIndex(ntype NodeType, idx uint32) {
	if i := slices.Index(e.typeIdx[ntype], idx); i >= 0 {
		e.typeIdx[ntype] = slices.Delete(e.typeIdx[ntype], i, i+1)
	}
}

// removeEdgesFor clears all adjacency-list entries involving the given slot.
func (e *Engine) removeEdgesFor(idx uint32) {
	s := &e.slots[idx]
	for _, he := range s.out {
		peer := &e.slots[he.target]
		peer.in = filterOutHalfEdge(peer.in, idx)
	}
	for _, he := range s.in {
		peer := &e.slots[he.target]
		peer.out = filterOutHalfEdge(peer.out, idx)
	}
	s.out = nil
	s.in = nil
}

// filterOutHalfEdge removes all half-edges targeting idx in place.
func filterOutHalfEdge(edges []halfEdge, target uint32) []halfEdge {
	j := 0
	for _, he := range edges {
		if he.target != target {
			edges[j] = he
			j++
		}
	}
	return edges[:j]
}
