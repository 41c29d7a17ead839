package ontology

import (
	"slices"
	"sort"
)

// ---------------------------------------------------------------------------
// Node types
// ---------------------------------------------------------------------------

// NodeType identifies the category of a network node.
type NodeType uint8

const (
	TypeStation NodeType = iota
	TypeAsset
	TypeOperator
	TypeFlight
	TypeIncident
	TypeService
	TypeTrip
	nodeTypeCount // must be last
)

var nodeTypeNames = [nodeTypeCount]string{
	TypeStation:  "station",
	TypeAsset:    "asset",
	TypeOperator: "operator",
	TypeFlight:   "flight",
	TypeIncident: "incident",
	TypeService:  "service",
	TypeTrip:     "trip",
}

func (t NodeType) String() string {
	if t < nodeTypeCount {
		return nodeTypeNames[t]
	}
	return "unknown"
}

// ParseNodeType converts a string like "station" to its NodeType constant.
func ParseNodeType(s string) (NodeType, bool) {
	for i, name := range nodeTypeNames {
		if name == s {
			return NodeType(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Relationship types
// ---------------------------------------------------------------------------

// RelationType identifies the kind of directed relationship between nodes.
type RelationType uint8

const (
	RelOperates    RelationType = iota // operator -> flight
	RelDepartsFrom                     // flight -> asset
	RelArrivesAt                       // flight -> asset
	RelAffects                         // incident -> asset
	RelServes                          // operator -> service
	relTypeCount
)

var relTypeNames = [relTypeCount]string{
	RelOperates:    "operates",
	RelDepartsFrom: "departs_from",
	RelArrivesAt:   "arrives_at",
	RelAffects:     "affects",
	RelServes:      "serves",
}

func (r RelationType) String() string {
	if r < relTypeCount {
		return relTypeNames[r]
	}
	return "unknown"
}

// ParseRelationType converts a string like "operates" to its RelationType.
func ParseRelationType(s string) (RelationType, bool) {
	for i, name := range relTypeNames {
		if name == s {
			return RelationType(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Typed property system
// ---------------------------------------------------------------------------

// PropType identifies the data type stored in a PropVal.
type PropType uint8

const (
	PropString   PropType = iota
	PropFloat
	PropLocation // lat/lng pair
	PropBool
	PropList // ordered strings
)

// PropVal is a value-type container for typed property data.
type PropVal struct {
	Str  string   // PropString
	List []string // PropList
	Num  float64  // PropFloat; latitude for PropLocation
	Num2 float64  // longitude for PropLocation
	Type PropType
	Flag bool // PropBool
}

// Value constructors --------------------------------------------------------

func StringVal(s string) PropVal { return PropVal{Type: PropString, Str: s} }
func FloatVal(f float64) PropVal { return PropVal{Type: PropFloat, Num: f} }
func IntVal(i int) PropVal       { return PropVal{Type: PropFloat, Num: float64(i)} }
func BoolVal(b bool) PropVal     { return PropVal{Type: PropBool, Flag: b} }
func ListVal(s []string) PropVal { return PropVal{Type: PropList, List: slices.Clone(s)} }
func LocationVal(lat, lng float64) PropVal {
	return PropVal{Type: PropLocation, Num: lat, Num2: lng}
}

// Accessors -----------------------------------------------------------------

func (v PropVal) AsString() string               { return v.Str }
func (v PropVal) AsFloat() float64               { return v.Num }
func (v PropVal) AsInt() int                     { return int(v.Num) }
func (v PropVal) AsBool() bool                   { return v.Flag }
func (v PropVal) AsList() []string               { return v.List }
func (v PropVal) AsLocation() (lat, lng float64) { return v.Num, v.Num2 }

// Property is a named, typed attribute stored on a node.
type Property struct {
	Key string
	Val PropVal
}

// ---------------------------------------------------------------------------
// Graph primitives
// ---------------------------------------------------------------------------

type halfEdge struct {
	target uint32
	rel    RelationType
}

// Edge is the external representation of a directed relationship.
type Edge struct {
	FromID   string       `json:"from"`
	ToID     string       `json:"to"`
	Relation RelationType `json:"relation"`
}

// ---------------------------------------------------------------------------
// Node
// ---------------------------------------------------------------------------

// Node is a vertex in the network graph. Props are kept sorted by Key.
type Node struct {
	ID    string
	Type  NodeType
	Props []Property // sorted by Key
}

// NewNode returns a node with the "name" property set.
func NewNode(id string, t NodeType, name string) Node {
	n := Node{ID: id, Type: t}
	n.SetString(KeyName, name)
	return n
}

// KeyName is indexed per node type; KeyLocation feeds NearestOfType.
const (
	KeyName     = "name"
	KeyLocation = "location"
)

// Get returns the value for a property key via binary search.
func (n *Node) Get(key string) (PropVal, bool) {
	i := n.propSearch(key)
	if i < 0 {
		return PropVal{}, false
	}
	return n.Props[i].Val, true
}

func (n *Node) GetString(key string) (string, bool) {
	v, ok := n.Get(key)
	return v.Str, ok
}

func (n *Node) GetFloat(key string) (float64, bool) {
	v, ok := n.Get(key)
	return v.Num, ok
}

func (n *Node) GetInt(key string) (int, bool) {
	v, ok := n.Get(key)
	return int(v.Num), ok
}

func (n *Node) GetBool(key string) (bool, bool) {
	v, ok := n.Get(key)
	return v.Flag, ok
}

func (n *Node) GetList(key string) ([]string, bool) {
	v, ok := n.Get(key)
	return v.List, ok
}

func (n *Node) GetLocation(key string) (lat, lng float64, ok bool) {
	v, found := n.Get(key)
	if !found || v.Type != PropLocation {
		return 0, 0, false
	}
	return v.Num, v.Num2, true
}

// Name is shorthand for the "name" property; empty when unset.
func (n *Node) Name() string {
	s, _ := n.GetString(KeyName)
	return s
}

// Set inserts or updates a typed property, maintaining sorted order.
func (n *Node) Set(key string, val PropVal) {
	i := sort.Search(len(n.Props), func(i int) bool {
		return n.Props[i].Key >= key
	})
	if i < len(n.Props) && n.Props[i].Key == key {
		n.Props[i].Val = val
		return
	}
	n.Props = append(n.Props, Property{})
	copy(n.Props[i+1:], n.Props[i:])
	n.Props[i] = Property{Key: key, Val: val}
}

// Convenience setters -------------------------------------------------------

func (n *Node) SetString(key, val string)        { n.Set(key, StringVal(val)) }
func (n *Node) SetFloat(key string, val float64) { n.Set(key, FloatVal(val)) }
func (n *Node) SetInt(key string, val int)       { n.Set(key, IntVal(val)) }
func (n *Node) SetBool(key string, val bool)     { n.Set(key, BoolVal(val)) }
func (n *Node) SetList(key string, val []string) { n.Set(key, ListVal(val)) }
func (n *Node) SetLocation(key string, lat, lng float64) {
	n.Set(key, LocationVal(lat, lng))
}

func (n *Node) propSearch(key string) int {
	i := sort.Search(len(n.Props), func(i int) bool {
		return n.Props[i].Key >= key
	})
	if i < len(n.Props) && n.Props[i].Key == key {
		return i
	}
	return -1
}
