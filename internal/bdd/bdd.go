// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package bdd implements a minimal Reduced Ordered Binary Decision Diagram
// manager. It is a close descendant of the hash-map-based ("hudd") BDD
// representation, adapted into a single self-consistent implementation and
// extended with the raw node-decomposition and single-assignment
// primitives (Var, Low, High, Satone, Support) a symbolic tableau needs to
// walk a BDD directly instead of only combining whole BDDs.
//
// Memory for BDD nodes is managed the way the teacher package manages it:
// external references are reference-counted, and a runtime.SetFinalizer
// hook decrements the count when a Node becomes unreachable to the Go
// garbage collector, so callers never explicitly free nodes.
package bdd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

var errNilNode = errors.New("nil node")
var errOutOfRange = errors.New("node index out of range")

// Node is a reference to a node in a BDD. It is the unit of every
// interaction with a Manager.
type Node *int

var zeroID, oneID = 0, 1

// bddzero and bddone are the canonical constant nodes, never finalized.
var bddzero Node = &zeroID
var bddone Node = &oneID

// huddnode is one entry of the node table.
type huddnode struct {
	level  int32 // variable order of this node
	low    int   // index of the false branch
	high   int   // index of the true branch
	refcou int32 // external reference count (+ a mark bit)
}

// BDD is a single ROBDD manager: a node table, its unique table, the
// variable-to-literal mapping, and the operation caches. Each decision
// query gets its own fresh BDD (see SPEC_FULL.md §5: no shared mutable
// state across concurrent queries).
type BDD struct {
	configs

	varnum  int32
	varset  [][2]int // varset[k] = {ithvar(k), nithvar(k)} node ids
	refstack []int

	err error
	log hclog.Logger

	nodes         []huddnode
	unique        map[[huddsize]byte]int
	freenum       int
	freepos       int
	produced      int
	hbuff         [huddsize]byte
	nodefinalizer interface{}

	uniqueAccess, uniqueHit, uniqueMiss int
	gcHistory                           []gcpoint

	applycache   *applycache
	itecache     *itecache
	quantcache   *quantcache
	appexcache   *appexcache
	replacecache *replacecache
	quantset     []int32
	quantsetID   int32
	quantlast    int32

	reorder reorderState
}

type gcpoint struct {
	nodes     int
	freenodes int
}

// New returns a fresh BDD manager with varnum variables, configured by the
// given options (Nodesize, Cachesize, Cacheratio, Maxnodesize,
// Maxnodeincrease, Minfreenodes).
func New(varnum int, options ...func(*configs)) (*BDD, error) {
	b := &BDD{}
	if varnum < 1 || varnum > int(_MAXVAR) {
		b.seterror("bad number of variables (%d)", varnum)
		return nil, b.err
	}
	config := makeconfigs(varnum)
	for _, f := range options {
		f(config)
	}
	b.configs = *config
	b.varnum = int32(varnum)
	b.varset = make([][2]int, varnum)
	b.refstack = make([]int, 0, 2*varnum+4)
	b.initref()

	nodesize := config.nodesize
	b.nodes = make([]huddnode, nodesize)
	for k := range b.nodes {
		b.nodes[k] = huddnode{level: 0, low: -1, high: k + 1, refcou: 0}
	}
	b.nodes[nodesize-1].high = 0
	b.unique = make(map[[huddsize]byte]int, nodesize)

	b.nodes[0] = huddnode{level: int32(config.varnum), low: 0, high: 0, refcou: _MAXREFCOUNT}
	b.nodes[1] = huddnode{level: int32(config.varnum), low: 1, high: 1, refcou: _MAXREFCOUNT}
	b.freepos = 2
	b.freenum = len(b.nodes) - 2

	for k := 0; k < config.varnum; k++ {
		v0, err := b.makenode(int32(k), 0, 1, nil)
		if err != nil && v0 < 0 {
			b.seterror("cannot allocate variable %d", k)
			return nil, b.err
		}
		b.nodes[v0].refcou = _MAXREFCOUNT
		b.pushref(v0)
		v1, err := b.makenode(int32(k), 1, 0, nil)
		if err != nil && v1 < 0 {
			b.seterror("cannot allocate variable %d", k)
			return nil, b.err
		}
		b.nodes[v1].refcou = _MAXREFCOUNT
		b.popref(1)
		b.varset[k] = [2]int{v0, v1}
	}
	b.nodefinalizer = func(n *int) {
		b.nodes[*n].refcou--
	}
	b.cacheinit(config)
	return b, nil
}

// Varnum returns the number of variables known to b.
func (b *BDD) Varnum() int { return int(b.varnum) }

// True returns the constant-true node.
func (b *BDD) True() Node { return bddone }

// False returns the constant-false node.
func (b *BDD) False() Node { return bddzero }

// From returns bddone or bddzero for the given boolean.
func (b *BDD) From(v bool) Node {
	if v {
		return bddone
	}
	return bddzero
}

// Ithvar returns the positive literal of variable i.
func (b *BDD) Ithvar(i int) Node {
	if i < 0 || i >= int(b.varnum) {
		return b.seterror("variable out of range in Ithvar (%d)", i)
	}
	return b.retnode(b.varset[i][0])
}

// NIthvar returns the negative literal of variable i.
func (b *BDD) NIthvar(i int) Node {
	if i < 0 || i >= int(b.varnum) {
		return b.seterror("variable out of range in NIthvar (%d)", i)
	}
	return b.retnode(b.varset[i][1])
}

func (b *BDD) checkptr(n Node) error {
	if n == nil {
		return errNilNode
	}
	if *n < 0 || *n >= len(b.nodes) {
		return errOutOfRange
	}
	return nil
}

func humanSize(n int, elem uintptr) string {
	bytes := float64(n) * float64(elem)
	units := []string{"B", "KiB", "MiB", "GiB"}
	i := 0
	for bytes >= 1024 && i < len(units)-1 {
		bytes /= 1024
		i++
	}
	return fmt.Sprintf("%.3g %s", bytes, units[i])
}
