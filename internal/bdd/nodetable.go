// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"math"
	"runtime"
)

func (b *BDD) ismarked(n int) bool {
	return (b.nodes[n].refcou & 0x200000) != 0
}

func (b *BDD) marknode(n int) {
	b.nodes[n].refcou |= 0x200000
}

func (b *BDD) unmarknode(n int) {
	b.nodes[n].refcou &= 0x1FFFFF
}

// retnode wraps a raw node index as an externally reference-counted Node.
// The finalizer decrements the reference count once the Go garbage
// collector decides the Node is unreachable, mirroring the teacher
// package's hudd.go memory-management idiom.
func (b *BDD) retnode(n int) Node {
	if n < 0 || n > len(b.nodes) {
		return nil
	}
	if n == 0 {
		return bddzero
	}
	if n == 1 {
		return bddone
	}
	x := n
	if b.nodes[n].refcou < _MAXREFCOUNT {
		b.nodes[n].refcou++
		runtime.SetFinalizer(&x, b.nodefinalizer)
	}
	return &x
}

func (b *BDD) huddhash(level int32, low, high int) {
	b.hbuff[0] = byte(level)
	b.hbuff[1] = byte(level >> 8)
	b.hbuff[2] = byte(level >> 16)
	b.hbuff[3] = byte(level >> 24)
	b.hbuff[4] = byte(low)
	b.hbuff[5] = byte(low >> 8)
	b.hbuff[6] = byte(low >> 16)
	b.hbuff[7] = byte(low >> 24)
	if huddsize == 20 {
		b.hbuff[8] = byte(low >> 32)
		b.hbuff[9] = byte(low >> 40)
		b.hbuff[10] = byte(low >> 48)
		b.hbuff[11] = byte(low >> 56)
		b.hbuff[12] = byte(high)
		b.hbuff[13] = byte(high >> 8)
		b.hbuff[14] = byte(high >> 16)
		b.hbuff[15] = byte(high >> 24)
		b.hbuff[16] = byte(high >> 32)
		b.hbuff[17] = byte(high >> 40)
		b.hbuff[18] = byte(high >> 48)
		b.hbuff[19] = byte(high >> 56)
		return
	}
	b.hbuff[8] = byte(high)
	b.hbuff[9] = byte(high >> 8)
	b.hbuff[10] = byte(high >> 16)
	b.hbuff[11] = byte(high >> 24)
}

func (b *BDD) nodehash(level int32, low, high int) (int, bool) {
	b.huddhash(level, low, high)
	hn, ok := b.unique[b.hbuff]
	return hn, ok
}

func (b *BDD) setnode(level int32, low, high int, count int32) int {
	b.huddhash(level, low, high)
	b.freenum--
	b.unique[b.hbuff] = b.freepos
	res := b.freepos
	b.freepos = b.nodes[b.freepos].high
	b.nodes[res] = huddnode{level, low, high, count}
	return res
}

func (b *BDD) delnode(hn huddnode) {
	b.huddhash(hn.level, hn.low, hn.high)
	delete(b.unique, b.hbuff)
}

func (b *BDD) level(n int) int32 { return b.nodes[n].level }
func (b *BDD) low(n int) int     { return b.nodes[n].low }
func (b *BDD) high(n int) int    { return b.nodes[n].high }
func (b *BDD) size() int         { return len(b.nodes) }

// makenode returns the (unique) node for (level, low, high), building it if
// necessary. When the table is full, it first tries garbage collection
// then, if that still leaves no room, a resize.
func (b *BDD) makenode(level int32, low, high int, refstack []int) (int, error) {
	if low == high {
		return low, nil
	}
	if _DEBUG {
		b.uniqueAccess++
	}
	if res, ok := b.nodehash(level, low, high); ok {
		if _DEBUG {
			b.uniqueHit++
		}
		return res, nil
	}
	if _DEBUG {
		b.uniqueMiss++
	}
	var err error
	if b.freepos == 0 {
		b.gbc(refstack)
		err = errReset
		if (b.freenum*100)/len(b.nodes) <= b.minfreenodes {
			err = b.noderesize()
			if err != errResize {
				return -1, errMemory
			}
		}
		if b.freepos == 0 {
			return -1, errMemory
		}
	}
	b.produced++
	return b.setnode(level, low, high, 0), err
}

// gbc runs a mark-and-sweep garbage collection over the node table, keeping
// only nodes reachable from refstack or still externally referenced.
func (b *BDD) gbc(refstack []int) {
	if b.log != nil && b.log.IsTrace() {
		b.log.Trace("bdd gc start", "nodes", len(b.nodes), "free", b.freenum)
	}
	b.gcHistory = append(b.gcHistory, gcpoint{nodes: len(b.nodes), freenodes: b.freenum})
	for _, r := range refstack {
		b.markrec(r)
	}
	for k := range b.nodes {
		if b.nodes[k].refcou > 0 {
			b.markrec(k)
		}
	}
	b.freepos = 0
	b.freenum = 0
	for n := len(b.nodes) - 1; n > 1; n-- {
		if b.ismarked(n) && b.nodes[n].low != -1 {
			b.unmarknode(n)
		} else {
			b.delnode(b.nodes[n])
			b.nodes[n].low = -1
			b.nodes[n].high = b.freepos
			b.freepos = n
			b.freenum++
		}
	}
	if b.log != nil && b.log.IsTrace() {
		b.log.Trace("bdd gc done", "free", b.freenum)
	}
}

func (b *BDD) noderesize() error {
	oldsize := len(b.nodes)
	if oldsize >= b.maxnodesize && b.maxnodesize > 0 {
		return errMemory
	}
	nodesize := oldsize
	if oldsize > (math.MaxInt32 >> 1) {
		nodesize = math.MaxInt32 - 1
	} else {
		nodesize = nodesize << 1
	}
	if b.maxnodeincrease > 0 && nodesize > oldsize+b.maxnodeincrease {
		nodesize = oldsize + b.maxnodeincrease
	}
	if nodesize > b.maxnodesize && b.maxnodesize > 0 {
		nodesize = b.maxnodesize
	}
	if nodesize <= oldsize {
		return errMemory
	}

	tmp := b.nodes
	b.nodes = make([]huddnode, nodesize)
	copy(b.nodes, tmp)
	for n := oldsize; n < nodesize; n++ {
		b.nodes[n] = huddnode{level: 0, low: -1, high: n + 1, refcou: 0}
	}
	b.nodes[nodesize-1].high = b.freepos
	b.freepos = oldsize
	b.freenum += nodesize - oldsize
	b.cacheresize(len(b.nodes))
	if b.log != nil && b.log.IsTrace() {
		b.log.Trace("bdd resize", "from", oldsize, "to", nodesize)
	}
	return errResize
}

func (b *BDD) markrec(n int) {
	if n < 2 || b.ismarked(n) || b.nodes[n].low == -1 {
		return
	}
	b.marknode(n)
	b.markrec(b.nodes[n].low)
	b.markrec(b.nodes[n].high)
}

func (b *BDD) unmarkall() {
	for k, v := range b.nodes {
		if k < 2 || !b.ismarked(k) || v.low == -1 {
			continue
		}
		b.unmarknode(k)
	}
}

func (b *BDD) initref() { b.refstack = b.refstack[:0] }

func (b *BDD) pushref(n int) int {
	b.refstack = append(b.refstack, n)
	return n
}

func (b *BDD) popref(a int) { b.refstack = b.refstack[:len(b.refstack)-a] }

// allnodesfrom visits every node reachable from the roots in n.
func (b *BDD) allnodesfrom(f func(id, level, low, high int) error, n []Node) error {
	for _, v := range n {
		b.markrec(*v)
	}
	count := len(b.nodes)
	for k := 0; k < count; k++ {
		if b.ismarked(k) {
			b.unmarknode(k)
			if err := f(k, int(b.nodes[k].level), b.nodes[k].low, b.nodes[k].high); err != nil {
				b.unmarkall()
				return err
			}
		}
	}
	return nil
}

// allnodes visits every active node in the table.
func (b *BDD) allnodes(f func(id, level, low, high int) error) error {
	count := len(b.nodes)
	for k := 0; k < count; k++ {
		v := b.nodes[k]
		if v.low != -1 {
			if err := f(k, int(v.level), v.low, v.high); err != nil {
				return err
			}
		}
	}
	return nil
}
