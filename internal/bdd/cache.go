// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"fmt"
	"math"
	"unsafe"
)

func _TRIPLE(a, b, c, length int) int {
	return _PAIR(c, _PAIR(a, b, length), length)
}

// _PAIR bijectively maps a pair of ints into a single int, then folds it
// into [0, length) with a modulo.
func _PAIR(a, b, length int) int {
	ua := uint64(a)
	ub := uint64(b)
	return int(((((ua + ub) * (ua + ub + 1)) / 2) + ua) % uint64(length))
}

const cacheidEXIST int = 0x0
const cacheidAPPEX int = 0x3
const cacheidREPLACE int = 0x0

type data4n struct {
	res, a, b, c int
}

type data4ncache struct {
	ratio  int
	opHit  int
	opMiss int
	table  []data4n
}

func (bc *data4ncache) init(size, ratio int) {
	size = primeGte(size)
	bc.table = make([]data4n, size)
	bc.ratio = ratio
	bc.reset()
}

func (bc *data4ncache) resize(size int) {
	if bc.ratio > 0 {
		size = primeGte((size * bc.ratio) / 100)
		bc.table = make([]data4n, size)
	}
	bc.reset()
}

func (bc *data4ncache) reset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

type data3n struct {
	res, a, c int
}

type data3ncache struct {
	ratio  int
	opHit  int
	opMiss int
	table  []data3n
}

func (bc *data3ncache) init(size, ratio int) {
	size = primeGte(size)
	bc.table = make([]data3n, size)
	bc.ratio = ratio
	bc.reset()
}

func (bc *data3ncache) resize(size int) {
	if bc.ratio > 0 {
		size = primeGte((size * bc.ratio) / 100)
		bc.table = make([]data3n, size)
	}
	bc.reset()
}

func (bc *data3ncache) reset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

func (b *BDD) cacheinit(c *configs) {
	size := 10000
	if c.cachesize != 0 {
		size = c.cachesize
	}
	size = primeGte(size)
	b.applycache = &applycache{}
	b.applycache.init(size, c.cacheratio)
	b.itecache = &itecache{}
	b.itecache.init(size, c.cacheratio)
	b.quantcache = &quantcache{}
	b.quantcache.init(size, c.cacheratio)
	b.quantset = make([]int32, b.varnum)
	b.appexcache = &appexcache{}
	b.appexcache.init(size, c.cacheratio)
	b.replacecache = &replacecache{}
	b.replacecache.init(size, c.cacheratio)
}

func (b *BDD) cachereset() {
	b.applycache.reset()
	b.itecache.reset()
	b.quantcache.reset()
	b.appexcache.reset()
	b.replacecache.reset()
}

func (b *BDD) cacheresize(nodesize int) {
	b.applycache.resize(nodesize)
	b.itecache.resize(nodesize)
	b.quantcache.resize(nodesize)
	b.appexcache.resize(nodesize)
	b.replacecache.resize(nodesize)
}

// quantset2cache paints the quantification variable set used by Exist/AppEx
// into the shared b.quantset array, the way Makeset paints a cube.
func (b *BDD) quantset2cache(n int) error {
	if n < 2 {
		return b.seterrorAsError("illegal variable (%d) in varset", n)
	}
	b.quantsetID++
	if b.quantsetID == math.MaxInt32 {
		b.quantset = make([]int32, b.varnum)
		b.quantsetID = 1
	}
	for i := n; i > 1; i = b.high(i) {
		b.quantset[b.level(i)] = b.quantsetID
		b.quantlast = b.level(i)
	}
	return nil
}

func (b *BDD) seterrorAsError(format string, a ...interface{}) error {
	b.seterror(format, a...)
	return b.err
}

// applycache: hash is #(left, right, op); Not uses #(n).
type applycache struct {
	data4ncache
	op int
}

func (bc *applycache) matchapply(left, right int) int {
	entry := bc.table[_TRIPLE(left, right, bc.op, len(bc.table))]
	if entry.a == left && entry.b == right && entry.c == bc.op {
		if _DEBUG {
			bc.opHit++
		}
		return entry.res
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (bc *applycache) setapply(left, right, res int) int {
	bc.table[_TRIPLE(left, right, bc.op, len(bc.table))] = data4n{a: left, b: right, c: bc.op, res: res}
	return res
}

func (bc *applycache) matchnot(n int) int {
	entry := bc.table[n%len(bc.table)]
	if entry.a == n && entry.c == int(opnot) {
		return entry.res
	}
	return -1
}

func (bc *applycache) setnot(n, res int) int {
	bc.table[n%len(bc.table)] = data4n{a: n, c: int(opnot), res: res}
	return res
}

func (bc applycache) String() string {
	return fmt.Sprintf("== Apply cache  %d (%s)\n Hits: %d, Miss: %d\n",
		len(bc.table), humanSize(len(bc.table), unsafe.Sizeof(data4n{})), bc.opHit, bc.opMiss)
}

// itecache: hash is #(f,g,h).
type itecache struct{ data4ncache }

func (bc *itecache) matchite(f, g, h int) int {
	entry := bc.table[_TRIPLE(f, g, h, len(bc.table))]
	if entry.a == f && entry.b == g && entry.c == h {
		return entry.res
	}
	return -1
}

func (bc *itecache) setite(f, g, h, res int) int {
	bc.table[_TRIPLE(f, g, h, len(bc.table))] = data4n{a: f, b: g, c: h, res: res}
	return res
}

func (bc itecache) String() string {
	return fmt.Sprintf("== ITE cache    %d (%s)\n Hits: %d, Miss: %d\n",
		len(bc.table), humanSize(len(bc.table), unsafe.Sizeof(data4n{})), bc.opHit, bc.opMiss)
}

// quantcache: hash is #(n, varset, quantid).
type quantcache struct {
	data4ncache
	id int
}

func (bc *quantcache) matchquant(n, varset int) int {
	entry := bc.table[_PAIR(n, varset, len(bc.table))]
	if entry.a == n && entry.b == varset && entry.c == bc.id {
		return entry.res
	}
	return -1
}

func (bc *quantcache) setquant(n, varset, res int) int {
	bc.table[_PAIR(n, varset, len(bc.table))] = data4n{a: n, b: varset, c: bc.id, res: res}
	return res
}

func (bc quantcache) String() string {
	return fmt.Sprintf("== Quant cache  %d (%s)\n Hits: %d, Miss: %d\n",
		len(bc.table), humanSize(len(bc.table), unsafe.Sizeof(data4n{})), bc.opHit, bc.opMiss)
}

// appexcache: hash is #(left, right, id) where id encodes varset and op so
// a single table serves every AppEx call.
type appexcache struct {
	data4ncache
	op, id int
}

func (bc *appexcache) matchappex(left, right int) int {
	entry := bc.table[_TRIPLE(left, right, bc.id, len(bc.table))]
	if entry.a == left && entry.b == right && entry.c == bc.id {
		return entry.res
	}
	return -1
}

func (bc *appexcache) setappex(left, right, res int) int {
	bc.table[_TRIPLE(left, right, bc.id, len(bc.table))] = data4n{a: left, b: right, c: bc.id, res: res}
	return res
}

func (bc appexcache) String() string {
	return fmt.Sprintf("== AppEx cache  %d (%s)\n Hits: %d, Miss: %d\n",
		len(bc.table), humanSize(len(bc.table), unsafe.Sizeof(data4n{})), bc.opHit, bc.opMiss)
}

// replacecache: hash is #(n).
type replacecache struct {
	data3ncache
	id int
}

func (bc *replacecache) matchreplace(n int) int {
	entry := bc.table[n%len(bc.table)]
	if entry.a == n && entry.c == bc.id {
		return entry.res
	}
	return -1
}

func (bc *replacecache) setreplace(n, res int) int {
	bc.table[n%len(bc.table)] = data3n{a: n, c: bc.id, res: res}
	return res
}

func (bc replacecache) String() string {
	return fmt.Sprintf("== Replace      %d (%s)\n Hits: %d, Miss: %d\n",
		len(bc.table), humanSize(len(bc.table), unsafe.Sizeof(data3n{})), bc.opHit, bc.opMiss)
}
