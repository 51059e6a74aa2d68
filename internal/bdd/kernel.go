// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import "github.com/pkg/errors"

// number of bytes needed to hash a (level, low, high) triplet, adapted from
// uintSize in the math/bits package
const huddsize = (2*(32<<(^uint(0)>>32&1)) + 32) / 8 // 12 (32 bits) or 20 (64 bits)

// _MINFREENODES is the minimal percentage of nodes that must be left after
// a garbage collection, or a resize is triggered instead.
const _MINFREENODES int = 20

// _MAXVAR is the maximal number of levels (and so the max number of
// variables). We reserve 11 bits out of 32 for node markings.
const _MAXVAR int32 = 0x1FFFFF

// _MAXREFCOUNT is the maximal value of a node's reference counter; also the
// value used to pin permanent nodes (constants, variables) in the table.
const _MAXREFCOUNT int32 = 0x3FF

// _DEFAULTMAXNODEINC bounds the number of nodes added per resize.
const _DEFAULTMAXNODEINC int = 1 << 20

// _DEBUG toggles the extra unique-table hit/miss counters the teacher
// package gated behind a "debug" build tag. It is a constant false here, so
// that bookkeeping is compiled out; GC and resize diagnostics go through the
// logger instead.
const _DEBUG bool = false

var errMemory = errors.New("unable to free memory or resize BDD")
var errResize = errors.New("should cache resize") // after gbc and noderesize
var errReset = errors.New("should cache reset")    // after gbc alone
