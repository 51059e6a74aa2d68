// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

// reorderState tracks -reorder/-onlygamma/classify-mode's reorder toggle.
// The teacher package (rudd) never implements dynamic variable reordering —
// there is no bdd_reorder/bdd_autoreorder anywhere in the snapshot this repo
// was grounded on — so there is no variable-order algorithm to gate. This
// flag and ClearVarBlocks exist only so internal/config and internal/tableau
// have real, observable state to drive from the historical CLI surface
// (§6's -reorder/-onlygamma flags, §4.9's classify-mode extra disable);
// a future reordering implementation would consult reorderState.enabled at the
// points apply/ite currently never check.
type reorderState struct {
	enabled bool
}

// EnableReorder turns on the -reorder/-onlygamma flag's effect.
func (b *BDD) EnableReorder() { b.reorder.enabled = true }

// DisableReorder turns it back off (end of -onlygamma's Γ phase, or
// classify mode's unconditional post-Γ disable).
func (b *BDD) DisableReorder() { b.reorder.enabled = false }

// ReorderEnabled reports the current state, for tests and diagnostics.
func (b *BDD) ReorderEnabled() bool { return b.reorder.enabled }

// ClearVarBlocks resets any variable-block grouping accumulated so far.
// No-op today for the reason reorderState documents; kept as a named,
// called operation rather than folded away so the CLI's control flow
// matches the historical tool's even before reordering itself exists.
func (b *BDD) ClearVarBlocks() {}
