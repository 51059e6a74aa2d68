// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import "github.com/pkg/errors"

var replacerSeq = 1

// Replacer maps old variable levels to new ones, for use with Replace.
type Replacer interface {
	Replace(level int32) (int32, bool)
	ID() int
}

type replacer struct {
	id    int
	image []int32
	last  int32
}

func (r *replacer) Replace(level int32) (int32, bool) {
	if level > r.last {
		return level, false
	}
	return r.image[level], true
}

func (r *replacer) ID() int { return r.id }

// NewReplacer builds a Replacer substituting oldvars[k] with newvars[k] for
// every k. Both slices must have the same length and use each variable at
// most once.
func (b *BDD) NewReplacer(oldvars, newvars []int) (Replacer, error) {
	if len(oldvars) != len(newvars) {
		return nil, errors.New("unmatched length of slices in NewReplacer")
	}
	res := &replacer{id: (replacerSeq << 2) | cacheidREPLACE}
	replacerSeq++
	varnum := b.Varnum()
	seen := make([]bool, varnum)
	res.image = make([]int32, varnum)
	for k := range res.image {
		res.image[k] = int32(k)
	}
	for k, v := range oldvars {
		if v < 0 || v >= varnum {
			return nil, errors.Errorf("invalid variable in oldvars (%d)", v)
		}
		if seen[v] {
			return nil, errors.Errorf("duplicate variable (%d) in oldvars", v)
		}
		if newvars[k] < 0 || newvars[k] >= varnum {
			return nil, errors.Errorf("invalid variable in newvars (%d)", newvars[k])
		}
		seen[v] = true
		res.image[v] = int32(newvars[k])
		if int32(v) > res.last {
			res.last = int32(v)
		}
	}
	return res, nil
}
