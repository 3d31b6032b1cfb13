/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package merkle computes the root digest of a binary hash tree built over
// an ordered sequence of leaf digests.
//
// Leaves are paired left to right at even indices and every pair is
// replaced by the digest of its concatenation. A trailing element without a
// sibling is paired with itself. The process is repeated until a single
// digest remains. A one-leaf tree has the leaf itself as its root.
package merkle

import (
	"github.com/bbva/merkleroot/crypto/hashing"
)

// Tree reduces leaf sequences to their root using a given hasher. A Tree
// keeps no state between calls and can be shared between goroutines.
type Tree struct {
	hasher hashing.Hasher
}

// NewTree returns a Tree that combines nodes with the given hasher.
func NewTree(hasher hashing.Hasher) *Tree {
	return &Tree{hasher: hasher}
}

// Hasher returns the hasher used to combine nodes.
func (t *Tree) Hasher() hashing.Hasher {
	return t.hasher
}

// PairHash returns the parent digest of left and right: H(left || right).
func (t *Tree) PairHash(left, right hashing.Digest) hashing.Digest {
	return t.hasher.Do(left, right)
}

// Root folds leaves into their root digest. The leaves are only read.
// It returns ErrEmptyInput if there are no leaves.
func (t *Tree) Root(leaves []hashing.Digest) (hashing.Digest, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyInput
	}

	layer := leaves
	for len(layer) > 1 {
		layer = t.reduce(layer)
	}

	root := make(hashing.Digest, len(layer[0]))
	copy(root, layer[0])
	return root, nil
}

// reduce builds the next layer, of length ceil(len(layer)/2).
func (t *Tree) reduce(layer []hashing.Digest) []hashing.Digest {
	next := make([]hashing.Digest, 0, (len(layer)+1)/2)
	for i := 0; i < len(layer); i += 2 {
		left := layer[i]
		right := left
		if i+1 < len(layer) {
			right = layer[i+1]
		}
		next = append(next, t.PairHash(left, right))
	}
	return next
}

// Depth returns the number of layer transitions needed to reduce n leaves
// to a root. Zero and one leaves need none.
func Depth(n int) int {
	depth := 0
	for n > 1 {
		n = (n + 1) / 2
		depth++
	}
	return depth
}

// Operations returns the number of pair hashes computed to reduce n leaves.
func Operations(n int) int {
	ops := 0
	for n > 1 {
		n = (n + 1) / 2
		ops += n
	}
	return ops
}
