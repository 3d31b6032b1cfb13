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

// Package anchor reduces batches of leaf digests into signed root receipts.
package anchor

import (
	"errors"
	"io"
	"time"

	"github.com/bbva/merkleroot/codec"
	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/crypto/sign"
	"github.com/bbva/merkleroot/log"
	"github.com/bbva/merkleroot/merkle"
	"github.com/bbva/merkleroot/metrics"
	"github.com/bbva/merkleroot/protocol"
)

// Anchorer computes the root of every batch it receives and emits a
// receipt for it. It is safe for concurrent use.
type Anchorer struct {
	conf   *Config
	tree   *merkle.Tree
	codec  codec.Codec
	signer sign.Signer
	log    log.Logger

	now func() time.Time
}

// NewAnchorer builds an Anchorer from conf. A nil signer produces unsigned
// receipts; a nil logger falls back to the process default.
func NewAnchorer(conf *Config, signer sign.Signer, logger log.Logger) (*Anchorer, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.L()
	}

	hasher, err := hashing.New(conf.Hasher)
	if err != nil {
		return nil, err
	}
	cdc, err := codec.New(conf.Format)
	if err != nil {
		return nil, err
	}

	return &Anchorer{
		conf:   conf,
		tree:   merkle.NewTree(hasher),
		codec:  cdc,
		signer: signer,
		log:    logger.Named("anchor"),
		now:    time.Now,
	}, nil
}

// Tree returns the reducer used by a.
func (a *Anchorer) Tree() *merkle.Tree {
	return a.tree
}

// AnchorFrom reads a leaf list in the configured format and anchors it.
func (a *Anchorer) AnchorFrom(r io.Reader) (*protocol.SignedReceipt, error) {
	hashes, err := a.codec.Leaves(r)
	if err != nil {
		a.fail(metrics.ReasonDecode, err)
		return nil, err
	}
	a.log.Debugf("Read %d leaves in %s format", len(hashes), a.codec.Name())
	return a.Anchor(hashes)
}

// Anchor decodes hashes, computes their root and returns the receipt.
func (a *Anchorer) Anchor(hashes []string) (*protocol.SignedReceipt, error) {
	start := time.Now()

	if len(hashes) == 0 {
		a.fail(metrics.ReasonEmptyInput, merkle.ErrEmptyInput)
		return nil, merkle.ErrEmptyInput
	}

	leaves, err := a.decode(hashes)
	if err != nil {
		a.fail(metrics.ReasonInvalidEncoding, err)
		return nil, err
	}

	a.log.Debugf("Reducing %d leaves: depth %d, %d pair hashes",
		len(leaves), merkle.Depth(len(leaves)), merkle.Operations(len(leaves)))

	root, err := a.tree.Root(leaves)
	if err != nil {
		a.fail(reasonOf(err), err)
		return nil, err
	}

	metrics.RootDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.RootsTotal.Inc()
	metrics.LeavesTotal.Add(float64(len(leaves)))

	receipt := &protocol.Receipt{
		Root:      root,
		Leaves:    uint64(len(leaves)),
		Hasher:    hashing.Name(a.tree.Hasher()),
		Timestamp: a.now().Unix(),
	}

	signed := &protocol.SignedReceipt{Receipt: receipt}
	if a.signer != nil {
		signed, err = receipt.Sign(a.signer)
		if err != nil {
			a.fail(metrics.ReasonSign, err)
			return nil, err
		}
	}

	a.log.Infof("Root %s computed from %d leaves", root.Hex(), len(leaves))
	a.flush()

	return signed, nil
}

func (a *Anchorer) decode(hashes []string) ([]hashing.Digest, error) {
	if !a.conf.StrictLength {
		return merkle.DecodeLeaves(hashes)
	}
	size := a.conf.DigestLength
	if size == 0 {
		size = int(a.tree.Hasher().Len() / 8)
	}
	return merkle.DecodeLeavesStrict(hashes, size)
}

func (a *Anchorer) fail(reason string, err error) {
	metrics.FailuresTotal.WithLabelValues(reason).Inc()
	a.log.Errorf("Unable to anchor batch: %v", err)
	a.flush()
}

func (a *Anchorer) flush() {
	if a.conf.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.conf.MetricsFile); err != nil {
		a.log.Warnf("Unable to write metrics to %s: %v", a.conf.MetricsFile, err)
	}
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, merkle.ErrEmptyInput):
		return metrics.ReasonEmptyInput
	case errors.Is(err, merkle.ErrInvalidEncoding):
		return metrics.ReasonInvalidEncoding
	default:
		return metrics.ReasonDecode
	}
}
