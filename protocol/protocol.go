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

// Package protocol defines the receipts emitted for every anchored batch
// and their wire encoding.
package protocol

import (
	"bytes"
	"encoding/hex"
	"errors"

	"github.com/hashicorp/go-msgpack/codec"

	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/crypto/sign"
)

// ErrUnsigned is returned when verifying a receipt without signature.
var ErrUnsigned = errors.New("receipt is not signed")

// Receipt binds a batch of leaves to its root.
type Receipt struct {
	// Root is the merkle root of the batch.
	Root hashing.Digest
	// Leaves is the number of leaves in the batch.
	Leaves uint64
	// Hasher names the hash function used to combine nodes.
	Hasher string
	// Timestamp is the unix time, in seconds, the root was computed at.
	Timestamp int64
}

// SignedReceipt is a Receipt plus the signature of its encoding.
type SignedReceipt struct {
	Receipt   *Receipt
	Signature []byte
}

func (r *Receipt) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := codec.NewEncoder(&buf, &codec.MsgpackHandle{})
	if err := encoder.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Receipt) Decode(msg []byte) error {
	reader := bytes.NewReader(msg)
	decoder := codec.NewDecoder(reader, &codec.MsgpackHandle{})
	return decoder.Decode(r)
}

// Sign returns the receipt signed by signer.
func (r *Receipt) Sign(signer sign.Signer) (*SignedReceipt, error) {
	msg, err := r.Encode()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(msg)
	if err != nil {
		return nil, err
	}
	return &SignedReceipt{Receipt: r, Signature: sig}, nil
}

func (s *SignedReceipt) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := codec.NewEncoder(&buf, &codec.MsgpackHandle{})
	if err := encoder.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *SignedReceipt) Decode(msg []byte) error {
	reader := bytes.NewReader(msg)
	decoder := codec.NewDecoder(reader, &codec.MsgpackHandle{})
	return decoder.Decode(s)
}

// Verify checks the signature against the receipt with signer.
func (s *SignedReceipt) Verify(signer sign.Signer) (bool, error) {
	if len(s.Signature) == 0 {
		return false, ErrUnsigned
	}
	msg, err := s.Receipt.Encode()
	if err != nil {
		return false, err
	}
	return signer.Verify(msg, s.Signature)
}

// ReceiptView is the textual form of a SignedReceipt, with digests and
// signature hex encoded.
type ReceiptView struct {
	Root      string `json:"root"`
	Leaves    uint64 `json:"leaves"`
	Hasher    string `json:"hasher"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature,omitempty"`
}

// View returns the textual form of s.
func (s *SignedReceipt) View() ReceiptView {
	return ReceiptView{
		Root:      s.Receipt.Root.Hex(),
		Leaves:    s.Receipt.Leaves,
		Hasher:    s.Receipt.Hasher,
		Timestamp: s.Receipt.Timestamp,
		Signature: hex.EncodeToString(s.Signature),
	}
}
