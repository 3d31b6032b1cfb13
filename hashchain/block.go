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

// Package hashchain verifies provenance hash chains and anchors them as a
// single merkle root.
package hashchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// canonical serializes maps with sorted keys, leaves numbers untouched
// and does not escape HTML characters.
var canonical = jsoniter.Config{
	SortMapKeys: true,
	EscapeHTML:  false,
	UseNumber:   true,
}.Froze()

// Block is a link of the chain. Hash covers every other field.
type Block struct {
	Index        int64                  `json:"index"`
	Timestamp    int64                  `json:"timestamp"`
	Data         map[string]interface{} `json:"data"`
	PreviousHash string                 `json:"previousHash"`
	Hash         string                 `json:"hash"`
}

// ComputeHash returns the hex SHA-256 of
// "<index>|<timestamp>|<canonical data>|<previous hash>".
func (b *Block) ComputeHash() (string, error) {
	data, err := CanonicalJSON(b.Data)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("%d|%d|%s|%s", b.Index, b.Timestamp, data, b.PreviousHash)
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:]), nil
}

// Seal sets the block hash to the computed one.
func (b *Block) Seal() error {
	hash, err := b.ComputeHash()
	if err != nil {
		return err
	}
	b.Hash = hash
	return nil
}

// CanonicalJSON returns the cleaned data serialized with sorted keys.
// A nil map serializes as "{}".
func CanonicalJSON(data map[string]interface{}) (string, error) {
	cleaned, _ := Clean(data).(map[string]interface{})
	if cleaned == nil {
		cleaned = map[string]interface{}{}
	}
	b, err := canonical.Marshal(cleaned)
	if err != nil {
		return "", fmt.Errorf("serializing block data: %w", err)
	}
	return string(b), nil
}

// Clean drops nil values and empty strings from maps and slices,
// recursively. Nested maps and slices left empty after cleaning are
// dropped from their parent map.
func Clean(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		cleaned := make(map[string]interface{}, len(val))
		for k, item := range val {
			if isBlank(item) {
				continue
			}
			switch nested := item.(type) {
			case map[string]interface{}:
				if m := Clean(nested).(map[string]interface{}); len(m) > 0 {
					cleaned[k] = m
				}
			case []interface{}:
				if s := Clean(nested).([]interface{}); len(s) > 0 {
					cleaned[k] = s
				}
			default:
				cleaned[k] = item
			}
		}
		return cleaned
	case []interface{}:
		cleaned := make([]interface{}, 0, len(val))
		for _, item := range val {
			item = Clean(item)
			if isBlank(item) {
				continue
			}
			cleaned = append(cleaned, item)
		}
		return cleaned
	default:
		return v
	}
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
