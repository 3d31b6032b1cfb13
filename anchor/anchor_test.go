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

package anchor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/bbva/merkleroot/codec"
	"github.com/bbva/merkleroot/crypto"
	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/crypto/sign"
	"github.com/bbva/merkleroot/log"
	"github.com/bbva/merkleroot/merkle"
	"github.com/bbva/merkleroot/metrics"
)

var (
	leafA = "ca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb"
	leafB = "3e23e8160039594a33894f6564e1b1348bbd7a0088d42c4acb73eeaed59c009d"
	leafC = "2e7d2c03a9507ae265ecf5b5356885a53393a2029d241394997265a1a25aefc6"

	rootABC = "d31a37ef6ac14a2db1470c4316beb5592e6afd4465022339adafda76a18ffabe"
)

func newTestAnchorer(t *testing.T, conf *Config, signer sign.Signer) (*Anchorer, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.New(&log.LoggerOptions{
		Name:   "test",
		Level:  log.Debug,
		Output: &buf,
	})
	a, err := NewAnchorer(conf, signer, logger)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Unix(1546300800, 0) }
	return a, &buf
}

func TestAnchor(t *testing.T) {
	a, logs := newTestAnchorer(t, DefaultConfig(), nil)

	roots := testutil.ToFloat64(metrics.RootsTotal)
	leaves := testutil.ToFloat64(metrics.LeavesTotal)

	signed, err := a.Anchor([]string{leafA, leafB, leafC})
	require.NoError(t, err)
	require.Nil(t, signed.Signature)
	require.Equal(t, rootABC, signed.Receipt.Root.Hex())
	require.Equal(t, uint64(3), signed.Receipt.Leaves)
	require.Equal(t, hashing.SHA256, signed.Receipt.Hasher)
	require.Equal(t, int64(1546300800), signed.Receipt.Timestamp)

	require.Equal(t, roots+1, testutil.ToFloat64(metrics.RootsTotal))
	require.Equal(t, leaves+3, testutil.ToFloat64(metrics.LeavesTotal))
	require.Contains(t, logs.String(), "Root "+rootABC+" computed from 3 leaves")
	require.Contains(t, logs.String(), "Reducing 3 leaves: depth 2, 3 pair hashes")
}

func TestDefaultConfigIsSilent(t *testing.T) {
	conf := DefaultConfig()
	require.Equal(t, log.Off, log.LevelFromString(conf.Log))
	require.Equal(t, sign.Ed25519, conf.Signer)
	require.NoError(t, conf.Validate())
}

func TestAnchorSigned(t *testing.T) {
	signer := sign.NewEd25519Signer()
	a, _ := newTestAnchorer(t, DefaultConfig(), signer)

	signed, err := a.Anchor([]string{leafA})
	require.NoError(t, err)
	require.Equal(t, leafA, signed.Receipt.Root.Hex())

	ok, err := signed.Verify(signer)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAnchorFailures(t *testing.T) {

	strict := DefaultConfig()
	strict.StrictLength = true

	testCases := []struct {
		conf        *Config
		hashes      []string
		expectedErr error
		reason      string
	}{
		{DefaultConfig(), nil, merkle.ErrEmptyInput, metrics.ReasonEmptyInput},
		{DefaultConfig(), []string{}, merkle.ErrEmptyInput, metrics.ReasonEmptyInput},
		{DefaultConfig(), []string{leafA, "zz"}, merkle.ErrInvalidEncoding, metrics.ReasonInvalidEncoding},
		{strict, []string{leafA, "abcd"}, merkle.ErrDigestLength, metrics.ReasonInvalidEncoding},
	}

	for i, c := range testCases {
		a, logs := newTestAnchorer(t, c.conf, nil)
		before := testutil.ToFloat64(metrics.FailuresTotal.WithLabelValues(c.reason))

		signed, err := a.Anchor(c.hashes)
		require.Nilf(t, signed, "No receipt expected for test case %d", i)
		require.Truef(t, errors.Is(err, c.expectedErr), "The error should match for test case %d", i)
		require.Equalf(t, before+1, testutil.ToFloat64(metrics.FailuresTotal.WithLabelValues(c.reason)),
			"The failure should be counted for test case %d", i)
		require.Containsf(t, logs.String(), "Unable to anchor batch", "The failure should be logged for test case %d", i)
	}
}

func TestAnchorStrictLength(t *testing.T) {
	conf := DefaultConfig()
	conf.StrictLength = true
	conf.DigestLength = 2

	a, _ := newTestAnchorer(t, conf, nil)

	signed, err := a.Anchor([]string{"abcd", "ef01"})
	require.NoError(t, err)
	require.Equal(t, uint64(2), signed.Receipt.Leaves)

	_, err = a.Anchor([]string{leafA})
	require.True(t, errors.Is(err, merkle.ErrDigestLength))
}

func TestAnchorFrom(t *testing.T) {
	conf := DefaultConfig()
	conf.Format = codec.JSON
	a, _ := newTestAnchorer(t, conf, nil)

	signed, err := a.AnchorFrom(strings.NewReader(`["` + leafA + `","` + leafB + `","` + leafC + `"]`))
	require.NoError(t, err)
	require.Equal(t, rootABC, signed.Receipt.Root.Hex())

	before := testutil.ToFloat64(metrics.FailuresTotal.WithLabelValues(metrics.ReasonDecode))
	_, err = a.AnchorFrom(strings.NewReader(`{`))
	require.Error(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.FailuresTotal.WithLabelValues(metrics.ReasonDecode)))
}

func TestAnchorHasher(t *testing.T) {
	conf := DefaultConfig()
	conf.Hasher = hashing.BLAKE3
	a, _ := newTestAnchorer(t, conf, nil)

	signed, err := a.Anchor([]string{leafA, leafB})
	require.NoError(t, err)
	require.Equal(t, hashing.BLAKE3, signed.Receipt.Hasher)
	require.NotEqual(t, "e5a01fee14e0ed5c48714f22180f25ad8365b53f9779f79dc4a3d7e93963f94a", signed.Receipt.Root.Hex())
}

func TestAnchorMetricsFile(t *testing.T) {
	conf := DefaultConfig()
	conf.MetricsFile = filepath.Join(t.TempDir(), "merkleroot.prom")
	a, _ := newTestAnchorer(t, conf, nil)

	_, err := a.Anchor([]string{leafA, leafB})
	require.NoError(t, err)

	content, err := os.ReadFile(conf.MetricsFile)
	require.NoError(t, err)
	require.Contains(t, string(content), "merkleroot_roots_total")
	require.Contains(t, string(content), "merkleroot_leaves_total")
}

func TestNewAnchorerInvalidConfig(t *testing.T) {

	testCases := []struct {
		setup       func(*Config)
		expectedErr error
	}{
		{func(c *Config) { c.Hasher = "md5" }, hashing.ErrUnknownHasher},
		{func(c *Config) { c.Format = "xml" }, codec.ErrUnknownFormat},
		{func(c *Config) { c.Signer = "rsa" }, sign.ErrUnknownScheme},
	}

	for i, c := range testCases {
		conf := DefaultConfig()
		c.setup(conf)
		_, err := NewAnchorer(conf, nil, nil)
		require.Truef(t, errors.Is(err, c.expectedErr), "The error should match for test case %d", i)
	}

	conf := DefaultConfig()
	conf.DigestLength = -1
	_, err := NewAnchorer(conf, nil, nil)
	require.Error(t, err)
}

func TestLoadSigner(t *testing.T) {
	conf := DefaultConfig()

	signer, err := LoadSigner(conf)
	require.NoError(t, err)
	require.Nil(t, signer)

	priv, _, err := crypto.NewEd25519SignerKeysFile(t.TempDir())
	require.NoError(t, err)

	conf.KeyPath = priv
	signer, err = LoadSigner(conf)
	require.NoError(t, err)
	require.NotNil(t, signer)

	conf.KeyPath = filepath.Join(t.TempDir(), "missing")
	_, err = LoadSigner(conf)
	require.Error(t, err)
}

func TestLoadEcdsaSigner(t *testing.T) {
	priv, _, err := crypto.NewEcdsaSignerKeysFile(t.TempDir())
	require.NoError(t, err)

	conf := DefaultConfig()
	conf.KeyPath = priv

	// the key is PEM encoded, not a raw ed25519 key
	_, err = LoadSigner(conf)
	require.True(t, errors.Is(err, sign.ErrUnusableKey))

	conf.Signer = sign.Ecdsa
	signer, err := LoadSigner(conf)
	require.NoError(t, err)
	require.IsType(t, &sign.EcdsaSigner{}, signer)

	a, _ := newTestAnchorer(t, conf, signer)
	signed, err := a.Anchor([]string{leafA, leafB})
	require.NoError(t, err)

	ok, err := signed.Verify(signer)
	require.NoError(t, err)
	require.True(t, ok)
}
