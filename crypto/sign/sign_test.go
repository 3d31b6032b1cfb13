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

package sign

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSign(t *testing.T, signer Signer) {

	message := []byte("send reinforcements, we're going to advance")

	sig, err := signer.Sign(message)
	require.NoError(t, err)

	result, _ := signer.Verify(message, sig)
	require.True(t, result, "Must be verified")

	result, _ = signer.Verify([]byte("send three and fourpence, we're going to a dance"), sig)
	require.False(t, result, "Must not be verified")

}

func TestEdSign(t *testing.T) { testSign(t, NewEd25519Signer()) }

func TestEcdsaSign(t *testing.T) {
	signer := NewEcdsaSigner()
	testSign(t, signer)

	_, err := signer.Verify([]byte("message"), []byte("not asn1"))
	require.Error(t, err)
}

func TestEdSignerFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")

	original := NewEd25519Signer().(*Ed25519Signer)
	require.NoError(t, os.WriteFile(path, original.privateKey, 0600))
	require.NoError(t, os.WriteFile(path+".pub", original.publicKey, 0644))

	signer, err := NewEd25519SignerFromFile(path)
	require.NoError(t, err)
	testSign(t, signer)

	// a public key that does not match the private key
	other := NewEd25519Signer().(*Ed25519Signer)
	require.NoError(t, os.WriteFile(path+".pub", other.publicKey, 0644))
	_, err = NewEd25519SignerFromFile(path)
	require.True(t, errors.Is(err, ErrUnusableKey))

	// truncated key
	require.NoError(t, os.WriteFile(path+".pub", original.publicKey[:10], 0644))
	_, err = NewEd25519SignerFromFile(path)
	require.True(t, errors.Is(err, ErrUnusableKey))

	_, err = NewEd25519SignerFromFile(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestEcdsaSignerFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")

	original := NewEcdsaSigner().(*EcdsaSigner)
	privPEM, err := MarshalEcdsaPrivateKey(original)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, privPEM, 0600))

	signer, err := NewEcdsaSignerFromFile(path)
	require.NoError(t, err)
	testSign(t, signer)

	// signatures made with the stored key verify with the loaded one
	sig, err := original.Sign([]byte("root"))
	require.NoError(t, err)
	ok, err := signer.Verify([]byte("root"), sig)
	require.NoError(t, err)
	require.True(t, ok)

	pubPEM, err := MarshalEcdsaPublicKey(original)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, pubPEM, 0600))
	_, err = NewEcdsaSignerFromFile(path)
	require.True(t, errors.Is(err, ErrUnusableKey))

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	_, err = NewEcdsaSignerFromFile(path)
	require.True(t, errors.Is(err, ErrUnusableKey))

	_, err = NewEcdsaSignerFromFile(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestNewSignerFromFile(t *testing.T) {
	dir := t.TempDir()

	edPath := filepath.Join(dir, "ed")
	ed := NewEd25519Signer().(*Ed25519Signer)
	require.NoError(t, os.WriteFile(edPath, ed.privateKey, 0600))
	require.NoError(t, os.WriteFile(edPath+".pub", ed.publicKey, 0644))

	ecPath := filepath.Join(dir, "ec")
	privPEM, err := MarshalEcdsaPrivateKey(NewEcdsaSigner().(*EcdsaSigner))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ecPath, privPEM, 0600))

	testCases := []struct {
		scheme      string
		path        string
		expected    interface{}
		expectedErr error
	}{
		{"", edPath, &Ed25519Signer{}, nil},
		{Ed25519, edPath, &Ed25519Signer{}, nil},
		{"ECDSA", ecPath, &EcdsaSigner{}, nil},
		{Ecdsa, edPath, nil, ErrUnusableKey},
		{"rsa", edPath, nil, ErrUnknownScheme},
	}

	for i, c := range testCases {
		signer, err := NewSignerFromFile(c.scheme, c.path)
		if c.expectedErr != nil {
			require.Truef(t, errors.Is(err, c.expectedErr), "The error should match for test case %d", i)
			continue
		}
		require.NoErrorf(t, err, "No error expected for test case %d", i)
		require.IsTypef(t, c.expected, signer, "The signer type should match for test case %d", i)
	}
}

func syncBenchmark(b *testing.B, signer Signer, iterations int) {

	b.N = iterations
	for i := 0; i < b.N; i++ {
		_, _ = signer.Sign([]byte(fmt.Sprintf("send reinforcements, we're going to advance %d", b.N)))
	}

}

func BenchmarkEd(b *testing.B) {

	for _, iterations := range []int{1e3, 1e4} {
		b.Run(fmt.Sprintf("iterations-%d", iterations), func(b *testing.B) {
			syncBenchmark(b, NewEd25519Signer(), iterations)
		})
	}

}

func BenchmarkEcdsa(b *testing.B) {

	for _, iterations := range []int{1e3, 1e4} {
		b.Run(fmt.Sprintf("iterations-%d", iterations), func(b *testing.B) {
			syncBenchmark(b, NewEcdsaSigner(), iterations)
		})
	}

}
