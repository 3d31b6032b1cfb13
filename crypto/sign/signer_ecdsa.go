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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
)

// EcdsaSigner signs the SHA256 digest of messages with a P-256 key.
type EcdsaSigner struct {
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	rng        io.Reader
}

type ecdsaSignature struct {
	R, S *big.Int
}

// NewEcdsaSigner creates an ecdsa signer with a fresh in-memory key.
func NewEcdsaSigner() Signer {

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic(err)
	}

	return &EcdsaSigner{
		privateKey,
		&privateKey.PublicKey,
		rand.Reader,
	}

}

// NewEcdsaSignerFromFile creates an ecdsa signer from the PEM encoded
// "EC PRIVATE KEY" block stored in privateKeyPath. Only P-256 keys are
// accepted.
func NewEcdsaSignerFromFile(privateKeyPath string) (Signer, error) {

	pemBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "EC PRIVATE KEY" {
		return nil, fmt.Errorf("%w: no EC PRIVATE KEY block found", ErrUnusableKey)
	}

	privateKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableKey, err)
	}
	if privateKey.Curve.Params().Name != elliptic.P256().Params().Name {
		return nil, fmt.Errorf("%w: unexpected curve %s", ErrUnusableKey, privateKey.Curve.Params().Name)
	}

	signer := &EcdsaSigner{
		privateKey,
		&privateKey.PublicKey,
		rand.Reader,
	}

	message := []byte("test message")
	sig, _ := signer.Sign(message)
	if ok, _ := signer.Verify(message, sig); !ok {
		return nil, ErrUnusableKey
	}

	return signer, nil

}

// MarshalEcdsaPrivateKey returns the PEM encoding of the signer key, as
// read by NewEcdsaSignerFromFile.
func MarshalEcdsaPrivateKey(s *EcdsaSigner) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(s.privateKey)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}

// MarshalEcdsaPublicKey returns the PEM encoded PKIX public key of the
// signer.
func MarshalEcdsaPublicKey(s *EcdsaSigner) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(s.publicKey)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func (e *EcdsaSigner) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(e.rng, e.privateKey, digest[:])
	if err != nil {
		return nil, err
	}
	return asn1.Marshal(ecdsaSignature{r, s})
}

func (e *EcdsaSigner) Verify(message, sig []byte) (bool, error) {
	ecdsaSig := &ecdsaSignature{}
	rest, err := asn1.Unmarshal(sig, ecdsaSig)
	if err != nil {
		return false, err
	}
	if len(rest) > 0 {
		return false, errors.New("trailing data after signature")
	}
	digest := sha256.Sum256(message)
	return ecdsa.Verify(e.publicKey, digest[:], ecdsaSig.R, ecdsaSig.S), nil
}
