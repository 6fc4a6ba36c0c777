// Package kzgblob assembles the EIP-4844 blob sidecar: a blob's KZG
// commitment, its proof, and the versioned hash that goes into a BlobTx.
// All curve arithmetic is bounded by go-ethereum's kzg4844 package (backed
// by the c-kzg-4844 C bindings); this package only shapes inputs/outputs
// around it.
package kzgblob

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"github.com/ethereum/go-ethereum/params"
)

// FieldElementsPerBlob is the number of 32-byte field elements packed into
// one blob.
const FieldElementsPerBlob = params.BlobTxFieldElementsPerBlob

// Blob is a full 131072-byte blob payload.
type Blob = kzg4844.Blob

// Sidecar holds everything a BlobTx needs alongside its envelope: the blob
// itself, its commitment, its proof, and the versioned hash derived from
// the commitment.
type Sidecar struct {
	Blob          Blob
	Commitment    kzg4844.Commitment
	Proof         kzg4844.Proof
	VersionedHash common.Hash
}

// EncodeBlob copies data into a zero-padded Blob. data must not exceed the
// blob's usable capacity (FieldElementsPerBlob * 31 bytes, since each
// 32-byte field element must stay below the BLS12-381 scalar field
// modulus — the top byte of every element is left zero).
func EncodeBlob(data []byte) (Blob, error) {
	var blob Blob
	maxBytes := FieldElementsPerBlob * 31
	if len(data) > maxBytes {
		return blob, fmt.Errorf("kzgblob: data too large for one blob: %d bytes, max %d", len(data), maxBytes)
	}

	for i, srcOff := 0, 0; srcOff < len(data); i, srcOff = i+1, srcOff+31 {
		end := srcOff + 31
		if end > len(data) {
			end = len(data)
		}
		copy(blob[i*32+1:i*32+1+(end-srcOff)], data[srcOff:end])
	}
	return blob, nil
}

// BuildSidecar computes the commitment, proof, and versioned hash for blob.
func BuildSidecar(blob Blob) (*Sidecar, error) {
	commitment, err := kzg4844.BlobToCommitment(&blob)
	if err != nil {
		return nil, fmt.Errorf("kzgblob: failed to compute commitment: %w", err)
	}
	proof, err := kzg4844.ComputeBlobProof(&blob, commitment)
	if err != nil {
		return nil, fmt.Errorf("kzgblob: failed to compute proof: %w", err)
	}

	return &Sidecar{
		Blob:          blob,
		Commitment:    commitment,
		Proof:         proof,
		VersionedHash: kzg4844.CalcBlobHashV1(sha256.New(), &commitment),
	}, nil
}

// VerifySidecar checks that proof is a valid KZG opening proof for blob
// against commitment.
func VerifySidecar(s *Sidecar) error {
	if err := kzg4844.VerifyBlobProof(&s.Blob, s.Commitment, s.Proof); err != nil {
		return fmt.Errorf("kzgblob: proof verification failed: %w", err)
	}
	return nil
}
