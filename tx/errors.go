package tx

import "errors"

var (
	errInvalidYParity   = errors.New("tx: yParity must be 0 or 1")
	errInvalidLegacyV   = errors.New("tx: legacy v must be >= 35 (EIP-155); v in {0,1,27,28} is rejected")
	errZeroChainID      = errors.New("tx: chainId must be > 0")
	errZeroGasLimit     = errors.New("tx: gasLimit must be > 0")
	errBlobHashCount    = errors.New("tx: blob transactions require 1..=6 blob-versioned hashes")
	errBlobHashVersion  = errors.New("tx: blob-versioned hash must have version byte 0x01")
	errUnsigned         = errors.New("tx: transaction has no signature")
)
