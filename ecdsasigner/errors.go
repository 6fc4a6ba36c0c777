package ecdsasigner

import "errors"

var errNotECDSAPublicKey = errors.New("ecdsasigner: derived public key is not an ECDSA key")
