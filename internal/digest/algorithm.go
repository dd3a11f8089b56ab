package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a digest function. The string form is what gets persisted
// in a ledger's settings.
type Algorithm string

const (
	Sha256     Algorithm = "Sha256"
	Sha512     Algorithm = "Sha512"
	Sha3_256   Algorithm = "Sha3_256"
	Sha3_512   Algorithm = "Sha3_512"
	Keccak256  Algorithm = "Keccak_256"
	Keccak512  Algorithm = "Keccak_512"
	Blake2b256 Algorithm = "Blake2b_256"
	Blake2b512 Algorithm = "Blake2b_512"
	// XXH64 is not collision resistant; it only detects accidental change.
	XXH64 Algorithm = "XXH64"
)

// ErrUnknownAlgorithm is returned for names no constructor is registered for.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Default is used when neither the caller nor the ledger names an algorithm.
const Default = Keccak512

var constructors = map[Algorithm]func() hash.Hash{
	Sha256:     sha256.New,
	Sha512:     sha512.New,
	Sha3_256:   func() hash.Hash { return sha3.New256() },
	Sha3_512:   func() hash.Hash { return sha3.New512() },
	Keccak256:  sha3.NewLegacyKeccak256,
	Keccak512:  sha3.NewLegacyKeccak512,
	Blake2b256: func() hash.Hash { h, _ := blake2b.New256(nil); return h },
	Blake2b512: func() hash.Hash { h, _ := blake2b.New512(nil); return h },
	XXH64:      func() hash.Hash { return xxhash.New() },
}

var descriptions = map[Algorithm]string{
	Sha256:     "SHA-2 256 bit",
	Sha512:     "SHA-2 512 bit",
	Sha3_256:   "SHA-3 256 bit",
	Sha3_512:   "SHA-3 512 bit",
	Keccak256:  "Keccak 256 bit (pre-standard SHA-3 padding)",
	Keccak512:  "Keccak 512 bit (pre-standard SHA-3 padding)",
	Blake2b256: "BLAKE2b 256 bit",
	Blake2b512: "BLAKE2b 512 bit",
	XXH64:      "xxHash 64 bit, fast, not tamper resistant",
}

// Parse resolves a user supplied algorithm name. Matching ignores case and
// the separators '-' and '_', so "sha3-256", "SHA3_256" and "Sha3_256" are
// the same algorithm.
func Parse(name string) (Algorithm, error) {
	want := fold(name)
	for alg := range constructors {
		if fold(string(alg)) == want {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w %q (supported: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
}

// Names returns the supported algorithm names in sorted order.
func Names() []string {
	out := make([]string, 0, len(constructors))
	for alg := range constructors {
		out = append(out, string(alg))
	}
	sort.Strings(out)
	return out
}

// Describe returns a short human description of alg.
func Describe(alg Algorithm) string { return descriptions[alg] }

// New returns a fresh hash for alg, keyed with HMAC when key is non-empty.
func New(alg Algorithm, key []byte) (hash.Hash, error) {
	ctor, ok := constructors[alg]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAlgorithm, alg)
	}
	if len(key) == 0 {
		return ctor(), nil
	}
	return newHMAC(ctor, key), nil
}

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}
