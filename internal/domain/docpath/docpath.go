// Package docpath derives result-document object keys from prompt text.
package docpath

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// DefaultPrefix is the namespace under which every result document lives.
const DefaultPrefix = "benchmark_results"

// Scheme selects how a prompt is turned into an object name.
type Scheme string

const (
	// SchemeReadable keeps keys human readable: spaces become underscores,
	// '?' and '.' are dropped and the result is lowercased. Distinct prompts
	// may collide.
	SchemeReadable Scheme = "readable"
	// SchemeSHA256 names the document after the hex SHA-256 of the raw prompt.
	SchemeSHA256 Scheme = "sha256"
)

var readableReplacer = strings.NewReplacer(" ", "_", "?", "", ".", "")

// MaxReadableName bounds the readable object name, leaving room under the
// 255-byte file name limit of file:// buckets for the suffix, the extension
// and the writer's temporary files.
const MaxReadableName = 200

// hashSuffixLen is the number of hex digits appended to a truncated name.
const hashSuffixLen = 16

// Deriver maps prompts to object keys under a fixed prefix.
type Deriver struct {
	prefix string
	scheme Scheme
}

func NewDeriver(prefix string, scheme Scheme) (Deriver, error) {
	switch scheme {
	case "":
		scheme = SchemeReadable
	case SchemeReadable, SchemeSHA256:
	default:
		return Deriver{}, errors.Newf("unknown key scheme %q", scheme)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Deriver{prefix: strings.TrimSuffix(prefix, "/"), scheme: scheme}, nil
}

// Prefix is the listing prefix covering every derived key.
func (d Deriver) Prefix() string {
	return d.prefix + "/"
}

// Derive is total and deterministic.
func (d Deriver) Derive(prompt string) string {
	var name string
	switch d.scheme {
	case SchemeSHA256:
		sum := sha256.Sum256([]byte(prompt))
		name = hex.EncodeToString(sum[:])
	default:
		name = readableName(prompt)
	}
	return d.Prefix() + name + ".json"
}

// readableName normalizes prompt. Names longer than MaxReadableName are cut
// on a rune boundary and suffixed with a digest of the full normalized name,
// so prompts that normalize alike still share a document.
func readableName(prompt string) string {
	name := strings.ToLower(readableReplacer.Replace(prompt))
	if len(name) <= MaxReadableName {
		return name
	}

	sum := sha256.Sum256([]byte(name))
	suffix := "_" + hex.EncodeToString(sum[:])[:hashSuffixLen]
	cut := MaxReadableName - len(suffix)
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut] + suffix
}
