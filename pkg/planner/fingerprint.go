package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[^\w\s]`)
)

// stopwords is a small fixed list; stripping them keeps phrase extraction
// and the TF-IDF context filter focused on content words.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "of": true, "and": true,
	"then": true, "please": true, "on": true, "in": true, "at": true,
	"go": true, "is": true, "it": true,
}

// Normalize lowercases, strips punctuation, and collapses whitespace, the
// canonical form every fingerprint and phrase comparison is built on.
func Normalize(instruction string) string {
	s := strings.ToLower(instruction)
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits a normalized instruction into words, dropping stopwords.
func Tokenize(normalized string) []string {
	words := strings.Fields(normalized)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}

// contextSignature is the part of the fingerprint that changes when the
// device or navigation tree changes underneath an identical prompt (spec
// §4.3 step 2 / §6). available_nodes is sorted before hashing so that two
// context loads differing only in map/slice iteration order still
// fingerprint identically.
type contextSignature struct {
	DeviceModel    string   `json:"device_model"`
	Interface      string   `json:"interface"`
	AvailableNodes []string `json:"available_nodes"`
}

// Fingerprint builds the Plan Cache lookup key for (teamID, interfaceID,
// instruction, context): a stable hash of team, the normalized instruction
// text, and the context signature (device model, interface, sorted
// available node labels) so that distinct contexts never collide on a
// shared prompt (spec §4.3 step 2, Invariant 4).
func Fingerprint(teamID, interfaceID, deviceModel, instruction string, availableNodes []string) string {
	nodes := append([]string(nil), availableNodes...)
	sort.Strings(nodes)

	sig, _ := json.Marshal(contextSignature{
		DeviceModel:    deviceModel,
		Interface:      interfaceID,
		AvailableNodes: nodes,
	})

	h := sha256.New()
	h.Write([]byte(teamID))
	h.Write([]byte{0})
	h.Write([]byte(Normalize(instruction)))
	h.Write([]byte{0})
	h.Write(sig)
	return hex.EncodeToString(h.Sum(nil))
}
