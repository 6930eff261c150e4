// Package normalize canonicalizes wine names and scores their similarity.
// Free-text price lists spell the same wine a dozen ways ("Ch. Margaux",
// "Château Margaux", "chateau margaux"); every lookup key and every fuzzy
// comparison goes through Name first so they all land on the same form.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// prefixRe strips the estate prefixes that appear inconsistently between the
// price list and the catalog.
var prefixRe = regexp.MustCompile(`\b(ch[âa]teau|domaine|dom\.|ch\.?)\s+`)

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// stripDiacritics removes combining marks after NFD decomposition, so
// "Pétrus" and "Petrus" normalize identically.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name standardizes a wine name for matching:
//  1. Lowercase
//  2. Diacritics removed
//  3. Château/Domaine/Ch. prefixes dropped
//  4. Punctuation replaced by spaces
//  5. Whitespace collapsed
func Name(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	if folded, _, err := transform.String(stripDiacritics, name); err == nil {
		name = folded
	}

	name = prefixRe.ReplaceAllString(name, "")
	name = nonWordRe.ReplaceAllString(name, " ")
	name = multiSpaceRe.ReplaceAllString(name, " ")

	return strings.TrimSpace(name)
}

// VintageKey renders a vintage year as a learned-store key field.
// 0 is the non-vintage sentinel.
func VintageKey(vintage int) string {
	if vintage == 0 {
		return "NV"
	}
	return strconv.Itoa(vintage)
}
