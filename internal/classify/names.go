package classify

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Normalizer folds benchmark names into canonical join keys so that
// "connect_block", "ConnectBlock" and "connectblock" all compare equal.
// Folding is Unicode case folding followed by stripping everything that is
// not a letter or digit, then a synonym lookup.
type Normalizer struct {
	fold     cases.Caser
	synonyms map[string]string
}

// builtinSynonyms maps folded aliases seen in real harness output to their
// canonical folded names.
var builtinSynonyms = map[string]string{
	"blockconnect":      "connectblock",
	"connectblockbench": "connectblock",
	"mempoolaccept":     "accepttomemorypool",
	"accepttomempool":   "accepttomemorypool",
	"scriptverify":      "verifyscript",
	"checkblockbench":   "checkblock",
	"evalscript":        "evalscriptcomplex",
}

// NewNormalizer returns a Normalizer with the built-in synonym table.
func NewNormalizer() *Normalizer {
	syn := make(map[string]string, len(builtinSynonyms))
	for k, v := range builtinSynonyms {
		syn[k] = v
	}
	return &Normalizer{fold: cases.Fold(), synonyms: syn}
}

// LoadSynonyms merges alias -> canonical pairs from a YAML file into the
// table. Both sides are folded before insertion, so the file can use any of
// the spellings the harnesses do.
func (n *Normalizer) LoadSynonyms(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "classify: read synonyms file")
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "classify: parse synonyms file")
	}

	for alias, canonical := range raw {
		n.synonyms[n.foldName(alias)] = n.foldName(canonical)
	}
	return nil
}

// Normalize returns the canonical join key for a benchmark name.
func (n *Normalizer) Normalize(name string) string {
	folded := n.foldName(name)
	if canonical, ok := n.synonyms[folded]; ok {
		return canonical
	}
	return folded
}

func (n *Normalizer) foldName(name string) string {
	folded := n.fold.String(name)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
