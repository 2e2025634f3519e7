// Package grammar indexes keyphrase rules for matching.
//
// Rules are written in natural order but indexed reversed: the extractor
// walks a sentence right to left and grows a match from a phrase's last word
// towards its first. Every non-final prefix of a reversed rule is a trie key
// whose value is the set of tags that may follow it; the full reversed rule
// maps to End.
package grammar

import (
	"io"
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// End marks a prefix at which a rule may stop.
const End = "END"

// keySep joins tags inside a trie key.
const keySep = " "

// Key joins tags into a trie key.
func Key(tags ...string) string {
	return strings.Join(tags, keySep)
}

// Set is an ordered continuation set.
type Set struct {
	items []string
}

func (s *Set) add(tag string) {
	if s.Contains(tag) {
		return
	}
	s.items = append(s.items, tag)
}

// Contains reports whether tag may follow the prefix.
func (s *Set) Contains(tag string) bool {
	if s == nil {
		return false
	}
	for _, it := range s.items {
		if it == tag {
			return true
		}
	}
	return false
}

// Terminal reports whether a rule may end at the prefix.
func (s *Set) Terminal() bool { return s.Contains(End) }

// Items returns the continuations in insertion order.
func (s *Set) Items() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Trie maps reversed rule prefixes to their continuation sets. It is
// read-only after Build and safe for concurrent use.
type Trie struct {
	t     *patricia.Trie
	keys  int
	rules int
}

// Build indexes rules. Rules sharing prefixes merge their continuations.
func Build(rules []Rule) *Trie {
	tr := &Trie{t: patricia.NewTrie()}
	for _, r := range rules {
		if len(r.Tags) == 0 {
			continue
		}
		rev := append(r.Reversed(), End)
		for i := 0; i < len(rev)-1; i++ {
			tr.set(Key(rev[:i+1]...)).add(rev[i+1])
		}
		tr.rules++
	}
	return tr
}

// Compile parses and indexes a rule stream.
func Compile(r io.Reader) (*Trie, error) {
	rules, err := ParseRules(r)
	if err != nil {
		return nil, err
	}
	return Build(rules), nil
}

// Load parses and indexes a rule file.
func Load(path string) (*Trie, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return Build(rules), nil
}

func (tr *Trie) set(key string) *Set {
	if item := tr.t.Get(patricia.Prefix(key)); item != nil {
		return item.(*Set)
	}
	s := &Set{}
	tr.t.Insert(patricia.Prefix(key), s)
	tr.keys++
	return s
}

// Continuations returns the set registered for key.
func (tr *Trie) Continuations(key string) (*Set, bool) {
	item := tr.t.Get(patricia.Prefix(key))
	if item == nil {
		return nil, false
	}
	return item.(*Set), true
}

// Has reports whether key is a registered prefix.
func (tr *Trie) Has(key string) bool {
	return tr.t.Match(patricia.Prefix(key))
}

// Prefixes lists the registered keys starting with prefix, sorted.
// An empty prefix lists every key.
func (tr *Trie) Prefixes(prefix string) []string {
	var keys []string
	collect := func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	}
	if prefix == "" {
		_ = tr.t.Visit(collect)
	} else {
		_ = tr.t.VisitSubtree(patricia.Prefix(prefix), collect)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered keys.
func (tr *Trie) Len() int { return tr.keys }

// Rules returns the number of indexed rules.
func (tr *Trie) Rules() int { return tr.rules }
