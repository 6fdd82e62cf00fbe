/*
Package prefix implements the keyword index behind topic autocomplete.

An Index is a character trie over lowercased keywords. Child edges are kept in
insertion order so that suggestion order is reproducible for a given sequence
of inserts: FindSuggestions walks the subtree below the prefix in pre-order,
visiting children in the order they were first created.

	idx := prefix.New()
	idx.Insert("Data")
	idx.Insert("Database")
	idx.FindSuggestions("DAT") // ["data", "database"]

The Index has no internal locking. Insert and Clear must not run concurrently
with any other call on the same Index; wrap it (see suggest.Completer) when it
is shared between goroutines.
*/
package prefix

import "strings"

// node is one character position along some inserted key.
type node struct {
	children map[rune]*node
	order    []rune
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// child returns the child for r, creating it when missing.
func (n *node) child(r rune) *node {
	if c, ok := n.children[r]; ok {
		return c
	}
	c := newNode()
	n.children[r] = c
	n.order = append(n.order, r)
	return c
}

// Index is a dynamic set of lowercase keywords supporting prefix lookup.
type Index struct {
	root *node
	size int
}

// New returns an empty Index.
func New() *Index {
	return &Index{root: newNode()}
}

// Normalize is the case folding applied to every key and prefix.
func Normalize(s string) string {
	return strings.ToLower(s)
}

// Insert adds word to the set. Inserting "" marks the root itself.
func (idx *Index) Insert(word string) {
	cur := idx.root
	for _, r := range Normalize(word) {
		cur = cur.child(r)
	}
	if !cur.terminal {
		cur.terminal = true
		idx.size++
	}
}

// Clear discards every stored key.
func (idx *Index) Clear() {
	idx.root = newNode()
	idx.size = 0
}

// Len reports the number of distinct stored keys.
func (idx *Index) Len() int {
	return idx.size
}

// Empty reports whether nothing has been inserted since construction or the last Clear.
func (idx *Index) Empty() bool {
	return idx.size == 0
}

// Contains reports whether word (after folding) is a stored key.
func (idx *Index) Contains(word string) bool {
	n := idx.find(Normalize(word))
	return n != nil && n.terminal
}

func (idx *Index) find(lowerPrefix string) *node {
	cur := idx.root
	for _, r := range lowerPrefix {
		next, ok := cur.children[r]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

type frame struct {
	n    *node
	word string
}

// FindSuggestions returns every stored key beginning with prefix, in
// pre-order over child edges in insertion order. The prefix itself is the
// first result when it is a stored key. The result is never nil.
func (idx *Index) FindSuggestions(prefix string) []string {
	lower := Normalize(prefix)
	start := idx.find(lower)
	if start == nil {
		return []string{}
	}

	results := make([]string, 0)
	stack := []frame{{n: start, word: lower}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.n.terminal {
			results = append(results, top.word)
		}
		// reversed so the first-inserted edge is popped first
		for i := len(top.n.order) - 1; i >= 0; i-- {
			r := top.n.order[i]
			stack = append(stack, frame{n: top.n.children[r], word: top.word + string(r)})
		}
	}
	return results
}
