// Package recorder stores numbered program lines in line order.
package recorder

import (
	"github.com/google/btree"

	"tinybasic/pkg/ast"
)

type entry struct {
	line int
	stmt ast.Statement
}

func (e entry) Less(than btree.Item) bool {
	return e.line < than.(entry).line
}

// Recorder maps line numbers to statements. The zero value is not usable;
// call New.
type Recorder struct {
	tree *btree.BTree
}

func New() *Recorder {
	return &Recorder{tree: btree.New(4)}
}

// Add stores stmt at line, returning the statement it replaced, if any.
func (r *Recorder) Add(line int, stmt ast.Statement) ast.Statement {
	old := r.tree.ReplaceOrInsert(entry{line: line, stmt: stmt})
	if old == nil {
		return nil
	}
	return old.(entry).stmt
}

// Remove deletes line and returns what was stored there. Removing a line
// that does not exist is a no-op.
func (r *Recorder) Remove(line int) ast.Statement {
	old := r.tree.Delete(entry{line: line})
	if old == nil {
		return nil
	}
	return old.(entry).stmt
}

func (r *Recorder) Get(line int) (ast.Statement, bool) {
	item := r.tree.Get(entry{line: line})
	if item == nil {
		return nil, false
	}
	return item.(entry).stmt, true
}

func (r *Recorder) HasLine(line int) bool {
	return r.tree.Has(entry{line: line})
}

// NextLine returns the smallest stored line strictly greater than line.
// NextLine(0) is the first line of the program.
func (r *Recorder) NextLine(line int) (int, bool) {
	next, found := 0, false
	r.tree.AscendGreaterOrEqual(entry{line: line + 1},
		func(item btree.Item) bool {
			next, found = item.(entry).line, true
			return false
		})
	return next, found
}

func (r *Recorder) Clear() {
	r.tree.Clear(false)
}

func (r *Recorder) Len() int {
	return r.tree.Len()
}

// Ascend calls fn for every stored line in ascending order until fn
// returns false.
func (r *Recorder) Ascend(fn func(line int, stmt ast.Statement) bool) {
	r.tree.Ascend(
		func(item btree.Item) bool {
			e := item.(entry)
			return fn(e.line, e.stmt)
		})
}
