// Package table accumulates the extra cells of the results table header and
// rows, and the auxiliary HTML shown under a result.
//
// Cells are keyed fragments kept in insertion order. Every fragment is scanned
// for a sortable value: the text of the first <td class="col-NAME"> cell is
// recorded under NAME so the client can sort by that column.
package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dkoosis/testhtml/pkg/htmlutil"
)

var sortableRe = regexp.MustCompile(`<td class="col-([\p{L}\p{N}_]+)">(.*?)</`)

// Cell is an ordered set of HTML fragments.
type Cell struct {
	keys      []string
	html      map[string]string
	appended  int
	pops      int
	sortables map[string]string
}

func newCell() Cell {
	return Cell{
		html:      make(map[string]string),
		sortables: make(map[string]string),
	}
}

// Append adds html after every existing fragment.
func (c *Cell) Append(html string) {
	c.Insert("Z"+strconv.Itoa(c.appended), html)
	c.appended++
}

// Insert stores html under key. Re-inserting a key replaces the fragment in
// place.
func (c *Cell) Insert(key, html string) {
	if c.html == nil {
		c.html = make(map[string]string)
		c.sortables = make(map[string]string)
	}
	c.extractSortable(html)
	if _, ok := c.html[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.html[key] = html
}

// InsertNode stores markup produced by a markup builder. Legacy builders
// emit col= attributes, which are rewritten to data-column-type=.
func (c *Cell) InsertNode(key string, node fmt.Stringer) {
	c.Insert(key, checkHTML(node))
}

// Set is the list-style assignment kept for older hook implementations.
//
// Deprecated: use Insert.
func (c *Cell) Set(key, html string) {
	htmlutil.Deprecated("list-type assignment is deprecated and support will be removed in a future release. Please use 'Insert()' instead.")
	c.Insert(key, html)
}

// Pop records that one default column should be removed client side.
func (c *Cell) Pop() {
	c.pops++
}

// Pops returns how many times Pop was called.
func (c *Cell) Pops() int {
	return c.pops
}

// Sortables returns the sortable values extracted so far, keyed by column.
func (c *Cell) Sortables() map[string]string {
	return c.sortables
}

// HTML returns the fragments in insertion order.
func (c *Cell) HTML() []string {
	out := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.html[k])
	}
	return out
}

func (c *Cell) extractSortable(html string) {
	m := sortableRe.FindStringSubmatch(html)
	if m == nil {
		return
	}
	c.sortables[m[1]] = m[2]
}

func checkHTML(node fmt.Stringer) string {
	return strings.ReplaceAll(node.String(), "col=", "data-column-type=")
}

// Header holds extra header cells.
type Header struct {
	Cell
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{Cell: newCell()}
}

// Row holds the extra cells of one result row.
type Row struct {
	Cell
	deleted bool
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{Cell: newCell()}
}

// Delete drops the whole row; the result is left out of the report.
func (r *Row) Delete() {
	r.deleted = true
}

// Deleted reports whether Delete was called.
func (r *Row) Deleted() bool {
	return r.deleted
}

// HTML returns the row fragments, or nil once the row was deleted.
func (r *Row) HTML() []string {
	if r.deleted {
		return nil
	}
	return r.Cell.HTML()
}

// Pop is a no-op on rows: popping the header is enough.
func (r *Row) Pop() {}

// HTML is the auxiliary markup shown in a result's expanded detail.
type HTML struct {
	fragments  []string
	replaceLog bool
}

// NewHTML returns an empty detail block.
func NewHTML() *HTML {
	return &HTML{fragments: []string{}}
}

// Append adds a fragment.
func (h *HTML) Append(html string) {
	h.fragments = append(h.fragments, html)
}

// Fragments returns the fragments in order.
func (h *HTML) Fragments() []string {
	return h.fragments
}

// Delete removes the default log; hooks call it when they render their own.
func (h *HTML) Delete() {
	h.replaceLog = true
}

// ReplaceLog reports whether the default log must be left out.
func (h *HTML) ReplaceLog() bool {
	return h.replaceLog
}
