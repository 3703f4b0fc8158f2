// Package render prints the console side of a report run: the separator
// lines the host writes and the outcome totals shown after the report path.
package render
