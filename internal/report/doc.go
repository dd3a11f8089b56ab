// Package report turns run events and results into output: line-oriented
// text with optional color, structured JSON records, and summary tables.
package report
