// Package report prints the human-readable run report.
//
// Console implements operations.Observer; register it on the runner and
// call Start and Finish around Run. The output is meant for people and is
// not a stable format.
package report
