// Package batch runs one tool operation over several inputs, such as a free
// slot search over a list of dates, and reports each outcome separately so
// one bad input does not fail the whole call.
package batch
