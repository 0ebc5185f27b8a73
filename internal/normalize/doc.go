// Package normalize is the validation boundary between uploaded tabular data
// and the analytics core. It coerces heterogeneous key-value rows into typed
// TransactionRecords, resolves the uploaded schema's column names against
// known aliases, and counts (never mutates) rows that fail coercion.
//
// Row-level problems never produce an error: a malformed row is rejected and
// counted. Only a structurally impossible input (nil or empty) fails.
package normalize
