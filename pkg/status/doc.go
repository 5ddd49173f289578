// Package status implements the Status Reporter (C9): a side-channel
// message stream (add_item/done_item) that every Producer and Consumer
// worker writes to, consumed by a single reporter goroutine that renders a
// progress bar and updates Prometheus gauges/counters.
//
// The original Python tool rewrote the process title to show live progress
// in `ps`. That mechanism has no portable, non-cgo Go equivalent in the
// retrieved example pack and is dropped — see DESIGN.md's Open Question
// decisions. github.com/cheggaaa/pb/v3 renders the same information to the
// terminal instead, and pkg/status/metrics.go exports it over Prometheus so
// progress is also visible to anything that scrapes the process.
package status
