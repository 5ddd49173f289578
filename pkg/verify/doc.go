// Package verify implements the Verifier (C8): a freshness check
// (precheck) that confirms every image's incremental anchor exists and is
// recent, run in parallel across images, and a deep check (check-snap) that
// compares checksums of every shared snapshot between live and backup, run
// serially per image because checksumming is IO-bound.
package verify
