// Package reconcile decides, for each proposed test case, whether it
// represents new coverage, a near-duplicate of something already filed,
// or nothing actionable, and which suites it belongs to.
//
// # Overview
//
// The engine takes the existing test inventory for a story plus a batch
// of freshly generated proposals and emits exactly one decision per
// proposal:
//
//   - Create: no existing case scores at or above the dedup threshold
//   - Update(existingID): the best-scoring existing case meets the
//     threshold, so the existing item should be overwritten instead of
//     filing a duplicate
//   - Skip(reason): the proposal is structurally malformed, or it
//     duplicates a proposal already decided Create earlier in the same
//     batch
//
// # Determinism
//
// Decisions are computed in a fixed order: gap order, then generation
// order. Batch-internal dedup is therefore order-dependent: among a
// cluster of mutually similar proposals the first one seen wins the
// Create and the rest Skip. Reruns with identical inputs produce
// identical decisions, and the tie-break among equally scoring existing
// candidates is the lowest stable identifier.
//
// At most one Create survives per cluster of mutually similar proposals
// in a single run. Update decisions may still collide (two proposals
// both targeting the same existing id); those are surfaced as
// WriteConflicts for the write layer to resolve, never resolved here.
//
// # Purity
//
// The engine performs no I/O, holds no shared mutable state between
// runs, and has no fatal internal failure path given well-formed
// inputs. Malformed threshold configuration fails fast with
// ErrConfiguration before any decision is computed; a malformed
// proposal is recovered locally as Skip and never aborts the batch.
package reconcile
