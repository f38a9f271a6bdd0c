// Package cleaning implements the coverage cleaning and bias-detection
// stage of the JJM analysis pipeline.
//
// The pipeline is a linear transform over one in-memory table:
//
//	raw table → column identification → numeric coercion →
//	temporal-delta computation → bias flagging → filtering →
//	cleaned table + summary report
//
// Column identification is heuristic keyword matching over the header
// (source schemas vary by year and portal); deltas are computed within
// per-district groups ordered by reporting period; bias detection flags
// implausible period-over-period spikes and out-of-range percentages.
// Only definitionally invalid rows (reporting errors) are removed —
// suspicious rows are retained and surfaced for human review.
//
// The stage is synchronous and stateless: callers own serialization of
// concurrent runs against the same output location.
package cleaning
