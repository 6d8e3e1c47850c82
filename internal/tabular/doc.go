// Package tabular normalizes heterogeneous regulatory spreadsheet tables into
// per-insurer metric observations.
//
// The regulator publishes yearly statistical handbooks whose sheets change
// layout, column naming, and ordering between editions. This package contains
// the logic that copes with that drift:
//
//   - cleaner.go: raw cell values (locale-formatted numbers, percent signs,
//     currency markers, null tokens) to float64 or "absent"
//   - header.go: candidate-phrase matching that locates the insurer-name
//     column and one column per metric despite inconsistent headers
//   - table.go: the sheet model plus header-row detection for sheets that
//     carry title rows above the real header
//   - metrics.go: the metric dictionary (metric label to ordered candidate
//     header phrases), a built-in default plus YAML override
//   - parser.go: orchestration of the above over one sheet, producing a
//     Result of partial observations
//
// All functions here are pure: parsing a sheet has no side effects beyond the
// unresolved-name bookkeeping done by the caller-supplied EntityResolver.
package tabular
