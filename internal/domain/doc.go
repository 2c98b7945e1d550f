// Package domain models road accident risk assessment.
//
// # Scoring Model
//
// Risk is scored by an additive heuristic over driver, vehicle, environmental,
// road, and behavioral condition weights, anchored by a per-location base risk.
// The raw sum is normalized by a factor of 8 and clamped to [0.05, 0.95], then
// jittered by a deterministic ±5% factor so repeated assessments of identical
// inputs reproduce identical outputs (the RNG is seeded from an MD5 digest of
// location|weather|time_of_day|road_type).
//
// Severity bands over the final score:
//
//	< 0.30  Low     (#28a745)
//	< 0.60  Medium  (#ffc107)
//	>= 0.60 High    (#dc3545)
//
// Each assessment carries a three-class probability distribution normalized to
// sum 1.0. Internally the classes are low/medium/high; at the API boundary they
// are exposed under the historical slight/serious/fatal keys, matching the
// severity taxonomy of the training data the production model was fit on.
//
// # Location Conventions
//
// Coordinates are WGS-84 decimal degrees. Coordinate-only requests are resolved
// against a fixed table of Indian metropolitan areas by planar nearest-neighbor
// distance. Area type is classified by distance from the five largest urban
// centers: within 0.5 degrees (roughly 50 km) is Urban, within 1.0 degrees is
// Suburban, otherwise Rural. First match wins, in table order.
//
// # Audit Records
//
// Completed assessments are summarized as audit records with deterministic
// SHA-256 derived IDs (location|lat|lon|timestamp), enabling idempotent
// downstream storage and replay safety.
package domain
