// Package core provides the data pipeline behind the sales dashboard.
//
// This package holds all domain logic independent of HTTP. It can be used
// by web handlers, tools, or tests without modification.
//
// # Pipeline
//
// Every page request runs the same explicit sequence over an immutable
// [Table]:
//
//  1. [ResolveRoles] maps semantic roles (country, sales, profit, category,
//     product) to columns, once per dataset
//  2. [Normalize] parses the sales and profit columns into decimals
//  3. [ApplyFilters] narrows the rows to the user's [Selection]
//  4. [Aggregate], [Breakdown] and [ComputeKPIs] summarize the view
//
// [Run] wires the steps together for a [Page] and returns a [Report].
// Unresolved roles produce warnings on the report, never errors.
//
// # Datasets
//
// [Service] owns datasets. The default dataset is read from the first
// usable path in a configured list and reused for the cache TTL. Uploads
// become additional datasets identified by UUID, evicted by a background
// sweeper once idle. Saved presets reassign roles automatically for files
// whose headers match.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DATA001-DATA002: Missing sources and expired datasets
//   - ROLE001-ROLE003: Role resolution and overrides
//   - FILE001-FILE005: File errors (size, format)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
package core
