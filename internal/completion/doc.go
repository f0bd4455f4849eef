// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package completion derives completion analytics from the master catalog
joined with per-user ownership.

The engine is pure computation over the stores: missing-entry set
differences, completion percentages, and account-wide coverage. It never
writes. Summaries it computes are materialized elsewhere (by the job
runner) and the percentage rule is fixed: known/total*100 rounded half-up
to one decimal, 0 for an empty grouping.
*/
package completion
