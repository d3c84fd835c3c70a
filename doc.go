// Package extract turns semi-structured financial documents (broker
// confirmations, account statements, dividend notices rendered as text)
// into typed, reviewable items. It is designed to be declarative and
// auditable: every extraction is driven by data, and every failure is
// reported rather than silently dropped.
//
// The core functionalities include:
//   - Pattern Engine: A block-oriented matching engine (subpackage pattern)
//     that gates documents by marker, delimits repeated transaction blocks,
//     and binds named captures through explicit assignment closures.
//   - Identity Resolution: Per-batch caches that resolve any subset of
//     ISIN, WKN, ticker and name to one canonical security record, and
//     synthesize declarations for instruments no document declares.
//   - Locale-Aware Scalars: Parsers (subpackage scalar) for amounts,
//     share quantities and dates under the European and English number
//     and date conventions documents actually use.
//   - Quote Normalization: Feeds (subpackage quote) that read JSON and
//     HTML price sources into fixed-point daily series and merge
//     competing observations by completeness.
//   - Recipes as Data: YAML recipes (subpackage recipe) compiled into
//     document types at load time, so supporting a new institution means
//     writing data, not code.
//
// This package serves as the foundational logic for the `dox` command-line
// tool.
package extract
