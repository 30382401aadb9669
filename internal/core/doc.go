// Package core is the reconciliation service layer. It sits between the
// transports (HTTP API, CLI) and the pure engine in package recon.
//
// # Responsibilities
//
//   - Validation: row limits, mapping structure and mapped columns against
//     each dataset's headers. The engine trusts its mapping, so nothing
//     reaches it unchecked.
//   - Concurrency: a [RunLimiter] bounds simultaneous reconciliations.
//   - Run registry: results are kept in memory under a UUID so reviewers can
//     filter them and toggle verification with [Service.SetVerified]. A
//     janitor drops runs once their TTL passes.
//   - Input decoding: [DecodeRows] and [DecodeMapping] read JSON row files and
//     YAML or JSON mapping files, skipping a leading UTF-8 BOM.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference:
//
//   - MAP001-MAP003: mapping errors
//   - RUN001-RUN003: run registry and capacity errors
//   - REQ001-REQ006: request errors
//   - RATE001, AUTH001: throttling and access
//   - ERR000: anything else
package core
