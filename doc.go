// Package recon imports bank and broker statements and reconciles them with
// an existing ledger.
//
// Statements come in many shapes: delimited text with dates in several
// conventions, OFX/QFX tag trees, spreadsheets, and per institution layouts
// with metadata rows or account ids wrapped in formulas. The package turns
// them into canonical transactions and proposes how they relate to the
// ledger. It never writes to the ledger.
//
// The pipeline runs left to right:
//   - Detect selects a Parser by confidence: institution adapters first, then
//     OFX, then the generic delimited parser.
//   - The Parser splits the statement into RawRows.
//   - Canonicalize turns each row into a Transaction, with a stable ImportID
//     so that importing a statement twice never duplicates it.
//   - Assemble groups the transactions into an ImportBatch, along with row
//     errors and duplicates. A partially bad file still yields a batch.
//   - Match proposes the ledger entry each transaction is already recorded
//     as, and MatchTransfers pairs the remaining transactions that move money
//     between two accounts.
//
// Amounts are exact decimals from end to end.
package recon
