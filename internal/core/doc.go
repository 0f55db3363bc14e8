// Package core provides the business logic for product CSV imports.
//
// This package is the heart of the importer, containing all domain logic
// independent of any UI or transport layer. The client binaries use its
// parsing half and the REST backend uses its validation and commit half.
//
// # Parsing
//
// A CSV file becomes a list of [ImportRow] values in three steps:
//
//  1. [Tokenize] splits text into lines and fields (comma separated, double
//     quotes toggle a quoted section).
//  2. [NormalizeHeaders] maps header spellings such as "Product Name" or
//     "Unit Price" onto canonical field names.
//  3. [BuildRows] pairs values with headers and drops rows with no name.
//
// [ParseImportFile] runs all three and returns [ErrNoValidRows] when nothing
// survives.
//
// # Validation and Import
//
// [Service.Validate] checks every row against the product rules and flags
// rows whose SKU already exists for the tenant. [Service.Import] re-validates
// the submission, then writes the importable rows in one transaction where a
// failing row only loses its own write. Duplicate rows are skipped or updated
// according to the [DuplicateAction].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL005: Validation errors (row limits, duplicate policy)
//   - FILE001-FILE004: File errors (empty, no rows, size, format)
//   - IMP001-IMP004: Import errors (busy, cancelled, timeout)
//   - AUTH001-AUTH003: Authentication errors
//   - DB001-DB006: Database errors (duplicates, connections)
//   - RATE001: Rate limiting
//
// # Audit Logging
//
// Every commit and catalog reset is recorded with a severity level:
//
//   - High: Imports
//   - Critical: Catalog resets
package core
