// Package core defines the shared language of the surqls analyzer.
//
// This package contains:
//   - The spanned AST (statements, clauses, expressions)
//   - Inline name-resolution tags (TableRef, FieldRef)
//   - Diagnostics and their severities
//
// The Golden Rule: pkg/core imports ONLY pkg/token, pkg/types and stdlib.
// All other packages depend on core, not the reverse.
package core
