// Package errors provides structured error types for the nbt-editor module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Decode-time kinds (truncated_input, unknown_tag_type,
// malformed_list, decompression, io) abort a load; mutation-time kinds
// (parse, type_mismatch, list_type_mismatch, duplicate_key, path_not_found)
// reject a single edit and leave the tree unchanged.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformedList).
//		Path("Inventory").
//		Offset(42).
//		Detail("negative count %d with element type Int", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.PathNotFound(errors.PhaseMutate, "a.c", "c")
//	err := errors.Truncated(17, 4, "Int payload")
//
// Match by kind with the exported sentinels:
//
//	if errors.Is(err, errors.ErrPathNotFound) { ... }
package errors
