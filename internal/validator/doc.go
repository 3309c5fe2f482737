// Package validator provides the issue and report types shared by manifest
// and configuration validation.
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: Represents a single validation problem with field context.
//   - [Result]: Aggregates the issues found in one source.
//   - [Reporter]: Prints results as colored text or JSON.
//
// Basic usage:
//
//	result := &validator.Result{Source: path}
//	if m.Name == "" {
//		result.AddError("name", "is required", m.Name)
//	}
//	if err := result.Err(); err != nil {
//		return err
//	}
package validator
