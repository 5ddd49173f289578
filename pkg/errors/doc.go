// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// # Overview
//
// This package implements a structured error system with error codes for
// programmatic handling, human-readable messages, cause chaining, and
// optional context for debugging. It supports the standard errors.Is and
// errors.As functions through the Unwrap interface.
//
// # Error Codes
//
// Predefined error codes mirror the run's error-handling policy:
//   - ErrCodeContended: the image lock is held elsewhere; skip silently
//   - ErrCodeTransientIO: network/driver failure; skip the image, retry next run
//   - ErrCodeMissingAnchor: no shared snapshot between live and backup
//   - ErrCodeStale: the incremental anchor is older than the freshness threshold
//   - ErrCodeDivergent: a shared snapshot's checksum differs between sides
//   - ErrCodeConfigMissing: a snapshot references a profile no longer configured
//   - ErrCodeFatal: a broken invariant; the run must abort
//
// # Usage
//
// Create a simple error:
//
//	err := errors.New(errors.ErrCodeMissingAnchor, "no shared snapshot for pool/x")
//
// Wrap an existing error:
//
//	err := errors.Wrap(errors.ErrCodeTransientIO, "export-diff failed", originalErr)
//
// Wrap with additional context:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTransientIO,
//	    "failed to export diff",
//	    cause,
//	    map[string]any{
//	        "image": imageID,
//	        "snap":  targetSnap,
//	    },
//	)
//
// # Error Handling
//
// The StructuredError type implements the standard error interface and
// supports error unwrapping:
//
//	var structErr *errors.StructuredError
//	if errors.As(err, &structErr) {
//	    log.Printf("Error code: %s, Message: %s", structErr.Code, structErr.Message)
//	    if structErr.Context != nil {
//	        log.Printf("Context: %v", structErr.Context)
//	    }
//	}
//
// # Thread Safety
//
// All functions in this package are thread-safe and can be called concurrently.
package errors
