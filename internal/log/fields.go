// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldOperationID = "op_id"
	FieldOperation   = "op"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Settings fields
	FieldDistribution = "distribution"
	FieldPreset       = "preset"
	FieldSection      = "section"
	FieldKey          = "key"
	FieldPlacement    = "placement"

	// Path fields
	FieldPath       = "path"
	FieldBackup     = "backup"
	FieldStagedPath = "staged_path"
)
