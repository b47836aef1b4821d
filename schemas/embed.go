// Package schemas holds the JSON Schema documents used to validate request
// bodies and relayed events.
package schemas

import "embed"

// Schema file names
const (
	JobCreate     = "job_create.schema.json"
	EventEnvelope = "event_envelope.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
