package feeders

import "github.com/golobby/config/v3/pkg/feeder"

// Json reads configuration from a JSON file.
type Json = feeder.Json

// NewJson creates a feeder for the JSON file at path.
func NewJson(path string) Json {
	return Json{Path: path}
}
