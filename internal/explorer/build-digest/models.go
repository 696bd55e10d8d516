// internal/explorer/build-digest/models.go
package builddigest

import "encoding/json"

type Input struct {
	Data json.RawMessage `json:"data"`
}

type Output struct {
	Digest  string `json:"digest"`
	Entries int    `json:"entries"`
}
