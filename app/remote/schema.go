package remote

import (
	"github.com/invopop/jsonschema"
)

// Schema describes the mutation request and the response envelope of the protocol
type Schema struct {
	Request  *jsonschema.Schema `json:"request"`
	Response *jsonschema.Schema `json:"response"`
}

// GenerateSchema reflects the protocol types into JSON schemas
func GenerateSchema() Schema {
	req := jsonschema.Reflect(&Request{})
	req.Title = "jobtrack mutation request"
	req.Description = "POST body for create, update and delete"

	resp := jsonschema.Reflect(&Response{})
	resp.Title = "jobtrack response"
	resp.Description = "envelope returned by read and mutations, data is set for read only"

	return Schema{Request: req, Response: resp}
}
