package verifier

import "github.com/rostilos/codecrow/pkg/structured"

var verdictSchema = structured.MapSchema{
	SchemaName:  "stage1_5_verdict",
	Description: verdictSchemaDescription,
}

type verdictResponse struct {
	Verdict string `json:"verdict"`
}
