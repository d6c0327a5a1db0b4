package httpvalidator

import (
	"testing"

	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
	"github.com/stretchr/testify/require"
)

const petstoreOAS3 = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0"
paths:
  /pets:
    post:
      operationId: createPet
      parameters:
        - name: dryRun
          in: query
          schema:
            type: boolean
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
          text/*:
            schema:
              type: string
      responses:
        "201":
          description: Created
    put:
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        "200":
          description: OK
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: string
    get:
      operationId: getPet
      parameters:
        - name: X-Api-Key
          in: header
          required: true
          schema:
            type: string
        - name: limit
          in: query
          schema:
            type: integer
            maximum: 100
        - name: sort
          in: query
          schema:
            type: string
            enum: [asc, desc]
            nullable: true
      responses:
        "200":
          description: OK
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
          readOnly: true
        name:
          type: string
        tag:
          type: string
          nullable: true
        parent:
          $ref: "#/components/schemas/Pet"
`

const usersOAS2 = `
swagger: "2.0"
info:
  title: Users
  version: "1.0"
paths:
  /users:
    get:
      parameters:
        - name: X-Trace
          in: header
          type: string
          required: true
        - name: page
          in: query
          type: integer
          minimum: 1
      responses:
        200:
          description: OK
    post:
      parameters:
        - name: user
          in: body
          required: true
          schema:
            $ref: "#/definitions/User"
      responses:
        201:
          description: Created
  /upload:
    post:
      consumes: [multipart/form-data]
      parameters:
        - name: file
          in: formData
          type: file
          required: true
        - name: count
          in: formData
          type: integer
      responses:
        200:
          description: OK
definitions:
  User:
    type: object
    required: [id, name]
    properties:
      id:
        type: string
        readOnly: true
      name:
        type: string
        minLength: 2
`

// Helper to create a parsed spec from YAML content
func mustParse(t *testing.T, yaml string) *parser.ParseResult {
	t.Helper()
	result, err := parser.ParseWithOptions(parser.WithBytes([]byte(yaml)))
	require.NoError(t, err)
	return result
}

func mustValidator(t *testing.T, yaml string, opts ...Option) *Validator {
	t.Helper()
	v, err := NewFromParsed(mustParse(t, yaml), opts...)
	require.NoError(t, err)
	return v
}

func mustSet(t *testing.T, v *Validator, resource, method string) *ValidatorSet {
	t.Helper()
	set, ok := v.Set(resource, method)
	require.True(t, ok, "no validator set for %s %s", method, resource)
	return set
}

func errorCodes(r *Result) []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.ErrorCode
	}
	return out
}
