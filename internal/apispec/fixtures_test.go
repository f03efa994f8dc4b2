package apispec

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi-validator/internal/actual"
	"github.com/mark3labs/openapi-validator/internal/spec"
)

func loadSpec(t *testing.T, doc string) Spec {
	t.Helper()
	d, err := spec.LoadFromData(context.Background(), []byte(strings.TrimSpace(doc)+"\n"), "")
	require.NoError(t, err)
	s, err := New(d)
	require.NoError(t, err)
	return s
}

func response(t *testing.T, method, path string, status int, body any) actual.Response {
	t.Helper()
	r, err := actual.New(map[string]any{
		"status": status,
		"data":   body,
		"request": map[string]any{
			"method": method,
			"path":   path,
		},
	})
	require.NoError(t, err)
	return r
}

const itemsV3 = `
openapi: 3.0.0
info: {title: items, version: "1"}
paths:
  /items/{id}:
    parameters:
      - {name: id, in: path, required: true, schema: {type: string}}
    get:
      responses:
        "200":
          description: an item
          content:
            application/json:
              schema:
                type: object
                required: [name]
                properties:
                  name: {type: string}
        default:
          description: error
          content:
            application/json:
              schema:
                type: object
                required: [message]
                properties:
                  message: {type: string}
`

const itemsV3Ref = `
openapi: 3.0.0
info: {title: items, version: "1"}
paths:
  /items/{id}:
    parameters:
      - {name: id, in: path, required: true, schema: {type: string}}
    get:
      responses:
        "200":
          $ref: "#/components/responses/Item"
        default:
          $ref: "#/components/responses/Error"
components:
  responses:
    Item:
      description: an item
      content:
        application/json:
          schema:
            $ref: "#/components/schemas/Item"
    Error:
      description: error
      content:
        application/json:
          schema:
            type: object
            required: [message]
            properties:
              message: {type: string}
  schemas:
    Item:
      type: object
      required: [name]
      properties:
        name: {type: string}
`

const itemsV2 = `
swagger: "2.0"
info: {title: items, version: "1"}
paths:
  /items/{id}:
    parameters:
      - {name: id, in: path, required: true, type: string}
    get:
      responses:
        "200":
          description: an item
          schema:
            type: object
            required: [name]
            properties:
              name: {type: string}
        default:
          description: error
          schema:
            type: object
            required: [message]
            properties:
              message: {type: string}
`

const itemsV2Ref = `
swagger: "2.0"
info: {title: items, version: "1"}
paths:
  /items/{id}:
    parameters:
      - {name: id, in: path, required: true, type: string}
    get:
      responses:
        "200":
          $ref: "#/responses/Item"
        default:
          description: error
          schema:
            $ref: "#/definitions/Error"
responses:
  Item:
    description: an item
    schema:
      $ref: "#/definitions/Item"
definitions:
  Item:
    type: object
    required: [name]
    properties:
      name: {type: string}
  Error:
    type: object
    required: [message]
    properties:
      message: {type: string}
`

// itemsV3WithServers returns itemsV3 with the given servers block inserted.
func itemsV3WithServers(servers string) string {
	return strings.Replace(itemsV3, "paths:", servers+"\npaths:", 1)
}
