package apispec

import (
	"context"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi-validator/internal/actual"
	"github.com/mark3labs/openapi-validator/internal/spec"
)

var allItemsSpecs = map[string]string{
	"v2 inline": itemsV2,
	"v2 ref":    itemsV2Ref,
	"v3 inline": itemsV3,
	"v3 ref":    itemsV3Ref,
}

func TestValidateResponse_ItemsScenario(t *testing.T) {
	for name, doc := range allItemsSpecs {
		t.Run(name, func(t *testing.T) {
			s := loadSpec(t, doc)

			verr, err := s.ValidateResponse(response(t, "GET", "/items/42", 200, map[string]any{"name": "widget"}))
			require.NoError(t, err)
			assert.Nil(t, verr)

			verr, err = s.ValidateResponse(response(t, "GET", "/items/42", 200, map[string]any{"name": 7}))
			require.NoError(t, err)
			require.NotNil(t, verr)
			assert.Equal(t, InvalidBody, verr.Code)
			assert.Contains(t, verr.Message, "name")
			assert.Contains(t, verr.Message, "response.name")
		})
	}
}

func TestValidateResponse_MissingRequiredField(t *testing.T) {
	for name, doc := range allItemsSpecs {
		t.Run(name, func(t *testing.T) {
			s := loadSpec(t, doc)
			verr, err := s.ValidateResponse(response(t, "GET", "/items/42?verbose=1", 200, map[string]any{"other": "x"}))
			require.NoError(t, err)
			require.NotNil(t, verr)
			assert.Equal(t, InvalidBody, verr.Code)
			assert.Contains(t, verr.Message, "name")
		})
	}
}

func TestValidateResponse_JoinsEveryFieldError(t *testing.T) {
	s := loadSpec(t, `
openapi: 3.0.0
info: {title: t, version: "1"}
paths:
  /things:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  type: object
                  required: [id]
                  properties:
                    id: {type: integer}
                    tag: {type: string}
`)
	body := []any{
		map[string]any{"id": 1, "tag": "a"},
		map[string]any{"id": "two", "tag": 3},
	}
	verr, err := s.ValidateResponse(response(t, "GET", "/things", 200, body))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Message, "response[1].id")
	assert.Contains(t, verr.Message, "response[1].tag")
	assert.Contains(t, verr.Message, ", ")
}

func TestValidateResponse_MethodNotFound(t *testing.T) {
	for name, doc := range allItemsSpecs {
		t.Run(name, func(t *testing.T) {
			s := loadSpec(t, doc)
			verr, err := s.ValidateResponse(response(t, "POST", "/items/42", 200, map[string]any{"name": "widget"}))
			require.NoError(t, err)
			require.NotNil(t, verr)
			assert.Equal(t, MethodNotFound, verr.Code)

			op, err := s.FindExpectedResponseOperation(actual.Request{Method: "POST", Path: "/items/42"})
			require.NoError(t, err)
			assert.Nil(t, op)
		})
	}
}

func TestValidateResponse_DefaultResponse(t *testing.T) {
	for name, doc := range allItemsSpecs {
		t.Run(name, func(t *testing.T) {
			s := loadSpec(t, doc)
			resp := response(t, "GET", "/items/42", 418, map[string]any{"message": "teapot"})

			def, err := s.FindExpectedResponse(resp)
			require.NoError(t, err)
			assert.Equal(t, "default", def.Key)
			assert.Equal(t, 418, def.Status)

			verr, err := s.ValidateResponse(resp)
			require.NoError(t, err)
			assert.Nil(t, verr)

			verr, err = s.ValidateResponse(response(t, "GET", "/items/42", 418, map[string]any{"name": "widget"}))
			require.NoError(t, err)
			require.NotNil(t, verr)
			assert.Equal(t, InvalidBody, verr.Code)
			assert.Contains(t, verr.Message, "message")
		})
	}
}

func TestValidateResponse_RefMatchesInline(t *testing.T) {
	bodies := []any{
		map[string]any{"name": "widget"},
		map[string]any{"name": 7},
		map[string]any{},
		nil,
		"text",
	}
	pairs := [][2]string{{itemsV2, itemsV2Ref}, {itemsV3, itemsV3Ref}}
	for _, pair := range pairs {
		inline, ref := loadSpec(t, pair[0]), loadSpec(t, pair[1])
		for _, status := range []int{200, 500} {
			for _, body := range bodies {
				a, err := inline.ValidateResponse(response(t, "GET", "/items/1", status, body))
				require.NoError(t, err)
				b, err := ref.ValidateResponse(response(t, "GET", "/items/1", status, body))
				require.NoError(t, err)
				assert.Equal(t, a, b, "status %d body %v", status, body)
			}
		}
	}
}

func TestValidateResponse_StatusNotFound(t *testing.T) {
	s := loadSpec(t, `
openapi: 3.0.0
info: {title: t, version: "1"}
paths:
  /ping:
    get:
      responses:
        "200": {description: ok}
`)
	verr, err := s.ValidateResponse(response(t, "GET", "/ping", 500, nil))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Equal(t, StatusNotFound, verr.Code)

	verr, err = s.ValidateResponse(response(t, "GET", "/ping", 200, nil))
	require.NoError(t, err)
	assert.Nil(t, verr, "a response without content has nothing to validate")
}

func TestValidateResponse_RangeKey(t *testing.T) {
	s := loadSpec(t, `
openapi: 3.0.0
info: {title: t, version: "1"}
paths:
  /ping:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: {type: object, required: [pong], properties: {pong: {type: boolean}}}
        "4XX":
          description: client error
          content:
            application/json:
              schema: {type: object, required: [error], properties: {error: {type: string}}}
        default:
          description: other
`)
	def, err := s.FindExpectedResponse(response(t, "GET", "/ping", 404, map[string]any{"error": "nope"}))
	require.NoError(t, err)
	assert.Equal(t, "4XX", def.Key)

	verr, err := s.ValidateResponse(response(t, "GET", "/ping", 404, map[string]any{"pong": true}))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Equal(t, InvalidBody, verr.Code)

	def, err = s.FindExpectedResponse(response(t, "GET", "/ping", 503, nil))
	require.NoError(t, err)
	assert.Equal(t, "default", def.Key)
}

func TestValidateResponse_V2IgnoresRangeKeys(t *testing.T) {
	d := &spec.Document{
		Version:   spec.V2,
		PathOrder: []string{"/ping"},
		V2: &openapi2.T{
			Swagger: "2.0",
			Paths: map[string]*openapi2.PathItem{
				"/ping": {Get: &openapi2.Operation{Responses: map[string]*openapi2.Response{
					"4XX": {Description: "client error"},
				}}},
			},
		},
	}
	s, err := New(d)
	require.NoError(t, err)
	verr, err := s.ValidateResponse(response(t, "GET", "/ping", 404, nil))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Equal(t, StatusNotFound, verr.Code)
}

func TestValidateResponse_DanglingResponseRefIsAnError(t *testing.T) {
	d := &spec.Document{
		Version:   spec.V2,
		PathOrder: []string{"/ping"},
		V2: &openapi2.T{
			Swagger: "2.0",
			Paths: map[string]*openapi2.PathItem{
				"/ping": {Get: &openapi2.Operation{Responses: map[string]*openapi2.Response{
					"200": {Ref: "#/responses/Missing"},
				}}},
			},
		},
	}
	s, err := New(d)
	require.NoError(t, err)
	verr, err := s.ValidateResponse(response(t, "GET", "/ping", 200, nil))
	assert.Nil(t, verr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#/responses/Missing")
}

func TestServers_OmittedEmptyAndRootAreEquivalent(t *testing.T) {
	variants := map[string]Spec{
		"omitted":  loadSpec(t, itemsV3),
		"empty":    loadSpec(t, itemsV3WithServers("servers: []")),
		"explicit": loadSpec(t, itemsV3WithServers("servers:\n  - url: /")),
	}
	for name, s := range variants {
		t.Run(name, func(t *testing.T) {
			path, err := s.FindOpenAPIPathMatchingRequest(actual.Request{Method: "GET", Path: "/items/42"})
			require.NoError(t, err)
			assert.Equal(t, "/items/{id}", path)
			assert.Equal(t, []string{"/"}, s.ServerURLs())

			verr, err := s.ValidateResponse(response(t, "GET", "/items/42", 200, map[string]any{"name": "widget"}))
			require.NoError(t, err)
			assert.Nil(t, verr)
		})
	}
	assert.False(t, variants["omitted"].DefinesServers())
	assert.False(t, variants["empty"].DefinesServers())
	assert.True(t, variants["explicit"].DefinesServers())
}

func TestServers_NotFoundAndStripping(t *testing.T) {
	s := loadSpec(t, itemsV3WithServers(`servers:
  - url: https://{env}.example.com/api/{version}
    variables:
      env: {default: prod, enum: [prod, dev]}
      version: {default: v1, enum: [v1, v2]}
  - url: /legacy`))

	path, err := s.FindOpenAPIPathMatchingPathname("/api/v2/items/9")
	require.NoError(t, err)
	assert.Equal(t, "/items/{id}", path)

	path, err = s.FindOpenAPIPathMatchingRequest(actual.Request{Path: "https://dev.example.com/legacy/items/9?x=y"})
	require.NoError(t, err)
	assert.Equal(t, "/items/{id}", path)

	assert.Equal(t, []string{"https://{env}.example.com/api/{version}"}, s.MatchingServerURLs("/api/v1/items/1"))

	_, err = s.FindOpenAPIPathMatchingPathname("/items/9")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ServerNotFound, verr.Code)

	_, err = s.FindOpenAPIPathMatchingPathname("/api/v1/widgets/9")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, PathNotFound, verr.Code)

	got, err := s.ValidateResponse(response(t, "GET", "/nowhere", 200, nil))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ServerNotFound, got.Code)
}

func TestBasePath_V2(t *testing.T) {
	withBase := func(base string) Spec {
		return loadSpec(t, "basePath: "+base+"\n"+itemsV2)
	}

	s := withBase("/api")
	assert.Equal(t, "/api", s.BasePath())
	path, err := s.FindOpenAPIPathMatchingPathname("/api/items/1")
	require.NoError(t, err)
	assert.Equal(t, "/items/{id}", path)

	verr, err := s.ValidateResponse(response(t, "GET", "/items/1", 200, map[string]any{"name": "x"}))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Equal(t, BasePathNotFound, verr.Code)

	verr, err = s.ValidateResponse(response(t, "GET", "/api/nothing/here", 200, nil))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Equal(t, PathNotFound, verr.Code)

	root := withBase("/")
	path, err = root.FindOpenAPIPathMatchingPathname("/items/1")
	require.NoError(t, err)
	assert.Equal(t, "/items/{id}", path)

	none := loadSpec(t, itemsV2)
	assert.Equal(t, "", none.BasePath())
	assert.Nil(t, none.ServerURLs())
	assert.False(t, none.DefinesServers())
}

func TestFindExpectedPathItem(t *testing.T) {
	s := loadSpec(t, `
openapi: 3.0.0
info: {title: t, version: "1"}
paths:
  /things:
    delete:
      responses: {"204": {description: gone}}
    post:
      responses: {"201": {description: created}}
    get:
      responses: {"200": {description: ok}, "404": {description: missing}}
`)
	item, err := s.FindExpectedPathItem(actual.Request{Method: "PUT", Path: "/things"})
	require.NoError(t, err)
	assert.Equal(t, "/things", item.Path)
	assert.Equal(t, []string{"GET", "POST", "DELETE"}, item.Methods)

	op, err := s.FindExpectedResponseOperation(actual.Request{Method: "get", Path: "/things"})
	require.NoError(t, err)
	require.NotNil(t, op)
	assert.Equal(t, "GET", op.Method)
	assert.Equal(t, []string{"200", "404"}, op.Statuses)
}

func TestPaths_DeclarationOrderDrivesTieBreak(t *testing.T) {
	doc := `
openapi: 3.0.0
info: {title: t, version: "1"}
paths:
  /a/{x}/c:
    parameters: [{name: x, in: path, required: true, schema: {type: string}}]
    get:
      responses: {"200": {description: first}}
  /a/b/{y}:
    parameters: [{name: y, in: path, required: true, schema: {type: string}}]
    get:
      responses: {"200": {description: second}}
`
	s := loadSpec(t, doc)
	assert.Equal(t, []string{"/a/{x}/c", "/a/b/{y}"}, s.Paths())

	path, err := s.FindOpenAPIPathMatchingPathname("/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/{y}", path)

	def, err := s.FindExpectedResponse(response(t, "GET", "/a/b/c", 200, nil))
	require.NoError(t, err)
	assert.Equal(t, "second", def.Description)
}

func TestMediaTypeSelection(t *testing.T) {
	s := loadSpec(t, `
openapi: 3.0.0
info: {title: t, version: "1"}
paths:
  /doc:
    get:
      responses:
        "200":
          description: ok
          content:
            application/problem+json:
              schema: {type: object, required: [title], properties: {title: {type: string}}}
            text/*:
              schema: {type: string, maxLength: 3}
            application/xml: {}
`)
	cases := []struct {
		name        string
		contentType string
		body        any
		wantErr     bool
	}{
		{"exact with params", "application/problem+json; charset=utf-8", map[string]any{"title": "x"}, false},
		{"exact violation", "application/problem+json", map[string]any{}, true},
		{"wildcard", "text/plain", "abcdef", true},
		{"media type without schema", "application/xml", "<a/>", false},
		{"unknown falls back to json", "image/png", map[string]any{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := actual.New(map[string]any{
				"status":  200,
				"data":    tc.body,
				"headers": map[string]any{"content-type": tc.contentType},
				"request": map[string]any{"method": "GET", "path": "/doc"},
			})
			require.NoError(t, err)
			verr, err := s.ValidateResponse(r)
			require.NoError(t, err)
			if tc.wantErr {
				assert.NotNil(t, verr)
			} else {
				assert.Nil(t, verr)
			}
		})
	}
}

func TestSchemaForOrder(t *testing.T) {
	a, b, c := &openapi3.Schema{}, &openapi3.Schema{}, &openapi3.Schema{}
	def := &ResponseDefinition{Schemas: map[string]*openapi3.Schema{"text/plain": a, "application/vnd.api+json": b, "application/json": c}}
	assert.Same(t, c, def.SchemaFor(""))
	assert.Same(t, a, def.SchemaFor("TEXT/PLAIN"))

	def = &ResponseDefinition{Schemas: map[string]*openapi3.Schema{"text/plain": a, "application/vnd.api+json": b}}
	assert.Same(t, b, def.SchemaFor("image/png"))

	def = &ResponseDefinition{Schemas: map[string]*openapi3.Schema{"text/plain": a, "text/csv": b}}
	assert.Same(t, b, def.SchemaFor(""))

	assert.Nil(t, (&ResponseDefinition{}).SchemaFor("application/json"))
}

func TestValidateObject(t *testing.T) {
	for name, doc := range map[string]string{"v2": itemsV2Ref, "v3": itemsV3Ref} {
		t.Run(name, func(t *testing.T) {
			s := loadSpec(t, doc)
			schema, ok := s.SchemaObject("Item")
			require.True(t, ok)

			verr, err := s.ValidateObject(map[string]any{"name": "widget"}, schema)
			require.NoError(t, err)
			assert.Nil(t, verr)

			verr, err = s.ValidateObject(map[string]any{"name": 1}, schema)
			require.NoError(t, err)
			require.NotNil(t, verr)
			assert.Equal(t, InvalidObject, verr.Code)
			assert.Contains(t, verr.Message, "object.name")
			assert.NotContains(t, verr.Message, "response")

			_, ok = s.SchemaObject("Nope")
			assert.False(t, ok)
		})
	}
}

func TestValidateObject_KeepsPropertyNames(t *testing.T) {
	s := loadSpec(t, `
openapi: 3.0.0
info: {title: replies, version: "1"}
paths: {}
components:
  schemas:
    Reply:
      type: object
      properties:
        responseCode: {type: integer}
`)
	schema, ok := s.SchemaObject("Reply")
	require.True(t, ok)

	verr, err := s.ValidateObject(map[string]any{"responseCode": "x"}, schema)
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Equal(t, "object.responseCode value must be an integer", verr.Message)
}

func TestValidateObject_StructValues(t *testing.T) {
	s := loadSpec(t, itemsV3Ref)
	schema, ok := s.SchemaObject("Item")
	require.True(t, ok)

	type item struct {
		Name string `json:"name"`
	}
	verr, err := s.ValidateObject(item{Name: "widget"}, schema)
	require.NoError(t, err)
	assert.Nil(t, verr)
}

func TestComponentDefinitions(t *testing.T) {
	assert.Equal(t, "definitions", loadSpec(t, itemsV2).ComponentDefinitions())
	assert.Equal(t, "components", loadSpec(t, itemsV3).ComponentDefinitions())
	assert.Equal(t, spec.V2, loadSpec(t, itemsV2).Version())
}

func TestV2_XNullable(t *testing.T) {
	s := loadSpec(t, `
swagger: "2.0"
info: {title: t, version: "1"}
paths:
  /maybe:
    get:
      responses:
        "200":
          description: ok
          schema:
            type: object
            properties:
              note: {type: string, x-nullable: true}
              count: {type: integer}
`)
	verr, err := s.ValidateResponse(response(t, "GET", "/maybe", 200, map[string]any{"note": nil}))
	require.NoError(t, err)
	assert.Nil(t, verr)

	verr, err = s.ValidateResponse(response(t, "GET", "/maybe", 200, map[string]any{"count": nil}))
	require.NoError(t, err)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Message, "response.count")
}

func TestSpec_ConcurrentUse(t *testing.T) {
	s := loadSpec(t, itemsV3Ref)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := map[string]any{"name": "ok"}
			if i%2 == 1 {
				body = map[string]any{"name": i}
			}
			verr, err := s.ValidateResponse(response(t, "GET", "/items/1", 200, body))
			assert.NoError(t, err)
			assert.Equal(t, i%2 == 1, verr != nil)
		}(i)
	}
	wg.Wait()
}

func TestLoad(t *testing.T) {
	_, err := Load(context.Background(), "")
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)
	_, err = New(&spec.Document{Version: spec.V3})
	assert.Error(t, err)
}
