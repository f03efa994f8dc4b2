package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const itemsSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Items API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /items/{id}:\n" +
	"    parameters:\n" +
	"      - {name: id, in: path, required: true, schema: {type: string}}\n" +
	"    get:\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: an item\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema: {$ref: '#/components/schemas/Item'}\n" +
	"components:\n" +
	"  schemas:\n" +
	"    Item:\n" +
	"      type: object\n" +
	"      required: [name]\n" +
	"      properties:\n" +
	"        name: {type: string}\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// execute runs the CLI with colours disabled and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
