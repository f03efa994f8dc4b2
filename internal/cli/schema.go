package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/openapi-validator/internal/apispec"
	"github.com/mark3labs/openapi-validator/internal/diagnostics"
	"github.com/mark3labs/openapi-validator/internal/spec"
)

var schemaRunner = runSchema

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Check an object against a named schema of an OpenAPI/Swagger document",
		Long: "Check an object (a JSON or YAML file) against a schema declared under " +
			"components/schemas (OpenAPI 3) or definitions (Swagger 2.0).",
		Example: strings.TrimSpace(`  openapi-validator schema --spec openapi.yaml --schema Pet --object pet.json`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.validateForSchema(); err != nil {
				return err
			}
			return schemaRunner(cmd.Context(), cfg, newConsole(cmd, cfg))
		},
	}

	flags := cmd.Flags()
	flags.String("spec", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("schema", "", "Name of the schema to check against")
	flags.String("object", "", "JSON or YAML file holding the object")
	flags.Bool("not", false, "Expect the object to fail validation")

	return cmd
}

func runSchema(ctx context.Context, cfg *Config, con *console) error {
	s, err := apispec.Load(ctx, cfg.Spec, spec.WithLogger(con.logger))
	if err != nil {
		return specUsageError(err)
	}
	schema, ok := s.SchemaObject(cfg.Schema)
	if !ok {
		return newUsageError(diagnostics.MissingSchemaMessage(s, cfg.Schema))
	}
	obj, err := readDocument(cfg.Object)
	if err != nil {
		return err
	}

	verr, err := s.ValidateObject(obj, schema)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Object, err)
	}
	pass := (verr == nil) != cfg.Not
	var detail string
	if !pass {
		detail = diagnostics.SchemaMessage(s, cfg.Schema, obj, verr)
	}
	con.report(pass, fmt.Sprintf("%s against schema '%s'", cfg.Object, cfg.Schema), detail)

	passed := 0
	if pass {
		passed = 1
	}
	con.summary(passed, 1)
	if !pass {
		return fmt.Errorf("%w: %s against schema %q", ErrChecksFailed, cfg.Object, cfg.Schema)
	}
	return nil
}
