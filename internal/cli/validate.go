package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi-validator/internal/actual"
	"github.com/mark3labs/openapi-validator/internal/apispec"
	"github.com/mark3labs/openapi-validator/internal/diagnostics"
	"github.com/mark3labs/openapi-validator/internal/spec"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check captured HTTP responses against an OpenAPI/Swagger document",
		Long: "Check captured HTTP responses against an OpenAPI/Swagger document. " +
			"Each capture file holds one response object or a list of them, as JSON or YAML.",
		Example: strings.TrimSpace(`  openapi-validator validate --spec openapi.yaml --response captures/get-item.json
  openapi-validator --config openapi-validator.yaml validate --not --response captures/broken.yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.validateForValidate(); err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg, newConsole(cmd, cfg))
		},
	}

	flags := cmd.Flags()
	flags.String("spec", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringArray("response", nil, "Capture file with a response or a list of responses (repeatable)")
	flags.Bool("not", false, "Expect every response to fail validation")

	return cmd
}

func runValidate(ctx context.Context, cfg *Config, con *console) error {
	s, err := apispec.Load(ctx, cfg.Spec, spec.WithLogger(con.logger))
	if err != nil {
		return specUsageError(err)
	}
	con.logger.Debug("loaded API spec", "spec", cfg.Spec, "version", s.Version().String(), "paths", len(s.Paths()))

	passed, total := 0, 0
	for _, path := range cfg.Responses {
		captures, err := readCaptures(path)
		if err != nil {
			return err
		}
		for i, raw := range captures {
			resp, err := actual.New(raw)
			if err != nil {
				return newUsageError(fmt.Sprintf("%s: response %d: %v", path, i, err))
			}
			verr, err := s.ValidateResponse(resp)
			if err != nil {
				return fmt.Errorf("%s: response %d: %w", path, i, err)
			}

			pass := (verr == nil) != cfg.Not
			var detail string
			switch {
			case verr != nil && !cfg.Not:
				detail = diagnostics.ResponseMessage(s, resp, verr)
			case verr == nil && cfg.Not:
				detail = diagnostics.NegatedResponseMessage(s, resp)
			}
			if verr != nil {
				con.logger.Debug("response rejected", "file", path, "index", i, "code", verr.Code.String())
			}

			req := resp.Request()
			con.report(pass, fmt.Sprintf("%s[%d] %s %s -> %d", path, i, req.Method, req.Path, resp.Status()), detail)
			total++
			if pass {
				passed++
			}
		}
	}

	con.summary(passed, total)
	if passed < total {
		return fmt.Errorf("%w: %d of %d responses", ErrChecksFailed, total-passed, total)
	}
	return nil
}

// readCaptures decodes a capture file into response maps.
func readCaptures(path string) ([]any, error) {
	raw, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case map[string]any:
		return []any{v}, nil
	case []any:
		for i, item := range v {
			if _, ok := item.(map[string]any); !ok {
				return nil, newUsageError(fmt.Sprintf("capture file %q: entry %d is %T, expected an object", path, i, item))
			}
		}
		return v, nil
	default:
		return nil, newUsageError(fmt.Sprintf("capture file %q: expected a response object or a list of them", path))
	}
}

// readDocument reads a JSON or YAML file into plain values.
func readDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read %q: %v", path, err))
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse %q: %v", path, err))
	}
	return raw, nil
}
