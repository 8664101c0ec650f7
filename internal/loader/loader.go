package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Options control how documents are loaded.
type Options struct {
	// Strict validates each document against the OpenAPI schema and fails
	// on the first violation.
	Strict bool
	// Parallelism bounds concurrent loads in LoadDir; zero means unbounded.
	Parallelism int
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

type Result struct {
	// Path is the file the document was read from.
	Path string
	// Label is the version prefix, e.g. "v1".
	Label    string
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	Warnings []string
	// RawData holds the document exactly as read, before any conversion.
	RawData []byte
	// Converted is set when a Swagger 2.0 document was upgraded.
	Converted bool
}

func LoadFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	config := &datamodel.DocumentConfiguration{
		BasePath:            filepath.Dir(absPath),
		AllowFileReferences: true,
		Logger:              opts.logger(),
	}

	result, err := load(data, config, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	result.Path = path
	return result, nil
}

func load(data []byte, config *datamodel.DocumentConfiguration, opts Options) (*Result, error) {
	source := data
	swagger, err := isSwagger2(data)
	if err != nil {
		return nil, err
	}
	if swagger {
		source, err = convertSwagger2(data)
		if err != nil {
			return nil, fmt.Errorf("converting Swagger 2.0 document: %w", err)
		}
	}

	doc, err := libopenapi.NewDocumentWithConfiguration(source, config)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 2.0 and 3.x supported)", version)
	}

	if opts.Strict {
		if err := validate(doc); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Version:   version,
		RawData:   data,
		Converted: swagger,
	}

	model, err := doc.BuildV3Model()
	if err != nil {
		if model == nil {
			return nil, fmt.Errorf("building OpenAPI model: %w", err)
		}
		// Unresolvable references are reported precisely by the resolver
		// later on, so a partial model is still useful here.
		result.Warnings = append(result.Warnings, fmt.Sprintf("building OpenAPI model: %v", err))
	}
	result.Document = model

	if swagger {
		result.Warnings = append(result.Warnings, "Swagger 2.0 document converted to OpenAPI 3.0")
	}
	if strings.HasPrefix(version, "3.1") || strings.HasPrefix(version, "3.2") {
		result.Warnings = append(result.Warnings, fmt.Sprintf("OpenAPI %s detected; only 3.0 semantics are modeled", version))
	}

	return result, nil
}

func validate(doc libopenapi.Document) error {
	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		return fmt.Errorf("creating validator: %w", errs[0])
	}
	valid, violations := v.ValidateDocument()
	if valid {
		return nil
	}
	if len(violations) == 0 {
		return fmt.Errorf("document is not a valid OpenAPI document")
	}
	return fmt.Errorf("document is not a valid OpenAPI document (%d violations): %w", len(violations), violations[0])
}
