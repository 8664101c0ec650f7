package opbuilder

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/specerr"
)

// errorSet registers <name>Error from the non-2xx responses and returns its
// name, or "" when the operation declares none.
//
// A response whose JSON schema is a string enumeration contributes one
// variant per value; any other response contributes a single variant named
// after its HTTP status text.
func (b *builder) errorSet(name string, responses []model.Response, pointer string) (string, error) {
	set := &ir.ErrorSet{}
	type pair struct {
		status int
		detail string
	}
	owners := make(map[string]pair)
	var docs []string

	for _, r := range responses {
		if isSuccess(r.StatusCode) {
			continue
		}
		respPointer := specerr.Append(pointer, "responses", r.StatusCode)
		status, err := statusCode(r.StatusCode, respPointer)
		if err != nil {
			return "", err
		}

		details, err := b.errorDetails(r, status, respPointer)
		if err != nil {
			return "", err
		}

		doc := fmt.Sprintf("Status %d %s:", status, http.StatusText(status))
		if r.Description != "" {
			doc += "\n" + r.Description
		}
		docs = append(docs, doc)

		for _, detail := range details {
			id := golang.Identifier(detail)
			p := pair{status: status, detail: detail}
			if prev, taken := owners[id]; taken {
				if prev == p {
					continue
				}
				return "", specerr.New(specerr.CodeNameCollision, respPointer,
					"error %q (status %d) and %q (status %d) both map to identifier %s",
					prev.detail, prev.status, detail, status, id)
			}
			owners[id] = p
			set.Variants = append(set.Variants, ir.ErrorVariant{Identifier: id, Detail: detail, Status: status})
		}
	}

	if len(set.Variants) == 0 {
		return "", nil
	}
	set.Doc = strings.Join(docs, "\n\n")
	setName := name + "Error"
	if _, err := b.reg.Register(ir.Definition{Name: setName, Kind: set}); err != nil {
		return "", specerr.WithPointer(err, pointer)
	}
	return setName, nil
}

func (b *builder) errorDetails(r model.Response, status int, pointer string) ([]string, error) {
	media, ok, err := jsonContent(r.Content, pointer)
	if err != nil {
		return nil, err
	}
	fallback := []string{http.StatusText(status)}
	if !ok {
		return fallback, nil
	}
	res, err := b.res.Schema(media.Schema)
	if err != nil {
		return nil, specerr.WithPointer(err, pointer)
	}
	details, ok := stringLiterals(res.Schema.Enum)
	if !ok {
		return nil, specerr.Unsupported(specerr.Append(pointer, "content"),
			"error response schema must be a string enum or literal")
	}
	return details, nil
}

// stringLiterals returns the values of a string enum, ignoring null.
func stringLiterals(values []model.Value) ([]string, bool) {
	var out []string
	for _, v := range values {
		switch v.Kind {
		case model.ValueString:
			out = append(out, v.Text)
		case model.ValueNull:
		default:
			return nil, false
		}
	}
	return out, len(out) > 0
}

// statusCode maps "default" to 500 and rejects ranges such as "4XX".
func statusCode(code, pointer string) (int, error) {
	if code == "default" {
		return http.StatusInternalServerError, nil
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 || n > 599 {
		return 0, specerr.Unsupported(pointer, "response status %q is not supported", code)
	}
	return n, nil
}
