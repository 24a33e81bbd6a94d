// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package errors defines Cairn's error taxonomy on top of samber/oops.
// Every error carries a machine-readable dotted Code; classification
// helpers inspect the code's trailing reason segment.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreConfigInvalid     Code = "store.config.invalid_value"
	CodeStoreInputInvalid      Code = "store.input.invalid_input"
	CodeStoreSearchUnsupported Code = "store.search.unsupported"
	CodeStoreFilterUnsupported Code = "store.filter.unsupported"
	CodeStoreDatabaseFailure   Code = "store.database.failure"
	CodeStoreVectorInvalid     Code = "store.vector.invalid_input"
	CodeStoreMetadataInvalid   Code = "store.metadata.invalid_format"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeProviderRequestInvalid  Code = "provider.request.invalid"
	CodeProviderResponseInvalid Code = "provider.response.invalid"
	CodeProviderUpstreamFailure Code = "provider.upstream.failure"

	CodeIngestReadFailure    Code = "ingest.read.failure"
	CodeIngestExtractFailure Code = "ingest.extract.failure"
	CodeIngestEmptyDocument  Code = "ingest.document.empty"

	CodeCLISetupFailure Code = "cli.setup.failure"
	CodeCLIInputInvalid Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldTable(value string) Attr {
	return Field("table", value)
}

func FieldID(value string) Attr {
	return Field("id", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsUnsupported(err error) bool {
	return reason(CodeOf(err)) == "unsupported"
}

func IsDatabaseFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "database") && reason(code) == "failure"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func Join(errs ...error) error {
	return oops.Code(CodeStoreDatabaseFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
