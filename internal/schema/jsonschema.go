package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchemaV02 内嵌的 v0.2 JSON Schema 原文
//
//go:embed v0_2.json
var JSONSchemaV02 []byte

const embeddedSchemaURL = "file:///dece/schedule_schema.v0.2.json"

// Formal 编译后的正式 JSON Schema
type Formal struct {
	schema *jsonschema.Schema
}

// CompileEmbedded 编译内嵌的 v0.2 Schema
func CompileEmbedded() (*Formal, error) {
	s, err := jsonschema.CompileString(embeddedSchemaURL, string(JSONSchemaV02))
	if err != nil {
		return nil, fmt.Errorf("编译内嵌 schema 失败: %w", err)
	}
	return &Formal{schema: s}, nil
}

// CompileFile 从文件编译 Schema（--schema 参数）
func CompileFile(path string) (*Formal, error) {
	s, err := jsonschema.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("编译 schema %s 失败: %w", path, err)
	}
	return &Formal{schema: s}, nil
}

// Check 校验原始 JSON，返回扁平化的违规列表；nil 表示通过
func (f *Formal) Check(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	err := f.schema.Validate(v)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}
	var out []string
	flattenValidationError(ve, &out)
	return out, nil
}

func flattenValidationError(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		flattenValidationError(c, out)
	}
}
