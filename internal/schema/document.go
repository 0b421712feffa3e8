// Package schema 定义排考导出文档 v0.2 的结构与 JSON 编码约定。
package schema

import (
	"bytes"
	"encoding/json"
)

// Version 当前导出文档的 schema_version
const Version = "0.2"

// Document 合并导出文档：元数据 + 规则块 + 排考块
type Document struct {
	Meta      Meta      `json:"meta"`
	Normativa Normativa `json:"normativa"`
	Schedule  Schedule  `json:"schedule"`
}

// Meta 导出元数据。两个哈希均为派生值，必须等于对应块规范序列化的摘要。
type Meta struct {
	GeneratedAt           string `json:"generated_at"`
	Version               int    `json:"version"`
	SchemaVersion         string `json:"schema_version"`
	ScheduleIntegrityHash string `json:"schedule_integrity_hash"`
	NormativaHash         string `json:"normativa_hash"`
}

// Schedule 排考块，cursos 以 course_key 分组。组内顺序无业务含义。
type Schedule struct {
	Version     int               `json:"version"`
	GeneratedAt string            `json:"generated_at"`
	Cursos      map[string][]Item `json:"cursos"`
}

// Item 导出文档中的单条考试（存储形态 + 具体日期）。
// 从文档解码时保留原始字节，未知字段与键顺序因此参与哈希。
type Item struct {
	Dia     string `json:"dia"`
	Periodo string `json:"periodo"`
	Materia string `json:"materia"`
	Docente string `json:"docente"`
	Fecha   string `json:"fecha"`

	raw json.RawMessage
}

// itemFields 不带原始字节的编码形态
type itemFields struct {
	Dia     string `json:"dia"`
	Periodo string `json:"periodo"`
	Materia string `json:"materia"`
	Docente string `json:"docente"`
	Fecha   string `json:"fecha"`
}

func (it Item) fields() itemFields {
	return itemFields{Dia: it.Dia, Periodo: it.Periodo, Materia: it.Materia, Docente: it.Docente, Fecha: it.Fecha}
}

// UnmarshalJSON 解出已知字段并保留整个对象的原始 JSON
func (it *Item) UnmarshalJSON(data []byte) error {
	var f itemFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*it = Item{Dia: f.Dia, Periodo: f.Periodo, Materia: f.Materia, Docente: f.Docente, Fecha: f.Fecha}
	it.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON 原始字节仍与当前字段一致时按原样（规范化后）输出，否则按固定字段顺序编码
func (it Item) MarshalJSON() ([]byte, error) {
	if len(it.raw) > 0 {
		var decoded itemFields
		if err := json.Unmarshal(it.raw, &decoded); err == nil && decoded == it.fields() {
			if out, err := NormalizeJSON(it.raw); err == nil {
				return out, nil
			}
		}
	}
	return EncodeJSON(it.fields())
}

// EncodeJSON 紧凑编码且不转义 HTML 字符（<、>、&），
// 与浏览器端 JSON.stringify 的输出保持一致
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeIndent 两空格缩进并以换行结尾，用于写回文件
func EncodeIndent(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
