// Package integrity 计算导出文档各块的规范序列化及其 SHA-256 摘要。
//
// 规范序列化与 course_key 及组内条目的先后顺序无关，是跨环境比较哈希的基础。
package integrity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/reyesbrostec/deceAUM/internal/schema"
)

// canonicalScheduleDoc 固定字段顺序：version, generated_at, cursos
type canonicalScheduleDoc struct {
	Version     int                          `json:"version"`
	GeneratedAt string                       `json:"generated_at"`
	Cursos      map[string][]json.RawMessage `json:"cursos"`
}

// CanonicalSchedule 排考块的规范序列化。
//
// course_key 按字典序输出（map 编码天然有序）；组内按 (dia, periodo)
// 做普通字符串比较排序，dia 因此按字母序而非星期顺序排列：
// JUEVES < LUNES < MARTES < MIERCOLES < VIERNES。该顺序关系到哈希兼容性，不可更改。
// dia、periodo 相同时再依次比较 fecha、materia、docente 与编码结果，保证结果与输入顺序无关。
//
// 条目按解码时的原始对象输出，未知字段与缺失字段都会反映在摘要中。
func CanonicalSchedule(s schema.Schedule) (string, error) {
	cursos := make(map[string][]json.RawMessage, len(s.Cursos))
	for key, items := range s.Cursos {
		encoded := make([]encodedItem, len(items))
		for i, it := range items {
			b, err := it.MarshalJSON()
			if err != nil {
				return "", fmt.Errorf("schedule.cursos.%s[%d]: %w", key, i, err)
			}
			encoded[i] = encodedItem{item: it, raw: b}
		}
		sort.SliceStable(encoded, func(i, j int) bool {
			return encodedLess(encoded[i], encoded[j])
		})

		out := make([]json.RawMessage, len(encoded))
		for i, e := range encoded {
			out[i] = e.raw
		}
		cursos[key] = out
	}

	out, err := schema.EncodeJSON(canonicalScheduleDoc{
		Version:     s.Version,
		GeneratedAt: s.GeneratedAt,
		Cursos:      cursos,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type encodedItem struct {
	item schema.Item
	raw  json.RawMessage
}

func encodedLess(a, b encodedItem) bool {
	x, y := a.item, b.item
	if x.Dia != y.Dia {
		return x.Dia < y.Dia
	}
	if x.Periodo != y.Periodo {
		return x.Periodo < y.Periodo
	}
	if x.Fecha != y.Fecha {
		return x.Fecha < y.Fecha
	}
	if x.Materia != y.Materia {
		return x.Materia < y.Materia
	}
	if x.Docente != y.Docente {
		return x.Docente < y.Docente
	}
	return bytes.Compare(a.raw, b.raw) < 0
}

// CanonicalNormativa 规则块的规范序列化：顶层键按字典序，嵌套对象不递归排序
func CanonicalNormativa(n schema.Normativa) (string, error) {
	out, err := schema.EncodeJSON(n)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
