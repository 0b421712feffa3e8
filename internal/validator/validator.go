// Package validator 对外部导入的合并导出文档做完整审计。
//
// 三个阶段依次执行，遇到第一类失败即终止：结构 → 哈希 → 语义。
// 阶段内部的检查全部执行并累计，不短路。
package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/integrity"
	"github.com/reyesbrostec/deceAUM/internal/schema"
)

// Options 校验选项
type Options struct {
	// Fix 哈希不一致时用重新计算的值覆盖 meta，并在 Report.Corrected 中返回修正后的文档
	Fix bool
	// Formal 非空时额外执行正式 JSON Schema 校验
	Formal *schema.Formal
}

// Validator 导出文档校验器，无内部状态，可并发使用
type Validator struct {
	logger *zap.Logger
}

// New 创建校验器，logger 可为 nil
func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Validate 校验原始 JSON 文档。
// 返回的 error 仅表示内部编码失败；文档本身的问题全部体现在 Report 中。
func (v *Validator) Validate(raw []byte, opts Options) (*Report, error) {
	report := &Report{}

	// ── 1. 结构 ──
	root, errs := decodeGeneric(raw)
	if root != nil {
		errs = append(errs, structuralErrors(root)...)
	}
	if opts.Formal != nil && root != nil {
		formalErrs, err := opts.Formal.Check(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("schema formal: %v", err))
		}
		errs = append(errs, formalErrs...)
	}

	var doc parsedDocument
	if len(errs) == 0 {
		var err error
		doc, err = parseDocument(raw)
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		report.Outcome = OutcomeSchemaError
		report.SchemaErrors = errs
		v.logger.Debug("导出文档结构校验失败", zap.Int("errors", len(errs)))
		return report, nil
	}

	// ── 2. 哈希 ──
	hashes, err := integrity.Compute(doc.schedule, doc.normativa)
	if err != nil {
		return nil, fmt.Errorf("计算哈希失败: %w", err)
	}
	report.Integrity = []IntegrityCheck{
		{Block: BlockSchedule, Expected: hashes.Schedule, Actual: doc.scheduleHash, Match: hashes.Schedule == doc.scheduleHash},
		{Block: BlockNormativa, Expected: hashes.Normativa, Actual: doc.normativaHash, Match: hashes.Normativa == doc.normativaHash},
	}

	if mismatches := report.Mismatches(); len(mismatches) > 0 {
		if !opts.Fix {
			report.Outcome = OutcomeIntegrityError
			v.logger.Debug("导出文档哈希不一致", zap.Int("mismatches", len(mismatches)))
			return report, nil
		}

		corrected, err := patchHashes(raw, hashes)
		if err != nil {
			return nil, fmt.Errorf("写入修正哈希失败: %w", err)
		}
		report.Fixed = true
		report.Corrected = corrected
		for _, m := range mismatches {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Hash %s corregido: meta=%s esperado=%s", m.Block, m.Actual, m.Expected))
		}
	}

	// ── 3. 语义 ──
	warnings, semErrs := semanticChecks(doc.schedule, doc.normativa.LimiteExamenesPorDia)
	report.Warnings = append(report.Warnings, warnings...)
	report.SemanticErrors = semErrs

	switch {
	case len(semErrs) > 0:
		report.Outcome = OutcomeSemanticError
	case len(report.Warnings) > 0:
		report.Outcome = OutcomeValidWithWarnings
	default:
		report.Outcome = OutcomeValid
	}
	return report, nil
}

// ── 结构检查 ──

func decodeGeneric(raw []byte) (map[string]interface{}, []string) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, []string{fmt.Sprintf("JSON inválido: %v", err)}
	}
	root, ok := v.(map[string]interface{})
	if !ok {
		return nil, []string{"Raíz no es objeto"}
	}
	return root, nil
}

func structuralErrors(root map[string]interface{}) []string {
	var errs []string
	for _, key := range []string{"meta", "normativa", "schedule"} {
		if _, ok := root[key]; !ok {
			errs = append(errs, "Falta propiedad: "+key)
		}
	}

	meta, _ := root["meta"].(map[string]interface{})
	for _, key := range []string{"generated_at", "schedule_integrity_hash", "normativa_hash"} {
		if _, ok := meta[key].(string); !ok {
			errs = append(errs, "meta."+key+" faltante")
		}
	}

	if norm, ok := root["normativa"].(map[string]interface{}); ok {
		errs = append(errs, normativaErrors(norm)...)
	} else if _, present := root["normativa"]; present {
		errs = append(errs, "normativa no es objeto")
	}

	sched, _ := root["schedule"].(map[string]interface{})
	cursos, ok := sched["cursos"].(map[string]interface{})
	if !ok {
		errs = append(errs, "schedule.cursos faltante")
		return errs
	}

	keys := make([]string, 0, len(cursos))
	for k := range cursos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		items, ok := cursos[k].([]interface{})
		if !ok {
			errs = append(errs, fmt.Sprintf("schedule.cursos.%s no es lista", k))
			continue
		}
		for i, it := range items {
			item, ok := it.(map[string]interface{})
			if !ok {
				errs = append(errs, fmt.Sprintf("schedule.cursos.%s[%d] no es objeto", k, i))
				continue
			}
			for _, field := range []string{"dia", "periodo"} {
				if _, ok := item[field].(string); !ok {
					errs = append(errs, fmt.Sprintf("schedule.cursos.%s[%d].%s faltante", k, i, field))
				}
			}
		}
	}
	return errs
}

func normativaErrors(norm map[string]interface{}) []string {
	var errs []string
	n, ok := norm["limite_examenes_por_dia"].(json.Number)
	if !ok {
		errs = append(errs, "normativa.limite_examenes_por_dia faltante")
	} else if limite, err := n.Int64(); err != nil || limite < 1 {
		errs = append(errs, fmt.Sprintf("normativa.limite_examenes_por_dia inválido: %s", n))
	}

	ventana, ok := norm["ventana_diagnostica"].(map[string]interface{})
	if !ok {
		errs = append(errs, "normativa.ventana_diagnostica faltante")
		return errs
	}
	for _, key := range []string{"inicio", "fin"} {
		if _, ok := ventana[key].(string); !ok {
			errs = append(errs, "normativa.ventana_diagnostica."+key+" faltante")
		}
	}
	return errs
}

// ── 类型化解析 ──

type parsedDocument struct {
	normativa     schema.Normativa
	schedule      schema.Schedule
	scheduleHash  string
	normativaHash string
}

func parseDocument(raw []byte) (parsedDocument, error) {
	var doc struct {
		Meta struct {
			ScheduleIntegrityHash string `json:"schedule_integrity_hash"`
			NormativaHash         string `json:"normativa_hash"`
		} `json:"meta"`
		Normativa schema.Normativa `json:"normativa"`
		Schedule  schema.Schedule  `json:"schedule"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return parsedDocument{}, fmt.Errorf("documento no decodificable: %w", err)
	}
	return parsedDocument{
		normativa:     doc.Normativa,
		schedule:      doc.Schedule,
		scheduleHash:  doc.Meta.ScheduleIntegrityHash,
		normativaHash: doc.Meta.NormativaHash,
	}, nil
}

// patchHashes 只替换 meta 中的两个哈希，其余字段原样保留。
// 输出两空格缩进并以换行结尾；对象键按字典序重新排列。
func patchHashes(raw []byte, hashes integrity.Hashes) ([]byte, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(root["meta"], &meta); err != nil {
		return nil, err
	}

	sh, err := json.Marshal(hashes.Schedule)
	if err != nil {
		return nil, err
	}
	nh, err := json.Marshal(hashes.Normativa)
	if err != nil {
		return nil, err
	}
	meta["schedule_integrity_hash"] = sh
	meta["normativa_hash"] = nh

	metaRaw, err := schema.EncodeJSON(meta)
	if err != nil {
		return nil, err
	}
	root["meta"] = metaRaw
	return schema.EncodeIndent(root)
}
