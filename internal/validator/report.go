package validator

// Outcome 校验结论
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeValidWithWarnings
	OutcomeSchemaError
	OutcomeIntegrityError
	OutcomeSemanticError
)

var outcomeNames = map[Outcome]string{
	OutcomeValid:             "valid",
	OutcomeValidWithWarnings: "valid_with_warnings",
	OutcomeSchemaError:       "schema_error",
	OutcomeIntegrityError:    "integrity_error",
	OutcomeSemanticError:     "semantic_error",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// MarshalText 以名称形式出现在 JSON 报告中
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ExitCode 命令行退出码：0 通过（含警告）、1 结构错误、2 哈希不一致、3 语义错误
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeValid, OutcomeValidWithWarnings:
		return 0
	case OutcomeSchemaError:
		return 1
	case OutcomeIntegrityError:
		return 2
	case OutcomeSemanticError:
		return 3
	}
	return 4
}

// Accepted 文档是否可被接收
func (o Outcome) Accepted() bool {
	return o == OutcomeValid || o == OutcomeValidWithWarnings
}

// 块名称
const (
	BlockSchedule  = "schedule"
	BlockNormativa = "normativa"
)

// IntegrityCheck 单个块的哈希比对结果
type IntegrityCheck struct {
	Block    string `json:"block"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Match    bool   `json:"match"`
}

// Report 校验报告
type Report struct {
	Outcome        Outcome          `json:"outcome"`
	SchemaErrors   []string         `json:"schema_errors,omitempty"`
	Integrity      []IntegrityCheck `json:"integrity,omitempty"`
	Fixed          bool             `json:"fixed"`
	Corrected      []byte           `json:"-"`
	Warnings       []string         `json:"warnings,omitempty"`
	SemanticErrors []string         `json:"semantic_errors,omitempty"`
}

// Mismatches 返回哈希不一致的块
func (r *Report) Mismatches() []IntegrityCheck {
	var out []IntegrityCheck
	for _, c := range r.Integrity {
		if !c.Match {
			out = append(out, c)
		}
	}
	return out
}
