package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	keyLimite  = "limite_examenes_por_dia"
	keyVentana = "ventana_diagnostica"
)

// Normativa 规则块。只解释两个字段，其余字段原样保留在 Extra 中参与哈希。
type Normativa struct {
	LimiteExamenesPorDia int                        `json:"limite_examenes_por_dia" validate:"min=1"`
	VentanaDiagnostica   VentanaDiagnostica         `json:"ventana_diagnostica"`
	Extra                map[string]json.RawMessage `json:"-"`

	// ventanaRaw 解码时的原始字节，保留嵌套键顺序
	ventanaRaw json.RawMessage
}

// VentanaDiagnostica 诊断窗口，闭区间
type VentanaDiagnostica struct {
	Inicio string `json:"inicio" validate:"required,datetime=2006-01-02"`
	Fin    string `json:"fin"    validate:"required,datetime=2006-01-02"`
}

// Contains 判断日期是否落在窗口内（按日期比较，含两端）
func (v VentanaDiagnostica) Contains(fecha time.Time) bool {
	inicio, err := time.Parse("2006-01-02", v.Inicio)
	if err != nil {
		return false
	}
	fin, err := time.Parse("2006-01-02", v.Fin)
	if err != nil {
		return false
	}
	// 与 UTC 零点 / 当日 23:59:59 边界比较
	day := time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 12, 0, 0, 0, time.UTC)
	end := fin.Add(24*time.Hour - time.Second)
	return !day.Before(inicio) && !day.After(end)
}

var validate = validator.New()

// Validate 校验规则块字段
func (n *Normativa) Validate() error {
	if err := validate.Struct(n); err != nil {
		return err
	}
	if n.VentanaDiagnostica.Fin < n.VentanaDiagnostica.Inicio {
		return fmt.Errorf("ventana_diagnostica: fin (%s) anterior a inicio (%s)",
			n.VentanaDiagnostica.Fin, n.VentanaDiagnostica.Inicio)
	}
	return nil
}

// UnmarshalJSON 拆出已知字段，其余保留为原始 JSON
func (n *Normativa) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Normativa
	if v, ok := raw[keyLimite]; ok {
		if err := json.Unmarshal(v, &out.LimiteExamenesPorDia); err != nil {
			return fmt.Errorf("%s: %w", keyLimite, err)
		}
		delete(raw, keyLimite)
	}
	if v, ok := raw[keyVentana]; ok {
		if err := json.Unmarshal(v, &out.VentanaDiagnostica); err != nil {
			return fmt.Errorf("%s: %w", keyVentana, err)
		}
		out.ventanaRaw = append(json.RawMessage(nil), v...)
		delete(raw, keyVentana)
	}
	if len(raw) > 0 {
		out.Extra = raw
	}

	*n = out
	return nil
}

// MarshalJSON 顶层键按字典序输出，嵌套值不重新排序
func (n Normativa) MarshalJSON() ([]byte, error) {
	fields, err := n.fields()
	if err != nil {
		return nil, err
	}
	// map 编码时键自动按字典序排列
	return EncodeJSON(fields)
}

func (n Normativa) fields() (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(n.Extra)+2)
	for k, v := range n.Extra {
		norm, err := NormalizeJSON(v)
		if err != nil {
			return nil, err
		}
		fields[k] = norm
	}

	limite, err := json.Marshal(n.LimiteExamenesPorDia)
	if err != nil {
		return nil, err
	}
	fields[keyLimite] = limite

	ventana, err := n.ventanaJSON()
	if err != nil {
		return nil, err
	}
	fields[keyVentana] = ventana

	return fields, nil
}

// ventanaJSON 若原始字节仍与当前值一致则沿用原始字节（保留键顺序）
func (n Normativa) ventanaJSON() (json.RawMessage, error) {
	if len(n.ventanaRaw) > 0 {
		var decoded VentanaDiagnostica
		if err := json.Unmarshal(n.ventanaRaw, &decoded); err == nil && decoded == n.VentanaDiagnostica {
			if out, err := NormalizeJSON(n.ventanaRaw); err == nil {
				return out, nil
			}
		}
	}
	return EncodeJSON(n.VentanaDiagnostica)
}
