// Package rules 在单条考试写入前执行容量与日期规则检查。
//
// 与导出校验的穷举式审计不同，这里遇到第一个不满足的规则即返回。
package rules

import (
	"errors"
	"fmt"

	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/model"
	"github.com/reyesbrostec/deceAUM/internal/schema"
)

// ── 拒绝类别 ──

var (
	ErrNonBusinessDay         = errors.New("fecha no es día hábil (L-V)")
	ErrOutsideWindow          = errors.New("fecha fuera de ventana diagnóstica")
	ErrDuplicateEntry         = errors.New("ya existe examen para ese curso/fecha/periodo")
	ErrDailyLimitExceeded     = errors.New("límite diario excedido para ese curso y fecha")
	ErrWeekdayDensityExceeded = errors.New("demasiados exámenes concentrados en ese día de la semana")
)

// RejectionError 规则拒绝。Kind 为上面的类别之一，可用 errors.Is 区分。
type RejectionError struct {
	Kind    error
	Message string
	Used    int `json:"used,omitempty"`
	Limit   int `json:"limit,omitempty"`
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *RejectionError) Unwrap() error { return e.Kind }

// Candidate 待写入的考试（存储形态的关键字段）
type Candidate struct {
	CourseKey string
	Fecha     string
	Periodo   string
}

// Checker 持有本次导出周期内不可变的规则块
type Checker struct {
	normativa schema.Normativa
}

// NewChecker 创建 Checker
func NewChecker(n schema.Normativa) *Checker {
	return &Checker{normativa: n}
}

// Normativa 返回当前规则块
func (c *Checker) Normativa() schema.Normativa { return c.normativa }

// Check 依次检查：工作日 → 诊断窗口 → 重复 → 单日上限 → 同一星期几密度。
// existing 为已存在的记录（可以是全部，也可以只含同课程记录）。
func (c *Checker) Check(cand Candidate, existing []model.ExamEntry) error {
	limite := c.normativa.LimiteExamenesPorDia

	dia, ok := mapper.FechaToDia(cand.Fecha)
	if !ok {
		return &RejectionError{Kind: ErrNonBusinessDay, Message: "Fecha no es día hábil (L-V)"}
	}

	fecha, err := mapper.ParseFecha(cand.Fecha)
	if err != nil || !c.normativa.VentanaDiagnostica.Contains(fecha) {
		return &RejectionError{
			Kind: ErrOutsideWindow,
			Message: fmt.Sprintf("Fecha fuera de ventana diagnóstica (%s a %s)",
				c.normativa.VentanaDiagnostica.Inicio, c.normativa.VentanaDiagnostica.Fin),
		}
	}

	var sameDate, sameDia int
	for i := range existing {
		e := &existing[i]
		if e.CourseKey != cand.CourseKey {
			continue
		}
		if e.SameSlot(cand.CourseKey, cand.Fecha, cand.Periodo) {
			return &RejectionError{Kind: ErrDuplicateEntry, Message: "Ya existe examen para ese curso/fecha/periodo"}
		}
		if e.Fecha == cand.Fecha {
			sameDate++
		}
		if e.Dia == string(dia) {
			sameDia++
		}
	}

	if sameDate >= limite {
		return &RejectionError{
			Kind:    ErrDailyLimitExceeded,
			Message: fmt.Sprintf("Límite diario excedido (%d/%d) para ese curso y fecha", sameDate, limite),
			Used:    sameDate,
			Limit:   limite,
		}
	}

	// 粗粒度启发式：同一课程同一星期几（跨周累计）达到单日上限的两倍
	if sameDia >= limite*2 {
		return &RejectionError{
			Kind:    ErrWeekdayDensityExceeded,
			Message: "Demasiados exámenes concentrados en ese día de la semana",
			Used:    sameDia,
			Limit:   limite * 2,
		}
	}

	return nil
}
