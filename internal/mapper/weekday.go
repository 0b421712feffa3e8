package mapper

import (
	"fmt"
	"time"
)

// DateLayout 日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// Dia 工作日枚举（存储形态）
type Dia string

const (
	Lunes     Dia = "LUNES"
	Martes    Dia = "MARTES"
	Miercoles Dia = "MIERCOLES"
	Jueves    Dia = "JUEVES"
	Viernes   Dia = "VIERNES"
)

// Dias 周一到周五，下标即相对周一的偏移天数
var Dias = []Dia{Lunes, Martes, Miercoles, Jueves, Viernes}

// Offset 返回相对周一的天数偏移，未知值返回 -1
func (d Dia) Offset() int {
	for i, v := range Dias {
		if v == d {
			return i
		}
	}
	return -1
}

// Valid 是否为合法工作日
func (d Dia) Valid() bool { return d.Offset() >= 0 }

// ParseFecha 解析 YYYY-MM-DD 为 UTC 零点
func ParseFecha(fecha string) (time.Time, error) {
	return time.Parse(DateLayout, fecha)
}

// FechaToDia 计算日期对应的工作日。无法解析或落在周六、周日时返回 ("", false)。
func FechaToDia(fecha string) (Dia, bool) {
	t, err := ParseFecha(fecha)
	if err != nil {
		return "", false
	}
	switch t.Weekday() {
	case time.Monday:
		return Lunes, true
	case time.Tuesday:
		return Martes, true
	case time.Wednesday:
		return Miercoles, true
	case time.Thursday:
		return Jueves, true
	case time.Friday:
		return Viernes, true
	default:
		return "", false
	}
}

// DiaToFecha 以 weekAnchor（该周周一）为基准，把工作日还原为具体日期
func DiaToFecha(dia Dia, weekAnchor string) (string, error) {
	offset := dia.Offset()
	if offset < 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidDay, dia)
	}
	anchor, err := ParseFecha(weekAnchor)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidDate, weekAnchor)
	}
	return anchor.AddDate(0, 0, offset).Format(DateLayout), nil
}

// WeekAnchorOf 返回日期所在周的周一
func WeekAnchorOf(fecha string) (string, error) {
	t, err := ParseFecha(fecha)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidDate, fecha)
	}
	// time.Weekday 以周日为 0
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back).Format(DateLayout), nil
}
