package mapper

import (
	"errors"
	"testing"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
)

func newTestMapper() *Mapper {
	return New(catalog.Default())
}

func TestMapper_RoundTrip(t *testing.T) {
	m := newTestMapper()
	in := APIEntry{
		Curso:   "TERCERO DE BASICA",
		Fecha:   "2025-03-12",
		Periodo: "II",
		Materia: "LENGUA Y LITERATURA",
		Docente: "ACOSTA ESTEFANIA",
	}

	st, err := m.ToStorage(in)
	if err != nil {
		t.Fatalf("ToStorage 应成功: %v", err)
	}
	want := StorageEntry{
		CourseKey: "TERCERO_DE_BASICA",
		Dia:       Miercoles,
		Periodo:   "II",
		Materia:   "LENGUA Y LITERATURA",
		Docente:   "AE",
	}
	if st != want {
		t.Fatalf("存储形态不符: 期望 %+v，实际 %+v", want, st)
	}

	anchor, err := WeekAnchorOf(in.Fecha)
	if err != nil {
		t.Fatalf("WeekAnchorOf 失败: %v", err)
	}
	if anchor != "2025-03-10" {
		t.Errorf("期望周一 2025-03-10，实际=%s", anchor)
	}

	back, err := m.ToAPI(st, anchor)
	if err != nil {
		t.Fatalf("ToAPI 应成功: %v", err)
	}
	if back != in {
		t.Errorf("往返结果不一致: 期望 %+v，实际 %+v", in, back)
	}
}

func TestMapper_ToStorage_Failures(t *testing.T) {
	m := newTestMapper()
	base := APIEntry{Curso: "TERCERO DE BASICA", Fecha: "2025-03-12", Periodo: "II", Materia: "mat", Docente: "ACOSTA ESTEFANIA"}

	tests := []struct {
		name   string
		modify func(e *APIEntry)
		want   error
	}{
		{"未知课程", func(e *APIEntry) { e.Curso = "CURSO_INEXISTENTE"; e.Docente = "DOCENTE INEXISTENTE" }, ErrUnknownCourse},
		{"周六", func(e *APIEntry) { e.Fecha = "2025-03-15" }, ErrInvalidDate},
		{"非法日期", func(e *APIEntry) { e.Fecha = "invalid" }, ErrInvalidDate},
		{"未知教师", func(e *APIEntry) { e.Docente = "NADIE CONOCIDO" }, ErrUnknownTeacher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.modify(&e)
			st, err := m.ToStorage(e)
			if !errors.Is(err, tt.want) {
				t.Fatalf("期望 %v，实际: %v", tt.want, err)
			}
			if st != (StorageEntry{}) {
				t.Errorf("失败时不应返回部分结果: %+v", st)
			}
			var me *MappingError
			if !errors.As(err, &me) {
				t.Errorf("期望 *MappingError，实际 %T", err)
			}
		})
	}
}

func TestMapper_ToStorage_FuzzyTeacherAndUppercase(t *testing.T) {
	m := newTestMapper()
	st, err := m.ToStorage(APIEntry{
		Curso: "octavo de basica", Fecha: "2025-03-14", Periodo: "I", Materia: "física", Docente: "becerra",
	})
	if err != nil {
		t.Fatalf("ToStorage 应成功: %v", err)
	}
	if st.Docente != "BD" {
		t.Errorf("期望模糊匹配到 BD，实际=%s", st.Docente)
	}
	if st.Materia != "FÍSICA" {
		t.Errorf("期望科目大写 FÍSICA，实际=%s", st.Materia)
	}
	if st.Dia != Viernes {
		t.Errorf("期望 VIERNES，实际=%s", st.Dia)
	}
}

func TestMapper_ToAPI_Failures(t *testing.T) {
	m := newTestMapper()
	good := StorageEntry{CourseKey: "TERCERO_DE_BASICA", Dia: Lunes, Periodo: "I", Materia: "MAT", Docente: "AE"}

	bad := good
	bad.CourseKey = "NOPE"
	if _, err := m.ToAPI(bad, "2025-03-10"); !errors.Is(err, ErrUnknownCourseKey) {
		t.Errorf("期望 ErrUnknownCourseKey，实际: %v", err)
	}

	bad = good
	bad.Docente = "ZZ"
	if _, err := m.ToAPI(bad, "2025-03-10"); !errors.Is(err, ErrUnknownTeacherCode) {
		t.Errorf("期望 ErrUnknownTeacherCode，实际: %v", err)
	}

	bad = good
	bad.Dia = "SABADO"
	if _, err := m.ToAPI(bad, "2025-03-10"); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("期望 ErrInvalidDay，实际: %v", err)
	}
}

func TestFechaToDia(t *testing.T) {
	tests := []struct {
		fecha  string
		want   Dia
		wantOK bool
	}{
		{"2025-03-10", Lunes, true},
		{"2025-03-11", Martes, true},
		{"2025-03-12", Miercoles, true},
		{"2025-03-13", Jueves, true},
		{"2025-03-14", Viernes, true},
		{"2025-03-15", "", false},
		{"2025-03-16", "", false},
		{"invalid", "", false},
		{"2025-02-30", "", false},
	}
	for _, tt := range tests {
		got, ok := FechaToDia(tt.fecha)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FechaToDia(%q) = (%q,%v)，期望 (%q,%v)", tt.fecha, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDiaToFecha(t *testing.T) {
	for i, d := range Dias {
		got, err := DiaToFecha(d, "2025-03-10")
		if err != nil {
			t.Fatalf("DiaToFecha(%s) 失败: %v", d, err)
		}
		want := []string{"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14"}[i]
		if got != want {
			t.Errorf("DiaToFecha(%s) = %s，期望 %s", d, got, want)
		}
	}

	// 跨月
	if got, _ := DiaToFecha(Viernes, "2025-03-31"); got != "2025-04-04" {
		t.Errorf("跨月计算错误: %s", got)
	}
}

func TestMapper_Validate(t *testing.T) {
	m := newTestMapper()

	res := m.Validate(APIEntry{Curso: "TERCERO DE BASICA", Fecha: "2025-03-15", Periodo: "II", Materia: "MAT", Docente: "X"})
	if !res.Valid {
		t.Errorf("周六与未知教师不属于 Validate 的检查范围: %v", res.Errors)
	}

	res = m.Validate(APIEntry{})
	if res.Valid || len(res.Errors) != 5 {
		t.Errorf("期望 5 个必填错误，实际=%v", res.Errors)
	}

	res = m.Validate(APIEntry{Curso: "NOPE", Fecha: "15/03/2025", Periodo: "IX"})
	want := []string{
		"Campo materia requerido",
		"Campo docente requerido",
		"Curso no válido: NOPE",
		"Formato de fecha inválido: 15/03/2025",
		"Periodo no válido: IX",
	}
	if len(res.Errors) != len(want) {
		t.Fatalf("期望 %d 个错误，实际=%v", len(want), res.Errors)
	}
	for i := range want {
		if res.Errors[i] != want[i] {
			t.Errorf("错误[%d] 期望 %q，实际 %q", i, want[i], res.Errors[i])
		}
	}
}
