package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/integrity"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	"github.com/reyesbrostec/deceAUM/internal/validator"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, ExamService) {
	t.Helper()
	exams := repository.NewMemoryExamRepo()
	examSvc := setupTestExamService(exams)

	svc := NewExportService(exams, catalog.Default(), testNormativa(),
		&config.ScheduleConfig{Version: 1, WeekAnchor: "2025-03-10"}, nil, 0, zap.NewNop())
	svc.(*exportService).now = func() time.Time {
		return time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC)
	}
	return svc, examSvc
}

func seedExams(t *testing.T, exam ExamService) {
	t.Helper()
	ctx := context.Background()
	reqs := []struct{ curso, fecha, periodo, materia, docente string }{
		{"TERCERO DE BASICA", "2025-09-18", "II", "LENGUA Y LITERATURA", "ACOSTA ESTEFANIA"},
		{"TERCERO DE BASICA", "2025-09-16", "I", "MATEMÁTICAS", "MALLA SANTIAGO"},
		{"PRIMERO BACHILLERATO", "2025-09-17", "III", "QUÍMICA", "PUCO EVELYN"},
	}
	for _, r := range reqs {
		if _, err := exam.Create(ctx, examReq(r.curso, r.fecha, r.periodo, r.materia, r.docente)); err != nil {
			t.Fatalf("准备数据失败: %v", err)
		}
	}
}

// ── BuildDocument 测试 ──

func TestExportService_BuildDocument(t *testing.T) {
	svc, exam := setupTestExportService(t)
	seedExams(t, exam)

	doc, err := svc.BuildDocument(context.Background())
	if err != nil {
		t.Fatalf("BuildDocument 应成功: %v", err)
	}
	if doc.Meta.SchemaVersion != schema.Version || doc.Meta.Version != 1 {
		t.Errorf("meta 不符: %+v", doc.Meta)
	}
	if doc.Meta.GeneratedAt != "2025-09-10T08:00:00.000Z" || doc.Schedule.GeneratedAt != doc.Meta.GeneratedAt {
		t.Errorf("generated_at 不符: meta=%s schedule=%s", doc.Meta.GeneratedAt, doc.Schedule.GeneratedAt)
	}
	if len(doc.Schedule.Cursos["TERCERO_DE_BASICA"]) != 2 || len(doc.Schedule.Cursos["PRIMERO_BACHILLERATO"]) != 1 {
		t.Errorf("分组不符: %+v", doc.Schedule.Cursos)
	}

	hashes, _ := integrity.Compute(doc.Schedule, doc.Normativa)
	if doc.Meta.ScheduleIntegrityHash != hashes.Schedule || doc.Meta.NormativaHash != hashes.Normativa {
		t.Error("meta 中的哈希应等于重新计算的值")
	}
}

// 导出的文档应能通过校验器
func TestExportService_ExportJSON_PassesValidator(t *testing.T) {
	svc, exam := setupTestExportService(t)
	seedExams(t, exam)

	raw, err := svc.ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("ExportJSON 应成功: %v", err)
	}
	if !bytes.HasSuffix(raw, []byte("}\n")) {
		t.Error("期望缩进 JSON 并以换行结尾")
	}

	report, err := validator.New(nil).Validate(raw, validator.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != validator.OutcomeValid {
		t.Errorf("期望 valid，实际 %s: %+v", report.Outcome, report)
	}
}

func TestExportService_ExportJSON_Empty(t *testing.T) {
	svc, _ := setupTestExportService(t)

	raw, err := svc.ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("空数据也应能导出: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"cursos": {}`)) {
		t.Errorf("期望空的 cursos 对象，实际 %s", raw)
	}
}

// ── ExportExcel 测试 ──

func TestExportService_ExportExcel(t *testing.T) {
	svc, exam := setupTestExportService(t)
	seedExams(t, exam)

	buf, filename, err := svc.ExportExcel(context.Background())
	if err != nil {
		t.Fatalf("ExportExcel 应成功: %v", err)
	}
	if filename != "examenes_dece_20250910.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件无法打开: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Resumen", "TERCERO DE BASICA", "PRIMERO BACHILLERATO"}
	if len(sheets) != len(want) {
		t.Fatalf("期望工作表 %v，实际 %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("第 %d 个工作表期望 %s，实际 %s", i, want[i], sheets[i])
		}
	}

	// 课程表按日期排序
	first, _ := f.GetCellValue("TERCERO DE BASICA", "A2")
	teacher, _ := f.GetCellValue("TERCERO DE BASICA", "E2")
	if first != "2025-09-16" || teacher != "MALLA SANTIAGO" {
		t.Errorf("首行期望 2025-09-16 / MALLA SANTIAGO，实际 %s / %s", first, teacher)
	}
	count, _ := f.GetCellValue("Resumen", "B3")
	if count != "2" {
		t.Errorf("汇总考试数期望 2，实际 %s", count)
	}
}

func TestExportService_ExportExcel_Empty(t *testing.T) {
	svc, _ := setupTestExportService(t)

	if _, _, err := svc.ExportExcel(context.Background()); !errors.Is(err, ErrExportEmpty) {
		t.Errorf("期望 ErrExportEmpty，实际: %v", err)
	}
}

func TestSheetName_UniqueAndTruncated(t *testing.T) {
	used := map[string]bool{}
	long := "CURSO CON UN NOMBRE DEMASIADO LARGO PARA EXCEL"

	a := sheetName(long, used)
	b := sheetName(long, used)
	if len([]rune(a)) > 31 || len([]rune(b)) > 31 {
		t.Errorf("工作表名超过 31 字符: %q %q", a, b)
	}
	if a == b {
		t.Errorf("重复名称应加后缀: %q", a)
	}
	if got := sheetName("A/B", used); got != "A B" {
		t.Errorf("非法字符应替换，实际 %q", got)
	}
}

// ── ExportICS 测试 ──

func TestExportService_ExportICS_RoundTrip(t *testing.T) {
	svc, exam := setupTestExportService(t)
	seedExams(t, exam)

	data, filename, err := svc.ExportICS(context.Background())
	if err != nil {
		t.Fatalf("ExportICS 应成功: %v", err)
	}
	if filename != "examenes_dece_20250910.ics" {
		t.Errorf("文件名不符: %s", filename)
	}
	if !bytes.Contains(data, []byte("DTSTART;VALUE=DATE:20250918")) {
		t.Errorf("期望全天事件，实际:\n%s", data)
	}

	entries, skipped, err := ParseExamICS(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("解析导出的 ICS 失败: %v", err)
	}
	if skipped != 0 || len(entries) != 3 {
		t.Fatalf("期望 3 条且无跳过，实际 %d 条，跳过 %d", len(entries), skipped)
	}
	got := entries[0]
	if got.Curso != "TERCERO DE BASICA" || got.Fecha != "2025-09-18" || got.Periodo != "II" ||
		got.Materia != "LENGUA Y LITERATURA" || got.Docente != "ACOSTA ESTEFANIA" {
		t.Errorf("往返结果不符: %+v", got)
	}
}

func TestParseExamICS_SkipsForeignEvents(t *testing.T) {
	data := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//otro//ES\r\n" +
		"BEGIN:VEVENT\r\nUID:x@otro\r\nDTSTAMP:20250910T080000Z\r\nDTSTART:20250918T090000Z\r\nSUMMARY:Reunión\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	entries, skipped, err := ParseExamICS(bytes.NewReader([]byte(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 || skipped != 1 {
		t.Errorf("期望跳过 1 个外部事件，实际 entries=%d skipped=%d", len(entries), skipped)
	}
}
