package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/repository"
)

// ── ICS 日历 ──────────────────────────────────────────────
//
// 每条考试导出为一个全天 VEVENT，API 形态的五个字段写入 X-DECE-* 扩展属性，
// 以便同一文件可以原样导入。
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize = 5 * 1024 * 1024 // 5MB
	icsProductID   = "-//DECE//Calendario de Examenes//ES"
	icsUIDSuffix   = "@dece"
)

const (
	propCurso   = ics.ComponentProperty("X-DECE-CURSO")
	propPeriodo = ics.ComponentProperty("X-DECE-PERIODO")
	propMateria = ics.ComponentProperty("X-DECE-MATERIA")
	propDocente = ics.ComponentProperty("X-DECE-DOCENTE")
)

// ExportICS 导出为 iCalendar
func (s *exportService) ExportICS(ctx context.Context) ([]byte, string, error) {
	entries, err := s.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		s.logger.Error("查询考试失败", zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportEmpty
	}

	now := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("Exámenes DECE")

	for _, e := range entries {
		day, err := mapper.ParseFecha(e.Fecha)
		if err != nil {
			s.logger.Warn("跳过日期无效的考试", zap.String("id", e.ExamEntryID), zap.String("fecha", e.Fecha))
			continue
		}
		curso := e.CourseKey
		if n, ok := s.catalog.CourseName(e.CourseKey); ok {
			curso = n
		}
		docente := e.Docente
		if n, ok := s.catalog.TeacherName(e.Docente); ok {
			docente = n
		}

		evt := cal.AddEvent(e.ExamEntryID + icsUIDSuffix)
		evt.SetDtStampTime(now)
		evt.SetAllDayStartAt(day)
		evt.SetAllDayEndAt(day.AddDate(0, 0, 1))
		evt.SetSummary(fmt.Sprintf("%s - %s (%s)", e.Materia, curso, e.Periodo))
		evt.SetDescription(fmt.Sprintf("Docente: %s", docente))
		evt.AddProperty(propCurso, curso)
		evt.AddProperty(propPeriodo, e.Periodo)
		evt.AddProperty(propMateria, e.Materia)
		evt.AddProperty(propDocente, docente)
	}

	filename := fmt.Sprintf("examenes_dece_%s.ics", now.Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

// ParseExamICS 解析 ExportICS 生成的日历。
// 缺少 X-DECE-* 属性或日期无法解析的事件被跳过，返回跳过数量。
func ParseExamICS(reader io.Reader) ([]mapper.APIEntry, int, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, 0, fmt.Errorf("formato ICS inválido: %w", err)
	}

	var (
		entries []mapper.APIEntry
		skipped int
	)
	for _, evt := range cal.Events() {
		entry, ok := parseExamEvent(evt)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func parseExamEvent(evt *ics.VEvent) (mapper.APIEntry, bool) {
	fecha, err := parseICSDate(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return mapper.APIEntry{}, false
	}
	entry := mapper.APIEntry{
		Curso:   propValue(evt, propCurso),
		Fecha:   fecha,
		Periodo: propValue(evt, propPeriodo),
		Materia: propValue(evt, propMateria),
		Docente: propValue(evt, propDocente),
	}
	if entry.Curso == "" || entry.Periodo == "" {
		return mapper.APIEntry{}, false
	}
	return entry, true
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	prop := evt.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// parseICSDate 取 DTSTART 的日期部分（YYYY-MM-DD），兼容全天与带时间的写法
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty) (string, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return "", fmt.Errorf("missing property %s", propName)
	}
	formats := []string{
		"20060102",
		"20060102T150405Z",
		"20060102T150405",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, prop.Value); err == nil {
			return t.Format(mapper.DateLayout), nil
		}
	}
	return "", fmt.Errorf("fecha ICS no reconocida: %s", prop.Value)
}
