package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/integrity"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/model"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	pkgredis "github.com/reyesbrostec/deceAUM/pkg/redis"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("no hay exámenes registrados para exportar")
	ErrExportGenerateFail = errors.New("no se pudo generar el archivo de exportación")
)

// GeneratedAtLayout generated_at 的格式（UTC，毫秒精度）
const GeneratedAtLayout = "2006-01-02T15:04:05.000Z"

// ExportService 导出业务接口
//
// 设计说明：
//   - JSON 导出为合并文档 v0.2，两个哈希在生成时计算
//   - JSON 导出按排考内容缓存在 Redis（未启用时每次重新生成）
//   - Excel / ICS 以字节返回，由 Handler 层设置 HTTP 响应头
type ExportService interface {
	BuildDocument(ctx context.Context) (*schema.Document, error)
	ExportJSON(ctx context.Context) ([]byte, error)
	ExportExcel(ctx context.Context) (*bytes.Buffer, string, error)
	ExportICS(ctx context.Context) ([]byte, string, error)
}

type exportService struct {
	exams     repository.ExamRepository
	catalog   *catalog.Catalog
	normativa schema.Normativa
	schedule  *config.ScheduleConfig
	rdb       *pkgredis.Client
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(
	exams repository.ExamRepository,
	cat *catalog.Catalog,
	normativa schema.Normativa,
	scheduleCfg *config.ScheduleConfig,
	rdb *pkgredis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		exams:     exams,
		catalog:   cat,
		normativa: normativa,
		schedule:  scheduleCfg,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// BuildDocument 合并导出文档
// ═══════════════════════════════════════════════════════════

func (s *exportService) BuildDocument(ctx context.Context) (*schema.Document, error) {
	entries, err := s.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		s.logger.Error("查询考试失败", zap.Error(err))
		return nil, err
	}
	return s.buildDocument(entries, s.now().UTC().Format(GeneratedAtLayout))
}

func (s *exportService) buildDocument(entries []model.ExamEntry, generatedAt string) (*schema.Document, error) {
	sched := s.buildSchedule(entries)
	sched.GeneratedAt = generatedAt

	hashes, err := integrity.Compute(sched, s.normativa)
	if err != nil {
		s.logger.Error("计算导出哈希失败", zap.Error(err))
		return nil, err
	}

	return &schema.Document{
		Meta: schema.Meta{
			GeneratedAt:           generatedAt,
			Version:               s.schedule.Version,
			SchemaVersion:         schema.Version,
			ScheduleIntegrityHash: hashes.Schedule,
			NormativaHash:         hashes.Normativa,
		},
		Normativa: s.normativa,
		Schedule:  sched,
	}, nil
}

// buildSchedule 按 course_key 分组；组内保持插入顺序
func (s *exportService) buildSchedule(entries []model.ExamEntry) schema.Schedule {
	cursos := make(map[string][]schema.Item)
	for _, e := range entries {
		cursos[e.CourseKey] = append(cursos[e.CourseKey], schema.Item{
			Dia:     e.Dia,
			Periodo: e.Periodo,
			Materia: e.Materia,
			Docente: e.Docente,
			Fecha:   e.Fecha,
		})
	}
	return schema.Schedule{Version: s.schedule.Version, Cursos: cursos}
}

// ═══════════════════════════════════════════════════════════
// ExportJSON 带缓存的 JSON 导出
// ═══════════════════════════════════════════════════════════
//
// 缓存键 = 去掉 generated_at 后的排考摘要 + 规则块摘要，
// 内容不变时返回首次生成的文档（含其 generated_at）。

func (s *exportService) ExportJSON(ctx context.Context) ([]byte, error) {
	entries, err := s.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		s.logger.Error("查询考试失败", zap.Error(err))
		return nil, err
	}

	var cacheKey string
	if s.rdb != nil {
		cacheKey, err = s.contentKey(entries)
		if err != nil {
			return nil, err
		}
		cached, err := s.rdb.GetCachedExport(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("读取导出缓存失败", zap.Error(err))
		} else if cached != nil {
			s.logger.Debug("导出缓存命中", zap.String("key", cacheKey))
			return cached, nil
		}
	}

	doc, err := s.buildDocument(entries, s.now().UTC().Format(GeneratedAtLayout))
	if err != nil {
		return nil, err
	}
	out, err := schema.EncodeIndent(doc)
	if err != nil {
		s.logger.Error("编码导出文档失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	if s.rdb != nil {
		if err := s.rdb.CacheExport(ctx, cacheKey, out, s.cacheTTL); err != nil {
			s.logger.Warn("写入导出缓存失败", zap.Error(err))
		}
	}

	s.logger.Info("JSON 导出完成",
		zap.Int("entries", len(entries)),
		zap.String("schedule_hash", doc.Meta.ScheduleIntegrityHash),
	)
	return out, nil
}

func (s *exportService) contentKey(entries []model.ExamEntry) (string, error) {
	hashes, err := integrity.Compute(s.buildSchedule(entries), s.normativa)
	if err != nil {
		return "", err
	}
	return hashes.Schedule + ":" + hashes.Normativa, nil
}

// ═══════════════════════════════════════════════════════════
// ExportExcel 导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Resumen"：每个课程一行（考试数、首末日期）
//   - 每个课程一个 Sheet：按 fecha + periodo 排序
//   - 列：Fecha | Día | Periodo | Materia | Docente

func (s *exportService) ExportExcel(ctx context.Context) (*bytes.Buffer, string, error) {
	entries, err := s.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		s.logger.Error("查询考试失败", zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportEmpty
	}

	byCourse := make(map[string][]model.ExamEntry)
	for _, e := range entries {
		byCourse[e.CourseKey] = append(byCourse[e.CourseKey], e)
	}
	courseKeys := s.orderedCourseKeys(byCourse)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Resumen ──
	summary := "Resumen"
	idx, _ := f.NewSheet(summary)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(summary, "A", "A", 32)
	f.SetColWidth(summary, "B", "D", 16)

	v := s.normativa.VentanaDiagnostica
	f.SetCellValue(summary, "A1", fmt.Sprintf("Calendario de exámenes (%s a %s)", v.Inicio, v.Fin))
	f.MergeCell(summary, "A1", "D1")
	f.SetCellStyle(summary, "A1", "A1", headerStyle)

	row := 2
	for i, h := range []string{"Curso", "Exámenes", "Primera fecha", "Última fecha"} {
		f.SetCellValue(summary, cell(colName(i), row), h)
	}
	f.SetCellStyle(summary, cell("A", row), cell("D", row), headerStyle)

	row = 3
	usedSheets := map[string]bool{summary: true}
	for _, key := range courseKeys {
		list := byCourse[key]
		sortEntries(list)

		name := key
		if n, ok := s.catalog.CourseName(key); ok {
			name = n
		}
		f.SetCellValue(summary, cell("A", row), name)
		f.SetCellValue(summary, cell("B", row), len(list))
		f.SetCellValue(summary, cell("C", row), list[0].Fecha)
		f.SetCellValue(summary, cell("D", row), list[len(list)-1].Fecha)
		row++

		sheet := sheetName(name, usedSheets)
		if _, err := f.NewSheet(sheet); err != nil {
			s.logger.Error("创建工作表失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		s.writeCourseSheet(f, sheet, list, headerStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("examenes_dece_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) writeCourseSheet(f *excelize.File, sheet string, list []model.ExamEntry, headerStyle int) {
	f.SetColWidth(sheet, "A", "C", 12)
	f.SetColWidth(sheet, "D", "D", 36)
	f.SetColWidth(sheet, "E", "E", 32)

	for i, h := range []string{"Fecha", "Día", "Periodo", "Materia", "Docente"} {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	for i, e := range list {
		row := i + 2
		docente := e.Docente
		if n, ok := s.catalog.TeacherName(e.Docente); ok {
			docente = n
		}
		f.SetCellValue(sheet, cell("A", row), e.Fecha)
		f.SetCellValue(sheet, cell("B", row), e.Dia)
		f.SetCellValue(sheet, cell("C", row), e.Periodo)
		f.SetCellValue(sheet, cell("D", row), s.catalog.NormalizeSubject(e.Materia))
		f.SetCellValue(sheet, cell("E", row), docente)
	}
}

// orderedCourseKeys 目录中的课程按目录顺序，其余按字典序排在最后
func (s *exportService) orderedCourseKeys(byCourse map[string][]model.ExamEntry) []string {
	keys := make([]string, 0, len(byCourse))
	seen := make(map[string]bool, len(byCourse))
	for _, c := range s.catalog.Courses() {
		if _, ok := byCourse[c.Key]; ok {
			keys = append(keys, c.Key)
			seen[c.Key] = true
		}
	}
	var rest []string
	for k := range byCourse {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// sheetName Excel 工作表名最长 31 个字符且不能重复
func sheetName(name string, used map[string]bool) string {
	base := []rune(sheetNameReplacer.Replace(name))
	if len(base) > 31 {
		base = base[:31]
	}
	candidate := string(base)
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		candidate = string(trimmed) + suffix
	}
	used[candidate] = true
	return candidate
}

// sortEntries 按 fecha、课时顺序排序
func sortEntries(list []model.ExamEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Fecha != list[j].Fecha {
			return list[i].Fecha < list[j].Fecha
		}
		return periodoIndex(list[i].Periodo) < periodoIndex(list[j].Periodo)
	})
}

func periodoIndex(p string) int {
	for i, v := range mapper.Periodos {
		if v == p {
			return i
		}
	}
	return len(mapper.Periodos)
}
