package validator

import (
	"fmt"
	"sort"

	"github.com/reyesbrostec/deceAUM/internal/schema"
)

// semanticChecks 按课程、按日期统计考试数：超过上限为错误，恰好等于上限为警告。
// 条目缺少 fecha 时退化为按 dia 统计。所有课程与日期都会检查。
func semanticChecks(s schema.Schedule, limite int) (warnings, errs []string) {
	keys := make([]string, 0, len(s.Cursos))
	for k := range s.Cursos {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, courseKey := range keys {
		counts := make(map[string]int)
		for _, item := range s.Cursos[courseKey] {
			day := item.Fecha
			if day == "" {
				day = item.Dia
			}
			counts[day]++
		}

		days := make([]string, 0, len(counts))
		for d := range counts {
			days = append(days, d)
		}
		sort.Strings(days)

		for _, day := range days {
			count := counts[day]
			switch {
			case count > limite:
				errs = append(errs, fmt.Sprintf("Curso %s excede límite (%d/%d) en %s", courseKey, count, limite, day))
			case count == limite:
				warnings = append(warnings, fmt.Sprintf("Curso %s alcanza el límite (%d) en %s", courseKey, count, day))
			}
		}
	}
	return warnings, errs
}
