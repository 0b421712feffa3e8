package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/rules"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
)

// ── Create 测试 ──

func TestExamService_Create_Success(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	resp, err := svc.Create(context.Background(), examReq("tercero de basica", "2025-09-18", "II", "lengua y literatura", "ACOSTA ESTEFANIA"))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ID == "" {
		t.Error("期望生成 ID")
	}
	if resp.CourseKey != "TERCERO_DE_BASICA" || resp.Curso != "TERCERO DE BASICA" {
		t.Errorf("课程映射不符: %+v", resp)
	}
	if resp.Dia != "JUEVES" || resp.Fecha != "2025-09-18" {
		t.Errorf("期望 JUEVES 2025-09-18，实际 %s %s", resp.Dia, resp.Fecha)
	}
	if resp.Docente != "AE" || resp.DocenteNombre != "ACOSTA ESTEFANIA" {
		t.Errorf("教师映射不符: %+v", resp)
	}
	if resp.Materia != "LENGUA Y LITERATURA" {
		t.Errorf("期望科目大写，实际 %s", resp.Materia)
	}
}

func TestExamService_Create_InvalidFields(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	_, err := svc.Create(context.Background(), examReq("CURSO_INEXISTENTE", "18/09/2025", "IX", "", "ACOSTA ESTEFANIA"))
	var invalid *EntryInvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("期望 EntryInvalidError，实际: %v", err)
	}
	if !errors.Is(err, ErrExamInvalid) {
		t.Error("期望可用 errors.Is 识别 ErrExamInvalid")
	}
	// materia 缺失、curso、fecha、periodo 各一条
	if len(invalid.Errors) != 4 {
		t.Errorf("期望 4 条错误，实际 %d: %v", len(invalid.Errors), invalid.Errors)
	}
}

func TestExamService_Create_WeekendIsNonBusinessDay(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	_, err := svc.Create(context.Background(), examReq("TERCERO DE BASICA", "2025-09-20", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
	if !errors.Is(err, rules.ErrNonBusinessDay) {
		t.Errorf("期望 ErrNonBusinessDay，实际: %v", err)
	}
}

func TestExamService_Create_OutsideWindow(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	_, err := svc.Create(context.Background(), examReq("TERCERO DE BASICA", "2025-09-29", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
	if !errors.Is(err, rules.ErrOutsideWindow) {
		t.Errorf("期望 ErrOutsideWindow，实际: %v", err)
	}
}

func TestExamService_Create_UnknownTeacher(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	_, err := svc.Create(context.Background(), examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "NADIE CONOCIDO"))
	if !errors.Is(err, mapper.ErrUnknownTeacher) {
		t.Errorf("期望 ErrUnknownTeacher，实际: %v", err)
	}
}

func TestExamService_Create_Duplicate(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "I", "INGLÉS", "MALLA SANTIAGO"))
	if !errors.Is(err, rules.ErrDuplicateEntry) {
		t.Errorf("期望 ErrDuplicateEntry，实际: %v", err)
	}
}

func TestExamService_Create_DailyLimit(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()

	for _, p := range []string{"I", "II", "III"} {
		if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", p, "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
			t.Fatalf("第 %s 节应成功: %v", p, err)
		}
	}
	_, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "IV", "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
	var rej *rules.RejectionError
	if !errors.As(err, &rej) || !errors.Is(err, rules.ErrDailyLimitExceeded) {
		t.Fatalf("期望 ErrDailyLimitExceeded，实际: %v", err)
	}
	if rej.Used != 3 || rej.Limit != 3 {
		t.Errorf("期望 3/3，实际 %d/%d", rej.Used, rej.Limit)
	}

	// 其他课程不受影响
	if _, err := svc.Create(ctx, examReq("CUARTO DE BASICA", "2025-09-18", "IV", "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
		t.Errorf("其他课程应成功: %v", err)
	}
}

func TestExamService_Create_StoreUnavailable(t *testing.T) {
	svc := setupTestExamService(unavailableExamRepo{})

	_, err := svc.Create(context.Background(), examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
	if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		t.Errorf("期望 ErrStoreUnavailable，实际: %v", err)
	}
}

// 同一课程并发写入，总数不超过单日上限
func TestExamService_Create_ConcurrentRespectsLimit(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		other    []error
	)
	for _, p := range mapper.Periodos {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", p, "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case !errors.Is(err, rules.ErrDailyLimitExceeded):
				other = append(other, err)
			}
		}(p)
	}
	wg.Wait()

	if len(other) != 0 {
		t.Fatalf("拒绝原因只能是单日上限，实际: %v", other)
	}
	if accepted != 3 {
		t.Errorf("期望恰好 3 条写入成功，实际 %d", accepted)
	}
	list, err := svc.List(ctx, &dto.ExamListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Errorf("存储中期望 3 条，实际 %d", len(list))
	}
}

// ── List 测试 ──

func TestExamService_List_Filters(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}
	if _, err := svc.Create(ctx, examReq("CUARTO DE BASICA", "2025-09-19", "II", "INGLÉS", "MALLA SANTIAGO")); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}

	all, err := svc.List(ctx, &dto.ExamListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(all))
	}

	cases := []struct {
		name string
		req  dto.ExamListRequest
		want string
	}{
		{"教师简码", dto.ExamListRequest{Docente: "ms"}, "CUARTO_DE_BASICA"},
		{"教师部分姓名", dto.ExamListRequest{Docente: "ACOSTA"}, "TERCERO_DE_BASICA"},
		{"课程名", dto.ExamListRequest{Curso: "cuarto de basica"}, "CUARTO_DE_BASICA"},
		{"course_key", dto.ExamListRequest{Curso: "TERCERO_DE_BASICA"}, "TERCERO_DE_BASICA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := svc.List(ctx, &tc.req)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 || list[0].CourseKey != tc.want {
				t.Errorf("期望仅 %s，实际 %+v", tc.want, list)
			}
		})
	}

	if _, err := svc.List(ctx, &dto.ExamListRequest{Docente: "ZZZ"}); !errors.Is(err, mapper.ErrUnknownTeacher) {
		t.Errorf("未知教师期望 ErrUnknownTeacher，实际: %v", err)
	}
}

func TestExamService_List_WeekAnchor(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()
	if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}

	list, err := svc.List(ctx, &dto.ExamListRequest{WeekAnchor: "2025-03-10"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条，实际 %d", len(list))
	}
	// JUEVES 相对 2025-03-10（周一）偏移 3 天
	if list[0].Fecha != "2025-03-13" {
		t.Errorf("期望按基准周还原为 2025-03-13，实际 %s", list[0].Fecha)
	}
}

// ── Delete 测试 ──

func TestExamService_DeleteByIndex(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()
	if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}
	if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "II", "INGLÉS", "ACOSTA ESTEFANIA")); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}

	if err := svc.DeleteByIndex(ctx, 0); err != nil {
		t.Fatalf("DeleteByIndex 应成功: %v", err)
	}
	list, err := svc.List(ctx, &dto.ExamListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Periodo != "II" {
		t.Errorf("期望只剩第 II 节，实际 %+v", list)
	}

	if err := svc.DeleteByIndex(ctx, 5); !errors.Is(err, ErrExamIndexOutOfRange) {
		t.Errorf("期望 ErrExamIndexOutOfRange，实际: %v", err)
	}
}

func TestExamService_DeleteByKey(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()
	if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
		t.Fatalf("准备数据失败: %v", err)
	}

	req := &dto.ExamDeleteByKeyRequest{Curso: "TERCERO DE BASICA", Fecha: "2025-09-18", Periodo: "I"}
	if err := svc.DeleteByKey(ctx, req); err != nil {
		t.Fatalf("DeleteByKey 应成功: %v", err)
	}
	if err := svc.DeleteByKey(ctx, req); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}

func TestExamService_Delete_NotFound(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	if err := svc.Delete(context.Background(), "nonexistent"); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}

// ── Replace 测试 ──

func TestExamService_Replace(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())
	ctx := context.Background()
	for _, p := range []string{"I", "II", "III"} {
		if _, err := svc.Create(ctx, examReq("TERCERO DE BASICA", "2025-09-18", p, "MATEMÁTICAS", "ACOSTA ESTEFANIA")); err != nil {
			t.Fatalf("准备数据失败: %v", err)
		}
	}
	list, err := svc.List(ctx, &dto.ExamListRequest{})
	if err != nil || len(list) != 3 {
		t.Fatalf("期望 3 条，实际 %d: %v", len(list), err)
	}

	// 当日已满 3 条，替换其中一条到同一天不应被单日上限拒绝
	resp, err := svc.Replace(ctx, list[0].ID, examReq("TERCERO DE BASICA", "2025-09-18", "IV", "INGLÉS", "ACOSTA ESTEFANIA"))
	if err != nil {
		t.Fatalf("Replace 应成功: %v", err)
	}
	if resp.ID == list[0].ID {
		t.Error("替换后应生成新记录")
	}

	if _, err := svc.Replace(ctx, "nonexistent", examReq("TERCERO DE BASICA", "2025-09-19", "I", "INGLÉS", "ACOSTA ESTEFANIA")); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}

// ── Validate 测试 ──

func TestExamService_Validate(t *testing.T) {
	svc := setupTestExamService(repository.NewMemoryExamRepo())

	ok := svc.Validate(context.Background(), examReq("TERCERO DE BASICA", "2025-09-18", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
	if !ok.Valid || len(ok.Errors) != 0 {
		t.Errorf("期望通过，实际 %+v", ok)
	}

	// 周末日期只做形状校验，这里应通过
	weekend := svc.Validate(context.Background(), examReq("TERCERO DE BASICA", "2025-09-20", "I", "MATEMÁTICAS", "ACOSTA ESTEFANIA"))
	if !weekend.Valid {
		t.Errorf("Validate 不检查工作日，实际 %+v", weekend)
	}
}
