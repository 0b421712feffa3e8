package catalog

import "testing"

func TestCatalog_CourseLookup(t *testing.T) {
	c := Default()

	key, ok := c.CourseKey("  tercero de basica ")
	if !ok || key != "TERCERO_DE_BASICA" {
		t.Fatalf("期望 TERCERO_DE_BASICA，实际=%q ok=%v", key, ok)
	}

	name, ok := c.CourseName("TERCERO_DE_BASICA")
	if !ok || name != "TERCERO DE BASICA" {
		t.Errorf("期望 TERCERO DE BASICA，实际=%q", name)
	}

	if _, ok := c.CourseKey("TERCERO"); ok {
		t.Error("课程不应支持模糊匹配")
	}
}

func TestCatalog_MatchTeacher(t *testing.T) {
	c := Default()

	tests := []struct {
		name      string
		input     string
		wantCode  string
		wantFuzzy bool
		wantOK    bool
	}{
		{"精确匹配", "ACOSTA ESTEFANIA", "AE", false, true},
		{"大小写不敏感", "veliz elvira", "VE", false, true},
		{"子串匹配", "MALLA", "MS", true, true},
		{"输入包含全名", "PROF. SOPA NESTOR", "SN", true, true},
		{"不存在", "NADIE", "", false, false},
		{"空输入", "   ", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := c.MatchTeacher(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("期望 ok=%v，实际=%v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if m.Teacher.Code != tt.wantCode {
				t.Errorf("期望 code=%s，实际=%s", tt.wantCode, m.Teacher.Code)
			}
			if m.Fuzzy != tt.wantFuzzy {
				t.Errorf("期望 fuzzy=%v，实际=%v", tt.wantFuzzy, m.Fuzzy)
			}
		})
	}
}

func TestCatalog_MatchTeacher_AmbiguousTakesFirstInOrder(t *testing.T) {
	c := Default()

	// "REYES" 同时命中 REYES DANIEL 与 REYES MIRYAM
	m, ok := c.MatchTeacher("REYES")
	if !ok {
		t.Fatal("期望命中")
	}
	if !m.Ambiguous() {
		t.Error("期望识别为歧义匹配")
	}
	if m.Teacher.Code != "DR" {
		t.Errorf("期望取目录中第一个命中项 DR，实际=%s", m.Teacher.Code)
	}

	// 调换目录顺序后结果随之改变
	swapped := New(nil, []Teacher{
		{Code: "RM", Name: "REYES MIRYAM"},
		{Code: "DR", Name: "REYES DANIEL"},
	}, nil)
	m, _ = swapped.MatchTeacher("REYES")
	if m.Teacher.Code != "RM" {
		t.Errorf("期望 RM，实际=%s", m.Teacher.Code)
	}
}

func TestCatalog_NormalizeSubject(t *testing.T) {
	c := Default()

	if got := c.NormalizeSubject(" matemáticas "); got != "MATEMÁTICAS" {
		t.Errorf("期望 MATEMÁTICAS，实际=%s", got)
	}
	if got := c.NormalizeSubject("robótica"); got != "ROBÓTICA" {
		t.Errorf("目录外科目应原样大写，实际=%s", got)
	}
	if abbr, ok := c.SubjectAbbr("lengua y literatura"); !ok || abbr != "LEN" {
		t.Errorf("期望 LEN，实际=%s", abbr)
	}
}

func TestCatalog_ListsAreCopies(t *testing.T) {
	c := Default()

	courses := c.Courses()
	courses[0].Key = "CHANGED"
	if key, _ := c.CourseKey("INICIAL I-II"); key != "INICIAL_I-II" {
		t.Error("修改返回的副本不应影响目录")
	}

	st := c.Stats()
	if st.Cursos != 14 || st.Docentes != 19 || st.Asignaturas != 14 {
		t.Errorf("目录规模不符: %+v", st)
	}
}
