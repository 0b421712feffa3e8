// Package catalog 提供课程、教师、科目三类静态参照数据的双向查询。
//
// Catalog 在启动时构建一次，之后只读，可被多个请求并发使用。
package catalog

import "strings"

// Course 课程条目：展示名 ↔ course_key
type Course struct {
	Name string `json:"curso"`
	Key  string `json:"curso_key"`
}

// Teacher 教师条目：全名 ↔ 简码
type Teacher struct {
	Code string `json:"id"`
	Name string `json:"nombre"`
}

// Subject 科目条目：名称 ↔ 缩写
type Subject struct {
	Abbr string `json:"abr"`
	Name string `json:"nombre"`
}

// Stats 目录统计信息
type Stats struct {
	Cursos      int `json:"cursos"`
	Docentes    int `json:"docentes"`
	Asignaturas int `json:"asignaturas"`
}

// Catalog 不可变的查询表集合
type Catalog struct {
	courses  []Course
	teachers []Teacher
	subjects []Subject

	courseByName  map[string]string
	courseByKey   map[string]string
	teacherByName map[string]string
	teacherByCode map[string]string
	subjectByName map[string]string
	subjectByAbbr map[string]string
}

// New 由三张表构建 Catalog。表顺序即模糊匹配时的遍历顺序。
func New(courses []Course, teachers []Teacher, subjects []Subject) *Catalog {
	c := &Catalog{
		courses:       append([]Course(nil), courses...),
		teachers:      append([]Teacher(nil), teachers...),
		subjects:      append([]Subject(nil), subjects...),
		courseByName:  make(map[string]string, len(courses)),
		courseByKey:   make(map[string]string, len(courses)),
		teacherByName: make(map[string]string, len(teachers)),
		teacherByCode: make(map[string]string, len(teachers)),
		subjectByName: make(map[string]string, len(subjects)),
		subjectByAbbr: make(map[string]string, len(subjects)),
	}
	for _, co := range c.courses {
		c.courseByName[normalize(co.Name)] = co.Key
		c.courseByKey[co.Key] = co.Name
	}
	for _, t := range c.teachers {
		c.teacherByName[normalize(t.Name)] = t.Code
		c.teacherByCode[t.Code] = t.Name
	}
	for _, s := range c.subjects {
		c.subjectByName[normalize(s.Name)] = s.Abbr
		c.subjectByAbbr[s.Abbr] = s.Name
	}
	return c
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ── 课程 ──

// CourseKey 课程名 → course_key（大小写不敏感，精确匹配）
func (c *Catalog) CourseKey(name string) (string, bool) {
	key, ok := c.courseByName[normalize(name)]
	return key, ok
}

// CourseName course_key → 课程名
func (c *Catalog) CourseName(key string) (string, bool) {
	name, ok := c.courseByKey[key]
	return name, ok
}

// HasCourseKey 判断 course_key 是否存在
func (c *Catalog) HasCourseKey(key string) bool {
	_, ok := c.courseByKey[key]
	return ok
}

// ── 教师 ──

// TeacherCode 教师全名 → 简码（精确匹配，大小写不敏感）
func (c *Catalog) TeacherCode(name string) (string, bool) {
	code, ok := c.teacherByName[normalize(name)]
	return code, ok
}

// TeacherName 简码 → 教师全名（目录中的原始写法）
func (c *Catalog) TeacherName(code string) (string, bool) {
	name, ok := c.teacherByCode[code]
	return name, ok
}

// TeacherMatch 教师解析结果
type TeacherMatch struct {
	Teacher Teacher
	// Fuzzy 为 true 表示通过子串包含匹配得到
	Fuzzy bool
	// Candidates 模糊匹配时所有命中的教师（按目录顺序），长度 > 1 即存在歧义
	Candidates []Teacher
}

// Ambiguous 模糊匹配命中多于一位教师
func (m TeacherMatch) Ambiguous() bool {
	return len(m.Candidates) > 1
}

// MatchTeacher 先精确匹配，失败后按目录顺序做双向子串包含匹配，取第一个命中项。
// 同时返回全部候选，供调用方识别歧义输入。
func (c *Catalog) MatchTeacher(name string) (TeacherMatch, bool) {
	norm := normalize(name)
	if norm == "" {
		return TeacherMatch{}, false
	}
	if code, ok := c.teacherByName[norm]; ok {
		return TeacherMatch{Teacher: Teacher{Code: code, Name: c.teacherByCode[code]}}, true
	}

	var candidates []Teacher
	for _, t := range c.teachers {
		full := normalize(t.Name)
		if strings.Contains(full, norm) || strings.Contains(norm, full) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return TeacherMatch{}, false
	}
	return TeacherMatch{Teacher: candidates[0], Fuzzy: true, Candidates: candidates}, true
}

// ResolveTeacher 精确优先、模糊兜底的教师解析
func (c *Catalog) ResolveTeacher(name string) (Teacher, bool) {
	m, ok := c.MatchTeacher(name)
	if !ok {
		return Teacher{}, false
	}
	return m.Teacher, true
}

// ── 科目 ──

// SubjectAbbr 科目名 → 缩写
func (c *Catalog) SubjectAbbr(name string) (string, bool) {
	abbr, ok := c.subjectByName[normalize(name)]
	return abbr, ok
}

// SubjectName 缩写 → 科目名
func (c *Catalog) SubjectName(abbr string) (string, bool) {
	name, ok := c.subjectByAbbr[abbr]
	return name, ok
}

// NormalizeSubject 返回目录中的官方科目名；不在目录中时返回大写去空格后的输入。
// 仅用于展示归一化，不作为准入校验。
func (c *Catalog) NormalizeSubject(name string) string {
	norm := normalize(name)
	if abbr, ok := c.subjectByName[norm]; ok {
		if official, ok := c.subjectByAbbr[abbr]; ok {
			return official
		}
	}
	return norm
}

// ── 列表 ──

// Courses 返回课程表副本
func (c *Catalog) Courses() []Course { return append([]Course(nil), c.courses...) }

// Teachers 返回教师表副本
func (c *Catalog) Teachers() []Teacher { return append([]Teacher(nil), c.teachers...) }

// Subjects 返回科目表副本
func (c *Catalog) Subjects() []Subject { return append([]Subject(nil), c.subjects...) }

// Stats 返回目录规模
func (c *Catalog) Stats() Stats {
	return Stats{
		Cursos:      len(c.courses),
		Docentes:    len(c.teachers),
		Asignaturas: len(c.subjects),
	}
}
