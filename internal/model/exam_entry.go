package model

// ExamEntry 考试记录，对应 exam_entries
//
// 存储形态（course_key、dia、教师简码）加上具体日期 fecha，规则检查按 fecha 计数。
// 记录创建后不做部分更新，修改一律建模为删除 + 新增。
// (course_key, fecha, periodo) 唯一索引作为存储层的兜底防重。
// Seq 在写入事务内从 exam_seq 计数器分配，单调递增，同一时间戳的记录也有确定顺序。
type ExamEntry struct {
	ExamEntryID string `gorm:"type:varchar(36);primaryKey"                         json:"id"`
	CourseKey   string `gorm:"type:varchar(64);not null;uniqueIndex:uq_exam_slot;index:idx_exam_course" json:"course_key"`
	Fecha       string `gorm:"type:varchar(10);not null;uniqueIndex:uq_exam_slot"  json:"fecha"` // YYYY-MM-DD
	Periodo     string `gorm:"type:varchar(8);not null;uniqueIndex:uq_exam_slot"   json:"periodo"`
	Dia         string `gorm:"type:varchar(12);not null"                           json:"dia"` // LUNES..VIERNES，由 fecha 推导
	Materia     string `gorm:"type:varchar(120);not null"                          json:"materia"`
	Docente     string `gorm:"type:varchar(8);not null;index:idx_exam_docente"     json:"docente"` // 教师简码
	Seq         int64  `gorm:"not null;index:idx_exam_seq"                         json:"-"`       // 插入序号，决定列表顺序
	BaseModel
}

// TableName 指定表名
func (ExamEntry) TableName() string { return "exam_entries" }

// SameSlot 是否与给定的 (course_key, fecha, periodo) 相同
func (e *ExamEntry) SameSlot(courseKey, fecha, periodo string) bool {
	return e.CourseKey == courseKey && e.Fecha == fecha && e.Periodo == periodo
}
