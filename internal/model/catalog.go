package model

// Course 课程目录表，对应 courses
type Course struct {
	CourseKey string `gorm:"type:varchar(64);primaryKey"  json:"curso_key"`
	Name      string `gorm:"type:varchar(120);not null"   json:"curso"`
	SortOrder int    `gorm:"not null;default:0"           json:"sort_order"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Teacher 教师目录表，对应 teachers
// SortOrder 决定模糊匹配时的遍历顺序
type Teacher struct {
	Code      string `gorm:"type:varchar(8);primaryKey"   json:"id"`
	Name      string `gorm:"type:varchar(120);not null"   json:"nombre"`
	SortOrder int    `gorm:"not null;default:0"           json:"sort_order"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// Subject 科目目录表，对应 subjects
type Subject struct {
	Abbr      string `gorm:"type:varchar(8);primaryKey"   json:"abr"`
	Name      string `gorm:"type:varchar(120);not null"   json:"nombre"`
	SortOrder int    `gorm:"not null;default:0"           json:"sort_order"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
