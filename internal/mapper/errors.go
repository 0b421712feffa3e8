package mapper

import (
	"errors"
	"fmt"
)

// ── 映射错误类别 ──

var (
	ErrUnknownCourse      = errors.New("curso no encontrado en catálogo")
	ErrUnknownCourseKey   = errors.New("course_key no encontrado")
	ErrUnknownTeacher     = errors.New("docente no encontrado en catálogo")
	ErrUnknownTeacherCode = errors.New("código de docente no encontrado")
	ErrInvalidDate        = errors.New("fecha inválida o fuera de lunes a viernes")
	ErrInvalidDay         = errors.New("día inválido")
)

// MappingError 携带出错字段值的映射失败，Unwrap 到上面的类别
type MappingError struct {
	Kind  error
	Value string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Value)
}

func (e *MappingError) Unwrap() error { return e.Kind }

func mappingErr(kind error, value string) error {
	return &MappingError{Kind: kind, Value: value}
}
