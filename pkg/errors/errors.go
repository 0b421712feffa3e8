package errors

import "errors"

// ErrStoreUnavailable 存储后端不可用（连接失败、超时等），调用方可重试
var ErrStoreUnavailable = errors.New("almacenamiento no disponible, intente nuevamente")

// ErrEntryNotFound 要删除或读取的考试记录不存在
var ErrEntryNotFound = errors.New("registro de examen no encontrado")

// ErrDuplicateSlot 违反 (course_key, fecha, periodo) 唯一约束
var ErrDuplicateSlot = errors.New("ya existe examen para ese curso/fecha/periodo")
