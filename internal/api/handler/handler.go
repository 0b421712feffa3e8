package handler

import "github.com/reyesbrostec/deceAUM/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Exam    *ExamHandler
	Catalog *CatalogHandler
	Export  *ExportHandler
	Import  *ImportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Exam:    NewExamHandler(svc.Exam),
		Catalog: NewCatalogHandler(svc.Catalog),
		Export:  NewExportHandler(svc.Export, svc.Validation),
		Import:  NewImportHandler(svc.Import, svc.Validation),
	}
}
