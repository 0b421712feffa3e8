// Command import-schedule carga un export combinado v0.2 (.json) o un calendario
// generado por el servidor (.ics) en el almacenamiento configurado.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/app"
	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/service"
	applogger "github.com/reyesbrostec/deceAUM/pkg/logger"
)

const (
	exitOK       = 0
	exitRejected = 1 // documento rechazado por el validador
	exitPartial  = 2 // algunas entradas rechazadas por las reglas
	exitUsage    = 4
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		file, configPath, logLevel string
		dryRun, help               bool
	)
	fs := pflag.NewFlagSet("import-schedule", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&file, "file", "", "export JSON v0.2 o calendario .ics")
	fs.BoolVar(&dryRun, "dry-run", false, "valida e informa sin escribir")
	fs.StringVar(&configPath, "config", os.Getenv("DECE_CONFIG"), "archivo de configuración")
	fs.StringVar(&logLevel, "log-level", "info", "nivel de log (stderr)")
	fs.BoolVarP(&help, "help", "h", false, "muestra esta ayuda")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if help || file == "" {
		fmt.Fprintln(stdout, "Uso: import-schedule --file <ruta> [--dry-run] [--config <ruta>]")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		if help {
			return exitOK
		}
		return exitUsage
	}

	logger, err := applogger.NewCLILogger(logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer logger.Sync()

	raw, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(stderr, "Archivo no encontrado:", file)
		return exitUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("初始化失败", zap.Error(err))
		return exitUsage
	}
	defer a.Close()

	result, err := importFile(ctx, a.Service.Import, file, raw, dryRun)
	if err != nil {
		var rejected *service.ImportRejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintf(stderr, "Documento rechazado (%s)\n", rejected.Report.Outcome)
			for _, e := range append(rejected.Report.SchemaErrors, rejected.Report.SemanticErrors...) {
				fmt.Fprintln(stderr, " - "+e)
			}
			for _, m := range rejected.Report.Mismatches() {
				fmt.Fprintf(stderr, " - Hash %s mismatch: meta=%s expected=%s\n", m.Block, m.Actual, m.Expected)
			}
			return exitRejected
		}
		fmt.Fprintln(stderr, "Error de importación:", err)
		return exitUsage
	}

	printResult(stdout, result, a.Repo.Backend)
	if len(result.Rechazadas) > 0 {
		return exitPartial
	}
	return exitOK
}

// importFile 按扩展名选择 JSON 或 ICS 导入
func importFile(ctx context.Context, svc service.ImportService, path string, raw []byte, dryRun bool) (*dto.ImportResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".ics") {
		return svc.ImportICS(ctx, bytes.NewReader(raw), dryRun)
	}
	return svc.Import(ctx, raw, dryRun)
}

func printResult(w io.Writer, r *dto.ImportResult, backend string) {
	mode := "importación"
	if r.DryRun {
		mode = "simulación (--dry-run)"
	}
	fmt.Fprintf(w, "Modo: %s, almacenamiento: %s\n", mode, backend)
	fmt.Fprintf(w, "Entradas: %d, importadas: %d, rechazadas: %d\n", r.Entradas, r.Importadas, len(r.Rechazadas))
	for _, rej := range r.Rechazadas {
		fmt.Fprintf(w, " - %s #%d %s %s: %s\n", rej.CourseKey, rej.Index, rej.Fecha, rej.Periodo, rej.Reason)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintln(w, "Warning: "+warn)
	}
}
