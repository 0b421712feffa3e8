// Command validate-export audita un export combinado v0.2 (estructura, hashes, reglas).
//
// Códigos de salida: 0 OK, 1 error de schema, 2 hash inconsistente (sin --fix),
// 3 chequeos semánticos fallidos, 4 uso o archivo no encontrado.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/schema"
	"github.com/reyesbrostec/deceAUM/internal/validator"
	applogger "github.com/reyesbrostec/deceAUM/pkg/logger"
)

const exitUsage = 4

const usage = `Validador export combinado

Opciones:
  --file <ruta>   Archivo JSON a validar
  --schema <ruta> Ruta alternativa schema JSON (opcional)
  --fix           Recalcula y reescribe hashes en meta si difieren
  --help          Muestra esta ayuda

Exit codes:
  0 OK
  1 Error validación schema
  2 Hash mismatch (sin --fix)
  3 Chequeos semánticos fallidos
  4 Uso / archivo no encontrado
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	file     string
	schema   string
	fix      bool
	help     bool
	logLevel string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("validate-export", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}
	fs.StringVar(&opts.file, "file", "", "archivo JSON a validar")
	fs.StringVar(&opts.schema, "schema", "", "schema JSON alternativo")
	fs.BoolVar(&opts.fix, "fix", false, "reescribe hashes en meta si difieren")
	fs.BoolVarP(&opts.help, "help", "h", false, "muestra esta ayuda")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "nivel de log (stderr)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stdout, usage)
		return exitUsage
	}
	if opts.help || opts.file == "" {
		fmt.Fprint(stdout, usage)
		if opts.file == "" && !opts.help {
			return exitUsage
		}
		return 0
	}

	logger, err := applogger.NewCLILogger(opts.logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer logger.Sync()

	raw, err := os.ReadFile(opts.file)
	if err != nil {
		fmt.Fprintln(stderr, "Archivo no encontrado:", opts.file)
		logger.Debug("读取文件失败", zap.Error(err))
		return exitUsage
	}

	formal := loadFormal(opts.schema, stderr, logger)

	report, err := validator.New(logger).Validate(raw, validator.Options{Fix: opts.fix, Formal: formal})
	if err != nil {
		fmt.Fprintln(stderr, "Error interno:", err)
		return exitUsage
	}

	return printReport(report, opts, stdout, stderr)
}

// loadFormal 编译正式 schema；失败时退化为最小结构校验
func loadFormal(path string, stderr io.Writer, logger *zap.Logger) *schema.Formal {
	var (
		formal *schema.Formal
		err    error
	)
	if path != "" {
		formal, err = schema.CompileFile(path)
	} else {
		formal, err = schema.CompileEmbedded()
	}
	if err != nil {
		fmt.Fprintln(stderr, "No se pudo cargar schema formal, usando validación mínima.")
		logger.Debug("编译 schema 失败", zap.Error(err))
		return nil
	}
	return formal
}

func printReport(report *validator.Report, opts *options, stdout, stderr io.Writer) int {
	switch report.Outcome {
	case validator.OutcomeSchemaError:
		fmt.Fprintln(stderr, "Errores schema:\n - "+strings.Join(report.SchemaErrors, "\n - "))
		return report.Outcome.ExitCode()
	case validator.OutcomeIntegrityError:
		for _, m := range report.Mismatches() {
			fmt.Fprintf(stderr, "Hash %s mismatch: meta=%s expected=%s\n", m.Block, m.Actual, m.Expected)
		}
		return report.Outcome.ExitCode()
	}

	if report.Fixed {
		if err := os.WriteFile(opts.file, report.Corrected, 0o644); err != nil {
			fmt.Fprintln(stderr, "No se pudo escribir el archivo corregido:", err)
			return exitUsage
		}
		fmt.Fprintln(stdout, "Hashes actualizados con --fix")
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(stderr, "Warnings:")
		for _, w := range report.Warnings {
			fmt.Fprintln(stderr, " - "+w)
		}
	}
	if report.Outcome == validator.OutcomeSemanticError {
		fmt.Fprintln(stderr, "Errores semánticos:")
		for _, e := range report.SemanticErrors {
			fmt.Fprintln(stderr, " - "+e)
		}
		return report.Outcome.ExitCode()
	}

	fmt.Fprintln(stdout, "Validación OK")
	return 0
}
