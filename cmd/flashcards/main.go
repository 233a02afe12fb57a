package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"

	"github.com/SAP-F-2025/flashcard-service/internal/config"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/handlers"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

const usage = `usage: flashcards <command> [flags]

commands:
  serve              run the HTTP API
  practice           answer weighted random questions in the terminal
  list               list question files
  stats              show rank distribution per file
  reset <file>       put every question of a file back at rank 2
  delete <file>      remove a file's metadata
  export             write a progress report (csv or xlsx)
`

// app bundles what every command needs.
type app struct {
	cfg       *config.Config
	logger    utils.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	bank      *services.QuestionBankService
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	dir := fs.String("dir", "", "questions directory (overrides QUESTIONS_DIR)")
	envFile := fs.String("env", ".env", "env file to load when present")

	var (
		addr    *string
		files   *string
		count   *int
		format  *string
		output  *string
		fileIDs *string
	)
	switch command {
	case "serve":
		addr = fs.String("addr", "", "listen address (defaults to :PORT)")
	case "practice":
		files = fs.String("files", "", "comma separated file names to practise (prompted when empty)")
		count = fs.Int("n", 10, "number of questions")
	case "export":
		format = fs.String("format", "csv", "csv or xlsx")
		output = fs.String("o", "", "output file (defaults to progress.<format>)")
		files = fs.String("files", "", "comma separated file names to load (all when empty)")
		fileIDs = fs.String("file-ids", "", "comma separated file ids to include")
	case "list", "stats", "reset", "delete":
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, *envFile, *dir, command != "serve")
	if err != nil {
		return err
	}
	defer a.publisher.Close()

	switch command {
	case "serve":
		return a.serve(ctx, *addr)
	case "practice":
		return a.practice(ctx, splitList(*files), *count)
	case "list":
		return a.list()
	case "stats":
		return a.stats(ctx)
	case "reset", "delete":
		if fs.NArg() != 1 {
			return fmt.Errorf("%s needs exactly one file name", command)
		}
		return a.maintain(ctx, command, fs.Arg(0))
	case "export":
		return a.export(ctx, models.ExportFormat(*format), *output, splitList(*files), splitList(*fileIDs))
	}
	return nil
}

func newApp(ctx context.Context, envFile, dir string, quiet bool) (*app, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dir != "" {
		cfg.QuestionsDir = dir
	}

	level := cfg.LogLevel
	if quiet && utils.ParseLevel(level) < slog.LevelWarn {
		level = "warn"
	}
	logger := utils.NewLogger(cfg.Environment, level, os.Stderr)
	slogger := utils.ToSlogLogger(logger)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	v := validator.New()
	opts := []services.Option{}
	if cfg.RandomSeed != 0 {
		opts = append(opts, services.WithRand(rand.New(rand.NewPCG(cfg.RandomSeed, cfg.RandomSeed))))
	}
	bank := services.NewQuestionBankService(cfg.QuestionsDir, repositories.NewMetadataRepository(), publisher, slogger, v, opts...)

	if _, err := bank.Scan(ctx); err != nil {
		publisher.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, validator: v, publisher: publisher, bank: bank}, nil
}

func (a *app) serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = ":" + a.cfg.Port
	}
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	hm := handlers.NewHandlerManager(a.bank, services.NewExportService(a.bank, utils.ToSlogLogger(a.logger)), a.validator, a.logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.NewRouter(hm, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting flashcard service", "addr", addr, "questions_dir", a.cfg.QuestionsDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down flashcard service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) list() error {
	files := a.bank.GetAllAvailableFiles()
	if len(files) == 0 {
		pterm.Warning.Printf("No question files found in '%s'.\n", a.cfg.QuestionsDir)
		return nil
	}

	tableData := pterm.TableData{{"ID", "Name", "Questions", "Last updated"}}
	for _, f := range files {
		tableData = append(tableData, []string{
			f.ID, f.Name, fmt.Sprint(f.TotalQuestions), f.LastUpdated.Format(time.DateTime),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func (a *app) stats(ctx context.Context) error {
	stats, err := a.bank.GetFileStats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		pterm.Warning.Printf("No question files found in '%s'.\n", a.cfg.QuestionsDir)
		return nil
	}

	tableData := pterm.TableData{{"Name", "Questions", "R1", "R2", "R3", "R4", "R5", "Avg", "Mastered"}}
	for _, s := range stats {
		row := []string{s.Name, fmt.Sprint(s.TotalQuestions)}
		for _, n := range s.RankCounts {
			row = append(row, fmt.Sprint(n))
		}
		row = append(row, fmt.Sprintf("%.2f", s.AverageRank), fmt.Sprint(s.Mastered))
		tableData = append(tableData, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func (a *app) maintain(ctx context.Context, command, name string) error {
	if command == "reset" {
		if err := a.bank.ResetMetadata(ctx, name); err != nil {
			return err
		}
		pterm.Success.Printf("Reset every question in '%s' to rank 2.\n", name)
		return nil
	}

	if err := a.bank.DeleteMetadata(ctx, name); err != nil {
		return err
	}
	pterm.Success.Printf("Deleted metadata of '%s'.\n", name)
	return nil
}

func (a *app) export(ctx context.Context, format models.ExportFormat, output string, files, fileIDs []string) error {
	req := models.ExportRequest{Format: format, FileIDs: fileIDs}
	if err := a.validator.Validate(&req); err != nil {
		return err
	}

	if len(files) == 0 {
		for _, f := range a.bank.GetAllAvailableFiles() {
			files = append(files, f.Name)
		}
	}
	if err := a.bank.SelectFiles(ctx, files); err != nil {
		return err
	}

	data, err := services.NewExportService(a.bank, utils.ToSlogLogger(a.logger)).Export(ctx, req)
	if err != nil {
		return err
	}
	if output == "" {
		output = "progress." + string(format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	pterm.Success.Printf("Wrote progress report to '%s'.\n", output)
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
