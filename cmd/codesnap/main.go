// Command codesnap renders code snippets as styled PNG cards.
//
// Usage:
//
//	codesnap -file main.go -lines 10:24 -out card.png   # one-shot export
//	codesnap -file main.go -show                        # interactive surface
//	codesnap -mcp                                       # MCP server on stdio
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/codesnap/browser"
	"github.com/hazyhaar/codesnap/capture"
	"github.com/hazyhaar/codesnap/dbopen"
	"github.com/hazyhaar/codesnap/export"
	"github.com/hazyhaar/codesnap/surface"
)

func main() {
	configPath := flag.String("config", "", "path to codesnap.yaml config file")
	filePath := flag.String("file", "", "capture this file (or stdin with -file -)")
	lines := flag.String("lines", "", "1-based inclusive line range, e.g. 12:40")
	language := flag.String("lang", "", "highlighter language tag; empty to detect")
	outPath := flag.String("out", "", "one-shot output path; empty derives one")
	show := flag.Bool("show", false, "open the interactive surface instead of exporting")
	mcpMode := flag.Bool("mcp", false, "serve capture tools over MCP on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *filePath, *lines, *language, *outPath, *show, *mcpMode); err != nil {
		logger.Error("codesnap: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, filePath, lines, language, outPath string, show, mcpMode bool) error {
	cfg, err := capture.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// One-shot exports run headless; the interactive surface and MCP mode
	// need a visible window.
	headless := !show && !mcpMode
	handle := browser.NewHandle(browser.Config{
		RemoteURL: cfg.Browser.Remote,
		Headless:  headless,
		Logger:    logger,
	})
	defer handle.Close()

	var history *export.History
	if cfg.HistoryDB != "" {
		db, err := dbopen.Open(cfg.HistoryDB, dbopen.WithMkdirAll())
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer db.Close()
		history, err = export.NewHistory(db)
		if err != nil {
			return fmt.Errorf("init history: %w", err)
		}
	}

	sink := export.NewSink(export.DirPrompter{Dir: cfg.OutputDir}, history, logger)
	surf := surface.New(surface.Config{Browser: handle, Sink: sink, Logger: logger})
	defer surf.Close()

	svc := capture.NewService(cfg, surf, sink, history, logger)

	if mcpMode {
		srv := mcp.NewServer(&mcp.Implementation{Name: "codesnap", Version: "1.0.0"}, nil)
		svc.RegisterMCP(srv)
		logger.Info("codesnap: MCP server on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	}

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: codesnap -file <path> [-lines a:b] [-out <png>] [-show] | codesnap -mcp")
		os.Exit(1)
	}

	req, err := buildRequest(filePath, lines, language)
	if err != nil {
		return err
	}

	if show {
		if err := svc.CaptureSelection(ctx, req); err != nil {
			return err
		}
		logger.Info("codesnap: surface open, ctrl-c to quit")
		<-ctx.Done()
		return nil
	}

	path, err := svc.Export(ctx, req, outPath)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func buildRequest(filePath, lines, language string) (capture.Request, error) {
	if filePath == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return capture.Request{}, fmt.Errorf("read stdin: %w", err)
		}
		req := capture.Request{Text: string(data), Language: language, DisplayName: "stdin", StartLine: 1}
		return req, nil
	}

	start, end, err := parseLines(lines)
	if err != nil {
		return capture.Request{}, err
	}
	req, err := capture.FileRequest(filePath, start, end)
	if err != nil {
		return capture.Request{}, err
	}
	if language != "" {
		req.Language = language
	}
	return req, nil
}

// parseLines parses "a:b" into a 1-based inclusive range; empty means the
// whole file.
func parseLines(s string) (start, end int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid -lines %q, want a:b", s)
	}
	if start, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("invalid -lines %q: %w", s, err)
	}
	if end, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("invalid -lines %q: %w", s, err)
	}
	return start, end, nil
}
