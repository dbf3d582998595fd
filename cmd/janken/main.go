package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/janken/internal/app"
	"github.com/ayusman/janken/internal/config"
	"github.com/ayusman/janken/internal/logger"
	"github.com/ayusman/janken/internal/server"
	"github.com/ayusman/janken/internal/tray"
	"github.com/ayusman/janken/internal/tui"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "janken: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log, closeLog, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	webDir := cfg.Web.Dir
	if webDir == "" {
		webDir = findWebDir(cfg.Data.Dir)
	}
	if webDir != "" {
		log.Info("serving static files", "dir", webDir)
	}

	srvCfg := server.Config{
		StaticDir:      webDir,
		Game:           a.Session(),
		Store:          a.Store(),
		CurrentSession: a.Recorder().SessionID,
		Metrics:        a.Metrics().Handler(),
	}
	if a.Pipeline() != nil {
		srvCfg.Frames = a.Frames()
	}
	srv := server.New(srvCfg)
	a.Session().AddListener(srv.Socket())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx, cfg.HTTP.Addr)
	})

	if cfg.UI.Terminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			stop()
			g.Wait()
			return fmt.Errorf("terminal ui: %w", err)
		}
		ui := tui.New(screen, a.Session())
		a.Session().AddListener(ui)
		g.Go(func() error {
			if err := ui.Run(ctx); err != nil {
				return err
			}
			stop()
			return nil
		})
	}

	url := browserURL(cfg.HTTP.Addr)
	log.Info("janken ready", "url", url)

	if cfg.UI.Tray {
		// systray must own the main goroutine.
		tr := tray.New()
		tr.OnPlayAgain(func() { a.Session().PlayAgain() })
		tr.OnNewGame(func() { a.Session().NewGame() })
		tr.OnOpen(func() {
			if err := openBrowser(url); err != nil {
				log.Warn("failed to open browser", "error", err)
			}
		})
		tr.OnQuit(stop)
		a.Session().AddListener(tr)

		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		tr.Run()
		stop()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("janken stopped")
	return nil
}

// initLogger logs to stderr, or to a file in the data dir while the
// terminal UI owns the screen.
func initLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	json := cfg.Log.Format == "json"
	if !cfg.UI.Terminal {
		return logger.Init(cfg.Log.Level, json), func() {}, nil
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.Data.Dir, "janken.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.InitWriter(io.Writer(f), cfg.Log.Level, json), func() { f.Close() }, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	if dataDir == "" {
		return ""
	}
	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
