package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/spacequiz/internal/bank"
	"github.com/pavelanni/spacequiz/internal/bankgen"
	"github.com/pavelanni/spacequiz/internal/bankgen/prompts"
	"github.com/pavelanni/spacequiz/internal/game"
	"github.com/pavelanni/spacequiz/internal/handler"
	appI18n "github.com/pavelanni/spacequiz/internal/i18n"
	"github.com/pavelanni/spacequiz/internal/model"
	"github.com/pavelanni/spacequiz/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spacequiz",
		Short: "Arcade quiz shooter server",
	}

	serve := serveCmd()
	root.AddCommand(serve, importCmd(), banksCmd(), generateCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `spacequiz --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "spacequiz.db", "SQLite database path")
	f.StringSliceP("banks", "b", []string{"banks"}, "Bank files or directories to import on start (repeatable)")
	f.String("content-root", "web", "Directory with the browser assets")
	f.StringP("lang", "l", "en", "Default UI language (en, zh)")
	f.StringP("difficulty", "d", string(model.DifficultyEasy), "Default difficulty (easy, advanced, expert)")
	f.IntP("sample-size", "n", 0, "Default questions per game (0 = whole bank)")
	f.Int("tick-rate", game.DefaultTickRate, "Game ticks per second; speeds are per tick, so this scales the whole game speed")
	f.Int("max-health", game.DefaultMaxHealth, "Player health at the start of a game")
	f.String("admin-password", "", "Initial admin password (or set SPACEQUIZ_ADMIN_PASSWORD)")
	f.StringSlice("allowed-origins", nil, "Origins allowed to open the play socket (empty = any)")
	addLogFlags(cmd)
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [paths...]",
		Short: "Import bank files or directories into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
	f := cmd.Flags()
	f.String("db", "spacequiz.db", "SQLite database path")
	addLogFlags(cmd)
	return cmd
}

func banksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List the banks stored in the database",
		RunE:  runBanks,
	}
	f := cmd.Flags()
	f.String("db", "spacequiz.db", "SQLite database path")
	f.StringP("output", "o", "text", "Output format (text, json)")
	addLogFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a bank with an LLM and write it as a bank file",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.String("id", "", "Bank identifier (required)")
	f.String("topic", "", "Topic of the questions (required)")
	f.String("language", "English", "Language of the generated text")
	f.Int("choice", 16, "Number of multiple choice questions")
	f.Int("true-false", 4, "Number of true/false questions")
	f.Bool("multi-select", true, "Allow multi-select questions")
	f.String("style", string(prompts.StyleStandard), "Prompt style (casual, standard, expert)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.StringP("output", "o", "", "Output file path (default <id>.json, - for stdout)")
	f.Bool("import", false, "Also store the generated bank in the database")
	f.String("db", "spacequiz.db", "SQLite database path")
	addLogFlags(cmd)

	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("SPACEQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("spacequiz")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/spacequiz")
	v.AddConfigPath("/etc/spacequiz")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := importBanks(ctx, db, v.GetStringSlice("banks")); err != nil {
		return fmt.Errorf("import banks: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	gameCfg := game.Config{
		Difficulty: model.ParseDifficulty(v.GetString("difficulty")),
		MaxHealth:  v.GetInt("max-health"),
		TickRate:   v.GetInt("tick-rate"),
	}
	h, err := handler.New(db, handler.Config{
		ContentRoot:    v.GetString("content-root"),
		Game:           gameCfg,
		SampleSize:     v.GetInt("sample-size"),
		AllowedOrigins: v.GetStringSlice("allowed-origins"),
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"difficulty", gameCfg.Difficulty,
		"sample_size", v.GetInt("sample-size"),
		"tick_rate", gameCfg.TickRate,
		"content_root", v.GetString("content-root"),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return importBanks(cmd.Context(), db, args)
}

func runBanks(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	banks, err := db.ListBanks(cmd.Context())
	if err != nil {
		return fmt.Errorf("list banks: %w", err)
	}
	return printBanks(cmd.OutOrStdout(), banks, v.GetString("output"))
}

func printBanks(w io.Writer, banks []model.BankInfo, format string) error {
	if strings.ToLower(format) == "json" {
		data, err := json.MarshalIndent(banks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUESTIONS\tDESCRIPTION")
	for _, b := range banks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.ID, b.Name, b.Count, b.Description)
	}
	return tw.Flush()
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	client, err := bankgen.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
		strings.ToLower(strings.TrimSpace(v.GetString("style"))),
	)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	ctx := cmd.Context()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	id := v.GetString("id")
	res, err := client.Generate(ctx, bankgen.Request{
		ID:          id,
		Topic:       v.GetString("topic"),
		Language:    v.GetString("language"),
		Choice:      v.GetInt("choice"),
		TrueFalse:   v.GetInt("true-false"),
		MultiSelect: v.GetBool("multi-select"),
	})
	var verr *bank.ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			slog.Warn("generated question rejected", "field", issue.Field, "message", issue.Message)
		}
		return fmt.Errorf("generated bank is invalid: %w", err)
	}
	if err != nil {
		return fmt.Errorf("generate bank: %w", err)
	}

	data, err := json.MarshalIndent(res.File, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	if outPath == "" {
		outPath = id + ".json"
	}
	var w io.Writer
	if outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	if v.GetBool("import") {
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.UpsertBank(ctx, res.Bank); err != nil {
			return fmt.Errorf("store bank: %w", err)
		}
	}
	return nil
}

// importBanks loads every bank file under paths into the database, skipping
// files whose content has not changed since the last import.
func importBanks(ctx context.Context, db *store.Store, paths []string) error {
	files, err := bank.FindFiles(paths)
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash {
			slog.Info("bank file unchanged, skipping", "path", path)
			continue
		}
		if storedHash != "" {
			slog.Info("bank file changed since last import, replacing", "path", path)
		}

		b, err := bank.Parse(data, path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if err := db.UpsertBank(ctx, b); err != nil {
			return fmt.Errorf("store bank from %s: %w", path, err)
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported bank", "path", path, "id", b.ID, "count", b.Count())
	}

	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// seedAdmin creates the admin account on first start. Without a password
// bank upload stays disabled.
func seedAdmin(db *store.Store, password string) error {
	count, err := db.AdminCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		slog.Warn("no admin account: set --admin-password or SPACEQUIZ_ADMIN_PASSWORD to enable bank upload")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := db.CreateAdmin("admin", string(hash)); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
