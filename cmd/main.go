package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"medassist-backend/internal/config"
	"medassist-backend/internal/extractor"
	"medassist-backend/internal/handler"
	"medassist-backend/internal/mcpserver"
	"medassist-backend/internal/metrics"
	"medassist-backend/internal/model"
	"medassist-backend/internal/service"
	"medassist-backend/internal/storage"
	"medassist-backend/pkg/logger"
)

const version = "1.0.0"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "medassist",
		Short:         "Medical history analysis backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "path to the config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	var symptoms string
	var questions []string
	analyze := &cobra.Command{
		Use:   "analyze <file.pdf>",
		Short: "Analyze a medical history PDF and optionally ask follow-up questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), configPath, args[0], symptoms, questions)
		},
	}
	analyze.Flags().StringVar(&symptoms, "symptoms", "", "current problem or symptoms")
	analyze.Flags().StringArrayVar(&questions, "ask", nil, "follow-up question (repeatable)")
	_ = analyze.MarkFlagRequired("symptoms")

	mcp := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), configPath)
		},
	}

	root.AddCommand(serve, analyze, mcp)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type app struct {
	medical *service.MedicalService
	metrics *metrics.Metrics
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	ext, err := extractor.New(cfg.Extractor.ChunkSize, cfg.Extractor.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}

	m := metrics.New()
	chatModel, err := model.NewChatModel(ctx, cfg, m)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}

	store := storage.NewMemoryStorage()
	m.TrackSessions(store.Count)

	medical := service.NewMedicalService(ext,
		service.NewAnalysisPipeline(chatModel, m),
		service.NewChatService(store, chatModel, m),
		store, m)

	return &app{medical: medical, metrics: m}, nil
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := buildApp(context.Background(), cfg)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	h := handler.NewMedicalHandler(a.medical, cfg.Model.Provider, cfg.Server.MaxUploadBytes)
	router := handler.NewRouter(cfg, h, a.metrics)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logger.Fields{"port": cfg.Server.Port, "provider": cfg.Model.Provider}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
		return server.Close()
	}
	logger.Info("server stopped")
	return nil
}

type analyzeOutput struct {
	*model.AnalyzeResponse
	FollowUps []model.ChatExchange `json:"follow_ups,omitempty"`
}

func runAnalyze(ctx context.Context, configPath, path, symptoms string, questions []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Logs go to stderr so stdout carries only the JSON result.
	if err := logger.InitWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	resp, err := a.medical.AnalyzeDocument(ctx, extractor.Document{Name: filepath.Base(path), Data: data}, symptoms)
	if err != nil {
		return err
	}

	out := analyzeOutput{AnalyzeResponse: resp}
	for _, q := range questions {
		reply, err := a.medical.ContinueChat(ctx, resp.SessionID, q)
		if err != nil {
			return fmt.Errorf("follow-up %q: %w", q, err)
		}
		out.FollowUps = append(out.FollowUps, model.ChatExchange{
			UserMessage:       q,
			AssistantResponse: reply,
			Timestamp:         time.Now(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runMCP(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout belongs to the protocol stream.
	if err := logger.InitWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	logger.WithFields(logger.Fields{"provider": cfg.Model.Provider}).Info("mcp server starting on stdio")
	return mcpserver.Serve(a.medical, version)
}
