package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"sbmn-interviewer/internal/app"
	"sbmn-interviewer/internal/config"
	"sbmn-interviewer/internal/history"
	"sbmn-interviewer/internal/interview"
)

// SendMessageParams carries one interviewee message.
type SendMessageParams struct {
	SessionID string `json:"session_id" mcp:"interview session identifier chosen by the caller"`
	Text      string `json:"text" mcp:"the interviewee's message"`
}

type SessionParams struct {
	SessionID string `json:"session_id" mcp:"interview session identifier"`
}

// InterviewMCPServer exposes the interview loop as MCP tools.
type InterviewMCPServer struct {
	svc *interview.Service
	log *zap.Logger
}

func NewInterviewMCPServer(svc *interview.Service, log *zap.Logger) *InterviewMCPServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &InterviewMCPServer{svc: svc, log: log.Named("mcp")}
}

func sessionKey(id string) string { return "mcp:" + id }

func textResult(text string, isErr bool) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: isErr,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func (s *InterviewMCPServer) SendMessage(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[SendMessageParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if args.SessionID == "" {
		return textResult("session_id is required", true), nil
	}

	s.log.Info("send_message", zap.String("session", args.SessionID), zap.Int("len", len(args.Text)))
	turn, err := s.svc.Submit(ctx, sessionKey(args.SessionID), args.Text)
	switch {
	case errors.Is(err, interview.ErrEmptyMessage):
		return textResult("text must not be empty", true), nil
	case errors.Is(err, history.ErrTurnInProgress):
		return textResult("a previous message in this session is still being answered", true), nil
	case err != nil:
		return nil, err
	}

	res := textResult(turn.Reply, false)
	if turn.Complete {
		status := "SBMN model complete, transcript exported."
		if !turn.Exported {
			status = fmt.Sprintf("SBMN model complete, export failed: %v", turn.ExportErr)
		}
		res.Content = append(res.Content, &mcp.TextContent{Text: status})
	}
	return res, nil
}

func (s *InterviewMCPServer) ResetInterview(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[SessionParams]) (*mcp.CallToolResultFor[any], error) {
	if params.Arguments.SessionID == "" {
		return textResult("session_id is required", true), nil
	}
	snap := s.svc.Reset(sessionKey(params.Arguments.SessionID))
	s.log.Info("reset_interview", zap.String("session", params.Arguments.SessionID), zap.String("handle", snap.Handle))
	return textResult(lastMessage(snap), false), nil
}

func (s *InterviewMCPServer) InterviewStatus(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[SessionParams]) (*mcp.CallToolResultFor[any], error) {
	snap, ok := s.svc.Snapshot(sessionKey(params.Arguments.SessionID))
	if !ok {
		return textResult(fmt.Sprintf("session %q not found", params.Arguments.SessionID), true), nil
	}
	return textResult(fmt.Sprintf("messages: %d, from interviewee: %d", snap.Count, snap.UserMessages), false), nil
}

func lastMessage(snap interview.Snapshot) string {
	if len(snap.Messages) == 0 {
		return ""
	}
	return snap.Messages[len(snap.Messages)-1].Content
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	// stdout carries the protocol, so logs go to stderr.
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := app.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build interviewer", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sbmn-interviewer-mcp",
		Version: "1.0.0",
	}, nil)

	srv := NewInterviewMCPServer(a.Interview, logger)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_message",
		Description: "Sends the interviewee's message and returns the interviewer's reply",
	}, srv.SendMessage)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_interview",
		Description: "Discards the conversation and starts a fresh interview",
	}, srv.ResetInterview)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "interview_status",
		Description: "Reports how many messages the interview holds",
	}, srv.InterviewStatus)

	logger.Info("starting MCP server on stdin/stdout", zap.Int("tools", 3))
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
