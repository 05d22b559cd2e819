package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chateo/client-go/internal/api"
	"github.com/chateo/client-go/internal/client"
	"github.com/chateo/client-go/internal/config"
	"github.com/chateo/client-go/internal/log"
	"github.com/chateo/client-go/internal/session"
	"github.com/chateo/client-go/internal/transport"
	"github.com/chateo/client-go/internal/view"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "chateo",
		Short:         "Terminal client for the chateo realtime chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, overrides)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&overrides.ServerURL, "server", "", "HTTP base URL of the chat backend")
	cmd.Flags().StringVar(&overrides.SocketURL, "socket", "", "websocket URL (default derived from --server)")
	cmd.Flags().StringVarP(&overrides.Username, "user", "u", "", "display name to register")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func run(configPath string, overrides config.Config) error {
	bootLog := log.New("info")
	cfg, cfgPath, err := config.Load(bootLog, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel)
	logger.Debug().Str("config", cfgPath).Msg("configuration loaded")

	if err := session.ValidateDisplayName(cfg.Username); err != nil {
		return fmt.Errorf("username %q: %w", cfg.Username, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := view.NewTermRenderer(os.Stdout)
	sess := session.New(renderer, cfg.ScrollThreshold)
	apiClient := api.New(cfg.ServerURL, cfg.RequestTimeout, logger)

	adapter := transport.New(socketURL(cfg), cfg.ReconnectMinBackoff, cfg.ReconnectMaxBackoff, logger)
	adapter.OnConnect(func(ctx context.Context) {
		if err := adapter.EmitRegister(ctx, cfg.Username); err != nil {
			logger.Error().Err(err).Msg("registration send failed")
		}
	})

	cli := client.New(sess, adapter, apiClient, renderer, logger)

	transportDone := make(chan error, 1)
	go func() { transportDone <- adapter.Run(ctx) }()
	go readCommands(ctx, cli, stop, logger)

	logger.Info().Str("server", cfg.ServerURL).Str("user", cfg.Username).Msg("starting chateo")
	if err := cli.Run(ctx, adapter.Events()); err != nil && ctx.Err() == nil {
		return err
	}
	if err := <-transportDone; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// socketURL picks the configured realtime endpoint, defaulting to the
// websocket flavour of the HTTP base.
func socketURL(cfg config.Config) string {
	if cfg.SocketURL != "" {
		return cfg.SocketURL
	}
	base := cfg.ServerURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + "/ws"
}

// readCommands turns stdin lines into client actions. Lines starting with a
// slash are commands; anything else goes to the active conversation.
func readCommands(ctx context.Context, cli *client.Client, stop func(), logger *zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			cli.SendMessage(ctx, line)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if arg == "" && (cmd == "/join" || cmd == "/dm" || cmd == "/create") {
			fmt.Printf("usage: %s <name>\n", cmd)
			continue
		}
		switch cmd {
		case "/join":
			cli.JoinRoom(ctx, arg)
		case "/dm":
			cli.OpenDirectChat(ctx, arg)
		case "/create":
			cli.CreateRoom(ctx, arg)
		case "/users":
			cli.RequestParticipants(ctx)
		case "/quit":
			stop()
			return
		default:
			fmt.Printf("unknown command %s (try /join, /dm, /create, /users, /quit)\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Msg("stdin closed")
	}
	stop()
}
