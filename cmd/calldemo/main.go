// Command calldemo places one outbound call and bridges it to a voice-agent
// session configured from the call config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"terminal-voice-backend/config"
	"terminal-voice-backend/internal/callsetup"
	"terminal-voice-backend/internal/logger"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	to := flag.String("to", "", "destination phone number (defaults to call.to_number)")
	callConfigPath := flag.String("call-config", "", "voice session definition (defaults to call.call_config_path)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}
	log, _, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *to == "" {
		*to = cfg.Call.ToNumber
	}
	if *callConfigPath == "" {
		*callConfigPath = cfg.Call.CallConfigPath
	}
	if cfg.Call.VoiceAPIKey == "" || cfg.Call.AccountSID == "" || cfg.Call.AuthToken == "" || cfg.Call.FromNumber == "" {
		log.Fatal("call.voice_api_key, call.account_sid, call.auth_token and call.from_number must be configured")
	}

	callConfig, err := callsetup.LoadCallConfig(*callConfigPath)
	if err != nil {
		log.Fatalw("Failed to load call config", "path", *callConfigPath, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	call, err := callsetup.NewClient(cfg.Call, log).Setup(ctx, callConfig, *to)
	if err != nil {
		log.Fatalw("Call setup failed", "error", err)
	}
	fmt.Printf("Call initiated: %s\n", call.SID)
}
