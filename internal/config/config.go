package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port             int
	LogLevel         string
	DataDir          string
	OutputDir        string
	MaxContextLength int
	Encoding         string // tiktoken encoding name, or "estimate" for the offline heuristic
	SenderMap        map[string]string
	ExtraFilters     []string // notice patterns beyond the stock WhatsApp set
	DatabaseURL      string
	NatsURL          string
	NatsToken        string
	FireworksAPIKey  string
	FireworksModel   string // accounts/<account>/models/<model>
	ChatName         string
	SenderName       string
	RespondAs        string
	MaxReplyTokens   int
}

func Load() Config {
	cfg := Config{
		Port:             envInt("MIMIC_PORT", 8760),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		DataDir:          envStr("MIMIC_DATA_DIR", "data/whatsapp_chat_history"),
		OutputDir:        envStr("MIMIC_OUTPUT_DIR", "data/output"),
		MaxContextLength: envInt("MIMIC_MAX_CONTEXT", 2048),
		Encoding:         envStr("MIMIC_TOKENIZER_ENCODING", "cl100k_base"),
		SenderMap:        envMap("MIMIC_SENDER_MAP"),
		ExtraFilters:     envList("MIMIC_NOTICE_PATTERNS"),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		FireworksAPIKey:  envStr("FIREWORKS_API_KEY", ""),
		FireworksModel:   envStr("MIMIC_MODEL", ""),
		ChatName:         envStr("MIMIC_CHAT_NAME", ""),
		SenderName:       envStr("MIMIC_SENDER_NAME", ""),
		RespondAs:        envStr("MIMIC_RESPOND_AS", ""),
		MaxReplyTokens:   envInt("MIMIC_MAX_REPLY_TOKENS", 500),
	}
	// For personal DMs the chat is named after the person talking to the model.
	if cfg.ChatName == "" {
		cfg.ChatName = cfg.SenderName
	}
	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envList parses a comma-separated value into trimmed entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMap parses "old=new,old2=new2" into a sender display mapping.
func envMap(key string) map[string]string {
	entries := envList(key)
	if len(entries) == 0 {
		return nil
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		old, repl, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		old, repl = strings.TrimSpace(old), strings.TrimSpace(repl)
		if old != "" && repl != "" {
			m[old] = repl
		}
	}
	return m
}
