package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text handler
	BackendZap Backend = "zap" // slog-zap, JSON
)

type Config struct {
	// Метаданные для логгера
	Service    string
	Version    string
	InstanceID string

	// Управление выводом
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap для stage/prod, std для dev
	Debug   bool

	// Zap sampling
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}
