package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/logger"

	"go.uber.org/zap"
)

// Mode 进程启动模式
type Mode string

const (
	ModeAll    Mode = "all"
	ModeAPI    Mode = "api"
	ModeWorker Mode = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// ParseMode 解析命令行模式，空串视为 all
func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want all, api or worker)", raw)
	}
}

func (m Mode) servesAPI() bool    { return m == ModeAll || m == ModeAPI }
func (m Mode) servesWorker() bool { return m == ModeAll || m == ModeWorker }

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            Mode
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
