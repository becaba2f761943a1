package logger

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

var threshold atomic.Int32

// exit is swapped in tests so Fatal can be observed.
var exit = os.Exit

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	threshold.Store(int32(LevelInfo))
	Info("logger initialized", nil)
}

// SetLevel accepts debug, info, warn, error. Unknown names leave the level unchanged.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		threshold.Store(int32(LevelDebug))
	case "info":
		threshold.Store(int32(LevelInfo))
	case "warn", "warning":
		threshold.Store(int32(LevelWarn))
	case "error":
		threshold.Store(int32(LevelError))
	}
}

func Debug(msg string, fields map[string]any) {
	write(LevelDebug, msg, fields)
}

func Info(msg string, fields map[string]any) {
	write(LevelInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write(LevelWarn, msg, fields)
}

func Error(msg string, fields map[string]any) {
	write(LevelError, msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	write(LevelFatal, msg, fields)
	exit(1)
}

type line struct {
	Level  string         `json:"level"`
	Time   string         `json:"time"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

func write(level Level, msg string, fields map[string]any) {
	if level < Level(threshold.Load()) {
		return
	}

	data, err := json.Marshal(line{
		Level:  levelNames[level],
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
		Msg:    msg,
		Fields: fields,
	})
	if err != nil {
		// fields held something json cannot encode
		log.Printf(`{"level":"%s","msg":%q,"fields":"%v"}`, levelNames[level], msg, fields)
		return
	}

	log.Print(string(data))
}
