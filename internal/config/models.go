package config

import "time"

type Config struct {
	Port             int
	GracefulDuration time.Duration
	ReadTimeout      time.Duration
	Metrics          Metrics
	Logs             Logs
}

type Metrics struct {
	Port int
}

type Logs struct {
	Level   int
	Encoder EncoderType
}

type EncoderType string

const (
	EncoderTypeJson    EncoderType = "json"
	EncoderTypeConsole EncoderType = "console"
)
