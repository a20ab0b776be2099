package main

import "time"

type Config struct {
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	PushBudget           time.Duration `env:"PUSH_BUDGET,default=2s"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=5m"`
	StatsInterval        time.Duration `env:"STATS_INTERVAL,default=1m"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=3001"`
}
