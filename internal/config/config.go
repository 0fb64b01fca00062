package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const DefaultPath = "./config/application.yaml"

type Application struct {
	Host     string   `koanf:"host"`
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Finance  Finance  `koanf:"finance"`
	Http     Http     `koanf:"http"`
	Metrics  Metrics  `koanf:"metrics"`
}

type Server struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"readtimeout"`
	WriteTimeout time.Duration `koanf:"writetimeout"`
	IdleTimeout  time.Duration `koanf:"idletimeout"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	// MaxConns and MinConns size the connection pool.
	MaxConns int32 `koanf:"maxconns"`
	MinConns int32 `koanf:"minconns"`
	// Migrations points at the migrations directory. Empty searches upward from the working directory.
	Migrations string `koanf:"migrations"`
}

type Finance struct {
	// DefaultProfitMargin is applied to projects created without an explicit margin, in percent.
	DefaultProfitMargin float64 `koanf:"defaultprofitmargin"`
	WarningThreshold    float64 `koanf:"warningthreshold"`
	OverBudgetThreshold float64 `koanf:"overbudgetthreshold"`
	// UpcomingDays is the dashboard window for deliverables that are due soon.
	UpcomingDays int `koanf:"upcomingdays"`
}

type Http struct {
	// RateLimit in limiter format, e.g. "300-M". Empty disables rate limiting.
	RateLimit   string `koanf:"ratelimit"`
	Development bool   `koanf:"development"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Server: Server{
			Port:         8181,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "marginly",
			Pass:   "",
			Name:   "marginly",
			Schema: "marginly",

			MaxConns: 25,
			MinConns: 2,
		},
		Finance: Finance{
			DefaultProfitMargin: 20,
			WarningThreshold:    90,
			OverBudgetThreshold: 100,
			UpcomingDays:        14,
		},
		Http: Http{
			RateLimit: "300-M",
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "MARGINLY_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "MARGINLY_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
