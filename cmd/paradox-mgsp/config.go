package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	client "github.com/panelmon/paradox-mgsp"
)

type Config struct {
	Device   string        `env:"DEVICE"`
	Baud     int           `env:"BAUD"     envDefault:"9600"`
	Host     string        `env:"HOST"`
	Port     string        `env:"PORT"     envDefault:"10000"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT"  envDefault:"5s"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "PARADOX_"}); err != nil {
		return cfg, fmt.Errorf(
			"could not parse env: %s",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: "),
		)
	}
	return cfg, nil
}

// transport opens the configured link: a local serial device or an IP
// bridge, never both.
func (c Config) transport() (client.Transport, error) {
	switch {
	case c.Device != "" && c.Host != "":
		return nil, errors.New("PARADOX_DEVICE and PARADOX_HOST are mutually exclusive")
	case c.Device != "":
		return client.OpenSerial(c.Device, c.Baud, c.Timeout)
	case c.Host != "":
		return client.DialTCP(c.Host, c.Port, c.Timeout)
	default:
		return nil, errors.New("set PARADOX_DEVICE or PARADOX_HOST")
	}
}
