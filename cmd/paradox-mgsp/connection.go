package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	client "github.com/panelmon/paradox-mgsp"
	"golang.org/x/term"
)

// openClient connects, identifies the panel, and, when auth is set,
// authenticates with the pc password. The caller owns the returned session.
func openClient(auth bool) (*client.Client, Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	t, err := cfg.transport()
	if err != nil {
		return nil, cfg, err
	}
	cli := client.New(t, clientLog, cfg.Timeout)
	if _, err := cli.Identify(); err != nil {
		_ = cli.Close()
		return nil, cfg, fmt.Errorf("could not identify the panel: %w", err)
	}
	if auth {
		password, err := cfg.getPassword()
		if err != nil {
			_ = cli.Close()
			return nil, cfg, err
		}
		ok, err := cli.Authenticate(password)
		if err != nil {
			_ = cli.Close()
			return nil, cfg, fmt.Errorf("could not authenticate: %w", err)
		}
		if !ok {
			_ = cli.Close()
			return nil, cfg, errors.New("the panel rejected the pc password")
		}
	}
	return cli, cfg, nil
}

func closeClient(cli *client.Client) {
	if err := cli.Close(); err != nil {
		log.Error("could not close the connection", "err", err)
	}
}

// getPassword returns the pc password from the environment, prompting
// without echo when it is not set.
func (c Config) getPassword() (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}

	fmt.Fprint(os.Stderr, "PC password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal, read a line instead.
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("could not read the password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(raw), nil
}
