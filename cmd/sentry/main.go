package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"

	"github.com/sentry-network/sentry-wallet/pkg/httputil"
)

const (
	rpcServerKey = "rpcserver"
	tokenKey     = "token"
	userIDKey    = "user_id"
	walletIDKey  = "wallet_id"

	// requestTimeout exceeds the default confirmation timeout of the daemon.
	requestTimeout = 3 * time.Minute
)

var (
	sentryDataDir = btcutil.AppDataDir("sentry-cli", false)
	statePath     = filepath.Join(sentryDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "sentry"
	app.Usage = "Command line interface for sentryd wallet users"
	app.Commands = append(
		app.Commands,
		&config,
		&createwallet,
		&importwallet,
		&unlockwallet,
		&lockwallet,
		&logout,
		&changepassword,
		&status,
		&balance,
		&network,
		&send,
		&history,
		&receipt,
		&nominee,
		&local,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(filepath.Dir(statePath)); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(statePath), os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	// The state may hold an identity token.
	if err := os.WriteFile(statePath, jsonString, 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

type errorReply struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Record  json.RawMessage `json:"record,omitempty"`
}

// daemonError is a reply of the daemon with a non 2xx status.
type daemonError struct {
	Status  int
	Kind    string
	Message string
}

func (e *daemonError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("daemon replied with status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

type client struct {
	baseURL string
	http    *httputil.Client
}

func getClient() (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state[rpcServerKey]
	if !ok || address == "" {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if token := state[tokenKey]; token != "" {
		headers["Authorization"] = "Bearer " + token
	} else if userID := state[userIDKey]; userID != "" {
		headers["X-User-Id"] = userID
	} else {
		return nil, errors.New(
			"set an identity token with `config set token` or a user id with `config set user_id`",
		)
	}

	return &client{
		baseURL: strings.TrimSuffix(address, "/"),
		http:    httputil.NewClient(requestTimeout, headers),
	}, nil
}

// do sends the request to the daemon and returns the raw json reply. A
// transaction still pending is not an error, the reply carries its record.
func (c *client) do(
	method, path string, body interface{}, headers map[string]string,
) (string, error) {
	payload := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		payload = string(buf)
	}

	status, reply, err := c.http.NewHTTPRequest(
		context.Background(), method, c.baseURL+path, payload, headers,
	)
	if err != nil {
		return "", fmt.Errorf("unable to connect to daemon: %w", err)
	}

	if status == http.StatusAccepted {
		var e errorReply
		if err := json.Unmarshal([]byte(reply), &e); err == nil && e.Record != nil {
			fmt.Fprintln(os.Stderr, "transaction is not confirmed yet, check it later with `receipt`")
			return string(e.Record), nil
		}
	}
	if status < 200 || status >= 300 {
		var e errorReply
		// nolint
		json.Unmarshal([]byte(reply), &e)
		return "", &daemonError{status, e.Error, e.Message}
	}
	return reply, nil
}

func printJSON(reply string) {
	if reply == "" {
		return
	}
	var v interface{}
	if err := json.Unmarshal([]byte(reply), &v); err != nil {
		fmt.Println(reply)
		return
	}
	buf, _ := json.MarshalIndent(v, "", "\t")
	fmt.Println(string(buf))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[sentry] %v\n", err)
	}
	os.Exit(1)
}
