package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/slotgate/app"
	"github.com/kilianp07/slotgate/config"
	"github.com/kilianp07/slotgate/core/dispatch"
	"github.com/kilianp07/slotgate/infra/logger"
)

type dispatchFlags struct {
	endpoint  string
	operation string
	body      string
	token     string
	model     string
	prompt    string
}

var dflags dispatchFlags

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Send one request through the dispatcher",
	Long: `Send one request through the dispatcher and print the JSON payload.
The body is read from --body, or from stdin when --body is "-".`,
	RunE: runDispatch,
}

func init() {
	f := dispatchCmd.Flags()
	f.StringVarP(&dflags.endpoint, "endpoint", "e", "", "target endpoint (defaults to dispatch.default_endpoint)")
	f.StringVarP(&dflags.operation, "operation", "o", "generate", "operation tag")
	f.StringVarP(&dflags.body, "body", "b", "{}", "JSON request body, - for stdin")
	f.StringVarP(&dflags.token, "token", "t", "", "credential overriding the personal token")
	f.StringVar(&dflags.model, "model", "", "model name recorded in the log")
	f.StringVar(&dflags.prompt, "prompt", "", "prompt recorded in the log")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	body, err := readBody(cmd.InOrStdin(), dflags.body)
	if err != nil {
		return err
	}
	endpoint := dflags.endpoint
	if endpoint == "" {
		endpoint = cfg.Dispatch.DefaultEndpoint
	}
	if endpoint == "" {
		return fmt.Errorf("no endpoint given and dispatch.default_endpoint is empty")
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("dispatch-command").Errorf("service close: %v", err)
		}
	}()

	stderr := cmd.ErrOrStderr()
	res, err := svc.Dispatcher.Dispatch(ctx, dispatch.Request{
		Endpoint:  endpoint,
		Operation: dflags.operation,
		Body:      body,
		Override:  dflags.token,
		Model:     dflags.model,
		Prompt:    dflags.prompt,
		OnStatus: func(s string) {
			if s != "" {
				_, _ = fmt.Fprintln(stderr, s)
			}
		},
		OnFallback: func() {
			_, _ = fmt.Fprintln(stderr, "personal token rejected, retry with --token")
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", dispatch.Kind(err), err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func readBody(stdin io.Reader, raw string) (json.RawMessage, error) {
	data := []byte(raw)
	if raw == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		data = b
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	return json.RawMessage(data), nil
}
