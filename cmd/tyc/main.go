package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	cl "tycoon/internal/cli"
	"tycoon/internal/config"
	"tycoon/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	queue := syncq.New(cfg.QueuePath)

	root := &cobra.Command{
		Use:          "tyc",
		Short:        "Tycoon business game client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "game server base URL")

	root.AddCommand(
		newDashCmd(&apiBase),
		newClickCmd(&apiBase, queue),
		newCatalogCmd(&apiBase),
		newIncomeCmd(&apiBase),
		newBestCmd(&apiBase),
		newTickCmd(&apiBase),
		newSyncCmd(&apiBase, queue),
		newBusinessCmd(&apiBase, queue),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

// fetch runs a read-only request and renders the result.
func fetch(cmd *cobra.Command, apiBase *string, call func(context.Context, *cl.Client) (map[string]any, error), render func(map[string]any) error) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()
	out, err := call(ctx, newClient(apiBase))
	if err != nil {
		return err
	}
	return render(out)
}

// mutation is a write that can be queued for later when the server is
// unreachable.
type mutation struct {
	method string
	path   string
	body   map[string]any
	call   func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error)
	render func(map[string]any) error
}

func runMutation(cmd *cobra.Command, apiBase *string, queue *syncq.Queue, m mutation) error {
	idem := uuid.NewString()
	ctx, cancel := requestContext(cmd)
	defer cancel()
	out, err := m.call(ctx, newClient(apiBase), idem)
	if err != nil {
		return queueOnNetworkError(queue, err, syncq.Command{
			Method:         m.method,
			Path:           m.path,
			Body:           m.body,
			IdempotencyKey: idem,
		})
	}
	return m.render(out)
}

func queueOnNetworkError(queue *syncq.Queue, err error, command syncq.Command) error {
	if err == nil {
		return nil
	}
	var apiErr *cl.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Body != nil {
			renderMissing(apiErr.Body)
		}
		return err
	}
	if qerr := queue.Push(command); qerr != nil {
		return fmt.Errorf("request failed (%v) and could not be queued: %w", err, qerr)
	}
	printWarn(fmt.Sprintf("Server unreachable, queued %s %s. Run `tyc sync` later.", command.Method, command.Path))
	return nil
}

func newDashCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Show balance, income and businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.Dashboard(ctx)
			}, renderDashboard)
		},
	}
}

func newClickCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:   "click",
		Short: "Work a shift by hand for a little money and experience",
		RunE: func(cmd *cobra.Command, args []string) error {
			if times < 1 {
				times = 1
			}
			for i := 0; i < times; i++ {
				err := runMutation(cmd, apiBase, queue, mutation{
					method: http.MethodPost,
					path:   "/v1/click",
					call: func(ctx context.Context, c *cl.Client, idem string) (map[string]any, error) {
						return c.Click(ctx, idem)
					},
					render: func(out map[string]any) error {
						if i == times-1 {
							return renderSimpleOK(out, fmt.Sprintf("Clicked %d time(s).", times))
						}
						return nil
					},
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "number of clicks")
	return cmd
}

func newCatalogCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List purchasable businesses, cars, space and construction plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.Catalog(ctx)
			}, renderCatalog)
		},
	}
}

func newIncomeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "income",
		Short: "Show total income per hour and per tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.Income(ctx)
			}, renderIncome)
		},
	}
}

func newBestCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "best",
		Short: "Show the business with the highest hourly income",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.BestBusiness(ctx)
			}, renderBusiness)
		},
	}
}

func newTickCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Settle one tick of income right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, apiBase, func(ctx context.Context, c *cl.Client) (map[string]any, error) {
				return c.Tick(ctx)
			}, renderTick)
		},
	}
}

func newSyncCmd(apiBase *string, queue *syncq.Queue) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay writes queued while the server was unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := queue.Load()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			report, err := queue.Replay(func(q syncq.Command) error {
				_, err := client.Do(ctx, q.Method, q.Path, q.Body, q.IdempotencyKey)
				if cl.IsRejection(err) {
					return fmt.Errorf("%w: %w", syncq.ErrRejected, err)
				}
				return err
			})
			for _, d := range report.Dropped {
				printWarn("Dropped " + d.Error())
			}
			for _, f := range report.Kept {
				printError("Sync failed for " + f.Error())
			}
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d dropped=%d remaining=%d", report.Sent, len(report.Dropped), len(report.Kept)))
			return nil
		},
	}
}
