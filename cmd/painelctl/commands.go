package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/painel-vendas/painel/internal/app"
	"github.com/painel-vendas/painel/internal/sales"
)

type options struct {
	start string
	end   string
	month string
	json  bool
}

// serviceFactory opens the report service; tests swap it for a stub.
var serviceFactory = func(ctx context.Context) (*sales.Service, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := app.NewGoalStore(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return sales.NewService(app.NewInvoicingClient(cfg, nil), store), closeStore, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "painelctl",
		Short:         "Consulta faturamento e metas do painel de vendas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.start, "inicio", "i", "", "data inicial (yyyy-mm-dd)")
	root.PersistentFlags().StringVarP(&opts.end, "fim", "f", "", "data final (yyyy-mm-dd)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "imprime o payload JSON em vez da tabela")

	root.AddCommand(
		&cobra.Command{
			Use:   "vendas",
			Short: "Resumo de faturamento do período",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *sales.Service) error {
					window, err := svc.ResolveWindow(sales.WindowQuery{DataInicio: opts.start, DataFim: opts.end})
					if err != nil {
						return err
					}
					summary, err := svc.SalesSummary(ctx, window)
					if err != nil {
						return err
					}
					if opts.json {
						return writeJSON(cmd.OutOrStdout(), summary)
					}
					return renderSummary(cmd.OutOrStdout(), summary)
				})
			},
		},
		newGoalsCmd(opts),
		&cobra.Command{
			Use:   "notas",
			Short: "NF-e de saída emitidas no período",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *sales.Service) error {
					window, err := svc.ResolveWindow(sales.WindowQuery{DataInicio: opts.start, DataFim: opts.end})
					if err != nil {
						return err
					}
					list, err := svc.Invoices(ctx, window)
					if err != nil {
						return err
					}
					if opts.json {
						return writeJSON(cmd.OutOrStdout(), list)
					}
					return renderInvoices(cmd.OutOrStdout(), list)
				})
			},
		},
	)
	return root
}

func newGoalsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metas",
		Short: "Progresso das metas do mês",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.month == "" && opts.start == "" && opts.end == "" {
				opts.month = time.Now().Format("2006-01") + "-01"
			}
			return withService(cmd, func(ctx context.Context, svc *sales.Service) error {
				month, window, err := svc.ResolveGoalsPeriod(sales.GoalsQuery{Mes: opts.month, DataInicio: opts.start, DataFim: opts.end})
				if err != nil {
					return err
				}
				report, err := svc.GoalsReport(ctx, month, window)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				return renderGoals(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.month, "mes", "m", "", "mês de referência (yyyy-mm-dd); padrão: mês corrente")
	return cmd
}

func withService(cmd *cobra.Command, fn func(context.Context, *sales.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := serviceFactory(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	var spinner *pterm.SpinnerPrinter
	if cmd.OutOrStdout() == os.Stdout {
		spinner, _ = pterm.DefaultSpinner.Start("Consultando Omie e metas...")
	}
	err = fn(ctx, svc)
	if spinner != nil {
		_ = spinner.Stop()
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
