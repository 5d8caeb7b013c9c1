package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ajmalkv/rollsops/internal/api"
	"github.com/ajmalkv/rollsops/internal/cache"
	"github.com/ajmalkv/rollsops/internal/config"
	"github.com/ajmalkv/rollsops/internal/domain"
	"github.com/ajmalkv/rollsops/internal/server"
	"github.com/ajmalkv/rollsops/internal/service"
	"github.com/ajmalkv/rollsops/internal/session"
	"github.com/ajmalkv/rollsops/internal/storage"
	"github.com/ajmalkv/rollsops/internal/viewmodel"
	"github.com/ajmalkv/rollsops/pkg/logger"
)

// app bundles the dependency-injected stores and services the commands share.
type app struct {
	cfg       *config.Config
	session   *session.Store
	client    *api.Client
	queries   *cache.Queries
	po        *service.POService
	usage     *service.UsageService
	refresher *cache.Refresher
}

func buildApp() (*app, error) {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("ROLLSOPS_API_BASE_URL must be set")
	}

	sess := session.NewStore(cfg.Session.File)
	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, sess)

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	queries := cache.NewQueries(store)

	sink, err := storage.NewExportSink(cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("initialize export sink: %w", err)
	}

	po := service.NewPOService(client, queries, sink, time.Duration(cfg.Cache.POListTTLSeconds)*time.Second)
	usage := service.NewUsageService(client, queries, po.Districts, time.Duration(cfg.Cache.SummaryTTLSeconds)*time.Second)
	refresher := cache.NewRefresher(queries, time.Duration(cfg.Cache.RefreshPollSeconds)*time.Second)

	return &app{
		cfg:       cfg,
		session:   sess,
		client:    client,
		queries:   queries,
		po:        po,
		usage:     usage,
		refresher: refresher,
	}, nil
}

func main() {
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:  "rollsops",
		Usage: "Operations tooling for ticketing-roll inventory and usage",
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			poCommand(),
			usageCommand(),
			serveCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate an operations user and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "employee-id", Usage: "Employee ID", Required: true, EnvVars: []string{"ROLLSOPS_EMPLOYEE_ID"}},
			&cli.StringFlag{Name: "password", Usage: "Password", Required: true, EnvVars: []string{"ROLLSOPS_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			a.session.BeginLogin()
			result, err := a.client.Login(c.Context, c.String("employee-id"), c.String("password"))
			if err != nil {
				a.session.Logout()
				return fmt.Errorf("login failed: %w", err)
			}

			if err := a.session.Login(result.Token, result.UserDetails); err != nil {
				return fmt.Errorf("store session: %w", err)
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the stored session",
		Action: func(c *cli.Context) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			a.session.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session state",
		Action: func(c *cli.Context) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			fmt.Printf("State: %s\n", a.session.State())
			if details := a.session.UserDetails(); len(details) > 0 {
				pretty, _ := json.MarshalIndent(json.RawMessage(details), "", "  ")
				fmt.Println(string(pretty))
			}
			return nil
		},
	}
}

func poCommand() *cli.Command {
	return &cli.Command{
		Name:  "po",
		Usage: "Purchase-order operations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List purchase orders",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: 25},
					&cli.StringFlag{Name: "search", Usage: "Filter by PO number, district, or received date"},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}

					rows, err := a.po.List(c.Context, c.Int("page"), c.Int("limit"), c.String("search"))
					if err != nil {
						return err
					}
					printPurchaseOrders(rows)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "Record a new purchase order",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "po-no", Usage: "Purchase order number", Required: true},
					&cli.StringFlag{Name: "district", Usage: "District name", Required: true},
					&cli.StringFlag{Name: "rolls", Usage: "Number of rolls", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Received date (YYYY-MM-DD), defaults to today"},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}

					form := viewmodel.NewPOForm(a.po.Districts(c.Context))
					form.PONumber = c.String("po-no")
					form.District = c.String("district")
					form.NumberOfRolls = c.String("rolls")
					if date := c.String("date"); date != "" {
						form.ReceivedDate = date
					}

					result, err := a.po.Create(c.Context, form)
					if err != nil {
						return err
					}
					if !result.Created {
						fmt.Printf("Rejected: %s\n", result.Message)
						return nil
					}
					fmt.Println("Purchase order created.")
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Save an edit to an existing purchase order",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
					&cli.StringFlag{Name: "po-no", Required: true},
					&cli.StringFlag{Name: "district", Required: true},
					&cli.StringFlag{Name: "rolls", Required: true},
					&cli.StringFlag{Name: "date", Required: true},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}

					form := viewmodel.NewPOForm(a.po.Districts(c.Context))
					form.PONumber = c.String("po-no")
					form.District = c.String("district")
					form.NumberOfRolls = c.String("rolls")
					form.ReceivedDate = c.String("date")

					input, err := form.Build()
					if err != nil {
						return err
					}

					if _, err := a.po.Update(c.Context, c.Int64("id"), input); err != nil {
						return err
					}
					fmt.Println("Purchase order updated.")
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a purchase order",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}
					if err := a.po.Delete(c.Context, c.Int64("id")); err != nil {
						return err
					}
					fmt.Println("Purchase order deleted.")
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "Download the purchase-order spreadsheet",
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}
					location, err := a.po.ExportPOExcel(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Saved %s\n", location)
					return nil
				},
			},
			{
				Name:  "handover-export",
				Usage: "Download the handover-details spreadsheet for a date range",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "From date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "to", Usage: "To date (YYYY-MM-DD)", Required: true},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}
					location, err := a.po.ExportHandoverExcel(c.Context, c.String("from"), c.String("to"))
					if err != nil {
						return err
					}
					fmt.Printf("Saved %s\n", location)
					return nil
				},
			},
		},
	}
}

func usageCommand() *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Rolls-usage views and reports",
		Subcommands: []*cli.Command{
			{
				Name:  "summary",
				Usage: "Show per-owner rolls usage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "Filter by owner or district"},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}

					view, err := a.usage.Summary(c.Context, c.String("search"))
					if err != nil {
						return err
					}
					printUsage(view)
					return nil
				},
			},
			{
				Name:  "vehicles",
				Usage: "Show the per-vehicle breakdown for one owner",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "owner-id", Required: true},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}

					vehicles, err := a.usage.Vehicles(c.Context, c.Int64("owner-id"))
					if err != nil {
						return err
					}
					printVehicles(vehicles)
					return nil
				},
			},
			{
				Name:  "report",
				Usage: "Run a bus-wise ticket-count report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "district", Usage: "District name"},
					&cli.StringFlag{Name: "owner", Usage: "Owner name", Required: true},
					&cli.StringFlag{Name: "from", Usage: "Starting date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to", Usage: "Ending date (YYYY-MM-DD)"},
				},
				Action: func(c *cli.Context) error {
					a, err := buildApp()
					if err != nil {
						return err
					}

					form, err := a.usage.NewReportForm(c.Context)
					if err != nil {
						return err
					}
					if district := c.String("district"); district != "" {
						form.SetDistrict(district)
					}
					form.SetOwnerName(c.String("owner"))
					if from := c.String("from"); from != "" {
						form.SetStartDate(from)
					}
					if to := c.String("to"); to != "" {
						form.SetEndDate(to)
					}

					report, err := a.usage.TicketReport(c.Context, form)
					if err != nil {
						return err
					}
					printReport(report)
					return nil
				},
			},
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local read-only dashboard server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "Listen port", EnvVars: []string{"SERVER_PORT"}},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			if a.cfg.Server.Mode == "debug" {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			// Background refresh for the two dashboard resources. SIGHUP acts
			// as the focus trigger: re-fetch everything regardless of
			// staleness.
			a.refresher.Track(a.po.ListKey(1, 25), a.po.ListTTL(), a.po.FetchList(1, 25))
			a.refresher.Track(a.usage.SummaryKey(), a.usage.SummaryTTL(), a.usage.FetchSummary())

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()
			go a.refresher.Run(ctx)

			focus := make(chan os.Signal, 1)
			signal.Notify(focus, syscall.SIGHUP)
			go func() {
				for range focus {
					logger.Log.Info().Msg("refresh signal received")
					a.refresher.RefreshAll(ctx)
				}
			}()

			port := c.String("port")
			if port == "" {
				port = a.cfg.Server.Port
			}

			router := server.NewRouter(&server.Services{
				POService:    a.po,
				UsageService: a.usage,
				Refresher:    a.refresher,
			}, a.cfg.Server.AllowedOrigins)

			srv := &http.Server{
				Addr:    ":" + port,
				Handler: router,
			}

			go func() {
				logger.Log.Info().Str("port", port).Msg("Starting dashboard server")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Log.Fatal().Err(err).Msg("Failed to start server")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			logger.Log.Info().Msg("Shutting down server...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logger.Log.Info().Msg("Server exiting")
			return nil
		},
	}
}

func printPurchaseOrders(rows []viewmodel.PurchaseOrderRow) {
	if len(rows) == 0 {
		fmt.Println("No results found")
		return
	}
	fmt.Printf("%-16s %-10s %-20s %-12s %s\n", "PO NUMBER", "ROLLS", "DISTRICT", "RECEIVED", "NET ROLLS")
	for _, row := range rows {
		flag := ""
		if row.CountLow {
			flag = "  [Count Low]"
		}
		fmt.Printf("%-16s %-10d %-20s %-12s %d%s\n",
			row.PONo, row.PurchasedCount, row.DistrictName, row.ReceivedDate, row.Count, flag)
	}
}

func printUsage(view *service.UsageView) {
	fmt.Printf("Owners: %d  Needing rolls: %d  Not needing: %d\n\n",
		view.Totals.TotalOwners, view.Totals.OwnersNeedingRolls, view.Totals.OwnersNotNeedingRolls)

	if len(view.Owners) == 0 {
		fmt.Println("No results found")
		return
	}
	fmt.Printf("%-24s %-18s %-8s %-16s %-20s %s\n",
		"BUS OWNER", "DISTRICT", "BUSES", "ROLLS USED/NET", "TICKETS PRN/EXP", "USAGE")
	for _, row := range view.Owners {
		fmt.Printf("%-24s %-18s %-8d %-16s %-20s %.0f%% (%s)\n",
			row.OwnerName, row.DistrictName, row.TotalBuses,
			fmt.Sprintf("%d/%d", row.TotalRollsUsed, row.TotalNetRolls),
			fmt.Sprintf("%d/%d", row.TotalTicketsPrinted, row.TotalTicketsExpected),
			row.AvgUsagePercentage, row.UsageLevel)
	}
}

func printVehicles(vehicles []domain.VehicleUsage) {
	if len(vehicles) == 0 {
		fmt.Println("No vehicle data available")
		return
	}
	fmt.Printf("%-14s %-16s %-12s %-18s %s\n",
		"BUS NUMBER", "ROLLS USED/NET", "REMAINING", "TICKETS PRN/EXP", "USAGE")
	for _, v := range vehicles {
		fmt.Printf("%-14s %-16s %-12d %-18s %.0f%%\n",
			v.VehicleNumber,
			fmt.Sprintf("%d/%d", v.RollsUsed, v.NetRolls),
			v.RemainingRolls,
			fmt.Sprintf("%d/%d", v.TicketsPrinted, v.TicketsExpected),
			v.UsagePercentage)
	}
}

func printReport(report *domain.TicketCountReport) {
	fmt.Printf("%s (%s to %s): %d tickets across %d vehicles\n\n",
		report.OwnerName, report.DateRange.FromDate, report.DateRange.ToDate,
		report.TotalTickets, report.TotalVehicles)
	fmt.Printf("%-14s %s\n", "BUS NUMBER", "TICKETS PRINTED")
	for _, v := range report.VehicleBreakdown {
		fmt.Printf("%-14s %d\n", v.VehicleNumber, v.TicketCount)
	}
}
