package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hauntops-backend/etl/fieldmap"
	"hauntops-backend/lib/configutil"
	configlibsql "hauntops-backend/lib/configutil/libsql"
	"hauntops-backend/lib/scrapers/ivolunteer"
	"hauntops-backend/lib/scrapers/passage"
	"hauntops-backend/lib/serviceutil"
	"hauntops-backend/services/hauntops"
	"hauntops-backend/services/webapi"

	"github.com/joho/godotenv"
)

type Config struct {
	Database         configlibsql.Struct `json:"database"`
	Port             int                 `json:"port"`
	AllowedOrigins   []string            `json:"allowed_origins"`
	TicketingBaseUrl string              `json:"ticketing_base_url"`
	VolunteerBaseUrl string              `json:"volunteer_base_url"`
	// cron expressions in the haunt's local zone, empty disables the
	// scheduled job
	TicketSalesCron  string              `json:"ticket_sales_cron"`
	FetchUsersCron   string              `json:"fetch_users_cron"`
	MaxPages         int                 `json:"max_pages"`
	MappingFile      string              `json:"mapping_file"`
	Smtp             hauntops.SmtpConfig `json:"smtp"`
	ReportRecipients []string            `json:"report_recipients"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	godotenv.Load()
	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 20
	}
	if cfg.MappingFile == "" {
		cfg.MappingFile = "etl.json5"
	}

	mapping, err := fieldmap.Load(cfg.MappingFile)
	if err != nil {
		serviceutil.Fatal("read field mapping", err)
	}

	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("open database", err)
	}
	svc := hauntops.NewService(database)
	if err := svc.Init(ctx); err != nil {
		serviceutil.Fatal("apply schema", err)
	}

	newPortalClient := func(ctx context.Context) (*passage.Client, error) {
		client, err := passage.NewClient(ctx, passage.ClientOptions{BaseUrl: cfg.TicketingBaseUrl})
		if err != nil {
			return nil, err
		}
		email := os.Getenv("GOPASSAGE_EMAIL")
		password := os.Getenv("GOPASSAGE_PASSWORD")
		if email == "" || password == "" {
			return nil, fmt.Errorf("GOPASSAGE_EMAIL and GOPASSAGE_PASSWORD must be set")
		}
		if err := client.Login(ctx, email, password); err != nil {
			return nil, err
		}
		return client, nil
	}
	if cfg.TicketingBaseUrl == "" {
		newPortalClient = nil
	}

	newVolunteerClient := func(ctx context.Context) (*ivolunteer.Client, error) {
		apiKey := os.Getenv("IVOLUNTEER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("IVOLUNTEER_API_KEY must be set")
		}
		return ivolunteer.NewClient(ivolunteer.ClientOptions{
			BaseUrl: cfg.VolunteerBaseUrl,
			ApiKey:  apiKey,
		}), nil
	}
	if cfg.VolunteerBaseUrl == "" {
		newVolunteerClient = nil
	}

	ticketSalesCron := cfg.TicketSalesCron
	if newPortalClient == nil {
		ticketSalesCron = ""
	}
	fetchUsersCron := cfg.FetchUsersCron
	if newVolunteerClient == nil {
		fetchUsersCron = ""
	}
	if ticketSalesCron != "" || fetchUsersCron != "" {
		daemons := hauntops.NewDaemons(svc, hauntops.DaemonOptions{
			TicketSalesSpec:    ticketSalesCron,
			MaxPages:           cfg.MaxPages,
			FetchUsersSpec:     fetchUsersCron,
			Mapping:            mapping,
			Notifier:           hauntops.NewNotifier(hauntops.NotifyOptions{Smtp: cfg.Smtp, Recipients: cfg.ReportRecipients}),
			NewPortalClient:    newPortalClient,
			NewVolunteerClient: newVolunteerClient,
		})
		stop, err := daemons.Start(ctx)
		if err != nil {
			serviceutil.Fatal("start daemons", err)
		}
		defer stop()
	}

	server := webapi.NewServer(database, svc, webapi.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		NewPortalClient:    newPortalClient,
		MaxPages:           cfg.MaxPages,
		NewVolunteerClient: newVolunteerClient,
		Mapping:            mapping,
	})
	serviceutil.StartHttpServer(ctx, cfg.Port, server.Router())
}
