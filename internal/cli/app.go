package cli

import (
	"context"
	"fmt"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/config"
	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/http"
	"github.com/fsnav/fsnav/internal/logging"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/progress"
	"github.com/fsnav/fsnav/internal/services"
	"github.com/fsnav/fsnav/internal/state"
)

// app bundles what every command needs after configuration is resolved.
type app struct {
	cfg         *config.Config
	client      *api.Client
	bus         *events.EventBus
	files       *services.FileService
	transitions *services.TransitionService
	tasks       *services.TaskService
	logger      *logging.Logger
}

// loadConfig reads the config file and applies flags and the token
// resolution chain.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.MergeFlags(serverURL, "", pagination, pageSize)

	tokenPath := tokenFile
	if tokenPath == "" {
		tokenPath = config.DefaultTokenPath()
	}
	token, source := config.ResolveToken(tokenFlag, cfg, tokenPath)
	cfg.Token = token
	if source != "" {
		GetLogger().Debug().Str("source", source).Msg("Using access token")
	} else {
		GetLogger().Debug().Msg("No access token, browsing as guest")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp loads configuration and creates the API client and services.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		logger = logging.NewLogger(logging.WithFile(cfg.LogFile))
	}
	if !verbose && !debug {
		logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	}
	log := GetLogger()

	if http.NeedsProxyPassword(cfg) {
		pw, err := promptPassword(fmt.Sprintf("Proxy password for %s: ", cfg.ProxyUser))
		if err != nil {
			return nil, err
		}
		cfg.ProxyPassword = pw
	}

	client, err := api.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	return &app{
		cfg:         cfg,
		client:      client,
		bus:         bus,
		files:       services.NewFileService(client, log),
		transitions: services.NewTransitionService(client, bus, log),
		tasks:       services.NewTaskService(client, log),
		logger:      log,
	}, nil
}

// close releases the event bus.
func (a *app) close() {
	a.bus.Close()
}

// newNavigator loads the current user and site settings and returns a
// navigator over them.
func (a *app) newNavigator(ctx context.Context) (*navigator.Navigator, error) {
	if _, err := a.files.LoadUser(ctx); err != nil {
		return nil, err
	}

	settings, err := a.files.Settings(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Using default pagination settings")
		settings = nil
	}
	pcfg := navigator.PaginationFromSettings(settings, a.cfg.Pagination, a.cfg.PageSize)

	return navigator.New(navigator.Options{
		Backend:     a.files,
		Permissions: a.files,
		Session:     navigator.NewSession(a.cfg.HistorySize),
		Listing:     state.NewListing(a.bus),
		EventBus:    a.bus,
		Logger:      a.logger,
		Pagination:  pcfg,
	}), nil
}

// watchProgress shows a spinner while the navigator fetches. The returned
// function stops it.
func (a *app) watchProgress(ctx context.Context) func() {
	var r progress.Reporter = progress.NoOpProgress{}
	if !quiet {
		r = progress.ForTerminal()
	}
	ctx, cancel := context.WithCancel(ctx)
	done := progress.Watch(ctx, a.bus, r)
	return func() {
		cancel()
		<-done
		r.Stop()
	}
}
