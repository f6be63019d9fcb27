package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/admincontent"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/admingallery"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/configuration"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/covercache"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/gallery"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/home"
	"github.com/brightsteps/brightstepsngo/cmd/website/internal/pages"
	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider/flickr"
	"github.com/brightsteps/brightstepsngo/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "brightstepsngo"

	//go:embed app
	appFS embed.FS

	//go:embed sql-migrations
	sqlMigrationsFs embed.FS

	config configuration.Config

	/* Services */
	albumService       services.AlbumServicer
	coverCacheService  covercache.CoverCacher
	db                 *sqlz.DB
	empowermentService services.EmpowermentServicer
	moderationService  services.ModerationServicer
	renderer           rendering.TemplateRenderer
	settingsService    services.SettingsServicer
	syncLogService     services.SyncLogServicer
	syncService        services.SyncServicer
	teamService        services.TeamServicer

	/* Controllers */
	adminContentController admincontent.AdminContentHandlers
	adminGalleryController admingallery.AdminGalleryHandlers
	galleryController      gallery.GalleryHandlers
	homeController         home.HomeHandlers
	pagesController        pages.PagesHandlers
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	migrateDatabase()

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	flickrClient := flickr.NewClient(flickr.ClientConfig{
		APIKey: config.FlickrApiKey,
	})

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		DB: db,
	})

	syncLogService = services.NewSyncLogService(services.SyncLogServiceConfig{
		DB: db,
	})

	moderationService = services.NewModerationService(services.ModerationServiceConfig{
		AlbumService: albumService,
	})

	syncService = services.NewSyncService(services.SyncServiceConfig{
		AlbumService:   albumService,
		SyncLogService: syncLogService,
		Provider:       flickrClient,
		OwnerIDs:       splitOwnerIDs(config.FlickrOwnerIds),
		OnSyncFailed:   notifySyncFailure,
	})

	settingsService = services.NewSettingsService(services.SettingsServiceConfig{
		DB: db,
	})

	empowermentService = services.NewEmpowermentService(services.EmpowermentServiceConfig{
		DB: db,
	})

	teamService = services.NewTeamService(services.TeamServiceConfig{
		DB: db,
	})

	coverCacheService = covercache.NewCoverCacheService(covercache.CoverCacheConfig{
		AlbumService:     albumService,
		AwsBucket:        config.AwsBucket,
		AwsRegion:        config.AwsRegion,
		CoverCacheFolder: config.CoverCacheFolder,
		MaxCacheWorkers:  config.MaxCoverCacheWorkers,
		S3Client:         s3Client,
		ShutdownCtx:      shutdownCtx,
	})

	/*
	 * Setup controllers
	 */
	homeController = home.NewHomeController(home.HomeControllerConfig{
		AlbumService:       albumService,
		EmpowermentService: empowermentService,
		Renderer:           renderer,
		SettingsService:    settingsService,
	})

	galleryController = gallery.NewGalleryController(gallery.GalleryControllerConfig{
		AlbumService: albumService,
		PageSize:     config.GalleryPageSize,
		Provider:     flickrClient,
		Renderer:     renderer,
	})

	pagesController = pages.NewPagesController(pages.PagesControllerConfig{
		AlbumService:       albumService,
		EmpowermentService: empowermentService,
		Renderer:           renderer,
		SettingsService:    settingsService,
		TeamService:        teamService,
	})

	adminGalleryController = admingallery.NewAdminGalleryController(admingallery.AdminGalleryControllerConfig{
		AlbumService:      albumService,
		ModerationService: moderationService,
		PageSize:          config.GalleryPageSize,
		Provider:          flickrClient,
		Renderer:          renderer,
		SyncLogService:    syncLogService,
		SyncService:       syncService,
	})

	adminContentController = admincontent.NewAdminContentController(admincontent.AdminContentControllerConfig{
		EmpowermentService: empowermentService,
		PageSize:           config.GalleryPageSize,
		Renderer:           renderer,
		SettingsService:    settingsService,
		TeamService:        teamService,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	adminAuditMiddleware := newAdminAuditMiddleware(
		[]string{
			"/static",
		},
	)

	admin := []mux.MiddlewareFunc{adminAuditMiddleware}

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: homeController.HomePage},
		{Path: "GET /about", HandlerFunc: pagesController.AboutPage},
		{Path: "GET /impact", HandlerFunc: pagesController.ImpactPage},
		{Path: "GET /get-involved", HandlerFunc: pagesController.GetInvolvedPage},
		{Path: "GET /gallery", HandlerFunc: galleryController.GalleryPage},
		{Path: "GET /gallery/{id}", HandlerFunc: galleryController.ViewAlbumPage},

		{Path: "GET /admin/gallery", HandlerFunc: adminGalleryController.GalleryPage, Middlewares: admin},
		{Path: "POST /admin/gallery/sync", HandlerFunc: adminGalleryController.SyncAction, Middlewares: admin},
		{Path: "GET /admin/gallery/sync-history", HandlerFunc: adminGalleryController.SyncHistoryPage, Middlewares: admin},
		{Path: "GET /admin/gallery/add", HandlerFunc: adminGalleryController.AddAlbumPage, Middlewares: admin},
		{Path: "POST /admin/gallery/add", HandlerFunc: adminGalleryController.AddAlbumAction, Middlewares: admin},
		{Path: "POST /admin/gallery/{id}/approve", HandlerFunc: adminGalleryController.ApproveAction, Middlewares: admin},
		{Path: "POST /admin/gallery/{id}/reject", HandlerFunc: adminGalleryController.RejectAction, Middlewares: admin},
		{Path: "POST /admin/gallery/{id}/hide", HandlerFunc: adminGalleryController.HideAction, Middlewares: admin},
		{Path: "GET /admin/gallery/{id}/edit", HandlerFunc: adminGalleryController.EditAlbumPage, Middlewares: admin},
		{Path: "POST /admin/gallery/{id}/edit", HandlerFunc: adminGalleryController.UpdateOverridesAction, Middlewares: admin},
		{Path: "GET /admin/gallery/{id}/cover-picker", HandlerFunc: adminGalleryController.CoverPickerPage, Middlewares: admin},

		{Path: "GET /admin/settings", HandlerFunc: adminContentController.SettingsPage, Middlewares: admin},
		{Path: "POST /admin/settings", HandlerFunc: adminContentController.SaveSettingsAction, Middlewares: admin},
		{Path: "GET /admin/empowerments", HandlerFunc: adminContentController.EmpowermentListPage, Middlewares: admin},
		{Path: "GET /admin/empowerments/{id}/edit", HandlerFunc: adminContentController.EmpowermentEditPage, Middlewares: admin},
		{Path: "POST /admin/empowerments/{id}/edit", HandlerFunc: adminContentController.SaveEmpowermentAction, Middlewares: admin},
		{Path: "POST /admin/empowerments/{id}/delete", HandlerFunc: adminContentController.DeleteEmpowermentAction, Middlewares: admin},
		{Path: "GET /admin/team", HandlerFunc: adminContentController.TeamPage, Middlewares: admin},
		{Path: "POST /admin/team/categories", HandlerFunc: adminContentController.SaveCategoryAction, Middlewares: admin},
		{Path: "POST /admin/team/categories/{id}/delete", HandlerFunc: adminContentController.DeleteCategoryAction, Middlewares: admin},
		{Path: "GET /admin/team/members/{id}/edit", HandlerFunc: adminContentController.MemberEditPage, Middlewares: admin},
		{Path: "POST /admin/team/members/{id}/edit", HandlerFunc: adminContentController.SaveMemberAction, Middlewares: admin},
		{Path: "POST /admin/team/members/{id}/delete", HandlerFunc: adminContentController.DeleteMemberAction, Middlewares: admin},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Sweep any sync log entries left running by a previous crash, then
	 * start the sync scheduler and the cover cache job.
	 */
	sweepStaleSyncRuns()
	setupSyncScheduler(quit)
	setupCoverCache(quit)

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func splitOwnerIDs(raw string) []string {
	var (
		result []string
	)

	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result = append(result, id)
		}
	}

	return result
}

func notifySyncFailure(entry *models.SyncLog) {
	if config.AdminEmail == "" || config.EmailApiKey == "" {
		return
	}

	err := services.SendSyncFailureEmail(
		config.EmailApiKey,
		config.AdminEmail,
		"noreply@brightstepsngo.org",
		entry,
	)

	if err != nil {
		slog.Error("error sending sync failure notification", "error", err)
	}
}

func migrateDatabase() {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		panic(err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				panic(err)
			}

			if err = runSqlScript(b); err != nil {
				if !isIgnorableError(err) {
					panic(err)
				}
			}
		}
	}
}

func runSqlScript(script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	return false
}

func sweepStaleSyncRuns() {
	staleAfter := time.Duration(config.StaleSyncMinutes) * time.Minute

	swept, err := syncLogService.FailStaleRuns(staleAfter)

	if err != nil {
		slog.Error("error sweeping stale sync runs", "error", err)
		return
	}

	if swept > 0 {
		slog.Warn("swept stale sync runs to failed", "count", swept)
	}
}

func setupSyncScheduler(quit chan os.Signal) {
	if config.SyncIntervalMinutes <= 0 {
		slog.Info("scheduled sync disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(time.Duration(config.SyncIntervalMinutes) * time.Minute)

		for {
			select {
			case <-quit:
				return

			case <-ticker.C:
				sweepStaleSyncRuns()

				if err := syncService.TriggerAsync("scheduler"); err != nil {
					slog.Info("skipping scheduled sync", "reason", err)
				}
			}
		}
	}()
}

func setupCoverCache(quit chan os.Signal) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		running := true

		runner := func() {
			defer func() {
				running = false
			}()

			coverCacheService.CreateCache()
			slog.Info("cover cache refresh finished.")
		}

		runner()

		for {
			select {
			case <-quit:
				return

			case <-ticker.C:
				if running {
					slog.Info("cover cache refresh already running. skipping...")
					continue
				}

				runner()
			}
		}
	}()
}
