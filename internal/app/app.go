package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mailsift/internal/config"
	"mailsift/internal/services"
	"mailsift/internal/store"
	"mailsift/internal/store/primary"
	"mailsift/pkg/classifier"
)

// App holds every initialized dependency. Commands pull it out of the
// cobra context after PersistentPreRunE has run.
type App struct {
	Config *config.Config

	Store     *primary.StoreImpl
	JobClient store.JobClient

	FolderStore store.FolderStore
	MailStore   store.MailStore
	SyncStore   store.SyncStore

	Classifier *classifier.Classifier

	ClassificationService *services.ClassificationService
	SyncService           *services.SyncService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	app.initJobClient()
	app.initClassifier()
	app.initServices()

	log.Debug("Application initialization complete")
	return app, nil
}

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.Primary.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	if err := ps.EnsureSchema(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}
	a.Store = ps
	a.FolderStore = ps
	a.MailStore = ps
	a.SyncStore = ps
	return nil
}

func (a *App) initJobClient() {
	// Client construction does not dial Redis; connectivity problems show
	// up on the first enqueue.
	a.JobClient = store.NewAsynqJobClient(a.Config.Redis.Address, a.Config.Redis.Password, a.Config.Redis.DB)
}

func (a *App) initClassifier() {
	cl, err := classifier.New(classifier.Config{
		GoogleAPIKey: a.Config.Classifier.GoogleApiKey,
		OpenAIAPIKey: a.Config.Classifier.OpenaiApiKey,
		GeminiModel:  a.Config.Classifier.GeminiModel,
		OpenAIModel:  a.Config.Classifier.OpenaiModel,
	})
	if err != nil {
		// Commands that never classify (mails list, sync status) still work
		// without any provider key, so this is not fatal.
		log.Warnf("No classification provider available: %v", err)
	}
	a.Classifier = cl
}

func (a *App) initServices() {
	a.ClassificationService = services.NewClassificationService(a.Classifier, a.MailStore, a.FolderStore)
	a.SyncService = services.NewSyncService(a.SyncStore, a.MailStore, a.JobClient)
}

// Close releases pooled connections. Safe to call on a partially
// initialized App.
func (a *App) Close() {
	if a.JobClient != nil {
		a.JobClient.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}
