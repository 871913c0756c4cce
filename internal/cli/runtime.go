package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"issuegraph/internal/cloud/gcp"
	"issuegraph/internal/config"
	"issuegraph/internal/github"
	"issuegraph/internal/security"
)

// runtime bundles what every command needs: the resolved repository, an
// authenticated tracker client, a per-run ID, and the local plus optional
// cloud loggers. Nothing in here outlives one command invocation.
type runtime struct {
	cfg         *config.Config
	repo        github.Repo
	client      *github.Client
	runID       string
	logger      *log.Logger
	cloudLogger *gcp.CloudLogger
}

// newRuntime loads the config, resolves authentication, and builds the
// tracker client. App-auth or cloud-logging failures degrade to warnings:
// the tool still works with gh's ambient login and local logs.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	owner, name, err := config.SplitRepository(cfg.Project.Repository)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		repo:   github.Repo{Owner: owner, Name: name},
		runID:  fmt.Sprintf("issuegraph-%s", uuid.New().String()[:8]),
		logger: log.New(os.Stderr, "[issuegraph] ", log.LstdFlags),
	}

	clientOpts := []github.ClientOption{
		github.WithGHPath(cfg.GitHub.GHPath),
		github.WithLogger(rt.logger),
	}

	if cfg.AppAuthConfigured() {
		token, err := rt.appToken(ctx)
		if err != nil {
			rt.logWarning("GitHub App auth unavailable, falling back to ambient gh login: %v", err)
		} else {
			clientOpts = append(clientOpts, github.WithToken(token))
		}
	}

	rt.client = github.NewClient(clientOpts...)

	if cfg.Logging.CloudProject != "" {
		cloudLogger, err := gcp.NewCloudLogger(ctx, cfg.Logging.CloudProject, rt.runID, rt.repo.String())
		if err != nil {
			rt.logWarning("Cloud Logging unavailable, using local logs only: %v", err)
		} else {
			rt.cloudLogger = cloudLogger
		}
	}

	return rt, nil
}

// appToken fetches the App private key from Secret Manager and mints an
// installation token.
func (rt *runtime) appToken(ctx context.Context) (string, error) {
	secrets, err := gcp.NewSecretManagerClient(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = secrets.Close() }()

	keyPEM, err := secrets.FetchSecret(ctx, rt.cfg.GitHub.PrivateKeySecret)
	if err != nil {
		return "", err
	}

	source, err := github.NewTokenSource(github.AppCredentials{
		AppID:          rt.cfg.GitHub.AppID,
		InstallationID: rt.cfg.GitHub.InstallationID,
		PrivateKeyPEM:  []byte(keyPEM),
	})
	if err != nil {
		return "", err
	}
	return source.Token(ctx)
}

// close flushes the cloud logger if one was attached.
func (rt *runtime) close() {
	if err := rt.cloudLogger.Close(); err != nil {
		rt.logger.Printf("Warning: failed to flush cloud logs: %v", err)
	}
}

// logInfo logs at INFO level to both local logger and cloud logger.
// Messages can embed raw gh output or HTTP error bodies, so they are
// redacted before hitting either sink.
func (rt *runtime) logInfo(format string, args ...interface{}) {
	msg := security.Redact(fmt.Sprintf(format, args...))
	rt.logger.Printf("%s", msg)
	rt.cloudLogger.Info(msg)
}

// logWarning logs at WARNING level to both local logger and cloud logger.
func (rt *runtime) logWarning(format string, args ...interface{}) {
	msg := security.Redact(fmt.Sprintf(format, args...))
	rt.logger.Printf("Warning: %s", msg)
	rt.cloudLogger.Warning(msg)
}

// logError logs at ERROR level to both local logger and cloud logger.
func (rt *runtime) logError(format string, args ...interface{}) {
	msg := security.Redact(fmt.Sprintf(format, args...))
	rt.logger.Printf("Error: %s", msg)
	rt.cloudLogger.Error(msg)
}
