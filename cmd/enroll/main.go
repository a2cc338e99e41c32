package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/goliatone/go-enroll/internal/config"
	"github.com/goliatone/go-enroll/internal/logging"
	"github.com/goliatone/go-enroll/pkg/client"
	"github.com/goliatone/go-enroll/pkg/departments"
	"github.com/goliatone/go-enroll/pkg/endpoint"
	"github.com/goliatone/go-enroll/pkg/enroll"
	"github.com/goliatone/go-enroll/pkg/student"
	"github.com/goliatone/go-enroll/pkg/terminal"
)

func main() {
	configPath := flag.String("config", "enroll.yaml", "configuration file (YAML)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		if errors.Is(err, terminal.ErrAborted) {
			return
		}
		fmt.Fprintf(os.Stderr, "enroll: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logOut, closeLog, err := logOutput(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: logOut,
	})

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	httpClient := &http.Client{Timeout: timeout}
	driver := terminal.NewSurveyDriver()

	token := cfg.Service.Token
	if strings.TrimSpace(token) == "" {
		token, err = driver.Password(ctx, terminal.InputConfig{
			Message: "Admin token",
			Help:    "Bearer token of the signed-in administrator; leave empty for none.",
		})
		if err != nil {
			return err
		}
	}
	auth := make(http.Header)
	if t := strings.TrimSpace(token); t != "" {
		auth.Set("Authorization", "Bearer "+t)
	}

	ep, err := resolveEndpoint(ctx, cfg, httpClient)
	if err != nil {
		return err
	}
	logger.Info().Str("endpoint", ep.String()).Str("base_url", cfg.Service.BaseURL).Msg("create student endpoint")

	names, err := loadDepartments(ctx, cfg, httpClient, auth)
	if err != nil {
		return err
	}
	logger.Debug().Int("departments", len(names)).Msg("departments loaded")

	creator, err := client.New(cfg.Service.BaseURL,
		client.WithHTTPClient(httpClient),
		client.WithEndpoint(ep),
		client.WithBearerToken(token),
		client.WithResultsPath(cfg.Service.ResultsPath),
		client.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	workflow, err := enroll.New(creator,
		enroll.WithValidator(student.NewValidator(names)),
		enroll.WithPresenter(terminal.NewPresenter(driver, terminal.DefaultTheme)),
		enroll.WithEmailReset(cfg.EmailReset()),
		enroll.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	session, err := terminal.New(workflow, names,
		terminal.WithPromptDriver(driver),
		terminal.WithAvatarLimit(cfg.Form.AvatarMaxBytes),
		terminal.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

// resolveEndpoint prefers the operation declared in the OpenAPI document and
// falls back to the configured method and path.
func resolveEndpoint(ctx context.Context, cfg *config.Config, httpClient *http.Client) (endpoint.Endpoint, error) {
	fallback := endpoint.Endpoint{
		Method: strings.ToUpper(strings.TrimSpace(cfg.Service.Method)),
		Path:   strings.TrimSpace(cfg.Service.CreatePath),
	}
	if fallback.Method == "" {
		fallback.Method = http.MethodPost
	}
	if strings.TrimSpace(cfg.Service.OpenAPI) == "" {
		return fallback, nil
	}

	doc, err := endpoint.Load(ctx, cfg.Service.OpenAPI, httpClient)
	if err != nil {
		return endpoint.Endpoint{}, err
	}
	ep, err := endpoint.Resolve(ctx, doc, cfg.Service.OperationID)
	if err != nil {
		if errors.Is(err, endpoint.ErrOperationNotFound) && fallback.Path != "" {
			return fallback, nil
		}
		return endpoint.Endpoint{}, err
	}
	return ep, nil
}

func loadDepartments(ctx context.Context, cfg *config.Config, httpClient *http.Client, header http.Header) ([]string, error) {
	var src departments.Source = departments.Static(cfg.Departments.Names)
	if url := strings.TrimSpace(cfg.Departments.URL); url != "" {
		src = departments.HTTP{
			URL:         url,
			ResultsPath: cfg.Departments.ResultsPath,
			NameField:   cfg.Departments.NameField,
			Header:      header,
			Client:      httpClient,
		}
	}
	return src.Departments(ctx)
}

func logOutput(path string) (io.Writer, func(), error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
