package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

const defaultFetchDelay = 200 * time.Millisecond

// Fetcher downloads model artifacts over HTTP, retrying transient failures.
type Fetcher struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
	delay            time.Duration
}

func NewFetcher(retryAttempts uint) *Fetcher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Accept", "application/json, application/yaml")

	return &Fetcher{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
		delay:            defaultFetchDelay,
	}
}

func (f *Fetcher) Close() error {
	return f.httpClient.Close()
}

type responseError struct {
	statusCode int
	body       string
}

func (e *responseError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.statusCode, e.body)
}

// isRetryableError reports whether a fetch failure may succeed on another attempt:
// transport errors, 5xx responses and rate limiting.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var respErr *responseError
	if errors.As(err, &respErr) {
		return respErr.statusCode >= http.StatusInternalServerError || respErr.statusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, ErrIncompatibleArtifact) && !errors.Is(err, ErrUnsupportedVersion)
}

// Fetch downloads the artifact at rawURL and builds its classifier.
// The format is taken from the URL path extension.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Classifier, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse model url: %w", err)
	}
	format := FormatOf(parsed.Path)

	var model Classifier
	if err := retry.Do(
		func() error {
			m, err := f.fetch(ctx, rawURL, format)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			model = m
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.maxRetryAttempts+1),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Warn("Retrying model artifact download",
				"attempt", n+1,
				"url", rawURL,
				"error", err)
		}),
	); err != nil {
		return nil, fmt.Errorf("fetch model artifact %s: %w", rawURL, err)
	}
	return model, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, format Format) (Classifier, error) {
	response, err := f.httpClient.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return nil, &responseError{statusCode: response.StatusCode(), body: response.String()}
	}

	artifact, err := Decode([]byte(response.String()), format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompatibleArtifact, err)
	}
	return artifact.Build()
}
