package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/logging"
)

// logName is the Cloud Logging log all diagnostic entries go to.
const logName = "issuegraph"

// CloudLogger forwards diagnostics to GCP Cloud Logging. It is an optional
// sink: commands run fine without one, and a nil *CloudLogger is safe to
// call, so callers never need to branch on availability.
type CloudLogger struct {
	client *logging.Client
	logger *logging.Logger
}

// NewCloudLogger connects to Cloud Logging for the given project. Every
// entry carries the run ID and repository as labels so one run's diagnostics
// can be filtered together.
func NewCloudLogger(ctx context.Context, projectID, runID, repository string) (*CloudLogger, error) {
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("cannot create cloud logging client: %w", err)
	}

	logger := client.Logger(logName, logging.CommonLabels(map[string]string{
		"component":  "issuegraph",
		"run_id":     runID,
		"repository": repository,
	}))

	return &CloudLogger{client: client, logger: logger}, nil
}

func (cl *CloudLogger) log(severity logging.Severity, message string) {
	if cl == nil {
		return
	}
	cl.logger.Log(logging.Entry{Severity: severity, Payload: message})
}

// Info records an informational entry.
func (cl *CloudLogger) Info(message string) {
	cl.log(logging.Info, message)
}

// Warning records a warning entry.
func (cl *CloudLogger) Warning(message string) {
	cl.log(logging.Warning, message)
}

// Error records an error entry.
func (cl *CloudLogger) Error(message string) {
	cl.log(logging.Error, message)
}

// Close flushes buffered entries and releases the client.
func (cl *CloudLogger) Close() error {
	if cl == nil || cl.client == nil {
		return nil
	}
	return cl.client.Close()
}
