package replicateimpl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/upscale"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

const (
	predictionsURL = "https://api.replicate.com/v1/predictions"
	// Real-ESRGAN general-purpose photo upscaler.
	modelVersion = "f121d640bd286e1fdc67f9799164c1d5be36ff74576ee11c803ae5b665dd46aa"
)

// Replicate runs images through the Real-ESRGAN model hosted on Replicate.
// Predictions are asynchronous: submit, poll with a bounded attempt count,
// then download the output.
type Replicate struct {
	token        string
	scale        int
	pollInterval time.Duration
	pollAttempts int
	client       *http.Client
	logger       logger.Logger
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) *Replicate {
	return &Replicate{
		token:        opts.Config.Upscale.ReplicateToken,
		scale:        opts.Config.Upscale.Scale,
		pollInterval: opts.Config.Upscale.PollInterval,
		pollAttempts: opts.Config.Upscale.PollAttempts,
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       opts.Logger.WithComponent("ReplicateUpscaler"),
	}
}

var _ upscale.Upscaler = (*Replicate)(nil)

func (r *Replicate) Available() bool { return r.token != "" }

func (r *Replicate) Upscale(ctx context.Context, localPath string) (string, error) {
	if !r.Available() {
		return "", fmt.Errorf("replicate token not configured")
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	predictionID, err := r.submit(ctx, data)
	if err != nil {
		return "", err
	}

	outputURL, err := r.waitForOutput(ctx, predictionID)
	if err != nil {
		return "", err
	}

	outPath := upscaledPath(localPath)
	if err := r.download(ctx, outputURL, outPath); err != nil {
		return "", err
	}

	r.logger.Info("Upscaled image", "source", localPath, "output", outPath)
	return outPath, nil
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

func (r *Replicate) submit(ctx context.Context, image []byte) (string, error) {
	payload := map[string]any{
		"version": modelVersion,
		"input": map[string]any{
			"image": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
			"scale": r.scale,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, predictionsURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("prediction request returned status %d", resp.StatusCode)
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return "", fmt.Errorf("failed to decode prediction: %w", err)
	}
	if pred.ID == "" {
		return "", fmt.Errorf("prediction response had no id")
	}
	return pred.ID, nil
}

func (r *Replicate) waitForOutput(ctx context.Context, id string) (string, error) {
	for attempt := 0; attempt < r.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.pollInterval):
		}

		pred, err := r.poll(ctx, id)
		if err != nil {
			return "", err
		}

		switch pred.Status {
		case "succeeded":
			return outputURL(pred.Output)
		case "failed", "canceled":
			return "", fmt.Errorf("prediction %s: %s", pred.Status, pred.Error)
		}
	}
	return "", fmt.Errorf("prediction %s did not finish after %d polls", id, r.pollAttempts)
}

func (r *Replicate) poll(ctx context.Context, id string) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, predictionsURL+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poll request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll returned status %d", resp.StatusCode)
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return &pred, nil
}

func (r *Replicate) download(ctx context.Context, url, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build output request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("output download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("output download returned status %d", resp.StatusCode)
	}

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}

// outputURL accepts both output shapes the model has shipped: a bare URL
// string and a list of URLs.
func outputURL(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	return "", fmt.Errorf("prediction output had no URL")
}

func upscaledPath(localPath string) string {
	ext := filepath.Ext(localPath)
	return strings.TrimSuffix(localPath, ext) + "_upscaled" + ext
}
