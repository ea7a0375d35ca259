package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/decorly/decorly-backend/internal/core"
)

// runPodClient implements core.Generator against a RunPod serverless
// endpoint. The call is synchronous (/runsync) and carries no retry or
// timeout of its own; a generation failure surfaces directly to the caller.
type runPodClient struct {
	endpointURL string
	apiKey      string
	httpClient  *http.Client
}

// NewRunPodClient creates a generator client for the given endpoint.
func NewRunPodClient(endpointURL, apiKey string) core.Generator {
	return &runPodClient{
		endpointURL: strings.TrimRight(endpointURL, "/"),
		apiKey:      apiKey,
		httpClient:  &http.Client{},
	}
}

type runPodRequest struct {
	Input runPodInput `json:"input"`
}

type runPodInput struct {
	Image        string `json:"image"`
	RoomType     string `json:"room_type"`
	DesignStyle  string `json:"design_style"`
	ColorTone    string `json:"color_tone"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
}

type runPodResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Output struct {
		GeneratedImage string `json:"generated_image"`
	} `json:"output"`
}

// Generate submits the source image and style parameters and returns the
// generated image as base64.
func (c *runPodClient) Generate(ctx context.Context, input core.GenerationInput) (string, error) {
	body, err := json.Marshal(runPodRequest{Input: runPodInput{
		Image:        input.Image,
		RoomType:     input.RoomType,
		DesignStyle:  input.DesignStyle,
		ColorTone:    input.ColorTone,
		CustomPrompt: input.CustomPrompt,
	}})
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL+"/runsync", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded runPodResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if decoded.Status != "COMPLETED" {
		if decoded.Error != "" {
			return "", fmt.Errorf("generation job %s ended with status %s: %s", decoded.ID, decoded.Status, decoded.Error)
		}
		return "", fmt.Errorf("generation job %s ended with status %s", decoded.ID, decoded.Status)
	}
	if decoded.Output.GeneratedImage == "" {
		return "", fmt.Errorf("generation job %s completed without an output image", decoded.ID)
	}

	return decoded.Output.GeneratedImage, nil
}
