package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/craftdeck/craftdeck/internal/fsmodel"
)

// Notification-channel endpoints. The job controllers subscribe to these
// before issuing the triggering request.

// UploadProgressURL is the notification channel for an upload job.
func (c *Client) UploadProgressURL(uploadID string) string {
	return c.fsURL("upload/progress/" + uploadID)
}

// ArchiveStatusURL is the notification channel for an archive-creation job.
func (c *Client) ArchiveStatusURL(trackerID string) string {
	return c.fsURL("archive/status/" + trackerID)
}

// ExtractStatusURL is the notification channel for an extraction job.
func (c *Client) ExtractStatusURL(trackerID string) string {
	return c.fsURL("extract/status/" + trackerID)
}

// UploadFromURLChannelURL is both the notification channel and the trigger
// for a server-side URL fetch: opening the stream starts the job.
func (c *Client) UploadFromURLChannelURL(sourceURL, filePath string) string {
	q := url.Values{
		"url":      {sourceURL},
		"filepath": {fsmodel.TrimLeadingSeparator(filePath)},
	}
	return c.fsURL("upload-url?" + q.Encode())
}

// TriggerUpload streams the file body to the server, tagged with the target
// path and the client-generated upload id. Must only be called after the
// matching notification channel is open. Goes through the non-retrying
// client: the body is consumed as it uploads and can not be replayed.
func (c *Client) TriggerUpload(ctx context.Context, dirPath, uploadID string, body io.Reader, size int64) error {
	q := url.Values{
		"path":      {dirPath},
		"upload_id": {uploadID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.fsURL("upload?"+q.Encode()), body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = size

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return c.apiError("upload", resp)
	}
	return nil
}

// ArchiveRequest describes an archive-creation job.
type ArchiveRequest struct {
	Entries   []string `json:"entries"`
	Cwd       string   `json:"cwd"`
	Filename  string   `json:"filename"`
	TrackerID string   `json:"tracker_id"`
}

// TriggerArchive starts an archive-creation job. Must only be called after
// the matching notification channel is open.
func (c *Client) TriggerArchive(ctx context.Context, req ArchiveRequest) error {
	return c.trigger(ctx, "archive", c.fsURL("archive"), req)
}

// TriggerExtract starts an extraction job. Must only be called after the
// matching notification channel is open.
func (c *Client) TriggerExtract(ctx context.Context, archivePath, directory, trackerID string) error {
	q := url.Values{
		"archive":   {archivePath},
		"directory": {directory},
		"tracker":   {trackerID},
	}
	return c.trigger(ctx, "extract", c.fsURL("extract?"+q.Encode()), nil)
}

// CancelUpload asks the server to cancel an upload job. Cancellation is
// confirmed through the notification channel, never by this call.
func (c *Client) CancelUpload(ctx context.Context, uploadID string) error {
	return c.trigger(ctx, "cancel upload", c.fsURL("upload/cancel/"+uploadID), nil)
}

// CancelArchive asks the server to cancel an archive-creation job.
func (c *Client) CancelArchive(ctx context.Context, trackerID string) error {
	return c.trigger(ctx, "cancel archive", c.fsURL("archive/cancel/"+trackerID), nil)
}

// CancelExtract asks the server to cancel an extraction job.
func (c *Client) CancelExtract(ctx context.Context, trackerID string) error {
	return c.trigger(ctx, "cancel extract", c.fsURL("extract/cancel/"+trackerID), nil)
}

// trigger posts a one-shot job request through the non-retrying client.
func (c *Client) trigger(ctx context.Context, op, rawURL string, body interface{}) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := jsonMarshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reqBody = data
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted &&
		resp.StatusCode != http.StatusNoContent {
		return c.apiError(op, resp)
	}
	return nil
}
