package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/craftdeck/craftdeck/internal/fsmodel"
)

// List fetches the contents of a directory. Every call issues one fetch and
// yields a fresh Listing; on a non-success status the server's error body is
// surfaced when non-empty.
func (c *Client) List(ctx context.Context, path string) (fsmodel.Listing, error) {
	q := url.Values{"path": {path}}
	resp, err := c.do(ctx, http.MethodGet, c.fsURL("files?"+q.Encode()), nil)
	if err != nil {
		return fsmodel.Listing{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := c.apiError("list directory", resp)
		c.log.Error().Err(err).Str("path", path).Msg("directory listing failed")
		return fsmodel.Listing{}, err
	}

	var wire fsmodel.WireListing
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return fsmodel.Listing{}, fmt.Errorf("decode listing: %w", err)
	}
	return fsmodel.ListingFromWire(wire), nil
}

// Copy copies entries into the destination directory.
func (c *Client) Copy(ctx context.Context, entries []string, destPath string) error {
	return c.entriesOp(ctx, "copy", entries, destPath)
}

// Move moves entries into the destination directory.
func (c *Client) Move(ctx context.Context, entries []string, destPath string) error {
	return c.entriesOp(ctx, "move", entries, destPath)
}

func (c *Client) entriesOp(ctx context.Context, op string, entries []string, destPath string) error {
	body := map[string]interface{}{
		"entries": entries,
		"path":    destPath,
	}
	resp, err := c.do(ctx, http.MethodPost, c.fsURL(op), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError(op, resp)
	}
	return nil
}

// Rename renames a single entry. Leading separators are stripped from both
// paths to match server-side expectations.
func (c *Client) Rename(ctx context.Context, source, destination string) error {
	body := map[string]string{
		"source":      fsmodel.TrimLeadingSeparator(source),
		"destination": fsmodel.TrimLeadingSeparator(destination),
	}
	resp, err := c.do(ctx, http.MethodPost, c.fsURL("rename"), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError("rename", resp)
	}
	return nil
}

// Delete removes the given paths.
func (c *Client) Delete(ctx context.Context, paths []string) error {
	body := map[string][]string{"paths": paths}
	resp, err := c.do(ctx, http.MethodDelete, c.fsURL(""), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError("delete", resp)
	}
	return nil
}

// Create makes a new empty file or directory.
func (c *Client) Create(ctx context.Context, path string, isDirectory bool) error {
	body := map[string]interface{}{
		"path":         fsmodel.TrimLeadingSeparator(path),
		"is_directory": isDirectory,
	}
	resp, err := c.do(ctx, http.MethodPost, c.fsURL("new"), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.apiError("create", resp)
	}
	return nil
}

// ReadFile fetches the text contents of a file.
func (c *Client) ReadFile(ctx context.Context, filePath string) (string, error) {
	q := url.Values{"filepath": {filePath}}
	resp, err := c.do(ctx, http.MethodGet, c.fsURL("contents?"+q.Encode()), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError("read file", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read file contents: %w", err)
	}
	return string(data), nil
}

// WriteFile replaces the contents of a file with raw text.
func (c *Client) WriteFile(ctx context.Context, filePath, content string) error {
	q := url.Values{"filepath": {filePath}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.fsURL("contents?"+q.Encode()), strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError("write file", resp)
	}
	return nil
}

// DownloadURL assembles the browser-navigable download URL for a set of
// entries. Downloads have no notification channel; the panel streams the
// response directly.
func (c *Client) DownloadURL(items []string, cwd string) string {
	q := url.Values{
		"items": {strings.Join(items, ",")},
		"cwd":   {cwd},
	}
	return c.fsURL("download?" + q.Encode())
}
