// Package orangebook downloads, caches and parses the FDA Orange Book archive.
package orangebook

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
	"golang.org/x/text/encoding/charmap"
)

// ErrDatasetMissing is returned when the archive lacks one of the three files
var ErrDatasetMissing = errors.New("orange book archive is missing a dataset")

// Dataset identifies one of the three files inside the archive
type Dataset string

const (
	DatasetProducts      Dataset = "products"
	DatasetPatents       Dataset = "patent"
	DatasetExclusivities Dataset = "exclusivity"
)

// Datasets lists the archive contents in the order they are processed
var Datasets = []Dataset{DatasetProducts, DatasetPatents, DatasetExclusivities}

// cacheFileName is the on-disk name of a dataset inside the cache directory
func (d Dataset) cacheFileName() string {
	return string(d) + ".txt"
}

// downloadArchive fetches the zip archive and returns the text of each dataset
func downloadArchive(ctx context.Context, client *http.Client, url string) (map[Dataset]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "loe-engine/1.0")

	response, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("orange book download returned HTTP %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logging.Debug("Orange Book archive downloaded", "bytes", len(body))
	return extractDatasets(body)
}

// extractDatasets picks exactly one archive entry per dataset, matching the
// dataset name as a case-insensitive substring of the entry name.
func extractDatasets(archive []byte) (map[Dataset]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open orange book archive: %w", err)
	}

	texts := make(map[Dataset]string, len(Datasets))
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := strings.ToLower(filepath.Base(file.Name))

		for _, dataset := range Datasets {
			if _, found := texts[dataset]; found || !strings.Contains(name, string(dataset)) {
				continue
			}
			text, err := readEntry(file)
			if err != nil {
				return nil, err
			}
			texts[dataset] = text
			break
		}
	}

	for _, dataset := range Datasets {
		if _, found := texts[dataset]; !found {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, dataset)
		}
	}

	return texts, nil
}

func readEntry(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Warn("Failed to close archive entry", "entry", file.Name, "error", err)
		}
	}()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
	}

	return decodeText(raw)
}

// decodeText returns UTF-8 text, decoding from ISO-8859-1 when the bytes are
// not valid UTF-8 already
func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode ISO-8859-1 text: %w", err)
	}
	return string(decoded), nil
}

// writeCache overwrites the three cache files
func writeCache(dir string, texts map[Dataset]string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	for _, dataset := range Datasets {
		path := filepath.Join(dir, dataset.cacheFileName())
		if err := os.WriteFile(path, []byte(texts[dataset]), 0600); err != nil {
			return fmt.Errorf("failed to write cache file %s: %w", path, err)
		}
	}

	return nil
}
