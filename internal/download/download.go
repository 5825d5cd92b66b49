package download

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/fetcher"
)

const chunkSize = 64 * 1024

// Fetch streams the PDF at rawURL to path. When the target already exists
// the download is skipped entirely and the existing path returned; a re-run
// after a partial prior run does not re-fetch completed files. Note this
// trusts bare existence: a transfer interrupted mid-stream leaves a truncated
// file that later runs will not repair unless force is set.
func Fetch(ctx context.Context, f *fetcher.Fetcher, rawURL, path string, force bool) (string, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			zap.L().Info("skip download, file exists", zap.String("path", path))
			return path, nil
		}
	}

	zap.L().Info("downloading pdf", zap.String("path", path))

	resp, err := f.GetStream(ctx, rawURL)
	if err != nil {
		return "", eris.Wrap(err, "download: fetch pdf")
	}
	defer resp.Body.Close() //nolint:errcheck

	ctype := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(ctype), "pdf") {
		zap.L().Warn("unexpected content type", zap.String("content_type", ctype))
	}

	file, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "download: create %s", path)
	}
	defer file.Close() //nolint:errcheck

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(file, resp.Body, buf); err != nil {
		return "", eris.Wrapf(err, "download: write %s", path)
	}

	zap.L().Info("saved", zap.String("path", path))
	return path, nil
}
