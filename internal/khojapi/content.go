package khojapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/imroc/req/v3"
)

// File is one entry of a content batch. An empty Path marks a tombstone: the
// part is sent with empty content, which the server reads as a deletion of
// the named file.
type File struct {
	Name      string // name sent on the wire
	Path      string // absolute path to read content from; empty for a tombstone
	MediaType string
}

// Tombstone returns true when the file carries no content and signals a
// remote deletion.
func (f *File) Tombstone() bool {
	return f.Path == ""
}

// PushResult is the interpreted outcome of one batch exchange.
type PushResult struct {
	StatusCode int
	// Confirmed maps each file name to whether the server acknowledged it.
	// The server returns no structured per-file status; a file counts as
	// acknowledged when its name appears in the response body text. This is
	// a best-effort heuristic kept for wire compatibility: a name that is a
	// substring of another can be confirmed spuriously.
	Confirmed map[string]bool
}

// Push sends one batch of files as a single multipart PATCH exchange.
// Upload entries carry the file content, tombstones carry none. A non-200
// status or a transport error fails the whole batch.
func (c *Client) Push(ctx context.Context, files []*File) (*PushResult, error) {
	r := c.http.R().SetContext(ctx)

	for _, f := range files {
		upload := req.FileUpload{
			ParamName:   "files",
			FileName:    f.Name,
			ContentType: f.MediaType,
		}
		if f.Tombstone() {
			upload.GetFileContent = func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("")), nil
			}
		} else {
			path := f.Path
			upload.GetFileContent = func() (io.ReadCloser, error) {
				return os.Open(path)
			}
		}
		r.SetFileUpload(upload)
	}

	resp, err := r.Patch(contentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrServerRejected, resp.Status)
	}

	body := resp.String()
	confirmed := make(map[string]bool, len(files))
	for _, f := range files {
		confirmed[f.Name] = strings.Contains(body, f.Name)
	}

	return &PushResult{
		StatusCode: resp.StatusCode,
		Confirmed:  confirmed,
	}, nil
}
