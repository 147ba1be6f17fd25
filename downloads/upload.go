package downloads

import (
	"context"
	"strings"

	"github.com/input-output-hk/forge-upload/contenttype"
	"github.com/input-output-hk/forge-upload/errors"
	"github.com/input-output-hk/forge-upload/multipart"
)

// Upload runs the whole protocol for file and returns the public URL:
// optionally delete same-named files (best-effort), register, store.
// A failure after a successful delete leaves the remote without the file.
func (c *Client) Upload(ctx context.Context, req Request, file *multipart.File) (string, error) {
	if file == nil {
		return "", errors.WrapWithContext(ErrInvalidRequest, errors.CodeInvalidInput, "no file to upload", nil)
	}
	if err := validateRepo(req.Repo); err != nil {
		return "", err
	}

	name := req.Name
	if name == "" {
		name = file.Name()
	}
	logger := c.logger.With("repo", req.Repo, "name", name)

	if req.Force {
		logger.DebugContext(ctx, "removing existing files")
		if err := c.deleteExisting(ctx, req.Repo, name); err != nil {
			return "", err
		}
	}

	logger.DebugContext(ctx, "registering file", "size", file.Size(), "content_type", file.MimeType())
	reg, err := c.Create(ctx, req.Repo, Metadata{
		Name:        name,
		Size:        file.Size(),
		Description: req.Description,
		ContentType: contenttype.Essence(file.MimeType()),
	})
	if err != nil {
		return "", err
	}

	logger.DebugContext(ctx, "storing file", "key", reg.Path)
	if err := c.Store(ctx, reg, file); err != nil {
		return "", err
	}

	logger.DebugContext(ctx, "upload complete", "url", reg.HTMLURL)
	return reg.HTMLURL, nil
}

// deleteExisting removes every listed file called name. Failed deletes are
// logged and do not stop the upload.
func (c *Client) deleteExisting(ctx context.Context, repo, name string) error {
	files, err := c.List(ctx, repo)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.Name != name {
			continue
		}
		c.logger.InfoContext(ctx, "deleting existing file", "name", f.Name, "id", f.ID)
		if err := c.Delete(ctx, repo, f.ID); err != nil {
			c.logger.WarnContext(ctx, "failed to delete existing file", "name", f.Name, "id", f.ID, "error", err)
		}
	}
	return nil
}

func validateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if ok && validSegment(owner) && validSegment(name) {
		return nil
	}
	return errors.WrapWithContext(ErrInvalidRequest, errors.CodeInvalidInput,
		"repository must be of the form owner/name", map[string]any{"repo": repo})
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, "/?#%")
}
