package downloads

import "github.com/input-output-hk/forge-upload/multipart"

// Request describes one upload.
type Request struct {
	// Repo is the target repository as "owner/name".
	Repo string

	// Name is the remote file name. Defaults to the local basename.
	Name string

	// Description is an optional free-form description.
	Description string

	// Force deletes same-named remote files before registering.
	Force bool
}

// RemoteFile is an entry of the repository's file listing.
type RemoteFile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Metadata is the registration payload.
type Metadata struct {
	Name        string `json:"name"`
	Size        int64  `json:"size,string"`
	Description string `json:"description"`
	ContentType string `json:"content_type"`
}

// Registration is the API's answer to a successful registration. Apart from
// HTMLURL it is passed through to the storage upload unchanged.
type Registration struct {
	HTMLURL     string `json:"html_url"`
	S3URL       string `json:"s3_url"`
	Path        string `json:"path"`
	ACL         string `json:"acl"`
	AccessKeyID string `json:"accesskeyid"`
	Policy      string `json:"policy"`
	Signature   string `json:"signature"`
	MimeType    string `json:"mime_type"`
	Name        string `json:"name"`
}

// StorageFields returns the signed form fields for the storage POST, in the
// order the storage endpoint expects, with file last.
func (r *Registration) StorageFields(file *multipart.File) []multipart.Field {
	return []multipart.Field{
		multipart.TextField("key", r.Path),
		multipart.TextField("acl", r.ACL),
		multipart.TextField("success_action_status", "201"),
		multipart.TextField("Filename", r.Name),
		multipart.TextField("AWSAccessKeyId", r.AccessKeyID),
		multipart.TextField("Policy", r.Policy),
		multipart.TextField("signature", r.Signature),
		multipart.TextField("Content-Type", r.MimeType),
		multipart.FileField("file", file),
	}
}
