package models

// DocumentCategory classifies an upload for the remote document service.
type DocumentCategory string

const (
	CategoryIdentity      DocumentCategory = "identity"
	CategoryLicense       DocumentCategory = "license"
	CategoryCertification DocumentCategory = "certification"
	CategoryTestimonial   DocumentCategory = "testimonial"
	CategoryProjectMedia  DocumentCategory = "project_media"
)

// FileMetadata is the serializable part of a user-selected file. It is what
// survives a reload; binary payloads are intentionally never persisted.
type FileMetadata struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

// FileHandle carries the binary payload of a selected file for the duration
// of the session only. It is excluded from every JSON snapshot.
type FileHandle struct {
	Data []byte `json:"-"`
}

// Attachment pairs an optional session-only handle with persisted metadata.
// A rehydrated draft has metadata but no handle, which flags the file as
// needing re-selection before the section can upload again.
type Attachment struct {
	Handle *FileHandle   `json:"-"`
	Meta   *FileMetadata `json:"meta,omitempty"`
}

// NewAttachment builds an attachment from a freshly selected file.
func NewAttachment(name string, contentType string, data []byte) Attachment {
	return Attachment{
		Handle: &FileHandle{Data: data},
		Meta: &FileMetadata{
			Name:        name,
			Size:        int64(len(data)),
			ContentType: contentType,
		},
	}
}

// Present reports whether the slot holds either a live file or previously
// stored metadata. This is what the per-step gate checks.
func (a Attachment) Present() bool {
	return a.Handle != nil || a.Meta != nil
}

// HasPayload reports whether the binary bytes are available for upload.
func (a Attachment) HasPayload() bool {
	return a.Handle != nil && len(a.Handle.Data) > 0
}

// NeedsReselect is true when the draft was rehydrated: the metadata
// survived the reload but the bytes did not.
func (a Attachment) NeedsReselect() bool {
	return a.Meta != nil && a.Handle == nil
}

// clone copies the attachment's metadata. The handle is shared: payloads
// are immutable once selected.
func (a Attachment) clone() Attachment {
	c := a
	if a.Meta != nil {
		meta := *a.Meta
		c.Meta = &meta
	}
	return c
}

func cloneAttachments(in []Attachment) []Attachment {
	if in == nil {
		return nil
	}
	out := make([]Attachment, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}
