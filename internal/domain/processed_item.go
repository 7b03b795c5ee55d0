package domain

type ItemStatus string

const (
	StatusDownloaded     ItemStatus = "downloaded"
	StatusDownloadFailed ItemStatus = "download_failed"
	StatusUploaded       ItemStatus = "uploaded"
	StatusUploadFailed   ItemStatus = "upload_failed"
	StatusSkipped        ItemStatus = "skipped"
)

// ProcessedItem is the per-post ledger entry the content processor emits.
// It is terminal once Status is set.
type ProcessedItem struct {
	Post      Post
	LocalPath string
	RemoteURL string
	Upscaled  bool
	Status    ItemStatus
	Reason    string // set when Status is a failure or a skip
}

// Succeeded reports whether the item ended in a non-failure status. A
// skipped item counts: its file was produced by an earlier run.
func (i ProcessedItem) Succeeded() bool {
	return i.Status == StatusDownloaded || i.Status == StatusUploaded || i.Status == StatusSkipped
}
