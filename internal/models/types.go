package models

import (
	"sort"
	"strings"
)

// DirEntry is one object returned by the share-link dirents API.
// Exactly one of FolderPath/FilePath is set, depending on IsDir.
type DirEntry struct {
	IsDir        bool   `json:"is_dir"`
	FolderPath   string `json:"folder_path,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	Size         int64  `json:"size,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Path returns the entry's absolute remote path, always with a leading slash.
func (e DirEntry) Path() string {
	p := e.FilePath
	if e.IsDir {
		p = e.FolderPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// RelPath returns the remote path with the single leading slash removed,
// suitable for glob matching and for joining under a local save root.
func (e DirEntry) RelPath() string {
	return strings.TrimPrefix(e.Path(), "/")
}

// Manifest is the sorted list of files selected for download.
type Manifest []DirEntry

// Sort orders the manifest by remote path. The result is the same no
// matter what order the walk visited directories in.
func (m Manifest) Sort() {
	sort.Slice(m, func(i, j int) bool {
		return m[i].Path() < m[j].Path()
	})
}

// TotalSize sums the sizes of all entries. Directories never appear in a
// manifest, so every entry contributes its file size.
func (m Manifest) TotalSize() int64 {
	var total int64
	for _, e := range m {
		total += e.Size
	}
	return total
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type DownloadItem struct {
	RemotePath   string `json:"remote_path"`
	LocalPath    string `json:"local_path"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified,omitempty"`
}

type FailedItem struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
	Error      string `json:"error"`
}

type DownloadResult struct {
	ShareKey         string         `json:"share_key"`
	RootTitle        string         `json:"root_title"`
	SaveRoot         string         `json:"save_root"`
	Items            []DownloadItem `json:"items"`
	Failed           []FailedItem   `json:"failed,omitempty"`
	TotalFiles       int            `json:"total_files"`
	TotalSizeBytes   int64          `json:"total_size_bytes"`
	TotalSizeHuman   string         `json:"total_size_human"`
	OperationTime    string         `json:"operation_time"`
	DownloadDuration string         `json:"download_duration"`
	ArchivePath      string         `json:"archive_path,omitempty"`
}
