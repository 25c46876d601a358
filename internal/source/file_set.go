package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileID indexes a File in its FileSet. IDs start at 0.
type FileID uint32

// FileFlags records how a file's content was obtained.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // editor buffer, stdin or test input
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // \r\n was rewritten to \n
	FileNormalizedNFC                        // text was composed to NFC
)

// File is one version of a lesson file. Hash is the SHA-256 of Content and
// keys the disk cache.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Hash    [32]byte
	Flags   FileFlags
}

// Text is the content as a string; "" for a nil file.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return string(f.Content)
}

// Buffer is the content split into detector lines.
func (f *File) Buffer() Buffer {
	return SplitLines(f.Text())
}

// FileSet stores every version of every file added to it. Re-adding a path
// supersedes the previous version without discarding it. Not safe for
// concurrent Add.
type FileSet struct {
	files   []File
	latest  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{latest: make(map[string]FileID)}
}

// NewFileSetWithBase returns a FileSet whose relative display paths are
// computed against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir is the directory given at construction, or the working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Len counts stored versions, superseded ones included.
func (fs *FileSet) Len() int { return len(fs.files) }

// Add stores content as the newest version of path.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set is full: %w", err))
	}
	key := normalizePath(path)
	id := FileID(n)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    key,
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.latest[key] = id
	return id
}

// Load reads path from disk and adds it after stripping a BOM, rewriting
// CRLF line ends and composing to NFC.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- lesson paths come from the user
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := normalizeLoaded(raw)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory buffer exactly as given.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns nil for an id this set never issued.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// GetLatest returns the newest version of path. ok is false when the path was
// never added, which is how callers tell a failed load apart from FileID 0.
func (fs *FileSet) GetLatest(path string) (id FileID, ok bool) {
	id, ok = fs.latest[normalizePath(path)]
	return id, ok
}

// FormatPath renders the path for output. mode is absolute, relative,
// basename or auto; auto keeps relative and short paths and shortens long
// absolute ones to their base name.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return BaseName(f.Path)
	case "auto":
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
