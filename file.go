package stego

import (
	"io"
	"os"
	"time"

	"github.com/bodgit/stego/carrier"
	"github.com/pkg/errors"
)

// FileInfo describes a carrier file.
type FileInfo struct {
	Path    string
	Format  Format
	Size    int64
	ModTime time.Time
	// Width and Height are zero when the format header could not be decoded.
	Width, Height int
	// Capacity is the longest message, in bytes, the file can carry.
	Capacity int64
	// Record is the matching embedding history entry, if any.
	Record *Record
}

func open(path string, flag int) (*os.File, os.FileInfo, error) {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, nil, &OpenError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &OpenError{Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, &OpenError{Path: path, Err: errors.New("not a regular file")}
	}

	return f, info, nil
}

// IdentifyFile reports the carrier format of the file at path.
func (e *Engine) IdentifyFile(path string) (Format, error) {
	f, _, err := open(path, os.O_RDONLY)
	if err != nil {
		return Unsupported, err
	}
	defer f.Close()

	return e.Identify(f)
}

// EmbedFile hides message in the file at path, modifying it in place.
func (e *Engine) EmbedFile(path string, message []byte) error {
	f, info, err := open(path, os.O_RDWR)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := e.Embed(f, info.Size(), message); err != nil {
		return err
	}

	if e.db == nil {
		return nil
	}

	sha, err := sha1File(io.NewSectionReader(f, 0, info.Size()))
	if err != nil {
		return err
	}
	if err := e.db.Add(path, sha, len(message), time.Now()); err != nil {
		return errors.Wrap(err, "record history")
	}
	e.logger.Printf("Recorded \"%s\" with SHA-1 \"%s\"\n", path, sha)

	return nil
}

// CheckFile reports whether message is hidden in the file at path.
func (e *Engine) CheckFile(path string, message []byte) (*Report, error) {
	f, info, err := open(path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report, err := e.Check(f, info.Size(), message)
	if err != nil {
		return nil, err
	}

	if report.Record, err = e.lookup(f, info.Size()); err != nil {
		return nil, err
	}

	return report, nil
}

// ExtractFile recovers the hidden message from the file at path.
func (e *Engine) ExtractFile(path string) ([]byte, bool, error) {
	f, _, err := open(path, os.O_RDONLY)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	return e.Extract(f)
}

// Info describes the carrier at path.
func (e *Engine) Info(path string) (*FileInfo, error) {
	f, info, err := open(path, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format, err := e.gate(f)
	if err != nil {
		return nil, err
	}

	fi := &FileInfo{
		Path:     path,
		Format:   format,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Capacity: Capacity(info.Size()),
	}

	if c, name, err := carrier.DecodeConfig(io.NewSectionReader(f, 0, info.Size())); err != nil {
		e.logger.Printf("Unable to decode header of \"%s\": %v\n", path, err)
	} else {
		e.logger.Printf("Decoded \"%s\" header as %s\n", path, name)
		fi.Width, fi.Height = c.Width, c.Height
	}

	if fi.Record, err = e.lookup(f, info.Size()); err != nil {
		return nil, err
	}

	return fi, nil
}

// lookup returns the history entry matching the current contents of r
func (e *Engine) lookup(r io.ReaderAt, size int64) (*Record, error) {
	if e.db == nil {
		return nil, nil
	}

	sha, err := sha1File(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}

	return e.db.FindBySHA1(sha)
}
