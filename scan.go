package stego

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ScanResult is the outcome of extracting from one file during a Scan.
type ScanResult struct {
	Path    string
	Found   bool
	Message []byte
	// Err is set when the file is a carrier but extraction failed.
	Err error
}

func (e *Engine) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (e *Engine) extractWorker(ctx context.Context, in <-chan string, out chan<- ScanResult, wg *sync.WaitGroup) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer wg.Done()
		defer close(errc)
		for file := range in {
			message, found, err := e.ExtractFile(file)
			if errors.Is(err, ErrUnsupportedFormat) {
				e.logger.Printf("Skipping \"%s\"\n", file)
				continue
			}

			select {
			case out <- ScanResult{Path: file, Found: found, Message: message, Err: err}:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return errc, nil
}

// Scan walks path and attempts to extract a hidden message from every
// carrier found, using the given number of workers. Files that are not
// carriers are skipped. Results are sorted by path.
func (e *Engine) Scan(path string, workers int) ([]ScanResult, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if workers < 1 {
		workers = 1
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := e.findFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	out := make(chan ScanResult)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		errc, err := e.extractWorker(ctx, files, out, &wg)
		if err != nil {
			return nil, err
		}
		errcList = append(errcList, errc)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	var results []ScanResult
	for r := range out {
		results = append(results, r)
	}

	// Every stage has finished, each error channel holds at most one error
	// and is then closed
	for _, errc := range errcList {
		if err := <-errc; err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	return results, nil
}
