// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// unpackCopyBufferSize is the per-worker buffer size used when copying
// a file's decoded, hash-verified plaintext to disk.
const unpackCopyBufferSize = 64 * 1024

// unpackWorkItem stores one selected file with its prepared output
// relative path.
type unpackWorkItem struct {
	name    string
	relPath string
	relDir  string
}

// Unpack writes every selected file from the package to dstDir,
// validating each file's blocks against the block map as it streams
// them to disk. Work is parallelized across Workers goroutines. The
// first failure stops any further file from being started; files
// already written are not rolled back, and Unpack returns the first
// error it observes.
func (p *Package) Unpack(ctx context.Context, dstDir string, opts UnpackOptions) (UnpackResult, error) {
	start := time.Now()
	opts.applyDefaults()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return UnpackResult{}, newErr(KindUnexpected, "package is closed")
	}

	names := opts.Names
	if names == nil {
		names = p.blockMap.Files()
	}
	if opts.SkipFootprint {
		names = excludeFootprint(names)
	}
	if len(names) == 0 {
		return UnpackResult{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return UnpackResult{}, newErr(KindInvalidParameter, "resolve output dir: %v", err)
	}
	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return UnpackResult{}, newErr(KindFileWrite, "create output dir: %v", err)
	}

	workItems, err := prepareUnpackWorkItems(names)
	if err != nil {
		return UnpackResult{}, err
	}
	if err := prepareUnpackDirs(dstRootAbs, workItems); err != nil {
		return UnpackResult{}, err
	}

	logger().Info().Str("dst", dstRootAbs).Int("files", len(workItems)).Int("workers", workers).Msg("unpack started")

	taskCh := make(chan unpackWorkItem, len(workItems))
	type outcome struct {
		written int64
		err     error
	}
	outcomeCh := make(chan outcome, len(workItems))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, unpackCopyBufferSize)
			for task := range taskCh {
				written, err := p.unpackOne(ctx, dstRootAbs, task, opts.FileMode, buf, opts.OnEntryDone)
				// outcomeCh holds one slot per work item, so this never
				// blocks; the outcome is queued before cancel so the
				// real error is seen ahead of any cancellation errors.
				outcomeCh <- outcome{written: written, err: err}
				if err != nil {
					cancel()
				}
			}
		}()
	}

sendLoop:
	for _, task := range workItems {
		select {
		case <-ctx.Done():
			break sendLoop
		case taskCh <- task:
		}
	}
	close(taskCh)
	wg.Wait()
	close(outcomeCh)

	result := UnpackResult{}
	var first error
	for o := range outcomeCh {
		if o.err != nil {
			if first == nil {
				first = o.err
			}
			continue
		}
		result.WrittenFiles++
		result.BytesWritten += o.written
	}
	if first == nil {
		first = ctx.Err()
	}

	result.Duration = time.Since(start)
	if first != nil {
		logger().Error().Err(first).Msg("unpack failed")
		return result, first
	}

	logger().Info().Int("files", result.WrittenFiles).Int64("bytes", result.BytesWritten).Dur("duration", result.Duration).Msg("unpack finished")
	return result, nil
}

// unpackOne decodes and writes one file to disk.
func (p *Package) unpackOne(ctx context.Context, dstRootAbs string, task unpackWorkItem, mode UnpackFileMode, buf []byte, onDone func(UnpackEntryProgress)) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	s, err := p.OpenFile(task.name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()

	outPath := filepath.Join(dstRootAbs, task.relPath)

	file, err := openUnpackFile(outPath, mode)
	if err != nil {
		return 0, newErr(KindFileOpen, "open %s: %v", outPath, err)
	}

	written, copyErr := copyUnpackData(file, s, buf)
	closeErr := file.Close()

	if copyErr != nil {
		return written, copyErr
	}
	if closeErr != nil {
		return written, newErr(KindFileWrite, "close %s: %v", outPath, closeErr)
	}

	if onDone != nil {
		onDone(UnpackEntryProgress{Name: task.name, Written: written, OutputPath: outPath})
	}

	return written, nil
}

// prepareUnpackWorkItems validates and normalizes the selected names.
func prepareUnpackWorkItems(names []string) ([]unpackWorkItem, error) {
	items := make([]unpackWorkItem, 0, len(names))
	for _, name := range names {
		relPath, err := normalizeUnpackPath(name)
		if err != nil {
			return nil, err
		}

		relPath = filepath.FromSlash(relPath)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		items = append(items, unpackWorkItem{name: name, relPath: relPath, relDir: relDir})
	}
	return items, nil
}

// prepareUnpackDirs creates every unique parent directory needed by
// work items.
func prepareUnpackDirs(dstRootAbs string, items []unpackWorkItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, item.relDir)
		if _, ok := seen[dirPath]; ok {
			continue
		}
		seen[dirPath] = struct{}{}

		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return newErr(KindFileWrite, "create output directory %s: %v", dirPath, err)
		}
	}
	return nil
}

// openUnpackFile opens outPath according to the selected file mode.
func openUnpackFile(outPath string, mode UnpackFileMode) (*os.File, error) {
	switch mode {
	case UnpackFileModeTruncate:
		return os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case UnpackFileModeCreateOnly:
		return os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default: // UnpackFileModeAuto
		f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		return os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	}
}

// copyUnpackData copies src's full content to dst using buf, which
// also drives block-hash verification one block at a time since src
// is a BlockMapStream.
func copyUnpackData(dst *os.File, src Stream, buf []byte) (int64, error) {
	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, newErr(KindFileWrite, "%v", werr)
			}
			if wn != n {
				return total, newErr(KindFileWrite, "short write")
			}
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
}

// excludeFootprint drops footprint file names from names.
func excludeFootprint(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !isFootprintFile(n) {
			out = append(out, n)
		}
	}
	return out
}
