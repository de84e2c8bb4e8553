package classify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SplitFile splits inpath into subfiles of at most rowsPerFile lines, created
// in dir. Returns paths to subfiles in order of their content.
func SplitFile(rowsPerFile int, inpath string, dir string) ([]string, error) {
	if rowsPerFile < 1 {
		return nil, fmt.Errorf("at least 1 row per file is required, got %d", rowsPerFile)
	}

	infile, err := os.Open(inpath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %s", inpath, err)
	}
	defer infile.Close()

	reader := bufio.NewReader(infile)
	subfiles := []string{}

	var subfile *os.File
	var writer *bufio.Writer
	closeSubfile := func() error {
		if subfile == nil {
			return nil
		}
		defer subfile.Close()
		subfile = nil
		return writer.Flush()
	}
	defer closeSubfile()

	rows := 0
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if subfile == nil || rows == rowsPerFile {
				if err := closeSubfile(); err != nil {
					return nil, fmt.Errorf("failed to write subfile: %s", err)
				}

				subfile, err = os.CreateTemp(dir, "subfile-*.csv")
				if err != nil {
					return nil, fmt.Errorf("failed to create subfile: %s", err)
				}
				writer = bufio.NewWriter(subfile)
				subfiles = append(subfiles, subfile.Name())
				rows = 0
			}

			if _, err := writer.WriteString(line); err != nil {
				return nil, fmt.Errorf("failed to write subfile: %s", err)
			}
			rows++
		}

		if errors.Is(readErr, io.EOF) {
			break
		} else if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %s", inpath, readErr)
		}
	}

	if err := closeSubfile(); err != nil {
		return nil, fmt.Errorf("failed to write subfile: %s", err)
	}

	return subfiles, nil
}

// ConcatenatePredictions joins prediction files into outpath. Header row of
// the first file is kept, header rows of the others are skipped.
func ConcatenatePredictions(paths []string, outpath string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no prediction files to concatenate")
	}

	log.Infof("concatenating %d partial documents into %s", len(paths), outpath)

	outfile, err := os.Create(outpath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %s", outpath, err)
	}
	defer outfile.Close()

	writer := bufio.NewWriter(outfile)

	for i, path := range paths {
		if err := appendPredictions(writer, path, i > 0); err != nil {
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %s", outpath, err)
	}

	return nil
}

func appendPredictions(writer *bufio.Writer, path string, skipHeader bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %s", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	if skipHeader {
		if _, err := reader.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read %s: %s", path, err)
		}
	}

	if _, err := io.Copy(writer, reader); err != nil {
		return fmt.Errorf("failed to copy %s: %s", path, err)
	}

	return nil
}

// moveFile renames src to dst, copying when they are on different file systems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open classifier output %s: %s", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %s", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to move %s to %s: %s", src, dst, err)
	}

	in.Close()
	return os.Remove(src)
}
