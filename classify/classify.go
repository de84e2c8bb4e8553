// Package classify runs Senti4SD classification scripts over a text file, one
// document per line, spreading the work over a pool of Senti4SD copies.
package classify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// path of classification script relative to root of a Senti4SD repository
const ScriptPath = "ClassificationTask/classificationTask.sh"

// directory below a pool root is taken as a Senti4SD copy when its lower
// cased name contains this
const classifierDirMarker = "senti4sd"

var ErrNoClassifier = errors.New("no classifier found")

// ClassificationError is returned when a classification script exits with
// non-zero status.
type ClassificationError struct {
	Input    string
	ExitCode int
	Err      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying %s failed with exit code %d: %s", e.Input, e.ExitCode, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// FindClassifiers returns paths to classification scripts of every Senti4SD
// copy directly below poolRoot.
func FindClassifiers(poolRoot string) ([]string, error) {
	entries, err := os.ReadDir(poolRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier pool %s: %s", poolRoot, err)
	}

	classifiers := []string{}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(strings.ToLower(entry.Name()), classifierDirMarker) {
			continue
		}
		classifiers = append(classifiers, filepath.Join(poolRoot, entry.Name(), ScriptPath))
	}

	if len(classifiers) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoClassifier, poolRoot)
	}

	log.Infof("found %d classifiers at: %s", len(classifiers), strings.Join(classifiers, " | "))

	return classifiers, nil
}

type job struct {
	src string
	dst string
}

// ClassifySentiment classifies every line of inpath and writes predictions to
// outpath. Input is split into subfiles of at most rowsPerFile lines, each
// classifier in pool takes one subfile at a time.
func ClassifySentiment(ctx context.Context, rowsPerFile int, poolRoot, inpath, outpath string) error {
	if rowsPerFile < 1 {
		return fmt.Errorf("at least 1 row per file is required, got %d", rowsPerFile)
	}

	classifiers, err := FindClassifiers(poolRoot)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "analyzer-classify-")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tmpDir)

	sources, err := SplitFile(rowsPerFile, inpath, tmpDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("%s contains no rows to classify", inpath)
	}

	dests := make([]string, 0, len(sources))
	for range sources {
		dst, err := os.CreateTemp(tmpDir, "prediction-*.csv")
		if err != nil {
			return fmt.Errorf("failed to create temporary file: %s", err)
		}
		dst.Close()
		dests = append(dests, dst.Name())
	}

	if err := classifyAll(ctx, sources, dests, classifiers); err != nil {
		return err
	}

	return ConcatenatePredictions(dests, outpath)
}

// classifyAll runs one worker per classifier, jobs are handed out in order of
// subfiles. First failure cancels remaining jobs.
func classifyAll(ctx context.Context, sources, dests, classifiers []string) error {
	total := len(sources)
	log.Infof("classifying %d subfiles with %d classifiers", total, len(classifiers))

	group, gCtx := errgroup.WithContext(ctx)
	jobs := make(chan job)

	group.Go(func() error {
		defer close(jobs)
		for i := range sources {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case jobs <- job{src: sources[i], dst: dests[i]}:
			}
		}
		return nil
	})

	var done atomic.Int64
	for _, classifier := range classifiers {
		group.Go(func() error {
			for j := range jobs {
				if err := runClassifier(gCtx, classifier, j.src, j.dst); err != nil {
					return err
				}
				log.Infof("subfiles classified: %d/%d", done.Add(1), total)
			}
			return nil
		})
	}

	return group.Wait()
}

// runClassifier runs script on inpath from the script's directory, then moves
// produced prediction file to outpath.
func runClassifier(ctx context.Context, script, inpath, outpath string) error {
	scriptDir, scriptName := filepath.Split(script)

	absInput, err := filepath.Abs(inpath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %s", inpath, err)
	}
	outName := filepath.Base(outpath)

	cmd := exec.CommandContext(ctx, "/bin/bash", scriptName, absInput, outName)
	cmd.Dir = scriptDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Debugf("classifier output:\n%s", output)

		if content, readErr := os.ReadFile(inpath); readErr == nil {
			log.Errorf("failed to classify %s containing: %s", inpath, content)
		}

		exitCode := -1
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return &ClassificationError{Input: inpath, ExitCode: exitCode, Err: err}
	}

	return moveFile(filepath.Join(scriptDir, outName), outpath)
}
