package smt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	z3 "github.com/aclements/go-z3/z3"
)

// scriptWriter archives one solver invocation as an SMT-LIB2 script,
// named by a fresh UUID so concurrent/CI runs never collide. Optional
// zstd compression keeps long fuzzing-run archives small.
type scriptWriter struct {
	f    *os.File
	zw   *zstd.Encoder
	w    io.Writer
	path string
}

func newScriptWriter(dir string) (*scriptWriter, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s.smtlib2", uuid.New().String())
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	sw := &scriptWriter{f: f, w: f, path: path}
	sw.writePrelude()
	return sw, nil
}

// withCompression wraps the writer's output in a zstd encoder and
// renames the archived file to carry the .zst suffix, matching the
// Config.DumpCompress convention.
func (sw *scriptWriter) withCompression() error {
	// Drop the uncompressed prelude newScriptWriter already wrote; it is
	// rewritten below through the encoder.
	if err := sw.f.Truncate(0); err != nil {
		return err
	}
	if _, err := sw.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	zw, err := zstd.NewWriter(sw.f)
	if err != nil {
		return err
	}
	if err := os.Rename(sw.path, sw.path+".zst"); err != nil {
		zw.Close()
		return err
	}
	sw.zw = zw
	sw.w = zw
	sw.path += ".zst"
	sw.writePrelude()
	return nil
}

func (sw *scriptWriter) writePrelude() {
	lines := []string{
		"(set-option :print-success true)",
		"(set-option :smtlib2_compliant true)",
		`(set-option :diagnostic-output-channel "stdout")`,
		"(set-option :timeout 60000)",
		"(set-option :produce-models true)",
		"(set-logic ALL)",
		"",
	}
	for _, l := range lines {
		fmt.Fprintln(sw.w, l)
	}
}

func (sw *scriptWriter) writeAssert(c z3.Bool) {
	fmt.Fprintf(sw.w, "(assert %s)\n\n", c)
}

func (sw *scriptWriter) close() {
	if sw.zw != nil {
		sw.zw.Close()
	}
	sw.f.Close()
}
