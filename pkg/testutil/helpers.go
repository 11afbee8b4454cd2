// Package testutil provides common utility functions for testing.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/iwvelando/loan-desk/pkg/output"
)

// FindEvaluation finds an evaluation by application name in the results slice.
// Returns a pointer to the evaluation if found, nil otherwise.
func FindEvaluation(results []output.Evaluation, name string) *output.Evaluation {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// CaptureStdout runs fn and returns everything it wrote to os.Stdout.
func CaptureStdout(t testing.TB, fn func()) string {
	t.Helper()

	original := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = original
	}()

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.Bytes()
	}()

	fn()
	_ = w.Close()
	out := <-done
	_ = r.Close()
	return string(out)
}
